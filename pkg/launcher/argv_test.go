package launcher

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/schedule"
)

func TestTaskArgv(t *testing.T) {
	Convey("While building a task's argument vector", t, func() {
		task := schedule.Task{
			Program:   "/bin/true",
			Args:      []string{"a", "b"},
			Timing:    []string{"5", "6", "7", "8", "9", "10", "11"},
			Partition: []string{"P", "Q", "R"},
		}

		Convey("The positional order is program, partition, timing, barrier, program, args", func() {
			argv := taskArgv(task, "RT_GOMP_CLUSTERING_BARRIER")

			So(argv, ShouldResemble, []string{
				"/bin/true",
				"P", "Q", "R",
				"5", "6", "7", "8", "9", "10", "11",
				"RT_GOMP_CLUSTERING_BARRIER",
				"/bin/true",
				"a", "b",
			})
		})

		Convey("A task without its own arguments ends after the second program path", func() {
			task.Args = nil

			argv := taskArgv(task, "B")

			So(argv[len(argv)-1], ShouldEqual, "/bin/true")
			So(argv, ShouldHaveLength, 13)
		})

		Convey("Each call returns an independently owned vector", func() {
			first := taskArgv(task, "B")
			second := taskArgv(task, "B")

			So(first, ShouldResemble, second)
			first[0] = "clobbered"
			So(second[0], ShouldEqual, "/bin/true")
		})
	})
}
