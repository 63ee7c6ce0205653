package launcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"

	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/barrier"
	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/schedule"
)

const testBarrierName = "TEST_CLUSTERING_BARRIER"

const validScheduleText = "0\n" +
	"0-3\n" +
	"/bin/true a b\n" +
	"0 0 0 0 5 6 7 8 9 10 11\n" +
	"P Q R\n"

type spawnerMock struct {
	mock.Mock
}

func (m *spawnerMock) Spawn(program string, argv []string) (int, error) {
	args := m.Called(program, argv)
	return args.Int(0), args.Error(1)
}

type factoryMock struct {
	mock.Mock
}

func (m *factoryMock) Create(name string, parties int) (*barrier.Handle, error) {
	args := m.Called(name, parties)
	handle, _ := args.Get(0).(*barrier.Handle)
	return handle, args.Error(1)
}

type regeneratorMock struct {
	mock.Mock
}

func (m *regeneratorMock) Regenerate(ref schedule.TaskSetReference) (int, error) {
	args := m.Called(ref)
	return args.Int(0), args.Error(1)
}

type launchFixture struct {
	launcher    *Launcher
	spawner     *spawnerMock
	barriers    *factoryMock
	regenerator *regeneratorMock
	events      []string
	killed      bool
}

func newLaunchFixture() *launchFixture {
	f := &launchFixture{
		spawner:     new(spawnerMock),
		barriers:    new(factoryMock),
		regenerator: new(regeneratorMock),
	}
	f.launcher = New(Config{
		BarrierName: testBarrierName,
		Scheduler:   f.regenerator,
		Barriers:    f.barriers,
		Spawner:     f.spawner,
	})
	f.launcher.killCohort = func() error {
		f.killed = true
		return nil
	}
	return f
}

func (f *launchFixture) expectBarrier(parties int) {
	f.barriers.On("Create", testBarrierName, parties).
		Return(&barrier.Handle{Name: testBarrierName, Parties: parties}, nil).
		Run(func(mock.Arguments) { f.events = append(f.events, "barrier") }).
		Once()
}

func writeSchedule(base, text string) error {
	return os.WriteFile(base+schedule.ScheduleSuffix, []byte(text), 0644)
}

func TestLauncherRun(t *testing.T) {
	log.SetLevel(log.ErrorLevel)

	Convey("While launching a scheduled taskset", t, func() {
		base := filepath.Join(t.TempDir(), "demo")
		f := newLaunchFixture()

		Convey("With a current single task schedule", func() {
			So(writeSchedule(base, validScheduleText), ShouldBeNil)
			f.expectBarrier(1)

			var argvs [][]string
			f.spawner.On("Spawn", "/bin/true", mock.Anything).
				Return(101, nil).
				Run(func(args mock.Arguments) {
					f.events = append(f.events, "spawn")
					argvs = append(argvs, args.Get(1).([]string))
				})

			err := f.launcher.Run(base)

			Convey("The launch succeeds without regeneration or teardown", func() {
				So(err, ShouldBeNil)
				So(ExitCodeOf(err), ShouldEqual, CodeSuccess)
				So(f.killed, ShouldBeFalse)
				f.regenerator.AssertNotCalled(t, "Regenerate", mock.Anything)
			})

			Convey("The barrier is created before any task is spawned", func() {
				So(f.events, ShouldResemble, []string{"barrier", "spawn"})
			})

			Convey("The task receives the exactly reconstructed argument vector", func() {
				So(argvs, ShouldHaveLength, 1)
				So(argvs[0], ShouldResemble, []string{
					"/bin/true",
					"P", "Q", "R",
					"5", "6", "7", "8", "9", "10", "11",
					testBarrierName,
					"/bin/true",
					"a", "b",
				})
			})
		})

		Convey("With a possibly unschedulable verdict the launch proceeds with a warning", func() {
			So(writeSchedule(base, "1"+validScheduleText[1:]), ShouldBeNil)
			f.expectBarrier(1)
			f.spawner.On("Spawn", "/bin/true", mock.Anything).Return(101, nil)

			err := f.launcher.Run(base)

			So(err, ShouldBeNil)
		})

		Convey("With an unschedulable verdict nothing is ever spawned", func() {
			So(writeSchedule(base, "2"+validScheduleText[1:]), ShouldBeNil)

			err := f.launcher.Run(base)

			So(err, ShouldNotBeNil)
			So(ExitCodeOf(err), ShouldEqual, CodeUnschedulable)
			f.barriers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			f.spawner.AssertNotCalled(t, "Spawn", mock.Anything, mock.Anything)
		})

		Convey("With a malformed task record no process is created", func() {
			malformed := "0\n0-3\n/bin/true\n0 0 0 0 5 6 7 8 9 10 11\nP Q\n"
			So(writeSchedule(base, malformed), ShouldBeNil)

			err := f.launcher.Run(base)

			So(ExitCodeOf(err), ShouldEqual, CodeFileParse)
			f.barriers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			f.spawner.AssertNotCalled(t, "Spawn", mock.Anything, mock.Anything)
		})

		Convey("With neither schedule nor taskset present the launch fails on open", func() {
			err := f.launcher.Run(base)

			So(ExitCodeOf(err), ShouldEqual, CodeFileOpen)
			f.regenerator.AssertNotCalled(t, "Regenerate", mock.Anything)
		})

		Convey("With a stale schedule the external scheduler runs first", func() {
			now := time.Now()
			So(os.WriteFile(base+schedule.TasksetSuffix, []byte("t\n"), 0644), ShouldBeNil)
			So(writeSchedule(base, validScheduleText), ShouldBeNil)
			So(os.Chtimes(base+schedule.ScheduleSuffix, now.Add(-time.Hour), now.Add(-time.Hour)), ShouldBeNil)

			f.regenerator.On("Regenerate", schedule.NewTaskSetReference(base)).Return(12345, nil).Once()
			f.expectBarrier(1)
			f.spawner.On("Spawn", "/bin/true", mock.Anything).Return(101, nil)

			err := f.launcher.Run(base)

			So(err, ShouldBeNil)
			f.regenerator.AssertExpectations(t)
		})

		Convey("When the scheduler cannot be spawned the launch aborts", func() {
			So(os.WriteFile(base+schedule.TasksetSuffix, []byte("t\n"), 0644), ShouldBeNil)

			f.regenerator.On("Regenerate", mock.Anything).Return(0, errors.New("no such interpreter")).Once()

			err := f.launcher.Run(base)

			So(ExitCodeOf(err), ShouldEqual, CodeForkExec)
			f.spawner.AssertNotCalled(t, "Spawn", mock.Anything, mock.Anything)
		})

		Convey("When barrier creation fails no fork for a task takes place", func() {
			So(writeSchedule(base, validScheduleText), ShouldBeNil)

			f.barriers.On("Create", testBarrierName, 1).
				Return(nil, errors.New("naming collision")).
				Once()

			err := f.launcher.Run(base)

			So(ExitCodeOf(err), ShouldEqual, CodeBarrierInit)
			f.spawner.AssertNotCalled(t, "Spawn", mock.Anything, mock.Anything)
		})

		Convey("When a spawn fails mid cohort the whole cohort is torn down", func() {
			twoTasks := validScheduleText +
				"/bin/false\n" +
				"0 0 0 0 5 6 7 8 9 10 11\n" +
				"X Y Z\n" +
				"/bin/echo\n" +
				"0 0 0 0 5 6 7 8 9 10 11\n" +
				"U V W\n"
			So(writeSchedule(base, twoTasks), ShouldBeNil)
			f.expectBarrier(3)

			f.spawner.On("Spawn", "/bin/true", mock.Anything).Return(101, nil).Once()
			f.spawner.On("Spawn", "/bin/false", mock.Anything).Return(0, errors.New("exec failed")).Once()

			err := f.launcher.Run(base)

			So(ExitCodeOf(err), ShouldEqual, CodeForkExec)
			So(f.killed, ShouldBeTrue)

			Convey("And no further task is spawned after the failure", func() {
				f.spawner.AssertNumberOfCalls(t, "Spawn", 2)
				f.spawner.AssertNotCalled(t, "Spawn", "/bin/echo", mock.Anything)
			})
		})
	})
}

func TestExitCodeOf(t *testing.T) {
	Convey("While mapping errors to exit codes", t, func() {
		Convey("nil means success", func() {
			So(ExitCodeOf(nil), ShouldEqual, CodeSuccess)
		})

		Convey("Codes survive wrapping with additional context", func() {
			err := withCode(CodeBarrierInit, errors.New("boom"))
			wrapped := errors.Wrap(err, "while launching")

			So(ExitCodeOf(wrapped), ShouldEqual, CodeBarrierInit)
		})

		Convey("Errors raised before the launch began count as argument errors", func() {
			So(ExitCodeOf(errors.New("unexpected positional argument")), ShouldEqual, CodeArgument)
		})

		Convey("The exit codes are pairwise distinct", func() {
			codes := []Code{
				CodeSuccess, CodeFileOpen, CodeFileParse, CodeUnschedulable,
				CodeForkExec, CodeBarrierInit, CodeArgument,
			}
			seen := map[Code]bool{}
			for _, code := range codes {
				So(seen[code], ShouldBeFalse)
				seen[code] = true
			}
		})
	})
}
