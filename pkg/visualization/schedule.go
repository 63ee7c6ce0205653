package visualization

import (
	"strconv"
	"strings"

	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/schedule"
)

// ScheduleTable builds a table with one row per task of the parsed schedule,
// in launch order.
func ScheduleTable(doc *schedule.Document) *Table {
	headers := []string{"task", "program", "partition", "timing", "args"}

	data := make([][]string, 0, len(doc.Tasks))
	for i, task := range doc.Tasks {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			task.Program,
			strings.Join(task.Partition, " "),
			strings.Join(task.Timing, " "),
			strings.Join(task.Args, " "),
		})
	}

	return NewTable(headers, data)
}
