package launcher

import (
	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/schedule"
)

// taskArgv builds the full argument vector for one task, argv[0] included:
// the program path, the three partition parameters, the forwarded timing
// parameters, the barrier name, the program path once more (the downstream
// task-runner contract expects it after the barrier name), then the task's
// own arguments verbatim.
//
// The slice is freshly allocated on every call so each spawned process owns
// its argument vector independently for the full window between construction
// and the moment exec replaces the child's process image.
func taskArgv(task schedule.Task, barrierName string) []string {
	argv := make([]string, 0, 3+len(task.Partition)+len(task.Timing)+len(task.Args))
	argv = append(argv, task.Program)
	argv = append(argv, task.Partition...)
	argv = append(argv, task.Timing...)
	argv = append(argv, barrierName, task.Program)
	argv = append(argv, task.Args...)
	return argv
}
