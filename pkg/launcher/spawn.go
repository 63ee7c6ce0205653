package launcher

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Spawner starts a program image with an argument vector, argv[0] included,
// and returns the child pid. Task children stay in the launcher's own process
// group so that cohort teardown reaches every one of them with a single
// signal.
type Spawner interface {
	Spawn(program string, argv []string) (int, error)
}

// forkExecSpawner spawns the program image directly, without a shell or
// interpreter and without PATH lookup.
type forkExecSpawner struct{}

func (forkExecSpawner) Spawn(program string, argv []string) (int, error) {
	pid, err := syscall.ForkExec(program, argv, &syscall.ProcAttr{
		Env:   os.Environ(),
		Files: []uintptr{uintptr(syscall.Stdin), uintptr(syscall.Stdout), uintptr(syscall.Stderr)},
	})
	if err != nil {
		return 0, errors.Wrapf(err, "fork/exec of task %q failed", program)
	}

	log.Debugf("Task %q started with pid %d", program, pid)

	return pid, nil
}
