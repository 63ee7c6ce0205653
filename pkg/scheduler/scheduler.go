// Package scheduler invokes the external clustering scheduler which turns a
// taskset description into a schedule.
package scheduler

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/conf"
	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/schedule"
)

var (
	interpreterFlag = conf.NewStringFlag(
		"scheduler_interpreter",
		"Interpreter used to run the external scheduler script",
		"python",
	)
	scriptFlag = conf.NewStringFlag(
		"scheduler_script",
		"Identifier of the external scheduler script",
		"cluster.py",
	)
)

// Config encodes how the external scheduler is invoked.
type Config struct {
	Interpreter string
	Script      string
}

// DefaultConfig returns the invocation settings from flags and environment.
func DefaultConfig() Config {
	return Config{
		Interpreter: interpreterFlag.Value(),
		Script:      scriptFlag.Value(),
	}
}

// Scheduler regenerates schedules by spawning the external scheduler script.
type Scheduler struct {
	config Config
}

// New returns a Scheduler instance.
func New(config Config) Scheduler {
	return Scheduler{config: config}
}

// Regenerate spawns the external scheduler with the base name as its sole
// argument and returns the child pid. The caller reaps the child and blocks
// until it terminates; the scheduler's exit status is not inspected, because
// success of regeneration is verified solely by re-reading the schedule it
// produced.
func (s Scheduler) Regenerate(ref schedule.TaskSetReference) (int, error) {
	interpreter, err := exec.LookPath(s.config.Interpreter)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot locate scheduler interpreter %q", s.config.Interpreter)
	}

	argv := []string{s.config.Interpreter, s.config.Script, ref.Base}

	log.Debugf("Spawning scheduler: %s %s %s", s.config.Interpreter, s.config.Script, ref.Base)

	pid, err := syscall.ForkExec(interpreter, argv, &syscall.ProcAttr{
		Env:   os.Environ(),
		Files: []uintptr{uintptr(syscall.Stdin), uintptr(syscall.Stdout), uintptr(syscall.Stderr)},
	})
	if err != nil {
		return 0, errors.Wrapf(err, "forking a new process for scheduler script %q failed", s.config.Script)
	}

	log.Debugf("Scheduler started with pid %d", pid)

	return pid, nil
}
