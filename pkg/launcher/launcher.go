// Package launcher orchestrates one launch attempt of a scheduled taskset:
// freshness check, optional schedule regeneration, parsing, barrier creation
// and the cohort spawn loop, with all-or-nothing teardown on failure.
package launcher

import (
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/barrier"
	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/schedule"
	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/scheduler"
	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/utils/errutil"
	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/visualization"
)

// Regenerator produces a fresh schedule from a taskset description and
// returns the pid of the child doing the work.
type Regenerator interface {
	Regenerate(ref schedule.TaskSetReference) (int, error)
}

// Recorder persists a record of one launch attempt for later inspection.
// Recording failures are logged, never launch-fatal.
type Recorder interface {
	RecordLaunch(base string, doc *schedule.Document) error
}

// Config groups the launcher's collaborators.
type Config struct {
	// BarrierName is the fixed identifier under which every task of the
	// cohort attaches to the start barrier.
	BarrierName string
	Scheduler   Regenerator
	Barriers    barrier.Factory
	Spawner     Spawner
	// Recorder is optional; nil disables launch metadata recording.
	Recorder Recorder
}

// DefaultConfig returns a Config wired for launching on the local machine.
func DefaultConfig() Config {
	return Config{
		BarrierName: barrier.DefaultName,
		Scheduler:   scheduler.New(scheduler.DefaultConfig()),
		Barriers:    barrier.NewShmFactory(),
		Spawner:     forkExecSpawner{},
	}
}

// Launcher drives one launch attempt. It is single threaded and strictly
// sequential; concurrency exists only across the spawned processes.
type Launcher struct {
	config     Config
	killCohort func() error
}

// New returns a Launcher instance.
func New(config Config) *Launcher {
	return &Launcher{
		config:     config,
		killCohort: defaultKillCohort,
	}
}

// Run performs one launch attempt for the taskset named by base. On success
// it returns after every spawned task has terminated. On failure it returns
// an error carrying a distinguishing exit code; failures after the first task
// was spawned additionally tear the whole cohort down.
func (l *Launcher) Run(base string) error {
	ref := schedule.NewTaskSetReference(base)

	verdict, err := schedule.Freshness(ref)
	if err != nil {
		return withCode(CodeFileOpen, err)
	}

	if verdict.NeedsRegeneration() {
		log.Infof("Scheduling taskset %s ...", base)
		if _, err := l.config.Scheduler.Regenerate(ref); err != nil {
			return withCode(CodeForkExec, err)
		}
		// The schedule cannot be trusted before the scheduler child is gone.
		Reap()
	}

	doc, err := schedule.ParseFile(ref.SchedulePath())
	if err != nil {
		return withCode(scheduleCode(err), err)
	}

	switch doc.Schedulability {
	case schedule.Schedulable:
		log.Infof("Taskset is schedulable: %s", base)
	case schedule.PossiblyUnschedulable:
		log.Warnf("Taskset may not be schedulable: %s", base)
	}

	if log.IsLevelEnabled(log.InfoLevel) {
		errutil.Check(visualization.DrawTable(visualization.ScheduleTable(doc)))
	}

	if l.config.Recorder != nil {
		if err := l.config.Recorder.RecordLaunch(base, doc); err != nil {
			log.Warnf("Could not record launch metadata: %v", err)
		}
	}

	// The barrier must exist, correctly sized, before the first fork. A
	// cohort must never be partially started without its barrier.
	if _, err := l.config.Barriers.Create(l.config.BarrierName, len(doc.Tasks)); err != nil {
		return withCode(CodeBarrierInit, errors.Wrap(err, "failed to initialize barrier"))
	}

	for _, task := range doc.Tasks {
		argv := taskArgv(task, l.config.BarrierName)

		log.Infof("Forking and exec-ing task %s", task.Program)

		if _, err := l.config.Spawner.Spawn(task.Program, argv); err != nil {
			l.terminateCohort(err)
			return withCode(CodeForkExec, err)
		}
	}

	log.Infof("All tasks started")

	Reap()

	log.Infof("All tasks finished")

	return nil
}

// terminateCohort is the strict, cohort-wide abort path: already spawned
// tasks must not run without their full, barrier-synchronized cohort.
func (l *Launcher) terminateCohort(cause error) {
	log.Errorf("Tearing down the cohort: %v", cause)
	if err := l.killCohort(); err != nil {
		log.Errorf("Cohort teardown failed: %v", err)
	}
}

// defaultKillCohort broadcasts SIGTERM to the launcher's entire process
// group, reaching every spawned task and any scheduler child still alive.
// The launcher starts ignoring SIGTERM first so it survives its own
// broadcast long enough to report the distinguishing exit code.
func defaultKillCohort() error {
	signal.Ignore(syscall.SIGTERM)
	return syscall.Kill(0, syscall.SIGTERM)
}
