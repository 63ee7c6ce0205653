package schedule

import (
	"os"

	"github.com/pkg/errors"
)

const (
	// TasksetSuffix is appended to the base name to locate the taskset
	// description consumed by the external scheduler.
	TasksetSuffix = ".rtpt"
	// ScheduleSuffix is appended to the base name to locate the schedule
	// consumed by the launcher.
	ScheduleSuffix = ".rtps"
)

// TaskSetReference names one taskset/schedule artifact pair by the base name
// they share. Both derived paths differ from the base only by their suffix.
type TaskSetReference struct {
	Base string
}

// NewTaskSetReference returns a reference for the given base name.
func NewTaskSetReference(base string) TaskSetReference {
	return TaskSetReference{Base: base}
}

// TasksetPath returns the path of the taskset description file.
func (r TaskSetReference) TasksetPath() string {
	return r.Base + TasksetSuffix
}

// SchedulePath returns the path of the schedule file.
func (r TaskSetReference) SchedulePath() string {
	return r.Base + ScheduleSuffix
}

// FreshnessVerdict describes whether the schedule can be trusted as-is.
type FreshnessVerdict int

const (
	// ScheduleCurrent means the schedule exists and is not older than the taskset.
	ScheduleCurrent FreshnessVerdict = iota
	// ScheduleStale means the taskset was modified after the schedule was generated.
	ScheduleStale
	// ScheduleMissing means no schedule exists yet.
	ScheduleMissing
)

// NeedsRegeneration returns true when the schedule must be regenerated by the
// external scheduler before it can be trusted.
func (v FreshnessVerdict) NeedsRegeneration() bool {
	return v != ScheduleCurrent
}

// Freshness compares existence and modification times of the referenced
// taskset and schedule. A missing or stale schedule requires regeneration;
// regeneration without a readable taskset description is impossible and is
// reported as an error alongside the verdict.
func Freshness(ref TaskSetReference) (FreshnessVerdict, error) {
	tasksetStat, tasksetErr := os.Stat(ref.TasksetPath())
	scheduleStat, scheduleErr := os.Stat(ref.SchedulePath())

	verdict := ScheduleCurrent
	if scheduleErr != nil {
		verdict = ScheduleMissing
	} else if tasksetErr == nil && tasksetStat.ModTime().After(scheduleStat.ModTime()) {
		verdict = ScheduleStale
	}

	if verdict.NeedsRegeneration() && tasksetErr != nil {
		return verdict, errors.Wrapf(tasksetErr, "cannot open taskset file %q", ref.TasksetPath())
	}

	return verdict, nil
}
