package launcher

import (
	"github.com/pkg/errors"

	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/schedule"
)

// Code is the launcher's process exit code. The values are distinct so
// operators and wrapping scripts can tell the failure classes apart.
type Code int

const (
	// CodeSuccess means every declared task was spawned and has terminated.
	CodeSuccess Code = iota
	// CodeFileOpen means a required file was absent or unreadable.
	CodeFileOpen
	// CodeFileParse means the schedule violated its structural grammar.
	CodeFileParse
	// CodeUnschedulable means the scheduler declared a verdict of two or more.
	CodeUnschedulable
	// CodeForkExec means a child process could not be created or could not
	// begin executing its program image.
	CodeForkExec
	// CodeBarrierInit means the barrier could not be created at the required size.
	CodeBarrierInit
	// CodeArgument means the command line arity was wrong.
	CodeArgument
)

// codedError attaches an exit code to an underlying error. It exposes Cause
// so pkg/errors can keep unwrapping through it.
type codedError struct {
	code Code
	err  error
}

func (e *codedError) Error() string {
	return e.err.Error()
}

func (e *codedError) Cause() error {
	return e.err
}

func withCode(code Code, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

// ExitCodeOf maps an error returned by Run to the launcher exit code. Errors
// that carry no code were raised before the launch began (flag or argument
// handling) and are reported as argument errors.
func ExitCodeOf(err error) Code {
	if err == nil {
		return CodeSuccess
	}

	for e := err; e != nil; {
		if coded, ok := e.(*codedError); ok {
			return coded.code
		}
		causer, ok := e.(interface{ Cause() error })
		if !ok {
			break
		}
		e = causer.Cause()
	}

	return CodeArgument
}

// scheduleCode distinguishes the three failure classes of schedule parsing.
func scheduleCode(err error) Code {
	switch errors.Cause(err).(type) {
	case *schedule.ParseError:
		return CodeFileParse
	case *schedule.UnschedulableError:
		return CodeUnschedulable
	default:
		return CodeFileOpen
	}
}
