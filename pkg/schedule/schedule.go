// Package schedule locates, freshness-checks and parses the schedule files
// produced by the external clustering scheduler.
package schedule

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Token counts of the fixed three-line task grammar. The schedule is written
// in lockstep by the external scheduler; enforcing exact counts on both the
// too-few and too-many side catches silent schema drift between the scheduler
// and the launcher.
const (
	numTimingParams        = 11
	numSkippedTimingParams = 4
	numPartitionParams     = 3
)

// Schedulability is the scheduler's verdict from the first schedule line.
type Schedulability int

const (
	// Schedulable permits the launch without remark.
	Schedulable Schedulability = 0
	// PossiblyUnschedulable permits the launch with a warning.
	PossiblyUnschedulable Schedulability = 1
	// Unschedulable and every greater value abort the launch.
	Unschedulable Schedulability = 2
)

// Task is one launchable record built from three consecutive schedule lines.
type Task struct {
	// Program is the task's program image path and argv[0] of the spawned process.
	Program string
	// Args are the task's own arguments, forwarded verbatim.
	Args []string
	// Timing holds timing parameters five through eleven. The first four are
	// scheduler-internal and dropped at parse time.
	Timing []string
	// Partition holds the three placement parameters, forwarded as the task's
	// leading arguments.
	Partition []string
}

// Document is a parsed and structurally validated schedule.
type Document struct {
	Schedulability Schedulability
	// CoreRange is the system first/last cores line, carried through unparsed.
	CoreRange string
	// Tasks in document order. The order defines launch order.
	Tasks []Task
}

// ParseError reports a structural violation of the schedule grammar.
type ParseError struct {
	reason string
}

func (e *ParseError) Error() string {
	return e.reason
}

func parseErrorf(format string, a ...interface{}) *ParseError {
	return &ParseError{reason: fmt.Sprintf(format, a...)}
}

// UnschedulableError reports a declared schedulability verdict of two or more.
type UnschedulableError struct {
	Verdict Schedulability
}

func (e *UnschedulableError) Error() string {
	return fmt.Sprintf("taskset is not schedulable (verdict %d)", e.Verdict)
}

// ParseFile opens and parses the schedule file at path.
func ParseFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open schedule file %q", path)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads a schedule document. It either returns a fully validated
// Document or an error naming the violated structural rule; no partially
// parsed document is ever returned.
func Parse(r io.Reader) (*Document, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading schedule")
	}

	// The line count alone determines the declared task count: two header
	// lines plus exactly three lines per task.
	if len(lines) < 2 || (len(lines)-2)%3 != 0 {
		return nil, parseErrorf("invalid number of lines in schedule file: %d", len(lines))
	}
	numTasks := (len(lines) - 2) / 3

	verdict, err := parseSchedulability(lines[0])
	if err != nil {
		return nil, err
	}
	if verdict >= Unschedulable {
		return nil, &UnschedulableError{Verdict: verdict}
	}

	doc := &Document{
		Schedulability: verdict,
		CoreRange:      lines[1],
		Tasks:          make([]Task, 0, numTasks),
	}

	for t := 0; t < numTasks; t++ {
		record := lines[2+3*t : 2+3*t+3]
		task, err := parseTask(record[0], record[1], record[2])
		if err != nil {
			return nil, err
		}
		doc.Tasks = append(doc.Tasks, task)
	}

	return doc, nil
}

func parseSchedulability(line string) (Schedulability, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, parseErrorf("schedulability improperly specified")
	}

	value, err := strconv.Atoi(fields[0])
	if err != nil || value < 0 {
		return 0, parseErrorf("schedulability improperly specified: %q", fields[0])
	}

	return Schedulability(value), nil
}

func parseTask(commandLine, timingLine, partitionLine string) (Task, error) {
	command := strings.Fields(commandLine)
	if len(command) == 0 {
		return Task{}, parseErrorf("program name not provided for task")
	}
	program := command[0]

	partition := strings.Fields(partitionLine)
	if len(partition) < numPartitionParams {
		return Task{}, parseErrorf("too few partition parameters were provided for task %s", program)
	}
	if len(partition) > numPartitionParams {
		return Task{}, parseErrorf("too many partition parameters were provided for task %s", program)
	}

	timing := strings.Fields(timingLine)
	if len(timing) < numTimingParams {
		return Task{}, parseErrorf("too few timing parameters were provided for task %s", program)
	}
	if len(timing) > numTimingParams {
		return Task{}, parseErrorf("too many timing parameters were provided for task %s", program)
	}

	return Task{
		Program:   program,
		Args:      command[1:],
		Timing:    timing[numSkippedTimingParams:],
		Partition: partition,
	}, nil
}
