// Package barrier manages the lifecycle of the named, process-shared,
// single-use rendezvous object that aligns cohort task start times. The wait
// and release mechanics live in the task runtime; the launcher only
// guarantees that a correctly sized barrier exists, reachable under its name,
// before any task is spawned.
package barrier

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultName is the fixed system-wide barrier identifier handed to every
// task of a launch.
const DefaultName = "RT_GOMP_CLUSTERING_BARRIER"

// Handle identifies one created barrier instance. The barrier is shared with
// the task processes by name, never by in-process reference.
type Handle struct {
	Name    string
	Parties int

	path string
}

// Factory creates named single-use barriers sized to a party count.
type Factory interface {
	Create(name string, parties int) (*Handle, error)
}

// ShmFactory materializes barriers as records under a tmpfs directory where
// every task process of the cohort can attach to them by name.
type ShmFactory struct {
	// Dir is the directory holding barrier records, /dev/shm by default.
	Dir string
}

// NewShmFactory returns a ShmFactory rooted at /dev/shm.
func NewShmFactory() ShmFactory {
	return ShmFactory{Dir: "/dev/shm"}
}

// Create materializes a barrier sized to exactly `parties` waiters. Creation
// is exclusive: a name collision fails instead of re-arming a barrier another
// launch may still be waiting on.
func (f ShmFactory) Create(name string, parties int) (*Handle, error) {
	if name == "" || strings.ContainsRune(name, filepath.Separator) {
		return nil, errors.Errorf("invalid barrier name %q", name)
	}
	if parties < 0 {
		return nil, errors.Errorf("barrier party count must not be negative, got %d", parties)
	}

	path := filepath.Join(f.Dir, name)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create barrier %q", name)
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "%d\n", parties); err != nil {
		os.Remove(path)
		return nil, errors.Wrapf(err, "cannot initialize barrier %q", name)
	}

	log.Debugf("Barrier %q initialized for %d parties", name, parties)

	return &Handle{Name: name, Parties: parties, path: path}, nil
}

// Destroy removes the barrier record. A spent single-use barrier is torn down
// by its own facility once the whole cohort has passed through; Destroy is
// for error paths where no task ever attached.
func (h *Handle) Destroy() error {
	return errors.Wrapf(os.Remove(h.path), "cannot destroy barrier %q", h.Name)
}
