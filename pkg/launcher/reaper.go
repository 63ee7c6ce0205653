package launcher

import (
	"syscall"

	log "github.com/sirupsen/logrus"
)

// Reap blocks until the kernel reports that no child processes remain,
// draining every child the launcher has spawned regardless of role. There is
// no timeout: the launcher's own termination is meant to coincide with the
// termination of everything it started.
func Reap() {
	for {
		var status syscall.WaitStatus
		pid, err := syscall.Wait4(-1, &status, 0, nil)
		switch err {
		case nil:
			log.Debugf("Reaped child %d (status %d)", pid, status.ExitStatus())
		case syscall.EINTR:
			continue
		case syscall.ECHILD:
			return
		default:
			log.Debugf("Waiting for children failed: %v", err)
			return
		}
	}
}
