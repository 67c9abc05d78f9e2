//go:build unix

package lock

import (
	"os"
	"syscall"
)

// defaultProcessAlive probes liveness with signal 0, which performs the
// permission and existence checks without delivering a signal. EPERM means
// the process exists but belongs to another user, so it counts as alive.
func defaultProcessAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return err == syscall.EPERM
}
