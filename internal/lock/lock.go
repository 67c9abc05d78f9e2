// Package lock provides cross-process mutual exclusion through PID-based
// lock files.
//
// A lock is a file created with O_CREAT|O_EXCL containing the holder's
// process ID. Creation is atomic at the filesystem level, so exactly one
// process can hold a given lock at a time. If a holder dies without
// releasing, the next acquirer detects the dead PID and reclaims the lock,
// so a crash never wedges the system.
//
// Callers pair every successful Acquire with a deferred Release:
//
//	guard, err := lock.Acquire(path, lock.DefaultMaxRetries, lock.DefaultRetryInterval)
//	if err != nil {
//		return err
//	}
//	defer guard.Release()
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/metarepo/metactl/internal/errors"
	"github.com/metarepo/metactl/internal/logging"
)

// Default retry policy used by store.Update and the CLI.
const (
	DefaultMaxRetries    = 50
	DefaultRetryInterval = 100 * time.Millisecond
)

// ProcessChecker reports whether the process with the given PID is alive.
type ProcessChecker func(pid int) bool

var (
	mu           sync.Mutex
	processAlive ProcessChecker = defaultProcessAlive
	logger                      = logging.NopLogger()
)

// SetProcessChecker replaces the liveness probe and returns the previous
// one. Tests use this to simulate dead or live lock holders
// deterministically.
func SetProcessChecker(fn ProcessChecker) ProcessChecker {
	mu.Lock()
	defer mu.Unlock()
	prev := processAlive
	if fn == nil {
		fn = defaultProcessAlive
	}
	processAlive = fn
	return prev
}

// SetLogger replaces the package logger. Passing nil restores the
// no-op logger.
func SetLogger(l *logging.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = logging.NopLogger()
	}
	logger = l
}

func checkAlive(pid int) bool {
	mu.Lock()
	fn := processAlive
	mu.Unlock()
	return fn(pid)
}

func log() *logging.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Guard represents a held lock. Release removes the lock file and is safe
// to call multiple times.
type Guard struct {
	path     string
	pid      int
	mu       sync.Mutex
	released bool
}

// Path returns the lock-file path this guard protects.
func (g *Guard) Path() string {
	return g.path
}

// Release removes the lock file. It verifies the file still contains this
// process's PID before removing, so a lock reclaimed by another process
// after a false staleness call is never deleted out from under its new
// holder. Release is idempotent.
func (g *Guard) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.released {
		return nil
	}
	g.released = true

	pid, err := readPID(g.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.NewLockError("failed to read lock file on release", err).WithPath(g.path)
	}
	if pid != g.pid {
		log().Warn("lock file no longer owned by this process",
			"lock_path", g.path, "holder_pid", pid, "our_pid", g.pid)
		return errors.NewLockError("lock held by another process", errors.ErrLockNotHeld).
			WithPath(g.path).WithPID(pid)
	}

	if err := os.Remove(g.path); err != nil && !os.IsNotExist(err) {
		return errors.NewLockError("failed to remove lock file", err).WithPath(g.path)
	}
	log().Debug("lock released", "lock_path", g.path)
	return nil
}

// Acquire takes the lock at path, retrying up to maxRetries times with
// retryInterval between attempts (maxRetries+1 tries total). A lock file
// whose recorded PID no longer maps to a live process is reclaimed without
// consuming a retry. When every attempt finds the lock held by a live
// process, Acquire returns an error wrapping errors.ErrLockBusy.
func Acquire(path string, maxRetries int, retryInterval time.Duration) (*Guard, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.NewLockError("failed to create lock directory", err).WithPath(path)
		}
	}

	pid := os.Getpid()

	for attempt := 0; attempt <= maxRetries; attempt++ {
		guard, holderPID, err := tryCreate(path, pid)
		if err != nil {
			return nil, err
		}
		if guard != nil {
			if attempt > 0 {
				log().Debug("lock acquired after contention",
					"lock_path", path, "attempts", attempt+1)
			}
			return guard, nil
		}

		if holderPID > 0 && !checkAlive(holderPID) {
			if reclaimStale(path, holderPID) {
				// Reclamation frees the lock; the retry budget is for
				// live contention only.
				attempt--
				continue
			}
		}

		if attempt < maxRetries {
			time.Sleep(retryInterval)
		}
	}

	log().Warn("lock acquisition exhausted retries",
		"lock_path", path, "attempts", maxRetries+1)
	return nil, errors.NewLockError("could not acquire lock", errors.ErrLockBusy).
		WithPath(path).WithAttempts(maxRetries + 1)
}

// tryCreate attempts one atomic creation of the lock file. On success it
// returns a Guard. If the lock exists it returns the holder's PID, or 0
// when the holder cannot be determined (unreadable or malformed file, both
// treated as an active holder).
func tryCreate(path string, pid int) (*Guard, int, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			holderPID, readErr := readPID(path)
			if readErr != nil {
				return nil, 0, nil
			}
			return nil, holderPID, nil
		}
		return nil, 0, errors.NewLockError("failed to create lock file", err).WithPath(path)
	}

	_, werr := fmt.Fprintf(f, "%d\n", pid)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		// The file stays behind without a valid PID; a later acquirer
		// will treat it as stale and reclaim it.
		err := werr
		if err == nil {
			err = cerr
		}
		return nil, 0, errors.NewLockError("failed to write PID to lock file", err).WithPath(path)
	}

	log().Debug("lock acquired", "lock_path", path, "pid", pid)
	return &Guard{path: path, pid: pid}, 0, nil
}

// reclaimStale removes a lock file held by a dead process and reports
// whether the lock is free for immediate re-creation. The PID is re-read
// immediately before removal and the file is only deleted if it still
// names the same dead holder, closing the window where another process
// replaces the lock between our staleness check and the delete. A file
// that vanished on its own counts as free too: someone else already
// cleaned it up.
func reclaimStale(path string, deadPID int) bool {
	current, err := readPID(path)
	if err != nil {
		return os.IsNotExist(err)
	}
	if current != deadPID {
		return false
	}
	if err := os.Remove(path); err != nil {
		return os.IsNotExist(err)
	}
	log().Info("reclaimed stale lock", "lock_path", path, "dead_pid", deadPID)
	return true
}

// IsStale reports whether the lock file at path is held by a process that
// no longer exists. Files that cannot be read or do not contain a valid
// PID are considered stale, since no live holder could release them.
func IsStale(path string) bool {
	pid, err := readPID(path)
	if err != nil {
		return true
	}
	return !checkAlive(pid)
}

// readPID reads and parses the PID recorded in a lock file.
func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed lock file %s: %w", path, err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("malformed lock file %s: non-positive pid %d", path, pid)
	}
	return pid, nil
}
