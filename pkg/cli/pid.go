package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gofrs/flock"

	"github.com/spuzmc/spuz-get/pkg/logging"
)

// PIDFile is an exclusive lock held for the duration of a run, so that two
// processes never write into the same state file.
type PIDFile struct {
	lock *flock.Flock
}

func NewPIDFile(path string) *PIDFile {
	return &PIDFile{lock: flock.New(path)}
}

// Acquire takes the lock, waiting for another holder to release it if needed,
// and records the current PID in the file.
func (p *PIDFile) Acquire() error {
	logger := logging.GetLogger()
	logger.Debug().Str("blocking_lock_acquire", "false").Msg("Waiting on Lock")
	locked, err := p.lock.TryLock()
	if err != nil {
		return fmt.Errorf("error locking %s: %w", p.lock.Path(), err)
	}
	if !locked {
		logger.Warn().
			Str("pid_file", p.lock.Path()).
			Str("message", "Another spuz-get process may be running against the same files").
			Msg("Waiting on Lock")
		logger.Debug().Str("blocking_lock_acquire", "true").Msg("Waiting on Lock")
		if err := p.lock.Lock(); err != nil {
			return fmt.Errorf("error locking %s: %w", p.lock.Path(), err)
		}
	}
	return os.WriteFile(p.lock.Path(), []byte(strconv.Itoa(os.Getpid())), 0644)
}

func (p *PIDFile) Release() error {
	if err := p.lock.Unlock(); err != nil {
		return fmt.Errorf("error unlocking %s: %w", p.lock.Path(), err)
	}
	return os.Remove(p.lock.Path())
}
