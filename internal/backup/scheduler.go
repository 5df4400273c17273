package backup

import (
	"context"
	"errors"
	"time"
)

// ErrSchedulerRunning is returned when RunScheduler is already active.
var ErrSchedulerRunning = errors.New("auto-backup scheduler already running")

// RunScheduler performs a due backup right away and then keeps a timer
// armed for the next one until ctx is cancelled. Each attempt finishes
// before the timer is re-armed. After a failed attempt the next one waits
// at least the service's retry delay.
func (s *Service) RunScheduler(ctx context.Context) error {
	if !s.scheduling.TryLock() {
		return ErrSchedulerRunning
	}
	defer s.scheduling.Unlock()

	var floor time.Duration
	if !s.autoBackup(ctx) {
		floor = s.retry
	}

	for {
		st := s.AuthState()
		var t *time.Timer
		var fire <-chan time.Time
		if st.AutoBackupEnabled && st.Authenticated() {
			wait := max(floor, st.NextAutoBackup(s.now()))
			log.Debug("Next auto-backup scheduled", "in", wait)
			t = time.NewTimer(wait)
			fire = t.C
		}

		select {
		case <-ctx.Done():
			if t != nil {
				t.Stop()
			}
			return ctx.Err()
		case <-s.reschedule:
			if t != nil {
				t.Stop()
			}
			floor = 0
		case <-fire:
			floor = 0
			if !s.autoBackup(ctx) {
				floor = s.retry
			}
		}
	}
}

// autoBackup backs up when one is due. It reports false only when an
// attempt was made and failed.
func (s *Service) autoBackup(ctx context.Context) bool {
	if !s.AuthState().ShouldAutoBackup(s.now()) {
		return true
	}
	log.Info("Running scheduled backup")
	if _, err := s.Backup(ctx); err != nil {
		if errors.Is(err, ErrBusy) {
			return true
		}
		log.Warn("Scheduled backup failed", "error", err)
		return false
	}
	return true
}
