package auth

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Timer schedules the automatic logout of the current session.
type Timer interface {
	// Arm schedules expiry after d, replacing any pending schedule. The
	// returned id identifies the schedule and is passed to the callback.
	Arm(d time.Duration) uint64

	// Disarm cancels the pending schedule, if any.
	Disarm()
}

// ExpiryTimer is a single slot timer. At most one expiry callback is pending.
type ExpiryTimer struct {
	mu     sync.Mutex
	timer  *time.Timer
	seq    uint64
	onFire func(schedule uint64)
}

var _ Timer = (*ExpiryTimer)(nil)

// NewExpiryTimer creates a timer that calls onFire with the schedule id when
// an armed schedule elapses.
func NewExpiryTimer(onFire func(schedule uint64)) *ExpiryTimer {
	return &ExpiryTimer{onFire: onFire}
}

// Arm starts or restarts the expiry schedule.
// A non-positive duration fires straight away.
func (t *ExpiryTimer) Arm(d time.Duration) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	if d < 0 {
		d = 0
	}

	t.seq++
	seq := t.seq

	log.Debug().Dur("duration", d).Uint64("seq", seq).Msg("expiry timer armed")

	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		// replaced or disarmed after the runtime started this callback
		if t.seq != seq || t.timer == nil {
			t.mu.Unlock()
			return
		}
		t.timer = nil
		t.mu.Unlock()

		log.Debug().Uint64("seq", seq).Msg("expiry timer fired")

		t.onFire(seq)
	})

	return seq
}

// Disarm cancels any pending expiry. Safe to call when nothing is armed.
func (t *ExpiryTimer) Disarm() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		log.Debug().Uint64("seq", t.seq).Msg("expiry timer disarmed")
	}

	t.stopLocked()
}

// Armed reports whether an expiry is pending.
func (t *ExpiryTimer) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.timer != nil
}

// stopLocked must be called with the lock held.
func (t *ExpiryTimer) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.seq++
}
