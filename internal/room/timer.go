package room

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// TimerHandle is a cancellable handle to a scheduled callback. Every
// scheduling site must store the handle on the Room or Player that owns it,
// and every callback must re-check, under the room lock, that its handle is
// still the stored one before mutating anything. Cancel is idempotent and
// safe on a nil handle.
type TimerHandle struct {
	stop chan struct{}
	once sync.Once
}

func (h *TimerHandle) Cancel() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		close(h.stop)
	})
}

// After schedules fn to run once after d. The callback receives its own
// handle so it can verify it is still the live timer for whatever condition
// justified scheduling it.
func After(clock clockwork.Clock, d time.Duration, fn func(h *TimerHandle)) *TimerHandle {
	h := &TimerHandle{stop: make(chan struct{})}
	t := clock.NewTimer(d)

	go func() {
		select {
		case <-t.Chan():
			// A Cancel that raced the tick still wins. Without this check
			// both select cases can be ready at once and the runtime picks
			// one at random.
			select {
			case <-h.stop:
				return
			default:
			}
			fn(h)
		case <-h.stop:
			stopAndDrainTimer(t)
		}
	}()

	return h
}

// EverySecond schedules fn once per second until it returns false or the
// handle is cancelled.
func EverySecond(clock clockwork.Clock, fn func(h *TimerHandle) bool) *TimerHandle {
	h := &TimerHandle{stop: make(chan struct{})}
	t := clock.NewTicker(time.Second)

	go func() {
		defer t.Stop()
		for {
			select {
			case <-t.Chan():
				select {
				case <-h.stop:
					return
				default:
				}
				if !fn(h) {
					return
				}
			case <-h.stop:
				return
			}
		}
	}()

	return h
}

// stopAndDrainTimer safely stops a timer and drains its channel, following
// the pattern recommended in the time.Timer.Stop documentation.
func stopAndDrainTimer(t clockwork.Timer) {
	if !t.Stop() {
		select {
		case <-t.Chan():
		default:
		}
	}
}
