package table

import (
	"time"

	"github.com/coder/quartz"
)

// turnScheduler owns the single outstanding turn timer. Expiry hops onto the
// run loop via dispatch and revalidates against (roundID, stage, turnIndex)
// there, so a timer that fires after the round has moved on is a guaranteed
// no-op rather than a race. The stage is part of the key because turnIndex
// resets to 0 on every street and would otherwise collide across streets.
type turnScheduler struct {
	clock    quartz.Clock
	dispatch func(func())
	expire   func(roundID string, stage Stage, turnIndex int)
	timer    *quartz.Timer
}

func newTurnScheduler(clock quartz.Clock, dispatch func(func()), expire func(string, Stage, int)) *turnScheduler {
	return &turnScheduler{
		clock:    clock,
		dispatch: dispatch,
		expire:   expire,
	}
}

// arm starts the countdown for a turn, displacing any previous timer
func (s *turnScheduler) arm(roundID string, stage Stage, turnIndex int, d time.Duration) {
	s.cancel()
	s.timer = s.clock.AfterFunc(d, func() {
		s.dispatch(func() {
			s.expire(roundID, stage, turnIndex)
		})
	})
}

// cancel stops the outstanding timer, if any
func (s *turnScheduler) cancel() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
