package table

// action kinds accepted from clients
const (
	ActionFold  = "fold"
	ActionCheck = "check"
	ActionCall  = "call"
	ActionRaise = "raise"
)

// Action applies a player action to the active round. Everything is validated
// before any state is touched: a rejected action leaves the round, the pot and
// the running turn countdown exactly as they were.
func (t *Table) Action(playerID, kind string, amount int) error {
	r := t.round
	if r == nil {
		return ErrNoGameInProgress
	}

	actor, ok := t.currentActor()
	if !ok || actor.ID != playerID {
		return ErrNotYourTurn
	}

	switch kind {
	case ActionFold, ActionCheck, ActionCall:
	case ActionRaise:
		if amount < r.minRaise {
			return ErrInvalidRaiseAmount
		}
	default:
		return ErrUnknownAction
	}

	// only a valid action claims the turn and cancels the countdown
	t.sched.cancel()

	switch kind {
	case ActionFold:
		actor.folded = true
		t.logf([]string{actor.ID}, "%s folds", actor.Name)

		if len(t.contestingPlayers()) <= 1 {
			t.settleEarly()
			t.broadcastState()
			return nil
		}

	case ActionCheck, ActionCall:
		toCall := r.currentBet - actor.bet
		if toCall < 0 {
			toCall = 0
		}

		// a short stack pays what it has; the call stands as an implicit
		// all-in and no side pot is created
		paid := actor.pay(toCall)
		r.pot += paid

		if paid > 0 {
			t.emitter.Broadcast(newCollectResponse(actor.ID, paid))
			t.logf([]string{actor.ID}, "%s calls %d", actor.Name, paid)
		} else {
			t.logf([]string{actor.ID}, "%s checks", actor.Name)
		}

		r.actionCount++

	case ActionRaise:
		toCall := r.currentBet - actor.bet
		if toCall < 0 {
			toCall = 0
		}

		// the commitment is capped at the stack. The increment is not
		// re-validated against the cap, so an all-in raise may land below
		// the nominal minimum.
		prevBet := r.currentBet
		paid := actor.pay(toCall + amount)
		r.pot += paid
		r.currentBet = actor.bet
		if applied := actor.bet - prevBet; applied > 0 {
			r.minRaise = applied
		}

		t.emitter.Broadcast(newCollectResponse(actor.ID, paid))
		t.logf([]string{actor.ID}, "%s raises to %d", actor.Name, actor.bet)

		r.actionCount++
	}

	t.advanceAfterAction()
	t.broadcastState()
	return nil
}
