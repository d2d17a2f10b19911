package table

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"holdemtable-server/pkg/deck"
)

// Stage represents the betting street the round is on
type Stage int

// constants for Stage. A stage only ever moves forward; StageShowdown is
// terminal and settles the round.
const (
	StagePreFlop Stage = iota
	StageFlop
	StageTurn
	StageRiver
	StageShowdown
)

func (s Stage) String() string {
	switch s {
	case StagePreFlop:
		return "pre-flop"
	case StageFlop:
		return "flop"
	case StageTurn:
		return "turn"
	case StageRiver:
		return "river"
	case StageShowdown:
		return "showdown"
	}

	return ""
}

// MarshalJSON encodes JSON
func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}{
		ID:   int(s),
		Name: s.String(),
	})
}

// Round is the state of a single hand. It is created by StartHand and
// destroyed at settlement.
type Round struct {
	ID        string
	deck      *deck.Deck
	community deck.Hand

	pot        int
	currentBet int
	minRaise   int

	// actionCount tracks voluntary actions this street; only consulted
	// while currentBet == 0
	actionCount int

	// seatOrder is the hand-local rotation of seated players starting at the
	// dealer's left. It is fixed for the whole hand; folded players are
	// skipped, never removed.
	seatOrder []string
	turnIndex int

	stage        Stage
	turnDeadline time.Time
}

func newRound(seatOrder []string, bigBlind int, deckSeed int64) *Round {
	d := deck.New()
	if deckSeed != 0 {
		d.SetSeed(deckSeed)
	}
	d.Shuffle()

	return &Round{
		ID:        uuid.New().String(),
		deck:      d,
		community: make(deck.Hand, 0, 5),
		minRaise:  bigBlind,
		seatOrder: seatOrder,
		stage:     StagePreFlop,
	}
}

// contestingPlayers returns the players still in the hand, in seat order
func (t *Table) contestingPlayers() []*Player {
	r := t.round
	if r == nil {
		return nil
	}

	players := make([]*Player, 0, len(r.seatOrder))
	for _, id := range r.seatOrder {
		if p := t.players[id]; p.active && !p.folded {
			players = append(players, p)
		}
	}

	return players
}

// actorAt returns the first contesting player at or after start in seatOrder
func (t *Table) actorAt(start int) (int, *Player, bool) {
	r := t.round
	n := len(r.seatOrder)
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if p := t.players[r.seatOrder[idx]]; p.active && !p.folded {
			return idx, p, true
		}
	}

	return 0, nil, false
}

// currentActor returns the player whose turn it is
func (t *Table) currentActor() (*Player, bool) {
	r := t.round
	if r == nil || len(r.seatOrder) == 0 {
		return nil, false
	}

	p := t.players[r.seatOrder[r.turnIndex%len(r.seatOrder)]]
	if p == nil || !p.active || p.folded {
		return nil, false
	}

	return p, true
}

// beginTurn starts the countdown for the player at turnIndex. If no
// contesting player can act, the hand terminates immediately.
func (t *Table) beginTurn() {
	r := t.round
	idx, p, ok := t.actorAt(r.turnIndex)
	if !ok {
		t.settleEarly()
		return
	}

	r.turnIndex = idx
	r.turnDeadline = t.clock.Now().Add(t.opts.TurnTimeout)
	t.emitter.Broadcast(newTurnResponse(p.ID, r.turnDeadline))
	t.sched.arm(r.ID, r.stage, r.turnIndex, t.opts.TurnTimeout)
}

// advanceAfterAction moves the turn to the next contesting seat, then either
// closes the street, runs settlement, or opens the next turn
func (t *Table) advanceAfterAction() {
	r := t.round
	next, _, ok := t.actorAt(r.turnIndex + 1)
	if !ok {
		t.settleEarly()
		return
	}

	r.turnIndex = next
	if t.streetComplete() {
		t.advanceStage()
		return
	}

	t.beginTurn()
}

// streetComplete reports whether the current betting round is finished.
// With no standing bet, the street closes once every contesting player has
// had a voluntary action. With a standing bet, it closes once everyone has
// matched it or is all-in behind it.
func (t *Table) streetComplete() bool {
	r := t.round
	contesting := t.contestingPlayers()

	if r.currentBet == 0 {
		return r.actionCount >= len(contesting)
	}

	for _, p := range contesting {
		if p.bet == r.currentBet {
			continue
		}

		if p.Chips == 0 && p.bet <= r.currentBet {
			continue
		}

		return false
	}

	return true
}

// advanceStage moves to the next street, dealing community cards and
// resetting the betting state. Reaching StageShowdown settles the round.
func (t *Table) advanceStage() {
	r := t.round
	r.stage++

	if r.stage == StageShowdown {
		t.settleShowdown()
		return
	}

	r.currentBet = 0
	r.minRaise = t.opts.BigBlind
	r.actionCount = 0
	r.turnIndex = 0
	for _, id := range r.seatOrder {
		t.players[id].newStreet()
	}

	count := 1
	if r.stage == StageFlop {
		count = 3
	}

	if err := t.dealCommunity(count); err != nil {
		t.logger.WithError(err).Error("could not deal community cards")
		t.settleEarly()
		return
	}

	if r.stage == StageFlop {
		t.logf(nil, "%s dealt: %s", r.stage, r.community)
	} else {
		t.logf(nil, "%s dealt: %s", r.stage, r.community.LastCard())
	}

	// everyone else may have folded before the street opened
	if len(t.contestingPlayers()) <= 1 {
		t.settleEarly()
		return
	}

	t.beginTurn()
}

// dealCommunity burns one card, then deals count cards to the board
func (t *Table) dealCommunity(count int) error {
	r := t.round
	if _, err := r.deck.Draw(); err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		card, err := r.deck.Draw()
		if err != nil {
			return err
		}

		r.community.AddCard(card)
	}

	return nil
}
