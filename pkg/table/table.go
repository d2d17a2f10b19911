// Package table implements the single shared Texas Hold'em table: the player
// registry and seats, the per-hand round state machine, the turn scheduler,
// and settlement. All methods must be called from one goroutine (the room run
// loop); nothing here locks.
package table

import (
	"math"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"holdemtable-server/internal/rng"
	"holdemtable-server/pkg/deck"
)

// NumSeats is the fixed number of seats at the table
const NumSeats = 6

// Options configures the stakes and pacing of the table
type Options struct {
	SmallBlind    int
	BigBlind      int
	StartingChips int
	TurnTimeout   time.Duration
}

// DefaultOptions returns the default table options
func DefaultOptions() Options {
	return Options{
		SmallBlind:    10,
		BigBlind:      20,
		StartingChips: 1000,
		TurnTimeout:   time.Second * 20,
	}
}

// Config wires the table into its host. Zero-value fields get production
// defaults; tests inject a mock clock, a synchronous dispatcher, a recording
// emitter and a deck seed.
type Config struct {
	Options  Options
	Logger   logrus.FieldLogger
	Clock    quartz.Clock
	Emitter  Emitter
	Rand     rng.Generator
	Dispatch func(func())

	// DeckSeed pins the shuffle when non-zero. Tests only.
	DeckSeed int64
}

// Table is the authoritative registry of players and seats and the owner of
// the one active round
type Table struct {
	opts    Options
	logger  logrus.FieldLogger
	clock   quartz.Clock
	emitter Emitter

	seats   [NumSeats]string
	players map[string]*Player
	button  int
	round   *Round
	sched   *turnScheduler

	rand     rng.Generator
	deckSeed int64
}

// New returns a new table with no players
func New(cfg Config) *Table {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}

	if cfg.Emitter == nil {
		cfg.Emitter = noopEmitter{}
	}

	if cfg.Rand == nil {
		cfg.Rand = rng.Crypto{}
	}

	if cfg.Dispatch == nil {
		cfg.Dispatch = func(fn func()) { fn() }
	}

	if cfg.Options == (Options{}) {
		cfg.Options = DefaultOptions()
	}

	t := &Table{
		opts:     cfg.Options,
		logger:   cfg.Logger,
		clock:    cfg.Clock,
		emitter:  cfg.Emitter,
		players:  make(map[string]*Player),
		button:   cfg.Rand.Intn(NumSeats),
		rand:     cfg.Rand,
		deckSeed: cfg.DeckSeed,
	}

	t.sched = newTurnScheduler(cfg.Clock, cfg.Dispatch, t.HandleTimeout)
	return t
}

// Join registers a new player with the starting stack. The player is not
// seated yet.
func (t *Table) Join(name string) *Player {
	p := &Player{
		ID:    uuid.New().String(),
		Name:  name,
		Chips: t.opts.StartingChips,
		Seat:  -1,
	}

	t.players[p.ID] = p
	t.logger.WithFields(logrus.Fields{
		"player": p.ID,
		"name":   name,
	}).Info("player joined")

	return p
}

// PlayerByID returns a previously registered player, for reconnects
func (t *Table) PlayerByID(id string) (*Player, bool) {
	p, ok := t.players[id]
	return p, ok
}

// SeatPlayer assigns the player to the seat. Seating is rejected while a
// round is active.
func (t *Table) SeatPlayer(playerID string, seat int) error {
	if t.round != nil {
		return ErrGameInProgress
	}

	if seat < 0 || seat >= NumSeats {
		return UserError("no such seat")
	}

	p, ok := t.players[playerID]
	if !ok {
		return UserError("unknown player")
	}

	if p.Seat >= 0 {
		return ErrAlreadySeated
	}

	if t.seats[seat] != "" {
		return ErrSeatTaken
	}

	t.seats[seat] = playerID
	p.Seat = seat
	p.active = true
	p.folded = false

	t.logf([]string{p.ID}, "%s took seat %d", p.Name, seat)
	return nil
}

// UnseatPlayer frees the player's seat. A player who leaves their seat is
// never dealt in until they sit again.
func (t *Table) UnseatPlayer(playerID string) error {
	if t.round != nil {
		return ErrGameInProgress
	}

	p, ok := t.players[playerID]
	if !ok {
		return UserError("unknown player")
	}

	if p.Seat < 0 {
		return UserError("you are not seated")
	}

	t.seats[p.Seat] = ""
	t.logf([]string{p.ID}, "%s left seat %d", p.Name, p.Seat)

	p.Seat = -1
	p.active = false
	p.folded = true
	return nil
}

// StartHand begins a new hand: builds the turn order, shuffles and deals,
// posts the blinds and opens the first turn. It is a no-op when a round is
// already active or fewer than two seats are occupied.
func (t *Table) StartHand() error {
	if t.round != nil {
		t.logger.Debug("start requested with a hand in progress")
		return nil
	}

	order := t.buildSeatOrder()
	if len(order) < 2 {
		t.logger.Debug("start requested without enough seated players")
		return nil
	}

	for _, id := range order {
		p := t.players[id]
		p.folded = false
		p.bet = 0
		p.hole = make(deck.Hand, 0, 2)
	}

	// the shuffle seed comes from the crypto generator unless a test pinned one
	seed := t.deckSeed
	if seed == 0 {
		seed = int64(t.rand.Intn(math.MaxInt))
	}

	r := newRound(order, t.opts.BigBlind, seed)
	if !r.deck.CanDraw(len(order) * 2) {
		return deck.ErrEndOfDeck
	}

	t.round = r

	// two full passes, in seat order
	for pass := 0; pass < 2; pass++ {
		for _, id := range order {
			card, err := r.deck.Draw()
			if err != nil {
				t.round = nil
				return err
			}

			t.players[id].hole.AddCard(card)
		}
	}

	small := t.players[order[0]]
	big := t.players[order[1]]
	r.pot += small.pay(t.opts.SmallBlind)
	r.pot += big.pay(t.opts.BigBlind)
	r.currentBet = t.opts.BigBlind

	// first action is two past the big blind. The offset is unconditional,
	// so a heads-up hand opens on the small blind.
	r.turnIndex = 2 % len(order)

	t.logger.WithFields(logrus.Fields{
		"round":    r.ID,
		"players":  len(order),
		"button":   t.button,
		"deckSeed": r.deck.GetSeed(),
	}).Info("hand started")

	t.emitter.Broadcast(&Response{Key: "gameStarted"})
	t.logf([]string{small.ID}, "%s posts the small blind (%d)", small.Name, t.opts.SmallBlind)
	t.logf([]string{big.ID}, "%s posts the big blind (%d)", big.Name, t.opts.BigBlind)

	for _, id := range order {
		t.emitter.SendTo(id, newHandResponse(t.players[id].hole))
	}

	t.beginTurn()
	t.broadcastState()
	return nil
}

// buildSeatOrder returns the active seats rotated so index 0 is the seat
// immediately after the dealer button
func (t *Table) buildSeatOrder() []string {
	order := make([]string, 0, NumSeats)
	for i := 1; i <= NumSeats; i++ {
		id := t.seats[(t.button+i)%NumSeats]
		if id == "" {
			continue
		}

		if p := t.players[id]; p.active {
			order = append(order, id)
		}
	}

	return order
}

// Disconnected handles a player's last connection dropping. Losing the acting
// player mid-turn is the same as a forced fold.
func (t *Table) Disconnected(playerID string) {
	actor, ok := t.currentActor()
	if !ok || actor.ID != playerID {
		return
	}

	t.sched.cancel()
	t.logf([]string{actor.ID}, "%s disconnected and folds", actor.Name)
	t.forceFold(actor)
	t.broadcastState()
}

// HandleTimeout is the scheduler's expiry path. A stale timer (the round
// ended, the street closed, or the turn moved on) is a guaranteed no-op.
func (t *Table) HandleTimeout(roundID string, stage Stage, turnIndex int) {
	r := t.round
	if r == nil || r.ID != roundID || r.stage != stage || r.turnIndex != turnIndex {
		t.logger.WithFields(logrus.Fields{
			"round":     roundID,
			"stage":     stage,
			"turnIndex": turnIndex,
		}).Debug("stale turn timer ignored")
		return
	}

	actor, ok := t.currentActor()
	if !ok {
		return
	}

	t.logf([]string{actor.ID}, "%s folded due to inactivity", actor.Name)
	t.forceFold(actor)
	t.broadcastState()
}

// forceFold runs the same post-action path as an explicit fold
func (t *Table) forceFold(actor *Player) {
	actor.folded = true
	if len(t.contestingPlayers()) <= 1 {
		t.settleEarly()
		return
	}

	t.advanceAfterAction()
}

// Snapshot returns the full table state for broadcast
func (t *Table) Snapshot() *State {
	players := make([]*playerJSON, 0, len(t.players))
	for _, id := range t.seats {
		if id != "" {
			players = append(players, t.players[id].publicJSON())
		}
	}

	for _, p := range t.players {
		if p.Seat < 0 {
			players = append(players, p.publicJSON())
		}
	}

	// the snapshot outlives this call on client send queues, so it must not
	// alias the live seat array
	state := &State{
		Seats:   append([]string(nil), t.seats[:]...),
		Players: players,
	}

	if r := t.round; r != nil {
		toCall := make(map[string]int, len(r.seatOrder))
		for _, id := range r.seatOrder {
			p := t.players[id]
			diff := r.currentBet - p.bet
			if diff < 0 {
				diff = 0
			}

			toCall[id] = diff
		}

		game := &GameState{
			ID:         r.ID,
			Stage:      r.stage,
			Community:  r.community,
			Pot:        r.pot,
			CurrentBet: r.currentBet,
			MinRaise:   r.minRaise,
			ToCall:     toCall,
			TurnOrder:  r.seatOrder,
		}

		if actor, ok := t.currentActor(); ok {
			game.CurrentTurn = actor.ID
			deadline := r.turnDeadline
			game.TurnDeadline = &deadline
		}

		state.Game = game
	}

	return state
}

// BroadcastState pushes a fresh snapshot to every client. The room calls this
// after registry changes it drives from inbound messages.
func (t *Table) BroadcastState() {
	t.broadcastState()
}

// ResendHand re-sends the player's hole cards privately. Used on reconnect,
// when the original hand event is long gone.
func (t *Table) ResendHand(playerID string) {
	if t.round == nil {
		return
	}

	p, ok := t.players[playerID]
	if !ok || len(p.hole) == 0 {
		return
	}

	t.emitter.SendTo(playerID, newHandResponse(p.Hole()))
}

func (t *Table) broadcastState() {
	t.emitter.Broadcast(&Response{
		Key:  "state",
		Data: t.Snapshot(),
	})
}
