package table

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"holdemtable-server/pkg/deck"
)

// Emitter delivers outbound events to connected clients. The room package
// implements it; tests substitute a recorder. All calls happen on the table's
// run loop.
type Emitter interface {
	// Broadcast sends the response to every connected client
	Broadcast(res *Response)

	// SendTo sends the response only to connections owned by the player
	SendTo(playerID string, res *Response)
}

// Response is an outbound event in the shape the JS client expects
type Response struct {
	Key     string      `json:"key"`
	Value   string      `json:"value,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Context string      `json:"context,omitempty"`
}

// OK returns a generic success response
func OK(ctx ...string) *Response {
	res := &Response{
		Key:   "status",
		Value: "OK",
	}

	if len(ctx) == 1 {
		res.Context = ctx[0]
	}

	return res
}

// NewErrorResponse wraps an error for delivery to the originating client only
func NewErrorResponse(ctx string, err error) *Response {
	return &Response{
		Key:     "error",
		Value:   err.Error(),
		Context: ctx,
	}
}

// LogMessage is a table-log notice shown to every player
type LogMessage struct {
	UUID      string    `json:"uuid"`
	PlayerIDs []string  `json:"playerIds,omitempty"`
	Message   string    `json:"message"`
	Time      time.Time `json:"time"`
}

// State is the full table snapshot broadcast after every visible mutation
type State struct {
	Seats   []string      `json:"seats"`
	Players []*playerJSON `json:"players"`
	Game    *GameState    `json:"game,omitempty"`
}

// GameState is the public view of the active round
type GameState struct {
	ID           string         `json:"id"`
	Stage        Stage          `json:"stage"`
	Community    deck.Hand      `json:"community"`
	Pot          int            `json:"pot"`
	CurrentBet   int            `json:"currentBet"`
	MinRaise     int            `json:"minRaise"`
	ToCall       map[string]int `json:"toCall"`
	TurnOrder    []string       `json:"turnOrder"`
	CurrentTurn  string         `json:"currentTurn,omitempty"`
	TurnDeadline *time.Time     `json:"turnDeadline,omitempty"`
}

// GameEndSummary is one line of the end-of-hand summary
type GameEndSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type turnData struct {
	PlayerID     string    `json:"playerId"`
	TurnDeadline time.Time `json:"turnDeadline"`
}

type collectData struct {
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
}

type revealData struct {
	Hands     map[string]deck.Hand `json:"hands"`
	Community deck.Hand            `json:"community"`
}

type handData struct {
	Cards deck.Hand `json:"cards"`
}

func newTurnResponse(playerID string, deadline time.Time) *Response {
	return &Response{
		Key:  "turn",
		Data: turnData{PlayerID: playerID, TurnDeadline: deadline},
	}
}

func newCollectResponse(playerID string, amount int) *Response {
	return &Response{
		Key:  "collect",
		Data: collectData{PlayerID: playerID, Amount: amount},
	}
}

func newHandResponse(cards deck.Hand) *Response {
	return &Response{
		Key:  "hand",
		Data: handData{Cards: cards},
	}
}

func newRevealResponse(hands map[string]deck.Hand, community deck.Hand) *Response {
	return &Response{
		Key:  "reveal",
		Data: revealData{Hands: hands, Community: community},
	}
}

func newGameEndedResponse(summary []GameEndSummary) *Response {
	return &Response{
		Key:  "gameEnded",
		Data: summary,
	}
}

// logf broadcasts a table-log notice
func (t *Table) logf(playerIDs []string, format string, args ...interface{}) {
	t.emitter.Broadcast(&Response{
		Key: "log",
		Data: &LogMessage{
			UUID:      uuid.New().String(),
			PlayerIDs: playerIDs,
			Message:   fmt.Sprintf(format, args...),
			Time:      time.Now(),
		},
	})
}

// noopEmitter is the default when no emitter is configured
type noopEmitter struct{}

func (noopEmitter) Broadcast(*Response)      {}
func (noopEmitter) SendTo(string, *Response) {}
