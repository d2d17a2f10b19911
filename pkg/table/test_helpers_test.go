package table

import (
	"fmt"
	"testing"

	"github.com/coder/quartz"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"holdemtable-server/internal/rng"
)

// recordingEmitter captures outbound events for assertions
type recordingEmitter struct {
	broadcasts []*Response
	direct     map[string][]*Response
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{
		direct: make(map[string][]*Response),
	}
}

func (e *recordingEmitter) Broadcast(res *Response) {
	e.broadcasts = append(e.broadcasts, res)
}

func (e *recordingEmitter) SendTo(playerID string, res *Response) {
	e.direct[playerID] = append(e.direct[playerID], res)
}

func (e *recordingEmitter) lastByKey(key string) *Response {
	for i := len(e.broadcasts) - 1; i >= 0; i-- {
		if e.broadcasts[i].Key == key {
			return e.broadcasts[i]
		}
	}

	return nil
}

func (e *recordingEmitter) countByKey(key string) int {
	count := 0
	for _, res := range e.broadcasts {
		if res.Key == key {
			count++
		}
	}

	return count
}

// testTable seats numPlayers players in seats 0..numPlayers-1 with the button
// parked on the last seat, so seat 0 is first after the button
func testTable(t *testing.T, numPlayers int) (*Table, []*Player, *recordingEmitter, *quartz.Mock) {
	t.Helper()

	mClock := quartz.NewMock(t)
	emitter := newRecordingEmitter()

	tbl := New(Config{
		Logger:   logrus.StandardLogger(),
		Clock:    mClock,
		Emitter:  emitter,
		Rand:     rng.Fixed(NumSeats - 1),
		DeckSeed: 1,
	})

	players := make([]*Player, numPlayers)
	for i := range players {
		players[i] = tbl.Join(fmt.Sprintf("player-%d", i))
		assert.NoError(t, tbl.SeatPlayer(players[i].ID, i))
	}

	return tbl, players, emitter, mClock
}

// totalChips sums every stack plus the pot in flight
func totalChips(tbl *Table) int {
	total := 0
	for _, p := range tbl.players {
		total += p.Chips
	}

	if tbl.round != nil {
		total += tbl.round.pot
	}

	return total
}
