package room

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"holdemtable-server/internal/jwt"
	"holdemtable-server/internal/rng"
	"holdemtable-server/pkg/table"
)

// testDealer pins the dealer button to the last seat so seat 0 always acts
// first, and seeds the deck for reproducible deals
func testDealer(t *testing.T) (*Dealer, *quartz.Mock) {
	t.Helper()
	mClock := quartz.NewMock(t)
	d := NewDealer(logrus.StandardLogger(), table.Config{
		Clock:    mClock,
		Rand:     rng.Fixed(table.NumSeats - 1),
		DeckSeed: 1,
	})

	return d, mClock
}

// drainExec runs everything queued on the run loop without starting it
func drainExec(d *Dealer) {
	for {
		select {
		case fn := <-d.execInRunLoop:
			fn()
		case client := <-d.connect:
			d.handleConnect(client)
		case client := <-d.disconnect:
			d.handleDisconnect(client)
		default:
			return
		}
	}
}

func addClient(d *Dealer) *Client {
	c := NewClient(nil)
	d.AddClient(c)
	drainExec(d)
	return c
}

// received drains and returns everything queued for the client
func received(c *Client) []interface{} {
	var msgs []interface{}
	for {
		select {
		case msg := <-c.SendChan():
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func responsesByKey(msgs []interface{}, key string) []*table.Response {
	var out []*table.Response
	for _, msg := range msgs {
		if res, ok := msg.(*table.Response); ok && res.Key == key {
			out = append(out, res)
		}
	}

	return out
}

func send(d *Dealer, c *Client, msg *PayloadIn) {
	c.ReceivedMessage(msg)
	drainExec(d)
}

func join(t *testing.T, d *Dealer, c *Client, name string) *table.Player {
	t.Helper()
	send(d, c, &PayloadIn{Action: "join", Name: name})
	if c.player == nil {
		t.Fatal("join did not attach a player")
	}

	return c.player
}

func takeSeat(d *Dealer, c *Client, seat int) {
	send(d, c, &PayloadIn{Action: "takeSeat", Seat: &seat})
}

func TestDealer_joinSeatStart(t *testing.T) {
	a := assert.New(t)
	d, _ := testDealer(t)

	c1 := addClient(d)
	c2 := addClient(d)

	// every connection is greeted with a snapshot
	a.Len(responsesByKey(received(c1), "state"), 1)
	a.Len(responsesByKey(received(c2), "state"), 1)

	p1 := join(t, d, c1, "alice")
	p2 := join(t, d, c2, "bob")
	a.NotEqual(p1.ID, p2.ID)

	msgs := received(c1)
	joined := responsesByKey(msgs, "joined")
	a.Len(joined, 1)
	data := joined[0].Data.(joinedData)
	a.Equal(p1.ID, data.ID)
	a.Equal("alice", data.Name)

	playerID, err := jwt.ValidPlayerID(data.Token)
	a.NoError(err)
	a.Equal(p1.ID, playerID)

	// seating requires a join
	c3 := addClient(d)
	takeSeat(d, c3, 2)
	errs := responsesByKey(received(c3), "error")
	a.Len(errs, 1)
	a.Equal("you must join first", errs[0].Value)

	// and a seat number
	send(d, c1, &PayloadIn{Action: "takeSeat"})
	errs = responsesByKey(received(c1), "error")
	a.Len(errs, 1)
	a.Equal("seat is required", errs[0].Value)

	takeSeat(d, c1, 0)
	takeSeat(d, c2, 1)
	received(c1)
	received(c2)

	send(d, c1, &PayloadIn{Action: "startGame", Context: "start-1"})

	msgs1 := received(c1)
	msgs2 := received(c2)
	a.Len(responsesByKey(msgs1, "gameStarted"), 1)
	a.Len(responsesByKey(msgs2, "gameStarted"), 1)

	// hole cards go only to their owner
	a.Len(responsesByKey(msgs1, "hand"), 1)
	a.Len(responsesByKey(msgs2, "hand"), 1)

	ok := responsesByKey(msgs1, "status")
	a.Len(ok, 1)
	a.Equal("start-1", ok[0].Context)

	// heads-up opens on the small blind, so bob is out of turn
	send(d, c2, &PayloadIn{Action: "action", Kind: table.ActionCall})
	errs = responsesByKey(received(c2), "error")
	a.Len(errs, 1)

	send(d, c1, &PayloadIn{Action: "action", Kind: table.ActionCall, Context: "call-1"})
	msgs1 = received(c1)
	a.Len(responsesByKey(msgs1, "error"), 0)
	a.Equal("call-1", responsesByKey(msgs1, "status")[0].Context)
}

func TestDealer_joinWithoutName(t *testing.T) {
	a := assert.New(t)
	d, _ := testDealer(t)

	c := addClient(d)
	p := join(t, d, c, "")
	a.NotEmpty(p.Name)
}

func TestDealer_rejoin(t *testing.T) {
	a := assert.New(t)
	d, _ := testDealer(t)

	c1 := addClient(d)
	c2 := addClient(d)
	join(t, d, c1, "alice")
	p2 := join(t, d, c2, "bob")
	token := responsesByKey(received(c2), "joined")[0].Data.(joinedData).Token

	takeSeat(d, c1, 0)
	takeSeat(d, c2, 1)
	send(d, c1, &PayloadIn{Action: "startGame"})

	// bob is not the acting player, so dropping him folds nothing
	d.RemoveClient(c2)
	drainExec(d)
	a.Len(d.Clients(), 1)

	c3 := NewClient(nil)
	d.AddClient(c3)
	drainExec(d)

	send(d, c3, &PayloadIn{Action: "join", Token: token})
	a.Equal(p2.ID, c3.player.ID)

	msgs := received(c3)
	joined := responsesByKey(msgs, "joined")
	a.Len(joined, 1)
	a.Equal("bob", joined[0].Data.(joinedData).Name)

	// the hand in progress is re-sent privately
	a.Len(responsesByKey(msgs, "hand"), 1)
	a.NotEmpty(responsesByKey(msgs, "state"))
}

func TestDealer_rejoinBadToken(t *testing.T) {
	a := assert.New(t)
	d, _ := testDealer(t)

	c := addClient(d)
	send(d, c, &PayloadIn{Action: "join", Token: "bogus"})
	a.Nil(c.player)

	errs := responsesByKey(received(c), "error")
	a.Len(errs, 1)
	a.Equal("invalid reconnect token", errs[0].Value)
}

func TestDealer_logReplay(t *testing.T) {
	a := assert.New(t)
	d, _ := testDealer(t)

	c1 := addClient(d)
	c2 := addClient(d)
	join(t, d, c1, "alice")
	join(t, d, c2, "bob")
	takeSeat(d, c1, 0)
	takeSeat(d, c2, 1)

	// both seatings were logged; a late connection sees them
	late := addClient(d)
	msgs := received(late)
	a.Len(responsesByKey(msgs, "log"), 2)
	a.Len(responsesByKey(msgs, "state"), 1)
}

func TestDealer_logRingCap(t *testing.T) {
	a := assert.New(t)
	d, _ := testDealer(t)

	for i := 0; i < logCap+10; i++ {
		d.appendLog(&table.Response{Key: "log"})
	}

	a.Len(d.logMessages, logCap)
}

func TestDealer_disconnectFoldsActor(t *testing.T) {
	a := assert.New(t)
	d, _ := testDealer(t)

	c1 := addClient(d)
	c2 := addClient(d)
	join(t, d, c1, "alice")
	join(t, d, c2, "bob")
	takeSeat(d, c1, 0)
	takeSeat(d, c2, 1)
	send(d, c1, &PayloadIn{Action: "startGame"})
	received(c1)
	received(c2)

	// alice is acting; dropping her last connection ends the heads-up hand
	d.RemoveClient(c1)
	drainExec(d)

	msgs := received(c2)
	a.Len(responsesByKey(msgs, "gameEnded"), 1)
}

func TestDealer_timeoutThroughRunLoop(t *testing.T) {
	a := assert.New(t)
	d, mClock := testDealer(t)

	c1 := addClient(d)
	c2 := addClient(d)
	join(t, d, c1, "alice")
	join(t, d, c2, "bob")
	takeSeat(d, c1, 0)
	takeSeat(d, c2, 1)
	send(d, c1, &PayloadIn{Action: "startGame"})
	received(c1)
	received(c2)

	// expiry lands on the exec channel, then the run loop folds alice
	mClock.Advance(time.Second * 20).MustWait(context.Background())
	drainExec(d)

	msgs := received(c2)
	a.Len(responsesByKey(msgs, "gameEnded"), 1)
}

func TestDealer_runLoop(t *testing.T) {
	a := assert.New(t)
	d := NewDealer(logrus.StandardLogger(), table.Config{})
	d.StartShift()
	defer d.EndShift()

	c := NewClient(nil)
	d.AddClient(c)

	a.Eventually(func() bool {
		select {
		case msg := <-c.SendChan():
			res, ok := msg.(*table.Response)
			return ok && res.Key == "state"
		default:
			return false
		}
	}, time.Second, time.Millisecond*10)

	c.ReceivedMessage(&PayloadIn{Action: "join", Name: "carol"})
	a.Eventually(func() bool {
		select {
		case msg := <-c.SendChan():
			res, ok := msg.(*table.Response)
			return ok && res.Key == "joined"
		default:
			return false
		}
	}, time.Second, time.Millisecond*10)
}
