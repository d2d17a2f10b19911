package room

import (
	"sync"

	"github.com/sirupsen/logrus"

	"holdemtable-server/internal/jwt"
	"holdemtable-server/internal/util"
	"holdemtable-server/pkg/table"
)

// logCap is how many table-log messages are kept for replay to new connections
const logCap = 25

// Dealer owns the table and its run loop. Every table mutation and every
// outbound event happens on the run loop, so the table itself never locks.
type Dealer struct {
	logger  logrus.FieldLogger
	table   *table.Table
	clients map[*Client]bool
	lock    sync.RWMutex

	execInRunLoop chan func()
	connect       chan *Client
	disconnect    chan *Client
	close         chan bool

	logMessages []*table.Response
}

// NewDealer creates a new dealer and its table. The dealer installs itself as
// the table's emitter and dispatcher; the remaining config fields pass
// through, so tests can inject a mock clock and a deck seed.
func NewDealer(logger logrus.FieldLogger, cfg table.Config) *Dealer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	d := &Dealer{
		logger:        logger,
		clients:       make(map[*Client]bool),
		execInRunLoop: make(chan func(), 256),
		connect:       make(chan *Client, 256),
		disconnect:    make(chan *Client, 256),
		close:         make(chan bool),
		logMessages:   make([]*table.Response, 0, logCap),
	}

	cfg.Logger = logger
	cfg.Emitter = d
	cfg.Dispatch = d.Exec
	d.table = table.New(cfg)

	return d
}

// Clients will return a slice of connected (at the time) clients
func (d *Dealer) Clients() []*Client {
	d.lock.RLock()
	defer d.lock.RUnlock()

	clients := make([]*Client, 0, len(d.clients))
	for client := range d.clients {
		clients = append(clients, client)
	}

	return clients
}

// StartShift starts the run loop
func (d *Dealer) StartShift() {
	go d.runLoop()
}

// EndShift is called when the dealer is no longer needed
func (d *Dealer) EndShift() {
	close(d.close)
}

// Exec schedules fn on the run loop
// Turn timers expire through here, so they are serialized with client messages.
func (d *Dealer) Exec(fn func()) {
	d.execInRunLoop <- fn
}

func (d *Dealer) runLoop() {
	d.logger.Debug("creating dealer run loop")
	for {
		select {
		case fn := <-d.execInRunLoop:
			fn()
		case client := <-d.connect:
			d.handleConnect(client)
		case client := <-d.disconnect:
			d.handleDisconnect(client)
		case <-d.close:
			d.logger.Debug("terminating dealer run loop")
			return
		}
	}
}

// AddClient adds a client
// This method must return quickly
func (d *Dealer) AddClient(client *Client) {
	d.lock.Lock()
	client.dealer = d
	d.clients[client] = true
	d.lock.Unlock()

	d.connect <- client
}

// RemoveClient removes a client
// This method must return quickly
func (d *Dealer) RemoveClient(client *Client) {
	d.lock.Lock()
	delete(d.clients, client)
	d.lock.Unlock()

	d.disconnect <- client
}

// ReceivedMessage is called when a client sends a message to the server
func (d *Dealer) ReceivedMessage(c *Client, msg *PayloadIn) {
	d.execInRunLoop <- func() {
		d.handleMessage(c, msg)
	}
}

// Broadcast sends the response to every connected client. Part of the
// table.Emitter contract; must only be called from the run loop.
func (d *Dealer) Broadcast(res *table.Response) {
	if res.Key == "log" {
		d.appendLog(res)
	}

	for _, client := range d.Clients() {
		if !client.Send(res) {
			d.logger.WithField("client", client.String()).Warn("send buffer full, dropping message")
		}
	}
}

// SendTo sends the response to every connection the player owns. Part of the
// table.Emitter contract; must only be called from the run loop.
func (d *Dealer) SendTo(playerID string, res *table.Response) {
	for _, client := range d.Clients() {
		if client.player != nil && client.player.ID == playerID {
			if !client.Send(res) {
				d.logger.WithField("client", client.String()).Warn("send buffer full, dropping message")
			}
		}
	}
}

func (d *Dealer) appendLog(res *table.Response) {
	d.logMessages = append(d.logMessages, res)
	if len(d.logMessages) > logCap {
		d.logMessages = d.logMessages[len(d.logMessages)-logCap:]
	}
}

// NOTE: must only be called from the run loop
func (d *Dealer) handleConnect(client *Client) {
	for _, res := range d.logMessages {
		client.Send(res)
	}

	client.Send(&table.Response{
		Key:  "state",
		Data: d.table.Snapshot(),
	})
}

// NOTE: must only be called from the run loop
// If the last connection of the acting player dropped, the table folds them.
func (d *Dealer) handleDisconnect(client *Client) {
	p := client.player
	if p == nil {
		return
	}

	for _, other := range d.Clients() {
		if other.player != nil && other.player.ID == p.ID {
			return
		}
	}

	d.logger.WithField("player", p.ID).Debug("last connection dropped")
	d.table.Disconnected(p.ID)
}

// NOTE: must only be called from the run loop
func (d *Dealer) handleMessage(c *Client, msg *PayloadIn) {
	switch msg.Action {
	case "join":
		d.handleJoin(c, msg)
	case "takeSeat":
		if !requirePlayer(c, msg) {
			return
		}

		if msg.Seat == nil {
			c.Send(table.NewErrorResponse(msg.Context, table.UserError("seat is required")))
			return
		}

		if err := d.table.SeatPlayer(c.player.ID, *msg.Seat); err != nil {
			c.Send(table.NewErrorResponse(msg.Context, err))
			return
		}

		c.Send(table.OK(msg.Context))
		d.table.BroadcastState()
	case "leaveSeat":
		if !requirePlayer(c, msg) {
			return
		}

		if err := d.table.UnseatPlayer(c.player.ID); err != nil {
			c.Send(table.NewErrorResponse(msg.Context, err))
			return
		}

		c.Send(table.OK(msg.Context))
		d.table.BroadcastState()
	case "startGame":
		if !requirePlayer(c, msg) {
			return
		}

		if err := d.table.StartHand(); err != nil {
			c.Send(table.NewErrorResponse(msg.Context, err))
			return
		}

		c.Send(table.OK(msg.Context))
	case "action":
		if !requirePlayer(c, msg) {
			return
		}

		if err := d.table.Action(c.player.ID, msg.Kind, msg.Amount); err != nil {
			c.Send(table.NewErrorResponse(msg.Context, err))
			return
		}

		c.Send(table.OK(msg.Context))
	default:
		d.logger.WithField("action", msg.Action).Warn("unknown message")
	}
}

type joinedData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

// NOTE: must only be called from the run loop
func (d *Dealer) handleJoin(c *Client, msg *PayloadIn) {
	if c.player != nil {
		c.Send(table.NewErrorResponse(msg.Context, table.UserError("you already joined")))
		return
	}

	if msg.Token != "" {
		d.handleRejoin(c, msg)
		return
	}

	name := msg.Name
	if name == "" {
		name = util.GetRandomName()
	}

	p := d.table.Join(name)
	c.player = p

	token, err := jwt.Sign(p.ID)
	if err != nil {
		d.logger.WithError(err).Error("could not sign reconnect token")
	}

	c.Send(&table.Response{
		Key:     "joined",
		Context: msg.Context,
		Data:    joinedData{ID: p.ID, Name: p.Name, Token: token},
	})

	d.table.BroadcastState()
}

// NOTE: must only be called from the run loop
// A valid token re-attaches the connection to its player, including the hole
// cards of a hand in progress.
func (d *Dealer) handleRejoin(c *Client, msg *PayloadIn) {
	playerID, err := jwt.ValidPlayerID(msg.Token)
	if err != nil {
		d.logger.WithError(err).Debug("rejected reconnect token")
		c.Send(table.NewErrorResponse(msg.Context, table.UserError("invalid reconnect token")))
		return
	}

	p, ok := d.table.PlayerByID(playerID)
	if !ok {
		c.Send(table.NewErrorResponse(msg.Context, table.UserError("unknown player")))
		return
	}

	c.player = p
	c.Send(&table.Response{
		Key:     "joined",
		Context: msg.Context,
		Data:    joinedData{ID: p.ID, Name: p.Name, Token: msg.Token},
	})

	d.table.ResendHand(p.ID)
	c.Send(&table.Response{
		Key:  "state",
		Data: d.table.Snapshot(),
	})
}

func requirePlayer(c *Client, msg *PayloadIn) bool {
	if c.player == nil {
		c.Send(table.NewErrorResponse(msg.Context, table.UserError("you must join first")))
		return false
	}

	return true
}
