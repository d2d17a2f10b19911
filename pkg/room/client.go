package room

import (
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"holdemtable-server/pkg/table"
)

// Client is a client connected to the server via websockets
type Client struct {
	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// send is a channel for sending messages to the client
	send chan interface{}

	// Close is a channel for closing the client
	Close chan string

	// CloseError contains the reason why the connection was closed
	CloseError error

	dealer *Dealer

	player *table.Player
}

// NewClient returns a new client object
// The client has no player until it joins the table.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		send:  make(chan interface{}, 256),
		Close: make(chan string),
		Conn:  conn,
	}
}

// Send sends a message to the web client. It returns false if the client's
// buffer is full and the message was dropped.
func (c *Client) Send(msg interface{}) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// SendChan returns a read-only channel
func (c *Client) SendChan() <-chan interface{} {
	return c.send
}

// Player returns the player this client joined as, or nil
func (c *Client) Player() *table.Player {
	return c.player
}

// String returns a traceable identifier for the client
func (c *Client) String() string {
	if p := c.player; p != nil {
		return p.Name + ":" + p.ID
	}

	return "anonymous"
}

// ReceivedMessage is called when the server receives a message from a connected client
func (c *Client) ReceivedMessage(msg *PayloadIn) {
	if c.dealer == nil {
		logrus.WithField("msg", msg).Warn("received message, but dealer not found")
		return
	}

	c.dealer.ReceivedMessage(c, msg)
}
