package table

import (
	"holdemtable-server/pkg/deck"
)

// Player is a participant known to the table. A player survives across hands
// and across reconnects; the transport-level connection is a separate concern
// keyed by the player's ID.
type Player struct {
	ID    string
	Name  string
	Chips int

	// Seat is the assigned seat index, or -1 when unassigned
	Seat int

	hole   deck.Hand
	bet    int
	folded bool
	active bool
}

type playerJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Seat   int    `json:"seat"`
	Chips  int    `json:"chips"`
	Folded bool   `json:"folded"`
}

// pay moves up to amount chips from the player's stack into their street bet,
// returning the amount actually moved. A short stack pays what it can, which
// is how implicit all-ins happen.
func (p *Player) pay(amount int) int {
	if amount > p.Chips {
		amount = p.Chips
	}

	p.Chips -= amount
	p.bet += amount
	return amount
}

// newStreet resets the player's per-street bet
func (p *Player) newStreet() {
	p.bet = 0
}

// Hole returns the player's current hole cards
func (p *Player) Hole() deck.Hand {
	return p.hole.Clone()
}

func (p *Player) publicJSON() *playerJSON {
	return &playerJSON{
		ID:     p.ID,
		Name:   p.Name,
		Seat:   p.Seat,
		Chips:  p.Chips,
		Folded: p.folded,
	}
}
