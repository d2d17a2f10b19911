package table

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"holdemtable-server/pkg/deck"
	"holdemtable-server/pkg/evaluator"
)

// settleEarly awards the whole pot to the sole remaining contesting player
// and tears the round down
func (t *Table) settleEarly() {
	r := t.round
	contesting := t.contestingPlayers()

	summary := make([]GameEndSummary, 0, 1)
	if len(contesting) == 1 {
		winner := contesting[0]
		winner.Chips += r.pot
		t.emitter.Broadcast(newCollectResponse(winner.ID, r.pot))
		t.logf([]string{winner.ID}, "%s wins %d uncontested", winner.Name, r.pot)

		summary = append(summary, GameEndSummary{
			ID:          winner.ID,
			Name:        winner.Name,
			Description: fmt.Sprintf("wins %d uncontested", r.pot),
		})
	} else {
		// everyone gone; nothing to award
		t.logger.WithField("round", r.ID).Warn("hand ended with no contesting players")
	}

	t.emitter.Broadcast(newGameEndedResponse(summary))
	t.teardown()
}

// settleShowdown reveals the remaining hands, scores each against the board,
// and splits the pot among the top scorers. The split is integer floor
// division; a non-exact remainder is not awarded to anyone.
func (t *Table) settleShowdown() {
	r := t.round
	contesting := t.contestingPlayers()

	hands := make(map[string]deck.Hand, len(contesting))
	results := make(map[string]evaluator.Result, len(contesting))

	best := -1
	var winners []*Player
	for _, p := range contesting {
		hands[p.ID] = p.hole

		cards := append(p.hole.Clone(), r.community...)
		result, err := evaluator.Evaluate(cards)
		if err != nil {
			t.logger.WithError(err).WithField("player", p.ID).Error("could not evaluate hand")
			continue
		}

		results[p.ID] = result
		if result.Score > best {
			best = result.Score
			winners = []*Player{p}
		} else if result.Score == best {
			winners = append(winners, p)
		}
	}

	t.emitter.Broadcast(newRevealResponse(hands, r.community))

	share := 0
	if len(winners) > 0 {
		share = r.pot / len(winners)
	}

	isWinner := make(map[string]bool, len(winners))
	for _, winner := range winners {
		winner.Chips += share
		isWinner[winner.ID] = true
		t.emitter.Broadcast(newCollectResponse(winner.ID, share))
		t.logf([]string{winner.ID}, "%s wins %d with a %s", winner.Name, share, results[winner.ID])
	}

	summary := make([]GameEndSummary, 0, len(contesting))
	for _, p := range contesting {
		description := fmt.Sprintf("shows a %s", results[p.ID])
		if isWinner[p.ID] {
			description = fmt.Sprintf("wins %d with a %s", share, results[p.ID])
		}

		summary = append(summary, GameEndSummary{
			ID:          p.ID,
			Name:        p.Name,
			Description: description,
		})
	}

	t.emitter.Broadcast(newGameEndedResponse(summary))
	t.teardown()
}

// teardown destroys the round, rotates the button, and reopens seating
func (t *Table) teardown() {
	t.sched.cancel()

	t.logger.WithFields(logrus.Fields{
		"round":  t.round.ID,
		"button": t.button,
	}).Info("hand finished")

	t.button = (t.button + 1) % NumSeats
	t.round = nil
}
