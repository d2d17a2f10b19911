// Package evaluator ranks the best five-card poker hand available from a
// larger set of cards. Scores order hands by category and by the rank of the
// dominant group within the category. Secondary kickers are not folded into
// the score, so two hands in the same category with the same primary rank
// compare as equal even when their kickers differ.
package evaluator

import (
	"fmt"

	"holdemtable-server/pkg/deck"
)

// handSize is the number of cards in a scored poker hand
const handSize = 5

// categoryWeight spaces categories far enough apart in the score that a
// primary rank can never bridge two categories
const categoryWeight = 100

// Result is the outcome of evaluating a set of cards
type Result struct {
	Category Category `json:"category"`
	Rank     int      `json:"rank"`
	Score    int      `json:"score"`
}

func (r Result) String() string {
	return r.Category.String()
}

// Evaluate returns the best five-card hand achievable from the supplied cards.
// At least five cards must be provided; seven (two hole cards plus the board)
// is the usual case at showdown.
func Evaluate(cards deck.Hand) (Result, error) {
	n := len(cards)
	if n < handSize {
		return Result{}, fmt.Errorf("need at least %d cards, got %d", handSize, n)
	}

	best := Result{Score: -1}
	five := make(deck.Hand, handSize)
	for _, indexes := range combinations(n, handSize) {
		for i, idx := range indexes {
			five[i] = cards[idx]
		}

		if result := scoreFive(five); result.Score > best.Score {
			best = result
		}
	}

	return best, nil
}

// scoreFive scores exactly five cards
func scoreFive(five deck.Hand) Result {
	var counts [deck.Ace + 1]int
	maxRank := 0
	flush := true
	for i, card := range five {
		counts[card.Rank]++
		if card.Rank > maxRank {
			maxRank = card.Rank
		}

		if i > 0 && card.Suit != five.FirstCard().Suit {
			flush = false
		}
	}

	straightHigh := straightHighRank(counts)

	// rank groups, highest rank wins within an equal count
	var quad, trip int
	var pairs []int
	for rank := deck.Ace; rank >= 2; rank-- {
		switch counts[rank] {
		case 4:
			quad = rank
		case 3:
			trip = rank
		case 2:
			pairs = append(pairs, rank)
		}
	}

	category, primary := classify(flush, straightHigh, quad, trip, pairs, maxRank)
	return Result{
		Category: category,
		Rank:     primary,
		Score:    int(category)*categoryWeight + primary,
	}
}

func classify(flush bool, straightHigh, quad, trip int, pairs []int, maxRank int) (Category, int) {
	switch {
	case flush && straightHigh == deck.Ace:
		return RoyalFlush, deck.Ace
	case flush && straightHigh > 0:
		return StraightFlush, straightHigh
	case quad > 0:
		return FourOfAKind, quad
	case trip > 0 && len(pairs) > 0:
		return FullHouse, trip
	case flush:
		return Flush, maxRank
	case straightHigh > 0:
		return Straight, straightHigh
	case trip > 0:
		return ThreeOfAKind, trip
	case len(pairs) >= 2:
		return TwoPair, pairs[0]
	case len(pairs) == 1:
		return OnePair, pairs[0]
	}

	return HighCard, maxRank
}

// straightHighRank returns the high rank of a five-card straight, or 0 when
// the cards do not form one. The wheel (A-2-3-4-5) counts as a five-high
// straight.
func straightHighRank(counts [deck.Ace + 1]int) int {
	run := 0
	for rank := 2; rank <= deck.Ace; rank++ {
		if counts[rank] == 0 {
			run = 0
			continue
		}

		if counts[rank] > 1 {
			return 0
		}

		run++
		if run == handSize {
			return rank
		}
	}

	// wheel: the ace plays low
	if counts[deck.Ace] == 1 && counts[2] == 1 && counts[3] == 1 && counts[4] == 1 && counts[5] == 1 {
		return 5
	}

	return 0
}

// combinations returns every k-sized index subset of [0, n) in lexicographic
// order. For the 7-choose-5 showdown case this is 21 subsets, so the
// allocation is trivial.
func combinations(n, k int) [][]int {
	indexes := make([]int, k)
	for i := range indexes {
		indexes[i] = i
	}

	var out [][]int
	for {
		subset := make([]int, k)
		copy(subset, indexes)
		out = append(out, subset)

		i := k - 1
		for i >= 0 && indexes[i] == i+n-k {
			i--
		}

		if i < 0 {
			return out
		}

		indexes[i]++
		for j := i + 1; j < k; j++ {
			indexes[j] = indexes[j-1] + 1
		}
	}
}
