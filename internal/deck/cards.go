package deck

import (
	"fmt"
	"math/rand"
)

// Card is one shedding-game card. Colors and values travel as strings on
// the wire. ActiveColor is set only on a wild card after it is played, and
// overrides Color for legality checks while it sits on top of the discard.
type Card struct {
	Color       string `json:"color"`
	Value       string `json:"value"`
	ActiveColor string `json:"activeColor,omitempty"`
}

const (
	ColorRed    = "red"
	ColorYellow = "yellow"
	ColorGreen  = "green"
	ColorBlue   = "blue"
	ColorWild   = "wild"
)

const (
	ValueSkip         = "skip"
	ValueReverse      = "reverse"
	ValueDrawTwo      = "draw2"
	ValueWild         = "wild"
	ValueWildDrawFour = "wild-draw4"
)

// Colors are the four playable colors, excluding wild.
var Colors = []string{ColorRed, ColorYellow, ColorGreen, ColorBlue}

func (c Card) IsWild() bool {
	return c.Color == ColorWild
}

// IsDraw reports whether the card adds to the pending draw stack.
func (c Card) IsDraw() bool {
	return c.Value == ValueDrawTwo || c.Value == ValueWildDrawFour
}

// IsAction reports whether the card has a turn effect beyond matching.
func (c Card) IsAction() bool {
	switch c.Value {
	case ValueSkip, ValueReverse, ValueDrawTwo:
		return true
	}
	return false
}

func (c Card) String() string {
	if c.IsWild() {
		return c.Value
	}
	return fmt.Sprintf("%s %s", c.Color, c.Value)
}

// NewSheddingDeck builds the full shuffled 108-card deck: per color one 0
// and two each of 1-9, skip, reverse, and draw-two, plus four wilds and
// four wild-draw-fours.
func NewSheddingDeck() []Card {
	cards := make([]Card, 0, 108)

	values := []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", ValueSkip, ValueReverse, ValueDrawTwo}
	for _, color := range Colors {
		cards = append(cards, Card{Color: color, Value: "0"})
		for i := 0; i < 2; i++ {
			for _, v := range values {
				cards = append(cards, Card{Color: color, Value: v})
			}
		}
	}

	for i := 0; i < 4; i++ {
		cards = append(cards, Card{Color: ColorWild, Value: ValueWild})
		cards = append(cards, Card{Color: ColorWild, Value: ValueWildDrawFour})
	}

	Shuffle(cards)
	return cards
}

// Shuffle shuffles cards in place.
func Shuffle(cards []Card) {
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
