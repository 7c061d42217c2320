package deck

import (
	"math/rand"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// Texts holds the two ordered card-text lists the trick-card game draws
// from: prompt cards (with a blank to fill) and fill-in cards.
type Texts struct {
	Prompts []string
	Fills   []string
}

var defaultFills = []string{
	"A disappointing birthday party",
	"Grandma's secret recipe",
	"An awkward high five",
	"Poor life choices",
	"The meaning of life",
	"A frozen burrito",
	"Puppies!",
	"A really cool hat",
	"Darth Vader",
	"A romantic comedy",
}

var defaultPrompts = []string{
	"What's Batman's guilty pleasure? ___",
	"What's worse than stubbing your toe? ___",
	"In 2025, the hottest trend is ___",
	"The secret ingredient is ___",
	"What ruined the family reunion? ___",
}

// LoadTexts reads prompt and fill-in card lists from newline-delimited
// files, falling back to the built-in lists for any path that is empty or
// unreadable.
func LoadTexts(promptPath, fillPath string) *Texts {
	t := &Texts{
		Prompts: defaultPrompts,
		Fills:   defaultFills,
	}

	if lines := readLines(promptPath); len(lines) > 0 {
		t.Prompts = lines
	}
	if lines := readLines(fillPath); len(lines) > 0 {
		t.Fills = lines
	}

	log.Info().Int("prompts", len(t.Prompts)).Int("fills", len(t.Fills)).Msg("card texts loaded")
	return t
}

func readLines(path string) []string {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Str("path", path).Err(err).Msg("card file missing, using defaults")
		return nil
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// TextPile is a shuffled draw pile over a fixed source list. When the pile
// runs out it reshuffles the full source, so drawing never fails.
type TextPile struct {
	cards  []string
	source []string
}

func NewTextPile(source []string) *TextPile {
	p := &TextPile{source: source}
	p.reshuffle()
	return p
}

func (p *TextPile) Draw() string {
	if len(p.cards) == 0 {
		p.reshuffle()
	}
	card := p.cards[len(p.cards)-1]
	p.cards = p.cards[:len(p.cards)-1]
	return card
}

func (p *TextPile) Remaining() int {
	return len(p.cards)
}

func (p *TextPile) reshuffle() {
	p.cards = make([]string, len(p.source))
	copy(p.cards, p.source)
	rand.Shuffle(len(p.cards), func(i, j int) {
		p.cards[i], p.cards[j] = p.cards[j], p.cards[i]
	})
}
