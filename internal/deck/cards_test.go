package deck

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSheddingDeckComposition(t *testing.T) {
	assert := assert.New(t)
	cards := NewSheddingDeck()

	assert.Len(cards, 108)

	byColor := make(map[string]int)
	byValue := make(map[string]int)
	for _, c := range cards {
		byColor[c.Color]++
		byValue[c.Value]++
	}

	for _, color := range Colors {
		assert.Equal(25, byColor[color], "color %s", color)
	}
	assert.Equal(8, byColor[ColorWild])

	assert.Equal(4, byValue["0"])
	assert.Equal(8, byValue["5"])
	assert.Equal(8, byValue[ValueSkip])
	assert.Equal(8, byValue[ValueReverse])
	assert.Equal(8, byValue[ValueDrawTwo])
	assert.Equal(4, byValue[ValueWild])
	assert.Equal(4, byValue[ValueWildDrawFour])
}

func TestCardPredicates(t *testing.T) {
	assert := assert.New(t)

	assert.True(Card{Color: ColorWild, Value: ValueWild}.IsWild())
	assert.False(Card{Color: ColorRed, Value: "3"}.IsWild())

	assert.True(Card{Color: ColorRed, Value: ValueDrawTwo}.IsDraw())
	assert.True(Card{Color: ColorWild, Value: ValueWildDrawFour}.IsDraw())
	assert.False(Card{Color: ColorRed, Value: ValueSkip}.IsDraw())

	assert.True(Card{Color: ColorRed, Value: ValueSkip}.IsAction())
	assert.True(Card{Color: ColorRed, Value: ValueReverse}.IsAction())
	assert.False(Card{Color: ColorRed, Value: "7"}.IsAction())
	assert.False(Card{Color: ColorWild, Value: ValueWild}.IsAction())
}

func TestCardString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("blue 7", Card{Color: ColorBlue, Value: "7"}.String())
	assert.Equal(ValueWildDrawFour, Card{Color: ColorWild, Value: ValueWildDrawFour}.String())
}

func TestTextPileDrawNeverFails(t *testing.T) {
	assert := assert.New(t)
	source := []string{"one", "two", "three"}
	pile := NewTextPile(source)

	assert.Equal(3, pile.Remaining())

	// Draw well past the source size; the pile reshuffles itself.
	seen := make(map[string]int)
	for i := 0; i < 10; i++ {
		seen[pile.Draw()]++
	}
	assert.Equal(10, seen["one"]+seen["two"]+seen["three"])
}

func TestLoadTextsFallsBackToDefaults(t *testing.T) {
	assert := assert.New(t)

	texts := LoadTexts("", "/no/such/file")
	assert.NotEmpty(texts.Prompts)
	assert.NotEmpty(texts.Fills)
}

func TestLoadTextsReadsFiles(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	promptFile := dir + "/prompts.txt"
	assert.NoError(os.WriteFile(promptFile, []byte("Prompt A ___\n\n  Prompt B ___  \n"), 0o644))

	texts := LoadTexts(promptFile, "")
	assert.Equal([]string{"Prompt A ___", "Prompt B ___"}, texts.Prompts)
	assert.NotEmpty(texts.Fills)
}
