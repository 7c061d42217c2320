package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cardrooms/internal/deck"
	"cardrooms/internal/room"
)

func testRoom(kind room.Kind, players ...*room.Player) *room.Room {
	r := &room.Room{
		Code:    "ABC123",
		Kind:    kind,
		Players: make(map[string]*room.Player),
	}
	for _, p := range players {
		r.Players[p.ID] = p
		r.Order = append(r.Order, p.ID)
	}
	return r
}

func TestBuildLobbyView(t *testing.T) {
	assert := assert.New(t)
	r := testRoom(room.KindTrick,
		&room.Player{ID: "a", Name: "Ana", Ready: true, IsHost: true},
		&room.Player{ID: "b", Name: "Ben"},
		&room.Player{ID: "c", Name: "Cal", Disconnected: true, GraceSeconds: 42},
	)

	view := buildLobbyView(r, "b")

	assert.Equal("ABC123", view.RoomCode)
	assert.Equal("trick-card", view.Kind)
	assert.Equal(3, view.MinPlayers)
	assert.Equal(1, view.ReadyCount)
	assert.False(view.Started)
	assert.False(view.CountdownActive)

	assert.Len(view.Players, 3)
	assert.True(view.Players[0].IsHost)
	assert.False(view.Players[0].IsYou)
	assert.True(view.Players[1].IsYou)
	assert.True(view.Players[2].Disconnected)
	assert.Equal(42, view.Players[2].SecondsToRejoin)
}

func TestBuildTrickViewPersonalizesHand(t *testing.T) {
	assert := assert.New(t)
	r := testRoom(room.KindTrick,
		&room.Player{ID: "a", Name: "Ana", IsJudge: true, Score: 2},
		&room.Player{ID: "b", Name: "Ben", Hand: []string{"x", "y"}, HasSubmitted: true},
		&room.Player{ID: "c", Name: "Cal"},
	)
	r.Started = true
	r.Trick.Prompt = "The prompt ___"
	r.Trick.Submissions = []room.Submission{{Card: "x", PlayerID: "b"}}

	view := buildTrickView(r, "b")

	assert.True(view.Started)
	assert.Equal("The prompt ___", view.Prompt)
	assert.Equal("a", view.JudgeID)
	assert.Equal("Ana", view.JudgeName)
	assert.False(view.AllSubmitted, "one of two submitters has submitted")
	assert.Equal([]string{"x", "y"}, view.MyHand)
	assert.True(view.HasSubmitted)
	assert.False(view.IsJudge)

	// The judge sees no hand but the judge flag.
	judgeView := buildTrickView(r, "a")
	assert.True(judgeView.IsJudge)
	assert.Empty(judgeView.MyHand)

	r.Trick.Submissions = append(r.Trick.Submissions, room.Submission{Card: "z", PlayerID: "c"})
	assert.True(buildTrickView(r, "b").AllSubmitted)
}

func TestBuildTrickViewSkipsDisconnected(t *testing.T) {
	assert := assert.New(t)
	r := testRoom(room.KindTrick,
		&room.Player{ID: "a", Name: "Ana", IsJudge: true},
		&room.Player{ID: "b", Name: "Ben"},
		&room.Player{ID: "c", Name: "Cal", Disconnected: true},
	)
	r.Started = true

	view := buildTrickView(r, "a")
	assert.Len(view.Players, 2)
}

func TestBuildSheddingView(t *testing.T) {
	assert := assert.New(t)
	current := deck.Card{Color: deck.ColorRed, Value: "5"}
	r := testRoom(room.KindShedding,
		&room.Player{ID: "a", Name: "Ana", ShedHand: []deck.Card{{Color: deck.ColorRed, Value: "7"}}},
		&room.Player{ID: "b", Name: "Ben", ShedHand: []deck.Card{
			{Color: deck.ColorBlue, Value: "2"}, {Color: deck.ColorGreen, Value: "3"},
		}, DeclaredLow: true},
	)
	r.Started = true
	r.Shed = room.ShedState{
		Draw:      deck.NewSheddingDeck(),
		Current:   &current,
		Turn:      1,
		Direction: -1,
		DrawStack: 2,
	}

	view := buildSheddingView(r, "b")

	assert.Equal(&current, view.CurrentCard)
	assert.Equal("b", view.CurrentPlayerID)
	assert.True(view.IsMyTurn)
	assert.Equal(-1, view.Direction)
	assert.Equal(2, view.DrawStack)
	assert.Equal(108, view.DeckCount)

	assert.Len(view.MyHand, 2)
	assert.Equal(1, view.Players[0].HandCount)
	assert.Equal(2, view.Players[1].HandCount)
	assert.True(view.Players[1].DeclaredLow)

	other := buildSheddingView(r, "a")
	assert.False(other.IsMyTurn)
	assert.Len(other.MyHand, 1)
}
