package server

import (
	"cardrooms/internal/deck"
	"cardrooms/internal/room"
)

// View event names rendered by the broadcast gateway.
const (
	eventLobbyView    = "lobby-view"
	eventTrickView    = "trick-card-view"
	eventSheddingView = "shedding-card-view"
)

// LobbyView is the personalized lobby snapshot every connected player
// receives after any lobby mutation.
type LobbyView struct {
	RoomCode         string        `json:"roomCode"`
	Kind             string        `json:"kind"`
	Players          []LobbyPlayer `json:"players"`
	MinPlayers       int           `json:"minPlayers"`
	ReadyCount       int           `json:"readyCount"`
	CountdownSeconds int           `json:"countdownSeconds"`
	CountdownActive  bool          `json:"countdownActive"`
	Started          bool          `json:"started"`
}

type LobbyPlayer struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Ready           bool   `json:"ready"`
	Disconnected    bool   `json:"disconnected"`
	SecondsToRejoin int    `json:"secondsToRejoin,omitempty"`
	IsHost          bool   `json:"isHost"`
	IsYou           bool   `json:"isYou"`
}

// TrickView is one player's view of a trick-card round: shared state plus
// that player's private hand and role flags.
type TrickView struct {
	Started      bool              `json:"started"`
	Prompt       string            `json:"prompt"`
	JudgeID      string            `json:"judgeId"`
	JudgeName    string            `json:"judgeName"`
	Submissions  []room.Submission `json:"submissions"`
	AllSubmitted bool              `json:"allSubmitted"`
	Players      []TrickPlayer     `json:"players"`
	MyID         string            `json:"myId"`
	MyHand       []string          `json:"myHand"`
	IsJudge      bool              `json:"isJudge"`
	HasSubmitted bool              `json:"hasSubmitted"`
}

type TrickPlayer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Score        int    `json:"score"`
	IsJudge      bool   `json:"isJudge"`
	HasSubmitted bool   `json:"hasSubmitted"`
}

// SheddingView is one player's view of a shedding-card game.
type SheddingView struct {
	Started         bool             `json:"started"`
	CurrentCard     *deck.Card       `json:"currentCard"`
	CurrentPlayerID string           `json:"currentPlayerId"`
	Direction       int              `json:"direction"`
	DrawStack       int              `json:"drawStack"`
	DeckCount       int              `json:"deckCount"`
	Players         []SheddingPlayer `json:"players"`
	MyID            string           `json:"myId"`
	MyHand          []deck.Card      `json:"myHand"`
	IsMyTurn        bool             `json:"isMyTurn"`
}

type SheddingPlayer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	HandCount   int    `json:"handCount"`
	DeclaredLow bool   `json:"declaredLow"`
}

// buildLobbyView renders the lobby for one recipient. Disconnected seats
// stay listed with their remaining grace seconds so clients can show the
// reconnect countdown.
func buildLobbyView(r *room.Room, forID string) LobbyView {
	players := make([]LobbyPlayer, 0, len(r.Order))
	for _, p := range r.All() {
		players = append(players, LobbyPlayer{
			ID:              p.ID,
			Name:            p.Name,
			Ready:           p.Ready,
			Disconnected:    p.Disconnected,
			SecondsToRejoin: p.GraceSeconds,
			IsHost:          p.IsHost,
			IsYou:           p.ID == forID,
		})
	}

	return LobbyView{
		RoomCode:         r.Code,
		Kind:             string(r.Kind),
		Players:          players,
		MinPlayers:       r.Kind.MinPlayers(),
		ReadyCount:       r.ReadyCount(),
		CountdownSeconds: r.CountdownSeconds,
		CountdownActive:  r.CountdownActive(),
		Started:          r.Started,
	}
}

func buildTrickView(r *room.Room, forID string) TrickView {
	active := r.Active()

	var judgeID, judgeName string
	submitters := 0
	players := make([]TrickPlayer, 0, len(active))
	for _, p := range active {
		if p.IsJudge {
			judgeID, judgeName = p.ID, p.Name
		} else {
			submitters++
		}
		players = append(players, TrickPlayer{
			ID:           p.ID,
			Name:         p.Name,
			Score:        p.Score,
			IsJudge:      p.IsJudge,
			HasSubmitted: p.HasSubmitted,
		})
	}

	view := TrickView{
		Started:      r.Started,
		Prompt:       r.Trick.Prompt,
		JudgeID:      judgeID,
		JudgeName:    judgeName,
		Submissions:  r.Trick.Submissions,
		AllSubmitted: len(r.Trick.Submissions) >= submitters && submitters > 0,
		Players:      players,
		MyID:         forID,
	}

	if me := r.Player(forID); me != nil {
		view.MyHand = me.Hand
		view.IsJudge = me.IsJudge
		view.HasSubmitted = me.HasSubmitted
	}
	return view
}

func buildSheddingView(r *room.Room, forID string) SheddingView {
	active := r.Active()

	currentID := ""
	if len(active) > 0 {
		turn := r.Shed.Turn
		if turn >= len(active) {
			turn = 0
		}
		currentID = active[turn].ID
	}

	players := make([]SheddingPlayer, 0, len(active))
	for _, p := range active {
		players = append(players, SheddingPlayer{
			ID:          p.ID,
			Name:        p.Name,
			HandCount:   len(p.ShedHand),
			DeclaredLow: p.DeclaredLow,
		})
	}

	view := SheddingView{
		Started:         r.Started,
		CurrentCard:     r.Shed.Current,
		CurrentPlayerID: currentID,
		Direction:       r.Shed.Direction,
		DrawStack:       r.Shed.DrawStack,
		DeckCount:       len(r.Shed.Draw),
		Players:         players,
		MyID:            forID,
		IsMyTurn:        forID == currentID,
	}

	if me := r.Player(forID); me != nil {
		view.MyHand = me.ShedHand
	}
	return view
}
