// Package game implements the two turn engines that plug into the room
// lifecycle: the judge-and-submission trick-card game and the
// sequential-turn shedding-card game. Both satisfy room.Engine and are
// selected by room kind.
package game

import "cardrooms/internal/room"

// LobbyOps is the slice of the lobby coordinator the engines need: ending a
// game that can no longer continue and resetting a room after a win.
// Implemented by *room.Lobby. Calls assume the room lock is held.
type LobbyOps interface {
	EndGame(r *room.Room, reason string)
	Reset(r *room.Room)
}

// Outbound event names produced by the engines.
const (
	EventRoundWinner     = "round-winner"
	EventGameWinner      = "game-winner"
	EventLowCardDeclared = "low-card-declared"
	EventLowCardPenalty  = "low-card-penalty"
	EventCanPlayDrawn    = "can-play-drawn"
)

type RoundWinnerPayload struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type PenaltyPayload struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}
