package server

import "encoding/json"

// ClientMessage is the inbound frame envelope: a type tag plus a payload
// decoded per type.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage is the outbound frame envelope.
type ServerMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Inbound message types.
const (
	MsgPing           = "ping"
	MsgCreateRoom     = "create-room"
	MsgJoinRoom       = "join-room"
	MsgReadyToggle    = "ready-toggle"
	MsgSubmitCard     = "submit-card"
	MsgPickWinner     = "pick-winner"
	MsgPlayCard       = "play-card"
	MsgDrawCard       = "draw-card"
	MsgDeclareLowCard = "declare-low-card"
	MsgChallenge      = "challenge"
	MsgChat           = "chat"
	MsgAdmin          = "admin"
)

type ErrorMessage struct {
	Message string `json:"message"`
}

type CreateRoomRequest struct {
	Kind string `json:"kind"`
}

type CreateRoomResponse struct {
	RoomCode string `json:"roomCode"`
	Kind     string `json:"kind"`
}

type JoinRoomRequest struct {
	RoomCode string `json:"roomCode"`
	Name     string `json:"name"`
	Kind     string `json:"kind,omitempty"`
}

type JoinRoomResponse struct {
	RoomCode    string `json:"roomCode"`
	Kind        string `json:"kind"`
	PlayerID    string `json:"playerId"`
	Reconnected bool   `json:"reconnected"`
}

type SubmitCardRequest struct {
	Card     string `json:"card"`
	FreeText string `json:"freeText,omitempty"`
}

type PickWinnerRequest struct {
	TargetID string `json:"targetId"`
}

type PlayCardRequest struct {
	CardIndex   int    `json:"cardIndex"`
	ChosenColor string `json:"chosenColor,omitempty"`
}

type ChallengeRequest struct {
	TargetID string `json:"targetId"`
}

type ChatRequest struct {
	Text string `json:"text"`
}

type ChatPayload struct {
	User string `json:"user"`
	Text string `json:"text"`
}

type AdminRequest struct {
	Password string `json:"password"`
	Command  string `json:"command"`
	URL      string `json:"url,omitempty"`
}

type MusicStartPayload struct {
	URL string `json:"url"`
}
