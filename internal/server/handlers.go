package server

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"cardrooms/internal/room"
)

const maxChatLength = 200

func (s *Server) handleCreateRoom(conn *Conn, payload json.RawMessage) {
	var req CreateRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(conn, "INVALID_PAYLOAD: Invalid create-room payload")
		return
	}

	kind := room.Kind(req.Kind)
	if !kind.Valid() {
		s.sendError(conn, "INVALID_KIND: Unknown game kind")
		return
	}

	r := s.registry.Create(kind)

	s.send(conn, "room-created", CreateRoomResponse{
		RoomCode: r.Code,
		Kind:     string(r.Kind),
	})
}

func (s *Server) handleJoinRoom(conn *Conn, payload json.RawMessage) {
	var req JoinRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(conn, "INVALID_PAYLOAD: Invalid join-room payload")
		return
	}

	if s.cm.RoomOf(conn.ID) != "" {
		s.sendError(conn, "ALREADY_IN_ROOM: Leave the current room first")
		return
	}

	code := room.NormalizeRoomCode(req.RoomCode)
	if err := room.ValidateRoomCode(code); err != nil {
		s.sendError(conn, err.Error())
		return
	}

	// Validated before the lookup so a bad name never creates a room.
	if strings.TrimSpace(req.Name) == "" {
		s.sendError(conn, "NAME_REQUIRED: A display name is required")
		return
	}

	r := s.registry.Get(code)
	if r == nil {
		// Joining an unknown code with a kind creates the room, so a
		// shared link works for whoever clicks it first.
		kind := room.Kind(req.Kind)
		if !kind.Valid() {
			s.sendError(conn, "ROOM_NOT_FOUND: No room with that code")
			return
		}
		var err error
		r, err = s.registry.CreateWithCode(code, kind)
		if err != nil {
			s.sendError(conn, err.Error())
			return
		}
	}

	r.Lock()
	defer r.Unlock()
	if r.Closed() {
		s.sendError(conn, "ROOM_NOT_FOUND: No room with that code")
		return
	}

	// Mapped before seating so the join broadcasts reach this socket.
	s.cm.SetRoom(conn.ID, r.Code)

	if _, ok := s.reconnects.Resume(r, req.Name, conn.ID); ok {
		s.send(conn, "room-joined", JoinRoomResponse{
			RoomCode:    r.Code,
			Kind:        string(r.Kind),
			PlayerID:    conn.ID,
			Reconnected: true,
		})
		return
	}

	if _, err := s.lobby.Join(r, conn.ID, req.Name); err != nil {
		s.cm.ClearRoom(conn.ID)
		s.sendError(conn, err.Error())
		return
	}

	s.send(conn, "room-joined", JoinRoomResponse{
		RoomCode: r.Code,
		Kind:     string(r.Kind),
		PlayerID: conn.ID,
	})
}

func (s *Server) handleReadyToggle(conn *Conn) {
	r, ok := s.roomFor(conn)
	if !ok {
		return
	}
	defer r.Unlock()

	s.lobby.ToggleReady(r, conn.ID)
}

// handleGameAction translates a game frame into an engine action and
// dispatches it to the engine running the room's kind.
func (s *Server) handleGameAction(conn *Conn, msgType string, payload json.RawMessage) {
	action, ok := s.parseAction(conn, msgType, payload)
	if !ok {
		return
	}

	r, ok := s.roomFor(conn)
	if !ok {
		return
	}
	defer r.Unlock()

	if !r.Started {
		s.sendError(conn, "GAME_NOT_STARTED: The game has not started")
		return
	}

	engine := s.lobby.Engine(r.Kind)
	if engine == nil {
		s.sendError(conn, "INVALID_KIND: No engine for this room")
		return
	}

	if err := engine.HandleAction(r, conn.ID, action); err != nil {
		s.send(conn, "action-error", ErrorMessage{Message: err.Error()})
	}
}

func (s *Server) parseAction(conn *Conn, msgType string, payload json.RawMessage) (room.Action, bool) {
	var action room.Action
	switch msgType {
	case MsgSubmitCard:
		var req SubmitCardRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			s.sendError(conn, "INVALID_PAYLOAD: Invalid submit-card payload")
			return action, false
		}
		action = room.Action{Name: room.ActionSubmitCard, Card: req.Card, FreeText: req.FreeText}

	case MsgPickWinner:
		var req PickWinnerRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			s.sendError(conn, "INVALID_PAYLOAD: Invalid pick-winner payload")
			return action, false
		}
		action = room.Action{Name: room.ActionPickWinner, TargetID: req.TargetID}

	case MsgPlayCard:
		var req PlayCardRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			s.sendError(conn, "INVALID_PAYLOAD: Invalid play-card payload")
			return action, false
		}
		action = room.Action{Name: room.ActionPlayCard, CardIndex: req.CardIndex, ChosenColor: req.ChosenColor}

	case MsgDrawCard:
		action = room.Action{Name: room.ActionDrawCard}

	case MsgDeclareLowCard:
		action = room.Action{Name: room.ActionDeclareLowCard}

	case MsgChallenge:
		var req ChallengeRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			s.sendError(conn, "INVALID_PAYLOAD: Invalid challenge payload")
			return action, false
		}
		action = room.Action{Name: room.ActionChallenge, TargetID: req.TargetID}
	}
	return action, true
}

func (s *Server) handleChat(conn *Conn, payload json.RawMessage) {
	var req ChatRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(conn, "INVALID_PAYLOAD: Invalid chat payload")
		return
	}

	r, ok := s.roomFor(conn)
	if !ok {
		return
	}
	defer r.Unlock()

	p := r.Player(conn.ID)
	if p == nil {
		s.sendError(conn, "NOT_IN_ROOM: You are not seated in this room")
		return
	}

	text := req.Text
	if runes := []rune(text); len(runes) > maxChatLength {
		text = string(runes[:maxChatLength])
	}
	text = s.chatFilter.Clean(text)
	if text == "" {
		return
	}

	s.gateway.Event(r, "chat", ChatPayload{User: p.Name, Text: text})
}

func (s *Server) handleAdmin(conn *Conn, payload json.RawMessage) {
	var req AdminRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(conn, "INVALID_PAYLOAD: Invalid admin payload")
		return
	}

	// An unset password disables the admin channel entirely.
	if s.adminPass == "" || req.Password != s.adminPass {
		s.send(conn, "admin-fail", struct{}{})
		return
	}

	if req.Command == "login" {
		s.send(conn, "admin-ok", struct{}{})
		return
	}

	r, ok := s.roomFor(conn)
	if !ok {
		return
	}
	defer r.Unlock()

	switch req.Command {
	case "reset":
		log.Info().Str("room", r.Code).Msg("admin reset")
		s.lobby.Reset(r)
	case "music-start":
		r.MusicURL = req.URL
		s.gateway.Event(r, "music-start", MusicStartPayload{URL: req.URL})
	case "wipe-chat":
		s.gateway.Event(r, "wipe-chat", struct{}{})
	default:
		s.sendError(conn, "INVALID_COMMAND: Unknown admin command")
	}
}

// roomFor resolves and LOCKS the caller's room. On true, the caller must
// unlock it.
func (s *Server) roomFor(conn *Conn) (*room.Room, bool) {
	code := s.cm.RoomOf(conn.ID)
	if code == "" {
		s.sendError(conn, "NOT_IN_ROOM: Join a room first")
		return nil, false
	}
	r := s.registry.Get(code)
	if r == nil {
		s.sendError(conn, "ROOM_NOT_FOUND: No room with that code")
		return nil, false
	}
	r.Lock()
	if r.Closed() {
		r.Unlock()
		s.sendError(conn, "ROOM_NOT_FOUND: No room with that code")
		return nil, false
	}
	return r, true
}
