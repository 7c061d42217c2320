package server

import (
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

func (s *Server) RegisterRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/websocket", s.websocketHandler)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	})
	return c.Handler(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := json.Marshal(map[string]any{
		"status": "ok",
		"rooms":  s.registry.Count(),
	})
	if err != nil {
		http.Error(w, "Failed to marshal health check response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		log.Error().Err(err).Msg("failed to write health response")
	}
}

func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		http.Error(w, "Failed to open websocket", http.StatusInternalServerError)
		return
	}
	defer socket.Close(websocket.StatusGoingAway, "Server closing")

	ctx := r.Context()

	connID := uuid.New().String()
	conn := newConn(connID, socket)
	s.cm.Add(conn)
	log.Info().Str("conn", connID).Msg("new connection")

	defer func() {
		code := s.cm.Remove(connID)
		conn.close()
		s.limiter.RemoveConnection(connID)
		s.health.RemoveConnection(connID)
		log.Info().Str("conn", connID).Msg("connection closed")

		if code == "" {
			return
		}
		rm := s.registry.Get(code)
		if rm == nil {
			return
		}
		rm.Lock()
		defer rm.Unlock()
		if rm.Closed() {
			return
		}
		s.reconnects.Disconnect(rm, connID)
	}()

	for {
		msgType, data, err := socket.Read(ctx)
		if err != nil {
			log.Debug().Str("conn", connID).Err(err).Msg("read loop ended")
			return
		}

		if msgType != websocket.MessageText {
			log.Debug().Str("conn", connID).Msg("ignoring non-text frame")
			continue
		}

		if !s.limiter.Allow(connID) {
			s.sendError(conn, "RATE_LIMITED: Slow down")
			continue
		}
		s.health.UpdateActivity(connID)

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(conn, "INVALID_JSON: Could not parse message")
			continue
		}

		if err := ValidateMessageType(msg.Type); err != nil {
			s.sendError(conn, err.Error())
			continue
		}

		log.Debug().Str("conn", connID).Str("type", msg.Type).Msg("inbound message")

		switch msg.Type {
		case MsgPing:
			s.send(conn, "pong", struct{}{})

		case MsgCreateRoom:
			s.handleCreateRoom(conn, msg.Payload)

		case MsgJoinRoom:
			s.handleJoinRoom(conn, msg.Payload)

		case MsgReadyToggle:
			s.handleReadyToggle(conn)

		case MsgSubmitCard, MsgPickWinner, MsgPlayCard, MsgDrawCard, MsgDeclareLowCard, MsgChallenge:
			s.handleGameAction(conn, msg.Type, msg.Payload)

		case MsgChat:
			s.handleChat(conn, msg.Payload)

		case MsgAdmin:
			s.handleAdmin(conn, msg.Payload)
		}
	}
}

// send marshals a frame onto the connection's outbound queue.
func (s *Server) send(conn *Conn, event string, payload any) {
	data, err := json.Marshal(ServerMessage{Type: event, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("failed to marshal frame")
		return
	}
	conn.enqueue(data)
}

func (s *Server) sendError(conn *Conn, msg string) {
	s.send(conn, "error", ErrorMessage{Message: msg})
}
