package server

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"cardrooms/internal/room"
)

// Gateway turns room mutations into outbound frames. It implements
// room.Broadcaster on top of the connection manager's per-client send
// queues, so callers never block on a slow socket.
//
// Player IDs double as connection IDs, so a room's recipients are just
// its connected seats.
type Gateway struct {
	cm *ConnectionManager
}

func NewGateway(cm *ConnectionManager) *Gateway {
	return &Gateway{cm: cm}
}

func (g *Gateway) Lobby(r *room.Room) {
	for _, p := range r.All() {
		if p.Disconnected {
			continue
		}
		g.sendTo(p.ID, eventLobbyView, buildLobbyView(r, p.ID))
	}
}

func (g *Gateway) Game(r *room.Room) {
	for _, p := range r.All() {
		if p.Disconnected {
			continue
		}
		g.GameTo(r, p.ID)
	}
}

func (g *Gateway) GameTo(r *room.Room, playerID string) {
	if !r.Started {
		g.sendTo(playerID, eventLobbyView, buildLobbyView(r, playerID))
		return
	}
	switch r.Kind {
	case room.KindTrick:
		g.sendTo(playerID, eventTrickView, buildTrickView(r, playerID))
	case room.KindShedding:
		g.sendTo(playerID, eventSheddingView, buildSheddingView(r, playerID))
	}
}

func (g *Gateway) Event(r *room.Room, event string, payload any) {
	for _, p := range r.All() {
		if p.Disconnected {
			continue
		}
		g.sendTo(p.ID, event, payload)
	}
}

func (g *Gateway) EventTo(r *room.Room, playerID string, event string, payload any) {
	g.sendTo(playerID, event, payload)
}

func (g *Gateway) sendTo(connID, event string, payload any) {
	conn := g.cm.Get(connID)
	if conn == nil {
		return
	}
	data, err := json.Marshal(ServerMessage{Type: event, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("failed to marshal outbound frame")
		return
	}
	conn.enqueue(data)
}
