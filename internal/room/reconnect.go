package room

import (
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"cardrooms/internal/deck"
)

// GraceSeconds is how long a seat is reserved after a transport disconnect.
const GraceSeconds = 60

// Record is the snapshot kept for a disconnected player: just enough to
// splice a reconnecting client back into its seat. Keyed by room code and
// lower-cased display name, created at disconnect, deleted at reconnect or
// permanent removal.
type Record struct {
	PlayerID string
	RoomCode string
	Name     string

	Hand     []string
	ShedHand []deck.Card
	Score    int
	Ready    bool

	IsJudge      bool
	HasSubmitted bool
	DeclaredLow  bool
}

// Reconnects marks players disconnected, reserves their seats for the grace
// period, splices them back in on rejoin, and evicts them for good when the
// grace period expires.
//
// All exported methods taking a *Room assume the caller holds the room lock.
// The records table has its own lock because reconnect lookups happen before
// a room is resolved.
type Reconnects struct {
	mu      sync.Mutex
	records map[string]*Record

	reg   *Registry
	clock clockwork.Clock
	bc    Broadcaster
	lobby *Lobby
}

func NewReconnects(reg *Registry, bc Broadcaster, lobby *Lobby) *Reconnects {
	m := &Reconnects{
		records: make(map[string]*Record),
		reg:     reg,
		clock:   reg.Clock(),
		bc:      bc,
		lobby:   lobby,
	}
	lobby.recons = m
	return m
}

func recordKey(code, name string) string {
	return code + ":" + strings.ToLower(name)
}

// HasRecord reports whether a disconnected seat is being held under this
// room code and name.
func (m *Reconnects) HasRecord(code, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[recordKey(NormalizeRoomCode(code), name)]
	return ok
}

// Disconnect marks a player disconnected and starts the grace countdown.
// A running lobby countdown is cancelled first: a mid-countdown disconnect
// must not silently start a game short a player.
func (m *Reconnects) Disconnect(r *Room, playerID string) {
	p := r.Player(playerID)
	if p == nil || p.Disconnected {
		return
	}

	log.Info().Str("room", r.Code).Str("player", p.Name).Msg("player disconnected")

	p.Disconnected = true
	p.DisconnectedAt = m.clock.Now()
	p.GraceSeconds = GraceSeconds

	m.mu.Lock()
	m.records[recordKey(r.Code, p.Name)] = &Record{
		PlayerID:     p.ID,
		RoomCode:     r.Code,
		Name:         p.Name,
		Hand:         p.Hand,
		ShedHand:     p.ShedHand,
		Score:        p.Score,
		Ready:        p.Ready,
		IsJudge:      p.IsJudge,
		HasSubmitted: p.HasSubmitted,
		DeclaredLow:  p.DeclaredLow,
	}
	m.mu.Unlock()

	m.lobby.CancelCountdown(r)

	m.bc.Event(r, EventPlayerDisconnected, PlayerDisconnectedPayload{
		Name:               p.Name,
		SecondsToReconnect: GraceSeconds,
	})

	p.graceTimer = EverySecond(m.clock, func(h *TimerHandle) bool {
		r.Lock()
		defer r.Unlock()

		// The seat may have been reclaimed, reset away, or the room
		// deleted since this tick was scheduled.
		if r.closed || !p.Disconnected || p.graceTimer != h {
			return false
		}

		p.GraceSeconds--
		if p.GraceSeconds <= 0 {
			p.graceTimer = nil
			log.Info().Str("room", r.Code).Str("player", p.Name).Msg("grace period expired")
			m.RemovePermanently(r, p.ID)
			return false
		}

		m.bc.Event(r, EventReconnectTimer, ReconnectTimerPayload{
			Name:        p.Name,
			SecondsLeft: p.GraceSeconds,
		})
		return true
	})

	m.lobby.CheckStart(r)
	m.bc.Lobby(r)
}

// Resume splices a reconnecting client back into its reserved seat under a
// new transport identity, preserving hand, score, and role flags. Returns
// false — not a reconnection — when no record matches or no disconnected
// player in the room carries the name.
func (m *Reconnects) Resume(r *Room, name, newID string) (*Player, bool) {
	key := recordKey(r.Code, name)

	m.mu.Lock()
	_, ok := m.records[key]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}

	var seat *Player
	for _, p := range r.All() {
		if p.Disconnected && strings.EqualFold(p.Name, name) {
			seat = p
			break
		}
	}
	if seat == nil {
		m.dropRecord(r.Code, name)
		return nil, false
	}

	log.Info().Str("room", r.Code).Str("player", seat.Name).Msg("player reconnected")

	seat.graceTimer.Cancel()
	seat.graceTimer = nil

	r.rekeyPlayer(seat.ID, newID)
	seat.Disconnected = false
	seat.DisconnectedAt = time.Time{}
	seat.GraceSeconds = 0

	m.dropRecord(r.Code, name)

	m.bc.Event(r, EventPlayerReconnected, PlayerNamePayload{Name: seat.Name})
	m.lobby.CheckStart(r)
	m.bc.Lobby(r)

	// A player resuming an in-progress game needs the full game view, not
	// just the lobby view.
	if r.Started {
		m.bc.GameTo(r, newID)
	}

	return seat, true
}

// RemovePermanently evicts a seat for good: timers cleared, record dropped,
// player removed. Deletes the room when the last seat goes; forces a started
// room back to the lobby when it drops below its minimum; otherwise lets the
// engine repair the judge or turn role the removed player may have held.
func (m *Reconnects) RemovePermanently(r *Room, playerID string) {
	p := r.Player(playerID)
	if p == nil {
		return
	}

	log.Info().Str("room", r.Code).Str("player", p.Name).Msg("player removed")

	p.graceTimer.Cancel()
	p.graceTimer = nil
	m.dropRecord(r.Code, p.Name)
	r.removePlayer(playerID)

	m.bc.Event(r, EventPlayerRemoved, PlayerNamePayload{Name: p.Name})

	if len(r.Players) == 0 {
		m.reg.Delete(r.Code)
		return
	}

	if r.Started {
		if len(r.Active()) < r.Kind.MinPlayers() {
			m.lobby.EndGame(r, "Not enough players")
		} else if e := m.lobby.Engine(r.Kind); e != nil {
			e.OnPlayerRemoved(r, playerID)
		}
		return
	}

	m.lobby.CheckStart(r)
	m.bc.Lobby(r)
}

func (m *Reconnects) dropRecord(code, name string) {
	m.mu.Lock()
	delete(m.records, recordKey(code, name))
	m.mu.Unlock()
}
