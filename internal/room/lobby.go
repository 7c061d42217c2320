package room

import (
	"errors"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	// CountdownSeconds is the lobby countdown run once everyone is ready.
	CountdownSeconds = 30

	maxNameLength = 15
)

// Lobby coordinates the pre-game phase of every room: joining, ready
// toggling, and the start countdown. Once the countdown completes it hands
// the room to the engine matching the room's kind.
//
// All exported methods taking a *Room assume the caller holds the room lock.
type Lobby struct {
	reg     *Registry
	clock   clockwork.Clock
	bc      Broadcaster
	engines map[Kind]Engine
	recons  *Reconnects // set by NewReconnects
}

func NewLobby(reg *Registry, bc Broadcaster) *Lobby {
	return &Lobby{
		reg:     reg,
		clock:   reg.Clock(),
		bc:      bc,
		engines: make(map[Kind]Engine),
	}
}

// RegisterEngine binds the engine that runs rooms of the given kind.
func (l *Lobby) RegisterEngine(kind Kind, e Engine) {
	l.engines[kind] = e
}

// Engine returns the engine for a kind, or nil if none is registered.
func (l *Lobby) Engine(kind Kind) Engine {
	return l.engines[kind]
}

// Join seats a new player in the room. The first joiner becomes host
// (informational only). Names are trimmed, length-capped, and must be unique
// among active players case-insensitively.
func (l *Lobby) Join(r *Room, playerID, name string) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("NAME_REQUIRED: A display name is required")
	}
	if runes := []rune(name); len(runes) > maxNameLength {
		name = string(runes[:maxNameLength])
	}

	if r.Started {
		return nil, errors.New("GAME_IN_PROGRESS: Game already in progress")
	}

	for _, p := range r.Active() {
		if strings.EqualFold(p.Name, name) {
			return nil, errors.New("NAME_TAKEN: That name is already taken")
		}
	}

	p := &Player{
		ID:     playerID,
		Name:   name,
		IsHost: len(r.Players) == 0,
	}
	r.addPlayer(p)

	log.Info().Str("room", r.Code).Str("player", name).
		Int("players", len(r.Players)).Msg("player joined")

	l.CheckStart(r)
	l.bc.Lobby(r)
	return p, nil
}

// ToggleReady flips a player's ready flag and re-evaluates start conditions.
// Unknown and disconnected players are ignored, as are started rooms.
func (l *Lobby) ToggleReady(r *Room, playerID string) {
	if r.Started {
		return
	}
	p := r.Player(playerID)
	if p == nil || p.Disconnected {
		return
	}

	p.Ready = !p.Ready

	log.Debug().Str("room", r.Code).Str("player", p.Name).
		Bool("ready", p.Ready).Msg("ready toggled")

	l.CheckStart(r)
	l.bc.Lobby(r)
}

// CheckStart evaluates the start condition after any mutation to the
// active/ready set. The countdown starts when every active player is ready
// and the room meets the kind's minimum, and is cancelled the moment that
// stops holding.
func (l *Lobby) CheckStart(r *Room) {
	if r.Started {
		return
	}

	active := r.Active()
	allReady := len(active) >= r.Kind.MinPlayers() && r.ReadyCount() == len(active)

	if allReady && r.countdown == nil {
		l.startCountdown(r)
	} else if !allReady && r.countdown != nil {
		l.CancelCountdown(r)
	}
}

func (l *Lobby) startCountdown(r *Room) {
	if r.countdown != nil {
		return
	}

	log.Info().Str("room", r.Code).Int("seconds", CountdownSeconds).Msg("countdown started")

	r.CountdownSeconds = CountdownSeconds
	l.bc.Lobby(r)

	r.countdown = EverySecond(l.clock, func(h *TimerHandle) bool {
		r.Lock()
		defer r.Unlock()

		// The countdown may have been cancelled, or the room deleted,
		// between this tick being scheduled and the lock being acquired.
		if r.closed || r.countdown != h {
			return false
		}

		r.CountdownSeconds--
		l.bc.Event(r, EventCountdownTick, CountdownTickPayload{Seconds: r.CountdownSeconds})

		if r.CountdownSeconds > 0 {
			return true
		}

		r.countdown = nil
		l.startGame(r)
		return false
	})
}

// CancelCountdown stops a running countdown, resets the remaining seconds,
// and tells the room. Safe to call when no countdown is running.
func (l *Lobby) CancelCountdown(r *Room) {
	if r.countdown == nil {
		return
	}

	log.Info().Str("room", r.Code).Msg("countdown cancelled")

	r.countdown.Cancel()
	r.countdown = nil
	r.CountdownSeconds = 0

	l.bc.Event(r, EventCountdownCancelled, struct{}{})
	l.bc.Lobby(r)
}

func (l *Lobby) startGame(r *Room) {
	e := l.engines[r.Kind]
	if e == nil {
		log.Error().Str("room", r.Code).Str("kind", string(r.Kind)).Msg("no engine registered")
		return
	}

	log.Info().Str("room", r.Code).Str("kind", string(r.Kind)).Msg("game starting")
	e.Start(r)
}

// EndGame forces a started room back to the lobby, clearing round-scoped
// state. Used when the active player count drops below the kind's minimum.
func (l *Lobby) EndGame(r *Room, reason string) {
	log.Info().Str("room", r.Code).Str("reason", reason).Msg("game ended")

	r.Started = false
	r.ClearPending()
	r.Trick.Submissions = nil
	r.Trick.Prompt = ""
	r.Shed = ShedState{}
	for _, p := range r.All() {
		p.Ready = false
		p.IsJudge = false
		p.HasSubmitted = false
		p.DeclaredLow = false
	}

	l.bc.Event(r, EventGameEnded, GameEndedPayload{Reason: reason})
	l.bc.Lobby(r)
}

// Reset returns the room to a fresh lobby: scores wiped, hands cleared,
// disconnected seats dropped for good, and every room timer cancelled.
func (l *Lobby) Reset(r *Room) {
	log.Info().Str("room", r.Code).Msg("room reset")

	r.countdown.Cancel()
	r.countdown = nil
	r.CountdownSeconds = 0
	r.ClearPending()

	for _, p := range r.All() {
		p.graceTimer.Cancel()
		p.graceTimer = nil
		if p.Disconnected {
			if l.recons != nil {
				l.recons.dropRecord(r.Code, p.Name)
			}
			r.removePlayer(p.ID)
			continue
		}
		p.Ready = false
		p.Score = 0
		p.Hand = nil
		p.ShedHand = nil
		p.IsJudge = false
		p.HasSubmitted = false
		p.DeclaredLow = false
		p.GraceSeconds = 0
	}

	r.Started = false
	r.Trick.Submissions = nil
	r.Trick.Prompt = ""
	r.Trick.JudgeIndex = 0
	r.Shed = ShedState{}

	l.bc.Event(r, EventGameReset, struct{}{})
	l.bc.Lobby(r)
}
