package room

// Outbound event names produced by the room/session core. View events
// (lobby-view and the per-kind game views) are rendered by the broadcast
// gateway; everything here is a notification with a fixed payload.
const (
	EventCountdownTick      = "countdown-tick"
	EventCountdownCancelled = "countdown-cancelled"
	EventGameStarted        = "game-started"
	EventGameEnded          = "game-ended"
	EventGameReset          = "game-reset"
	EventPlayerDisconnected = "player-disconnected"
	EventReconnectTimer     = "reconnect-timer"
	EventPlayerReconnected  = "player-reconnected"
	EventPlayerRemoved      = "player-removed"
)

type CountdownTickPayload struct {
	Seconds int `json:"seconds"`
}

type GameStartedPayload struct {
	Kind Kind `json:"kind"`
}

type GameEndedPayload struct {
	Reason string `json:"reason"`
}

type PlayerDisconnectedPayload struct {
	Name               string `json:"name"`
	SecondsToReconnect int    `json:"secondsToReconnect"`
}

type ReconnectTimerPayload struct {
	Name        string `json:"name"`
	SecondsLeft int    `json:"secondsLeft"`
}

type PlayerNamePayload struct {
	Name string `json:"name"`
}

// Broadcaster delivers room state to clients. Implementations must be
// fire-and-forget per recipient: a slow client can never block the caller,
// and the events any one client observes arrive in the order they were
// emitted. All methods are called with the room lock held.
type Broadcaster interface {
	// Lobby sends every connected player a fresh lobby view.
	Lobby(r *Room)
	// Game sends every connected player its personalized game view.
	Game(r *Room)
	// GameTo sends one player its personalized game view.
	GameTo(r *Room, playerID string)
	// Event sends a named event to every connected player in the room.
	Event(r *Room, event string, payload any)
	// EventTo sends a named event to one player.
	EventTo(r *Room, playerID string, event string, payload any)
}

// Action is one game-scoped client action, dispatched to the room's engine.
type Action struct {
	Name        string
	Card        string
	FreeText    string
	TargetID    string
	CardIndex   int
	ChosenColor string
}

// Game action names accepted by the engines.
const (
	ActionSubmitCard     = "submit-card"
	ActionPickWinner     = "pick-winner"
	ActionPlayCard       = "play-card"
	ActionDrawCard       = "draw-card"
	ActionDeclareLowCard = "declare-low-card"
	ActionChallenge      = "challenge"
)

// Engine is the capability interface implemented once per game kind and
// selected polymorphically by room kind. Start transitions a room into play,
// HandleAction applies one client action (returning a client-visible error
// for rejected actions, with no state mutated), and OnPlayerRemoved repairs
// round-scoped state after a seat is permanently removed — rotating the
// judge or clamping the turn index if the removed player held the role.
// All methods are called with the room lock held.
type Engine interface {
	Start(r *Room)
	HandleAction(r *Room, playerID string, a Action) error
	OnPlayerRemoved(r *Room, playerID string)
}
