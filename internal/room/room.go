package room

import (
	"sync"
	"time"

	"cardrooms/internal/deck"
)

// Kind selects which turn engine a room runs.
type Kind string

const (
	KindTrick    Kind = "trick-card"
	KindShedding Kind = "shedding-card"
)

func (k Kind) Valid() bool {
	return k == KindTrick || k == KindShedding
}

// MinPlayers is the minimum number of connected players a started game of
// this kind needs. A started room that drops below it is forced back to the
// lobby.
func (k Kind) MinPlayers() int {
	if k == KindTrick {
		return 3
	}
	return 2
}

// Player is one seat in a room. Its ID is the transport connection ID of the
// client currently (or last) holding the seat; reconnection re-keys the seat
// under the new connection ID while preserving everything else.
type Player struct {
	ID     string
	Name   string
	Ready  bool
	IsHost bool
	Score  int

	Disconnected   bool
	DisconnectedAt time.Time
	GraceSeconds   int
	graceTimer     *TimerHandle

	// trick-card seat state
	Hand         []string
	IsJudge      bool
	HasSubmitted bool

	// shedding-card seat state
	ShedHand    []deck.Card
	DeclaredLow bool
}

// Submission is one pending trick-card answer awaiting judging.
type Submission struct {
	Card     string `json:"card"`
	PlayerID string `json:"playerId"`
}

// TrickState is the trick-card engine's room-scoped sub-state.
type TrickState struct {
	WhitePile   *deck.TextPile
	BlackPile   *deck.TextPile
	Prompt      string
	Submissions []Submission
	JudgeIndex  int
}

// ShedState is the shedding-card engine's room-scoped sub-state.
type ShedState struct {
	Draw      []deck.Card
	Discard   []deck.Card
	Current   *deck.Card // top of discard, carries ActiveColor after a wild
	Turn      int        // index into the active-player list
	Direction int        // +1 or -1
	DrawStack int        // pending mandatory draws owed by the next player
}

// Room is one isolated game session addressed by a short code.
//
// Locking convention: the embedded mutex serializes all mutations. It is
// acquired only at the dispatch boundary — the websocket event loop and timer
// callbacks — and held across the full mutation plus its broadcasts, so no
// two events for the same room ever interleave. Every exported method on the
// lobby coordinator, reconnection manager, and game engines that takes a
// *Room assumes the caller already holds it.
type Room struct {
	sync.Mutex

	Code    string
	Kind    Kind
	Started bool

	// Ordered-insertion player mapping. Order holds player IDs in join
	// order; reconnection re-keys an ID in place so seat order survives.
	Players map[string]*Player
	Order   []string

	CountdownSeconds int
	countdown        *TimerHandle
	pending          *TimerHandle // round-advance or reset delay

	MusicURL string

	Trick TrickState
	Shed  ShedState

	closed bool
}

func newRoom(code string, kind Kind) *Room {
	return &Room{
		Code:    code,
		Kind:    kind,
		Players: make(map[string]*Player),
	}
}

// Closed reports whether the room has been removed from the registry.
// Events and timers that raced with deletion must treat it as gone.
func (r *Room) Closed() bool {
	return r.closed
}

func (r *Room) Player(id string) *Player {
	return r.Players[id]
}

// Active returns the non-disconnected players in join order.
func (r *Room) Active() []*Player {
	active := make([]*Player, 0, len(r.Order))
	for _, id := range r.Order {
		if p := r.Players[id]; p != nil && !p.Disconnected {
			active = append(active, p)
		}
	}
	return active
}

// All returns every seated player in join order, disconnected ones included.
func (r *Room) All() []*Player {
	all := make([]*Player, 0, len(r.Order))
	for _, id := range r.Order {
		if p := r.Players[id]; p != nil {
			all = append(all, p)
		}
	}
	return all
}

func (r *Room) ReadyCount() int {
	n := 0
	for _, p := range r.Active() {
		if p.Ready {
			n++
		}
	}
	return n
}

func (r *Room) addPlayer(p *Player) {
	r.Players[p.ID] = p
	r.Order = append(r.Order, p.ID)
}

func (r *Room) removePlayer(id string) {
	delete(r.Players, id)
	for i, oid := range r.Order {
		if oid == id {
			r.Order = append(r.Order[:i], r.Order[i+1:]...)
			break
		}
	}
}

// rekeyPlayer moves a seat to a new transport identity, keeping its
// join-order position so judge and turn rotation are unaffected.
func (r *Room) rekeyPlayer(oldID, newID string) *Player {
	p := r.Players[oldID]
	if p == nil {
		return nil
	}
	delete(r.Players, oldID)
	p.ID = newID
	r.Players[newID] = p
	for i, oid := range r.Order {
		if oid == oldID {
			r.Order[i] = newID
			break
		}
	}
	return p
}

// SetPending replaces the room's pending delayed task, cancelling any
// previous one so a superseded round-advance or reset can never fire.
func (r *Room) SetPending(h *TimerHandle) {
	r.pending.Cancel()
	r.pending = h
}

// PendingIs reports whether h is still the live pending task for this room.
func (r *Room) PendingIs(h *TimerHandle) bool {
	return r.pending == h
}

func (r *Room) ClearPending() {
	r.pending.Cancel()
	r.pending = nil
}

// CountdownActive reports whether a lobby start countdown is running.
func (r *Room) CountdownActive() bool {
	return r.countdown != nil
}

// cancelTimers stops every timer owned by the room or its players. Failing
// to do this on deletion leaks timers that would later mutate a dead room.
func (r *Room) cancelTimers() {
	r.countdown.Cancel()
	r.countdown = nil
	r.ClearPending()
	for _, p := range r.Players {
		p.graceTimer.Cancel()
		p.graceTimer = nil
	}
}
