package room

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

// stubBroadcaster records emitted event names so tests can assert on
// broadcast behavior without a transport.
type stubBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *stubBroadcaster) record(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, name)
}

func (b *stubBroadcaster) Lobby(r *Room)                   { b.record("lobby") }
func (b *stubBroadcaster) Game(r *Room)                    { b.record("game") }
func (b *stubBroadcaster) GameTo(r *Room, playerID string) { b.record("game-to:" + playerID) }

func (b *stubBroadcaster) Event(r *Room, event string, payload any) {
	b.record(event)
}

func (b *stubBroadcaster) EventTo(r *Room, playerID string, event string, payload any) {
	b.record(event + ":" + playerID)
}

func (b *stubBroadcaster) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e == name {
			n++
		}
	}
	return n
}

// stubEngine marks rooms started and records engine callbacks.
type stubEngine struct {
	mu      sync.Mutex
	starts  int
	removed []string
}

func (e *stubEngine) Start(r *Room) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.starts++
	r.Started = true
}

func (e *stubEngine) HandleAction(r *Room, playerID string, a Action) error {
	return nil
}

func (e *stubEngine) OnPlayerRemoved(r *Room, playerID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removed = append(e.removed, playerID)
}

func (e *stubEngine) startCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.starts
}

func (e *stubEngine) removedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.removed)
}

type fixture struct {
	clock  *clockwork.FakeClock
	reg    *Registry
	bc     *stubBroadcaster
	lobby  *Lobby
	recons *Reconnects
	engine *stubEngine
}

func newFixture() *fixture {
	clock := clockwork.NewFakeClock()
	reg := NewRegistry(clock)
	bc := &stubBroadcaster{}
	lobby := NewLobby(reg, bc)
	recons := NewReconnects(reg, bc, lobby)
	engine := &stubEngine{}
	lobby.RegisterEngine(KindTrick, engine)
	lobby.RegisterEngine(KindShedding, engine)

	return &fixture{
		clock:  clock,
		reg:    reg,
		bc:     bc,
		lobby:  lobby,
		recons: recons,
		engine: engine,
	}
}

// seat joins a set of named players under the room lock.
func (f *fixture) seat(r *Room, names ...string) {
	r.Lock()
	defer r.Unlock()
	for i, name := range names {
		if _, err := f.lobby.Join(r, connID(i), name); err != nil {
			panic(err)
		}
	}
}

// readyAll toggles every seated player to ready.
func (f *fixture) readyAll(r *Room) {
	r.Lock()
	defer r.Unlock()
	for _, p := range r.All() {
		if !p.Ready {
			f.lobby.ToggleReady(r, p.ID)
		}
	}
}

func connID(i int) string {
	return string(rune('a'+i)) + "-conn"
}

// tickGrace advances the clock second by second, waiting for each grace
// tick to land before the next. Advancing in one jump would coalesce ticks
// on the fake clock's buffered ticker channel.
func tickGrace(t *testing.T, f *fixture, r *Room, id string, seconds int) {
	t.Helper()
	for i := 0; i < seconds; i++ {
		f.clock.Advance(time.Second)
		want := GraceSeconds - 1 - i
		assert.Eventually(t, func() bool {
			r.Lock()
			defer r.Unlock()
			if r.Closed() {
				return true
			}
			p := r.Player(id)
			return p == nil || p.GraceSeconds == want
		}, time.Second, time.Millisecond)
	}
}
