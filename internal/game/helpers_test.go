package game

import (
	"strconv"
	"sync"

	"github.com/jonboulle/clockwork"

	"cardrooms/internal/deck"
	"cardrooms/internal/room"
)

type stubBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *stubBroadcaster) record(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, name)
}

func (b *stubBroadcaster) Lobby(r *room.Room)                   { b.record("lobby") }
func (b *stubBroadcaster) Game(r *room.Room)                    { b.record("game") }
func (b *stubBroadcaster) GameTo(r *room.Room, playerID string) { b.record("game-to:" + playerID) }

func (b *stubBroadcaster) Event(r *room.Room, event string, payload any) {
	b.record(event)
}

func (b *stubBroadcaster) EventTo(r *room.Room, playerID string, event string, payload any) {
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

type fixture struct {
	clock  *clockwork.FakeClock
	reg    *room.Registry
	bc     *stubBroadcaster
	lobby  *room.Lobby
	recons *room.Reconnects
}

func newFixture() *fixture {
	clock := clockwork.NewFakeClock()
	reg := room.NewRegistry(clock)
	bc := &stubBroadcaster{}
	lobby := room.NewLobby(reg, bc)
	recons := room.NewReconnects(reg, bc, lobby)

	return &fixture{
		clock:  clock,
		reg:    reg,
		bc:     bc,
		lobby:  lobby,
		recons: recons,
	}
}

func (f *fixture) newTrick() *Trick {
	texts := &deck.Texts{
		Prompts: []string{"Prompt one?", "Prompt two?", "Prompt three?"},
		Fills:   []string{"fill a", "fill b", "fill c", "fill d", "fill e", "fill f"},
	}
	e := NewTrick(f.clock, f.bc, f.lobby, texts, func(s string) string { return s })
	f.lobby.RegisterEngine(room.KindTrick, e)
	return e
}

func (f *fixture) newShedding() *Shedding {
	e := NewShedding(f.clock, f.bc, f.lobby)
	f.lobby.RegisterEngine(room.KindShedding, e)
	return e
}

// seat joins n players named P0..Pn-1 with connection IDs conn0..conn(n-1).
func (f *fixture) seat(r *room.Room, n int) {
	r.Lock()
	defer r.Unlock()
	for i := 0; i < n; i++ {
		if _, err := f.lobby.Join(r, connID(i), "P"+strconv.Itoa(i)); err != nil {
			panic(err)
		}
	}
}

func connID(i int) string {
	return "conn" + strconv.Itoa(i)
}
