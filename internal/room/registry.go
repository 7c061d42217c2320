package room

import (
	"errors"
	"math/rand"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const roomCodeLength = 6

// Registry owns the code → Room mapping and the room lifecycle. Rooms are
// created on demand and deleted when their last seat (including seats held
// for disconnected players) is removed.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	clock clockwork.Clock
}

func NewRegistry(clock clockwork.Clock) *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		clock: clock,
	}
}

// Create initializes an empty room under a freshly generated code.
func (g *Registry) Create(kind Kind) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	code := g.generateCode()
	r := newRoom(code, kind)
	g.rooms[code] = r

	log.Info().Str("room", code).Str("kind", string(kind)).Msg("room created")
	return r
}

// CreateWithCode initializes an empty room under a caller-chosen code, used
// when a client joins a code that does not exist yet. Fails if the code is
// taken or malformed.
func (g *Registry) CreateWithCode(code string, kind Kind) (*Room, error) {
	code = NormalizeRoomCode(code)
	if err := ValidateRoomCode(code); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.rooms[code]; exists {
		return nil, errors.New("ROOM_EXISTS: Room code already in use")
	}

	r := newRoom(code, kind)
	g.rooms[code] = r

	log.Info().Str("room", code).Str("kind", string(kind)).Msg("room created")
	return r, nil
}

// Get returns the room for a code, or nil if no such room exists.
func (g *Registry) Get(code string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rooms[NormalizeRoomCode(code)]
}

// Delete removes a room and cancels every timer it owns, so nothing can
// fire later against the dead room. The caller must hold the room's lock;
// remaining events that raced with deletion see Closed and no-op.
func (g *Registry) Delete(code string) {
	g.mu.Lock()
	r, exists := g.rooms[code]
	delete(g.rooms, code)
	g.mu.Unlock()

	if !exists {
		return
	}

	r.cancelTimers()
	r.closed = true

	log.Info().Str("room", code).Msg("room deleted")
}

// Count returns the number of live rooms.
func (g *Registry) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

// Clock returns the clock all room timers are scheduled on.
func (g *Registry) Clock() clockwork.Clock {
	return g.clock
}

// generateCode returns a code not currently in use. Codes are short
// shareable identifiers, not secrets. Caller must hold g.mu.
func (g *Registry) generateCode() string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = alphabet[rand.Intn(len(alphabet))]
		}
		if _, taken := g.rooms[string(code)]; !taken {
			return string(code)
		}
	}
}

func ValidateRoomCode(code string) error {
	if len(code) != roomCodeLength {
		return errors.New("ROOM_CODE_INVALID: Room code must be exactly 6 characters")
	}
	for _, ch := range code {
		if (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9') {
			return errors.New("ROOM_CODE_INVALID: Room code must contain only letters and digits")
		}
	}
	return nil
}

func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
