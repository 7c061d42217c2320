package game

import (
	"errors"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"cardrooms/internal/deck"
	"cardrooms/internal/room"
)

const (
	shedHandSize   = 7
	shedPenalty    = 2
	shedResetDelay = 8 * time.Second
	defaultWildHue = deck.ColorRed
)

// Shedding is the sequential-turn matching engine: play a card matching the
// discard by color or rank, first empty hand wins. Action cards skip,
// reverse, and stack mandatory draws.
type Shedding struct {
	clock clockwork.Clock
	bc    room.Broadcaster
	lobby LobbyOps
}

func NewShedding(clock clockwork.Clock, bc room.Broadcaster, lobby LobbyOps) *Shedding {
	return &Shedding{clock: clock, bc: bc, lobby: lobby}
}

// Start deals fresh hands from a full shuffled deck and flips a non-wild,
// non-action starting discard.
func (e *Shedding) Start(r *room.Room) {
	r.Shed = room.ShedState{
		Draw:      deck.NewSheddingDeck(),
		Direction: 1,
	}
	r.Started = true

	for _, p := range r.Active() {
		p.ShedHand = make([]deck.Card, 0, shedHandSize)
		p.DeclaredLow = false
		for i := 0; i < shedHandSize; i++ {
			if c, ok := e.draw(r); ok {
				p.ShedHand = append(p.ShedHand, c)
			}
		}
	}

	// The opening discard must be a plain number card, so pull the first
	// one out of the pile rather than discarding rejects.
	start := slices.IndexFunc(r.Shed.Draw, func(c deck.Card) bool {
		return !c.IsWild() && !c.IsAction()
	})
	first := r.Shed.Draw[start]
	r.Shed.Draw = slices.Delete(r.Shed.Draw, start, start+1)
	r.Shed.Discard = []deck.Card{first}
	r.Shed.Current = &first

	e.bc.Event(r, room.EventGameStarted, room.GameStartedPayload{Kind: r.Kind})
	e.bc.Game(r)
}

func (e *Shedding) HandleAction(r *room.Room, playerID string, a room.Action) error {
	if !r.Started {
		return errors.New("GAME_NOT_STARTED: Game has not started")
	}

	switch a.Name {
	case room.ActionPlayCard:
		return e.play(r, playerID, a.CardIndex, a.ChosenColor)
	case room.ActionDrawCard:
		return e.drawForTurn(r, playerID)
	case room.ActionDeclareLowCard:
		return e.declareLow(r, playerID)
	case room.ActionChallenge:
		return e.challenge(r, a.TargetID)
	default:
		return errors.New("UNKNOWN_ACTION: Not a shedding-card action")
	}
}

func (e *Shedding) play(r *room.Room, playerID string, cardIndex int, chosenColor string) error {
	p, err := e.turnHolder(r, playerID)
	if err != nil {
		return err
	}

	if cardIndex < 0 || cardIndex >= len(p.ShedHand) {
		return errors.New("INVALID_CARD: No such card in your hand")
	}
	card := p.ShedHand[cardIndex]

	if !canPlay(card, *r.Shed.Current) {
		return errors.New("ILLEGAL_CARD: Cannot play that card")
	}
	if r.Shed.DrawStack > 0 && !card.IsDraw() {
		return errors.New("MUST_DRAW: Play a draw card or draw from the pile")
	}

	p.ShedHand = slices.Delete(p.ShedHand, cardIndex, cardIndex+1)

	if card.IsWild() {
		card.ActiveColor = defaultWildHue
		if slices.Contains(deck.Colors, chosenColor) {
			card.ActiveColor = chosenColor
		}
	}
	r.Shed.Discard = append(r.Shed.Discard, card)
	r.Shed.Current = &card

	switch card.Value {
	case deck.ValueSkip:
		e.advance(r)
	case deck.ValueReverse:
		r.Shed.Direction *= -1
		// With two players a reverse comes straight back, so it acts as
		// a skip.
		if len(r.Active()) == 2 {
			e.advance(r)
		}
	case deck.ValueDrawTwo:
		r.Shed.DrawStack += 2
	case deck.ValueWildDrawFour:
		r.Shed.DrawStack += 4
	}

	if len(p.ShedHand) == 0 {
		log.Info().Str("room", r.Code).Str("player", p.Name).Msg("shedding game won")
		e.bc.Event(r, EventGameWinner, room.PlayerNamePayload{Name: p.Name})
		r.SetPending(room.After(e.clock, shedResetDelay, func(h *room.TimerHandle) {
			r.Lock()
			defer r.Unlock()
			if r.Closed() || !r.PendingIs(h) {
				return
			}
			r.ClearPending()
			e.lobby.Reset(r)
		}))
		return nil
	}

	if len(p.ShedHand) == 1 && !p.DeclaredLow {
		e.penalize(r, p, "Forgot to declare low card")
	}

	e.advance(r)
	e.bc.Game(r)
	return nil
}

func (e *Shedding) drawForTurn(r *room.Room, playerID string) error {
	p, err := e.turnHolder(r, playerID)
	if err != nil {
		return err
	}

	if r.Shed.DrawStack > 0 {
		owed := r.Shed.DrawStack
		for i := 0; i < owed; i++ {
			if c, ok := e.draw(r); ok {
				p.ShedHand = append(p.ShedHand, c)
			}
		}
		r.Shed.DrawStack = 0
		e.advance(r)
		e.bc.Game(r)
		return nil
	}

	c, ok := e.draw(r)
	if ok {
		p.ShedHand = append(p.ShedHand, c)
		if canPlay(c, *r.Shed.Current) {
			// The drawn card is playable: the turn stays open so the
			// player can choose to play it.
			e.bc.EventTo(r, p.ID, EventCanPlayDrawn, c)
			e.bc.Game(r)
			return nil
		}
	}

	e.advance(r)
	e.bc.Game(r)
	return nil
}

func (e *Shedding) declareLow(r *room.Room, playerID string) error {
	p := r.Player(playerID)
	if p == nil || p.Disconnected {
		return errors.New("NOT_IN_ROOM: You are not seated in this room")
	}

	p.DeclaredLow = true
	e.bc.Event(r, EventLowCardDeclared, room.PlayerNamePayload{Name: p.Name})
	e.bc.Game(r)
	return nil
}

func (e *Shedding) challenge(r *room.Room, targetID string) error {
	target := r.Player(targetID)
	if target == nil || len(target.ShedHand) != 1 || target.DeclaredLow {
		return nil // no effect
	}

	e.penalize(r, target, "Caught without declaring low card")
	e.bc.Game(r)
	return nil
}

// OnPlayerRemoved keeps the turn index inside the shrunken active list.
func (e *Shedding) OnPlayerRemoved(r *room.Room, playerID string) {
	if n := len(r.Active()); n > 0 && r.Shed.Turn >= n {
		r.Shed.Turn = 0
	}
	e.bc.Game(r)
}

// turnHolder resolves the acting player and enforces that it is their turn.
func (e *Shedding) turnHolder(r *room.Room, playerID string) (*room.Player, error) {
	active := r.Active()
	if len(active) == 0 {
		return nil, errors.New("NOT_IN_ROOM: You are not seated in this room")
	}
	if r.Shed.Turn >= len(active) {
		r.Shed.Turn = 0
	}
	current := active[r.Shed.Turn]
	if current.ID != playerID {
		return nil, errors.New("NOT_YOUR_TURN: It is not your turn")
	}
	return current, nil
}

func (e *Shedding) advance(r *room.Room) {
	n := len(r.Active())
	if n == 0 {
		return
	}
	r.Shed.Turn = (r.Shed.Turn + r.Shed.Direction + n) % n
}

func (e *Shedding) penalize(r *room.Room, p *room.Player, reason string) {
	for i := 0; i < shedPenalty; i++ {
		if c, ok := e.draw(r); ok {
			p.ShedHand = append(p.ShedHand, c)
		}
	}
	e.bc.Event(r, EventLowCardPenalty, PenaltyPayload{Name: p.Name, Reason: reason})
}

// draw takes the top card of the draw pile, reshuffling the discard pile
// (minus its top card) back in when the pile runs dry.
func (e *Shedding) draw(r *room.Room) (deck.Card, bool) {
	if len(r.Shed.Draw) == 0 {
		if len(r.Shed.Discard) <= 1 {
			return deck.Card{}, false
		}
		top := r.Shed.Discard[len(r.Shed.Discard)-1]
		recycled := make([]deck.Card, len(r.Shed.Discard)-1)
		copy(recycled, r.Shed.Discard[:len(r.Shed.Discard)-1])
		for i := range recycled {
			recycled[i].ActiveColor = ""
		}
		deck.Shuffle(recycled)
		r.Shed.Draw = recycled
		r.Shed.Discard = []deck.Card{top}
	}

	c := r.Shed.Draw[len(r.Shed.Draw)-1]
	r.Shed.Draw = r.Shed.Draw[:len(r.Shed.Draw)-1]
	return c, true
}

// canPlay checks legality against the current discard: wilds always play;
// otherwise the color must match the discard's active color, or the value
// must match.
func canPlay(c, top deck.Card) bool {
	if c.IsWild() {
		return true
	}
	activeColor := top.Color
	if top.ActiveColor != "" {
		activeColor = top.ActiveColor
	}
	return c.Color == activeColor || c.Value == top.Value
}
