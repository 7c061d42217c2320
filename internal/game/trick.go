package game

import (
	"errors"
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"cardrooms/internal/deck"
	"cardrooms/internal/room"
)

const (
	// BlankCard is the fill-in-your-own marker. Submitting it requires
	// free text, which goes through the sanitizer.
	BlankCard = "__BLANK__"

	trickHandSize  = 10
	trickWinPoints = 10
	blankChance    = 0.1
	maxFreeText    = 140

	trickRoundDelay = 4 * time.Second
	trickResetDelay = 10 * time.Second
)

// Trick is the judge-and-submission engine: one judge per round, everyone
// else submits a card against the prompt, judge picks a winner, first to the
// win threshold takes the game.
type Trick struct {
	clock clockwork.Clock
	bc    room.Broadcaster
	lobby LobbyOps
	texts *deck.Texts
	clean func(string) string
}

func NewTrick(clock clockwork.Clock, bc room.Broadcaster, lobby LobbyOps, texts *deck.Texts, clean func(string) string) *Trick {
	return &Trick{
		clock: clock,
		bc:    bc,
		lobby: lobby,
		texts: texts,
		clean: clean,
	}
}

// Start deals the opening round: first joined player judges, every player
// holds a full hand, one prompt drawn.
func (e *Trick) Start(r *room.Room) {
	r.Started = true

	if r.Trick.WhitePile == nil {
		r.Trick.WhitePile = deck.NewTextPile(e.texts.Fills)
		r.Trick.BlackPile = deck.NewTextPile(e.texts.Prompts)
	}

	r.Trick.JudgeIndex = 0
	r.Trick.Submissions = nil

	for i, p := range r.Active() {
		p.IsJudge = i == 0
		p.HasSubmitted = false
		if len(p.Hand) < trickHandSize {
			p.Hand = make([]string, 0, trickHandSize)
			for j := 0; j < trickHandSize; j++ {
				p.Hand = append(p.Hand, e.drawFill(r))
			}
		}
	}

	r.Trick.Prompt = r.Trick.BlackPile.Draw()

	e.bc.Event(r, room.EventGameStarted, room.GameStartedPayload{Kind: r.Kind})
	e.bc.Game(r)
}

func (e *Trick) HandleAction(r *room.Room, playerID string, a room.Action) error {
	if !r.Started {
		return errors.New("GAME_NOT_STARTED: Game has not started")
	}

	switch a.Name {
	case room.ActionSubmitCard:
		return e.submit(r, playerID, a.Card, a.FreeText)
	case room.ActionPickWinner:
		return e.pick(r, playerID, a.TargetID)
	default:
		return errors.New("UNKNOWN_ACTION: Not a trick-card action")
	}
}

func (e *Trick) submit(r *room.Room, playerID, card, freeText string) error {
	p := r.Player(playerID)
	if p == nil || p.Disconnected {
		return errors.New("NOT_IN_ROOM: You are not seated in this room")
	}
	if p.IsJudge {
		return errors.New("JUDGE_CANNOT_SUBMIT: The judge does not submit a card")
	}
	if p.HasSubmitted {
		return errors.New("ALREADY_SUBMITTED: You already submitted this round")
	}

	text := card
	if card == BlankCard {
		freeText = strings.TrimSpace(freeText)
		if freeText == "" {
			return errors.New("BLANK_REQUIRES_TEXT: The blank card needs your own text")
		}
		if runes := []rune(freeText); len(runes) > maxFreeText {
			freeText = string(runes[:maxFreeText])
		}
		text = e.clean(freeText)
	}

	idx := slices.Index(p.Hand, card)
	if idx == -1 {
		return errors.New("CARD_NOT_IN_HAND: That card is not in your hand")
	}
	p.Hand = slices.Delete(p.Hand, idx, idx+1)
	p.Hand = append(p.Hand, e.drawFill(r))

	r.Trick.Submissions = append(r.Trick.Submissions, room.Submission{Card: text, PlayerID: playerID})
	p.HasSubmitted = true

	// Shuffle exactly once, when the last submission lands, so the judge
	// cannot infer who submitted what from arrival order.
	if len(r.Trick.Submissions) >= e.submitterCount(r) {
		rand.Shuffle(len(r.Trick.Submissions), func(i, j int) {
			subs := r.Trick.Submissions
			subs[i], subs[j] = subs[j], subs[i]
		})
	}

	e.bc.Game(r)
	return nil
}

func (e *Trick) pick(r *room.Room, judgeID, targetID string) error {
	judge := r.Player(judgeID)
	if judge == nil || !judge.IsJudge {
		return errors.New("NOT_THE_JUDGE: Only the judge picks the winner")
	}
	winner := r.Player(targetID)
	if winner == nil {
		return errors.New("UNKNOWN_PLAYER: No such player")
	}

	winner.Score++
	log.Info().Str("room", r.Code).Str("player", winner.Name).
		Int("score", winner.Score).Msg("round won")

	e.bc.Event(r, EventRoundWinner, RoundWinnerPayload{Name: winner.Name, Score: winner.Score})

	if winner.Score >= trickWinPoints {
		e.bc.Event(r, EventGameWinner, room.PlayerNamePayload{Name: winner.Name})
		r.SetPending(room.After(e.clock, trickResetDelay, func(h *room.TimerHandle) {
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

	r.SetPending(room.After(e.clock, trickRoundDelay, func(h *room.TimerHandle) {
		r.Lock()
		defer r.Unlock()
		if r.Closed() || !r.PendingIs(h) {
			return
		}
		r.ClearPending()
		e.nextRound(r)
	}))
	return nil
}

// nextRound clears the submissions, draws a fresh prompt, and rotates the
// judge to the next active player in join order. Ends the game instead when
// too few players remain.
func (e *Trick) nextRound(r *room.Room) {
	r.Trick.Submissions = nil

	active := r.Active()
	if len(active) < r.Kind.MinPlayers() {
		e.lobby.EndGame(r, "Not enough players")
		return
	}

	r.Trick.Prompt = r.Trick.BlackPile.Draw()
	r.Trick.JudgeIndex = (r.Trick.JudgeIndex + 1) % len(active)

	for i, p := range active {
		p.IsJudge = i == r.Trick.JudgeIndex
		p.HasSubmitted = false
	}

	e.bc.Game(r)
}

// OnPlayerRemoved drops the removed player's pending submission and, if the
// judge's seat just vanished, advances the round to the next judge.
func (e *Trick) OnPlayerRemoved(r *room.Room, playerID string) {
	subs := r.Trick.Submissions[:0]
	for _, s := range r.Trick.Submissions {
		if s.PlayerID != playerID {
			subs = append(subs, s)
		}
	}
	r.Trick.Submissions = subs

	judgeIdx := -1
	for i, p := range r.Active() {
		if p.IsJudge {
			judgeIdx = i
			break
		}
	}

	if judgeIdx == -1 {
		e.nextRound(r)
		return
	}

	// Keep the rotation index aligned with the surviving judge's position.
	r.Trick.JudgeIndex = judgeIdx
	e.bc.Game(r)
}

// submitterCount is the number of submissions a round needs: every active
// player except the judge.
func (e *Trick) submitterCount(r *room.Room) int {
	n := 0
	for _, p := range r.Active() {
		if !p.IsJudge {
			n++
		}
	}
	return n
}

// drawFill draws a fill-in card, occasionally handing out the blank.
func (e *Trick) drawFill(r *room.Room) string {
	if rand.Float64() < blankChance {
		return BlankCard
	}
	return r.Trick.WhitePile.Draw()
}
