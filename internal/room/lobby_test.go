package room

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestJoinFirstPlayerIsHost(t *testing.T) {
	assert := assert.New(t)
	f := newFixture()
	r := f.reg.Create(KindTrick)

	f.seat(r, "Ana", "Ben")

	r.Lock()
	defer r.Unlock()
	assert.True(r.Player(connID(0)).IsHost)
	assert.False(r.Player(connID(1)).IsHost)
	assert.Equal([]string{connID(0), connID(1)}, r.Order)
}

func TestJoinRejectsEmptyName(t *testing.T) {
	assert := assert.New(t)
	f := newFixture()
	r := f.reg.Create(KindTrick)

	r.Lock()
	defer r.Unlock()
	_, err := f.lobby.Join(r, "c1", "   ")
	assert.ErrorContains(err, "NAME_REQUIRED")
}

func TestJoinRejectsDuplicateName(t *testing.T) {
	assert := assert.New(t)
	f := newFixture()
	r := f.reg.Create(KindTrick)
	f.seat(r, "Ana")

	r.Lock()
	defer r.Unlock()
	_, err := f.lobby.Join(r, "c9", "ANA")
	assert.ErrorContains(err, "NAME_TAKEN")
}

func TestJoinTruncatesLongName(t *testing.T) {
	assert := assert.New(t)
	f := newFixture()
	r := f.reg.Create(KindTrick)

	r.Lock()
	defer r.Unlock()
	p, err := f.lobby.Join(r, "c1", "AbcdefghijklmnoPQRS")
	assert.NoError(err)
	assert.Equal("Abcdefghijklmno", p.Name)

	p, err = f.lobby.Join(r, "c2", strings.Repeat("é", 20))
	assert.NoError(err)
	assert.True(utf8.ValidString(p.Name))
	assert.Equal(maxNameLength, utf8.RuneCountInString(p.Name))
}

func TestJoinRejectedWhileStarted(t *testing.T) {
	assert := assert.New(t)
	f := newFixture()
	r := f.reg.Create(KindTrick)
	f.seat(r, "Ana", "Ben", "Cal")

	r.Lock()
	defer r.Unlock()
	r.Started = true
	_, err := f.lobby.Join(r, "c9", "Dex")
	assert.ErrorContains(err, "GAME_IN_PROGRESS")
}

func TestReadyToggleFlipsBothWays(t *testing.T) {
	assert := assert.New(t)
	f := newFixture()
	r := f.reg.Create(KindTrick)
	f.seat(r, "Ana", "Ben")

	r.Lock()
	defer r.Unlock()
	f.lobby.ToggleReady(r, connID(0))
	assert.True(r.Player(connID(0)).Ready)
	f.lobby.ToggleReady(r, connID(0))
	assert.False(r.Player(connID(0)).Ready)
	assert.Equal(0, r.ReadyCount())
}

func TestCountdownNotStartedBelowMinimum(t *testing.T) {
	assert := assert.New(t)
	f := newFixture()
	r := f.reg.Create(KindTrick)
	f.seat(r, "Ana", "Ben")
	f.readyAll(r)

	r.Lock()
	defer r.Unlock()
	assert.False(r.CountdownActive())
	assert.Equal(2, r.ReadyCount())
}

func TestCountdownStartsWhenAllReady(t *testing.T) {
	assert := assert.New(t)
	f := newFixture()
	r := f.reg.Create(KindTrick)
	f.seat(r, "Ana", "Ben", "Cal")
	f.readyAll(r)

	r.Lock()
	defer r.Unlock()
	assert.True(r.CountdownActive())
	assert.Equal(CountdownSeconds, r.CountdownSeconds)
	assert.False(r.Started)
}

func TestCountdownCancelledWhenPlayerUnreadies(t *testing.T) {
	assert := assert.New(t)
	f := newFixture()
	r := f.reg.Create(KindTrick)
	f.seat(r, "Ana", "Ben", "Cal")
	f.readyAll(r)

	r.Lock()
	f.lobby.ToggleReady(r, connID(1))
	active := r.CountdownActive()
	r.Unlock()

	assert.False(active)
	assert.Equal(1, f.bc.count(EventCountdownCancelled))
}

func TestCountdownCancelIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	f := newFixture()
	r := f.reg.Create(KindTrick)
	f.seat(r, "Ana", "Ben", "Cal")
	f.readyAll(r)

	r.Lock()
	f.lobby.CancelCountdown(r)
	f.lobby.CancelCountdown(r)
	r.Unlock()

	assert.Equal(1, f.bc.count(EventCountdownCancelled))
}

func TestCountdownTicksDownAndStartsGame(t *testing.T) {
	assert := assert.New(t)
	f := newFixture()
	r := f.reg.Create(KindShedding)
	f.seat(r, "Ana", "Ben")
	f.readyAll(r)

	for want := CountdownSeconds - 1; want > 0; want-- {
		f.clock.Advance(time.Second)
		assert.Eventually(func() bool {
			r.Lock()
			defer r.Unlock()
			return r.CountdownSeconds == want
		}, time.Second, time.Millisecond)
	}

	f.clock.Advance(time.Second)
	assert.Eventually(func() bool {
		r.Lock()
		defer r.Unlock()
		return r.Started
	}, time.Second, time.Millisecond)

	assert.Equal(1, f.engine.startCount())

	r.Lock()
	defer r.Unlock()
	assert.False(r.CountdownActive())
}

func TestCancelledCountdownNeverFires(t *testing.T) {
	assert := assert.New(t)
	f := newFixture()
	r := f.reg.Create(KindShedding)
	f.seat(r, "Ana", "Ben")
	f.readyAll(r)

	r.Lock()
	f.lobby.CancelCountdown(r)
	r.Unlock()

	f.clock.Advance(time.Duration(CountdownSeconds+5) * time.Second)

	// Give any stray callback a chance to run before asserting.
	time.Sleep(20 * time.Millisecond)
	r.Lock()
	defer r.Unlock()
	assert.False(r.Started)
	assert.Equal(0, f.engine.startCount())
}

func TestEndGameReturnsRoomToLobby(t *testing.T) {
	assert := assert.New(t)
	f := newFixture()
	r := f.reg.Create(KindTrick)
	f.seat(r, "Ana", "Ben", "Cal")

	r.Lock()
	defer r.Unlock()
	r.Started = true
	r.Trick.Prompt = "prompt"
	r.Trick.Submissions = []Submission{{Card: "x", PlayerID: connID(0)}}
	r.Player(connID(0)).Ready = true
	r.Player(connID(1)).IsJudge = true

	f.lobby.EndGame(r, "Not enough players")

	assert.False(r.Started)
	assert.Empty(r.Trick.Submissions)
	assert.Empty(r.Trick.Prompt)
	assert.False(r.Player(connID(0)).Ready)
	assert.False(r.Player(connID(1)).IsJudge)
	assert.Equal(1, f.bc.count(EventGameEnded))
}

func TestResetWipesScoresAndDropsDisconnectedSeats(t *testing.T) {
	assert := assert.New(t)
	f := newFixture()
	r := f.reg.Create(KindTrick)
	f.seat(r, "Ana", "Ben", "Cal")

	r.Lock()
	defer r.Unlock()
	r.Started = true
	r.Player(connID(0)).Score = 7
	r.Player(connID(0)).Hand = []string{"a", "b"}
	f.recons.Disconnect(r, connID(2))
	assert.True(f.recons.HasRecord(r.Code, "Cal"))

	f.lobby.Reset(r)

	assert.False(r.Started)
	assert.Equal(0, r.Player(connID(0)).Score)
	assert.Empty(r.Player(connID(0)).Hand)
	assert.Nil(r.Player(connID(2)))
	assert.Len(r.All(), 2)
	assert.False(f.recons.HasRecord(r.Code, "Cal"))
	assert.Equal(1, f.bc.count(EventGameReset))
}
