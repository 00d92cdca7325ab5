package playback

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = time.Second
	pollAt  = time.Millisecond
)

func newTestPlayer(t *testing.T, length int, opts Options) (*Player, *ManualClock) {
	t.Helper()
	clock := NewManualClock(time.Unix(1_700_000_000, 0))
	opts.Clock = clock
	if opts.Duration == 0 {
		opts.Duration = time.Second
	}
	if opts.TickInterval == 0 {
		opts.TickInterval = 100 * time.Millisecond
	}
	p := NewPlayer(length, opts)
	t.Cleanup(p.Close)
	return p, clock
}

func TestPlayerProgressFollowsClock(t *testing.T) {
	p, clock := newTestPlayer(t, 3, Options{})
	require.True(t, p.Running())

	clock.Advance(500 * time.Millisecond)
	assert.Eventually(t, func() bool { return p.State().Progress == 50 }, waitFor, pollAt)

	clock.Advance(500 * time.Millisecond)
	assert.Eventually(t, func() bool { return p.State().Index == 1 }, waitFor, pollAt)
	assert.Equal(t, 0.0, p.State().Progress)
}

func TestPlayerStopsTickerAtEnd(t *testing.T) {
	var mu sync.Mutex
	var transitions []Transition
	p, clock := newTestPlayer(t, 2, Options{OnChange: func(_ State, tr Transition) {
		mu.Lock()
		defer mu.Unlock()
		if tr != TransitionNone {
			transitions = append(transitions, tr)
		}
	}})

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return p.State().Index == 1 }, waitFor, pollAt)
	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return p.State().Status == StatusEnded }, waitFor, pollAt)

	assert.False(t, p.Running())
	assert.Equal(t, 0, clock.Live())
	mu.Lock()
	assert.Equal(t, []Transition{TransitionAdvanced, TransitionEnded}, transitions)
	mu.Unlock()
}

func TestPlayerNeverRunsTwoTickers(t *testing.T) {
	p, clock := newTestPlayer(t, 4, Options{})
	assert.Equal(t, 1, clock.Live())

	p.Resume()
	p.Resume()
	assert.Equal(t, 1, clock.Live(), "resume while playing keeps the existing ticker")

	for i := 0; i < 5; i++ {
		p.Pause()
		assert.Equal(t, 0, clock.Live())
		p.Resume()
		assert.Equal(t, 1, clock.Live())
	}

	p.Next()
	p.Jump(3)
	p.Reset(2)
	assert.Equal(t, 1, clock.Live())

	p.Close()
	assert.Equal(t, 0, clock.Live())
	assert.False(t, p.Running())
}

func TestPlayerPausedTimeDoesNotCount(t *testing.T) {
	p, clock := newTestPlayer(t, 3, Options{})

	clock.Advance(300 * time.Millisecond)
	require.Eventually(t, func() bool { return p.State().Progress == 30 }, waitFor, pollAt)

	p.Pause()
	clock.Advance(10 * time.Second)
	p.Resume()
	clock.Advance(200 * time.Millisecond)
	assert.Eventually(t, func() bool { return p.State().Progress == 50 }, waitFor, pollAt)
	assert.Equal(t, 0, p.State().Index)
}

func TestPlayerStartsPaused(t *testing.T) {
	p, clock := newTestPlayer(t, 3, Options{Paused: true})
	assert.False(t, p.Running())
	assert.Equal(t, 0, clock.Live())
	assert.Equal(t, StatusPaused, p.State().Status)
}

func TestPlayerEmptySequence(t *testing.T) {
	p, clock := newTestPlayer(t, 0, Options{})
	assert.False(t, p.Running())
	assert.Equal(t, StatusEmpty, p.Resume().Status)
	assert.Equal(t, 0, clock.Live())

	p.Reconcile(3)
	assert.True(t, p.Running(), "a sequence that becomes non-empty starts playing")
}

func TestPlayerManualNavigationNotifies(t *testing.T) {
	var got []State
	p, _ := newTestPlayer(t, 3, Options{Paused: true, OnChange: func(st State, _ Transition) {
		got = append(got, st)
	}})

	p.Next()
	p.Next()
	p.Prev()
	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 1}, []int{got[0].Index, got[1].Index, got[2].Index})
}

func TestPlayerClosedIgnoresMutations(t *testing.T) {
	p, _ := newTestPlayer(t, 3, Options{})
	p.Close()
	st := p.Next()
	assert.Equal(t, 0, st.Index)
	assert.False(t, p.Running())
}

func TestPlayerResetReplacesTicker(t *testing.T) {
	p, clock := newTestPlayer(t, 3, Options{})
	clock.Advance(500 * time.Millisecond)
	require.Eventually(t, func() bool { return p.State().Progress == 50 }, waitFor, pollAt)
	require.Equal(t, 1, clock.Created())

	st := p.Reset(5)
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, 0.0, st.Progress)
	assert.Equal(t, 2, clock.Created(), "reset starts a fresh ticker")
	assert.Equal(t, 1, clock.Live(), "the old ticker is stopped")

	clock.Advance(500 * time.Millisecond)
	assert.Eventually(t, func() bool { return p.State().Progress == 50 }, waitFor, pollAt)
	assert.Equal(t, 0, p.State().Index)
}

func TestPlayerResetWhilePausedStaysStopped(t *testing.T) {
	p, clock := newTestPlayer(t, 3, Options{})
	p.Pause()
	p.Reset(4)
	assert.False(t, p.Running())
	assert.Equal(t, 0, clock.Live())
	assert.Equal(t, StatusPaused, p.State().Status)
}

func TestPlayerRestoresSavedPosition(t *testing.T) {
	var moves int
	onChange := func(_ State, tr Transition) {
		if tr != TransitionNone {
			moves++
		}
	}

	p, clock := newTestPlayer(t, 4, Options{Paused: true, StartIndex: 2, OnChange: onChange})
	assert.Equal(t, 2, p.State().Index)
	assert.Equal(t, StatusPaused, p.State().Status)
	assert.Equal(t, 0, clock.Live())

	ended, clock := newTestPlayer(t, 4, Options{Paused: true, StartIndex: 1, Ended: true, OnChange: onChange})
	st := ended.State()
	assert.Equal(t, 3, st.Index)
	assert.Equal(t, 100.0, st.Progress)
	assert.Equal(t, StatusEnded, st.Status)

	assert.Equal(t, StatusEnded, ended.Resume().Status)
	assert.Equal(t, StatusEnded, ended.Next().Status)
	assert.False(t, ended.Running())
	assert.Equal(t, 0, clock.Live())
	assert.Zero(t, moves, "restoring reports no transition")
}
