package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicksEndOnLastSlide(t *testing.T) {
	const n = 5
	s := NewSequencer(n, 0)
	step := float64(DefaultTickInterval) / float64(DefaultSlideDuration)

	for i := 0; i < 10_000 && s.Status() != StatusEnded; i++ {
		s.Tick(step)
	}
	st := s.State()
	assert.Equal(t, StatusEnded, st.Status)
	assert.Equal(t, n-1, st.Index)
	assert.True(t, st.Paused)
	assert.Equal(t, 100.0, st.Progress)
}

func TestElapseIsIndependentOfTickSize(t *testing.T) {
	fine := NewSequencer(3, 8*time.Second)
	coarse := NewSequencer(3, 8*time.Second)

	for i := 0; i < 160; i++ {
		fine.Elapse(50 * time.Millisecond)
	}
	for i := 0; i < 8; i++ {
		coarse.Elapse(time.Second)
	}
	assert.Equal(t, 1, fine.State().Index)
	assert.Equal(t, fine.State(), coarse.State())
}

func TestProgressStaysInRange(t *testing.T) {
	s := NewSequencer(2, time.Second)
	assert.Equal(t, TransitionAdvanced, s.Elapse(5*time.Second))
	assert.Equal(t, 0.0, s.State().Progress)
	assert.Equal(t, TransitionEnded, s.Elapse(5*time.Second))
	assert.Equal(t, 100.0, s.State().Progress)
	assert.Equal(t, TransitionNone, s.Elapse(5*time.Second))
}

func TestAdvanceAndRetreatBoundaries(t *testing.T) {
	s := NewSequencer(3, 0)
	assert.Equal(t, TransitionNone, s.Retreat(), "no slide before the first")
	assert.Equal(t, 0, s.State().Index)

	s.Tick(0.4)
	assert.Equal(t, TransitionAdvanced, s.Advance())
	assert.Equal(t, State{Index: 1, Progress: 0, Length: 3, Status: StatusPlaying}, s.State())

	s.Advance()
	assert.Equal(t, TransitionEnded, s.Advance())
	assert.Equal(t, TransitionNone, s.Advance(), "already ended")
}

func TestRetreatFromEndStaysPaused(t *testing.T) {
	s := NewSequencer(2, 0)
	s.Advance()
	s.Advance()
	require.Equal(t, StatusEnded, s.Status())

	assert.Equal(t, TransitionMoved, s.Retreat())
	st := s.State()
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, 0.0, st.Progress)
	assert.True(t, st.Paused)
	assert.Equal(t, StatusPaused, st.Status)
}

func TestResumeAfterEndIsIgnored(t *testing.T) {
	s := NewSequencer(1, 0)
	s.Advance()
	assert.False(t, s.Resume())
	assert.Equal(t, StatusEnded, s.Status())
}

func TestPauseResumeKeepPosition(t *testing.T) {
	s := NewSequencer(4, 0)
	s.Jump(2)
	s.Tick(0.25)
	before := s.State()

	s.Pause()
	s.Tick(0.5)
	assert.Equal(t, before.Progress, s.State().Progress, "paused sequencer ignores ticks")
	assert.Equal(t, before.Index, s.State().Index)

	assert.True(t, s.Resume())
	assert.Equal(t, before.Progress, s.State().Progress)
	assert.False(t, s.Resume(), "already playing")
}

func TestJump(t *testing.T) {
	s := NewSequencer(4, 0)
	s.Tick(0.5)
	assert.Equal(t, TransitionMoved, s.Jump(3))
	assert.Equal(t, 3, s.State().Index)
	assert.Equal(t, 0.0, s.State().Progress)

	for _, i := range []int{-1, 4, 100} {
		assert.Equal(t, TransitionNone, s.Jump(i))
		assert.Equal(t, 3, s.State().Index)
	}
}

func TestReconcileShrink(t *testing.T) {
	s := NewSequencer(5, 0)
	s.Jump(4)
	s.Tick(0.3)

	s.Reconcile(3)
	st := s.State()
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, 0.0, st.Progress)
	assert.Equal(t, 3, st.Length)
}

func TestReconcileKeepsValidIndex(t *testing.T) {
	s := NewSequencer(5, 0)
	s.Jump(1)
	s.Tick(0.3)

	assert.Equal(t, TransitionNone, s.Reconcile(3))
	assert.Equal(t, 1, s.State().Index)
	assert.InDelta(t, 30.0, s.State().Progress, 1e-9)
}

func TestReconcileToEmpty(t *testing.T) {
	s := NewSequencer(5, 0)
	s.Jump(2)
	s.Reconcile(0)
	assert.Equal(t, StatusEmpty, s.Status())
	assert.Equal(t, 0, s.State().Index)
}

func TestResetKeepsPausedFlag(t *testing.T) {
	s := NewSequencer(7, 0)
	s.Jump(5)
	s.Tick(0.6)
	s.Pause()

	s.Reset(5)
	st := s.State()
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, 0.0, st.Progress)
	assert.True(t, st.Paused)
	assert.Equal(t, 5, st.Length)
}

func TestResetAfterEndAllowsResume(t *testing.T) {
	s := NewSequencer(1, 0)
	s.Advance()
	s.Reset(3)
	assert.Equal(t, StatusPaused, s.Status())
	assert.True(t, s.Resume())
}

func TestEmptySequenceIsInert(t *testing.T) {
	s := NewSequencer(0, 0)
	assert.Equal(t, StatusEmpty, s.Status())
	assert.Equal(t, TransitionNone, s.Tick(1))
	assert.Equal(t, TransitionNone, s.Advance())
	assert.Equal(t, TransitionNone, s.Retreat())
	assert.Equal(t, TransitionNone, s.Jump(0))
	assert.False(t, s.Resume())
	assert.False(t, s.Playing())
	assert.Equal(t, State{Status: StatusEmpty}, s.State())
}

func TestRestore(t *testing.T) {
	s := NewSequencer(5, 0)
	s.Pause()
	s.Restore(3, false)
	st := s.State()
	assert.Equal(t, 3, st.Index)
	assert.Equal(t, 0.0, st.Progress)
	assert.Equal(t, StatusPaused, st.Status)

	s.Restore(9, false)
	assert.Equal(t, 3, s.State().Index, "out of range is ignored")

	s.Restore(0, true)
	st = s.State()
	assert.Equal(t, 4, st.Index)
	assert.Equal(t, 100.0, st.Progress)
	assert.Equal(t, StatusEnded, st.Status)
	assert.False(t, s.Resume())
	assert.Equal(t, TransitionNone, s.Advance())

	empty := NewSequencer(0, 0)
	empty.Restore(0, true)
	assert.Equal(t, StatusEmpty, empty.Status())
}
