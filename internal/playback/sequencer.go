// Package playback implements the auto-advancing slide state machine.  The
// Sequencer is pure and synchronous; the Player drives one Sequencer from a
// single cancellable ticker.
package playback

import "time"

// Defaults used when no duration or tick interval is configured.
const (
	DefaultSlideDuration = 8 * time.Second
	DefaultTickInterval  = 50 * time.Millisecond
)

// Status is the coarse playback state shown to clients.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
	StatusEnded   Status = "ended"
	StatusEmpty   Status = "empty" // zero-length sequence, nothing to show
)

// Transition reports what an operation did to the current slide.
type Transition int

const (
	TransitionNone     Transition = iota // index unchanged
	TransitionAdvanced                   // moved to the following slide
	TransitionMoved                      // moved by retreat, jump or reset
	TransitionEnded                      // reached the end of the last slide
)

// State is a copy of the sequencer's fields at one instant.
type State struct {
	Index    int     `json:"index"`
	Progress float64 `json:"progress"`
	Paused   bool    `json:"paused"`
	Length   int     `json:"length"`
	Status   Status  `json:"status"`
}

// Sequencer tracks the current slide, its progress in percent and whether
// playback is paused.  Out-of-range requests are ignored, never fatal.  A
// Sequencer is not safe for concurrent use; Player adds the locking.
type Sequencer struct {
	duration time.Duration
	length   int
	index    int
	progress float64
	paused   bool
	ended    bool
}

// NewSequencer returns a playing sequencer over length slides.  A
// non-positive duration falls back to DefaultSlideDuration.
func NewSequencer(length int, duration time.Duration) *Sequencer {
	if duration <= 0 {
		duration = DefaultSlideDuration
	}
	if length < 0 {
		length = 0
	}
	return &Sequencer{duration: duration, length: length}
}

// Duration is the time one slide stays on screen while playing.
func (s *Sequencer) Duration() time.Duration { return s.duration }

// Elapse accounts for d of wall-clock time.  Progress depends only on the
// total unpaused time, not on how it was split into ticks.
func (s *Sequencer) Elapse(d time.Duration) Transition {
	if d <= 0 {
		return TransitionNone
	}
	return s.addProgress(float64(d) * 100 / float64(s.duration))
}

// Tick adds deltaRatio of a full slide to the progress and advances once it
// reaches 100.  Paused and empty sequencers ignore ticks.
func (s *Sequencer) Tick(deltaRatio float64) Transition {
	return s.addProgress(deltaRatio * 100)
}

func (s *Sequencer) addProgress(pct float64) Transition {
	if s.paused || s.length == 0 || pct <= 0 {
		return TransitionNone
	}
	s.progress += pct
	if s.progress >= 100 {
		return s.Advance()
	}
	return TransitionNone
}

// Advance moves to the next slide with zero progress.  On the last slide it
// ends the story instead: paused, with progress held at 100.
func (s *Sequencer) Advance() Transition {
	if s.length == 0 || s.ended {
		return TransitionNone
	}
	if s.index < s.length-1 {
		s.index++
		s.progress = 0
		return TransitionAdvanced
	}
	s.paused = true
	s.ended = true
	s.progress = 100
	return TransitionEnded
}

// Retreat moves to the previous slide with zero progress.  It is a no-op on
// the first slide.  The paused flag is left alone, so retreating from the
// end leaves playback paused.
func (s *Sequencer) Retreat() Transition {
	if s.index <= 0 || s.length == 0 {
		return TransitionNone
	}
	s.index--
	s.progress = 0
	s.ended = false
	return TransitionMoved
}

// Jump moves to slide i with zero progress.  Out-of-range indices are
// ignored.
func (s *Sequencer) Jump(i int) Transition {
	if i < 0 || i >= s.length {
		return TransitionNone
	}
	s.index = i
	s.progress = 0
	s.ended = false
	return TransitionMoved
}

// Restore places the sequencer on slide i without reporting a transition,
// for sessions rebuilt from a saved record.  ended puts it in the terminal
// state of the last slide instead.  Out-of-range indices are ignored.
func (s *Sequencer) Restore(i int, ended bool) {
	if s.length == 0 {
		return
	}
	if ended {
		s.index = s.length - 1
		s.progress = 100
		s.paused = true
		s.ended = true
		return
	}
	if i >= 0 && i < s.length {
		s.index = i
		s.progress = 0
	}
}

// Pause stops progress without touching index or progress.
func (s *Sequencer) Pause() {
	s.paused = true
}

// Resume lets progress continue.  It has no effect once the story has ended
// or when there is nothing to play.
func (s *Sequencer) Resume() bool {
	if s.ended || s.length == 0 || !s.paused {
		return false
	}
	s.paused = false
	return true
}

// Reconcile adopts a new sequence length.  When the current index no longer
// exists, index and progress both go back to 0.
func (s *Sequencer) Reconcile(length int) Transition {
	if length < 0 {
		length = 0
	}
	s.length = length
	if length == 0 || s.index >= length {
		s.index = 0
		s.progress = 0
		s.ended = false
		return TransitionMoved
	}
	if s.ended && s.index < length-1 {
		// the story grew past what used to be its last slide
		s.ended = false
	}
	return TransitionNone
}

// Reset starts over on a new sequence of the given length.  Index and
// progress are cleared together; the paused flag is kept.
func (s *Sequencer) Reset(length int) Transition {
	if length < 0 {
		length = 0
	}
	s.length = length
	s.index = 0
	s.progress = 0
	s.ended = false
	return TransitionMoved
}

// Playing reports whether ticks currently move progress.
func (s *Sequencer) Playing() bool {
	return !s.paused && s.length > 0
}

// Status classifies the current state.
func (s *Sequencer) Status() Status {
	switch {
	case s.length == 0:
		return StatusEmpty
	case s.ended:
		return StatusEnded
	case s.paused:
		return StatusPaused
	}
	return StatusPlaying
}

// State returns a copy of the current state.
func (s *Sequencer) State() State {
	return State{
		Index:    s.index,
		Progress: s.progress,
		Paused:   s.paused,
		Length:   s.length,
		Status:   s.Status(),
	}
}
