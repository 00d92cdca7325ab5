package playback

import (
	"sync"
	"time"
)

// Options configures a Player.  Zero values select the defaults.
type Options struct {
	Duration     time.Duration
	TickInterval time.Duration
	Clock        Clock
	// Paused starts the player without a running ticker.
	Paused bool
	// StartIndex and Ended restore a saved position; see Sequencer.Restore.
	StartIndex int
	Ended      bool
	// OnChange is called after every state change, outside the player's
	// lock.  It must not block for long; it runs on the ticker goroutine
	// for timed progress.
	OnChange func(State, Transition)
}

// Player drives a Sequencer in real time.  It owns at most one live ticker:
// Resume starts one when none is running, and Pause, the end of the story
// and Close stop it.  Every mutation is serialized, so callers always observe
// a consistent State.
type Player struct {
	mu       sync.Mutex
	seq      *Sequencer
	clock    Clock
	interval time.Duration
	onChange func(State, Transition)
	run      *tickerRun
	last     time.Time
	closed   bool
}

type tickerRun struct {
	ticker Ticker
	stop   chan struct{}
}

// NewPlayer creates a player over length slides and starts its ticker
// unless opts.Paused is set or there is nothing to play.
func NewPlayer(length int, opts Options) *Player {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	p := &Player{
		seq:      NewSequencer(length, opts.Duration),
		clock:    opts.Clock,
		interval: opts.TickInterval,
		onChange: opts.OnChange,
	}
	if opts.Paused {
		p.seq.Pause()
	}
	p.seq.Restore(opts.StartIndex, opts.Ended)
	p.mu.Lock()
	p.syncTickerLocked()
	p.mu.Unlock()
	return p
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq.State()
}

// Running reports whether a ticker is live.
func (p *Player) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.run != nil
}

// Pause freezes progress and stops the ticker.
func (p *Player) Pause() State {
	return p.apply(func(s *Sequencer) Transition {
		s.Pause()
		return TransitionNone
	})
}

// Resume continues playback with a fresh ticker.  It does nothing after the
// story ended.
func (p *Player) Resume() State {
	return p.apply(func(s *Sequencer) Transition {
		s.Resume()
		return TransitionNone
	})
}

// Next advances one slide, ending the story on the last one.
func (p *Player) Next() State {
	return p.apply((*Sequencer).Advance)
}

// Prev goes back one slide.
func (p *Player) Prev() State {
	return p.apply((*Sequencer).Retreat)
}

// Jump shows slide i from the start.
func (p *Player) Jump(i int) State {
	return p.apply(func(s *Sequencer) Transition { return s.Jump(i) })
}

// Reconcile adopts a new sequence length after the enabled slides changed.
func (p *Player) Reconcile(length int) State {
	return p.apply(func(s *Sequencer) Transition { return s.Reconcile(length) })
}

// Reset starts over on a new sequence, e.g. after an audience change.  The
// running ticker is torn down and, unless paused, a new one started, so the
// new story never shares a timer with the old one.
func (p *Player) Reset(length int) State {
	return p.apply(func(s *Sequencer) Transition {
		p.stopLocked()
		return s.Reset(length)
	})
}

// Close stops the ticker for good.  Later calls only read state.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.stopLocked()
}

func (p *Player) apply(fn func(*Sequencer) Transition) State {
	p.mu.Lock()
	if p.closed {
		st := p.seq.State()
		p.mu.Unlock()
		return st
	}
	tr := fn(p.seq)
	if tr != TransitionNone {
		p.last = p.clock.Now()
	}
	p.syncTickerLocked()
	st := p.seq.State()
	cb := p.onChange
	p.mu.Unlock()

	if cb != nil {
		cb(st, tr)
	}
	return st
}

// syncTickerLocked makes the ticker match the sequencer: running while it
// plays, stopped otherwise.
func (p *Player) syncTickerLocked() {
	switch {
	case p.seq.Playing() && p.run == nil && !p.closed:
		r := &tickerRun{ticker: p.clock.NewTicker(p.interval), stop: make(chan struct{})}
		p.run = r
		p.last = p.clock.Now()
		go p.loop(r)
	case !p.seq.Playing() && p.run != nil:
		p.stopLocked()
	}
}

func (p *Player) stopLocked() {
	if p.run == nil {
		return
	}
	p.run.ticker.Stop()
	close(p.run.stop)
	p.run = nil
}

func (p *Player) loop(r *tickerRun) {
	for {
		select {
		case <-r.stop:
			return
		case now := <-r.ticker.C():
			p.tick(r, now)
		}
	}
}

func (p *Player) tick(r *tickerRun, now time.Time) {
	p.mu.Lock()
	if p.run != r {
		// superseded by Pause or Close while this tick was in flight
		p.mu.Unlock()
		return
	}
	d := now.Sub(p.last)
	if d <= 0 {
		p.mu.Unlock()
		return
	}
	p.last = now
	tr := p.seq.Elapse(d)
	p.syncTickerLocked()
	st := p.seq.State()
	cb := p.onChange
	p.mu.Unlock()

	if cb != nil {
		cb(st, tr)
	}
}
