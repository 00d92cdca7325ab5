// Package session coordinates viewing sessions.  A Session holds the whole
// state of one story being watched (audience, host, enabled slides, map
// settings and playback) and serializes every change to it.  The Manager
// keeps sessions by id, persists them and expires idle ones.
package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iliyamo/wrapped-story/internal/model"
	"github.com/iliyamo/wrapped-story/internal/playback"
	"github.com/iliyamo/wrapped-story/internal/route"
	"github.com/iliyamo/wrapped-story/internal/share"
	"github.com/iliyamo/wrapped-story/internal/utils"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownAudience = errors.New("unknown audience")
	ErrUnknownSlide    = errors.New("unknown slide")
	ErrSlideNotShown   = errors.New("slide is not part of the current story")
	ErrInvalidMapMode  = errors.New("invalid map view mode")
	ErrHostRequired    = errors.New("audience requires a host")
)

// subscriberBuffer is how many snapshots a slow subscriber may fall behind
// before older ones are dropped.
const subscriberBuffer = 8

// Session is one viewer's story.  All exported methods are safe for
// concurrent use.
type Session struct {
	id    string
	clock playback.Clock

	mu            sync.Mutex
	host          *model.Host
	audience      model.Audience
	enabled       route.EnabledSet
	slides        []model.SlideKind
	mapMode       model.MapViewMode
	mapPlaying    bool
	adminControls bool
	guestToken    string
	staffToken    string
	lastSeen      time.Time
	player        *playback.Player

	version      atomic.Uint64
	endedPending atomic.Bool
	changed      chan struct{}
	done         chan struct{}
	pumpDone     chan struct{}
	closeOnce    sync.Once

	subMu sync.Mutex
	subs  map[chan Snapshot]struct{}

	// onEnded runs on the session's own goroutine when the story reaches
	// its end.
	onEnded func(*Session, Snapshot)
}

// config is what newSession needs; the Manager fills it in.
type config struct {
	id            string
	host          *model.Host
	audience      model.Audience
	enabled       route.EnabledSet
	mapMode       model.MapViewMode
	mapPlaying    bool
	adminControls bool
	guestToken    string
	staffToken    string
	paused        bool
	startIndex    int
	ended         bool
	duration      time.Duration
	tickInterval  time.Duration
	clock         playback.Clock
	onEnded       func(*Session, Snapshot)
}

func newSession(cfg config) *Session {
	if cfg.enabled == nil {
		cfg.enabled = route.AllEnabled()
	}
	if !cfg.mapMode.Valid() {
		cfg.mapMode = model.MapViewGlobe
	}
	if cfg.clock == nil {
		cfg.clock = playback.SystemClock{}
	}
	s := &Session{
		id:            cfg.id,
		clock:         cfg.clock,
		host:          cfg.host,
		audience:      cfg.audience,
		enabled:       cfg.enabled.Clone(),
		mapMode:       cfg.mapMode,
		mapPlaying:    cfg.mapPlaying,
		adminControls: cfg.adminControls,
		guestToken:    cfg.guestToken,
		staffToken:    cfg.staffToken,
		lastSeen:      cfg.clock.Now(),
		changed:       make(chan struct{}, 1),
		done:          make(chan struct{}),
		pumpDone:      make(chan struct{}),
		subs:          make(map[chan Snapshot]struct{}),
		onEnded:       cfg.onEnded,
	}
	s.slides = route.EffectiveSequence(route.BaseSequence(s.audience), s.enabled)

	s.player = playback.NewPlayer(len(s.slides), playback.Options{
		Duration:     cfg.duration,
		TickInterval: cfg.tickInterval,
		Clock:        cfg.clock,
		Paused:       cfg.paused,
		StartIndex:   cfg.startIndex,
		Ended:        cfg.ended,
		OnChange:     s.playerChanged,
	})
	go s.pump()
	return s
}

// ID is the session's identifier.
func (s *Session) ID() string { return s.id }

func (s *Session) playerChanged(_ playback.State, tr playback.Transition) {
	if tr == playback.TransitionEnded {
		s.endedPending.Store(true)
	}
	s.signal()
}

// signal wakes the pump without blocking; one pending wake-up is enough
// because the pump always reads the latest state.
func (s *Session) signal() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func (s *Session) pump() {
	defer close(s.pumpDone)
	for {
		select {
		case <-s.done:
			// an ending that raced the close still counts
			s.flushEnded(s.Snapshot())
			return
		case <-s.changed:
			snap := s.Snapshot()
			s.flushEnded(snap)
			s.broadcast(snap)
		}
	}
}

func (s *Session) flushEnded(snap Snapshot) {
	if s.endedPending.Swap(false) && s.onEnded != nil {
		s.onEnded(s, snap)
	}
}

func (s *Session) touchLocked() {
	s.lastSeen = s.clock.Now()
}

// SetAudience switches the story to a.  Index and progress restart at 0.
func (s *Session) SetAudience(a model.Audience) error {
	if !a.Valid() {
		return ErrUnknownAudience
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.HostScoped() && s.host == nil {
		return ErrHostRequired
	}
	s.touchLocked()
	s.audience = a
	s.slides = route.EffectiveSequence(route.BaseSequence(a), s.enabled)
	s.player.Reset(len(s.slides))
	return nil
}

// SetEnabled replaces the enabled slide set.  The current slide is kept
// when its index still exists, otherwise playback restarts at 0.
func (s *Session) SetEnabled(enabled route.EnabledSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.enabled = enabled.Clone()
	s.slides = route.EffectiveSequence(route.BaseSequence(s.audience), s.enabled)
	s.player.Reconcile(len(s.slides))
}

// SetHost switches to another host's story and restarts it.
func (s *Session) SetHost(h *model.Host) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.host = h
	s.player.Reset(len(s.slides))
}

// SetMap changes how the map slide renders.  A nil playing leaves the globe
// spin setting alone.
func (s *Session) SetMap(mode model.MapViewMode, playing *bool) error {
	if mode != "" && !mode.Valid() {
		return ErrInvalidMapMode
	}
	s.mu.Lock()
	s.touchLocked()
	if mode != "" {
		s.mapMode = mode
	}
	if playing != nil {
		s.mapPlaying = *playing
	}
	s.mu.Unlock()
	s.signal()
	return nil
}

// Next advances one slide, ending the story on the last one.
func (s *Session) Next() {
	s.withPlayer(func(p *playback.Player) { p.Next() })
}

// Prev goes back one slide.
func (s *Session) Prev() {
	s.withPlayer(func(p *playback.Player) { p.Prev() })
}

// Pause freezes playback.
func (s *Session) Pause() {
	s.withPlayer(func(p *playback.Player) { p.Pause() })
}

// Resume continues playback.
func (s *Session) Resume() {
	s.withPlayer(func(p *playback.Player) { p.Resume() })
}

// Jump shows slide i of the current effective sequence.  Out-of-range
// indices are ignored.
func (s *Session) Jump(i int) {
	s.withPlayer(func(p *playback.Player) { p.Jump(i) })
}

// JumpTo shows slide kind k.  It fails when k is not in the current story.
func (s *Session) JumpTo(k model.SlideKind) error {
	if !k.Valid() {
		return ErrUnknownSlide
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, kind := range s.slides {
		if kind == k {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrSlideNotShown
	}
	s.touchLocked()
	s.player.Jump(idx)
	return nil
}

func (s *Session) withPlayer(fn func(*playback.Player)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	fn(s.player)
}

// AdminControls reports whether the session was opened from an admin link.
// Sessions started from a shared ?view= link only allow playback commands.
func (s *Session) AdminControls() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adminControls
}

// Touch marks the session as used without changing it.
func (s *Session) Touch() {
	s.mu.Lock()
	s.touchLocked()
	s.mu.Unlock()
}

// idleSince reports when the session was last used.  Sessions with live
// subscribers count as in use.
func (s *Session) idleSince() (time.Time, bool) {
	s.subMu.Lock()
	watched := len(s.subs) > 0
	s.subMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen, watched
}

// Snapshot returns a consistent, immutable view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.player.State()
	snap := Snapshot{
		SessionID:     s.id,
		Version:       s.version.Add(1),
		Audience:      s.audience,
		AudienceSlug:  route.AudienceSlug(s.audience),
		Slides:        append([]model.SlideKind(nil), s.slides...),
		Enabled:       s.enabled.Clone(),
		Playback:      st,
		MapMode:       s.mapMode,
		MapPlaying:    s.mapPlaying,
		AdminControls: s.adminControls,
		UpdatedAt:     s.clock.Now().UTC(),
	}
	if st.Length > 0 && st.Index < len(s.slides) {
		snap.Current = s.slides[st.Index]
		snap.Navigation = route.NavigateIn(s.audience, s.slides, snap.Current)
	} else {
		snap.Navigation = route.Navigation{Index: -1}
	}
	if s.host != nil {
		snap.Host = &HostRef{
			ID:       s.host.ID,
			Token:    utils.HostToken(s.host.ID),
			Name:     s.host.Name,
			Location: s.host.Location,
		}
		snap.ShortPath = share.ShortPath(s.host.ID, s.audience)
		snap.CustomPath = share.CustomPath(s.host.ID, s.audience, s.enabled)
	} else if !s.audience.HostScoped() {
		snap.ShortPath = share.BrandPath
		snap.CustomPath = share.CustomPath("", s.audience, s.enabled)
	}
	snap.Viewer = s.viewerLocked()
	return snap
}

func (s *Session) viewerLocked() *Viewer {
	return ResolveViewer(s.host, s.audience, s.guestToken, s.staffToken)
}

// Record returns the persisted form of the session.
func (s *Session) Record() model.SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := model.SessionRecord{
		ID:            s.id,
		Audience:      s.audience,
		MapMode:       s.mapMode,
		MapPlaying:    s.mapPlaying,
		AdminControls: s.adminControls,
		GuestToken:    s.guestToken,
		StaffToken:    s.staffToken,
		UpdatedAt:     s.clock.Now().UTC(),
	}
	st := s.player.State()
	rec.Index = st.Index
	rec.Ended = st.Status == playback.StatusEnded
	if s.host != nil {
		rec.HostID = s.host.ID
	}
	for _, k := range model.SlideKinds {
		if s.enabled[k] {
			rec.Enabled = append(rec.Enabled, k)
		}
	}
	return rec
}

// Subscribe returns a channel receiving a snapshot after every change,
// starting with the current one.  The channel is closed by cancel or when
// the session closes.  Slow subscribers miss intermediate snapshots.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, subscriberBuffer)
	ch <- s.Snapshot()

	s.subMu.Lock()
	select {
	case <-s.done:
		s.subMu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			if _, ok := s.subs[ch]; ok {
				delete(s.subs, ch)
				close(ch)
			}
			s.subMu.Unlock()
			s.Touch()
		})
	}
	return ch, cancel
}

func (s *Session) broadcast(snap Snapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// drop the oldest queued snapshot to make room for the latest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// Close stops playback and disconnects every subscriber.  It returns once
// the session's goroutine has exited, so no completion callback runs after
// it.  It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.player.Close()
		s.subMu.Lock()
		close(s.done)
		for ch := range s.subs {
			delete(s.subs, ch)
			close(ch)
		}
		s.subMu.Unlock()
	})
	<-s.pumpDone
}

// Done is closed once the session has been closed.
func (s *Session) Done() <-chan struct{} { return s.done }
