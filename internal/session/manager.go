package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iliyamo/wrapped-story/internal/model"
	"github.com/iliyamo/wrapped-story/internal/playback"
	"github.com/iliyamo/wrapped-story/internal/queue"
	"github.com/iliyamo/wrapped-story/internal/repository"
	"github.com/iliyamo/wrapped-story/internal/route"
)

// DefaultIdleTTL is how long an unwatched session survives without use.
const DefaultIdleTTL = 30 * time.Minute

const publishTimeout = 5 * time.Second

// Store persists session records so a session survives a restart or an
// idle expiry.  RedisSessionStore implements it.
type Store interface {
	Save(ctx context.Context, rec model.SessionRecord) error
	Load(ctx context.Context, id string) (model.SessionRecord, error)
	Delete(ctx context.Context, id string) error
}

// EventSink receives story lifecycle events.
type EventSink interface {
	Publish(ctx context.Context, event queue.StoryEvent) error
}

// Options configure a Manager.  Zero values fall back to the playback and
// package defaults; a nil Store or Events disables that feature.
type Options struct {
	SlideDuration time.Duration
	TickInterval  time.Duration
	IdleTTL       time.Duration
	Clock         playback.Clock
	Store         Store
	Events        EventSink
	Logger        zerolog.Logger
}

// CreateParams describe a new session.  HostKey may be a share token or a
// raw host id; empty picks the default host.  A nil Enabled enables every
// slide.
type CreateParams struct {
	HostKey       string
	Audience      model.Audience
	Enabled       route.EnabledSet
	MapMode       model.MapViewMode
	MapPlaying    bool
	AdminControls bool
	GuestToken    string
	StaffToken    string
	Paused        bool
}

// Manager owns every live session.
type Manager struct {
	hosts repository.HostProvider
	opts  Options
	log   zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	events sync.WaitGroup
}

// NewManager returns a Manager resolving hosts through hosts.
func NewManager(hosts repository.HostProvider, opts Options) *Manager {
	if opts.Clock == nil {
		opts.Clock = playback.SystemClock{}
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	return &Manager{
		hosts:    hosts,
		opts:     opts,
		log:      opts.Logger.With().Str("component", "session").Logger(),
		sessions: make(map[string]*Session),
	}
}

// Hosts is the directory sessions resolve hosts against.
func (m *Manager) Hosts() repository.HostProvider { return m.hosts }

// Create starts a new session and returns its first snapshot.
func (m *Manager) Create(ctx context.Context, p CreateParams) (Snapshot, error) {
	if p.Audience == "" {
		p.Audience = model.AudienceOwner
	}
	if !p.Audience.Valid() {
		return Snapshot{}, ErrUnknownAudience
	}
	if p.MapMode != "" && !p.MapMode.Valid() {
		return Snapshot{}, ErrInvalidMapMode
	}
	host, err := m.lookupHost(ctx, p.HostKey, p.Audience)
	if err != nil {
		return Snapshot{}, err
	}

	s := m.newSession(config{
		id:            uuid.NewString(),
		host:          host,
		audience:      p.Audience,
		enabled:       p.Enabled,
		mapMode:       p.MapMode,
		mapPlaying:    p.MapPlaying,
		adminControls: p.AdminControls,
		guestToken:    p.GuestToken,
		staffToken:    p.StaffToken,
		paused:        p.Paused,
	})

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	sessionsActive.Inc()
	sessionsCreatedTotal.WithLabelValues(route.AudienceSlug(p.Audience)).Inc()

	m.persist(ctx, s)
	snap := s.Snapshot()
	m.emit(queue.EventSessionStarted, snap)
	m.log.Info().
		Str("session_id", snap.SessionID).
		Str("audience", string(snap.Audience)).
		Int("slides", len(snap.Slides)).
		Msg("session created")
	return snap, nil
}

// lookupHost resolves key, falling back to the default host when key is
// empty.  The brand audience tolerates a missing host.
func (m *Manager) lookupHost(ctx context.Context, key string, a model.Audience) (*model.Host, error) {
	var (
		host *model.Host
		err  error
	)
	if key != "" {
		host, err = repository.ResolveHost(ctx, m.hosts, key)
	} else {
		host, err = repository.DefaultHost(ctx, m.hosts)
	}
	if err == nil {
		return host, nil
	}
	if !a.HostScoped() && key == "" && errors.Is(err, repository.ErrHostNotFound) {
		return nil, nil
	}
	return nil, err
}

func (m *Manager) newSession(cfg config) *Session {
	cfg.duration = m.opts.SlideDuration
	cfg.tickInterval = m.opts.TickInterval
	cfg.clock = m.opts.Clock
	cfg.onEnded = func(s *Session, snap Snapshot) {
		storiesCompletedTotal.WithLabelValues(snap.AudienceSlug).Inc()
		if m.registered(s) {
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			m.persist(ctx, s)
			cancel()
		}
		m.emit(queue.EventStoryCompleted, snap)
	}
	return newSession(cfg)
}

// Get returns a live session, restoring it from the store when it is no
// longer in memory.  Restored sessions start paused on the saved slide.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.Touch()
		return s, nil
	}
	if m.opts.Store == nil {
		return nil, ErrSessionNotFound
	}

	rec, err := m.opts.Store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotStored) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	restored, err := m.restore(ctx, rec)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		// lost a race with another restore of the same id
		m.mu.Unlock()
		restored.Close()
		existing.Touch()
		return existing, nil
	}
	m.sessions[id] = restored
	m.mu.Unlock()
	sessionsActive.Inc()
	sessionsRestoredTotal.Inc()
	m.log.Debug().Str("session_id", id).Int("index", rec.Index).Msg("session restored")
	return restored, nil
}

func (m *Manager) restore(ctx context.Context, rec model.SessionRecord) (*Session, error) {
	if !rec.Audience.Valid() {
		return nil, ErrUnknownAudience
	}
	var host *model.Host
	if rec.HostID != "" {
		h, err := m.hosts.Get(ctx, rec.HostID)
		switch {
		case err == nil:
			host = h
		case errors.Is(err, repository.ErrHostNotFound):
			// the host was removed since; fall back like a fresh session
		default:
			return nil, err
		}
	}
	if host == nil {
		h, err := m.lookupHost(ctx, "", rec.Audience)
		if err != nil {
			return nil, err
		}
		host = h
	}

	enabled := make(route.EnabledSet, len(model.SlideKinds))
	for _, k := range model.SlideKinds {
		enabled[k] = false
	}
	for _, k := range rec.Enabled {
		if k.Valid() {
			enabled[k] = true
		}
	}

	return m.newSession(config{
		id:            rec.ID,
		host:          host,
		audience:      rec.Audience,
		enabled:       enabled,
		mapMode:       rec.MapMode,
		mapPlaying:    rec.MapPlaying,
		adminControls: rec.AdminControls,
		guestToken:    rec.GuestToken,
		staffToken:    rec.StaffToken,
		paused:        true,
		startIndex:    rec.Index,
		ended:         rec.Ended,
	}), nil
}

// Apply runs fn against session id, persists the result and returns the
// new snapshot.  An error from fn is returned unchanged and nothing is
// saved.
func (m *Manager) Apply(ctx context.Context, id string, fn func(*Session) error) (Snapshot, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	if err := fn(s); err != nil {
		return Snapshot{}, err
	}
	m.persist(ctx, s)
	return s.Snapshot(), nil
}

// Snapshot returns the current snapshot of session id.
func (m *Manager) Snapshot(ctx context.Context, id string) (Snapshot, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	return s.Snapshot(), nil
}

// Delete ends session id and forgets its stored record.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	// drop first: once Close returns nothing re-saves the record
	if ok {
		m.drop(s)
	}
	var storeErr error
	if m.opts.Store != nil {
		storeErr = m.opts.Store.Delete(ctx, id)
	}
	if !ok && storeErr == nil {
		return ErrSessionNotFound
	}
	return storeErr
}

func (m *Manager) registered(s *Session) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[s.ID()] == s
}

func (m *Manager) drop(s *Session) {
	snap := s.Snapshot()
	s.Close()
	sessionsActive.Dec()
	m.emit(queue.EventSessionEnded, snap)
}

// Len reports how many sessions are live.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions that have been idle for at least the idle TTL as of
// now and returns how many it closed.  Sessions with subscribers are never
// idle.  Their stored records are kept so a later Get restores them.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		last, watched := s.idleSince()
		if watched || now.Sub(last) < m.opts.IdleTTL {
			continue
		}
		expired = append(expired, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range expired {
		m.drop(s)
		sessionsExpiredTotal.Inc()
	}
	if len(expired) > 0 {
		m.log.Debug().Int("expired", len(expired)).Msg("idle sessions swept")
	}
	return len(expired)
}

// Run sweeps idle sessions until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	interval := m.opts.IdleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := m.opts.Clock.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C():
			m.Sweep(now)
		}
	}
}

// Close ends every session and waits for pending events to be published.
func (m *Manager) Close() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	for _, s := range all {
		m.drop(s)
	}
	m.events.Wait()
}

func (m *Manager) persist(ctx context.Context, s *Session) {
	if m.opts.Store == nil {
		return
	}
	if err := m.opts.Store.Save(ctx, s.Record()); err != nil {
		m.log.Warn().Err(err).Str("session_id", s.ID()).Msg("failed to persist session")
	}
}

// emit publishes asynchronously so a slow broker never stalls playback.
func (m *Manager) emit(eventType string, snap Snapshot) {
	if m.opts.Events == nil {
		return
	}
	ev := queue.StoryEvent{
		Type:       eventType,
		SessionID:  snap.SessionID,
		Audience:   snap.AudienceSlug,
		Slides:     snap.SlideSlugs(),
		SlideIndex: snap.Playback.Index,
		OccurredAt: m.opts.Clock.Now().UTC().Format(time.RFC3339),
	}
	if snap.Host != nil {
		ev.HostID = snap.Host.ID
		ev.HostToken = snap.Host.Token
		ev.HostName = snap.Host.Name
	}

	m.events.Add(1)
	go func() {
		defer m.events.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := m.opts.Events.Publish(ctx, ev); err != nil {
			storyEventsTotal.WithLabelValues(eventType, "error").Inc()
			m.log.Warn().Err(err).Str("type", eventType).Str("session_id", ev.SessionID).Msg("failed to publish story event")
			return
		}
		storyEventsTotal.WithLabelValues(eventType, "ok").Inc()
	}()
}
