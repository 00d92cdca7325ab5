package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/wrapped-story/internal/middleware"
	"github.com/iliyamo/wrapped-story/internal/model"
	"github.com/iliyamo/wrapped-story/internal/repository"
	"github.com/iliyamo/wrapped-story/internal/route"
	"github.com/iliyamo/wrapped-story/internal/session"
)

// SessionHandler drives playback sessions over HTTP.  Every mutation
// returns the session's new snapshot.
type SessionHandler struct {
	Sessions *session.Manager
	log      zerolog.Logger
}

func NewSessionHandler(sessions *session.Manager, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{Sessions: sessions, log: logger.With().Str("component", "sessions").Logger()}
}

type createSessionRequest struct {
	Host       string  `json:"host"`
	Audience   string  `json:"audience"`
	Slides     *string `json:"slides"`
	MapMode    string  `json:"map_mode"`
	MapPlaying bool    `json:"map_playing"`
	Paused     bool    `json:"paused"`
	GuestToken string  `json:"g"`
	StaffToken string  `json:"s"`
}

// parseAudience accepts a path slug ("guest") or an audience name
// ("GUEST").  Empty means owner.
func parseAudience(raw string) (model.Audience, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.AudienceOwner, nil
	}
	if a, ok := route.AudienceForSlug(raw); ok {
		return a, nil
	}
	return "", session.ErrUnknownAudience
}

// Create serves POST /v1/sessions.  Sessions created from a ?view= link
// start without admin controls.
func (h *SessionHandler) Create(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, h.log, errInvalidBody)
	}
	a, err := parseAudience(req.Audience)
	if err != nil {
		return writeError(c, h.log, err)
	}
	params := session.CreateParams{
		HostKey:       strings.TrimSpace(req.Host),
		Audience:      a,
		MapMode:       model.MapViewMode(strings.ToUpper(req.MapMode)),
		MapPlaying:    req.MapPlaying,
		AdminControls: middleware.AdminControls(c),
		GuestToken:    strings.TrimSpace(req.GuestToken),
		StaffToken:    strings.TrimSpace(req.StaffToken),
		Paused:        req.Paused,
	}
	if req.Slides != nil {
		params.Enabled = route.ParseSlideList(*req.Slides)
	}
	snap, err := h.Sessions.Create(c.Request().Context(), params)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, snap)
}

// Get serves GET /v1/sessions/:id.
func (h *SessionHandler) Get(c echo.Context) error {
	snap, err := h.Sessions.Snapshot(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// Delete serves DELETE /v1/sessions/:id.
func (h *SessionHandler) Delete(c echo.Context) error {
	if err := h.Sessions.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SessionHandler) apply(c echo.Context, fn func(*session.Session) error) error {
	snap, err := h.Sessions.Apply(c.Request().Context(), c.Param("id"), fn)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// adminApply is apply for changes only the admin controls may make.
func (h *SessionHandler) adminApply(c echo.Context, fn func(*session.Session) error) error {
	return h.apply(c, func(s *session.Session) error {
		if !s.AdminControls() {
			return errAdminDisabled
		}
		return fn(s)
	})
}

// Pause serves POST /v1/sessions/:id/pause.
func (h *SessionHandler) Pause(c echo.Context) error {
	return h.apply(c, func(s *session.Session) error { s.Pause(); return nil })
}

// Resume serves POST /v1/sessions/:id/resume.
func (h *SessionHandler) Resume(c echo.Context) error {
	return h.apply(c, func(s *session.Session) error { s.Resume(); return nil })
}

// Next serves POST /v1/sessions/:id/next.
func (h *SessionHandler) Next(c echo.Context) error {
	return h.apply(c, func(s *session.Session) error { s.Next(); return nil })
}

// Prev serves POST /v1/sessions/:id/prev.
func (h *SessionHandler) Prev(c echo.Context) error {
	return h.apply(c, func(s *session.Session) error { s.Prev(); return nil })
}

type slideRequest struct {
	Index *int   `json:"index"`
	Slide string `json:"slide"`
}

// Slide serves PUT /v1/sessions/:id/slide with either an index into the
// effective sequence or a slide slug.
func (h *SessionHandler) Slide(c echo.Context) error {
	var req slideRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, h.log, errInvalidBody)
	}
	switch {
	case req.Slide != "":
		k, ok := route.SlideForSlug(req.Slide)
		if !ok {
			return writeError(c, h.log, session.ErrUnknownSlide)
		}
		return h.apply(c, func(s *session.Session) error { return s.JumpTo(k) })
	case req.Index != nil:
		i := *req.Index
		return h.apply(c, func(s *session.Session) error { s.Jump(i); return nil })
	}
	return writeError(c, h.log, errInvalidBody)
}

type audienceRequest struct {
	Audience string `json:"audience"`
}

// Audience serves PUT /v1/sessions/:id/audience.  The story restarts.
func (h *SessionHandler) Audience(c echo.Context) error {
	var req audienceRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Audience) == "" {
		return writeError(c, h.log, errInvalidBody)
	}
	a, err := parseAudience(req.Audience)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.adminApply(c, func(s *session.Session) error { return s.SetAudience(a) })
}

type slidesRequest struct {
	Slides *string `json:"slides"`
}

// Slides serves PUT /v1/sessions/:id/slides with a comma-separated list of
// enabled slide slugs.
func (h *SessionHandler) Slides(c echo.Context) error {
	var req slidesRequest
	if err := c.Bind(&req); err != nil || req.Slides == nil {
		return writeError(c, h.log, errInvalidBody)
	}
	enabled := route.ParseSlideList(*req.Slides)
	return h.adminApply(c, func(s *session.Session) error { s.SetEnabled(enabled); return nil })
}

type hostRequest struct {
	Host string `json:"host"`
}

// Host serves PUT /v1/sessions/:id/host.  The story restarts on the new
// host.
func (h *SessionHandler) Host(c echo.Context) error {
	var req hostRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Host) == "" {
		return writeError(c, h.log, errInvalidBody)
	}
	host, err := repository.ResolveHost(c.Request().Context(), h.Sessions.Hosts(), req.Host)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.adminApply(c, func(s *session.Session) error { s.SetHost(host); return nil })
}

type mapRequest struct {
	Mode    string `json:"mode"`
	Playing *bool  `json:"playing"`
}

// Map serves PUT /v1/sessions/:id/map.
func (h *SessionHandler) Map(c echo.Context) error {
	var req mapRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, h.log, errInvalidBody)
	}
	mode := model.MapViewMode(strings.ToUpper(strings.TrimSpace(req.Mode)))
	return h.adminApply(c, func(s *session.Session) error { return s.SetMap(mode, req.Playing) })
}
