// Package handler exposes the HTTP surface of the story service: the public
// story routes, the host directory, share links and playback sessions.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/wrapped-story/internal/middleware"
	"github.com/iliyamo/wrapped-story/internal/model"
	"github.com/iliyamo/wrapped-story/internal/repository"
	"github.com/iliyamo/wrapped-story/internal/route"
	"github.com/iliyamo/wrapped-story/internal/session"
	"github.com/iliyamo/wrapped-story/internal/share"
	"github.com/iliyamo/wrapped-story/internal/utils"
)

// StoryHandler serves the read-only story routes.  Every response is a
// StoryView; nothing here creates state, so responses are cacheable.
type StoryHandler struct {
	Hosts   repository.HostProvider
	Summary repository.SummaryProvider
	log     zerolog.Logger
}

// NewStoryHandler returns a StoryHandler.  A nil summary provider disables
// the outro narrative.
func NewStoryHandler(hosts repository.HostProvider, summary repository.SummaryProvider, logger zerolog.Logger) *StoryHandler {
	return &StoryHandler{
		Hosts:   hosts,
		Summary: summary,
		log:     logger.With().Str("component", "story").Logger(),
	}
}

// HostSummary is the public face of a host: never its statistics.
type HostSummary struct {
	ID       string `json:"id"`
	Token    string `json:"token"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Year     int    `json:"year,omitempty"`
}

func summarize(h *model.Host) HostSummary {
	s := HostSummary{ID: h.ID, Token: utils.HostToken(h.ID), Name: h.Name, Location: h.Location}
	if h.Stats != nil {
		s.Year = h.Stats.Year
	}
	return s
}

// StoryView is everything a client needs to render one slide of a story.
type StoryView struct {
	Audience      model.Audience        `json:"audience"`
	AudienceSlug  string                `json:"audience_slug"`
	Slide         model.SlideKind       `json:"slide,omitempty"`
	SlideSlug     string                `json:"slide_slug,omitempty"`
	Slides        []string              `json:"slides"`
	Navigation    route.Navigation      `json:"navigation"`
	Host          *HostSummary          `json:"host,omitempty"`
	Stats         *model.HostStats      `json:"stats,omitempty"`
	Platform      *model.PlatformStats  `json:"platform,omitempty"`
	Viewer        *session.Viewer       `json:"viewer,omitempty"`
	Summary       string                `json:"summary,omitempty"`
	AdminControls bool                  `json:"admin_controls"`
	ShortPath     string                `json:"short_path,omitempty"`
	CustomPath    string                `json:"custom_path,omitempty"`
	Links         []share.AudienceLinks `json:"links,omitempty"`
}

// buildView assembles the view of slide under audience a.  An empty slide
// means the first slide of the effective sequence.  Stats, platform figures
// and the summary are best effort: a failure drops the field, not the view.
func (h *StoryHandler) buildView(ctx context.Context, host *model.Host, a model.Audience, q share.Query, slide model.SlideKind) StoryView {
	enabled := q.EnabledOrAll()
	seq := route.EffectiveSequence(route.BaseSequence(a), enabled)
	if slide == "" && len(seq) > 0 {
		slide = seq[0]
	}

	v := StoryView{
		Audience:      a,
		AudienceSlug:  route.AudienceSlug(a),
		Slide:         slide,
		SlideSlug:     route.SlideSlug(slide),
		Slides:        make([]string, len(seq)),
		Navigation:    route.Navigation{Index: -1},
		AdminControls: q.AdminControls,
	}
	for i, k := range seq {
		v.Slides[i] = route.SlideSlug(k)
	}
	if slide != "" {
		v.Navigation = route.NavigateIn(a, seq, slide)
	}

	switch {
	case !a.HostScoped():
		v.ShortPath = share.BrandPath
		v.CustomPath = share.CustomPath("", a, enabled)
		if p, err := h.Hosts.Platform(ctx); err == nil {
			v.Platform = p
		} else {
			h.log.Warn().Err(err).Msg("platform stats unavailable")
		}
	case host != nil:
		hs := summarize(host)
		v.Host = &hs
		v.Stats = host.Stats
		v.ShortPath = share.ShortPath(host.ID, a)
		v.CustomPath = share.CustomPath(host.ID, a, enabled)
		v.Viewer = session.ResolveViewer(host, a, q.GuestToken, q.StaffToken)
		if q.AdminControls {
			v.Links = share.LinksFor(host.ID, enabled)
		}
	}

	if slide == model.SlideOutro && h.Summary != nil {
		text, err := h.Summary.Summary(ctx, host, a)
		if err != nil {
			h.log.Warn().Err(err).Str("audience", string(a)).Msg("summary unavailable")
		} else {
			v.Summary = text
		}
	}
	return v
}

func (h *StoryHandler) defaultHost(ctx context.Context) (*model.Host, error) {
	host, err := repository.DefaultHost(ctx, h.Hosts)
	if errors.Is(err, repository.ErrHostNotFound) {
		return nil, nil
	}
	return host, err
}

// View serves GET /:audience/:slide.  Routes that do not parse, and slides
// outside the audience's story, redirect to the default route.  A valid
// slide that the ?slides= list switched off redirects to the first enabled
// slide instead.
func (h *StoryHandler) View(c echo.Context) error {
	r := route.Parse(c.Param("audience"), c.Param("slide"))
	if !r.Valid {
		routeRedirectsTotal.WithLabelValues("invalid_route").Inc()
		return c.Redirect(http.StatusFound, route.DefaultPath)
	}

	q := share.ParseQuery(c.QueryParams())
	seq := q.Slides(r.Audience)
	if !containsSlide(seq, r.Slide) {
		if len(seq) == 0 {
			routeRedirectsTotal.WithLabelValues("no_slides").Inc()
			return c.Redirect(http.StatusFound, route.DefaultPath)
		}
		routeRedirectsTotal.WithLabelValues("slide_disabled").Inc()
		return c.Redirect(http.StatusFound, withQuery(route.SlidePath(r.Audience, seq[0])+"/", c.QueryString()))
	}

	ctx := c.Request().Context()
	host, err := h.defaultHost(ctx)
	if err != nil {
		return writeError(c, h.log, err)
	}
	storyViewsTotal.WithLabelValues("slide", route.AudienceSlug(r.Audience)).Inc()
	return c.JSON(http.StatusOK, h.buildView(ctx, host, r.Audience, q, r.Slide))
}

// Index serves GET /.  The legacy ?view= parameter picks the audience and
// hides the admin controls; without it this is the owner story.
func (h *StoryHandler) Index(c echo.Context) error {
	a, ok := middleware.AudienceFrom(c)
	if !ok {
		a = model.AudienceOwner
	}
	q := share.ParseQuery(c.QueryParams())
	ctx := c.Request().Context()

	var host *model.Host
	if a.HostScoped() {
		var err error
		if host, err = h.defaultHost(ctx); err != nil {
			return writeError(c, h.log, err)
		}
	}
	storyViewsTotal.WithLabelValues("index", route.AudienceSlug(a)).Inc()
	return c.JSON(http.StatusOK, h.buildView(ctx, host, a, q, ""))
}

// Share serves GET /s/:token/:audience, the links hosts hand out.  The
// token may also be the raw host id.  An unknown audience slug falls back
// to the owner story and the brand audience redirects to its own link.
func (h *StoryHandler) Share(c echo.Context) error {
	a, ok := route.AudienceForSlug(c.Param("audience"))
	if !ok {
		a = model.AudienceOwner
	}
	if !a.HostScoped() {
		routeRedirectsTotal.WithLabelValues("brand").Inc()
		return c.Redirect(http.StatusFound, withQuery(share.BrandPath, c.QueryString()))
	}

	ctx := c.Request().Context()
	host, err := repository.ResolveHost(ctx, h.Hosts, c.Param("token"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	q := share.ParseQuery(c.QueryParams())
	storyViewsTotal.WithLabelValues("share", route.AudienceSlug(a)).Inc()
	return c.JSON(http.StatusOK, h.buildView(ctx, host, a, q, ""))
}

// Brand serves GET /s/hostai, the host-independent platform story.
func (h *StoryHandler) Brand(c echo.Context) error {
	q := share.ParseQuery(c.QueryParams())
	storyViewsTotal.WithLabelValues("brand", route.AudienceSlug(model.AudienceHostAI)).Inc()
	return c.JSON(http.StatusOK, h.buildView(c.Request().Context(), nil, model.AudienceHostAI, q, ""))
}

func containsSlide(seq []model.SlideKind, k model.SlideKind) bool {
	for _, s := range seq {
		if s == k {
			return true
		}
	}
	return false
}

func withQuery(path, rawQuery string) string {
	if rawQuery == "" {
		return path
	}
	return path + "?" + rawQuery
}
