package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/wrapped-story/internal/model"
	"github.com/iliyamo/wrapped-story/internal/repository"
	"github.com/iliyamo/wrapped-story/internal/route"
	"github.com/iliyamo/wrapped-story/internal/share"
	"github.com/iliyamo/wrapped-story/internal/utils"
)

// HostHandler serves the host directory and the share links built from it.
type HostHandler struct {
	Hosts repository.HostProvider
	log   zerolog.Logger
}

func NewHostHandler(hosts repository.HostProvider, logger zerolog.Logger) *HostHandler {
	return &HostHandler{Hosts: hosts, log: logger.With().Str("component", "hosts").Logger()}
}

// List serves GET /v1/hosts?q=.  An empty q lists every host.
func (h *HostHandler) List(c echo.Context) error {
	hosts, err := h.Hosts.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]HostSummary, 0, len(hosts))
	for _, host := range hosts {
		out = append(out, summarize(host))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get serves GET /v1/hosts/:id.  The id may be a share token.
func (h *HostHandler) Get(c echo.Context) error {
	host, err := repository.ResolveHost(c.Request().Context(), h.Hosts, c.Param("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"host":  summarize(host),
		"stats": host.Stats,
	})
}

// Links serves GET /v1/hosts/:id/links[?slides=], the admin share table.
func (h *HostHandler) Links(c echo.Context) error {
	host, err := repository.ResolveHost(c.Request().Context(), h.Hosts, c.Param("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	q := share.ParseQuery(c.QueryParams())
	return c.JSON(http.StatusOK, echo.Map{
		"host":  summarize(host),
		"links": share.LinksFor(host.ID, q.EnabledOrAll()),
	})
}

// Platform serves GET /v1/platform, the brand-wide figures.
func (h *HostHandler) Platform(c echo.Context) error {
	p, err := h.Hosts.Platform(c.Request().Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, p)
}

type viewerLinkRequest struct {
	Host  string `json:"host"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

// ViewerLink serves POST /v1/links/viewer.  It turns a guest or staff email
// into a personal link that carries only the email's token.  The email is
// neither stored nor logged.
func (h *HostHandler) ViewerLink(c echo.Context) error {
	var req viewerLinkRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, h.log, errInvalidBody)
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}
	host, err := repository.ResolveHost(c.Request().Context(), h.Hosts, req.Host)
	if err != nil {
		return writeError(c, h.log, err)
	}
	hostToken := utils.HostToken(host.ID)

	role := strings.ToLower(strings.TrimSpace(req.Role))
	var path, token string
	switch role {
	case route.AudienceSlug(model.AudienceGuest):
		path, token = share.GuestPath(hostToken, email), utils.GuestToken(email)
	case route.AudienceSlug(model.AudienceStaff):
		path, token = share.StaffPath(hostToken, email), utils.StaffToken(email)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be guest or staff"})
	}
	viewerLinksTotal.WithLabelValues(role).Inc()
	return c.JSON(http.StatusOK, echo.Map{
		"path":  path,
		"token": token,
		"host":  summarize(host),
	})
}

// Routes serves GET /v1/routes: every valid static path and the base story
// order of each audience.
func Routes(c echo.Context) error {
	sequences := make(map[string][]string, len(model.Audiences))
	for _, a := range model.Audiences {
		base := route.BaseSequence(a)
		slugs := make([]string, len(base))
		for i, k := range base {
			slugs[i] = route.SlideSlug(k)
		}
		sequences[route.AudienceSlug(a)] = slugs
	}
	return c.JSON(http.StatusOK, echo.Map{
		"default":   route.DefaultPath,
		"paths":     route.StaticPaths(),
		"sequences": sequences,
	})
}
