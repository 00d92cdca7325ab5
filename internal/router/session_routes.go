package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wrapped-story/internal/handler"
	"github.com/iliyamo/wrapped-story/internal/middleware"
)

// RegisterSessions registers the playback session endpoints under
// /v1/sessions.  All of them are rate limited.  Changes to what a story
// shows need the admin controls, which a ?view= link does not have.
func RegisterSessions(e *echo.Echo, h *handler.SessionHandler, ws *handler.WSHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/sessions", limit)

	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/ws", ws.Serve)

	// ---- Playback ----
	g.POST("/:id/pause", h.Pause)
	g.POST("/:id/resume", h.Resume)
	g.POST("/:id/next", h.Next)
	g.POST("/:id/prev", h.Prev)
	g.PUT("/:id/slide", h.Slide)

	// ---- Admin ----
	admin := middleware.RequireAdminControls()
	g.PUT("/:id/audience", h.Audience, admin)
	g.PUT("/:id/slides", h.Slides, admin)
	g.PUT("/:id/host", h.Host, admin)
	g.PUT("/:id/map", h.Map, admin)
}
