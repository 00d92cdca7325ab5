package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wrapped-story/internal/handler"
)

// RegisterAPI registers the host directory and share link endpoints under
// /v1.  Reads go through the response cache; generating a personal link
// is rate limited instead.
func RegisterAPI(e *echo.Echo, h *handler.HostHandler, cache, limit echo.MiddlewareFunc) {
	g := e.Group("/v1")

	g.GET("/routes", handler.Routes, cache)
	g.GET("/platform", h.Platform, cache)
	g.GET("/hosts", h.List, cache)
	g.GET("/hosts/:id", h.Get, cache)
	g.GET("/hosts/:id/links", h.Links, cache)

	g.POST("/links/viewer", h.ViewerLink, limit)
}
