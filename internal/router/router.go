// Package router registers the HTTP routes of the story service.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/wrapped-story/internal/handler"
)

// RegisterRoutes registers the operational endpoints: the liveness check
// and the Prometheus scrape target.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterStory registers the public story routes.  They are read-only, so
// the response cache wraps all of them.  Static paths win over the
// parameterised ones, which keeps /s/hostai and /v1/* out of the slide
// route.
func RegisterStory(e *echo.Echo, h *handler.StoryHandler, cache echo.MiddlewareFunc) {
	e.GET("/", h.Index, cache)
	e.GET("/s/hostai", h.Brand, cache)
	e.GET("/s/:token/:audience", h.Share, cache)
	e.GET("/:audience/:slide", h.View, cache)
}
