package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storyViewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "story_views_total",
			Help: "Total number of story views served, by entry point and audience.",
		},
		[]string{"entry", "audience"},
	)

	routeRedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "story_route_redirects_total",
			Help: "Total number of story requests redirected, by reason.",
		},
		[]string{"reason"},
	)

	viewerLinksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "story_viewer_links_total",
			Help: "Total number of personal viewer links generated, by role.",
		},
		[]string{"role"},
	)

	wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "story_ws_connections",
		Help: "Number of open session WebSocket connections.",
	})
)
