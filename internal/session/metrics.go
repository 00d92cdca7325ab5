package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "story_sessions_active",
		Help: "Number of viewing sessions currently held in memory.",
	})

	sessionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "story_sessions_created_total",
			Help: "Total number of viewing sessions created, by audience.",
		},
		[]string{"audience"},
	)

	sessionsRestoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "story_sessions_restored_total",
		Help: "Total number of sessions rebuilt from the session store.",
	})

	sessionsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "story_sessions_expired_total",
		Help: "Total number of sessions dropped after being idle.",
	})

	storiesCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "story_completed_total",
			Help: "Total number of stories played to the end of their last slide, by audience.",
		},
		[]string{"audience"},
	)

	storyEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "story_events_published_total",
			Help: "Total number of story event publish attempts by type and status.",
		},
		[]string{"type", "status"},
	)
)
