package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/wrapped-story/internal/config"
	"github.com/iliyamo/wrapped-story/internal/playback"
	"github.com/iliyamo/wrapped-story/internal/repository"
	"github.com/iliyamo/wrapped-story/internal/service"
	"github.com/iliyamo/wrapped-story/internal/session"
)

func defaults(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.FromEnv()
	require.NoError(t, err)
	return cfg
}

func TestNewLoggerLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	cases := map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"warn":  zerolog.WarnLevel,
		"loud":  zerolog.InfoLevel,
		"":      zerolog.InfoLevel,
	}
	for in, want := range cases {
		cfg := defaults(t)
		cfg.LogLevel = in
		newLogger(cfg)
		assert.Equal(t, want, zerolog.GlobalLevel(), "LOG_LEVEL=%q", in)
	}
}

func TestStaticHostSourceNeedsNoDatabase(t *testing.T) {
	cfg := defaults(t)
	cfg.HostSource = config.HostSourceStatic
	hosts, closeHosts := newHostProvider(context.Background(), cfg, zerolog.Nop())
	defer closeHosts()

	_, ok := hosts.(*repository.StaticHostRepo)
	assert.True(t, ok)
}

func TestEventSinkDefaultsToLog(t *testing.T) {
	cfg := defaults(t)
	cfg.Events.Enabled = false
	_, ok := newEventSink(cfg, zerolog.Nop()).(service.LogPublisher)
	assert.True(t, ok)
}

func TestServerWiring(t *testing.T) {
	cfg := defaults(t)
	hosts := repository.NewSampleHostRepo()
	sessions := session.NewManager(hosts, session.Options{
		SlideDuration: time.Second,
		TickInterval:  100 * time.Millisecond,
		Clock:         playback.NewManualClock(time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)),
		Logger:        zerolog.Nop(),
	})
	t.Cleanup(sessions.Close)

	e := newServer(cfg, zerolog.Nop(), nil, hosts, sessions)
	for _, target := range []string{"/healthz", "/owner/intro", "/v1/routes"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}
}
