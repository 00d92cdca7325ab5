package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/wrapped-story/internal/config"
	"github.com/iliyamo/wrapped-story/internal/model"
)

func newContext(e *echo.Echo, target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestIdentifyPrefersPersonalTokens(t *testing.T) {
	e := echo.New()
	tests := []struct {
		name   string
		target string
		header string
		want   string
	}{
		{"guest link", "/s/nllvk0/guest?g=4uf0fg", "", "guest:4uf0fg"},
		{"staff link", "/s/nllvk0/staff?s=lzj3hl", "abc", "staff:lzj3hl"},
		{"session header", "/v1/routes", "abc", "session:abc"},
		{"nothing", "/v1/routes", "", "anon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(e, tt.target)
			if tt.header != "" {
				c.Request().Header.Set(SessionHeader, tt.header)
			}
			var got string
			h := Identify()(func(c echo.Context) error {
				got = ViewerID(c)
				return nil
			})
			require.NoError(t, h(c))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLegacyView(t *testing.T) {
	e := echo.New()
	tests := []struct {
		target   string
		audience model.Audience
		found    bool
		admin    bool
	}{
		{"/", "", false, true},
		{"/?view=guest", model.AudienceGuest, true, false},
		{"/?view=HOSTAI", model.AudienceHostAI, true, false},
		{"/?view=vip", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			c, _ := newContext(e, tt.target)
			h := LegacyView()(func(c echo.Context) error {
				a, ok := AudienceFrom(c)
				assert.Equal(t, tt.found, ok)
				assert.Equal(t, tt.audience, a)
				assert.Equal(t, tt.admin, AdminControls(c))
				return nil
			})
			require.NoError(t, h(c))
		})
	}
}

func TestRequireAdminControls(t *testing.T) {
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	h := LegacyView()(RequireAdminControls()(ok))

	c, rec := newContext(e, "/v1/sessions/x/audience")
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = newContext(e, "/v1/sessions/x/audience?view=guest")
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	c, _ := newContext(e, "/s/nllvk0/guest?g=4uf0fg")
	c.SetPath("/s/:token/:audience")
	c.Request().Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c.Set(CtxViewerID, "guest:4uf0fg")

	cfg := config.RateLimitConfig{Prefix: "rl"}
	cfg.KeyStrategy = "ip"
	assert.Equal(t, "rl:ip:10.0.0.7", buildRateKey(cfg, c))
	cfg.KeyStrategy = "viewer"
	assert.Equal(t, "rl:viewer:guest:4uf0fg", buildRateKey(cfg, c))
	cfg.KeyStrategy = "ip_route"
	assert.Equal(t, "rl:ip:10.0.0.7:route:GET /s/:token/:audience", buildRateKey(cfg, c))
	cfg.KeyStrategy = ""
	assert.Equal(t, "rl:ip:10.0.0.7:viewer:guest:4uf0fg:route:GET /s/:token/:audience", buildRateKey(cfg, c))
}

func TestBuildRateKeyUnknownStrategy(t *testing.T) {
	e := echo.New()
	c, _ := newContext(e, "/v1/routes")
	c.SetPath("/v1/routes")
	c.Request().Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c.Set(CtxViewerID, "owner")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_nonsense"}
	assert.Equal(t, "rl:ip:10.0.0.7:viewer:owner:route:GET /v1/routes", buildRateKey(cfg, c))
	cfg.KeyStrategy = " Viewer_Route "
	assert.Equal(t, "rl:viewer:owner:route:GET /v1/routes", buildRateKey(cfg, c))
}

func TestVerdictRetryAfter(t *testing.T) {
	tests := []struct {
		wait time.Duration
		want int
	}{
		{0, 1},
		{time.Millisecond, 1},
		{time.Second, 1},
		{1001 * time.Millisecond, 2},
		{59 * time.Second, 59},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, verdict{wait: tt.wait}.retryAfter(), tt.wait.String())
	}
}

func TestRejectedRequestCarriesLimitHeaders(t *testing.T) {
	e := echo.New()
	c, rec := newContext(e, "/v1/links/viewer")
	cfg := config.RateLimitConfig{Capacity: 5, Debug: true}
	v := verdict{wait: 1500 * time.Millisecond}

	setLimitHeaders(c.Response().Header(), cfg, "rl:ip:1.2.3.4", v)
	require.NoError(t, rejectRateLimited(c, v))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "2", rec.Header().Get(echo.HeaderRetryAfter))
	assert.Equal(t, "rl:ip:1.2.3.4", rec.Header().Get("X-RateLimit-Key"))
	assert.JSONEq(t, `{"error":"too_many_requests","message":"rate limit exceeded","retry_after":2}`, rec.Body.String())
}

func TestAllowedRequestHasNoRetryAfter(t *testing.T) {
	h := http.Header{}
	setLimitHeaders(h, config.RateLimitConfig{Capacity: 5}, "rl:ip:1.2.3.4", verdict{allowed: true, remaining: 4})
	assert.Equal(t, "4", h.Get("X-RateLimit-Remaining"))
	assert.Empty(t, h.Get(echo.HeaderRetryAfter))
	assert.Empty(t, h.Get("X-RateLimit-Key"))
}

func TestCacheKeySeparatesViewers(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	key := func(target string) string {
		c, _ := newContext(e, target)
		c.SetPath("/s/:token/:audience")
		c.SetParamNames("token", "audience")
		c.SetParamValues("nllvk0", "guest")
		return cacheKeyFrom(cfg, c)
	}
	a := key("/s/nllvk0/guest?g=4uf0fg")
	b := key("/s/nllvk0/guest?g=other1")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, key("/s/nllvk0/guest?g=4uf0fg"))
	assert.Regexp(t, `^cache:[0-9a-f]{40}$`, a)

	cfg.KeyStrategy = "route"
	assert.Equal(t, key("/s/nllvk0/guest?g=4uf0fg"), key("/s/nllvk0/guest?g=other1"))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, string(body))

	_, _, _, ok = decodePayload(bs[:5])
	assert.False(t, ok)
}

func TestDisabledMiddlewarePassesThrough(t *testing.T) {
	e := echo.New()
	called := 0
	next := func(c echo.Context) error { called++; return c.NoContent(http.StatusOK) }

	c, _ := newContext(e, "/")
	require.NoError(t, NewRedisCache(config.CacheConfig{Enabled: true}, nil)(next)(c))
	c, _ = newContext(e, "/")
	require.NoError(t, NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, zerolog.Nop())(next)(c))
	assert.Equal(t, 2, called)
}

// The remaining tests need a disposable Redis; point REDIS_TEST_ADDR at one
// to run them.
func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return rdb
}

func TestTokenBucketRejectsAfterCapacity(t *testing.T) {
	rdb := testRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Minute,
		KeyStrategy:    "ip",
		Prefix:         "rl-test-" + uuid.NewString(),
	}
	e := echo.New()
	e.GET("/v1/routes", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		NewTokenBucket(cfg, rdb, zerolog.Nop()))

	codes := make([]int, 3)
	var last *httptest.ResponseRecorder
	for i := range codes {
		last = httptest.NewRecorder()
		e.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/v1/routes", nil))
		codes[i] = last.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, last.Header().Get(echo.HeaderRetryAfter))
}

func TestRedisCacheServesHits(t *testing.T) {
	rdb := testRedis(t)
	cfg := config.CacheConfig{
		Enabled:     true,
		Methods:     []string{"GET"},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "cache-test-" + uuid.NewString(),
	}
	calls := 0
	e := echo.New()
	e.GET("/v1/routes", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"calls": calls})
	}, NewRedisCache(cfg, rdb))

	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/v1/routes", nil))
	second := httptest.NewRecorder()
	e.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/v1/routes", nil))

	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)
}
