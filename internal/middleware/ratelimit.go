package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/wrapped-story/internal/config"
)

var rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "story_http_rate_limited_total",
	Help: "Total number of requests rejected by the rate limiter.",
})

// takeToken spends one token from the bucket at KEYS[1].  Refills happen in
// whole intervals measured on the Redis clock, so every replica of the
// service sees the same bucket.
//
// ARGV: capacity, tokens per refill, refill interval ms, idle expiry ms.
// Reply: {allowed, tokens left, ms until the next refill when rejected}.
var takeToken = redis.NewScript(`
local bucket = KEYS[1]
local cap = tonumber(ARGV[1])
local step = tonumber(ARGV[2])
local every = tonumber(ARGV[3])
local expiry = tonumber(ARGV[4])

local t = redis.call('TIME')
local now = tonumber(t[1]) * 1000 + math.floor(tonumber(t[2]) / 1000)

local left = tonumber(redis.call('HGET', bucket, 'left'))
local since = tonumber(redis.call('HGET', bucket, 'since'))
if left == nil or since == nil then
  left = cap
  since = now
end

local gained = math.floor((now - since) / every)
if gained > 0 then
  left = math.min(cap, left + gained * step)
  since = since + gained * every
end

local ok = 0
local wait = 0
if left >= 1 then
  ok = 1
  left = left - 1
else
  wait = math.max(1, since + every - now)
end

redis.call('HSET', bucket, 'left', left, 'since', since)
redis.call('PEXPIRE', bucket, expiry)
return {ok, left, wait}
`)

type verdict struct {
	allowed   bool
	remaining int64
	wait      time.Duration
}

// retryAfter is the wait rounded up to whole seconds, never below one.
func (v verdict) retryAfter() int {
	secs := int((v.wait + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

type bucket struct {
	rdb *redis.Client
	cfg config.RateLimitConfig
}

func (b bucket) take(ctx context.Context, key string) (verdict, error) {
	reply, err := takeToken.Run(ctx, b.rdb, []string{key},
		b.cfg.Capacity,
		b.cfg.RefillTokens,
		b.cfg.RefillInterval.Milliseconds(),
		b.cfg.TTL.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return verdict{}, err
	}
	if len(reply) != 3 {
		return verdict{}, fmt.Errorf("rate limit: reply has %d fields", len(reply))
	}
	return verdict{
		allowed:   reply[0] == 1,
		remaining: reply[1],
		wait:      time.Duration(reply[2]) * time.Millisecond,
	}, nil
}

// NewTokenBucket limits requests with a Redis token bucket per key.  Redis
// errors let the request through.  Without Redis it is a no-op.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, logger zerolog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	b := bucket{rdb: rdb, cfg: cfg}
	log := logger.With().Str("component", "ratelimit").Logger()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			v, err := b.take(c.Request().Context(), key)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, letting request through")
				return next(c)
			}

			setLimitHeaders(c.Response().Header(), cfg, key, v)
			if v.allowed {
				return next(c)
			}
			rateLimitedTotal.Inc()
			if cfg.Debug {
				log.Info().Str("key", key).Dur("wait", v.wait).Msg("rate limited")
			}
			return rejectRateLimited(c, v)
		}
	}
}

func setLimitHeaders(h http.Header, cfg config.RateLimitConfig, key string, v verdict) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(v.remaining, 10))
	if !v.allowed {
		h.Set(echo.HeaderRetryAfter, strconv.Itoa(v.retryAfter()))
	}
	if cfg.Debug {
		h.Set("X-RateLimit-Key", key)
	}
}

func rejectRateLimited(c echo.Context, v verdict) error {
	return c.JSON(http.StatusTooManyRequests, echo.Map{
		"error":       "too_many_requests",
		"message":     "rate limit exceeded",
		"retry_after": v.retryAfter(),
	})
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	dims := map[string]string{
		"ip":     ip,
		"viewer": ViewerID(c),
		"route":  c.Request().Method + " " + c.Path(),
	}

	strategy := strings.ToLower(strings.TrimSpace(cfg.KeyStrategy))
	switch strategy {
	case "ip", "viewer", "route", "ip_viewer", "ip_route", "viewer_route":
	default:
		strategy = "ip_viewer_route"
	}
	parts := []string{cfg.Prefix}
	for _, name := range strings.Split(strategy, "_") {
		parts = append(parts, name, dims[name])
	}
	return strings.Join(parts, ":")
}
