package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"trade-market/internal/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerWindow int           // Number of requests allowed per window and route group
	Window            time.Duration // Time window for rate limiting
	KeyPrefix         string        // Redis key prefix
	ExemptPaths       []string      // Paths never counted, e.g. probes and scrapes
}

// windowScript increments the counter and starts the window on the first
// hit in one round trip.
var windowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {count, redis.call('PTTL', KEYS[1])}
`)

// RateLimitMiddleware implements a fixed window limit per client host and
// API route group, backed by Redis. Redis failures let the request through.
func RateLimitMiddleware(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(config.ExemptPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			group := routeGroup(r.URL.Path)
			key := fmt.Sprintf("%s:%s:%s", config.KeyPrefix, group, clientHost(r))

			count, ttl, err := hitWindow(r.Context(), redisClient, key, config.Window)
			if err != nil {
				logger.Error("Failed to count request for rate limit",
					zap.Error(err),
					zap.String("key", key),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))

			if count > int64(config.RequestsPerWindow) {
				logger.Warn("Rate limit exceeded",
					zap.String("key", key),
					zap.String("group", group),
					zap.Int64("count", count),
					zap.Int("limit", config.RequestsPerWindow),
				)
				metrics.RecordRateLimited(group)

				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Round(time.Second).Seconds())))

				RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(config.RequestsPerWindow)-count, 10))
			next.ServeHTTP(w, r)
		})
	}
}

// hitWindow counts one request against key and returns the running count
// and the time left in the window.
func hitWindow(ctx context.Context, client *redis.Client, key string, window time.Duration) (int64, time.Duration, error) {
	values, err := windowScript.Run(ctx, client, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected rate limit reply %v", values)
	}

	ttl := time.Duration(values[1]) * time.Millisecond
	if ttl <= 0 {
		ttl = window
	}
	return values[0], ttl, nil
}

// routeGroup returns the first path segment under /api, e.g. "receipts".
func routeGroup(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/")
	if !ok {
		return "other"
	}
	group, _, _ := strings.Cut(rest, "/")
	if group == "" {
		return "other"
	}
	return group
}

// clientHost drops the port from RemoteAddr. RealIP runs earlier in the
// chain, so RemoteAddr already holds the client address.
func clientHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
