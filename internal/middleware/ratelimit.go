package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long a client's limiter survives without requests.
const idleLimiterTTL = 10 * time.Minute

// RateLimit allows limit requests per period for each client IP, with bursts
// up to limit. A non-positive limit disables the middleware.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 || per <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	interval := per / time.Duration(limit)
	every := rate.Every(interval)
	limiters := cache.New(idleLimiterTTL, 2*idleLimiterTTL)
	retryAfter := strconv.Itoa(int(math.Ceil(interval.Seconds())))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIPForRateLimit(r)
			lim := limiterFor(limiters, ip, every, limit)
			if !lim.Allow() {
				w.Header().Set("Retry-After", retryAfter)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "Too many requests",
					"message": "API rate limit exceeded. Please try again in a few moments.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func limiterFor(c *cache.Cache, key string, every rate.Limit, burst int) *rate.Limiter {
	if v, ok := c.Get(key); ok {
		lim := v.(*rate.Limiter)
		c.SetDefault(key, lim)
		return lim
	}
	lim := rate.NewLimiter(every, burst)
	if err := c.Add(key, lim, cache.DefaultExpiration); err != nil {
		if v, ok := c.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
