// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements a lightweight, in-memory, fixed-window rate limiter
// keyed by client address. Each key tracks {window_start, count}; when a
// window is older than the configured length it is reset, the counter is
// incremented, and the request is admitted while the counter stays within
// budget. Read-modify-write happens under one mutex so two concurrent
// requests can never both slip past the boundary.
//
// The rejection path is deliberately NOT an error status. An over-budget
// request receives a normal 200 response carrying a human-readable rate
// limit message plus informational X-RateLimit-* headers. Automated
// clients see nothing structurally different from a success, which is the
// point.
//
// Notes:
//   - The limiter is process-local and holds no state across restarts.
//   - Idle windows are evicted opportunistically during lookups to bound
//     memory.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// rateLimited counts soft rejections by limiter key namespace.
var rateLimited = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Total number of requests rejected by the fixed-window rate limiter.",
	},
)

func init() {
	prometheus.MustRegister(rateLimited)
}

// rateLimitBody is the fixed informational body returned on rejection.
const rateLimitBody = "rate limit exceeded, try again in a minute\n"

// window is the fixed-window state kept per client address.
type window struct {
	start time.Time
	count int
}

// RateLimiter admits at most Max requests per client address within each
// fixed Window. It is safe for concurrent use.
type RateLimiter struct {
	max    int
	win    time.Duration
	mu     sync.Mutex
	byAddr map[string]*window

	cleanupN uint64

	// now is a clock seam for tests.
	now func() time.Time
}

// NewRateLimiter constructs a fixed-window limiter. max values <= 0 are
// coerced to 1; win values <= 0 fall back to one minute.
func NewRateLimiter(max int, win time.Duration) *RateLimiter {
	if max <= 0 {
		max = 1
	}
	if win <= 0 {
		win = time.Minute
	}
	return &RateLimiter{
		max:    max,
		win:    win,
		byAddr: make(map[string]*window),
		now:    time.Now,
	}
}

// allow performs the increment-and-compare for key as a single logical
// step and reports whether the request is admitted, how much budget
// remains, and when the current window resets.
func (rl *RateLimiter) allow(key string) (admitted bool, remaining int, reset time.Time) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Opportunistic cleanup after a threshold of lookups. Run before
	// touching the requested key so an expired window can be evicted
	// even when it is the one being fetched.
	rl.cleanupN++
	if rl.cleanupN >= 5000 {
		for k, w := range rl.byAddr {
			if now.Sub(w.start) >= 2*rl.win {
				delete(rl.byAddr, k)
			}
		}
		rl.cleanupN = 0
	}

	w, ok := rl.byAddr[key]
	if !ok {
		w = &window{start: now}
		rl.byAddr[key] = w
	} else if now.Sub(w.start) >= rl.win {
		w.start = now
		w.count = 0
	}

	w.count++
	remaining = rl.max - w.count
	if remaining < 0 {
		remaining = 0
	}
	return w.count <= rl.max, remaining, w.start.Add(rl.win)
}

// Handler returns a Gin middleware that gates every request through the
// fixed-window budget for its client address. Admitted requests proceed;
// over-budget requests are answered with the fixed 200 body and the
// chain is aborted.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		admitted, remaining, reset := rl.allow(c.ClientIP())

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(rl.max))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if admitted {
			c.Next()
			return
		}

		rateLimited.Inc()
		c.String(http.StatusOK, rateLimitBody)
		c.Abort()
	}
}
