package api

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultMaxClients = 10_000
	clientIdleTTL     = 10 * time.Minute
)

type rateLimiter interface {
	Allow(client string) bool
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client address.
type clientLimiter struct {
	mu         sync.Mutex
	limit      rate.Limit
	burst      int
	maxClients int
	clients    map[string]*clientEntry
	now        func() time.Time
}

// newClientLimiter returns nil, meaning no limit, when either value is not positive.
func newClientLimiter(ratePerSecond float64, burst int) rateLimiter {
	if ratePerSecond <= 0 || burst <= 0 {
		return nil
	}

	return &clientLimiter{
		limit:      rate.Limit(ratePerSecond),
		burst:      burst,
		maxClients: defaultMaxClients,
		clients:    make(map[string]*clientEntry),
		now:        time.Now,
	}
}

func (c *clientLimiter) Allow(client string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry, ok := c.clients[client]
	if !ok {
		if len(c.clients) >= c.maxClients {
			c.evictIdle(now)
		}
		entry = &clientEntry{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.clients[client] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// evictIdle drops clients not seen within clientIdleTTL. If every client is
// still active the table is reset rather than grown without bound.
func (c *clientLimiter) evictIdle(now time.Time) {
	for key, entry := range c.clients {
		if now.Sub(entry.lastSeen) > clientIdleTTL {
			delete(c.clients, key)
		}
	}
	if len(c.clients) >= c.maxClients {
		clear(c.clients)
	}
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter.Allow(clientIP(r)) {
			next.ServeHTTP(w, r)
			return
		}
		writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
	})
}
