package http

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/damianoneill/go-titlepage/pkg/domain/logging"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterMaxIdle       = 10 * time.Minute
)

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client key. Idle buckets are
// swept periodically until Stop is called.
type clientLimiter struct {
	rate  rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*clientEntry

	stop     chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	l := &clientLimiter{
		rate:    rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*clientEntry),
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	go l.sweepLoop()
	return l
}

// Allow reports whether one more request from key fits in its bucket.
func (l *clientLimiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	entry, ok := l.clients[key]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[key] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

func (l *clientLimiter) sweepLoop() {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep(limiterMaxIdle)
		case <-l.stop:
			return
		}
	}
}

func (l *clientLimiter) sweep(maxIdle time.Duration) int {
	cutoff := l.now().Add(-maxIdle)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, entry := range l.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}

func (l *clientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *clientLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// clientKey is the request's remote IP. middleware.RealIP runs earlier in
// the chain and has already replaced RemoteAddr from X-Forwarded-For or
// X-Real-IP when present.
func clientKey(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}

// rateLimitMiddleware rejects requests on the configured paths with 429 once
// the client's bucket is empty.
func (r *Router) rateLimitMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !r.limited.Matches(req.URL.Path) {
				next.ServeHTTP(w, req)
				return
			}

			key := clientKey(req)
			if !r.limiter.Allow(key) {
				if r.opts.Logger != nil {
					r.opts.Logger.WithContext(req.Context()).WarnWith("Rate limit exceeded", logging.Fields{
						"client": key,
						"path":   req.URL.Path,
					})
				}
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, req)
		})
	}
}
