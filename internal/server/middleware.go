package server

import (
	"container/list"
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/livetemplate/docpage/internal/logging"
)

// SecurityHeadersMiddleware adds security headers to all responses.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			// Pages carry their stylesheet inline; the reload client is an inline
			// script talking to the same origin.
			w.Header().Set("Content-Security-Policy",
				"default-src 'self'; "+
					"script-src 'self' 'unsafe-inline'; "+
					"style-src 'self' 'unsafe-inline'; "+
					"img-src 'self' data: https:; "+
					"connect-src 'self'; "+
					"frame-ancestors 'none'")

			next.ServeHTTP(w, r)
		})
	}
}

// evictionLogInterval is the minimum time between eviction log messages.
const evictionLogInterval = 30 * time.Second

// ipLimiter tracks a per-IP token bucket and its position in the LRU list.
type ipLimiter struct {
	ip       string
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter is a per-IP token bucket limiter with LRU eviction once maxIPs
// clients are tracked.
type rateLimiter struct {
	rps    float64
	burst  int
	maxIPs int
	idle   time.Duration // Entries unseen this long are dropped by cleanup
	log    logging.Logger

	mu           sync.Mutex
	items        map[string]*list.Element
	order        *list.List // front = most recent, back = oldest
	lastEvictLog time.Time
	evictCount   int
}

func newRateLimiter(rps float64, burst, maxIPs int, log logging.Logger) *rateLimiter {
	if maxIPs <= 0 {
		maxIPs = 10000
	}
	return &rateLimiter{
		rps:    rps,
		burst:  burst,
		maxIPs: maxIPs,
		idle:   10 * time.Minute,
		log:    logging.OrNoOp(log),
		items:  make(map[string]*list.Element),
		order:  list.New(),
	}
}

// start runs the idle-entry cleanup until ctx is cancelled. The returned
// channel is closed when the goroutine exits.
func (l *rateLimiter) start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.cleanup(time.Now())
			case <-ctx.Done():
				return
			}
		}
	}()
	return done
}

// cleanup removes every entry idle for longer than l.idle. LRU order tracks
// access recency, not lastSeen, so the whole list is scanned.
func (l *rateLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for e := l.order.Back(); e != nil; {
		lim := e.Value.(*ipLimiter)
		prev := e.Prev()
		if now.Sub(lim.lastSeen) > l.idle {
			l.order.Remove(e)
			delete(l.items, lim.ip)
		}
		e = prev
	}
}

// allow reports whether ip may make another request now.
func (l *rateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.items[ip]; ok {
		l.order.MoveToFront(elem)
		lim := elem.Value.(*ipLimiter)
		lim.lastSeen = time.Now()
		return lim.limiter.Allow()
	}

	if l.order.Len() >= l.maxIPs {
		if back := l.order.Back(); back != nil {
			evicted := back.Value.(*ipLimiter)
			l.order.Remove(back)
			delete(l.items, evicted.ip)
			l.evictCount++
			if time.Since(l.lastEvictLog) >= evictionLogInterval {
				l.log.Warn("rate limiter evicted least-recent clients", "evicted", l.evictCount, "capacity", l.maxIPs)
				l.lastEvictLog = time.Now()
				l.evictCount = 0
			}
		}
	}

	lim := &ipLimiter{
		ip:       ip,
		limiter:  rate.NewLimiter(rate.Limit(l.rps), l.burst),
		lastSeen: time.Now(),
	}
	l.items[ip] = l.order.PushFront(lim)
	return lim.limiter.Allow()
}

// Len returns the number of tracked clients.
func (l *rateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.order.Len()
}

// Middleware rejects requests over the limit with 429.
func (l *rateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(getClientIP(r)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getClientIP extracts the client IP from the request.
// It only trusts X-Forwarded-For / X-Real-IP when the immediate peer is a
// loopback or private address (i.e., behind a reverse proxy).
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	peerIP := net.ParseIP(host)
	trustedProxy := peerIP != nil && (peerIP.IsLoopback() || peerIP.IsPrivate())

	if trustedProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if parts := strings.SplitN(xff, ",", 2); len(parts) > 0 {
				return strings.TrimSpace(parts[0])
			}
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	if peerIP != nil {
		return peerIP.String()
	}
	return host
}
