package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/isdelr/itemdesk-be/internal/models"
	"golang.org/x/time/rate"
)

// clientLimiter is a per-client token bucket allowing max requests per window.
// Idle clients are evicted lazily once their bucket has fully refilled.
type clientLimiter struct {
	mu        sync.Mutex
	clients   map[string]*visitor
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(max int, window time.Duration) *clientLimiter {
	return &clientLimiter{
		clients: make(map[string]*visitor),
		limit:   rate.Every(window / time.Duration(max)),
		burst:   max,
		idle:    window,
		now:     time.Now,
	}
}

// allow reports whether key may make another request now and, when it may
// not, how long until its next token.
func (l *clientLimiter) allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.idle {
		for k, v := range l.clients {
			if now.Sub(v.lastSeen) > l.idle {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.clients[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = v
	}
	v.lastSeen = now

	res := v.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// retryAfter renders a wait as whole seconds, rounded up.
func retryAfter(wait time.Duration) string {
	secs := int64((wait + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

// RateLimit rejects clients, keyed by remote address, that exceed max
// requests per window. Mount it after middleware.RealIP.
func RateLimit(max int, window time.Duration, fail func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	limiter := newClientLimiter(max, window)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ok, wait := limiter.allow(clientKey(r)); !ok {
				w.Header().Set("Retry-After", retryAfter(wait))
				fail(w, r, models.NewError(models.ErrRateLimited, "Too many requests, please try again later."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
