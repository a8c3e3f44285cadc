package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"hash402/internal/pkg/errors"
	"hash402/internal/platform/config"
)

const anonymousBucket = "anonymous"

// RateLimiter is a fixed-window counter keyed by caller identity. The
// window restarts on the first request after expiry rather than
// sliding, which permits short bursts of up to twice the quota at a
// window boundary.
type RateLimiter struct {
	store  sync.Map // map[string]*entry
	limit  int
	window time.Duration
	now    func() time.Time
}

type entry struct {
	mu       sync.Mutex
	count    int
	resetAt  time.Time
	lastSeen time.Time
}

type Decision struct {
	Allowed        bool
	Limit          int
	Remaining      int
	ResetInSeconds int
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	limit := cfg.RequestsPerWindow
	if limit <= 0 {
		limit = 60
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}

	rl := &RateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for range ticker.C {
		rl.sweep(rl.now())
	}
}

// sweep drops entries that have been idle for longer than a full
// window; their next request would start a fresh window anyway.
func (rl *RateLimiter) sweep(now time.Time) {
	rl.store.Range(func(key, value interface{}) bool {
		e := value.(*entry)
		e.mu.Lock()
		if now.Sub(e.lastSeen) > rl.window {
			rl.store.Delete(key)
		}
		e.mu.Unlock()
		return true
	})
}

// Check records one request for the identity key and decides whether
// it fits the window's quota. The fetch-increment-store sequence runs
// under the entry's lock, so two concurrent requests for the same key
// cannot both read a stale count.
func (rl *RateLimiter) Check(key string) Decision {
	now := rl.now()

	val, _ := rl.store.LoadOrStore(key, &entry{resetAt: now.Add(rl.window), lastSeen: now})
	e := val.(*entry)

	e.mu.Lock()
	defer e.mu.Unlock()

	if now.After(e.resetAt) {
		e.count = 0
		e.resetAt = now.Add(rl.window)
	}
	e.count++
	e.lastSeen = now

	remaining := rl.limit - e.count
	if remaining < 0 {
		remaining = 0
	}

	resetIn := int((e.resetAt.Sub(now) + time.Second - 1) / time.Second)

	return Decision{
		Allowed:        e.count <= rl.limit,
		Limit:          rl.limit,
		Remaining:      remaining,
		ResetInSeconds: resetIn,
	}
}

// IdentityKey buckets requests by the raw bearer credential when
// present, then by remote address, then into a shared anonymous pool.
func IdentityKey(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		return authHeader
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return anonymousBucket
}

// Handle throttles the request and stamps quota metadata on every
// response, allowed or not.
func (rl *RateLimiter) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decision := rl.Check(IdentityKey(r))

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.Itoa(decision.ResetInSeconds))

		if !decision.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(decision.ResetInSeconds))
			errors.WriteRateLimited(w, decision.ResetInSeconds)
			return
		}

		next(w, r)
	}
}
