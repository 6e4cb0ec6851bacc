package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	apiContext "hookstash/internal/api/context"
	"hookstash/internal/pkg/errors"
	"hookstash/internal/platform/auth"
	"hookstash/internal/platform/config"
)

type RateLimiter struct {
	store  *sync.Map // map[string]*Bucket
	limits map[string]int
}

type Bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
	mu         sync.Mutex
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	readLimit := cfg.APIReadPerMinute
	if readLimit <= 0 {
		readLimit = 1000
	}
	writeLimit := cfg.APIWritePerMinute
	if writeLimit <= 0 {
		writeLimit = 100
	}

	rl := &RateLimiter{
		store: &sync.Map{},
		limits: map[string]int{
			"api_read":  readLimit,
			"api_write": writeLimit,
		},
	}

	go rl.cleanupLoop()

	return rl
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		rl.store.Range(func(key, value interface{}) bool {
			bucket := value.(*Bucket)
			bucket.mu.Lock()
			if now.Sub(bucket.lastAccess) > 10*time.Minute {
				rl.store.Delete(key)
			}
			bucket.mu.Unlock()
			return true
		})
	}
}

func (rl *RateLimiter) Allow(key string, limit int) bool {
	now := time.Now()

	val, _ := rl.store.LoadOrStore(key, &Bucket{
		tokens:     limit,
		lastRefill: now,
		lastAccess: now,
	})

	bucket := val.(*Bucket)
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.lastAccess = now

	// Refill at limit/60 tokens per second
	elapsed := now.Sub(bucket.lastRefill)
	refillRate := float64(limit) / 60.0
	refillTokens := int(elapsed.Seconds() * refillRate)

	if refillTokens > 0 {
		bucket.tokens += refillTokens
		if bucket.tokens > limit {
			bucket.tokens = limit
		}
		bucket.lastRefill = now
	}

	if bucket.tokens <= 0 {
		return false
	}

	bucket.tokens--
	return true
}

// Limit keys buckets per authenticated user, falling back to the remote
// address for unauthenticated paths.
func (rl *RateLimiter) Limit(limitType string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var key string
			if claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims); ok {
				key = fmt.Sprintf("%s:%s", claims.UserID, limitType)
			} else {
				key = fmt.Sprintf("%s:%s", r.RemoteAddr, limitType)
			}

			limit, ok := rl.limits[limitType]
			if !ok {
				limit = 100
			}

			if !rl.Allow(key, limit) {
				w.Header().Set("Retry-After", "60")
				errors.WriteError(w, http.StatusTooManyRequests, errors.ErrCodeRateLimitExceeded, "Rate limit exceeded", nil)
				return
			}

			next(w, r)
		}
	}
}
