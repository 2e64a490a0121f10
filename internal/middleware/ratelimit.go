package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// CheckoutRateLimitMessage is returned when a client exceeds the checkout budget.
const CheckoutRateLimitMessage = "Too many checkout attempts. Please try again later."

// WindowStore counts requests per key in fixed windows.
type WindowStore interface {
	// Hit records one request for key and returns the number of requests seen
	// in the current window and when that window ends.
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// RateLimiterConfig configures the rate limiter
type RateLimiterConfig struct {
	// Limit is the number of requests allowed per window
	Limit int

	// Window is the length of one fixed window
	Window time.Duration

	// Message is returned to rejected clients
	Message string

	// KeyFunc extracts the rate limit key from the request
	// Default: client IP address
	KeyFunc func(r *http.Request) string

	// Store holds the counters. Default: an in-memory store local to this process.
	Store WindowStore

	// OnReject is called for every rejected request (metrics).
	OnReject func(r *http.Request)
}

// CheckoutRateLimiterConfig returns the checkout budget: 10 attempts per minute per client.
func CheckoutRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Limit:   10,
		Window:  time.Minute,
		Message: CheckoutRateLimitMessage,
		KeyFunc: GetClientIP,
	}
}

// RateLimiter is a fixed-window rate limiter. Counters start empty when the
// process starts and are never persisted unless Store is shared.
type RateLimiter struct {
	config RateLimiterConfig
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = GetClientIP
	}
	if config.Limit <= 0 {
		config.Limit = 10
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if config.Message == "" {
		config.Message = "Too many requests"
	}
	if config.Store == nil {
		config.Store = NewMemoryWindowStore(config.Window)
	}
	return &RateLimiter{config: config}
}

// Allow checks if a request should be allowed. When it is not, the returned
// duration is how long until the window resets.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	count, resetAt, err := rl.config.Store.Hit(ctx, key, rl.config.Window)
	if err != nil {
		return true, 0, err
	}
	if count > int64(rl.config.Limit) {
		return false, time.Until(resetAt), nil
	}
	return true, 0, nil
}

// Middleware returns an HTTP middleware that applies rate limiting
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.config.KeyFunc(r)

		allowed, retryAfter, err := rl.Allow(r.Context(), key)
		if err != nil {
			// Counter store down: let the request through.
			GetLogger(r.Context()).Warn("rate limit store unavailable", "error", err)
		}

		if !allowed {
			if rl.config.OnReject != nil {
				rl.config.OnReject(r)
			}
			seconds := int(retryAfter.Round(time.Second) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			respondWithError(w, r, domain.Errorf(domain.ERATELIMIT, "", "%s", rl.config.Message))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimit creates a rate limiting middleware with the given config
func RateLimit(config RateLimiterConfig) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(config)
	return limiter.Middleware
}

// ============================================================================
// IN-MEMORY STORE
// ============================================================================

type windowCounter struct {
	count   int64
	resetAt time.Time
}

// MemoryWindowStore keeps counters in process memory.
type MemoryWindowStore struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
	now      func() time.Time
	stop     chan struct{}
	once     sync.Once
}

// NewMemoryWindowStore creates a store and starts a goroutine that drops
// expired counters every cleanupInterval. Call Stop to end it.
func NewMemoryWindowStore(cleanupInterval time.Duration) *MemoryWindowStore {
	s := &MemoryWindowStore{
		counters: make(map[string]*windowCounter),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go s.cleanup(cleanupInterval)
	return s
}

// Hit implements WindowStore.
func (s *MemoryWindowStore) Hit(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.counters[key]
	if !ok || !now.Before(c.resetAt) {
		c = &windowCounter{resetAt: now.Add(window)}
		s.counters[key] = c
	}
	c.count++
	return c.count, c.resetAt, nil
}

func (s *MemoryWindowStore) cleanup(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			now := s.now()
			for key, c := range s.counters {
				if !now.Before(c.resetAt) {
					delete(s.counters, key)
				}
			}
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (s *MemoryWindowStore) Stop() {
	s.once.Do(func() { close(s.stop) })
}

// ============================================================================
// REDIS STORE
// ============================================================================

// RedisWindowStore shares counters between instances through Redis.
type RedisWindowStore struct {
	client *redis.Client
	prefix string
}

// NewRedisWindowStore creates a store using keys "<prefix>:<key>".
func NewRedisWindowStore(client *redis.Client, prefix string) *RedisWindowStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisWindowStore{client: client, prefix: prefix}
}

// Hit implements WindowStore.
func (s *RedisWindowStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	redisKey := fmt.Sprintf("%s:%s", s.prefix, key)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		ttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit failed: %w", err)
	}

	remaining := ttl.Val()
	if remaining <= 0 {
		// First hit of a new window: the key has no expiry yet.
		if err := s.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("redis rate limit expire failed: %w", err)
		}
		remaining = window
	}
	return incr.Val(), time.Now().Add(remaining), nil
}

// GetClientIP extracts the client IP from the request
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests)
func GetClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (comma-separated list, first is client)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	// Check X-Real-IP header
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
