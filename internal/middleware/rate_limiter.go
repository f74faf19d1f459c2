package middleware

import (
	"net/http"
	"sync"
	"time"

	"vitalexa/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// bucket counts requests from one client inside the current window.
type bucket struct {
	count     int
	windowEnd time.Time
}

// limiter is a fixed-window per-IP counter. Each middleware instance owns
// its map, so the login limiter and the general limiter never share state.
type limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
	message string
}

func newLimiter(limit int, window time.Duration, message string) *limiter {
	l := &limiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
		message: message,
	}
	go l.purgeLoop()
	return l
}

// allow registers one hit for the client and reports whether it stays under
// the limit. A new window starts when the previous one expired.
func (l *limiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b := l.buckets[ip]
	if b == nil || now.After(b.windowEnd) {
		b = &bucket{windowEnd: now.Add(l.window)}
		l.buckets[ip] = b
	}
	b.count++
	return b.count <= l.limit, b.windowEnd
}

// purgeLoop drops stale buckets so one-off clients do not accumulate forever.
func (l *limiter) purgeLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		purged := 0
		for ip, b := range l.buckets {
			if now.After(b.windowEnd) {
				delete(l.buckets, ip)
				purged++
			}
		}
		remaining := len(l.buckets)
		l.mu.Unlock()
		if purged > 0 {
			log.Debug().Int("purged", purged).Int("remaining", remaining).
				Msg("rate limiter buckets purged")
		}
	}
}

func (l *limiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.message))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter caps login attempts at 20 per minute per IP, which keeps
// credential stuffing slow without locking out a shared office address.
func LoginRateLimiter() gin.HandlerFunc {
	return newLimiter(20, time.Minute,
		"Demasiados intentos de login. Intente en 1 minuto.").middleware()
}

// RateLimiter caps general API traffic per IP over the given window.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newLimiter(limit, window,
		"Demasiadas solicitudes. Intente nuevamente en un momento.").middleware()
}
