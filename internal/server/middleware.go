package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
)

// requestID tags every request with an id, reusing the caller's when present.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("Handled request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"ip", c.ClientIP(),
			"requestID", c.GetString(requestIDKey),
		)
	}
}

// limiterIdleTTL is how long a client's bucket survives without requests.
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore holds one token bucket per client IP. Buckets idle for longer
// than limiterIdleTTL are swept on the next lookup.
type limiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	perMinute int
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterStore(perMinute int) *limiterStore {
	return &limiterStore{
		limiters:  make(map[string]*clientLimiter),
		perMinute: perMinute,
		now:       time.Now,
	}
}

func (s *limiterStore) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= limiterIdleTTL {
		for key, cl := range s.limiters {
			if now.Sub(cl.lastSeen) >= limiterIdleTTL {
				delete(s.limiters, key)
			}
		}
		s.lastSweep = now
	}

	cl, ok := s.limiters[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMinute)), s.perMinute)}
		s.limiters[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter.perMinute <= 0 {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if !s.limiter.get(ip).Allow() {
			s.logger.Warn("Rate limit exceeded", "ip", ip)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
