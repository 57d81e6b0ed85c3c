// Package server exposes the meeting finder over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"meetfinder/internal/finder"
	"meetfinder/internal/meeting"
)

// Finder is the calendar-backed search used by the find endpoint.
type Finder interface {
	Find(ctx context.Context, day time.Time, req meeting.MeetingRequest) (*finder.Result, error)
	Location() *time.Location
}

// Config tunes the HTTP surface.
type Config struct {
	RatePerMinute  int      // per client IP, 0 disables limiting
	AllowedOrigins []string // CORS origins, empty allows all
}

// Server serves the query and find endpoints.
type Server struct {
	logger  *slog.Logger
	finder  Finder
	limiter *limiterStore
	cfg     Config
	now     func() time.Time
}

// New creates a Server. f may be nil, in which case the find endpoint answers 503.
func New(logger *slog.Logger, f Finder, cfg Config) *Server {
	return &Server{
		logger:  logger,
		finder:  f,
		limiter: newLimiterStore(cfg.RatePerMinute),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Router builds the gin engine with all middleware and routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(s.accessLog())
	router.Use(s.corsMiddleware())
	router.Use(s.rateLimit())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.POST("/query", s.handleQuery)
	api.POST("/find", s.handleFind)

	return router
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(s.cfg.AllowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.cfg.AllowedOrigins
	}
	return cors.New(cfg)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server.", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Server is shutting down.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Info("Server stopped gracefully.")
	return nil
}
