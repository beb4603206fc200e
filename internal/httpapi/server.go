// Package httpapi exposes the processor over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"codeberg.org/snonux/jsontranslate/internal/config"
	"codeberg.org/snonux/jsontranslate/internal/processor"
)

const shutdownTimeout = 15 * time.Second

// Server serves the translation API.
type Server struct {
	cfg    *config.Config
	proc   *processor.Processor
	logger *slog.Logger
	engine *gin.Engine
}

// NewServer creates the router and registers the routes.
func NewServer(cfg *config.Config, proc *processor.Processor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{cfg: cfg, proc: proc, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(AccessLog(logger))
	if len(cfg.Server.CORSOrigins) > 0 {
		router.Use(corsConfig(cfg.Server.CORSOrigins))
	}

	router.POST("/translate", s.Translate)
	router.GET("/version", s.Version)
	router.GET("/healthz", s.Healthz)
	router.NoRoute(s.NotFound)

	s.engine = router
	return s
}

// Handler returns the HTTP handler of s.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address until ctx ends, then shuts down
// gracefully, letting in-flight requests finish.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func corsConfig(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	})
}
