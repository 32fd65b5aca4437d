// Package server exposes the Translator over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	queryfarmer "github.com/srivastavaprakhar/queryFARMER"
	"github.com/srivastavaprakhar/queryFARMER/cache"
	"github.com/srivastavaprakhar/queryFARMER/processor"
)

const defaultShutdownTimeout = 10 * time.Second

// Config configures the HTTP server.
type Config struct {
	Addr                 string
	MaxRequestsPerMinute int // Global inbound budget; 0 disables the limit
	BatchConcurrency     int
	ShutdownTimeout      time.Duration
	Debug                bool
}

// Server serves translation requests.
type Server struct {
	translator *queryfarmer.Translator
	cache      cache.Cache[queryfarmer.TranslationResult]
	processor  *processor.HTMLProcessor
	logger     *slog.Logger
	cfg        Config
	engine     *gin.Engine
}

// New creates a server. c may be nil, in which case /health reports an
// empty cache and shutdown has nothing to clear.
func New(translator *queryfarmer.Translator, c cache.Cache[queryfarmer.TranslationResult], cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = queryfarmer.DefaultBatchConcurrency
	}

	s := &Server{
		translator: translator,
		cache:      c,
		processor:  processor.NewHTMLProcessor().WithConcurrency(cfg.BatchConcurrency),
		logger:     logger,
		cfg:        cfg,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	if !s.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		recovery(s.logger),
		requestID(),
		accessLog(s.logger),
		cors(),
	)
	if s.cfg.MaxRequestsPerMinute > 0 {
		r.Use(rateLimit(queryfarmer.NewRateLimiter(queryfarmer.RateLimitConfig{
			RequestsPerMinute: s.cfg.MaxRequestsPerMinute,
		})))
	}

	r.GET("/health", s.handleHealth)
	r.GET("/languages", s.handleLanguages)
	r.POST("/translate", s.handleTranslate)
	r.POST("/translate/batch", s.handleTranslateBatch)
	r.POST("/translate/html", s.handleTranslateHTML)
	return r
}

// Handler returns the HTTP handler, accepting HTTP/1.1 and cleartext HTTP/2.
func (s *Server) Handler() http.Handler {
	return h2c.NewHandler(s.engine, &http2.Server{})
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully and
// clears the translation cache.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)

	if s.cache != nil {
		s.cache.Clear()
		s.logger.Info("translation cache cleared")
	}
	return err
}
