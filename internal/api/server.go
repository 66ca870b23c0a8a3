package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"shipscraper/internal/config"
	"shipscraper/internal/crawler"
	"shipscraper/internal/monitoring"
	"shipscraper/internal/storage"
)

// ProgressSource exposes the batch counters to the status endpoints.
type ProgressSource interface {
	Snapshot() crawler.ProgressSnapshot
}

// Server is the optional status server exposing metrics, health and
// crawl progress for the duration of a run.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	progress   ProgressSource
	pgSink     *storage.PostgresSink // nil when no sink is configured
	redisStore *storage.RedisStore   // nil when no cache is configured
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, p ProgressSource, ps *storage.PostgresSink, rs *storage.RedisStore, m *monitoring.Metrics, l *zap.Logger) *Server {
	s := &Server{
		config:     cfg,
		progress:   p,
		pgSink:     ps,
		redisStore: rs,
		metrics:    m,
		logger:     l,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.StatusPort),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
