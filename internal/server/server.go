// Package server runs the long-lived refresh loop and serves the cached feed over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/huangsam/cryptofeed/core"
	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/internal/metrics"
	"github.com/huangsam/cryptofeed/schema"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Server owns the HTTP routes, the websocket hub and the refresh schedule.
type Server struct {
	cfg    *contract.Config
	mgr    contract.StoreManager
	loader contract.FeedLoader
	hub    *Hub
	now    func() time.Time

	refreshMu sync.Mutex // Serializes scheduled and startup refreshes
}

// feedResponse is the JSON body of GET /feed and every stream message.
type feedResponse struct {
	CachedAt   string              `json:"cached_at"`
	TotalItems int                 `json:"total_items"`
	Feeds      []schema.CryptoFeed `json:"feeds"`
}

// New builds a Server. Nothing runs until Run is called.
func New(cfg *contract.Config, mgr contract.StoreManager, loader contract.FeedLoader) *Server {
	return &Server{
		cfg:    cfg,
		mgr:    mgr,
		loader: loader,
		hub:    NewHub(),
		now:    time.Now,
	}
}

// Routes returns the HTTP handler for the server.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)

	r.Get("/healthz", s.handleHealth)
	r.Get("/feed", s.handleFeed)
	r.Get("/feed/stream", s.handleStream)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

// Refresh loads the remote feed, replaces the cache and notifies subscribers.
func (s *Server) Refresh(ctx context.Context) (schema.CachedFeed, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	store := s.mgr.GetFeedStore()
	if store == nil {
		return schema.CachedFeed{}, errors.New("feed store is not initialized")
	}

	start := time.Now()
	cached, err := core.RefreshFeed(ctx, s.loader, core.NewCryptoFeedCacheUseCase(store), s.now)
	metrics.RecordRefresh(time.Since(start), cached.Len(), err)
	if err != nil {
		return schema.CachedFeed{}, err
	}

	if msg, err := json.Marshal(newFeedResponse(cached, 0)); err == nil {
		s.hub.Broadcast(msg)
	}
	return cached, nil
}

// refreshAndLog is the scheduled job body.
func (s *Server) refreshAndLog(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout+shutdownTimeout)
	defer cancel()

	cached, err := s.Refresh(ctx)
	if err != nil {
		contract.LogWarn("feed refresh failed", err)
		return
	}
	contract.Logger.WithFields(logrus.Fields{
		"items":       cached.Len(),
		"cached_at":   cached.Timestamp.Format(contract.DateTimeFormat),
		"subscribers": s.hub.ClientCount(),
	}).Info("feed refreshed")
}

// Run refreshes once, starts the schedule and serves HTTP until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(s.cfg.Schedule, func() { s.refreshAndLog(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule '%s': %w", s.cfg.Schedule, err)
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.ListenAddr, err)
	}

	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: shutdownTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	contract.Logger.WithFields(logrus.Fields{
		"addr":     ln.Addr().String(),
		"schedule": s.cfg.Schedule,
		"backend":  s.cfg.CacheBackend,
	}).Info("serving crypto feed")

	s.refreshAndLog(ctx)
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	contract.Logger.Info("server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"status": "ok"}
	if store := s.mgr.GetFeedStore(); store != nil {
		if status, err := store.GetStatus(); err == nil {
			body["store"] = status
		}
	}
	writeJSONResponse(w, http.StatusOK, body)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil || l <= 0 || l > contract.MaxResultLimit {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", contract.MaxResultLimit))
			return
		}
		limit = l
	}

	cached, err := s.loadCached(r.Context())
	if errors.Is(err, contract.ErrEmptyCache) {
		writeError(w, http.StatusNotFound, "no cached feed")
		return
	}
	if err != nil {
		contract.LogWarn("load cached feed failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load cached feed")
		return
	}
	writeJSONResponse(w, http.StatusOK, newFeedResponse(cached, limit))
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	var initial []byte
	if cached, err := s.loadCached(r.Context()); err == nil {
		initial, _ = json.Marshal(newFeedResponse(cached, 0))
	}
	s.hub.Serve(w, r, initial)
}

func (s *Server) loadCached(ctx context.Context) (schema.CachedFeed, error) {
	store := s.mgr.GetFeedStore()
	if store == nil {
		return schema.CachedFeed{}, errors.New("feed store is not initialized")
	}
	return core.NewCryptoFeedCacheUseCase(store).Load(ctx)
}

func newFeedResponse(cached schema.CachedFeed, limit int) feedResponse {
	feeds := cached.Feeds
	if limit > 0 && len(feeds) > limit {
		feeds = feeds[:limit]
	}
	if feeds == nil {
		feeds = []schema.CryptoFeed{}
	}
	return feedResponse{
		CachedAt:   cached.Timestamp.UTC().Format(contract.DateTimeFormat),
		TotalItems: cached.Len(),
		Feeds:      feeds,
	}
}

func writeJSONResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		contract.LogWarn("write response failed", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSONResponse(w, status, map[string]string{"error": msg})
}
