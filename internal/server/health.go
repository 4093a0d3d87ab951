package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"dynasty-bot/internal/config"
	"dynasty-bot/internal/constants"
	"dynasty-bot/internal/middleware"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

const healthBody = "Dynasty Bot OK"

// ReadyFunc reports whether the bot's gateway session is up.
type ReadyFunc func() bool

type HealthServer struct {
	srv    *http.Server
	ready  atomic.Value
	logger zerolog.Logger
}

func NewHealthServer(cfg *config.Config, logger zerolog.Logger) *HealthServer {
	h := &HealthServer{logger: logger}
	if cfg.HealthPort == "" {
		return h
	}
	h.srv = &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HealthPort),
		Handler: h.Handler(),
	}
	return h
}

func (h *HealthServer) Enabled() bool {
	return h.srv != nil
}

// SetReady installs the readiness probe consulted by /readyz.
func (h *HealthServer) SetReady(fn ReadyFunc) {
	h.ready.Store(fn)
}

func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", h.health)
	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("GET /readyz", h.readyz)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	})

	return middleware.RequestID(h.logger)(c.Handler(mux))
}

func (h *HealthServer) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(healthBody))
}

func (h *HealthServer) readyz(w http.ResponseWriter, r *http.Request) {
	fn, _ := h.ready.Load().(ReadyFunc)
	if fn == nil || !fn() {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	h.health(w, r)
}

func (h *HealthServer) Start() {
	if h.srv == nil {
		h.logger.Info().Msg("health server disabled")
		return
	}
	go func() {
		h.logger.Info().Str("addr", h.srv.Addr).Msg("health server starting")
		if err := h.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error().Err(err).Msg("health server failed")
		}
	}()
}

func (h *HealthServer) Stop(ctx context.Context) error {
	if h.srv == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
	defer cancel()

	if err := h.srv.Shutdown(shutdownCtx); err != nil {
		h.logger.Error().Err(err).Msg("health server shutdown failed")
		return err
	}
	h.logger.Info().Msg("health server stopped")
	return nil
}
