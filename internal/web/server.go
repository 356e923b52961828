package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/baalimago/webagent/internal/chat"
	"github.com/baalimago/webagent/internal/vendors"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const shutdownGrace = 10 * time.Second

// Server is the browser shell: the page, the REST api and the websocket
// stream of agent steps.
type Server struct {
	svc          *chat.Service
	mux          *http.ServeMux
	api          huma.API
	limiter      *Limiter
	upgrader     websocket.Upgrader
	defaultModel vendors.Choice
	version      string
}

type Option func(*Server)

func WithDefaultModel(c vendors.Choice) Option {
	return func(s *Server) {
		s.defaultModel = c
	}
}

// WithTurnLimit sets the per client rate of turn submissions.
func WithTurnLimit(r rate.Limit, burst int) Option {
	return func(s *Server) {
		s.limiter = NewLimiter(r, burst)
	}
}

func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

func New(svc *chat.Service, opts ...Option) *Server {
	s := &Server{
		svc:          svc,
		mux:          http.NewServeMux(),
		limiter:      NewLimiter(rate.Every(time.Minute/20), 5),
		defaultModel: vendors.DefaultChoice,
		version:      "dev",
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, o := range opts {
		o(s)
	}

	config := huma.DefaultConfig("webagent API", s.version)
	config.Info.Description = "Chat with a web browsing agent. Turns are synchronous, steps may be streamed over the websocket."
	s.api = humago.New(s.mux, config)
	s.api.UseMiddleware(s.turnRateLimit)
	s.registerRoutes()

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /api/sessions/{id}/ws", s.handleWS)
	return s
}

// Mount h at pattern, beside the api.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
}

func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go s.limiter.Janitor(ctx, 10*time.Minute)
	go s.svc.Store.Janitor(ctx, time.Hour)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
