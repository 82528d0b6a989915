package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chat-app-agent/internal/api/middleware"
	"chat-app-agent/internal/queue"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

type RouteRegistrar func(mux *http.ServeMux, s *APIServer)

type Options struct {
	ListenAddr string
	Queue      *queue.RequestQueueManager
	Logger     zerolog.Logger
	CORS       middleware.CORSConfig
	// Auth guards mutating routes. Nil leaves them open.
	Auth       middleware.Middleware
	Registerer prometheus.Registerer
	State      *State
}

type APIServer struct {
	listenAddr          string
	requestQueueManager *queue.RequestQueueManager
	logger              zerolog.Logger
	cors                middleware.CORSConfig
	auth                middleware.Middleware
	state               *State
	routeRegistrars     []RouteRegistrar
	metrics             *metrics
}

func NewAPIServer(opts Options, registrars ...RouteRegistrar) *APIServer {
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	auth := opts.Auth
	if auth == nil {
		auth = func(next http.HandlerFunc) http.HandlerFunc { return next }
	}
	if len(opts.CORS.AllowedOrigins) == 0 {
		opts.CORS = middleware.DefaultCORSConfig()
	}

	return &APIServer{
		listenAddr:          opts.ListenAddr,
		requestQueueManager: opts.Queue,
		logger:              opts.Logger.With().Str("component", "api").Logger(),
		cors:                opts.CORS,
		auth:                auth,
		state:               opts.State,
		routeRegistrars:     registrars,
		metrics:             newMetrics(reg, opts.ListenAddr, opts.Queue),
	}
}

// Handler builds the routed and instrumented handler without listening.
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()

	for _, reg := range s.routeRegistrars {
		reg(mux, s)
	}

	mux.Handle("/metrics", s.metrics.metricsHandler())
	return s.metrics.instrument(mux)
}

// Run serves until ctx is done and then shuts down gracefully.
func (s *APIServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.listenAddr).Msg("state api listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info().Msg("state api stopped")
	return nil
}

func (s *APIServer) State() *State {
	return s.state
}

func (s *APIServer) Auth() middleware.Middleware {
	return s.auth
}
