package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/insight-relay/server/internal/config"
	"github.com/insight-relay/server/internal/relay"
)

type Server struct {
	cfg     config.ServerConfig
	router  *chi.Mux
	relay   *relay.Relay
	started time.Time
}

func New(cfg config.Config, rly *relay.Relay) *Server {
	s := &Server{
		cfg:     cfg.Server,
		router:  chi.NewRouter(),
		relay:   rly,
		started: time.Now(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.cfg.ClientOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/gemini", s.handleGemini)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Info("HTTP request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// Run starts the server and blocks until shutdown. If the configured port
// is taken, the next ports are tried up to the configured attempt count.
func (s *Server) Run() error {
	listener, addr, err := s.listen()
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("server listening", "address", addr)
		serverErrors <- httpServer.Serve(listener)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		slog.Info("starting shutdown", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	return nil
}

func (s *Server) listen() (net.Listener, string, error) {
	port, err := strconv.Atoi(s.cfg.Port)
	if err != nil {
		return nil, "", fmt.Errorf("invalid port %q: %w", s.cfg.Port, err)
	}

	attempts := s.cfg.PortAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(port+i))
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			return listener, addr, nil
		}
		lastErr = err
		slog.Warn("port unavailable, trying next", "address", addr, "error", err)
	}

	return nil, "", fmt.Errorf("no available port after %d attempts: %w", attempts, lastErr)
}
