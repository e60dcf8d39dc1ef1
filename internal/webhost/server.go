package webhost

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"ripmedia/internal/events"
	"ripmedia/internal/history"
	"ripmedia/internal/logging"
	"ripmedia/internal/model"
)

//go:embed web/index.html
var indexHTML []byte

const (
	defaultPingInterval = 10 * time.Second
	maxBodyBytes        = 1 << 20
)

// Manager is the orchestrator surface the web host drives.
type Manager interface {
	Enqueue(urls []string) ([]model.ItemState, error)
	Snapshot() []model.ItemState
}

// HistoryReader lists persisted results.
type HistoryReader interface {
	List(ctx context.Context, opts history.ListOptions) ([]history.Entry, error)
	Batches(ctx context.Context, limit int) ([]history.Batch, error)
}

// Option configures a Server.
type Option func(*Server)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHistory enables GET /history.
func WithHistory(h HistoryReader) Option {
	return func(s *Server) { s.history = h }
}

// WithOpener overrides how /open reveals a path.
func WithOpener(open func(path string) error) Option {
	return func(s *Server) {
		if open != nil {
			s.open = open
		}
	}
}

// WithPingInterval overrides the SSE keepalive interval.
func WithPingInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.pingInterval = d
		}
	}
}

// Server is the web host HTTP server.
type Server struct {
	outputDir    string
	manager      Manager
	broker       *events.Broker
	history      HistoryReader
	open         func(path string) error
	logger       *slog.Logger
	pingInterval time.Duration

	listener net.Listener
	server   *http.Server
	closing  chan struct{}
	stopOnce sync.Once
}

// New constructs a Server. outputDir bounds the paths /open accepts.
func New(outputDir string, manager Manager, broker *events.Broker, opts ...Option) *Server {
	s := &Server{
		outputDir:    outputDir,
		manager:      manager,
		broker:       broker,
		open:         RevealInFileManager,
		logger:       logging.NewNop(),
		pingInterval: defaultPingInterval,
		closing:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "webhost")
	return s
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /index.html", s.handleIndex)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("POST /enqueue", sameOrigin(s.handleEnqueue))
	mux.HandleFunc("POST /open", sameOrigin(s.handleOpen))
	mux.HandleFunc("GET /history", s.handleHistory)
	return mux
}

// Start listens on addr and serves until ctx ends or Stop is called. It
// returns the bound address, which differs from addr when port 0 is used.
func (s *Server) Start(ctx context.Context, addr string) (net.Addr, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("webhost listen: %w", err)
	}
	s.listener = listener
	// No WriteTimeout: /events responses stay open.
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("webhost server error",
				logging.String(logging.FieldEventType, "webhost_serve_failed"),
				logging.Error(err),
			)
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("webhost listening",
		logging.String(logging.FieldEventType, "webhost_listening"),
		logging.String("address", listener.Addr().String()),
	)
	return listener.Addr(), nil
}

// Stop ends open event streams and shuts the server down, waiting briefly
// for in-flight requests.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		close(s.closing)
		if s.server == nil {
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			_ = s.server.Close()
		}
	})
}

// sameOrigin rejects browser requests issued by pages served from another
// origin. Requests without an Origin header (curl, scripts) pass.
func sameOrigin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			u, err := url.Parse(origin)
			if err != nil || !strings.EqualFold(u.Host, r.Host) {
				w.WriteHeader(http.StatusForbidden)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, stateResponse{Items: s.manager.Snapshot()})
}

type stateResponse struct {
	Items []model.ItemState `json:"items"`
}

type historyResponse struct {
	Items   []history.Entry `json:"items"`
	Batches []history.Batch `json:"batches"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Debug("write response failed", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
