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

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/user/mcp-city-time/history"
	"github.com/user/mcp-city-time/logging"
	"github.com/user/mcp-city-time/telemetry"
	"github.com/user/mcp-city-time/timeservice"
	"github.com/user/mcp-city-time/tools"
)

const shutdownTimeout = 30 * time.Second

// Server hosts the MCP tools over Streamable HTTP or stdio, plus the landing
// page and JSON status endpoints in HTTP mode.
type Server struct {
	config     Config
	httpServer *http.Server
	listener   net.Listener
	mcpServer  *mcp.Server
	catalog    *tools.Catalog
	history    *history.Store
	stats      *telemetry.StatsTracker
	trace      *telemetry.TraceRecorder
	logger     *logging.Logger
	origins    map[string]struct{}
	mu         sync.RWMutex
}

type Option func(*options)

type options struct {
	lookup   tools.TimeLookup
	executor timeservice.Executor
}

// WithLookup replaces the dig/nslookup runner.
func WithLookup(l tools.TimeLookup) Option {
	return func(o *options) { o.lookup = l }
}

// WithExecutor keeps the default runner but spawns commands through e.
func WithExecutor(e timeservice.Executor) Option {
	return func(o *options) { o.executor = e }
}

func NewServer(config Config, logger *logging.Logger, opts ...Option) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewLogger(config.LogLevel)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.lookup == nil {
		lookupCfg, err := config.TimeLookupConfig()
		if err != nil {
			return nil, err
		}
		o.lookup = timeservice.NewLookuper(lookupCfg, o.executor)
	}

	store, err := history.Open(config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	s := &Server{
		config:  config,
		history: store,
		stats:   telemetry.NewStatsTracker(),
		trace:   telemetry.NewTraceRecorder(200),
		logger:  logger,
		origins: make(map[string]struct{}),
	}
	for _, origin := range config.AllowedOrigins {
		s.origins[origin] = struct{}{}
	}

	s.mcpServer, s.catalog = tools.NewServer(tools.Deps{
		Logger:  logger.With("component", "tools"),
		Lookup:  o.lookup,
		Stats:   s.stats,
		Trace:   s.trace,
		History: store,
	})

	s.httpServer = &http.Server{
		Addr:              config.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle(MCPPath, s.checkOrigin(mcpHandler))
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/trace", s.handleTrace)
	mux.HandleFunc("/api/tools", s.handleTools)
	mux.HandleFunc("/", s.handleLanding)
	return mux
}

func (s *Server) checkOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && len(s.origins) > 0 {
			if _, ok := s.origins[origin]; !ok {
				s.logger.Warn("invalid origin: %s", origin)
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "origin not allowed"})
				return
			}
		}
		s.logger.Debug("incoming %s %s", r.Method, r.RequestURI)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": tools.ServerVersion})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if date := r.URL.Query().Get("date"); date != "" {
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
		day := s.stats.GetDailyStats(date)
		if day == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no calls recorded on " + date})
			return
		}
		writeJSON(w, http.StatusOK, day)
		return
	}
	writeJSON(w, http.StatusOK, s.stats.GetStats())
}

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	events := s.trace.List()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(events),
		"events": events,
	})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if name := r.URL.Query().Get("name"); name != "" {
		tool, err := s.catalog.Get(name)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, tool)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": s.catalog.Count(),
		"tools": s.catalog.List(),
	})
}

// handleHistory lists recent lookups; ?city= filters, ?limit= caps (max 200),
// ?id= fetches a single lookup.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		record, err := s.history.Get(r.Context(), id)
		if errors.Is(err, history.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "lookup not found"})
			return
		}
		if err != nil {
			s.logger.Error("failed to read lookup %s: %v", id, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read history"})
			return
		}
		writeJSON(w, http.StatusOK, record)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, 200)
	}

	var (
		records []history.Record
		err     error
	)
	if city := r.URL.Query().Get("city"); city != "" {
		records, err = s.history.ForCity(r.Context(), city, limit)
	} else {
		records, err = s.history.Recent(r.Context(), limit)
	}
	if err != nil {
		s.logger.Error("failed to read history: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read history"})
		return
	}
	if records == nil {
		records = []history.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(records),
		"entries": records,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	defer listener.Close()

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("server started on %s (MCP endpoint %s)", listener.Addr().String(), MCPPath)
		errChan <- s.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errChan:
		if err != http.ErrServerClosed {
			return err
		}
	}

	return nil
}

// RunStdio serves MCP over stdin/stdout until the client disconnects or ctx ends.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.RunTransport(ctx, &mcp.StdioTransport{})
}

// RunTransport serves MCP over an arbitrary transport.
func (s *Server) RunTransport(ctx context.Context, t mcp.Transport) error {
	s.logger.Info("stdio server started")
	defer s.logger.Info("stdio server stopped")
	return s.mcpServer.Run(ctx, t)
}

// Run starts the configured mode.
func (s *Server) Run(ctx context.Context) error {
	if s.config.Mode == "stdio" {
		return s.RunStdio(ctx)
	}
	return s.ListenAndServe(ctx)
}

func (s *Server) GetListenAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.ListenAddr
}

func (s *Server) Stats() *telemetry.StatsTracker { return s.stats }

func (s *Server) History() *history.Store { return s.history }

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.history != nil {
		return s.history.Close()
	}
	return nil
}
