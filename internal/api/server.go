package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"
)

type Logger interface {
	Infow(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
}

// Status is the read-only view of the runner served over HTTP.
type Status interface {
	// FilesSnapshot returns a JSON-able list of per-file status.
	FilesSnapshot() any
	// Summary returns the current mode and completed sweep count.
	Summary() (mode string, sweeps int)
}

type Server struct {
	log    Logger
	status Status
	mux    *http.ServeMux
	srv    *http.Server
	addr   string
	ln     net.Listener
	mu     sync.Mutex
	start  bool
}

func New(log Logger, status Status, addr string) *Server {
	mux := http.NewServeMux()
	s := &Server{
		log:    log,
		status: status,
		mux:    mux,
		addr:   addr,
	}
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/files", s.handleFiles)
	return s
}

// Handler exposes the routes without a listener.
func (s *Server) Handler() http.Handler { return s.mux }

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.start {
		return nil
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := s.srv
	go func() {
		s.log.Infow("api server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorw("api server error", "error", err)
		}
	}()
	s.start = true
	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shCtx)
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return nil
	}
	err := s.srv.Shutdown(ctx)
	s.srv = nil
	s.start = false
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if s.status != nil {
		mode, sweeps := s.status.Summary()
		body["mode"] = mode
		body["sweeps"] = sweeps
	}
	writeJSON(w, body)
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	if s.status == nil {
		writeJSON(w, []any{})
		return
	}
	writeJSON(w, s.status.FilesSnapshot())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
