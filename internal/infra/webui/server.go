// Package webui serves the browser remote: the embedded control page and
// the JSON API it calls. Speech synthesis happens in the browser; every
// string it speaks travels as JSON, so quoting is handled by the codec.
package webui

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"relay-assistant/internal/domain"
)

//go:embed static/index.html
var indexHTML []byte

const maxAudioBytes = 10 * 1024 * 1024

// Dispatcher is the slice of the application layer the web surface needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, in domain.Input) domain.Outcome
	Ping(ctx context.Context) domain.Outcome
}

type Server struct {
	addr        string
	authToken   string
	dispatcher  Dispatcher
	logger      *slog.Logger
	mux         *http.ServeMux
	server      *http.Server
	rateLimiter *RateLimiter

	mu      sync.Mutex
	running bool
}

func NewServer(addr, authToken string, dispatcher Dispatcher, logger *slog.Logger) *Server {
	s := &Server{
		addr:        addr,
		authToken:   authToken,
		dispatcher:  dispatcher,
		logger:      logger,
		mux:         http.NewServeMux(),
		rateLimiter: NewRateLimiter(30, time.Minute), // 30 requests per minute per IP
	}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /api/toggle", s.rateLimiter.Middleware(s.requireAuth(s.handleToggle)))
	s.mux.HandleFunc("POST /api/command", s.rateLimiter.Middleware(s.requireAuth(s.handleCommand)))
	s.mux.HandleFunc("POST /api/audio", s.rateLimiter.Middleware(s.requireAuth(s.handleAudio)))
	s.mux.HandleFunc("GET /api/ping", s.requireAuth(s.handlePing))
	// No rate limiting or auth on the health check
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s
}

func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		s.logger.Info("web UI listening", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("web server error", "error", err)
		}
	}()

	s.running = true
	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := s.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	s.running = false
	return nil
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken != "" {
			token := r.Header.Get("X-Auth-Token")
			if token == "" {
				token = r.URL.Query().Get("token")
			}
			if token != s.authToken {
				s.logger.Warn("unauthorized request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

type toggleRequest struct {
	Channel string `json:"channel"`
	State   string `json:"state"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1024)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	ch, err := domain.ParseChannel(req.Channel)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st, err := domain.ParseState(req.State)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out := s.dispatcher.Dispatch(r.Context(), domain.ManualInput(ch, st))
	s.writeOutcome(w, out)
}

type commandRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Text == "" {
		http.Error(w, "empty text", http.StatusBadRequest)
		return
	}

	s.logger.Info("text command received", "text", req.Text)

	out := s.dispatcher.Dispatch(r.Context(), domain.TextInput(req.Text))
	s.writeOutcome(w, out)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	pcm, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes))
	if err != nil {
		s.logger.Error("reading audio body", "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(pcm) == 0 {
		http.Error(w, "empty audio", http.StatusBadRequest)
		return
	}

	s.logger.Info("audio received", "bytes", len(pcm))

	out := s.dispatcher.Dispatch(r.Context(), domain.VoiceInput(pcm))
	s.writeOutcome(w, out)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	out := s.dispatcher.Ping(r.Context())
	s.writeOutcome(w, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK
	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `{"status":"%s","running":%t}`, status, running)
}

type outcomeResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Speak   string `json:"speak"`
	Level   string `json:"level"`
}

func (s *Server) writeOutcome(w http.ResponseWriter, out domain.Outcome) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(outcomeResponse{
		OK:      out.OK,
		Message: out.Message,
		Speak:   out.Speak,
		Level:   string(out.Level),
	})
}
