// Package server exposes the pipeline to external tools over HTTP.
//
// Two small listeners mirror the desktop client: the note API accepts
// fully-formed notes from browser extensions, and the reader endpoint
// accepts raw text pushes. Both only enqueue pipeline commands; they
// never touch note state directly.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kristofgazso/vocabsieve/internal"
	"github.com/kristofgazso/vocabsieve/internal/config"
	"github.com/kristofgazso/vocabsieve/internal/pipeline"
)

// Stats reports today's activity counters.
type Stats interface {
	CountLookupsToday() (int, error)
	CountNotesToday() (int, error)
}

// Server runs the note API and reader listeners.
type Server struct {
	cfg      config.Config
	pipeline *pipeline.Pipeline
	stats    Stats
}

// New creates a server. stats may be nil when history is disabled.
func New(cfg config.Config, p *pipeline.Pipeline, stats Stats) *Server {
	return &Server{cfg: cfg, pipeline: p, stats: stats}
}

type noteRequest struct {
	Sentence   string   `json:"sentence"`
	Word       string   `json:"word"`
	Definition string   `json:"definition"`
	Tags       []string `json:"tags"`
}

// Run starts the enabled listeners and blocks until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 2)
	var servers []*http.Server

	if s.cfg.API.Enabled {
		srv := s.listener(s.cfg.API, s.apiMux())
		servers = append(servers, srv)
		go func() { errc <- srv.ListenAndServe() }()
	}
	if s.cfg.Reader.Enabled {
		srv := s.listener(s.cfg.Reader, s.readerMux())
		servers = append(servers, srv)
		go func() { errc <- srv.ListenAndServe() }()
	}
	if len(servers) == 0 {
		<-ctx.Done()
		return nil
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			_ = srv.Shutdown(shutdownCtx)
		}
		return nil
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("listener failed: %w", err)
	}
}

func (s *Server) listener(l config.Listener, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", l.Host, l.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

func (s *Server) apiMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthcheck", s.handleHealthcheck)
	mux.HandleFunc("/version", s.handleVersion)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/note", s.handleNote)
	return mux
}

func (s *Server) readerMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthcheck", s.handleHealthcheck)
	mux.HandleFunc("/text", s.handleText)
	return mux
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"version": internal.Version})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		http.Error(w, "history disabled", http.StatusNotFound)
		return
	}
	lookups, err := s.stats.CountLookupsToday()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	notes, err := s.stats.CountNotesToday()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]int{"lookups_today": lookups, "notes_today": notes})
}

// handleNote accepts a complete note from an external tool and runs it
// through the regular assemble-and-submit path.
func (s *Server) handleNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return
	}
	if req.Word == "" || req.Definition == "" {
		http.Error(w, "word and definition are required", http.StatusBadRequest)
		return
	}
	s.pipeline.HandleNoteRequest(req.Sentence, req.Word, req.Definition, req.Tags)
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprint(w, "accepted")
}

// handleText accepts raw text and treats it exactly like a clipboard
// change.
func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, fmt.Sprintf("read body: %v", err), http.StatusBadRequest)
		return
	}
	s.pipeline.HandleClipboard(string(body))
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprint(w, "accepted")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
