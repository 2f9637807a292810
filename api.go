package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"searchserver/internal/index"
)

// searchEngine serializes access to the index: one writer or many readers.
type searchEngine struct {
	idx       *index.Index
	telemetry *telemetry
	logger    *slog.Logger

	mu sync.RWMutex
}

func newSearchEngine(idx *index.Index, telemetry *telemetry, logger *slog.Logger) *searchEngine {
	return &searchEngine{idx: idx, telemetry: telemetry, logger: logger}
}

type addDocumentRequest struct {
	ID      *int                 `json:"id"`
	Text    string               `json:"text"`
	Status  index.DocumentStatus `json:"status"`
	Ratings []int                `json:"ratings"`
}

func (e *searchEngine) addDocument(ctx context.Context, req addDocumentRequest) error {
	if req.ID == nil {
		return fmt.Errorf("document id is required: %w", index.ErrInvalidArgument)
	}

	start := time.Now()
	e.mu.Lock()
	err := e.idx.AddDocument(*req.ID, req.Text, req.Status, req.Ratings)
	count := e.idx.DocumentCount()
	e.mu.Unlock()

	if e.telemetry != nil {
		e.telemetry.recordAdd(ctx, req.Status.String(), err == nil, count)
	}
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("document rejected", "id", *req.ID, "error", err)
		}
		return err
	}
	if e.logger != nil {
		e.logger.Info("document added", "id", *req.ID, "status", req.Status.String(), "documents", count, "duration_ms", time.Since(start).Milliseconds())
	}
	return nil
}

func (e *searchEngine) search(ctx context.Context, query string, predicate index.DocumentPredicate) ([]index.Document, error) {
	start := time.Now()
	e.mu.RLock()
	docs, err := e.idx.FindTopDocumentsFunc(query, predicate)
	e.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if e.telemetry != nil {
		e.telemetry.recordSearch(ctx, len(docs), time.Since(start))
	}
	if e.logger != nil {
		e.logger.Debug("search executed", "query", query, "hits", len(docs), "duration_ms", time.Since(start).Milliseconds())
	}
	return docs, nil
}

func (e *searchEngine) match(ctx context.Context, query string, id int) ([]string, index.DocumentStatus, error) {
	e.mu.RLock()
	words, status, err := e.idx.MatchDocument(query, id)
	e.mu.RUnlock()
	if err != nil {
		return nil, 0, err
	}

	if e.telemetry != nil {
		e.telemetry.recordMatch(ctx, len(words))
	}
	return words, status, nil
}

func (e *searchEngine) documentCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx.DocumentCount()
}

func (e *searchEngine) documentIDAt(position int) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx.DocumentIDAt(position)
}

func (e *searchEngine) stopWords() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx.StopWords()
}

type apiServer struct {
	engine    *searchEngine
	telemetry *telemetry
	logger    *slog.Logger
	ready     atomic.Bool
}

func newAPIServer(engine *searchEngine, telemetry *telemetry, logger *slog.Logger) *apiServer {
	server := &apiServer{engine: engine, telemetry: telemetry, logger: logger}
	server.ready.Store(true)
	return server
}

func (s *apiServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/documents", s.handleDocuments)
	mux.HandleFunc("/v1/documents/", s.handleDocumentAt)
	mux.HandleFunc("/v1/search", s.handleSearch)
	mux.HandleFunc("/v1/match", s.handleMatch)
	mux.HandleFunc("/v1/stopwords", s.handleStopWords)
	mux.HandleFunc("/v1/health", s.handleHealth)
	mux.HandleFunc("/v1/ready", s.handleReadiness)
	if s.telemetry != nil && s.telemetry.enabled {
		mux.HandleFunc("/v1/metrics", s.telemetry.handleMetrics)
	}
	return mux
}

func (s *apiServer) handleDocuments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.addDocument(w, r)
	case http.MethodGet:
		start := time.Now()
		respond(w, http.StatusOK, map[string]any{"count": s.engine.documentCount(), "timingMs": time.Since(start).Milliseconds()})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *apiServer) addDocument(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req addDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json payload", start)
		return
	}

	if err := s.engine.addDocument(r.Context(), req); err != nil {
		respondError(w, httpStatusForError(err), err.Error(), start)
		return
	}

	respond(w, http.StatusCreated, map[string]any{
		"id":       *req.ID,
		"count":    s.engine.documentCount(),
		"timingMs": time.Since(start).Milliseconds(),
	})
}

func (s *apiServer) handleDocumentAt(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/documents/"), "/")
	position, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid position: %v", err), start)
		return
	}

	id, err := s.engine.documentIDAt(position)
	if err != nil {
		respondError(w, httpStatusForError(err), err.Error(), start)
		return
	}

	respond(w, http.StatusOK, map[string]any{"position": position, "id": id, "timingMs": time.Since(start).Milliseconds()})
}

func (s *apiServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	params := r.URL.Query()
	predicate, err := predicateFromParams(params.Get("status"), params.Get("min_rating"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), start)
		return
	}

	query := params.Get("q")
	docs, err := s.engine.search(r.Context(), query, predicate)
	if err != nil {
		respondError(w, httpStatusForError(err), err.Error(), start)
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"query":    query,
		"results":  docs,
		"timingMs": time.Since(start).Milliseconds(),
	})
}

func (s *apiServer) handleMatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	params := r.URL.Query()
	id, err := strconv.Atoi(params.Get("id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid id: %v", err), start)
		return
	}

	query := params.Get("q")
	words, status, err := s.engine.match(r.Context(), query, id)
	if err != nil {
		respondError(w, httpStatusForError(err), err.Error(), start)
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"id":       id,
		"words":    words,
		"status":   status,
		"timingMs": time.Since(start).Milliseconds(),
	})
}

func (s *apiServer) handleStopWords(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	respond(w, http.StatusOK, map[string]any{"stopWords": s.engine.stopWords(), "timingMs": time.Since(start).Milliseconds()})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	respond(w, http.StatusOK, map[string]any{"status": "ok", "timingMs": time.Since(start).Milliseconds()})
}

func (s *apiServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	ready := s.ready.Load()

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	respond(w, status, map[string]any{
		"status":    map[bool]string{true: "ready", false: "initializing"}[ready],
		"documents": s.engine.documentCount(),
		"timingMs":  time.Since(start).Milliseconds(),
	})
}

// predicateFromParams builds the search filter. An empty status means ACTUAL
// and "any" disables the status check.
func predicateFromParams(rawStatus, rawMinRating string) (index.DocumentPredicate, error) {
	anyStatus := strings.EqualFold(strings.TrimSpace(rawStatus), "any")
	status := index.StatusActual
	if rawStatus != "" && !anyStatus {
		parsed, err := index.ParseDocumentStatus(rawStatus)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	minRating, hasMin := 0, false
	if rawMinRating != "" {
		v, err := strconv.Atoi(rawMinRating)
		if err != nil {
			return nil, fmt.Errorf("invalid min_rating: %w", err)
		}
		minRating, hasMin = v, true
	}

	return func(_ int, docStatus index.DocumentStatus, rating int) bool {
		if !anyStatus && docStatus != status {
			return false
		}
		return !hasMin || rating >= minRating
	}, nil
}

func respond(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, start time.Time) {
	respond(w, status, map[string]any{"error": message, "timingMs": time.Since(start).Milliseconds()})
}

func httpStatusForError(err error) int {
	switch {
	case errors.Is(err, index.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, index.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, index.ErrNotFound), errors.Is(err, index.ErrOutOfRange):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
