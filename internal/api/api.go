package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joescharf/cra/internal/metrics"
	"github.com/joescharf/cra/internal/models"
	"github.com/joescharf/cra/internal/store"
)

// MaxUploadSize caps the size of a reviewed file.
const MaxUploadSize = 5 << 20

// Analyzer produces a review for one file.
type Analyzer interface {
	Analyze(ctx context.Context, filename, content string) models.ReviewReport
}

// Server provides the REST API handlers.
type Server struct {
	store    store.Store
	analyzer Analyzer
	metrics  *metrics.Recorder
	ui       http.Handler
}

// NewServer creates a new API server. The metrics recorder may be nil.
func NewServer(s store.Store, a Analyzer, m *metrics.Recorder) *Server {
	return &Server{
		store:    s,
		analyzer: a,
		metrics:  m,
	}
}

// WithUI mounts h for every path the API does not handle.
func (s *Server) WithUI(h http.Handler) *Server {
	s.ui = h
	return s
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/review", s.reviewUpload)
	mux.HandleFunc("POST /api/review-text", s.reviewText)

	mux.HandleFunc("GET /api/reviews", s.listReviews)
	mux.HandleFunc("GET /api/reviews/{id}", s.getReview)
	mux.HandleFunc("DELETE /api/reviews/{id}", s.deleteReview)

	mux.HandleFunc("GET /health", s.health)
	mux.Handle("GET /metrics", s.metrics.Handler())

	var h http.Handler = mux
	if s.ui != nil {
		// API paths stay on the API mux so a wrong method is a 405 rather
		// than the dashboard.
		h = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isAPIPath(r.URL.Path) {
				mux.ServeHTTP(w, r)
				return
			}
			s.ui.ServeHTTP(w, r)
		})
	}

	return requestID(logRequests(corsMiddleware(h)))
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/") || p == "/health" || p == "/metrics"
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// --- Reviews ---

func (s *Server) reviewUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "A file upload in field \"file\" is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Error reading file: "+err.Error())
		return
	}
	if !utf8.Valid(data) {
		writeError(w, http.StatusBadRequest, "File must be a valid text file (UTF-8 encoded)")
		return
	}

	s.review(w, r, filepath.Base(header.Filename), string(data), "Error processing file: ")
}

func (s *Server) reviewText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

	var req models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "Code is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Filename) == "" {
		writeError(w, http.StatusBadRequest, "filename is required")
		return
	}

	s.review(w, r, req.Filename, req.Content, "Error processing code: ")
}

func (s *Server) review(w http.ResponseWriter, r *http.Request, filename, content, errPrefix string) {
	report := s.analyzer.Analyze(r.Context(), filename, content)

	rec := models.NewReview(filename, content, report)
	if err := s.store.SaveReview(r.Context(), rec); err != nil {
		slog.Error("failed to save review", "filename", filename, "error", err)
		writeError(w, http.StatusInternalServerError, errPrefix+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", store.DefaultListLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reviews, err := s.store.ListReviews(r.Context(), skip, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (s *Server) getReview(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetReview(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Review not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) deleteReview(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.store.DeleteReview(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Review not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Review deleted successfully"})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "Code Review Assistant",
	})
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New(key + " must be a non-negative integer")
	}
	return n, nil
}
