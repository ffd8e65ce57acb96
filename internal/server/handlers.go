package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/yourusername/article-registry/internal/article"
	"github.com/yourusername/article-registry/internal/export"
)

// maxBodyBytes caps create and update request bodies.
const maxBodyBytes = 1 << 20

const (
	msgServerError = "Internal server error"
	msgNotFound    = "Article not found"
	msgMissingID   = "Article id is required"
	msgSaveFailed  = "Failed to save article"
	msgDeleteFail  = "Failed to delete article"
)

// result is the envelope of every mutating response.
type result struct {
	Success bool             `json:"success"`
	Article *article.Article `json:"article,omitempty"`
	Message string           `json:"message,omitempty"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.List(r.Context()))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var fields article.Article
	if !s.decode(w, r, &fields) {
		return
	}

	created, err := s.service.Create(r.Context(), fields)
	if err != nil {
		s.writeError(w, r, err, msgSaveFailed)
		return
	}
	writeJSON(w, http.StatusOK, result{Success: true, Article: &created})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var a article.Article
	if !s.decode(w, r, &a) {
		return
	}

	updated, err := s.service.Update(r.Context(), a)
	if err != nil {
		s.writeError(w, r, err, msgSaveFailed)
		return
	}
	writeJSON(w, http.StatusOK, result{Success: true, Article: &updated})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	// Anything that is not a positive integer is treated as a missing id.
	id, _ := strconv.Atoi(r.URL.Query().Get("id"))

	if err := s.service.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, msgDeleteFail)
		return
	}
	writeJSON(w, http.StatusOK, result{Success: true})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="articles.csv"`)
	if err := export.WriteCSV(w, s.service.List(r.Context())); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to write CSV export", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a JSON request body into dst. The body must hold exactly one
// JSON value. On failure it writes a 500 response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := decodeSingle(body, dst); err != nil {
		s.logger.WarnContext(r.Context(), "Malformed request body",
			"method", r.Method,
			"error", err,
			"request_id", r.Header.Get(RequestIDHeader))
		writeFailure(w, http.StatusInternalServerError, msgServerError)
		return false
	}
	return true
}

func decodeSingle(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON value")
		}
		return fmt.Errorf("unexpected data after JSON value: %w", err)
	}
	return nil
}

// writeError maps a service error to its status and message. storageMsg is
// used for storage failures.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, storageMsg string) {
	switch {
	case errors.Is(err, article.ErrBadRequest):
		writeFailure(w, http.StatusBadRequest, msgMissingID)
	case errors.Is(err, article.ErrNotFound):
		writeFailure(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, article.ErrStorage):
		writeFailure(w, http.StatusInternalServerError, storageMsg)
	default:
		s.logger.ErrorContext(r.Context(), "Unexpected service error", "error", err)
		writeFailure(w, http.StatusInternalServerError, msgServerError)
	}
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, result{Success: false, Message: message})
}

// writeJSON writes a JSON response with the provided status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
