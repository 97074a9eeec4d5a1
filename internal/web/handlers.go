package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/palcopro/song-enrich/internal/enrich"
)

// Enricher runs the enrichment pipeline for one song.
type Enricher interface {
	Enrich(ctx context.Context, title, artist string) (*enrich.Record, error)
}

// Handlers contains the HTTP handlers for the enrichment service.
type Handlers struct {
	enricher Enricher
	log      logrus.FieldLogger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(enricher Enricher, log logrus.FieldLogger) *Handlers {
	return &Handlers{enricher: enricher, log: log}
}

// enrichRequest is the POST /enrich payload. Field names match what the
// front end has always sent.
type enrichRequest struct {
	Title  string `json:"nomeMusica"`
	Artist string `json:"nomeArtista"`
}

// messageResponse is the body of every non-200 response.
type messageResponse struct {
	Message string `json:"message"`
}

// Enrich handles POST /enrich.
//
// Partial upstream failures still answer 200 with whatever was resolved;
// only invalid input (400) and unexpected internal errors (500) fail.
func (h *Handlers) Enrich(w http.ResponseWriter, r *http.Request) {
	var req enrichRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid JSON body"})
		return
	}

	record, err := h.enricher.Enrich(r.Context(), req.Title, req.Artist)
	if err != nil {
		if errors.Is(err, enrich.ErrInvalidInput) {
			respondJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
			return
		}
		h.log.WithError(err).Error("enrichment failed")
		respondJSON(w, http.StatusInternalServerError, messageResponse{Message: "internal server error"})
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// Preflight handles OPTIONS /enrich. The CORS headers are already set by
// the middleware; browsers only need the 200.
func (h *Handlers) Preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// MethodNotAllowed answers requests with an unsupported method.
func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusMethodNotAllowed, messageResponse{Message: "method not allowed"})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
