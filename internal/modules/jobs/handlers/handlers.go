// Package handlers exposes the backend job protocol over HTTP. Requests and
// responses are msgpack when the client asks for it, JSON otherwise.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/okushigue/rzqr/internal/clients/backend"
	"github.com/okushigue/rzqr/internal/modules/jobs"
	"github.com/okushigue/rzqr/internal/utils"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// maxJobBytes bounds a submitted job, circuit included
const maxJobBytes = 4 << 20

// Handler handles backend job HTTP requests
type Handler struct {
	service *jobs.Service
	log     zerolog.Logger
}

// NewHandler creates a new job handler
func NewHandler(service *jobs.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "backend_jobs").Logger(),
	}
}

// HandleSubmit handles POST /api/backend/jobs
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req backend.JobRequest
	var err error
	body := http.MaxBytesReader(w, r.Body, maxJobBytes)
	if isMsgpack(r.Header.Get("Content-Type")) {
		err = msgpack.NewDecoder(body).Decode(&req)
	} else {
		err = json.NewDecoder(body).Decode(&req)
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to decode job request")
		http.Error(w, "Invalid request body", utils.StatusForBody(err))
		return
	}

	resp, err := h.service.Submit(req)
	if err != nil {
		http.Error(w, err.Error(), utils.StatusForError(err))
		return
	}
	h.write(w, r, http.StatusAccepted, resp)
}

// HandleGet handles GET /api/backend/jobs/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	resp, ok := h.service.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	h.write(w, r, http.StatusOK, resp)
}

// write answers in msgpack for protocol clients and in the JSON envelope otherwise
func (h *Handler) write(w http.ResponseWriter, r *http.Request, status int, resp backend.JobResponse) {
	if isMsgpack(r.Header.Get("Accept")) {
		body, err := msgpack.Marshal(resp)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to encode msgpack response")
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", backend.ContentType)
		w.WriteHeader(status)
		_, _ = w.Write(body)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(map[string]interface{}{
		"data": resp,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func isMsgpack(header string) bool {
	return strings.Contains(header, backend.ContentType)
}
