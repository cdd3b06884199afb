// Package handlers provides HTTP handlers for pipeline operations.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/okushigue/rzqr/internal/modules/circuit"
	"github.com/okushigue/rzqr/internal/modules/pipeline"
	"github.com/okushigue/rzqr/internal/modules/results"
	"github.com/okushigue/rzqr/internal/utils"
	"github.com/rs/zerolog"
)

// Handler handles pipeline HTTP requests
type Handler struct {
	service  *pipeline.Service
	defaults pipeline.Request
	log      zerolog.Logger
}

// NewHandler creates a new pipeline handler. defaults fill every field a request omits.
func NewHandler(service *pipeline.Service, defaults pipeline.Request, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		defaults: defaults,
		log:      log.With().Str("handler", "pipeline").Logger(),
	}
}

// maxBodyBytes bounds a run request body
const maxBodyBytes = 64 << 10

// RunRequest overrides the configured defaults for one run
type RunRequest struct {
	DecimalDigits   *int     `json:"decimal_digits,omitempty"`
	InfluenceRadius *float64 `json:"influence_radius,omitempty"`
	ZeroCount       *int     `json:"zero_count,omitempty"`
	Shots           *int     `json:"shots,omitempty"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (pipeline.Request, error) {
	var body RunRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return pipeline.Request{}, err
	}

	req := h.defaults
	if body.DecimalDigits != nil {
		req.Precision.DecimalDigits = *body.DecimalDigits
	}
	if body.InfluenceRadius != nil {
		req.Precision.InfluenceRadius = *body.InfluenceRadius
	}
	if body.ZeroCount != nil {
		req.Precision.ZeroCount = *body.ZeroCount
	}
	if body.Shots != nil {
		req.Shots = *body.Shots
	}
	return req, nil
}

// HandleRun handles POST /api/pipeline/run
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	req, err := h.decode(w, r)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", utils.StatusForBody(err))
		return
	}

	result, err := h.service.Run(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"run":        result,
			"top":        results.Top(result.Ranked, 8),
			"elapsed_ms": result.Elapsed.Milliseconds(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleCircuit handles POST /api/pipeline/circuit
func (h *Handler) HandleCircuit(w http.ResponseWriter, r *http.Request) {
	req, err := h.decode(w, r)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", utils.StatusForBody(err))
		return
	}

	prep, err := h.service.Prepare(r.Context(), req.Precision)
	if err != nil {
		h.writeError(w, err)
		return
	}
	qasm, err := circuit.QASM(prep.Circuit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"config":  prep.Config,
			"zeros":   prep.Zeros.Strings(),
			"angles":  prep.Angles,
			"circuit": prep.Circuit,
			"stats":   prep.Stats,
			"qasm":    qasm,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleZeros handles GET /api/pipeline/zeros?count=&digits=
func (h *Handler) HandleZeros(w http.ResponseWriter, r *http.Request) {
	count := h.defaults.Precision.ZeroCount
	digits := h.defaults.Precision.DecimalDigits

	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid count parameter", http.StatusBadRequest)
			return
		}
		count = n
	}
	if v := r.URL.Query().Get("digits"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid digits parameter", http.StatusBadRequest)
			return
		}
		digits = n
	}

	seq, err := h.service.Zeros(r.Context(), count, digits)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"count":  seq.Len(),
			"digits": seq.Digits,
			"zeros":  seq.Strings(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := utils.StatusForError(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Int("status", status).Msg("Pipeline request failed")
	}
	http.Error(w, err.Error(), status)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
