package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/okushigue/rzqr/internal/database"
	"github.com/okushigue/rzqr/internal/modules/pipeline"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers reports process and host health
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	ledgerDB  *database.DB
	pipeline  *pipeline.Service
	startedAt time.Time
}

// NewSystemHandlers creates system handlers. ledgerDB and svc may be nil.
func NewSystemHandlers(log zerolog.Logger, dataDir string, ledgerDB *database.DB, svc *pipeline.Service) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("component", "system_handlers").Logger(),
		dataDir:   dataDir,
		ledgerDB:  ledgerDB,
		pipeline:  svc,
		startedAt: time.Now(),
	}
}

// HealthResponse is the body of GET /api/system/health
type HealthResponse struct {
	Status        string          `json:"status"`
	Backend       string          `json:"backend,omitempty"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Goroutines    int             `json:"goroutines"`
	CPUPercent    float64         `json:"cpu_percent"`
	MemoryPercent float64         `json:"memory_percent"`
	DiskFreeGB    float64         `json:"disk_free_gb"`
	Ledger        string          `json:"ledger"`
	LedgerStats   *database.Stats `json:"ledger_stats,omitempty"`
}

// HandleHealth handles GET /api/system/health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	resp := HealthResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		DiskFreeGB:    h.getDiskFree(),
		Ledger:        "disabled",
	}
	if h.pipeline != nil {
		resp.Backend = h.pipeline.Backend()
	}

	if h.ledgerDB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ledgerDB.QuickCheck(ctx); err != nil {
			h.log.Warn().Err(err).Msg("Ledger health check failed")
			resp.Status = "degraded"
			resp.Ledger = "unreachable"
		} else {
			resp.Ledger = "ok"
			if stats, err := h.ledgerDB.GetStats(); err == nil {
				resp.LedgerStats = stats
			}
		}
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, map[string]interface{}{
		"data": resp,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// getSystemStats returns CPU and RAM usage percentages. The CPU sample is kept
// short so the endpoint stays responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) getDiskFree() float64 {
	if h.dataDir == "" {
		return 0
	}
	usage, err := disk.Usage(h.dataDir)
	if err != nil {
		h.log.Warn().Err(err).Str("dir", h.dataDir).Msg("Failed to get disk usage")
		return 0
	}
	return float64(usage.Free) / 1e9
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
