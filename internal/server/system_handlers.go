package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/options-trader/internal/database"
)

// SystemHandlers handles system monitoring endpoints
type SystemHandlers struct {
	log     zerolog.Logger
	cacheDB *database.DB
	started time.Time
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, cacheDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:     log.With().Str("component", "system_handlers").Logger(),
		cacheDB: cacheDB,
		started: time.Now().UTC(),
	}
}

// StatusResponse reports process and host health
type StatusResponse struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	RAMPercent    float64 `json:"ram_percent"`
	Goroutines    int     `json:"goroutines"`
	CacheHealthy  bool    `json:"cache_healthy"`
}

// HandleStatus reports system status
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := h.getSystemStats()

	cacheHealthy := true
	if h.cacheDB != nil {
		if err := h.cacheDB.QuickCheck(r.Context()); err != nil {
			h.log.Warn().Err(err).Msg("Cache database unhealthy")
			cacheHealthy = false
		}
	}

	resp := StatusResponse{
		UptimeSeconds: time.Since(h.started).Seconds(),
		CPUPercent:    cpuPercent,
		RAMPercent:    ramPercent,
		Goroutines:    runtime.NumGoroutine(),
		CacheHealthy:  cacheHealthy,
	}

	w.Header().Set("Content-Type", "application/json")
	status := http.StatusOK
	if !cacheHealthy {
		status = http.StatusServiceUnavailable
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode status response")
	}
}

// getSystemStats calculates CPU and RAM usage percentages.
// Uses a 100ms sampling interval so the endpoint stays fast.
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
