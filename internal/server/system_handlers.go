package server

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/mt5-trader/internal/clients/mt5"
	"github.com/aristath/mt5-trader/internal/database"
	"github.com/aristath/mt5-trader/internal/scheduler"
	"github.com/aristath/mt5-trader/internal/utils"
)

// SessionStatus reports on the terminal session. *mt5.Session implements it.
type SessionStatus interface {
	IsOpen() bool
	Login() int64
	Server() string
}

// SystemHandlers serves health, host statistics and manual job runs
type SystemHandlers struct {
	session      SessionStatus
	terminalPath string
	databases    []*database.DB
	jobs         map[string]scheduler.Job
	startedAt    time.Time
	findProcess  func(ctx context.Context, path string) (*mt5.TerminalProcess, error)
	log          zerolog.Logger
}

// NewSystemHandlers creates new system handlers
func NewSystemHandlers(
	session SessionStatus,
	terminalPath string,
	databases []*database.DB,
	jobs []scheduler.Job,
	log zerolog.Logger,
) *SystemHandlers {
	byName := make(map[string]scheduler.Job, len(jobs))
	for _, job := range jobs {
		byName[job.Name()] = job
	}
	return &SystemHandlers{
		session:      session,
		terminalPath: terminalPath,
		databases:    databases,
		jobs:         byName,
		startedAt:    time.Now(),
		findProcess:  mt5.FindTerminalProcess,
		log:          log.With().Str("handler", "system").Logger(),
	}
}

// HandleHealth reports the session, the terminal process and the databases.
// Anything other than an open session with healthy databases is a 503.
// GET /health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	healthy := h.session != nil && h.session.IsOpen()

	session := map[string]interface{}{"open": healthy}
	if h.session != nil {
		session["login"] = h.session.Login()
		session["server"] = h.session.Server()
	}

	terminal := map[string]interface{}{"path": h.terminalPath, "running": false}
	if h.terminalPath != "" {
		proc, err := h.findProcess(ctx, h.terminalPath)
		if err != nil {
			terminal["error"] = err.Error()
		} else if proc != nil {
			terminal["running"] = true
			terminal["pid"] = proc.PID
		}
	}

	databases := make(map[string]string, len(h.databases))
	for _, db := range h.databases {
		if err := db.HealthCheck(ctx); err != nil {
			healthy = false
			databases[db.Name()] = err.Error()
			continue
		}
		databases[db.Name()] = "ok"
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	utils.WriteJSON(w, h.log, code, map[string]interface{}{
		"status":         status,
		"service":        "mt5-trader",
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"session":        session,
		"terminal":       terminal,
		"databases":      databases,
	})
}

// HandleSystemStats returns host CPU and memory usage
// GET /api/system/stats
func (h *SystemHandlers) HandleSystemStats(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats(r.Context())

	var goMem runtime.MemStats
	runtime.ReadMemStats(&goMem)

	utils.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"cpu_percent":    cpuPercent,
		"memory_percent": memPercent,
		"goroutines":     runtime.NumGoroutine(),
		"heap_alloc_mb":  float64(goMem.HeapAlloc) / 1024 / 1024,
	})
}

// getSystemStats samples CPU over 100ms so the call stays fast
func (h *SystemHandlers) getSystemStats(ctx context.Context) (float64, float64) {
	cpuPercent, err := cpu.PercentWithContext(ctx, 100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemoryWithContext(ctx)
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

// HandleListJobs lists the jobs that can be triggered
// GET /api/system/jobs
func (h *SystemHandlers) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.jobs))
	for name := range h.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	utils.WriteJSON(w, h.log, http.StatusOK, names)
}

// HandleTriggerJob runs a registered job immediately
// POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok {
		utils.WriteNotFound(w, h.log, "unknown job "+name)
		return
	}

	h.log.Info().Str("job", name).Msg("Job triggered by hand")
	start := time.Now()
	if err := job.Run(); err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Triggered job failed")
		utils.WriteJSON(w, h.log, http.StatusInternalServerError, map[string]interface{}{
			"job":    name,
			"status": "failed",
			"error":  err.Error(),
		})
		return
	}

	utils.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"job":         name,
		"status":      "completed",
		"duration_ms": time.Since(start).Milliseconds(),
	})
}
