package handlers

import (
	"context"
	"net/http"
	"time"

	"zibana-backend/internal/cache"
	"zibana-backend/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

type MonitoringHandler struct {
	DB *pgxpool.Pool
}

func NewMonitoringHandler(db *pgxpool.Pool) *MonitoringHandler {
	return &MonitoringHandler{DB: db}
}

type systemStats struct {
	CPUPercent     float64 `json:"cpu_percent"`
	MemoryPercent  float64 `json:"memory_percent"`
	DiskPercent    float64 `json:"disk_percent"`
	DatabaseStatus string  `json:"database_status"`
	DatabaseMs     int64   `json:"database_response_ms"`
	RedisStatus    string  `json:"redis_status"`
}

// SystemStats reports host utilization and dependency health for the
// admin infrastructure page.
func (h *MonitoringHandler) SystemStats(w http.ResponseWriter, r *http.Request) {
	stats := systemStats{DatabaseStatus: "healthy", RedisStatus: "healthy"}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = vm.UsedPercent
	}
	if du, err := disk.Usage("/"); err == nil {
		stats.DiskPercent = du.UsedPercent
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.DB.Ping(ctx); err != nil {
		stats.DatabaseStatus = "unhealthy"
	}
	stats.DatabaseMs = time.Since(start).Milliseconds()

	if !cache.IsHealthy() {
		stats.RedisStatus = "unavailable"
	}

	utils.JSON(w, http.StatusOK, stats)
}
