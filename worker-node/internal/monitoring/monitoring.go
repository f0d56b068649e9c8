package monitoring

import (
	"net/http"
	"runtime"
	"time"

	"modfact/pkg/types"
	"modfact/worker-node/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// StatsSource es lo que el monitoreo necesita del servidor TCP.
type StatsSource interface {
	Stats() server.Stats
}

type HealthStatus struct {
	Status      string    `json:"status"`
	State       string    `json:"state"`
	Timestamp   time.Time `json:"timestamp"`
	TasksServed uint64    `json:"tasks_served"`
	TasksFailed uint64    `json:"tasks_failed"`
}

type SystemStats struct {
	// Process specific
	NumGoroutine int    `json:"num_goroutine"`
	Alloc        uint64 `json:"alloc_bytes"`
	Sys          uint64 `json:"sys_bytes"`
	NumGC        uint32 `json:"num_gc"`

	// System wide
	TotalRAM        uint64    `json:"total_ram"`
	AvailableRAM    uint64    `json:"available_ram"`
	UsedRAMPercent  float64   `json:"used_ram_percent"`
	TotalCPUCores   int       `json:"total_cpu_cores"`
	CPUUsagePercent []float64 `json:"cpu_usage_percent"`
}

type MonitoringStatus struct {
	Timestamp   time.Time      `json:"timestamp"`
	Uptime      string         `json:"uptime"`
	TasksServed uint64         `json:"tasks_served"`
	TasksFailed uint64         `json:"tasks_failed"`
	Connections map[string]int `json:"connections"`
	System      SystemStats    `json:"system"`
}

type Handler struct {
	src StatsSource
}

func NewHandler(src StatsSource) *Handler {
	return &Handler{src: src}
}

func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/health", h.HealthCheck)
	g.GET("/monitoring", h.GetMonitoringStatus)
}

// NewRouter arma el router HTTP del worker con las rutas de salud y monitoreo.
func NewRouter(src StatsSource) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	NewHandler(src).RegisterRoutes(&r.RouterGroup)
	return r
}

func (h *Handler) HealthCheck(c *gin.Context) {
	st := h.src.Stats()
	status, code := "ok", http.StatusOK
	if st.State == types.StClosed {
		status, code = "closing", http.StatusServiceUnavailable
	}
	c.JSON(code, HealthStatus{
		Status:      status,
		State:       st.State.String(),
		Timestamp:   time.Now(),
		TasksServed: st.Served,
		TasksFailed: st.Failed,
	})
}

func (h *Handler) GetMonitoringStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.status())
}

func (h *Handler) status() MonitoringStatus {
	st := h.src.Stats()
	conns := make(map[string]int, len(st.Active))
	for state, n := range st.Active {
		conns[state.String()] = n
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	sys := SystemStats{
		NumGoroutine:  runtime.NumGoroutine(),
		Alloc:         memStats.Alloc,
		Sys:           memStats.Sys,
		NumGC:         memStats.NumGC,
		TotalCPUCores: runtime.NumCPU(),
	}
	// las métricas del host son opcionales: si gopsutil falla quedan en cero
	if vMem, err := mem.VirtualMemory(); err == nil && vMem != nil {
		sys.TotalRAM = vMem.Total
		sys.AvailableRAM = vMem.Available
		sys.UsedRAMPercent = vMem.UsedPercent
	}
	if pct, err := cpu.Percent(0, true); err == nil {
		sys.CPUUsagePercent = pct
	}

	return MonitoringStatus{
		Timestamp:   time.Now(),
		Uptime:      time.Since(st.Started).Round(time.Second).String(),
		TasksServed: st.Served,
		TasksFailed: st.Failed,
		Connections: conns,
		System:      sys,
	}
}
