package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemMetrics represents the complete metrics response.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	WebSocket     WSMetrics        `json:"websocket"`
	Indigo        IndigoMetrics    `json:"indigo"`
	Accessories   AccessoryMetrics `json:"accessories"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// IndigoMetrics contains outbound request queue statistics.
type IndigoMetrics struct {
	QueueDepth int `json:"queue_depth"`
}

// AccessoryMetrics contains bridge statistics.
type AccessoryMetrics struct {
	Total            int    `json:"total"`
	ReconcilesOK     uint64 `json:"reconciles_ok"`
	ReconcilesFailed uint64 `json:"reconciles_failed"`
}

// handleMetrics returns a metrics snapshot.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
		Accessories: AccessoryMetrics{
			Total:            s.registry.Count(),
			ReconcilesOK:     s.reconcileOK.Load(),
			ReconcilesFailed: s.reconcileFailed.Load(),
		},
	}

	if s.client != nil {
		metrics.Indigo = IndigoMetrics{
			QueueDepth: s.client.QueueDepth(),
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
