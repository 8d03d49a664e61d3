package handler

import (
	"net/http"

	"github.com/strucbot/strucbot/internal/metrics"
)

// MetricsHandler exposes in-process counters for debugging.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
// Pass nil when no snapshotting recorder is configured.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metricsz returns a snapshot of the in-memory counters.
//
// GET /metricsz
func (h *MetricsHandler) Metricsz(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		writeJSON(w, http.StatusOK, metrics.Snapshot{})
		return
	}
	writeJSON(w, http.StatusOK, h.snapshotter.Snapshot())
}
