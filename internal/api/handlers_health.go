// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Health handles GET /api/v1/health
//
// Never triggers initialization. Status is healthy once the service is
// ready, degraded while it is still building or when the catalog is
// unreachable, and unhealthy after a failed build.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Status()

	dbEnabled := h.catalog != nil
	dbConnected := dbEnabled && h.catalog.Ping(r.Context()) == nil

	status := models.HealthHealthy
	switch {
	case st.State == recommend.StateFailed:
		status = models.HealthUnhealthy
	case !st.Ready(), dbEnabled && !dbConnected:
		status = models.HealthDegraded
	}

	health := models.HealthStatus{
		Status:            status,
		Version:           h.version,
		ServiceState:      string(st.State),
		ServiceError:      st.Error,
		ArtifactBackend:   h.artifactBackend,
		DatabaseEnabled:   dbEnabled,
		DatabaseConnected: dbConnected,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if st.Build != nil {
		health.Rows = st.Build.Rows
		builtAt := st.Build.BuiltAt
		health.BuiltAt = &builtAt
	}

	respondSuccess(w, r, health, 0)
}

// HealthLive handles GET /api/v1/health/live. The process answering is
// enough.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, models.ProbeStatus{Status: "alive"}, 0)
}

// HealthReady handles GET /api/v1/health/ready: 200 once the service has
// initialized without error, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Status()
	if st.Ready() {
		respondSuccess(w, r, models.ProbeStatus{Status: "ready"}, 0)
		return
	}

	reason := string(st.State)
	if st.Error != "" {
		reason = st.Error
	}
	resp := models.Failure(models.ErrCodeServiceUnavailable, "Service not ready",
		map[string]interface{}{"state": string(st.State)})
	resp.Data = models.ProbeStatus{Status: "not_ready", Reason: reason}
	respondJSON(w, r, http.StatusServiceUnavailable, &resp)
}
