// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package models

import "time"

// HealthStatus represents the health check response
type HealthStatus struct {
	Status            string     `json:"status"` // "healthy", "degraded" or "unhealthy"
	Version           string     `json:"version"`
	ServiceState      string     `json:"service_state"` // pending, initializing, ready, failed
	ServiceError      string     `json:"service_error,omitempty"`
	ArtifactBackend   string     `json:"artifact_backend"`
	DatabaseEnabled   bool       `json:"database_enabled"`
	DatabaseConnected bool       `json:"database_connected"`
	Rows              int        `json:"rows,omitempty"`
	BuiltAt           *time.Time `json:"built_at,omitempty"`
	Uptime            float64    `json:"uptime_seconds"`
}

// Health status values.
const (
	HealthHealthy   = "healthy"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"
)

// ProbeStatus is the body of the liveness and readiness probes.
type ProbeStatus struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
