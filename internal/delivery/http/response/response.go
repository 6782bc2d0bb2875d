package response

import "github.com/user/counterteams-service/internal/entity"

// RefreshResponse wraps the outcome of a manual refresh.
type RefreshResponse struct {
	Message string                `json:"message"`
	Summary entity.RefreshSummary `json:"summary"`
}

// HealthResponse reports per-backend health.
type HealthResponse struct {
	Status   string            `json:"status"`
	Backends map[string]string `json:"backends"`
}
