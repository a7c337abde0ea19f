package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	storage := s.checkStorage(ctx)
	presenters := ComponentHealth{
		Status:  "healthy",
		Message: formatPresenters(s.registry.Len()),
	}

	overall := storage.Status
	if overall == "" {
		overall = "healthy"
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status: overall,
			Components: map[string]ComponentHealth{
				"storage":    storage,
				"presenters": presenters,
			},
		},
	}, nil
}

// checkStorage lists slots to prove the backend answers.
func (s *Server) checkStorage(ctx context.Context) ComponentHealth {
	if s.slots == nil {
		return ComponentHealth{Status: "degraded", Message: "storage not configured"}
	}

	start := time.Now()
	slots, err := s.slots.ListSlots(ctx)
	latency := time.Since(start)

	if err != nil {
		s.logger.Warn("Health check storage read failed", "error", err)
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "storage read failed",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
		Message: strconv.Itoa(len(slots)) + " slots",
	}
}

func formatPresenters(count int) string {
	switch count {
	case 0:
		return "no open carousels"
	case 1:
		return "1 open carousel"
	default:
		return strconv.Itoa(count) + " open carousels"
	}
}
