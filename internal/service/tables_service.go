package service

import (
	"context"
	"fmt"

	"citizenpress/internal/repository"
)

// requiredTables must exist for the API to serve requests.
var requiredTables = []string{"users", "otps", "posts", "post_likes", "epapers"}

type HealthReport struct {
	Status        string   `json:"status"`
	MissingTables []string `json:"missingTables,omitempty"`
}

type HealthService interface {
	Check(ctx context.Context) (*HealthReport, error)
}

type healthService struct {
	schemaRepo repository.SchemaRepository
}

func NewHealthService(schemaRepo repository.SchemaRepository) HealthService {
	return &healthService{schemaRepo: schemaRepo}
}

// Check verifies the database answers and the schema is migrated.
func (h *healthService) Check(ctx context.Context) (*HealthReport, error) {
	missing, err := h.schemaRepo.MissingTables(ctx, requiredTables)
	if err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}

	if len(missing) > 0 {
		return &HealthReport{Status: "degraded", MissingTables: missing}, nil
	}

	return &HealthReport{Status: "ok"}, nil
}
