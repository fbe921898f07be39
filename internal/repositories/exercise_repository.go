package repositories

import (
	"context"

	"exercisetracker/internal/models"
)

// ExerciseRepository defines the interface for exercise data access.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *models.Exercise) error
	// FindByUser returns the user's exercises within the filter bounds,
	// oldest first, capped at filter.Limit when it is positive.
	FindByUser(ctx context.Context, userID string, filter models.LogFilter) ([]models.Exercise, error)
}
