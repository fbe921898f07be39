package repositories

import (
	"context"
	"fmt"
	"time"

	"exercisetracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMExerciseRepository is a GORM implementation of ExerciseRepository.
type GORMExerciseRepository struct {
	db *gorm.DB
}

// NewGORMExerciseRepository creates a new instance of GORMExerciseRepository.
func NewGORMExerciseRepository(db *gorm.DB) *GORMExerciseRepository {
	return &GORMExerciseRepository{
		db: db,
	}
}

// Create inserts a new exercise. Dates are stored in UTC.
func (r *GORMExerciseRepository) Create(ctx context.Context, exercise *models.Exercise) error {
	if exercise.ID == "" {
		// time-ordered IDs break created_at ties in insertion order
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate exercise ID: %w", err)
		}
		exercise.ID = id.String()
	}
	if exercise.CreatedAt.IsZero() {
		exercise.CreatedAt = time.Now().UTC()
	}
	if exercise.Date.IsZero() {
		exercise.Date = exercise.CreatedAt
	}
	exercise.Date = exercise.Date.UTC()
	if err := r.db.WithContext(ctx).Create(exercise).Error; err != nil {
		return fmt.Errorf("failed to create exercise: %w", err)
	}
	return nil
}

// FindByUser retrieves the user's exercises matching the filter.
func (r *GORMExerciseRepository) FindByUser(ctx context.Context, userID string, filter models.LogFilter) ([]models.Exercise, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.From != nil {
		query = query.Where("date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("date <= ?", filter.To.UTC())
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	exercises := []models.Exercise{}
	if err := query.Order("date ASC").Order("created_at ASC").Order("id ASC").Find(&exercises).Error; err != nil {
		return nil, fmt.Errorf("failed to find exercises for user %s: %w", userID, err)
	}
	return exercises, nil
}
