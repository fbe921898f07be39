package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"exercisetracker/internal/models"

	"github.com/google/uuid"
)

// MemoryExerciseRepository is an in-memory implementation of ExerciseRepository.
type MemoryExerciseRepository struct {
	byUser map[string][]models.Exercise
	mu     sync.RWMutex
}

// NewMemoryExerciseRepository creates a new instance of MemoryExerciseRepository.
func NewMemoryExerciseRepository() *MemoryExerciseRepository {
	return &MemoryExerciseRepository{
		byUser: make(map[string][]models.Exercise),
	}
}

// Create adds a new exercise.
func (r *MemoryExerciseRepository) Create(_ context.Context, exercise *models.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if exercise.ID == "" {
		exercise.ID = uuid.New().String()
	}
	if exercise.CreatedAt.IsZero() {
		exercise.CreatedAt = time.Now().UTC()
	}
	if exercise.Date.IsZero() {
		exercise.Date = exercise.CreatedAt
	}
	exercise.Date = exercise.Date.UTC()
	r.byUser[exercise.UserID] = append(r.byUser[exercise.UserID], *exercise)
	return nil
}

// FindByUser returns the user's exercises matching the filter, oldest first.
func (r *MemoryExerciseRepository) FindByUser(_ context.Context, userID string, filter models.LogFilter) ([]models.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []models.Exercise{}
	for _, e := range r.byUser[userID] {
		if filter.Matches(e) {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.Before(matched[j].Date)
	})
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}
