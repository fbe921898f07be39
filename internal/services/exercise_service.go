package services

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"exercisetracker/internal/models"
	"exercisetracker/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// DefaultLogLimit caps log queries that do not supply a usable limit.
const DefaultLogLimit = 100

// EventPublisher receives notifications about logged exercises.
type EventPublisher interface {
	PublishExerciseLogged(event map[string]interface{}) error
}

// ExerciseInput carries the raw fields of an add-exercise request.
type ExerciseInput struct {
	Description string
	Duration    string
	Date        string
}

// LogQuery carries the raw query parameters of a log request.
type LogQuery struct {
	From  string
	To    string
	Limit string
}

// ExerciseEntry is a stored exercise together with its owner.
type ExerciseEntry struct {
	User     models.User
	Exercise models.Exercise
}

// ExerciseLog is a user's filtered exercise history.
type ExerciseLog struct {
	User    models.User
	Entries []models.Exercise
}

// ExerciseService handles business logic related to exercises.
type ExerciseService struct {
	userRepo     repositories.UserRepository
	exerciseRepo repositories.ExerciseRepository
	publisher    EventPublisher
	defaultLimit int
	validate     *validator.Validate
	log          logrus.FieldLogger
	now          func() time.Time
}

// NewExerciseService creates a new ExerciseService. publisher may be nil, in
// which case no events are emitted. A non-positive defaultLimit falls back to
// DefaultLogLimit.
func NewExerciseService(userRepo repositories.UserRepository, exerciseRepo repositories.ExerciseRepository, publisher EventPublisher, defaultLimit int, log logrus.FieldLogger) *ExerciseService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLogLimit
	}
	return &ExerciseService{
		userRepo:     userRepo,
		exerciseRepo: exerciseRepo,
		publisher:    publisher,
		defaultLimit: defaultLimit,
		validate:     validator.New(),
		log:          log,
		now:          time.Now,
	}
}

// AddExercise logs an exercise for an existing user.
func (s *ExerciseService) AddExercise(ctx context.Context, userID string, input ExerciseInput) (*ExerciseEntry, error) {
	user, err := s.lookupUser(ctx, userID, MsgSaveExercise)
	if err != nil {
		return nil, err
	}

	exercise, err := s.buildExercise(user.ID, input)
	if err != nil {
		return nil, err
	}

	if err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("create exercise failed")
		return nil, &StoreError{Message: MsgSaveExercise, Err: err}
	}

	s.publishLogged(exercise)
	return &ExerciseEntry{User: *user, Exercise: *exercise}, nil
}

// GetLog returns the user's exercises within the requested range.
func (s *ExerciseService) GetLog(ctx context.Context, userID string, query LogQuery) (*ExerciseLog, error) {
	user, err := s.lookupUser(ctx, userID, MsgFetchLog)
	if err != nil {
		return nil, err
	}

	filter := s.buildFilter(query)
	entries, err := s.exerciseRepo.FindByUser(ctx, user.ID, filter)
	if err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("fetch exercise log failed")
		return nil, &StoreError{Message: MsgFetchLog, Err: err}
	}
	return &ExerciseLog{User: *user, Entries: entries}, nil
}

func (s *ExerciseService) lookupUser(ctx context.Context, userID string, storeMsg string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &NotFoundError{Message: MsgUserNotFound}
		}
		s.log.WithError(err).WithField("user_id", userID).Error("user lookup failed")
		return nil, &StoreError{Message: storeMsg, Err: err}
	}
	return user, nil
}

func (s *ExerciseService) buildExercise(userID string, input ExerciseInput) (*models.Exercise, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, &ValidationError{Message: MsgDescriptionRequired}
	}

	rawDuration := strings.TrimSpace(input.Duration)
	if rawDuration == "" {
		return nil, &ValidationError{Message: MsgDurationRequired}
	}
	duration, err := strconv.ParseFloat(rawDuration, 64)
	if err != nil || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return nil, &ValidationError{Message: MsgDurationInvalid}
	}

	// Unparsable dates fall back to the current time, as absent ones do.
	date, _, ok := parseDate(input.Date)
	if !ok {
		date = s.now().UTC()
	}

	exercise := &models.Exercise{
		UserID:      userID,
		Description: description,
		Duration:    duration,
		Date:        date,
	}
	if err := s.validate.Struct(exercise); err != nil {
		return nil, &ValidationError{Message: MsgDurationInvalid}
	}
	return exercise, nil
}

func (s *ExerciseService) buildFilter(query LogQuery) models.LogFilter {
	filter := models.LogFilter{Limit: s.defaultLimit}
	if from, _, ok := parseDate(query.From); ok {
		filter.From = &from
	}
	if to, ok := upperBound(query.To); ok {
		filter.To = &to
	}
	if limit, err := strconv.Atoi(strings.TrimSpace(query.Limit)); err == nil && limit > 0 {
		filter.Limit = limit
	}
	return filter
}

func (s *ExerciseService) publishLogged(exercise *models.Exercise) {
	if s.publisher == nil {
		return
	}
	event := map[string]interface{}{
		"exerciseID": exercise.ID,
		"userID":     exercise.UserID,
		"duration":   exercise.Duration,
		"date":       exercise.Date.Format(time.RFC3339),
	}
	if err := s.publisher.PublishExerciseLogged(event); err != nil {
		s.log.WithError(err).WithField("exercise_id", exercise.ID).Warn("failed to publish exercise event")
	}
}
