package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"exercisetracker/internal/models"
	"exercisetracker/internal/repositories"
	"exercisetracker/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var owner = &models.User{ID: "u1", Username: "runner"}

func newExerciseService(users *MockUserRepository, exercises *MockExerciseRepository, publisher services.EventPublisher) *services.ExerciseService {
	return services.NewExerciseService(users, exercises, publisher, 0, quietLogger())
}

func TestExerciseService_AddExercise(t *testing.T) {
	users := new(MockUserRepository)
	exercises := new(MockExerciseRepository)
	publisher := new(MockPublisher)
	service := newExerciseService(users, exercises, publisher)

	users.On("GetByID", mock.Anything, "u1").Return(owner, nil).Once()
	exercises.On("Create", mock.Anything, mock.MatchedBy(func(e *models.Exercise) bool {
		return e.UserID == "u1" && e.Description == "pushups" && e.Duration == 25
	})).Return(nil).Once()
	publisher.On("PublishExerciseLogged", mock.MatchedBy(func(event map[string]interface{}) bool {
		return event["userID"] == "u1"
	})).Return(nil).Once()

	entry, err := service.AddExercise(context.Background(), "u1", services.ExerciseInput{
		Description: "pushups",
		Duration:    "25",
		Date:        "2023-01-15",
	})
	require.NoError(t, err)
	assert.Equal(t, "runner", entry.User.Username)
	assert.Equal(t, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), entry.Exercise.Date)
	assert.Equal(t, "Sun Jan 15 2023", entry.Exercise.Date.Format(models.DateLayout))

	users.AssertExpectations(t)
	exercises.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestExerciseService_AddExerciseDefaultsDateToToday(t *testing.T) {
	for _, raw := range []string{"", "not a date"} {
		users := new(MockUserRepository)
		exercises := new(MockExerciseRepository)
		service := newExerciseService(users, exercises, nil)

		users.On("GetByID", mock.Anything, "u1").Return(owner, nil).Once()
		exercises.On("Create", mock.Anything, mock.AnythingOfType("*models.Exercise")).Return(nil).Once()

		entry, err := service.AddExercise(context.Background(), "u1", services.ExerciseInput{
			Description: "yoga",
			Duration:    "60",
			Date:        raw,
		})
		require.NoError(t, err)
		today := time.Now().UTC().Format(models.DateLayout)
		assert.Equal(t, today, entry.Exercise.Date.Format(models.DateLayout), "date %q", raw)
	}
}

func TestExerciseService_AddExerciseUserNotFound(t *testing.T) {
	users := new(MockUserRepository)
	exercises := new(MockExerciseRepository)
	service := newExerciseService(users, exercises, nil)

	users.On("GetByID", mock.Anything, "ghost").Return(nil, fmt.Errorf("user with ID ghost: %w", repositories.ErrNotFound)).Once()

	_, err := service.AddExercise(context.Background(), "ghost", services.ExerciseInput{Description: "x", Duration: "1"})
	var notFound *services.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, services.MsgUserNotFound, notFound.Message)
	exercises.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExerciseService_AddExerciseValidation(t *testing.T) {
	cases := []struct {
		name  string
		input services.ExerciseInput
		msg   string
	}{
		{"missing description", services.ExerciseInput{Duration: "10"}, services.MsgDescriptionRequired},
		{"blank description", services.ExerciseInput{Description: "  ", Duration: "10"}, services.MsgDescriptionRequired},
		{"missing duration", services.ExerciseInput{Description: "run"}, services.MsgDurationRequired},
		{"text duration", services.ExerciseInput{Description: "run", Duration: "ten"}, services.MsgDurationInvalid},
		{"negative duration", services.ExerciseInput{Description: "run", Duration: "-5"}, services.MsgDurationInvalid},
		{"infinite duration", services.ExerciseInput{Description: "run", Duration: "Inf"}, services.MsgDurationInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := new(MockUserRepository)
			exercises := new(MockExerciseRepository)
			service := newExerciseService(users, exercises, nil)
			users.On("GetByID", mock.Anything, "u1").Return(owner, nil).Once()

			_, err := service.AddExercise(context.Background(), "u1", tc.input)
			var validationErr *services.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tc.msg, validationErr.Message)
			exercises.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestExerciseService_AddExerciseStoreFailure(t *testing.T) {
	users := new(MockUserRepository)
	exercises := new(MockExerciseRepository)
	publisher := new(MockPublisher)
	service := newExerciseService(users, exercises, publisher)

	users.On("GetByID", mock.Anything, "u1").Return(owner, nil).Once()
	exercises.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("disk full")).Once()

	_, err := service.AddExercise(context.Background(), "u1", services.ExerciseInput{Description: "row", Duration: "12"})
	var storeErr *services.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, services.MsgSaveExercise, storeErr.Message)
	publisher.AssertNotCalled(t, "PublishExerciseLogged", mock.Anything)
}

func TestExerciseService_AddExercisePublishFailureIsIgnored(t *testing.T) {
	users := new(MockUserRepository)
	exercises := new(MockExerciseRepository)
	publisher := new(MockPublisher)
	service := newExerciseService(users, exercises, publisher)

	users.On("GetByID", mock.Anything, "u1").Return(owner, nil).Once()
	exercises.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	publisher.On("PublishExerciseLogged", mock.Anything).Return(fmt.Errorf("broker down")).Once()

	entry, err := service.AddExercise(context.Background(), "u1", services.ExerciseInput{Description: "row", Duration: "12.5"})
	require.NoError(t, err)
	assert.Equal(t, 12.5, entry.Exercise.Duration)
	publisher.AssertExpectations(t)
}

func TestExerciseService_GetLogFilter(t *testing.T) {
	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	endOfTo := time.Date(2023, 1, 31, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)

	cases := []struct {
		name   string
		query  services.LogQuery
		expect func(models.LogFilter) bool
	}{
		{"defaults", services.LogQuery{}, func(f models.LogFilter) bool {
			return f.From == nil && f.To == nil && f.Limit == 100
		}},
		{"range and limit", services.LogQuery{From: "2023-01-01", To: "2023-01-31", Limit: "2"}, func(f models.LogFilter) bool {
			return f.From != nil && f.From.Equal(from) && f.To != nil && f.To.Equal(endOfTo) && f.Limit == 2
		}},
		{"garbage", services.LogQuery{From: "soon", To: "later", Limit: "lots"}, func(f models.LogFilter) bool {
			return f.From == nil && f.To == nil && f.Limit == 100
		}},
		{"non-positive limit", services.LogQuery{Limit: "0"}, func(f models.LogFilter) bool {
			return f.Limit == 100
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := new(MockUserRepository)
			exercises := new(MockExerciseRepository)
			service := newExerciseService(users, exercises, nil)

			entries := []models.Exercise{{Description: "a"}, {Description: "b"}}
			users.On("GetByID", mock.Anything, "u1").Return(owner, nil).Once()
			exercises.On("FindByUser", mock.Anything, "u1", mock.MatchedBy(tc.expect)).Return(entries, nil).Once()

			log, err := service.GetLog(context.Background(), "u1", tc.query)
			require.NoError(t, err)
			assert.Equal(t, "runner", log.User.Username)
			assert.Len(t, log.Entries, 2)
			exercises.AssertExpectations(t)
		})
	}
}

func TestExerciseService_GetLogFailures(t *testing.T) {
	users := new(MockUserRepository)
	exercises := new(MockExerciseRepository)
	service := newExerciseService(users, exercises, nil)
	ctx := context.Background()

	users.On("GetByID", mock.Anything, "ghost").Return(nil, repositories.ErrNotFound).Once()
	_, err := service.GetLog(ctx, "ghost", services.LogQuery{})
	var notFound *services.NotFoundError
	assert.True(t, errors.As(err, &notFound))

	users.On("GetByID", mock.Anything, "broken").Return(nil, fmt.Errorf("i/o timeout")).Once()
	_, err = service.GetLog(ctx, "broken", services.LogQuery{})
	var storeErr *services.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, services.MsgFetchLog, storeErr.Message)

	users.On("GetByID", mock.Anything, "u1").Return(owner, nil).Once()
	exercises.On("FindByUser", mock.Anything, "u1", mock.Anything).Return(nil, fmt.Errorf("cursor killed")).Once()
	_, err = service.GetLog(ctx, "u1", services.LogQuery{})
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, services.MsgFetchLog, storeErr.Message)
}

func TestExerciseService_CustomDefaultLimit(t *testing.T) {
	users := new(MockUserRepository)
	exercises := new(MockExerciseRepository)
	service := services.NewExerciseService(users, exercises, nil, 25, quietLogger())

	users.On("GetByID", mock.Anything, "u1").Return(owner, nil).Once()
	exercises.On("FindByUser", mock.Anything, "u1", mock.MatchedBy(func(f models.LogFilter) bool {
		return f.Limit == 25
	})).Return([]models.Exercise{}, nil).Once()

	_, err := service.GetLog(context.Background(), "u1", services.LogQuery{})
	require.NoError(t, err)
	exercises.AssertExpectations(t)
}
