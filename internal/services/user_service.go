package services

import (
	"context"
	"strings"

	"exercisetracker/internal/models"
	"exercisetracker/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// UserService handles business logic related to users.
type UserService struct {
	repo     repositories.UserRepository
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository, log logrus.FieldLogger) *UserService {
	return &UserService{
		repo:     repo,
		validate: validator.New(),
		log:      log,
	}
}

// CreateUser stores a new user under the trimmed username.
func (s *UserService) CreateUser(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{Username: strings.TrimSpace(username)}
	if err := s.validate.Struct(user); err != nil {
		return nil, &ValidationError{Message: MsgUsernameRequired}
	}

	if err := s.repo.Create(ctx, user); err != nil {
		s.log.WithError(err).WithField("username", user.Username).Error("create user failed")
		return nil, &StoreError{Message: MsgSaveUser, Err: err}
	}
	s.log.WithField("user_id", user.ID).Debug("user created")
	return user, nil
}

// ListUsers returns every stored user.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		s.log.WithError(err).Error("list users failed")
		return nil, &StoreError{Message: MsgFetchUsers, Err: err}
	}
	return users, nil
}
