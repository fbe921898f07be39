package handlers

import (
	"exercisetracker/internal/metrics"
	"exercisetracker/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	service *services.UserService
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, m *metrics.Metrics, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{
		service: service,
		metrics: m,
		log:     log,
	}
}

// RegisterRoutes registers the user routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Get("/", h.HandleListUsers)
}

type createUserRequest struct {
	Username string `json:"username" form:"username"`
}

// HandleCreateUser creates a user from a JSON or form body.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			h.log.WithError(err).Debug("invalid create user body")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgInvalidBody})
		}
	}

	user, err := h.service.CreateUser(c.UserContext(), req.Username)
	if err != nil {
		return respondError(c, err)
	}
	h.metrics.UserCreated()
	return c.JSON(newUserResponse(*user))
}

// HandleListUsers returns every user as {_id, username}.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, newUserResponse(u))
	}
	return c.JSON(resp)
}
