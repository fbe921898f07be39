package handlers

import (
	"fmt"
	"strconv"

	"exercisetracker/internal/metrics"
	"exercisetracker/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ExerciseHandler handles HTTP requests for exercises and logs.
type ExerciseHandler struct {
	service *services.ExerciseService
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(service *services.ExerciseService, m *metrics.Metrics, log logrus.FieldLogger) *ExerciseHandler {
	return &ExerciseHandler{
		service: service,
		metrics: m,
		log:     log,
	}
}

// RegisterRoutes registers the exercise routes.
func (h *ExerciseHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users/:id")
	userRoutes.Post("/exercises", h.HandleAddExercise)
	userRoutes.Get("/logs", h.HandleGetLog)
}

// addExerciseRequest leaves duration untyped so every JSON value reaches the
// same validation as a form field.
type addExerciseRequest struct {
	Description string      `json:"description"`
	Duration    interface{} `json:"duration"`
	Date        string      `json:"date"`
}

func durationText(v interface{}) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return d
	case float64:
		return strconv.FormatFloat(d, 'f', -1, 64)
	default:
		return fmt.Sprint(d)
	}
}

func bindExerciseInput(c *fiber.Ctx) (services.ExerciseInput, error) {
	if c.Is("json") {
		var req addExerciseRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return services.ExerciseInput{}, err
			}
		}
		return services.ExerciseInput{
			Description: req.Description,
			Duration:    durationText(req.Duration),
			Date:        req.Date,
		}, nil
	}
	return services.ExerciseInput{
		Description: c.FormValue("description"),
		Duration:    c.FormValue("duration"),
		Date:        c.FormValue("date"),
	}, nil
}

// HandleAddExercise logs an exercise for the user in the path.
func (h *ExerciseHandler) HandleAddExercise(c *fiber.Ctx) error {
	userID := c.Params("id")
	input, err := bindExerciseInput(c)
	if err != nil {
		h.log.WithError(err).WithField("user_id", userID).Debug("invalid add exercise body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgInvalidBody})
	}

	entry, err := h.service.AddExercise(c.UserContext(), userID, input)
	if err != nil {
		return respondError(c, err)
	}
	h.metrics.ExerciseLogged()
	return c.JSON(newExerciseResponse(entry))
}

// HandleGetLog returns the user's exercise log filtered by from, to and limit.
func (h *ExerciseHandler) HandleGetLog(c *fiber.Ctx) error {
	log, err := h.service.GetLog(c.UserContext(), c.Params("id"), services.LogQuery{
		From:  c.Query("from"),
		To:    c.Query("to"),
		Limit: c.Query("limit"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newLogResponse(log))
}
