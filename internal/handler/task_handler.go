package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillproof/skillproof-api/internal/dto"
	"github.com/skillproof/skillproof-api/internal/service"
	"github.com/skillproof/skillproof-api/internal/utils"
)

// TaskHandler manages task endpoints.
type TaskHandler struct {
	service   service.TaskService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewTaskHandler builds a task handler instance.
func NewTaskHandler(service service.TaskService, validator *validator.Validate, logger zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "task_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *TaskHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
}

func (h *TaskHandler) list(c *fiber.Ctx) error {
	filter := dto.TaskFilter{}
	providerID, err := parseQueryUint(c, "provider_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	filter.ProviderID = providerID
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		filter.Difficulty = &difficulty
	}

	tasks, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "tasks retrieved", tasks)
}

func (h *TaskHandler) create(c *fiber.Ctx) error {
	var payload dto.TaskCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	providerID := userIDFromContext(c)
	if providerID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	task, err := h.service.Create(c.Context(), providerID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "task created", task)
}

func (h *TaskHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	task, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "task retrieved", task)
}

func (h *TaskHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "task not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
