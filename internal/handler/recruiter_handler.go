package handler

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillproof/skillproof-api/internal/dto"
	"github.com/skillproof/skillproof-api/internal/service"
	"github.com/skillproof/skillproof-api/internal/utils"
)

// RecruiterHandler manages recruiter search endpoints.
type RecruiterHandler struct {
	service   service.RecruiterService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewRecruiterHandler builds a recruiter handler instance.
func NewRecruiterHandler(service service.RecruiterService, validator *validator.Validate, logger zerolog.Logger) *RecruiterHandler {
	return &RecruiterHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "recruiter_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *RecruiterHandler) Register(router fiber.Router) {
	router.Get("/search", h.search)
}

func (h *RecruiterHandler) search(c *fiber.Ctx) error {
	query := dto.StudentSearchRequest{
		Skill: c.Query("skill"),
	}
	if raw := c.Query("min_score"); raw != "" {
		minScore, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "min_score must be a number")
		}
		query.MinScore = minScore
	}

	results, err := h.service.SearchStudents(c.Context(), query)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "students retrieved", results)
}

func (h *RecruiterHandler) handleError(c *fiber.Ctx, err error) error {
	if isValidationError(err) {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
