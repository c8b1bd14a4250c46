package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillproof/skillproof-api/internal/dto"
	"github.com/skillproof/skillproof-api/internal/models"
	"github.com/skillproof/skillproof-api/internal/repository"
)

// ErrTaskNotFound indicates a task could not be found.
var ErrTaskNotFound = errors.New("task not found")

// TaskService exposes task operations for providers and students.
type TaskService interface {
	Create(ctx context.Context, providerID uint, payload dto.TaskCreateRequest) (dto.TaskResponse, error)
	Get(ctx context.Context, id uint) (dto.TaskResponse, error)
	List(ctx context.Context, filter dto.TaskFilter) ([]dto.TaskResponse, error)
}

type taskService struct {
	tasks     repository.TaskRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewTaskService constructs a TaskService instance.
func NewTaskService(taskRepo repository.TaskRepository, validate *validator.Validate, logger zerolog.Logger) TaskService {
	return &taskService{
		tasks:     taskRepo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "task_service").Logger(),
	}
}

func (s *taskService) Create(ctx context.Context, providerID uint, payload dto.TaskCreateRequest) (dto.TaskResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskResponse{}, err
	}

	status := payload.Status
	if status == "" {
		status = models.TaskStatusActive
	}

	task := models.Task{
		Title:              s.sanitizer.Sanitize(payload.Title),
		Description:        s.sanitizer.Sanitize(payload.Description),
		ProviderID:         providerID,
		RequiredSkills:     payload.RequiredSkills,
		Difficulty:         payload.Difficulty,
		Deadline:           payload.Deadline,
		Status:             status,
		MaxSubmissions:     payload.MaxSubmissions,
		Instructions:       s.sanitizer.Sanitize(payload.Instructions),
		EvaluationCriteria: s.sanitizer.Sanitize(payload.EvaluationCriteria),
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return dto.TaskResponse{}, err
	}

	s.logger.Info().Uint("task_id", task.ID).Uint("provider_id", providerID).Msg("task created")

	return dto.NewTaskResponse(task), nil
}

func (s *taskService) Get(ctx context.Context, id uint) (dto.TaskResponse, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskResponse{}, ErrTaskNotFound
		}
		return dto.TaskResponse{}, err
	}

	return dto.NewTaskResponse(task), nil
}

func (s *taskService) List(ctx context.Context, filter dto.TaskFilter) ([]dto.TaskResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.List(ctx, repository.TaskFilter{
		ProviderID: filter.ProviderID,
		Status:     filter.Status,
		Difficulty: filter.Difficulty,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewTaskResponseSlice(tasks), nil
}
