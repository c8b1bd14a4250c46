package dto

import (
	"time"

	"github.com/skillproof/skillproof-api/internal/models"
)

// TaskCreateRequest describes the payload for posting a new task.
type TaskCreateRequest struct {
	Title              string    `json:"title" validate:"required,min=3,max=255"`
	Description        string    `json:"description" validate:"required,min=10"`
	RequiredSkills     []string  `json:"required_skills" validate:"required,min=1,dive,min=1"`
	Difficulty         string    `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
	Deadline           time.Time `json:"deadline" validate:"required"`
	Status             string    `json:"status" validate:"omitempty,oneof=active closed draft"`
	MaxSubmissions     *int      `json:"max_submissions" validate:"omitempty,gt=0"`
	Instructions       string    `json:"instructions" validate:"required"`
	EvaluationCriteria string    `json:"evaluation_criteria" validate:"required"`
}

// TaskFilter describes query string filters for listing tasks.
type TaskFilter struct {
	ProviderID *uint   `query:"provider_id"`
	Status     *string `query:"status" validate:"omitempty,oneof=active closed draft"`
	Difficulty *string `query:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
}

// TaskResponse is returned to API clients when viewing tasks.
type TaskResponse struct {
	ID                 uint      `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	ProviderID         uint      `json:"provider_id"`
	RequiredSkills     []string  `json:"required_skills"`
	Difficulty         string    `json:"difficulty"`
	Deadline           time.Time `json:"deadline"`
	Status             string    `json:"status"`
	MaxSubmissions     *int      `json:"max_submissions"`
	CurrentSubmissions int       `json:"current_submissions"`
	Instructions       string    `json:"instructions"`
	EvaluationCriteria string    `json:"evaluation_criteria"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewTaskResponse converts a Task model into a DTO.
func NewTaskResponse(model models.Task) TaskResponse {
	return TaskResponse{
		ID:                 model.ID,
		Title:              model.Title,
		Description:        model.Description,
		ProviderID:         model.ProviderID,
		RequiredSkills:     model.RequiredSkills,
		Difficulty:         model.Difficulty,
		Deadline:           model.Deadline,
		Status:             model.Status,
		MaxSubmissions:     model.MaxSubmissions,
		CurrentSubmissions: model.CurrentSubmissions,
		Instructions:       model.Instructions,
		EvaluationCriteria: model.EvaluationCriteria,
		CreatedAt:          model.CreatedAt,
	}
}

// NewTaskResponseSlice converts a list of tasks.
func NewTaskResponseSlice(tasks []models.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, NewTaskResponse(task))
	}
	return responses
}
