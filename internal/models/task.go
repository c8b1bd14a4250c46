package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	// TaskStatusActive accepts new submissions.
	TaskStatusActive = "active"
	// TaskStatusClosed no longer accepts submissions.
	TaskStatusClosed = "closed"
	// TaskStatusDraft is not yet visible to students.
	TaskStatusDraft = "draft"
)

const (
	// DifficultyBeginner marks entry level tasks.
	DifficultyBeginner = "beginner"
	// DifficultyIntermediate marks mid level tasks.
	DifficultyIntermediate = "intermediate"
	// DifficultyAdvanced marks expert level tasks.
	DifficultyAdvanced = "advanced"
)

// Task is a unit of work posted by a provider, carrying the required skills
// and the rubric the AI evaluator is asked to apply.
type Task struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`
	Title              string                      `gorm:"size:255;not null" json:"title"`
	Description        string                      `gorm:"type:text;not null" json:"description"`
	ProviderID         uint                        `gorm:"not null;index" json:"provider_id"`
	RequiredSkills     datatypes.JSONSlice[string] `json:"required_skills"`
	Difficulty         string                      `gorm:"size:32;not null" json:"difficulty"`
	Deadline           time.Time                   `gorm:"not null" json:"deadline"`
	Status             string                      `gorm:"size:32;not null;default:active" json:"status"`
	MaxSubmissions     *int                        `json:"max_submissions"`
	CurrentSubmissions int                         `gorm:"not null;default:0" json:"current_submissions"`
	Instructions       string                      `gorm:"type:text" json:"instructions"`
	EvaluationCriteria string                      `gorm:"type:text" json:"evaluation_criteria"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
	Provider           User                        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"provider"`
}

// AcceptsSubmissions reports whether a new submission may be created against
// this task at the given moment.
func (t Task) AcceptsSubmissions(now time.Time) bool {
	if t.Status != TaskStatusActive {
		return false
	}
	if !t.Deadline.IsZero() && now.After(t.Deadline) {
		return false
	}
	return !t.SubmissionCapReached()
}

// SubmissionCapReached reports whether the optional submission cap is full.
func (t Task) SubmissionCapReached() bool {
	return t.MaxSubmissions != nil && t.CurrentSubmissions >= *t.MaxSubmissions
}
