package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	// PlagiarismRiskLow indicates the work appears original.
	PlagiarismRiskLow = "low"
	// PlagiarismRiskMedium indicates partial similarity to known patterns.
	PlagiarismRiskMedium = "medium"
	// PlagiarismRiskHigh indicates likely copied work.
	PlagiarismRiskHigh = "high"
)

// SkillVerification is the immutable record of one AI evaluation outcome for
// one submission. It stores the exact prompt and raw model output verbatim so
// every stored score can be reproduced and audited. Rows are never updated.
type SkillVerification struct {
	ID             uint                        `gorm:"primaryKey" json:"id"`
	SubmissionID   uint                        `gorm:"not null;uniqueIndex" json:"submission_id"`
	TaskID         uint                        `gorm:"not null;index" json:"task_id"`
	StudentID      uint                        `gorm:"not null;index" json:"student_id"`
	OverallScore   float64                     `gorm:"not null" json:"overall_score"`
	SkillBreakdown datatypes.JSONMap           `json:"skill_breakdown"`
	Strengths      datatypes.JSONSlice[string] `json:"strengths"`
	Weaknesses     datatypes.JSONSlice[string] `json:"weaknesses"`
	ResumeBullet   string                      `gorm:"type:text" json:"resume_bullet"`
	PlagiarismRisk string                      `gorm:"size:16;not null" json:"plagiarism_risk"`
	AIModel        string                      `gorm:"size:64" json:"ai_model"`
	AIPrompt       string                      `gorm:"type:text" json:"-"`
	AIResponse     string                      `gorm:"type:text" json:"-"`
	VerifiedAt     time.Time                   `gorm:"not null" json:"verified_at"`
	CreatedAt      time.Time                   `json:"created_at"`
}
