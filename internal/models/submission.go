package models

import "time"

const (
	// SubmissionTypeGithub references a public repository.
	SubmissionTypeGithub = "github"
	// SubmissionTypeFile references an uploaded file.
	SubmissionTypeFile = "file"
)

const (
	// SubmissionStatusPending is the initial state written at intake.
	SubmissionStatusPending = "pending"
	// SubmissionStatusEvaluating is persisted before any external call, so a
	// crashed run is observable as stuck rather than silently pending.
	SubmissionStatusEvaluating = "evaluating"
	// SubmissionStatusEvaluated is terminal with a verification attached.
	SubmissionStatusEvaluated = "evaluated"
	// SubmissionStatusFailed is terminal; recovery requires a new submission.
	SubmissionStatusFailed = "failed"
)

// GithubRepo snapshots the repository reference and the metadata captured at
// intake time. Evaluation reuses this snapshot and never re-contacts GitHub,
// so a since-deleted or renamed repository cannot fail an evaluation run.
type GithubRepo struct {
	URL         string `gorm:"size:512" json:"url"`
	Owner       string `gorm:"size:128" json:"owner"`
	Repo        string `gorm:"size:128" json:"repo"`
	Branch      string `gorm:"size:128" json:"branch"`
	CommitHash  string `gorm:"size:64" json:"commit_hash"`
	Language    string `gorm:"size:64" json:"language"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	Size        int    `json:"size"`
	Description string `gorm:"type:text" json:"description"`
	Readme      string `gorm:"type:text" json:"readme"`
}

// FileUpload describes an uploaded submission. The blob itself lives behind
// the storage boundary; Preview holds a bounded excerpt for the evaluator.
type FileUpload struct {
	Filename    string `gorm:"size:255" json:"filename"`
	MimeType    string `gorm:"size:128" json:"mime_type"`
	Size        int64  `json:"size"`
	StoragePath string `gorm:"size:512" json:"storage_path"`
	Preview     string `gorm:"type:text" json:"preview"`
}

// Submission is a student's attempt at a task. At most one submission exists
// per (task, student) pair.
type Submission struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	TaskID             uint       `gorm:"not null;uniqueIndex:idx_submissions_task_student" json:"task_id"`
	StudentID          uint       `gorm:"not null;uniqueIndex:idx_submissions_task_student" json:"student_id"`
	SubmissionType     string     `gorm:"size:16;not null" json:"submission_type"`
	GithubRepo         GithubRepo `gorm:"embedded;embeddedPrefix:github_" json:"github_repo"`
	FileUpload         FileUpload `gorm:"embedded;embeddedPrefix:file_" json:"file_upload"`
	Status             string     `gorm:"size:16;not null;default:pending;index" json:"status"`
	SubmittedAt        time.Time  `gorm:"not null" json:"submitted_at"`
	EvaluatedAt        *time.Time `json:"evaluated_at"`
	EvaluationResultID *uint      `json:"evaluation_result_id"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	Task               Task       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"task"`
	Student            User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// IsTerminal reports whether the submission has reached a final state.
func (s Submission) IsTerminal() bool {
	return s.Status == SubmissionStatusEvaluated || s.Status == SubmissionStatusFailed
}
