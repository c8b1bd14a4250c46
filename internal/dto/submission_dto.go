package dto

import (
	"time"

	"github.com/skillproof/skillproof-api/internal/models"
)

// SubmissionCreateRequest describes the intake payload. GithubURL is
// mandatory for github submissions; file submissions carry the blob as
// multipart form data instead.
type SubmissionCreateRequest struct {
	TaskID         uint   `json:"task_id" form:"task_id" validate:"required,gt=0"`
	SubmissionType string `json:"submission_type" form:"submission_type" validate:"required,oneof=github file"`
	GithubURL      string `json:"github_url" form:"github_url" validate:"required_if=SubmissionType github,omitempty,url"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	TaskID    *uint   `query:"task_id"`
	StudentID *uint   `query:"student_id"`
	Status    *string `query:"status" validate:"omitempty,oneof=pending evaluating evaluated failed"`
}

// GithubRepoResponse exposes the repository snapshot without the full readme.
type GithubRepoResponse struct {
	URL         string `json:"url"`
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	Branch      string `json:"branch"`
	CommitHash  string `json:"commit_hash"`
	Language    string `json:"language"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	Description string `json:"description"`
}

// FileUploadResponse exposes uploaded file metadata.
type FileUploadResponse struct {
	Filename    string `json:"filename"`
	MimeType    string `json:"mime_type"`
	Size        int64  `json:"size"`
	StoragePath string `json:"storage_path"`
}

// SkillVerificationResponse serializes an evaluation outcome. The stored
// prompt and raw model output are audit data and stay out of the API.
type SkillVerificationResponse struct {
	ID             uint               `json:"id"`
	SubmissionID   uint               `json:"submission_id"`
	OverallScore   float64            `json:"overall_score"`
	SkillBreakdown map[string]float64 `json:"skill_breakdown"`
	Strengths      []string           `json:"strengths"`
	Weaknesses     []string           `json:"weaknesses"`
	ResumeBullet   string             `json:"resume_bullet"`
	PlagiarismRisk string             `json:"plagiarism_risk"`
	AIModel        string             `json:"ai_model"`
	VerifiedAt     time.Time          `json:"verified_at"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID               uint                       `json:"id"`
	TaskID           uint                       `json:"task_id"`
	StudentID        uint                       `json:"student_id"`
	SubmissionType   string                     `json:"submission_type"`
	GithubRepo       *GithubRepoResponse        `json:"github_repo,omitempty"`
	FileUpload       *FileUploadResponse        `json:"file_upload,omitempty"`
	Status           string                     `json:"status"`
	SubmittedAt      time.Time                  `json:"submitted_at"`
	EvaluatedAt      *time.Time                 `json:"evaluated_at"`
	EvaluationResult *SkillVerificationResponse `json:"evaluation_result,omitempty"`
	Task             TaskLite                   `json:"task"`
}

// TaskLite summarizes a task in submission responses.
type TaskLite struct {
	ID             uint     `json:"id"`
	Title          string   `json:"title"`
	RequiredSkills []string `json:"required_skills"`
	Difficulty     string   `json:"difficulty"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:             model.ID,
		TaskID:         model.TaskID,
		StudentID:      model.StudentID,
		SubmissionType: model.SubmissionType,
		Status:         model.Status,
		SubmittedAt:    model.SubmittedAt,
		EvaluatedAt:    model.EvaluatedAt,
		Task: TaskLite{
			ID:             model.Task.ID,
			Title:          model.Task.Title,
			RequiredSkills: model.Task.RequiredSkills,
			Difficulty:     model.Task.Difficulty,
		},
	}

	switch model.SubmissionType {
	case models.SubmissionTypeGithub:
		response.GithubRepo = &GithubRepoResponse{
			URL:         model.GithubRepo.URL,
			Owner:       model.GithubRepo.Owner,
			Repo:        model.GithubRepo.Repo,
			Branch:      model.GithubRepo.Branch,
			CommitHash:  model.GithubRepo.CommitHash,
			Language:    model.GithubRepo.Language,
			Stars:       model.GithubRepo.Stars,
			Forks:       model.GithubRepo.Forks,
			Description: model.GithubRepo.Description,
		}
	case models.SubmissionTypeFile:
		response.FileUpload = &FileUploadResponse{
			Filename:    model.FileUpload.Filename,
			MimeType:    model.FileUpload.MimeType,
			Size:        model.FileUpload.Size,
			StoragePath: model.FileUpload.StoragePath,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts a list of submissions.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}

// NewSkillVerificationResponse converts a SkillVerification model into a DTO.
func NewSkillVerificationResponse(model models.SkillVerification) SkillVerificationResponse {
	breakdown := make(map[string]float64, len(model.SkillBreakdown))
	for skill, value := range model.SkillBreakdown {
		if score, ok := value.(float64); ok {
			breakdown[skill] = score
		}
	}

	return SkillVerificationResponse{
		ID:             model.ID,
		SubmissionID:   model.SubmissionID,
		OverallScore:   model.OverallScore,
		SkillBreakdown: breakdown,
		Strengths:      model.Strengths,
		Weaknesses:     model.Weaknesses,
		ResumeBullet:   model.ResumeBullet,
		PlagiarismRisk: model.PlagiarismRisk,
		AIModel:        model.AIModel,
		VerifiedAt:     model.VerifiedAt,
	}
}
