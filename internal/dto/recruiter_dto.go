package dto

import (
	"time"

	"github.com/skillproof/skillproof-api/internal/models"
)

// StudentSearchRequest describes a recruiter's verified-skill query.
type StudentSearchRequest struct {
	Skill    string  `query:"skill" validate:"required,min=1"`
	MinScore float64 `query:"min_score" validate:"gte=0,lte=100"`
}

// VerifiedSkillResponse serializes one skill ledger entry.
type VerifiedSkillResponse struct {
	Skill      string    `json:"skill"`
	Score      float64   `json:"score"`
	TaskID     uint      `json:"task_id"`
	VerifiedAt time.Time `json:"verified_at"`
}

// StudentSearchResult is one student matching a recruiter search, with the
// full ledger so recruiters can see score history per skill.
type StudentSearchResult struct {
	ID             uint                    `json:"id"`
	Name           string                  `json:"name"`
	Email          string                  `json:"email"`
	Institution    string                  `json:"institution"`
	GithubHandle   string                  `json:"github_handle"`
	VerifiedSkills []VerifiedSkillResponse `json:"verified_skills"`
}

// NewStudentSearchResult converts a User model into a search result DTO.
func NewStudentSearchResult(model models.User) StudentSearchResult {
	skills := make([]VerifiedSkillResponse, 0, len(model.VerifiedSkills))
	for _, entry := range model.VerifiedSkills {
		skills = append(skills, VerifiedSkillResponse{
			Skill:      entry.Skill,
			Score:      entry.Score,
			TaskID:     entry.TaskID,
			VerifiedAt: entry.VerifiedAt,
		})
	}

	return StudentSearchResult{
		ID:             model.ID,
		Name:           model.Name,
		Email:          model.Email,
		Institution:    model.Institution,
		GithubHandle:   model.GithubHandle,
		VerifiedSkills: skills,
	}
}

// NewStudentSearchResultSlice converts a list of users.
func NewStudentSearchResultSlice(users []models.User) []StudentSearchResult {
	results := make([]StudentSearchResult, 0, len(users))
	for _, user := range users {
		results = append(results, NewStudentSearchResult(user))
	}
	return results
}
