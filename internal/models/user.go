package models

import "time"

const (
	// RoleStudent submits work against posted tasks.
	RoleStudent = "student"
	// RoleProvider posts tasks and reviews their submissions.
	RoleProvider = "provider"
	// RoleRecruiter browses students by verified skill scores.
	RoleRecruiter = "recruiter"
)

// User represents a marketplace account. Students carry a skill ledger built
// up by completed evaluations.
type User struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	Email          string          `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role           string          `gorm:"size:32;not null" json:"role"`
	Bio            string          `gorm:"type:text" json:"bio"`
	Institution    string          `gorm:"size:255" json:"institution"`
	Company        string          `gorm:"size:255" json:"company"`
	GithubHandle   string          `gorm:"size:128" json:"github_handle"`
	VerifiedSkills []VerifiedSkill `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"verified_skills"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// VerifiedSkill is one entry in a student's skill ledger. The ledger is
// append-only: the same skill may appear many times across different tasks,
// recording history rather than a current snapshot.
type VerifiedSkill struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	TaskID     uint      `gorm:"not null;index" json:"task_id"`
	Skill      string    `gorm:"size:128;not null;index" json:"skill"`
	Score      float64   `gorm:"not null" json:"score"`
	VerifiedAt time.Time `gorm:"not null" json:"verified_at"`
}
