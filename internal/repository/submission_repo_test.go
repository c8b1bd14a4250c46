package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillproof/skillproof-api/internal/models"
)

func newSubmissionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.VerifiedSkill{}, &models.Task{}, &models.Submission{}, &models.SkillVerification{}))

	return db
}

func seedPendingSubmission(t *testing.T, db *gorm.DB, studentEmail string) models.Submission {
	t.Helper()

	student := models.User{Name: "Student", Email: studentEmail, Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	task := models.Task{
		Title:          "Build a REST API",
		Description:    "d",
		ProviderID:     1,
		RequiredSkills: []string{"Go"},
		Difficulty:     models.DifficultyIntermediate,
		Deadline:       time.Now().Add(time.Hour),
		Status:         models.TaskStatusActive,
	}
	require.NoError(t, db.Create(&task).Error)

	submission := models.Submission{
		TaskID:         task.ID,
		StudentID:      student.ID,
		SubmissionType: models.SubmissionTypeGithub,
		Status:         models.SubmissionStatusPending,
		SubmittedAt:    time.Now(),
	}
	require.NoError(t, db.Create(&submission).Error)

	return submission
}

func TestCompleteEvaluationCommitsAllThreeWrites(t *testing.T) {
	db := newSubmissionTestDB(t)
	repo := NewSubmissionRepository(db)
	submission := seedPendingSubmission(t, db, "ada@example.com")

	verifiedAt := time.Now().UTC()
	verification := models.SkillVerification{
		SubmissionID:   submission.ID,
		TaskID:         submission.TaskID,
		StudentID:      submission.StudentID,
		OverallScore:   82.5,
		SkillBreakdown: datatypes.JSONMap{"Go": 85.0},
		PlagiarismRisk: models.PlagiarismRiskLow,
		VerifiedAt:     verifiedAt,
	}
	skills := []models.VerifiedSkill{
		{UserID: submission.StudentID, TaskID: submission.TaskID, Skill: "Go", Score: 85, VerifiedAt: verifiedAt},
	}

	require.NoError(t, repo.CompleteEvaluation(context.Background(), submission.ID, &verification, skills))

	var stored models.SkillVerification
	require.NoError(t, db.Where("submission_id = ?", submission.ID).First(&stored).Error)
	require.Equal(t, 82.5, stored.OverallScore)

	updated, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusEvaluated, updated.Status)
	require.NotNil(t, updated.EvaluatedAt)
	require.NotNil(t, updated.EvaluationResultID)
	require.Equal(t, stored.ID, *updated.EvaluationResultID)

	var ledger []models.VerifiedSkill
	require.NoError(t, db.Where("user_id = ?", submission.StudentID).Find(&ledger).Error)
	require.Len(t, ledger, 1)
	require.Equal(t, "Go", ledger[0].Skill)
	require.Equal(t, 85.0, ledger[0].Score)
}

func TestCompleteEvaluationRollsBackOnLedgerFailure(t *testing.T) {
	db := newSubmissionTestDB(t)
	repo := NewSubmissionRepository(db)
	submission := seedPendingSubmission(t, db, "grace@example.com")

	// Existing ledger row whose primary key the transaction will collide with.
	existing := models.VerifiedSkill{UserID: 999, TaskID: 999, Skill: "SQL", Score: 50, VerifiedAt: time.Now()}
	require.NoError(t, db.Create(&existing).Error)

	verification := models.SkillVerification{
		SubmissionID:   submission.ID,
		TaskID:         submission.TaskID,
		StudentID:      submission.StudentID,
		OverallScore:   90,
		SkillBreakdown: datatypes.JSONMap{"Go": 90.0},
		PlagiarismRisk: models.PlagiarismRiskLow,
		VerifiedAt:     time.Now(),
	}
	skills := []models.VerifiedSkill{
		{ID: existing.ID, UserID: submission.StudentID, TaskID: submission.TaskID, Skill: "Go", Score: 90, VerifiedAt: time.Now()},
	}

	require.Error(t, repo.CompleteEvaluation(context.Background(), submission.ID, &verification, skills))

	// The ledger insert failed last; the earlier verification create and
	// submission update must be rolled back with it.
	var verificationCount int64
	require.NoError(t, db.Model(&models.SkillVerification{}).Where("submission_id = ?", submission.ID).Count(&verificationCount).Error)
	require.Zero(t, verificationCount)

	reloaded, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusPending, reloaded.Status)
	require.Nil(t, reloaded.EvaluatedAt)
	require.Nil(t, reloaded.EvaluationResultID)

	var ledgerCount int64
	require.NoError(t, db.Model(&models.VerifiedSkill{}).Where("user_id = ?", submission.StudentID).Count(&ledgerCount).Error)
	require.Zero(t, ledgerCount)
}
