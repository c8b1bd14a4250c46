package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/skillproof/skillproof-api/internal/models"
)

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	TaskID    *uint
	StudentID *uint
	Status    *string
}

// SubmissionRepository defines data operations for submissions, including
// the transactional commit that closes an evaluation run.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByTaskAndStudent(ctx context.Context, taskID, studentID uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	CompleteEvaluation(ctx context.Context, submissionID uint, verification *models.SkillVerification, skills []models.VerifiedSkill) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Task").
		Preload("Student")
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.TaskID != nil {
		query = query.Where("task_id = ?", *filter.TaskID)
	}

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var submissions []models.Submission
	if err := query.Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByTaskAndStudent(ctx context.Context, taskID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).
		Where("task_id = ?", taskID).
		Where("student_id = ?", studentID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		UpdateColumn("status", status).
		Error
}

// CompleteEvaluation commits the three-way result of a successful run in one
// transaction: the verification record, the submission's terminal state, and
// the appended skill ledger entries. Readers either see all three or none.
func (r *submissionRepository) CompleteEvaluation(ctx context.Context, submissionID uint, verification *models.SkillVerification, skills []models.VerifiedSkill) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(verification).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":               models.SubmissionStatusEvaluated,
			"evaluated_at":         verification.VerifiedAt,
			"evaluation_result_id": verification.ID,
			"updated_at":           time.Now(),
		}
		if err := tx.Model(&models.Submission{}).Where("id = ?", submissionID).Updates(updates).Error; err != nil {
			return err
		}

		if len(skills) > 0 {
			if err := tx.Create(&skills).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
