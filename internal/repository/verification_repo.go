package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillproof/skillproof-api/internal/models"
)

// VerificationRepository reads skill verification records. Creation happens
// only inside SubmissionRepository.CompleteEvaluation; the records are
// immutable afterwards, so no update or delete operations exist.
type VerificationRepository interface {
	GetByID(ctx context.Context, id uint) (models.SkillVerification, error)
	GetBySubmissionID(ctx context.Context, submissionID uint) (models.SkillVerification, error)
}

type verificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository instantiates the repository.
func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) GetByID(ctx context.Context, id uint) (models.SkillVerification, error) {
	var verification models.SkillVerification
	if err := r.db.WithContext(ctx).First(&verification, id).Error; err != nil {
		return models.SkillVerification{}, err
	}

	return verification, nil
}

func (r *verificationRepository) GetBySubmissionID(ctx context.Context, submissionID uint) (models.SkillVerification, error) {
	var verification models.SkillVerification
	if err := r.db.WithContext(ctx).Where("submission_id = ?", submissionID).First(&verification).Error; err != nil {
		return models.SkillVerification{}, err
	}

	return verification, nil
}
