package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillproof/skillproof-api/internal/models"
)

// UserRepository defines data operations for marketplace accounts and the
// skill ledger queries recruiters rely on.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	SearchStudentsBySkill(ctx context.Context, skill string, minScore float64) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository instantiates the repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("VerifiedSkills").First(&user, id).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// SearchStudentsBySkill returns students whose skill ledger contains at least
// one verified entry for the given skill at or above minScore.
func (r *userRepository) SearchStudentsBySkill(ctx context.Context, skill string, minScore float64) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Distinct("users.*").
		Joins("JOIN verified_skills ON verified_skills.user_id = users.id").
		Where("users.role = ?", models.RoleStudent).
		Where("LOWER(verified_skills.skill) = LOWER(?)", skill).
		Where("verified_skills.score >= ?", minScore).
		Preload("VerifiedSkills").
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}
