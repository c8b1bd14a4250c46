package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillproof/skillproof-api/internal/models"
)

// TaskFilter allows narrowing task queries.
type TaskFilter struct {
	ProviderID *uint
	Status     *string
	Difficulty *string
}

// TaskRepository defines data operations for tasks.
type TaskRepository interface {
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	GetByID(ctx context.Context, id uint) (models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	IncrementSubmissions(ctx context.Context, id uint) error
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository instantiates the repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})

	if filter.ProviderID != nil {
		query = query.Where("provider_id = ?", *filter.ProviderID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.Difficulty != nil {
		query = query.Where("difficulty = ?", *filter.Difficulty)
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return models.Task{}, err
	}

	return task, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// IncrementSubmissions bumps the submission counter with a single atomic
// update, so concurrent submissions to the same task cannot lose counts.
// There is no decrement path: a submission slot stays consumed even when the
// evaluation later fails.
func (r *taskRepository) IncrementSubmissions(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		UpdateColumn("current_submissions", gorm.Expr("current_submissions + ?", 1)).
		Error
}
