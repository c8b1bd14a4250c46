package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillproof/skillproof-api/internal/dto"
	"github.com/skillproof/skillproof-api/internal/models"
	"github.com/skillproof/skillproof-api/internal/repository"
)

func newTaskService(t *testing.T) (TaskService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}))

	return NewTaskService(repository.NewTaskRepository(db), validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop()), db
}

func TestTaskServiceCreateSanitizesAndDefaults(t *testing.T) {
	svc, _ := newTaskService(t)

	created, err := svc.Create(context.Background(), 1, dto.TaskCreateRequest{
		Title:              "Build a REST API <script>alert(1)</script>",
		Description:        "Implement a small JSON API with persistence.",
		RequiredSkills:     []string{"Go", "SQL"},
		Difficulty:         models.DifficultyIntermediate,
		Deadline:           time.Now().Add(72 * time.Hour),
		Instructions:       "Use any router you like.",
		EvaluationCriteria: "Code quality, tests, API design.",
	})
	require.NoError(t, err)

	require.Equal(t, models.TaskStatusActive, created.Status)
	require.NotContains(t, created.Title, "<script>")
	require.Equal(t, uint(1), created.ProviderID)
	require.Equal(t, []string{"Go", "SQL"}, created.RequiredSkills)
}

func TestTaskServiceCreateValidation(t *testing.T) {
	svc, _ := newTaskService(t)

	_, err := svc.Create(context.Background(), 1, dto.TaskCreateRequest{
		Title:      "x",
		Difficulty: "impossible",
	})
	require.Error(t, err)
}

func TestTaskServiceGetUnknown(t *testing.T) {
	svc, _ := newTaskService(t)

	_, err := svc.Get(context.Background(), 404)
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskServiceListFilters(t *testing.T) {
	svc, db := newTaskService(t)

	tasks := []models.Task{
		{Title: "Task A", Description: "d", ProviderID: 1, Difficulty: models.DifficultyBeginner, Deadline: time.Now().Add(time.Hour), Status: models.TaskStatusActive},
		{Title: "Task B", Description: "d", ProviderID: 2, Difficulty: models.DifficultyAdvanced, Deadline: time.Now().Add(time.Hour), Status: models.TaskStatusClosed},
	}
	for i := range tasks {
		require.NoError(t, db.Create(&tasks[i]).Error)
	}

	status := models.TaskStatusActive
	active, err := svc.List(context.Background(), dto.TaskFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "Task A", active[0].Title)

	providerID := uint(2)
	byProvider, err := svc.List(context.Background(), dto.TaskFilter{ProviderID: &providerID})
	require.NoError(t, err)
	require.Len(t, byProvider, 1)
	require.Equal(t, "Task B", byProvider[0].Title)
}
