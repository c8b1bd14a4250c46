package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillproof/skillproof-api/internal/handler"
	"github.com/skillproof/skillproof-api/internal/models"
	"github.com/skillproof/skillproof-api/internal/repository"
	"github.com/skillproof/skillproof-api/internal/service"
)

func newTaskApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := service.NewTaskService(repository.NewTaskRepository(db), validate, zerolog.Nop())
	h := handler.NewTaskHandler(svc, validate, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/tasks", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		return c.Next()
	})
	h.Register(group)

	return app, db
}

func TestTaskHandlerCreateAndGet(t *testing.T) {
	app, _ := newTaskApp(t)

	payload := map[string]interface{}{
		"title":               "Build a REST API",
		"description":         "Implement a small JSON API with persistence.",
		"required_skills":     []string{"Go", "SQL"},
		"difficulty":          "intermediate",
		"deadline":            time.Now().Add(72 * time.Hour).Format(time.RFC3339),
		"instructions":        "Use any router you like.",
		"evaluation_criteria": "Code quality, tests, API design.",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Success bool `json:"success"`
		Data    struct {
			ID     uint   `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.True(t, created.Success)
	require.Equal(t, models.TaskStatusActive, created.Data.Status)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/tasks/1", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTaskHandlerCreateRejectsInvalidPayload(t *testing.T) {
	app, _ := newTaskApp(t)

	body := []byte(`{"title":"x"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTaskHandlerGetUnknownReturnsNotFound(t *testing.T) {
	app, _ := newTaskApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/999", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTaskHandlerListFiltersByStatus(t *testing.T) {
	app, db := newTaskApp(t)

	tasks := []models.Task{
		{Title: "Task A", Description: "d", ProviderID: 1, Difficulty: models.DifficultyBeginner, Deadline: time.Now().Add(time.Hour), Status: models.TaskStatusActive},
		{Title: "Task B", Description: "d", ProviderID: 1, Difficulty: models.DifficultyAdvanced, Deadline: time.Now().Add(time.Hour), Status: models.TaskStatusClosed},
	}
	for i := range tasks {
		require.NoError(t, db.Create(&tasks[i]).Error)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks?status=active", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed struct {
		Data []struct {
			Title string `json:"title"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	require.Len(t, listed.Data, 1)
	require.Equal(t, "Task A", listed.Data[0].Title)
}

func TestTaskHandlerListRejectsMalformedProviderID(t *testing.T) {
	app, db := newTaskApp(t)

	task := models.Task{Title: "Task A", Description: "d", ProviderID: 1, Difficulty: models.DifficultyBeginner, Deadline: time.Now().Add(time.Hour), Status: models.TaskStatusActive}
	require.NoError(t, db.Create(&task).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks?provider_id=abc", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
