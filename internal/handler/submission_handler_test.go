package handler_test

import (
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

// newSubmissionApp wires the handler over real sqlite-backed repositories.
// Intake collaborators stay nil; the read endpoints under test never reach
// them.
func newSubmissionApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}, &models.Submission{}, &models.SkillVerification{}, &models.VerifiedSkill{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := service.NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewTaskRepository(db),
		repository.NewVerificationRepository(db),
		nil, nil, nil,
		validate, zerolog.Nop(),
	)
	h := handler.NewSubmissionHandler(svc, validate, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/submissions", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		return c.Next()
	})
	h.Register(group)

	return app, db
}

func seedSubmissionRows(t *testing.T, db *gorm.DB) {
	t.Helper()

	student := models.User{Name: "Ada", Email: "ada@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	task := models.Task{Title: "Build a CLI", Description: "d", ProviderID: student.ID, Difficulty: models.DifficultyBeginner, Deadline: time.Now().Add(time.Hour), Status: models.TaskStatusActive}
	require.NoError(t, db.Create(&task).Error)

	submission := models.Submission{
		TaskID:         task.ID,
		StudentID:      student.ID,
		SubmissionType: models.SubmissionTypeGithub,
		GithubRepo:     models.GithubRepo{URL: "https://github.com/ada/cli", Owner: "ada", Repo: "cli"},
		Status:         models.SubmissionStatusPending,
		SubmittedAt:    time.Now(),
	}
	require.NoError(t, db.Create(&submission).Error)
}

func TestSubmissionHandlerListFiltersByTask(t *testing.T) {
	app, db := newSubmissionApp(t)
	seedSubmissionRows(t, db)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions?task_id=1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed struct {
		Data []struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	require.Len(t, listed.Data, 1)
}

func TestSubmissionHandlerListRejectsMalformedFilters(t *testing.T) {
	app, db := newSubmissionApp(t)
	seedSubmissionRows(t, db)

	// A filter that fails to parse must be a 400, not an unfiltered list.
	for _, target := range []string{
		"/api/v1/submissions?task_id=abc",
		"/api/v1/submissions?student_id=abc",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
	}
}
