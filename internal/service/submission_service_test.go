package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skillproof/skillproof-api/internal/dto"
	"github.com/skillproof/skillproof-api/internal/models"
	"github.com/skillproof/skillproof-api/internal/repository"
	"github.com/skillproof/skillproof-api/pkg/github"
)

type stubIntakeRepo struct {
	created   *models.Submission
	stored    models.Submission
	existing  *models.Submission
	createErr error
}

func (s *stubIntakeRepo) List(ctx context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	return []models.Submission{s.stored}, nil
}

func (s *stubIntakeRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	if s.stored.ID == 0 {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return s.stored, nil
}

func (s *stubIntakeRepo) GetByTaskAndStudent(ctx context.Context, taskID, studentID uint) (models.Submission, error) {
	if s.existing != nil {
		return *s.existing, nil
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (s *stubIntakeRepo) Create(ctx context.Context, submission *models.Submission) error {
	if s.createErr != nil {
		return s.createErr
	}
	if submission.ID == 0 {
		submission.ID = 42
	}
	clone := *submission
	s.created = &clone
	s.stored = clone
	return nil
}

func (s *stubIntakeRepo) UpdateStatus(ctx context.Context, id uint, status string) error {
	s.stored.Status = status
	return nil
}

func (s *stubIntakeRepo) CompleteEvaluation(ctx context.Context, submissionID uint, verification *models.SkillVerification, skills []models.VerifiedSkill) error {
	return errors.New("not implemented")
}

type stubIntakeTaskRepo struct {
	task        models.Task
	incremented []uint
}

func (s *stubIntakeTaskRepo) List(ctx context.Context, filter repository.TaskFilter) ([]models.Task, error) {
	return nil, errors.New("not implemented")
}

func (s *stubIntakeTaskRepo) GetByID(ctx context.Context, id uint) (models.Task, error) {
	if s.task.ID == 0 {
		return models.Task{}, gorm.ErrRecordNotFound
	}
	return s.task, nil
}

func (s *stubIntakeTaskRepo) Create(ctx context.Context, task *models.Task) error {
	return errors.New("not implemented")
}

func (s *stubIntakeTaskRepo) Update(ctx context.Context, task *models.Task) error {
	return errors.New("not implemented")
}

func (s *stubIntakeTaskRepo) IncrementSubmissions(ctx context.Context, id uint) error {
	s.incremented = append(s.incremented, id)
	return nil
}

type stubVerificationRepo struct {
	verification models.SkillVerification
}

func (s *stubVerificationRepo) GetByID(ctx context.Context, id uint) (models.SkillVerification, error) {
	if s.verification.ID == 0 {
		return models.SkillVerification{}, gorm.ErrRecordNotFound
	}
	return s.verification, nil
}

func (s *stubVerificationRepo) GetBySubmissionID(ctx context.Context, submissionID uint) (models.SkillVerification, error) {
	return s.GetByID(ctx, submissionID)
}

type stubFetcher struct {
	metadata github.RepoMetadata
	err      error
	calls    int
}

func (s *stubFetcher) FetchMetadata(ctx context.Context, owner, repo, branch string) (github.RepoMetadata, error) {
	s.calls++
	if s.err != nil {
		return github.RepoMetadata{}, s.err
	}
	return s.metadata, nil
}

type stubDispatcher struct {
	dispatched []uint
}

func (s *stubDispatcher) Dispatch(submissionID uint) <-chan error {
	s.dispatched = append(s.dispatched, submissionID)
	done := make(chan error)
	close(done)
	return done
}

func activeTask() models.Task {
	return models.Task{
		ID:             3,
		Title:          "Build a REST API",
		ProviderID:     1,
		RequiredSkills: []string{"Go", "SQL"},
		Difficulty:     models.DifficultyIntermediate,
		Deadline:       time.Now().Add(24 * time.Hour),
		Status:         models.TaskStatusActive,
	}
}

func newIntakeService(repo *stubIntakeRepo, tasks *stubIntakeTaskRepo, fetcher *stubFetcher, dispatcher *stubDispatcher) SubmissionService {
	return NewSubmissionService(repo, tasks, &stubVerificationRepo{}, fetcher, nil, dispatcher, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
}

func TestSubmissionServiceCreateGithubSnapshotsMetadata(t *testing.T) {
	repo := &stubIntakeRepo{}
	tasks := &stubIntakeTaskRepo{task: activeTask()}
	fetcher := &stubFetcher{metadata: github.RepoMetadata{
		Language:    "Go",
		Stars:       12,
		Forks:       3,
		Description: "demo service",
		Readme:      "# demo",
		CommitHash:  "abc123",
	}}
	dispatcher := &stubDispatcher{}

	svc := newIntakeService(repo, tasks, fetcher, dispatcher)

	response, err := svc.Create(context.Background(), 9, dto.SubmissionCreateRequest{
		TaskID:         3,
		SubmissionType: models.SubmissionTypeGithub,
		GithubURL:      "https://github.com/octocat/hello-world/tree/dev",
	}, nil)
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusPending, response.Status)
	require.NotNil(t, repo.created)
	require.Equal(t, "octocat", repo.created.GithubRepo.Owner)
	require.Equal(t, "hello-world", repo.created.GithubRepo.Repo)
	require.Equal(t, "dev", repo.created.GithubRepo.Branch)
	require.Equal(t, "abc123", repo.created.GithubRepo.CommitHash)
	require.Equal(t, 12, repo.created.GithubRepo.Stars)
	require.Equal(t, 1, fetcher.calls)

	require.Equal(t, []uint{3}, tasks.incremented)
	require.Equal(t, []uint{repo.created.ID}, dispatcher.dispatched)
}

func TestSubmissionServiceCreateRejectsDuplicate(t *testing.T) {
	existing := models.Submission{ID: 11, TaskID: 3, StudentID: 9}
	repo := &stubIntakeRepo{existing: &existing}
	tasks := &stubIntakeTaskRepo{task: activeTask()}
	dispatcher := &stubDispatcher{}

	svc := newIntakeService(repo, tasks, &stubFetcher{}, dispatcher)

	_, err := svc.Create(context.Background(), 9, dto.SubmissionCreateRequest{
		TaskID:         3,
		SubmissionType: models.SubmissionTypeGithub,
		GithubURL:      "https://github.com/octocat/hello-world",
	}, nil)
	require.ErrorIs(t, err, ErrDuplicateSubmission)
	require.Empty(t, dispatcher.dispatched)
}

func TestSubmissionServiceCreateRejectsCapReached(t *testing.T) {
	task := activeTask()
	limit := 5
	task.MaxSubmissions = &limit
	task.CurrentSubmissions = 5
	repo := &stubIntakeRepo{}
	tasks := &stubIntakeTaskRepo{task: task}

	svc := newIntakeService(repo, tasks, &stubFetcher{}, &stubDispatcher{})

	_, err := svc.Create(context.Background(), 9, dto.SubmissionCreateRequest{
		TaskID:         3,
		SubmissionType: models.SubmissionTypeGithub,
		GithubURL:      "https://github.com/octocat/hello-world",
	}, nil)
	require.ErrorIs(t, err, ErrSubmissionCapReached)
}

func TestSubmissionServiceCreateRejectsClosedTask(t *testing.T) {
	task := activeTask()
	task.Status = models.TaskStatusClosed
	tasks := &stubIntakeTaskRepo{task: task}

	svc := newIntakeService(&stubIntakeRepo{}, tasks, &stubFetcher{}, &stubDispatcher{})

	_, err := svc.Create(context.Background(), 9, dto.SubmissionCreateRequest{
		TaskID:         3,
		SubmissionType: models.SubmissionTypeGithub,
		GithubURL:      "https://github.com/octocat/hello-world",
	}, nil)
	require.ErrorIs(t, err, ErrTaskNotAcceptingSubmissions)
}

func TestSubmissionServiceCreateRejectsPastDeadline(t *testing.T) {
	task := activeTask()
	task.Deadline = time.Now().Add(-time.Hour)
	tasks := &stubIntakeTaskRepo{task: task}

	svc := newIntakeService(&stubIntakeRepo{}, tasks, &stubFetcher{}, &stubDispatcher{})

	_, err := svc.Create(context.Background(), 9, dto.SubmissionCreateRequest{
		TaskID:         3,
		SubmissionType: models.SubmissionTypeGithub,
		GithubURL:      "https://github.com/octocat/hello-world",
	}, nil)
	require.ErrorIs(t, err, ErrTaskNotAcceptingSubmissions)
}

func TestSubmissionServiceCreateUnknownTask(t *testing.T) {
	svc := newIntakeService(&stubIntakeRepo{}, &stubIntakeTaskRepo{}, &stubFetcher{}, &stubDispatcher{})

	_, err := svc.Create(context.Background(), 9, dto.SubmissionCreateRequest{
		TaskID:         99,
		SubmissionType: models.SubmissionTypeGithub,
		GithubURL:      "https://github.com/octocat/hello-world",
	}, nil)
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestSubmissionServiceCreateInvalidRepoURL(t *testing.T) {
	tasks := &stubIntakeTaskRepo{task: activeTask()}
	dispatcher := &stubDispatcher{}

	svc := newIntakeService(&stubIntakeRepo{}, tasks, &stubFetcher{}, dispatcher)

	_, err := svc.Create(context.Background(), 9, dto.SubmissionCreateRequest{
		TaskID:         3,
		SubmissionType: models.SubmissionTypeGithub,
		GithubURL:      "https://gitlab.com/octocat/hello-world",
	}, nil)
	require.ErrorIs(t, err, github.ErrInvalidRepoURL)
	require.Empty(t, dispatcher.dispatched)
}

func TestSubmissionServiceCreatePrivateRepo(t *testing.T) {
	tasks := &stubIntakeTaskRepo{task: activeTask()}
	fetcher := &stubFetcher{err: github.ErrRepoNotFound}

	svc := newIntakeService(&stubIntakeRepo{}, tasks, fetcher, &stubDispatcher{})

	_, err := svc.Create(context.Background(), 9, dto.SubmissionCreateRequest{
		TaskID:         3,
		SubmissionType: models.SubmissionTypeGithub,
		GithubURL:      "https://github.com/octocat/secret",
	}, nil)
	require.ErrorIs(t, err, github.ErrRepoNotFound)
}

func TestSubmissionServiceCreateFileWithoutUpload(t *testing.T) {
	tasks := &stubIntakeTaskRepo{task: activeTask()}

	svc := newIntakeService(&stubIntakeRepo{}, tasks, &stubFetcher{}, &stubDispatcher{})

	_, err := svc.Create(context.Background(), 9, dto.SubmissionCreateRequest{
		TaskID:         3,
		SubmissionType: models.SubmissionTypeFile,
	}, nil)
	require.Error(t, err)
}

func TestSubmissionServiceGetAttachesVerification(t *testing.T) {
	resultID := uint(5)
	evaluatedAt := time.Now()
	repo := &stubIntakeRepo{stored: models.Submission{
		ID:                 42,
		TaskID:             3,
		StudentID:          9,
		SubmissionType:     models.SubmissionTypeGithub,
		Status:             models.SubmissionStatusEvaluated,
		EvaluatedAt:        &evaluatedAt,
		EvaluationResultID: &resultID,
	}}
	verifications := &stubVerificationRepo{verification: models.SkillVerification{
		ID:           5,
		SubmissionID: 42,
		OverallScore: 88,
	}}

	svc := NewSubmissionService(repo, &stubIntakeTaskRepo{task: activeTask()}, verifications, &stubFetcher{}, nil, &stubDispatcher{}, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())

	response, err := svc.Get(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, response.EvaluationResult)
	require.Equal(t, 88.0, response.EvaluationResult.OverallScore)
}

func TestSubmissionServiceGetUnknown(t *testing.T) {
	svc := newIntakeService(&stubIntakeRepo{}, &stubIntakeTaskRepo{task: activeTask()}, &stubFetcher{}, &stubDispatcher{})

	_, err := svc.Get(context.Background(), 404)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}
