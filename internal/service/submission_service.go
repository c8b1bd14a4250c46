package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillproof/skillproof-api/internal/dto"
	"github.com/skillproof/skillproof-api/internal/models"
	"github.com/skillproof/skillproof-api/internal/repository"
	"github.com/skillproof/skillproof-api/pkg/github"
)

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrTaskNotAcceptingSubmissions indicates the task is closed, a draft, or
// past its deadline.
var ErrTaskNotAcceptingSubmissions = errors.New("task is not accepting submissions")

// ErrSubmissionCapReached indicates the task's submission cap is full.
var ErrSubmissionCapReached = errors.New("task has reached maximum submissions")

// ErrDuplicateSubmission indicates the student already submitted for the task.
var ErrDuplicateSubmission = errors.New("student has already submitted for this task")

// ErrUploaderUnavailable indicates file submissions are not configured.
var ErrUploaderUnavailable = errors.New("file storage unavailable")

// RepoFetcher retrieves repository metadata at intake time. The snapshot it
// returns is the only repository state evaluation ever sees.
type RepoFetcher interface {
	FetchMetadata(ctx context.Context, owner, repo, branch string) (github.RepoMetadata, error)
}

// FileUploader abstracts uploading binary data and returning a storage URL.
type FileUploader interface {
	Upload(ctx context.Context, filename string, reader io.Reader) (string, error)
}

// previewBytes bounds how much of an uploaded file is read for mime
// detection and the evaluator's content preview.
const previewBytes = 8 * 1024

const previewChars = 2000

// SubmissionService handles submission intake and read access. Intake
// enforces every invariant the orchestrator trusts: the task is active, no
// duplicate (task, student) pair exists, and the cap is not exceeded.
type SubmissionService interface {
	Create(ctx context.Context, studentID uint, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions   repository.SubmissionRepository
	tasks         repository.TaskRepository
	verifications repository.VerificationRepository
	fetcher       RepoFetcher
	uploader      FileUploader
	dispatcher    EvaluationDispatcher
	validator     *validator.Validate
	logger        zerolog.Logger
	now           func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(subRepo repository.SubmissionRepository, taskRepo repository.TaskRepository, verificationRepo repository.VerificationRepository, fetcher RepoFetcher, uploader FileUploader, dispatcher EvaluationDispatcher, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions:   subRepo,
		tasks:         taskRepo,
		verifications: verificationRepo,
		fetcher:       fetcher,
		uploader:      uploader,
		dispatcher:    dispatcher,
		validator:     validate,
		logger:        logger.With().Str("component", "submission_service").Logger(),
		now:           time.Now,
	}
}

// Create persists a pending submission and hands it to the orchestrator. The
// call returns as soon as the record is durable; evaluation proceeds in the
// background and its outcome is observed by polling the submission status.
func (s *submissionService) Create(ctx context.Context, studentID uint, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	task, err := s.tasks.GetByID(ctx, payload.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrTaskNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if task.SubmissionCapReached() {
		return dto.SubmissionResponse{}, ErrSubmissionCapReached
	}
	if !task.AcceptsSubmissions(s.now()) {
		return dto.SubmissionResponse{}, ErrTaskNotAcceptingSubmissions
	}

	if _, err := s.submissions.GetByTaskAndStudent(ctx, payload.TaskID, studentID); err == nil {
		return dto.SubmissionResponse{}, ErrDuplicateSubmission
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		TaskID:         payload.TaskID,
		StudentID:      studentID,
		SubmissionType: payload.SubmissionType,
		Status:         models.SubmissionStatusPending,
		SubmittedAt:    s.now(),
	}

	switch payload.SubmissionType {
	case models.SubmissionTypeGithub:
		repo, err := s.resolveGithubRepo(ctx, payload.GithubURL)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		submission.GithubRepo = repo
	case models.SubmissionTypeFile:
		upload, err := s.storeFile(ctx, file)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		submission.FileUpload = upload
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.tasks.IncrementSubmissions(ctx, task.ID); err != nil {
		s.logger.Error().Err(err).Uint("task_id", task.ID).Msg("failed to increment submission counter")
	}

	// Fire-and-forget from the request's perspective; the orchestrator owns
	// the run from here and logs its own outcome.
	s.dispatcher.Dispatch(submission.ID)

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("task_id", task.ID).
		Uint("student_id", studentID).
		Str("type", submission.SubmissionType).
		Msg("submission created, evaluation dispatched")

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	response := dto.NewSubmissionResponse(submission)

	if submission.EvaluationResultID != nil {
		verification, err := s.verifications.GetByID(ctx, *submission.EvaluationResultID)
		if err == nil {
			result := dto.NewSkillVerificationResponse(verification)
			response.EvaluationResult = &result
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, err
		}
	}

	return response, nil
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{
		TaskID:    filter.TaskID,
		StudentID: filter.StudentID,
		Status:    filter.Status,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) resolveGithubRepo(ctx context.Context, url string) (models.GithubRepo, error) {
	ref, err := github.ParseRepoURL(url)
	if err != nil {
		return models.GithubRepo{}, err
	}

	metadata, err := s.fetcher.FetchMetadata(ctx, ref.Owner, ref.Repo, ref.Branch)
	if err != nil {
		return models.GithubRepo{}, err
	}

	return models.GithubRepo{
		URL:         url,
		Owner:       ref.Owner,
		Repo:        ref.Repo,
		Branch:      ref.Branch,
		CommitHash:  metadata.CommitHash,
		Language:    metadata.Language,
		Stars:       metadata.Stars,
		Forks:       metadata.Forks,
		Size:        metadata.Size,
		Description: metadata.Description,
		Readme:      metadata.Readme,
	}, nil
}

func (s *submissionService) storeFile(ctx context.Context, file *multipart.FileHeader) (models.FileUpload, error) {
	if file == nil {
		return models.FileUpload{}, fmt.Errorf("submission file is required")
	}
	if s.uploader == nil {
		return models.FileUpload{}, ErrUploaderUnavailable
	}

	head, err := file.Open()
	if err != nil {
		return models.FileUpload{}, fmt.Errorf("failed to open file: %w", err)
	}
	sample, err := io.ReadAll(io.LimitReader(head, previewBytes))
	head.Close()
	if err != nil {
		return models.FileUpload{}, fmt.Errorf("failed to read file: %w", err)
	}

	detected := mimetype.Detect(sample)

	reader, err := file.Open()
	if err != nil {
		return models.FileUpload{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	storagePath, err := s.uploader.Upload(ctx, file.Filename, reader)
	if err != nil {
		return models.FileUpload{}, fmt.Errorf("failed to upload file: %w", err)
	}

	upload := models.FileUpload{
		Filename:    file.Filename,
		MimeType:    detected.String(),
		Size:        file.Size,
		StoragePath: storagePath,
	}

	// Only text-like files get a content preview for the evaluator.
	if strings.HasPrefix(detected.String(), "text/") {
		preview := string(sample)
		if len(preview) > previewChars {
			preview = preview[:previewChars]
		}
		upload.Preview = preview
	}

	return upload, nil
}
