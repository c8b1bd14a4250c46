package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/skillproof/skillproof-api/internal/models"
	"github.com/skillproof/skillproof-api/internal/observability"
	"github.com/skillproof/skillproof-api/internal/repository"
	"github.com/skillproof/skillproof-api/pkg/ai"
	"github.com/skillproof/skillproof-api/pkg/events"
)

// EvaluationDispatcher triggers asynchronous evaluation runs. Dispatch
// returns a channel that receives the run's terminal error (nil on success)
// and is then closed, so completion is observable instead of swallowed.
type EvaluationDispatcher interface {
	Dispatch(submissionID uint) <-chan error
}

// EventPublisher announces completed evaluations to downstream consumers.
type EventPublisher interface {
	PublishEvaluated(ctx context.Context, event events.SubmissionEvaluated) error
}

// ErrSubmissionMissingRefs indicates the task or student was deleted between
// intake and evaluation.
var ErrSubmissionMissingRefs = errors.New("submission references a deleted task or student")

// EvaluationConfig bounds a single evaluation run.
type EvaluationConfig struct {
	RunTimeout time.Duration
}

const defaultRunTimeout = 60 * time.Second

// EvaluationService drives a submission through the evaluation state machine:
// pending -> evaluating -> evaluated|failed. Both outcomes are terminal;
// there is no retry path, recovery requires a new submission.
type EvaluationService struct {
	submissions repository.SubmissionRepository
	evaluator   ai.Evaluator
	publisher   EventPublisher
	logger      zerolog.Logger
	config      EvaluationConfig
	now         func() time.Time
}

// NewEvaluationService constructs the orchestrator. The publisher may be nil
// when no event transport is configured.
func NewEvaluationService(submissionRepo repository.SubmissionRepository, evaluator ai.Evaluator, publisher EventPublisher, logger zerolog.Logger, cfg EvaluationConfig) *EvaluationService {
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = defaultRunTimeout
	}

	return &EvaluationService{
		submissions: submissionRepo,
		evaluator:   evaluator,
		publisher:   publisher,
		logger:      logger.With().Str("component", "evaluation_service").Logger(),
		config:      cfg,
		now:         time.Now,
	}
}

// Dispatch starts one evaluation run in the background. Runs for different
// submissions execute concurrently with no ordering guarantee; a run, once
// started, is not cancellable and always reaches a terminal status.
func (s *EvaluationService) Dispatch(submissionID uint) <-chan error {
	done := make(chan error, 1)

	go func() {
		defer close(done)

		ctx, cancel := context.WithTimeout(context.Background(), s.config.RunTimeout)
		defer cancel()

		evaluated, err := s.run(ctx, submissionID)
		switch {
		case err != nil:
			observability.EvaluationRuns().WithLabelValues("failed").Inc()
			s.logger.Error().Err(err).Uint("submission_id", submissionID).Msg("evaluation run failed")
		case evaluated:
			observability.EvaluationRuns().WithLabelValues("evaluated").Inc()
		}

		done <- err
	}()

	return done
}

// run returns whether a verification was actually committed so the caller can
// keep the outcome counter honest: a dispatch that hits an already-terminal
// submission is neither a success nor a failure.
func (s *EvaluationService) run(ctx context.Context, submissionID uint) (bool, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("submission %d not found", submissionID)
		}
		return false, fmt.Errorf("load submission %d: %w", submissionID, err)
	}

	// Intake is the single trigger point; a stray second dispatch for an
	// already-terminal submission is a no-op.
	if submission.IsTerminal() {
		return false, nil
	}

	// Persisted before any external call so a crash mid-run shows up as
	// stuck in evaluating rather than silently pending.
	if err := s.submissions.UpdateStatus(ctx, submissionID, models.SubmissionStatusEvaluating); err != nil {
		return false, fmt.Errorf("mark evaluating: %w", err)
	}

	if submission.Task.ID == 0 || submission.Student.ID == 0 {
		return false, s.fail(submissionID, ErrSubmissionMissingRefs)
	}

	s.logger.Info().
		Uint("submission_id", submissionID).
		Uint("task_id", submission.TaskID).
		Str("type", submission.SubmissionType).
		Str("content", contentSummary(submission)).
		Msg("evaluation run started")

	evaluation, err := s.evaluator.Evaluate(ctx, buildEvaluationInput(submission))
	if err != nil {
		s.logger.Warn().
			Uint("submission_id", submissionID).
			Str("kind", evaluationErrorKind(err)).
			Err(err).
			Msg("evaluation call failed")
		return false, s.fail(submissionID, err)
	}

	verifiedAt := s.now()
	verification := models.SkillVerification{
		SubmissionID:   submission.ID,
		TaskID:         submission.TaskID,
		StudentID:      submission.StudentID,
		OverallScore:   evaluation.Verdict.OverallScore,
		SkillBreakdown: breakdownToJSONMap(evaluation.Verdict.SkillBreakdown),
		Strengths:      evaluation.Verdict.Strengths,
		Weaknesses:     evaluation.Verdict.Weaknesses,
		ResumeBullet:   evaluation.Verdict.ResumeBullet,
		PlagiarismRisk: evaluation.Verdict.PlagiarismRisk,
		AIModel:        evaluation.Model,
		AIPrompt:       evaluation.Prompt,
		AIResponse:     evaluation.Raw,
		VerifiedAt:     verifiedAt,
	}

	skills := ledgerEntries(submission, evaluation.Verdict.SkillBreakdown, verifiedAt)

	if err := s.submissions.CompleteEvaluation(ctx, submission.ID, &verification, skills); err != nil {
		return false, s.fail(submissionID, fmt.Errorf("commit evaluation: %w", err))
	}

	s.logger.Info().
		Uint("submission_id", submissionID).
		Float64("overall_score", verification.OverallScore).
		Msg("submission evaluated")

	if s.publisher != nil {
		event := events.SubmissionEvaluated{
			SubmissionID: submission.ID,
			TaskID:       submission.TaskID,
			StudentID:    submission.StudentID,
			OverallScore: verification.OverallScore,
			VerifiedAt:   verifiedAt,
		}
		if err := s.publisher.PublishEvaluated(ctx, event); err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", submissionID).Msg("failed to publish evaluated event")
		}
	}

	return true, nil
}

// fail moves the submission to its terminal failed state and propagates the
// cause. No partial verification record or ledger entry exists at this point;
// the success path writes all three in one transaction.
func (s *EvaluationService) fail(submissionID uint, cause error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.submissions.UpdateStatus(ctx, submissionID, models.SubmissionStatusFailed); err != nil {
		s.logger.Error().Err(err).Uint("submission_id", submissionID).Msg("failed to mark submission failed")
	}

	return cause
}

func buildEvaluationInput(submission models.Submission) ai.EvaluationInput {
	input := ai.EvaluationInput{
		Task: ai.TaskContext{
			Title:              submission.Task.Title,
			Description:        submission.Task.Description,
			RequiredSkills:     submission.Task.RequiredSkills,
			Difficulty:         submission.Task.Difficulty,
			EvaluationCriteria: submission.Task.EvaluationCriteria,
		},
		SubmissionType: submission.SubmissionType,
	}

	switch submission.SubmissionType {
	case models.SubmissionTypeGithub:
		input.Repo = &ai.RepoContext{
			Owner:       submission.GithubRepo.Owner,
			Repo:        submission.GithubRepo.Repo,
			Branch:      submission.GithubRepo.Branch,
			Language:    submission.GithubRepo.Language,
			Description: submission.GithubRepo.Description,
			Readme:      submission.GithubRepo.Readme,
		}
	case models.SubmissionTypeFile:
		input.File = &ai.FileContext{
			Filename:       submission.FileUpload.Filename,
			MimeType:       submission.FileUpload.MimeType,
			Size:           submission.FileUpload.Size,
			ContentPreview: submission.FileUpload.Preview,
		}
	}

	return input
}

// contentSummary is the short informational digest logged next to each run,
// distinct from the full prompt sent to the model.
func contentSummary(submission models.Submission) string {
	switch submission.SubmissionType {
	case models.SubmissionTypeGithub:
		return fmt.Sprintf("repo %s/%s@%s lang=%s",
			submission.GithubRepo.Owner,
			submission.GithubRepo.Repo,
			submission.GithubRepo.Branch,
			submission.GithubRepo.Language)
	case models.SubmissionTypeFile:
		return fmt.Sprintf("file %s (%s, %d bytes)",
			submission.FileUpload.Filename,
			submission.FileUpload.MimeType,
			submission.FileUpload.Size)
	default:
		return "unknown submission type"
	}
}

func ledgerEntries(submission models.Submission, breakdown map[string]float64, verifiedAt time.Time) []models.VerifiedSkill {
	names := make([]string, 0, len(breakdown))
	for skill := range breakdown {
		names = append(names, skill)
	}
	sort.Strings(names)

	entries := make([]models.VerifiedSkill, 0, len(names))
	for _, skill := range names {
		entries = append(entries, models.VerifiedSkill{
			UserID:     submission.StudentID,
			TaskID:     submission.TaskID,
			Skill:      skill,
			Score:      breakdown[skill],
			VerifiedAt: verifiedAt,
		})
	}

	return entries
}

func breakdownToJSONMap(breakdown map[string]float64) datatypes.JSONMap {
	result := make(datatypes.JSONMap, len(breakdown))
	for skill, score := range breakdown {
		result[skill] = score
	}
	return result
}

func evaluationErrorKind(err error) string {
	var validation *ai.ValidationError
	var invalid *ai.InvalidResponseError
	switch {
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &invalid):
		return "parse"
	default:
		return "transport"
	}
}
