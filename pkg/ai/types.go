package ai

import "context"

// TaskContext carries the task fields embedded into the evaluation prompt.
type TaskContext struct {
	Title              string
	Description        string
	RequiredSkills     []string
	Difficulty         string
	EvaluationCriteria string
}

// RepoContext describes a repository submission using the metadata snapshot
// captured at intake time.
type RepoContext struct {
	Owner       string
	Repo        string
	Branch      string
	Language    string
	Description string
	Readme      string
}

// FileContext describes an uploaded file submission.
type FileContext struct {
	Filename       string
	MimeType       string
	Size           int64
	ContentPreview string
}

// EvaluationInput contains everything needed to grade one submission.
// Exactly one of Repo or File is set, matching SubmissionType.
type EvaluationInput struct {
	Task           TaskContext
	SubmissionType string
	Repo           *RepoContext
	File           *FileContext
}

// Verdict is the validated outcome of one evaluation call. SkillBreakdown
// keys are constrained to the task's required skills.
type Verdict struct {
	OverallScore   float64
	SkillBreakdown map[string]float64
	Strengths      []string
	Weaknesses     []string
	ResumeBullet   string
	PlagiarismRisk string
}

// Evaluation bundles the verdict with the exact prompt sent and the raw
// model output. Both are persisted verbatim for auditability.
type Evaluation struct {
	Verdict Verdict
	Prompt  string
	Raw     string
	Model   string
}

// Evaluator grades a submission against its task.
type Evaluator interface {
	Evaluate(ctx context.Context, input EvaluationInput) (Evaluation, error)
}
