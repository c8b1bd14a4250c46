package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skillproof",
		Subsystem: "ai",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of AI evaluation requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skillproof",
		Subsystem: "ai",
		Name:      "evaluation_failures_total",
		Help:      "Number of AI evaluation failures",
	}, []string{"model", "kind"})
)

// OpenAIConfig defines configuration options for the OpenAI evaluator.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIEvaluator implements Evaluator against the OpenAI chat completion API.
type OpenAIEvaluator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIEvaluator builds a new evaluator using the provided configuration.
func NewOpenAIEvaluator(cfg OpenAIConfig) (*OpenAIEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}

	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}

	tracer := otel.Tracer("github.com/skillproof/skillproof-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIEvaluator{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Evaluate builds the evaluation prompt, sends it to OpenAI and returns the
// validated verdict along with the prompt and raw response text.
func (e *OpenAIEvaluator) Evaluate(parent context.Context, input EvaluationInput) (Evaluation, error) {
	ctx, span := e.tracer.Start(parent, "openai.evaluate", trace.WithAttributes(
		attribute.String("model", e.cfg.Model),
		attribute.String("submission_type", input.SubmissionType),
	))
	defer span.End()

	prompt := BuildEvaluationPrompt(input)

	request := openai.ChatCompletionRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: evaluatorSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(e.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return Evaluation{}, e.fail(span, "transport", fmt.Errorf("openai evaluate: %w", err))
	}

	if len(resp.Choices) == 0 {
		return Evaluation{}, e.fail(span, "contract", &InvalidResponseError{Cause: fmt.Errorf("no choices returned from openai")})
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	verdict, err := ParseVerdict(content, input.Task.RequiredSkills)
	if err != nil {
		return Evaluation{}, e.fail(span, "contract", err)
	}

	return Evaluation{
		Verdict: verdict,
		Prompt:  prompt,
		Raw:     content,
		Model:   e.cfg.Model,
	}, nil
}

func (e *OpenAIEvaluator) fail(span trace.Span, kind string, err error) error {
	aiFailures.WithLabelValues(e.cfg.Model, kind).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func evaluatorSystemPrompt() string {
	return "You are an expert technical evaluator for student submissions. You must return ONLY valid JSON in the exact for" +
		"mat specified. Do not include any markdown formatting, code blocks, or additional text."
}
