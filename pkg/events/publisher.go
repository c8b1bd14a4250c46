package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// SubjectSubmissionEvaluated carries terminal evaluation outcomes for
// downstream consumers (notifications, analytics).
const SubjectSubmissionEvaluated = "submissions.evaluated"

// SubmissionEvaluated announces that an evaluation run reached its terminal
// state and a verification record exists.
type SubmissionEvaluated struct {
	SubmissionID uint      `json:"submission_id"`
	TaskID       uint      `json:"task_id"`
	StudentID    uint      `json:"student_id"`
	OverallScore float64   `json:"overall_score"`
	VerifiedAt   time.Time `json:"verified_at"`
}

// Publisher emits marketplace events over NATS.
type Publisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewPublisher connects to the NATS server at the given URL.
func NewPublisher(url string, logger zerolog.Logger) (*Publisher, error) {
	if url == "" {
		return nil, fmt.Errorf("nats url must not be empty")
	}

	conn, err := nats.Connect(url, nats.Name("skillproof-api"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	return &Publisher{
		conn:   conn,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}, nil
}

// PublishEvaluated emits a submission-evaluated event. Publishing is
// best-effort: the evaluation outcome is already durably committed by the
// time this is called.
func (p *Publisher) PublishEvaluated(ctx context.Context, event SubmissionEvaluated) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal evaluated event: %w", err)
	}

	if err := p.conn.Publish(SubjectSubmissionEvaluated, payload); err != nil {
		return fmt.Errorf("publish evaluated event: %w", err)
	}

	p.logger.Debug().Uint("submission_id", event.SubmissionID).Msg("evaluated event published")

	return nil
}

// Close drains the connection, flushing any buffered events.
func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn().Err(err).Msg("nats drain failed")
	}
}
