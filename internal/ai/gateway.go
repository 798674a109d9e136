package ai

import (
	"context"
	"errors"

	"go-interview-backend/internal/domain"
)

// ErrUnavailable signals that the generative model could not produce a
// usable result (transport failure, timeout, or unparseable output). It is
// always absorbed by the caller via the fallback engine and never reaches
// the delivery layer.
var ErrUnavailable = errors.New("ai: provider unavailable")

// Evaluation is the structured result of scoring one answer.
type Evaluation struct {
	Score    float64 // [0,10]
	Feedback string
}

// Summary is the structured result of the final holistic evaluation.
type Summary struct {
	FinalScore float64 // [0,100]
	Text       string
}

// QuestionResult is one evaluated question fed into Summarize.
type QuestionResult struct {
	Question   string
	Answer     string
	Score      float64
	Difficulty domain.Difficulty
}

// Gateway mediates all calls to the generative model. Implementations are
// stateless across calls and make exactly one remote attempt per operation
// under a bounded timeout.
type Gateway interface {
	// GenerateQuestions returns exactly domain.TotalQuestions questions with
	// difficulties assigned by the tiering policy, not by the model.
	GenerateQuestions(ctx context.Context, track, resumeText string) ([]domain.PlannedQuestion, error)
	ScoreAnswer(ctx context.Context, question, answer string, difficulty domain.Difficulty) (*Evaluation, error)
	Summarize(ctx context.Context, track string, results []QuestionResult) (*Summary, error)
}

// Disabled is the gateway variant used when no API key is configured. Every
// operation reports ErrUnavailable so the fallback engine serves the whole
// process lifetime.
type Disabled struct{}

func NewDisabled() *Disabled { return &Disabled{} }

func (*Disabled) GenerateQuestions(context.Context, string, string) ([]domain.PlannedQuestion, error) {
	return nil, ErrUnavailable
}

func (*Disabled) ScoreAnswer(context.Context, string, string, domain.Difficulty) (*Evaluation, error) {
	return nil, ErrUnavailable
}

func (*Disabled) Summarize(context.Context, string, []QuestionResult) (*Summary, error) {
	return nil, ErrUnavailable
}
