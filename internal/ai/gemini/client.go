package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"go-interview-backend/internal/ai"
	"go-interview-backend/internal/domain"
	"go-interview-backend/pkg/logger"
)

const (
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 20 * time.Second

	// Resume text is truncated before prompting to respect token limits.
	maxResumeRunes = 2000
)

// Gateway is the live ai.Gateway backed by the Gemini API. Each operation
// makes a single remote call bounded by the configured timeout; any failure
// or unparseable response is reported as ai.ErrUnavailable.
type Gateway struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
}

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// New creates a Gateway configured for the Gemini API backend.
func New(ctx context.Context, cfg Config) (*Gateway, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Gateway{client: client, modelName: model, timeout: timeout}, nil
}

func (g *Gateway) GenerateQuestions(ctx context.Context, track, resumeText string) ([]domain.PlannedQuestion, error) {
	prompt := questionPrompt(track, truncateRunes(resumeText, maxResumeRunes))

	raw, err := g.generateContent(ctx, prompt)
	if err != nil {
		return nil, unavailable("generate questions", err)
	}

	texts, err := parseQuestionList(raw, domain.TotalQuestions)
	if err != nil {
		return nil, unavailable("parse question list", err)
	}

	// Difficulty comes from the tiering policy, never from the model.
	plan := make([]domain.PlannedQuestion, len(texts))
	for i, text := range texts {
		difficulty, _ := domain.TierForPosition(i + 1)
		plan[i] = domain.PlannedQuestion{Difficulty: difficulty, Question: text}
	}
	return plan, nil
}

func (g *Gateway) ScoreAnswer(ctx context.Context, question, answer string, difficulty domain.Difficulty) (*ai.Evaluation, error) {
	prompt := scorePrompt(question, answer, difficulty)

	raw, err := g.generateContent(ctx, prompt)
	if err != nil {
		return nil, unavailable("score answer", err)
	}

	eval, err := parseEvaluation(raw)
	if err != nil {
		return nil, unavailable("parse evaluation", err)
	}
	return eval, nil
}

func (g *Gateway) Summarize(ctx context.Context, track string, results []ai.QuestionResult) (*ai.Summary, error) {
	prompt := summaryPrompt(track, results)

	raw, err := g.generateContent(ctx, prompt)
	if err != nil {
		return nil, unavailable("summarize", err)
	}

	summary, err := parseSummary(raw)
	if err != nil {
		return nil, unavailable("parse summary", err)
	}
	return summary, nil
}

// generateContent makes the single bounded remote call and flattens the
// response candidates into one text blob.
func (g *Gateway) generateContent(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("empty model response")
	}
	return output, nil
}

func unavailable(op string, err error) error {
	logger.Log.Warn("gemini gateway degraded", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %v", ai.ErrUnavailable, op, err)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
