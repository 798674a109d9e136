package gemini

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go-interview-backend/internal/ai"
)

// parseQuestionList extracts numbered question lines ("1. text") from the
// model output in encounter order. Fewer than `total` usable lines is a
// decode failure; extra lines beyond `total` are dropped.
func parseQuestionList(raw string, total int) ([]string, error) {
	var questions []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !unicode.IsDigit(rune(line[0])) {
			continue
		}
		_, text, found := strings.Cut(line, ".")
		if !found {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		questions = append(questions, text)
		if len(questions) == total {
			break
		}
	}

	if len(questions) < total {
		return nil, fmt.Errorf("model returned %d questions, need %d", len(questions), total)
	}
	return questions, nil
}

// parseEvaluation extracts the SCORE and FEEDBACK lines. Both are required;
// the score is clamped into [0,10]. A partially matched response is a decode
// failure, never a silently propagated number.
func parseEvaluation(raw string) (*ai.Evaluation, error) {
	var (
		score    float64
		feedback string
		hasScore bool
	)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SCORE:"):
			value, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "SCORE:")), 64)
			if err != nil {
				return nil, fmt.Errorf("malformed score line %q", line)
			}
			score = clamp(value, 0, 10)
			hasScore = true
		case strings.HasPrefix(line, "FEEDBACK:"):
			feedback = strings.TrimSpace(strings.TrimPrefix(line, "FEEDBACK:"))
		}
	}

	if !hasScore {
		return nil, errors.New("no SCORE line in model response")
	}
	if feedback == "" {
		return nil, errors.New("no FEEDBACK line in model response")
	}
	return &ai.Evaluation{Score: score, Feedback: feedback}, nil
}

// parseSummary extracts the FINAL_SCORE and SUMMARY lines, clamping the
// score into [0,100].
func parseSummary(raw string) (*ai.Summary, error) {
	var (
		finalScore float64
		text       string
		hasScore   bool
	)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "FINAL_SCORE:"):
			value, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "FINAL_SCORE:")), 64)
			if err != nil {
				return nil, fmt.Errorf("malformed final score line %q", line)
			}
			finalScore = clamp(value, 0, 100)
			hasScore = true
		case strings.HasPrefix(line, "SUMMARY:"):
			text = strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:"))
		}
	}

	if !hasScore {
		return nil, errors.New("no FINAL_SCORE line in model response")
	}
	if text == "" {
		return nil, errors.New("no SUMMARY line in model response")
	}
	return &ai.Summary{FinalScore: finalScore, Text: text}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
