// Package fallback is the deterministic, AI-free substitute for question
// generation, answer scoring, and summary generation. It serves whenever the
// gateway is unconfigured or signals unavailability, and always yields
// identical output for identical input.
package fallback

import (
	"fmt"
	"strings"

	"go-interview-backend/internal/domain"
)

type Engine struct{}

func New() *Engine { return &Engine{} }

var questionBanks = map[string][]string{
	domain.TrackFrontend: {
		"What is HTML?",
		"What is CSS?",
		"Explain the box model in CSS.",
		"What is responsive design?",
		"How does the virtual DOM work in React?",
		"Explain CSS Grid vs Flexbox.",
	},
	domain.TrackBackend: {
		"What is a database?",
		"What is an API?",
		"Explain REST vs GraphQL.",
		"What is authentication vs authorization?",
		"How would you design a scalable microservices architecture?",
		"Explain database indexing and its importance.",
	},
	domain.TrackDataAnalyst: {
		"What is SQL?",
		"What is data visualization?",
		"Explain the difference between inner and outer joins.",
		"What is data normalization?",
		"How would you handle missing data in a dataset?",
		"Explain A/B testing and its statistical significance.",
	},
}

// Questions returns the fixed 6-question bank for the track, tiered by
// position. Unrecognized tracks use the frontend bank.
func (e *Engine) Questions(track string) []domain.PlannedQuestion {
	bank, ok := questionBanks[track]
	if !ok {
		bank = questionBanks[domain.TrackFrontend]
	}

	plan := make([]domain.PlannedQuestion, len(bank))
	for i, question := range bank {
		difficulty, _ := domain.TierForPosition(i + 1)
		plan[i] = domain.PlannedQuestion{Difficulty: difficulty, Question: question}
	}
	return plan
}

// topic couples a question keyword with the tokens that flag a likely wrong
// answer and the keywords expected in a good one. Topics are scanned in
// fixed order so scoring stays deterministic.
type topic struct {
	name     string
	wrong    []string
	expected []string
}

var topics = []topic{
	{
		name:     "html",
		wrong:    []string{"hut", "cut", "but", "put", "gut", "hot", "hit", "hat"},
		expected: []string{"markup", "language", "web", "structure", "hypertext"},
	},
	{
		name:     "css",
		wrong:    []string{"sis", "cus", "cos", "ces", "cuss"},
		expected: []string{"style", "stylesheet", "design", "layout", "cascading"},
	},
	{
		name:     "javascript",
		wrong:    []string{"java script", "java-script", "java scrip"},
		expected: []string{"programming", "language", "client", "browser", "dynamic"},
	},
	{
		name:     "python",
		wrong:    []string{"pithon", "pyton", "snake"},
		expected: []string{"programming", "language", "versatile", "scripting", "general-purpose"},
	},
	{
		name:     "database",
		wrong:    []string{"data base", "data-base", "data file", "file storage"},
		expected: []string{"data", "storage", "management", "tables", "queries"},
	},
	{
		name:     "api",
		wrong:    []string{"a p i", "app interface", "web service only"},
		expected: []string{"interface", "communication", "web", "services", "endpoints"},
	},
}

var dontKnowPhrases = []string{
	"i don't know", "i dont know", "no idea", "not sure", "i have no idea", "i'm not sure",
}

// Score applies the layered heuristic, first match wins: wrong-token table,
// too-short answer, don't-know admission, expected-keyword fraction, generic
// default. The difficulty parameter mirrors the gateway signature; the
// heuristic itself is difficulty-independent.
func (e *Engine) Score(question, answer string, _ domain.Difficulty) (float64, string) {
	answer = strings.ToLower(strings.TrimSpace(answer))
	question = strings.ToLower(question)

	for _, t := range topics {
		if !strings.Contains(question, t.name) {
			continue
		}
		for _, wrong := range t.wrong {
			if strings.Contains(answer, wrong) {
				return 1.0, "This answer appears to be incorrect. Please review the concept and provide a more accurate response."
			}
		}
	}

	if len(answer) < 5 {
		return 2.0, "Answer is too brief. Please provide more detail about the concept."
	}

	for _, phrase := range dontKnowPhrases {
		if strings.Contains(answer, phrase) {
			return 1.0, "It's better to attempt an answer than to admit you don't know. Consider what you do understand about the topic."
		}
	}

	for _, t := range topics {
		if !strings.Contains(question, t.name) {
			continue
		}
		matched := 0
		for _, keyword := range t.expected {
			if strings.Contains(answer, keyword) {
				matched++
			}
		}
		fraction := float64(matched) / float64(len(t.expected))
		switch {
		case fraction >= 0.6:
			return 8.0, "Good answer with relevant technical details."
		case fraction >= 0.3:
			return 6.0, "Basic understanding shown, but could use more technical detail."
		default:
			return 4.0, "Answer lacks key technical concepts. Consider studying the fundamentals."
		}
	}

	return 5.0, "Answer provided basic information. Consider adding more technical depth."
}

// Summarize rescales the average per-question score to 0-100 and picks the
// banded summary text for the track.
func (e *Engine) Summarize(track string, scores []float64) (float64, string) {
	if len(scores) == 0 {
		return 0, "No answers provided for evaluation."
	}

	var total float64
	for _, s := range scores {
		total += s
	}
	finalScore := total / float64(len(scores)) * 10

	role := domain.TrackDisplayName(track)
	var summary string
	switch {
	case finalScore >= 80:
		summary = fmt.Sprintf("Excellent performance in %s interview. Strong technical knowledge and problem-solving skills demonstrated.", role)
	case finalScore >= 70:
		summary = fmt.Sprintf("Good performance in %s interview. Solid understanding of core concepts with room for improvement in advanced topics.", role)
	case finalScore >= 60:
		summary = fmt.Sprintf("Adequate performance in %s interview. Basic knowledge demonstrated but needs strengthening in several areas.", role)
	case finalScore >= 50:
		summary = fmt.Sprintf("Below average performance in %s interview. Foundational knowledge present but significant gaps in understanding.", role)
	default:
		summary = fmt.Sprintf("Poor performance in %s interview. Consider additional training and preparation before reapplying.", role)
	}

	return finalScore, summary
}
