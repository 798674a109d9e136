package gemini

import (
	"fmt"
	"strings"

	"go-interview-backend/internal/ai"
	"go-interview-backend/internal/domain"
)

func questionPrompt(track, resumeText string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate %d technical interview questions for a %s position.\n",
		domain.TotalQuestions, domain.TrackDisplayName(track))

	if strings.TrimSpace(resumeText) != "" {
		b.WriteString("\nCANDIDATE'S RESUME:\n")
		b.WriteString(resumeText)
		b.WriteString("\n\nTailor the questions to the candidate's background and experience level.\n")
	}

	b.WriteString(`
Return exactly 6 questions in this format:

EASY QUESTIONS:
1. [Question 1]
2. [Question 2]

MEDIUM QUESTIONS:
3. [Question 3]
4. [Question 4]

HARD QUESTIONS:
5. [Question 5]
6. [Question 6]

Requirements:
- Questions must be technical and relevant to the role
- Easy questions test basic concepts
- Medium questions require some problem-solving
- Hard questions challenge deep understanding
- Each question must be clear and concise
`)

	return b.String()
}

func scorePrompt(question, answer string, difficulty domain.Difficulty) string {
	return fmt.Sprintf(`Evaluate this technical interview answer as an expert interviewer:

Question: %s
Difficulty: %s
Candidate's Answer: %s

Evaluate the answer on technical accuracy, completeness, relevance, and
clarity. Be strict: a nonsense answer scores 0-2, a partially correct one
5-6, an excellent comprehensive one 9-10.

Provide ONLY the score and feedback in this exact format:
SCORE: [single number 0-10]
FEEDBACK: [2-3 sentences explaining the evaluation and suggestions]
`, question, difficulty, answer)
}

func summaryPrompt(track string, results []ai.QuestionResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Based on this %s interview, provide:\n\n", domain.TrackDisplayName(track))
	b.WriteString("1. A final holistic score from 0-100 (weighted average considering difficulty)\n")
	b.WriteString("2. A qualitative summary (3-4 sentences) of the candidate's overall performance\n\n")
	b.WriteString("Interview Details:\n")

	for _, r := range results {
		fmt.Fprintf(&b, "Q (%s): %s\nA: %s\nScore: %.1f/10\n\n", r.Difficulty, r.Question, r.Answer, r.Score)
	}

	b.WriteString("Format your response as:\nFINAL_SCORE: [number]\nSUMMARY: [your summary here]\n")

	return b.String()
}
