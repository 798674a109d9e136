package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-interview-backend/internal/ai"
	"go-interview-backend/internal/ai/fallback"
	"go-interview-backend/internal/domain"
	"go-interview-backend/internal/notify"
	"go-interview-backend/pkg/apperror"
	"go-interview-backend/pkg/logger"
)

type interviewUsecase struct {
	sessions   domain.InterviewRepository
	candidates domain.CandidateRepository
	gateway    ai.Gateway
	fallback   *fallback.Engine
	publisher  notify.Publisher
}

func NewInterviewUsecase(
	sessions domain.InterviewRepository,
	candidates domain.CandidateRepository,
	gateway ai.Gateway,
	fb *fallback.Engine,
	publisher notify.Publisher,
) domain.InterviewUsecase {
	return &interviewUsecase{
		sessions:   sessions,
		candidates: candidates,
		gateway:    gateway,
		fallback:   fb,
		publisher:  publisher,
	}
}

// Start transitions a not_started session into in_progress: the full
// question plan is generated once, persisted on the session, and the first
// question record is created, all atomically.
func (u *interviewUsecase) Start(ctx context.Context, sessionID uuid.UUID) (*domain.QuestionPrompt, error) {
	s, err := u.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, mapNotFound(err, "Interview session not found")
	}

	switch s.Status {
	case domain.StatusNotStarted:
		// proceed
	case domain.StatusInProgress:
		return nil, apperror.Conflict("Interview is already in progress")
	case domain.StatusCompleted:
		return nil, apperror.Conflict("Interview has already been completed")
	case domain.StatusAbandoned:
		return nil, apperror.Conflict("Interview was abandoned; resume it instead")
	default:
		return nil, apperror.Conflict(fmt.Sprintf("Interview cannot be started from status %q", s.Status))
	}

	if err := u.ensureNoOtherActive(ctx, s); err != nil {
		return nil, err
	}

	candidate, err := u.candidates.GetByID(ctx, s.CandidateID)
	if err != nil {
		return nil, mapNotFound(err, "Candidate not found")
	}

	now := time.Now().UTC()
	s.QuestionPlan = u.questionPlan(ctx, s.Track, candidate.ResumeText)
	s.Status = domain.StatusInProgress
	s.StartedAt = &now
	s.CurrentQuestion = 1

	first := u.materialize(s, 1, now)

	events := []domain.ChatEvent{
		{
			SessionID: s.ID,
			Type:      domain.EventSystem,
			Content:   fmt.Sprintf("Interview started. You will be asked %d questions: 2 Easy, 2 Medium, 2 Hard.", domain.TotalQuestions),
		},
		questionEvent(first),
	}

	if err := u.sessions.StartSession(ctx, s, domain.StatusNotStarted, first, events); err != nil {
		return nil, mapConflict(err, "Interview was started concurrently")
	}

	u.publisher.Publish(ctx, notify.Event{
		Type:      "session.started",
		SessionID: s.ID.String(),
		Payload:   map[string]any{"track": s.Track, "candidate_id": s.CandidateID.String()},
	})

	return prompt(s, first), nil
}

// SubmitAnswer records the answer at the current index together with its
// evaluation, then either advances to the next question or completes the
// session. Answers are write-once; a duplicate submission is a conflict.
func (u *interviewUsecase) SubmitAnswer(ctx context.Context, sessionID uuid.UUID, answer string, timeTaken int) (*domain.SubmitOutcome, error) {
	s, err := u.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, mapNotFound(err, "Interview session not found")
	}

	if s.Status != domain.StatusInProgress {
		return nil, apperror.Conflict("Interview is not in progress")
	}

	current, err := u.sessions.GetQuestion(ctx, s.ID, s.CurrentQuestion)
	if err != nil {
		return nil, mapNotFound(err, "No active question for this session")
	}
	if current.AnswerText != nil {
		return nil, apperror.Conflict("Answer already submitted for this question")
	}

	eval := u.evaluate(ctx, current.QuestionText, answer, current.Difficulty)

	now := time.Now().UTC()
	position := s.CurrentQuestion
	update := &domain.AnswerUpdate{
		AnswerText: answer,
		TimeTaken:  timeTaken,
		Score:      eval.Score,
		Feedback:   eval.Feedback,
		AnsweredAt: now,
	}

	answerEvent := domain.ChatEvent{
		SessionID: s.ID,
		Type:      domain.EventAnswer,
		Content:   answer,
		Metadata:  map[string]any{"position": position, "score": eval.Score},
	}

	if position >= domain.TotalQuestions {
		return u.complete(ctx, s, current, update, eval, answerEvent)
	}

	s.CurrentQuestion = position + 1
	next := u.materialize(s, s.CurrentQuestion, now)
	events := []domain.ChatEvent{answerEvent, questionEvent(next)}

	if err := u.sessions.AnswerAndAdvance(ctx, s, position, update, next, events); err != nil {
		return nil, mapConflict(err, "Answer already submitted for this question")
	}

	u.publisher.Publish(ctx, notify.Event{
		Type:      "answer.scored",
		SessionID: s.ID.String(),
		Payload:   map[string]any{"position": position, "score": eval.Score},
	})
	u.publisher.Publish(ctx, notify.Event{
		Type:      "question.asked",
		SessionID: s.ID.String(),
		Payload:   map[string]any{"position": next.Position, "difficulty": next.Difficulty},
	})

	return &domain.SubmitOutcome{
		Score:    eval.Score,
		Feedback: eval.Feedback,
		Next:     prompt(s, next),
	}, nil
}

// complete finishes the session after the final answer: the holistic score
// and summary are produced (gateway then fallback) and written atomically
// with the last answer.
func (u *interviewUsecase) complete(
	ctx context.Context,
	s *domain.InterviewSession,
	current *domain.QuestionRecord,
	update *domain.AnswerUpdate,
	eval *ai.Evaluation,
	answerEvent domain.ChatEvent,
) (*domain.SubmitOutcome, error) {
	results, err := u.collectResults(ctx, s, current, update)
	if err != nil {
		return nil, err
	}

	summary := u.summarize(ctx, s.Track, results)

	now := update.AnsweredAt
	s.Status = domain.StatusCompleted
	s.CompletedAt = &now
	s.FinalScore = &summary.FinalScore
	s.Summary = &summary.Text

	events := []domain.ChatEvent{
		answerEvent,
		{
			SessionID: s.ID,
			Type:      domain.EventSystem,
			Content:   fmt.Sprintf("Interview completed! Final score: %.1f/100", summary.FinalScore),
			Metadata:  map[string]any{"final_score": summary.FinalScore},
		},
	}

	if err := u.sessions.AnswerAndAdvance(ctx, s, current.Position, update, nil, events); err != nil {
		return nil, mapConflict(err, "Answer already submitted for this question")
	}

	u.publisher.Publish(ctx, notify.Event{
		Type:      "session.completed",
		SessionID: s.ID.String(),
		Payload:   map[string]any{"final_score": summary.FinalScore},
	})

	return &domain.SubmitOutcome{
		Score:      eval.Score,
		Feedback:   eval.Feedback,
		Completed:  true,
		FinalScore: &summary.FinalScore,
		Summary:    &summary.Text,
	}, nil
}

// Abandon parks an in_progress session; it can be resumed later.
func (u *interviewUsecase) Abandon(ctx context.Context, sessionID uuid.UUID) error {
	if err := u.sessions.SetStatus(ctx, sessionID, domain.StatusInProgress, domain.StatusAbandoned); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Interview session not found")
		}
		return mapConflict(err, "Only an in-progress interview can be abandoned")
	}

	u.publisher.Publish(ctx, notify.Event{Type: "session.abandoned", SessionID: sessionID.String()})
	return nil
}

// Resume re-enters an abandoned session and returns the recovery snapshot.
func (u *interviewUsecase) Resume(ctx context.Context, sessionID uuid.UUID) (*domain.SessionSnapshot, error) {
	s, err := u.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, mapNotFound(err, "Interview session not found")
	}
	if s.Status != domain.StatusAbandoned {
		return nil, apperror.Conflict("Only an abandoned interview can be resumed")
	}
	if err := u.ensureNoOtherActive(ctx, s); err != nil {
		return nil, err
	}

	if err := u.sessions.SetStatus(ctx, sessionID, domain.StatusAbandoned, domain.StatusInProgress); err != nil {
		return nil, mapConflict(err, "Interview status changed concurrently")
	}

	u.publisher.Publish(ctx, notify.Event{Type: "session.resumed", SessionID: sessionID.String()})

	return u.CheckRecoverable(ctx, sessionID)
}

// CheckRecoverable is a pure read used by reconnecting clients: it returns
// the session status, index, and current question without mutating anything
// and without re-invoking the gateway.
func (u *interviewUsecase) CheckRecoverable(ctx context.Context, sessionID uuid.UUID) (*domain.SessionSnapshot, error) {
	s, err := u.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, mapNotFound(err, "Interview session not found")
	}

	snapshot := &domain.SessionSnapshot{
		SessionID:       s.ID,
		CandidateID:     s.CandidateID,
		Track:           s.Track,
		Status:          s.Status,
		CurrentQuestion: s.CurrentQuestion,
		TotalQuestions:  domain.TotalQuestions,
		FinalScore:      s.FinalScore,
		Summary:         s.Summary,
	}

	if s.CurrentQuestion >= 1 && s.Status != domain.StatusCompleted {
		question, err := u.sessions.GetQuestion(ctx, s.ID, s.CurrentQuestion)
		if err == nil {
			snapshot.Question = prompt(s, question)
		}
	}

	return snapshot, nil
}

// questionPlan asks the gateway for the full tiered plan and falls back to
// the deterministic bank when the model is unavailable. Tiering is enforced
// positionally regardless of which source produced the questions.
func (u *interviewUsecase) questionPlan(ctx context.Context, track, resumeText string) []domain.PlannedQuestion {
	plan, err := u.gateway.GenerateQuestions(ctx, track, resumeText)
	if err != nil {
		logger.Log.Info("question generation fell back to the static bank", "track", track, "error", err)
		plan = u.fallback.Questions(track)
	}

	for i := range plan {
		plan[i].Difficulty, _ = domain.TierForPosition(i + 1)
	}
	return plan
}

// evaluate scores one answer, gateway first, deterministic heuristic on any
// gateway failure. The caller never learns which path produced the result.
func (u *interviewUsecase) evaluate(ctx context.Context, question, answer string, difficulty domain.Difficulty) *ai.Evaluation {
	eval, err := u.gateway.ScoreAnswer(ctx, question, answer, difficulty)
	if err == nil {
		return eval
	}
	logger.Log.Info("answer scoring fell back to heuristics", "error", err)

	score, feedback := u.fallback.Score(question, answer, difficulty)
	return &ai.Evaluation{Score: score, Feedback: feedback}
}

func (u *interviewUsecase) summarize(ctx context.Context, track string, results []ai.QuestionResult) *ai.Summary {
	summary, err := u.gateway.Summarize(ctx, track, results)
	if err == nil {
		return summary
	}
	logger.Log.Info("final summary fell back to score bands", "error", err)

	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	finalScore, text := u.fallback.Summarize(track, scores)
	return &ai.Summary{FinalScore: finalScore, Text: text}
}

// collectResults assembles the evaluated sequence for Summarize: every
// stored answered record plus the in-flight final answer.
func (u *interviewUsecase) collectResults(ctx context.Context, s *domain.InterviewSession, current *domain.QuestionRecord, update *domain.AnswerUpdate) ([]ai.QuestionResult, error) {
	records, err := u.sessions.ListQuestions(ctx, s.ID)
	if err != nil {
		return nil, err
	}

	results := make([]ai.QuestionResult, 0, len(records))
	for _, r := range records {
		if r.Position == current.Position {
			results = append(results, ai.QuestionResult{
				Question:   r.QuestionText,
				Answer:     update.AnswerText,
				Score:      update.Score,
				Difficulty: r.Difficulty,
			})
			continue
		}
		if r.AnswerText == nil || r.Score == nil {
			continue
		}
		results = append(results, ai.QuestionResult{
			Question:   r.QuestionText,
			Answer:     *r.AnswerText,
			Score:      *r.Score,
			Difficulty: r.Difficulty,
		})
	}
	return results, nil
}

// materialize builds the question record for a position from the persisted
// plan. A missing or blank plan slot is served from the fallback bank so an
// interview can always proceed.
func (u *interviewUsecase) materialize(s *domain.InterviewSession, position int, now time.Time) *domain.QuestionRecord {
	difficulty, seconds := domain.TierForPosition(position)

	var text string
	if position-1 < len(s.QuestionPlan) {
		text = strings.TrimSpace(s.QuestionPlan[position-1].Question)
	}
	if text == "" {
		text = u.fallback.Questions(s.Track)[position-1].Question
	}

	return &domain.QuestionRecord{
		SessionID:     s.ID,
		Position:      position,
		Difficulty:    difficulty,
		QuestionText:  text,
		TimeAllocated: seconds,
		AskedAt:       now,
	}
}

// ensureNoOtherActive enforces that a candidate holds at most one
// in_progress session per track.
func (u *interviewUsecase) ensureNoOtherActive(ctx context.Context, s *domain.InterviewSession) error {
	active, err := u.sessions.GetActiveSession(ctx, s.CandidateID, s.Track)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if active.ID != s.ID {
		return apperror.Conflict("Another interview for this track is already in progress")
	}
	return nil
}

func prompt(s *domain.InterviewSession, q *domain.QuestionRecord) *domain.QuestionPrompt {
	return &domain.QuestionPrompt{
		SessionID:      s.ID,
		Position:       q.Position,
		TotalQuestions: domain.TotalQuestions,
		Difficulty:     q.Difficulty,
		Question:       q.QuestionText,
		TimeAllocated:  q.TimeAllocated,
	}
}

func questionEvent(q *domain.QuestionRecord) domain.ChatEvent {
	return domain.ChatEvent{
		SessionID: q.SessionID,
		Type:      domain.EventQuestion,
		Content:   q.QuestionText,
		Metadata:  map[string]any{"position": q.Position, "time_allocated": q.TimeAllocated},
	}
}
