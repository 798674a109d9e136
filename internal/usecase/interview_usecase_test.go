package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-interview-backend/internal/ai"
	"go-interview-backend/internal/ai/fallback"
	"go-interview-backend/internal/domain"
	"go-interview-backend/internal/notify"
	"go-interview-backend/internal/usecase"
)

func newInterviewUC(sessions *MockInterviewRepo, candidates *MockCandidateRepo, gateway ai.Gateway) domain.InterviewUsecase {
	return usecase.NewInterviewUsecase(sessions, candidates, gateway, fallback.New(), notify.NewNoop())
}

func notStartedSession(candidateID uuid.UUID, track string) *domain.InterviewSession {
	return &domain.InterviewSession{
		ID:          uuid.New(),
		CandidateID: candidateID,
		Track:       track,
		Status:      domain.StatusNotStarted,
	}
}

func TestStart(t *testing.T) {
	ctx := context.Background()
	candidateID := uuid.New()

	t.Run("Should start with the fallback bank when the gateway is disabled", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		candidates := new(MockCandidateRepo)
		s := notStartedSession(candidateID, domain.TrackFrontend)

		sessions.On("GetSession", ctx, s.ID).Return(s, nil)
		sessions.On("GetActiveSession", ctx, candidateID, domain.TrackFrontend).Return(nil, domain.ErrNotFound)
		candidates.On("GetByID", ctx, candidateID).Return(&domain.Candidate{ID: candidateID}, nil)
		sessions.On("StartSession", ctx, s, domain.StatusNotStarted,
			mock.AnythingOfType("*domain.QuestionRecord"), mock.AnythingOfType("[]domain.ChatEvent")).Return(nil)

		uc := newInterviewUC(sessions, candidates, ai.NewDisabled())
		prompt, err := uc.Start(ctx, s.ID)

		require.NoError(t, err)
		assert.Equal(t, 1, prompt.Position)
		assert.Equal(t, domain.TotalQuestions, prompt.TotalQuestions)
		assert.Equal(t, domain.DifficultyEasy, prompt.Difficulty)
		assert.Equal(t, 20, prompt.TimeAllocated)
		assert.Equal(t, "What is HTML?", prompt.Question)

		assert.Equal(t, domain.StatusInProgress, s.Status)
		assert.Equal(t, 1, s.CurrentQuestion)
		assert.Len(t, s.QuestionPlan, domain.TotalQuestions)
		assert.NotNil(t, s.StartedAt)
		sessions.AssertExpectations(t)
	})

	t.Run("Should enforce positional tiering over model-declared difficulties", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		candidates := new(MockCandidateRepo)
		gateway := new(MockGateway)
		s := notStartedSession(candidateID, domain.TrackBackend)

		plan := make([]domain.PlannedQuestion, domain.TotalQuestions)
		for i := range plan {
			// The model labels everything hard; the tiering policy must win.
			plan[i] = domain.PlannedQuestion{Difficulty: domain.DifficultyHard, Question: "model question"}
		}
		gateway.On("GenerateQuestions", ctx, domain.TrackBackend, "resume body").Return(plan, nil)

		sessions.On("GetSession", ctx, s.ID).Return(s, nil)
		sessions.On("GetActiveSession", ctx, candidateID, domain.TrackBackend).Return(nil, domain.ErrNotFound)
		candidates.On("GetByID", ctx, candidateID).Return(&domain.Candidate{ID: candidateID, ResumeText: "resume body"}, nil)
		sessions.On("StartSession", ctx, s, domain.StatusNotStarted,
			mock.AnythingOfType("*domain.QuestionRecord"), mock.AnythingOfType("[]domain.ChatEvent")).Return(nil)

		uc := newInterviewUC(sessions, candidates, gateway)
		prompt, err := uc.Start(ctx, s.ID)

		require.NoError(t, err)
		assert.Equal(t, domain.DifficultyEasy, prompt.Difficulty)
		assert.Equal(t, domain.DifficultyEasy, s.QuestionPlan[0].Difficulty)
		assert.Equal(t, domain.DifficultyMedium, s.QuestionPlan[2].Difficulty)
		assert.Equal(t, domain.DifficultyHard, s.QuestionPlan[5].Difficulty)
	})

	t.Run("Should reject starting an in-progress interview", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		s := notStartedSession(candidateID, domain.TrackFrontend)
		s.Status = domain.StatusInProgress
		sessions.On("GetSession", ctx, s.ID).Return(s, nil)

		uc := newInterviewUC(sessions, new(MockCandidateRepo), ai.NewDisabled())
		_, err := uc.Start(ctx, s.ID)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already in progress")
	})

	t.Run("Should reject starting a completed interview", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		s := notStartedSession(candidateID, domain.TrackFrontend)
		s.Status = domain.StatusCompleted
		sessions.On("GetSession", ctx, s.ID).Return(s, nil)

		uc := newInterviewUC(sessions, new(MockCandidateRepo), ai.NewDisabled())
		_, err := uc.Start(ctx, s.ID)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already been completed")
	})

	t.Run("Should point an abandoned interview at resume instead", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		s := notStartedSession(candidateID, domain.TrackFrontend)
		s.Status = domain.StatusAbandoned
		sessions.On("GetSession", ctx, s.ID).Return(s, nil)

		uc := newInterviewUC(sessions, new(MockCandidateRepo), ai.NewDisabled())
		_, err := uc.Start(ctx, s.ID)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "resume it instead")
	})

	t.Run("Should reject a second active session for the same track", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		s := notStartedSession(candidateID, domain.TrackFrontend)
		other := notStartedSession(candidateID, domain.TrackFrontend)
		other.Status = domain.StatusInProgress

		sessions.On("GetSession", ctx, s.ID).Return(s, nil)
		sessions.On("GetActiveSession", ctx, candidateID, domain.TrackFrontend).Return(other, nil)

		uc := newInterviewUC(sessions, new(MockCandidateRepo), ai.NewDisabled())
		_, err := uc.Start(ctx, s.ID)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already in progress")
	})
}

func inProgressSession(candidateID uuid.UUID, position int) *domain.InterviewSession {
	now := time.Now().UTC()
	return &domain.InterviewSession{
		ID:              uuid.New(),
		CandidateID:     candidateID,
		Track:           domain.TrackFrontend,
		Status:          domain.StatusInProgress,
		CurrentQuestion: position,
		StartedAt:       &now,
	}
}

func unansweredQuestion(s *domain.InterviewSession, position int, text string) *domain.QuestionRecord {
	difficulty, seconds := domain.TierForPosition(position)
	return &domain.QuestionRecord{
		ID:            int64(position),
		SessionID:     s.ID,
		Position:      position,
		Difficulty:    difficulty,
		QuestionText:  text,
		TimeAllocated: seconds,
		AskedAt:       time.Now().UTC(),
	}
}

func TestSubmitAnswer(t *testing.T) {
	ctx := context.Background()
	candidateID := uuid.New()

	t.Run("Should record the answer and advance to the next question", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		s := inProgressSession(candidateID, 2)
		current := unansweredQuestion(s, 2, "What is CSS?")

		sessions.On("GetSession", ctx, s.ID).Return(s, nil)
		sessions.On("GetQuestion", ctx, s.ID, 2).Return(current, nil)

		var captured *domain.QuestionRecord
		sessions.On("AnswerAndAdvance", ctx, s, 2, mock.AnythingOfType("*domain.AnswerUpdate"),
			mock.AnythingOfType("*domain.QuestionRecord"), mock.AnythingOfType("[]domain.ChatEvent")).
			Return(nil).
			Run(func(args mock.Arguments) {
				captured = args.Get(4).(*domain.QuestionRecord)
			})

		uc := newInterviewUC(sessions, new(MockCandidateRepo), ai.NewDisabled())
		outcome, err := uc.SubmitAnswer(ctx, s.ID, "CSS is a stylesheet language for layout and design", 15)

		require.NoError(t, err)
		assert.False(t, outcome.Completed)
		assert.Equal(t, 8.0, outcome.Score)
		require.NotNil(t, outcome.Next)
		assert.Equal(t, 3, outcome.Next.Position)
		assert.Equal(t, domain.DifficultyMedium, outcome.Next.Difficulty)
		assert.Equal(t, 60, outcome.Next.TimeAllocated)

		require.NotNil(t, captured)
		assert.Equal(t, 3, captured.Position)
		assert.Equal(t, 3, s.CurrentQuestion)
	})

	t.Run("Should use the gateway evaluation when available", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		gateway := new(MockGateway)
		s := inProgressSession(candidateID, 1)
		current := unansweredQuestion(s, 1, "What is HTML?")

		sessions.On("GetSession", ctx, s.ID).Return(s, nil)
		sessions.On("GetQuestion", ctx, s.ID, 1).Return(current, nil)
		gateway.On("ScoreAnswer", ctx, "What is HTML?", "a markup language", domain.DifficultyEasy).
			Return(&ai.Evaluation{Score: 9.1, Feedback: "Precise and complete."}, nil)
		sessions.On("AnswerAndAdvance", ctx, s, 1, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		uc := newInterviewUC(sessions, new(MockCandidateRepo), gateway)
		outcome, err := uc.SubmitAnswer(ctx, s.ID, "a markup language", 10)

		require.NoError(t, err)
		assert.Equal(t, 9.1, outcome.Score)
		assert.Equal(t, "Precise and complete.", outcome.Feedback)
	})

	t.Run("Should reject a duplicate submission", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		s := inProgressSession(candidateID, 1)
		current := unansweredQuestion(s, 1, "What is HTML?")
		answered := "previous answer"
		current.AnswerText = &answered

		sessions.On("GetSession", ctx, s.ID).Return(s, nil)
		sessions.On("GetQuestion", ctx, s.ID, 1).Return(current, nil)

		uc := newInterviewUC(sessions, new(MockCandidateRepo), ai.NewDisabled())
		_, err := uc.SubmitAnswer(ctx, s.ID, "second attempt", 5)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already submitted")
		sessions.AssertNotCalled(t, "AnswerAndAdvance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should surface a write-once race as a conflict", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		s := inProgressSession(candidateID, 1)
		current := unansweredQuestion(s, 1, "What is HTML?")

		sessions.On("GetSession", ctx, s.ID).Return(s, nil)
		sessions.On("GetQuestion", ctx, s.ID, 1).Return(current, nil)
		sessions.On("AnswerAndAdvance", ctx, s, 1, mock.Anything, mock.Anything, mock.Anything).Return(domain.ErrConflict)

		uc := newInterviewUC(sessions, new(MockCandidateRepo), ai.NewDisabled())
		_, err := uc.SubmitAnswer(ctx, s.ID, "some answer text", 5)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already submitted")
	})

	t.Run("Should reject answers when the interview is not in progress", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		s := inProgressSession(candidateID, 1)
		s.Status = domain.StatusCompleted
		sessions.On("GetSession", ctx, s.ID).Return(s, nil)

		uc := newInterviewUC(sessions, new(MockCandidateRepo), ai.NewDisabled())
		_, err := uc.SubmitAnswer(ctx, s.ID, "answer", 5)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not in progress")
	})

	t.Run("Should complete the interview after the final answer", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		s := inProgressSession(candidateID, domain.TotalQuestions)
		current := unansweredQuestion(s, domain.TotalQuestions, "What is responsive design?")

		storedScores := []float64{8, 8, 6, 6, 4}
		records := make([]domain.QuestionRecord, 0, domain.TotalQuestions)
		for i, score := range storedScores {
			r := *unansweredQuestion(s, i+1, "stored question")
			answer := "stored answer"
			sc := score
			r.AnswerText = &answer
			r.Score = &sc
			records = append(records, r)
		}
		records = append(records, *current)

		sessions.On("GetSession", ctx, s.ID).Return(s, nil)
		sessions.On("GetQuestion", ctx, s.ID, domain.TotalQuestions).Return(current, nil)
		sessions.On("ListQuestions", ctx, s.ID).Return(records, nil)

		var capturedNext *domain.QuestionRecord = unansweredQuestion(s, 1, "sentinel")
		sessions.On("AnswerAndAdvance", ctx, s, domain.TotalQuestions, mock.AnythingOfType("*domain.AnswerUpdate"),
			mock.Anything, mock.AnythingOfType("[]domain.ChatEvent")).
			Return(nil).
			Run(func(args mock.Arguments) {
				capturedNext, _ = args.Get(4).(*domain.QuestionRecord)
			})

		uc := newInterviewUC(sessions, new(MockCandidateRepo), ai.NewDisabled())
		// The heuristic scores this on-topic-free answer 5.0.
		outcome, err := uc.SubmitAnswer(ctx, s.ID, "pages that adapt to any screen size", 90)

		require.NoError(t, err)
		assert.True(t, outcome.Completed)
		assert.Nil(t, outcome.Next)
		assert.Equal(t, 5.0, outcome.Score)

		// (8+8+6+6+4+5)/6 * 10
		require.NotNil(t, outcome.FinalScore)
		assert.InDelta(t, 61.67, *outcome.FinalScore, 0.01)
		require.NotNil(t, outcome.Summary)
		assert.Contains(t, *outcome.Summary, "Adequate performance")

		assert.Nil(t, capturedNext)
		assert.Equal(t, domain.StatusCompleted, s.Status)
		assert.NotNil(t, s.CompletedAt)
	})
}

func TestAbandonAndResume(t *testing.T) {
	ctx := context.Background()
	candidateID := uuid.New()

	t.Run("Should abandon an in-progress interview", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		id := uuid.New()
		sessions.On("SetStatus", ctx, id, domain.StatusInProgress, domain.StatusAbandoned).Return(nil)

		uc := newInterviewUC(sessions, new(MockCandidateRepo), ai.NewDisabled())
		assert.NoError(t, uc.Abandon(ctx, id))
	})

	t.Run("Should report a missing session as not found", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		id := uuid.New()
		sessions.On("SetStatus", ctx, id, domain.StatusInProgress, domain.StatusAbandoned).Return(domain.ErrNotFound)

		uc := newInterviewUC(sessions, new(MockCandidateRepo), ai.NewDisabled())
		err := uc.Abandon(ctx, id)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("Should reject abandoning a session that is not in progress", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		id := uuid.New()
		sessions.On("SetStatus", ctx, id, domain.StatusInProgress, domain.StatusAbandoned).Return(domain.ErrConflict)

		uc := newInterviewUC(sessions, new(MockCandidateRepo), ai.NewDisabled())
		err := uc.Abandon(ctx, id)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "in-progress")
	})

	t.Run("Should resume an abandoned interview at its stored position", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		abandoned := inProgressSession(candidateID, 3)
		abandoned.Status = domain.StatusAbandoned
		resumed := *abandoned
		resumed.Status = domain.StatusInProgress
		question := unansweredQuestion(abandoned, 3, "Explain the box model in CSS.")

		sessions.On("GetSession", ctx, abandoned.ID).Return(abandoned, nil).Once()
		sessions.On("GetActiveSession", ctx, candidateID, domain.TrackFrontend).Return(nil, domain.ErrNotFound)
		sessions.On("SetStatus", ctx, abandoned.ID, domain.StatusAbandoned, domain.StatusInProgress).Return(nil)
		sessions.On("GetSession", ctx, abandoned.ID).Return(&resumed, nil)
		sessions.On("GetQuestion", ctx, abandoned.ID, 3).Return(question, nil)

		uc := newInterviewUC(sessions, new(MockCandidateRepo), ai.NewDisabled())
		snapshot, err := uc.Resume(ctx, abandoned.ID)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, snapshot.Status)
		assert.Equal(t, 3, snapshot.CurrentQuestion)
		require.NotNil(t, snapshot.Question)
		assert.Equal(t, "Explain the box model in CSS.", snapshot.Question.Question)
		assert.Equal(t, domain.DifficultyMedium, snapshot.Question.Difficulty)
	})

	t.Run("Should reject resuming a session that was not abandoned", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		s := inProgressSession(candidateID, 2)
		sessions.On("GetSession", ctx, s.ID).Return(s, nil)

		uc := newInterviewUC(sessions, new(MockCandidateRepo), ai.NewDisabled())
		_, err := uc.Resume(ctx, s.ID)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "abandoned")
	})
}

func TestCheckRecoverable(t *testing.T) {
	ctx := context.Background()
	candidateID := uuid.New()

	t.Run("Should return a bare snapshot before the interview starts", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		s := notStartedSession(candidateID, domain.TrackBackend)
		sessions.On("GetSession", ctx, s.ID).Return(s, nil)

		uc := newInterviewUC(sessions, new(MockCandidateRepo), ai.NewDisabled())
		snapshot, err := uc.CheckRecoverable(ctx, s.ID)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusNotStarted, snapshot.Status)
		assert.Equal(t, 0, snapshot.CurrentQuestion)
		assert.Nil(t, snapshot.Question)
		sessions.AssertNotCalled(t, "GetQuestion", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should include the current question for an in-progress session", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		s := inProgressSession(candidateID, 5)
		question := unansweredQuestion(s, 5, "How does the virtual DOM work in React?")

		sessions.On("GetSession", ctx, s.ID).Return(s, nil)
		sessions.On("GetQuestion", ctx, s.ID, 5).Return(question, nil)

		uc := newInterviewUC(sessions, new(MockCandidateRepo), ai.NewDisabled())
		snapshot, err := uc.CheckRecoverable(ctx, s.ID)

		require.NoError(t, err)
		require.NotNil(t, snapshot.Question)
		assert.Equal(t, 5, snapshot.Question.Position)
		assert.Equal(t, domain.DifficultyHard, snapshot.Question.Difficulty)
		assert.Equal(t, 120, snapshot.Question.TimeAllocated)
	})

	t.Run("Should return the final result for a completed session", func(t *testing.T) {
		sessions := new(MockInterviewRepo)
		s := inProgressSession(candidateID, domain.TotalQuestions)
		s.Status = domain.StatusCompleted
		finalScore := 74.5
		summary := "Good performance overall."
		s.FinalScore = &finalScore
		s.Summary = &summary

		sessions.On("GetSession", ctx, s.ID).Return(s, nil)

		uc := newInterviewUC(sessions, new(MockCandidateRepo), ai.NewDisabled())
		snapshot, err := uc.CheckRecoverable(ctx, s.ID)

		require.NoError(t, err)
		assert.Nil(t, snapshot.Question)
		require.NotNil(t, snapshot.FinalScore)
		assert.Equal(t, 74.5, *snapshot.FinalScore)
		sessions.AssertNotCalled(t, "GetQuestion", mock.Anything, mock.Anything, mock.Anything)
	})
}
