package usecase_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"go-interview-backend/internal/ai"
	"go-interview-backend/internal/domain"
)

// Mock Repositories

type MockInterviewRepo struct {
	mock.Mock
}

func (m *MockInterviewRepo) CreateSession(ctx context.Context, s *domain.InterviewSession) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockInterviewRepo) GetSession(ctx context.Context, id uuid.UUID) (*domain.InterviewSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InterviewSession), args.Error(1)
}

func (m *MockInterviewRepo) GetActiveSession(ctx context.Context, candidateID uuid.UUID, track string) (*domain.InterviewSession, error) {
	args := m.Called(ctx, candidateID, track)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InterviewSession), args.Error(1)
}

func (m *MockInterviewRepo) ListSessionsByCandidate(ctx context.Context, candidateID uuid.UUID) ([]domain.InterviewSession, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InterviewSession), args.Error(1)
}

func (m *MockInterviewRepo) StartSession(ctx context.Context, s *domain.InterviewSession, from domain.InterviewStatus, first *domain.QuestionRecord, events []domain.ChatEvent) error {
	return m.Called(ctx, s, from, first, events).Error(0)
}

func (m *MockInterviewRepo) AnswerAndAdvance(ctx context.Context, s *domain.InterviewSession, position int, ans *domain.AnswerUpdate, next *domain.QuestionRecord, events []domain.ChatEvent) error {
	return m.Called(ctx, s, position, ans, next, events).Error(0)
}

func (m *MockInterviewRepo) SetStatus(ctx context.Context, id uuid.UUID, from, to domain.InterviewStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *MockInterviewRepo) GetQuestion(ctx context.Context, sessionID uuid.UUID, position int) (*domain.QuestionRecord, error) {
	args := m.Called(ctx, sessionID, position)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuestionRecord), args.Error(1)
}

func (m *MockInterviewRepo) ListQuestions(ctx context.Context, sessionID uuid.UUID) ([]domain.QuestionRecord, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QuestionRecord), args.Error(1)
}

func (m *MockInterviewRepo) ListEvents(ctx context.Context, sessionID uuid.UUID) ([]domain.ChatEvent, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatEvent), args.Error(1)
}

type MockCandidateRepo struct {
	mock.Mock
}

func (m *MockCandidateRepo) Create(ctx context.Context, c *domain.Candidate) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCandidateRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepo) Update(ctx context.Context, c *domain.Candidate) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCandidateRepo) List(ctx context.Context) ([]domain.Candidate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Candidate), args.Error(1)
}

// MockGateway stands in for the live model client.

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GenerateQuestions(ctx context.Context, track, resumeText string) ([]domain.PlannedQuestion, error) {
	args := m.Called(ctx, track, resumeText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PlannedQuestion), args.Error(1)
}

func (m *MockGateway) ScoreAnswer(ctx context.Context, question, answer string, difficulty domain.Difficulty) (*ai.Evaluation, error) {
	args := m.Called(ctx, question, answer, difficulty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.Evaluation), args.Error(1)
}

func (m *MockGateway) Summarize(ctx context.Context, track string, results []ai.QuestionResult) (*ai.Summary, error) {
	args := m.Called(ctx, track, results)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.Summary), args.Error(1)
}
