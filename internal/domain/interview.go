package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TotalQuestions is the fixed length of every interview.
const TotalQuestions = 6

type InterviewStatus string

const (
	StatusNotStarted InterviewStatus = "not_started"
	StatusInProgress InterviewStatus = "in_progress"
	StatusCompleted  InterviewStatus = "completed"
	StatusAbandoned  InterviewStatus = "abandoned"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Known tracks. The track field is an open enumeration: unknown values are
// stored as-is and mapped to the default question bank by the fallback engine.
const (
	TrackFrontend    = "frontend"
	TrackBackend     = "backend"
	TrackDataAnalyst = "data_analyst"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("conflict with stored state")
)

// TierForPosition maps a 1-based question position to its difficulty and
// time allocation in seconds: 1-2 easy/20s, 3-4 medium/60s, 5-6 hard/120s.
// The tiering is authoritative; model-declared difficulty never overrides it.
func TierForPosition(position int) (Difficulty, int) {
	switch {
	case position <= 2:
		return DifficultyEasy, 20
	case position <= 4:
		return DifficultyMedium, 60
	default:
		return DifficultyHard, 120
	}
}

// TrackDisplayName returns a human readable role name for prompts and
// summaries.
func TrackDisplayName(track string) string {
	switch track {
	case TrackFrontend:
		return "Frontend Developer"
	case TrackBackend:
		return "Backend Developer"
	case TrackDataAnalyst:
		return "Data Analyst"
	default:
		return track
	}
}

// PlannedQuestion is one slot of the generated question plan stored on the
// session. Records are materialized from the plan one position at a time.
type PlannedQuestion struct {
	Difficulty Difficulty `json:"difficulty"`
	Question   string     `json:"question"`
}

type InterviewSession struct {
	ID              uuid.UUID         `json:"id"`
	CandidateID     uuid.UUID         `json:"candidate_id"`
	Track           string            `json:"track"`
	Status          InterviewStatus   `json:"status"`
	CurrentQuestion int               `json:"current_question"` // 1-based, 0 = not started
	QuestionPlan    []PlannedQuestion `json:"-"`
	StartedAt       *time.Time        `json:"started_at,omitempty"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
	FinalScore      *float64          `json:"final_score,omitempty"`
	Summary         *string           `json:"summary,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type QuestionRecord struct {
	ID            int64      `json:"id"`
	SessionID     uuid.UUID  `json:"session_id"`
	Position      int        `json:"position"` // 1-based, unique per session
	Difficulty    Difficulty `json:"difficulty"`
	QuestionText  string     `json:"question_text"`
	TimeAllocated int        `json:"time_allocated"` // seconds
	AnswerText    *string    `json:"answer_text,omitempty"`
	TimeTaken     int        `json:"time_taken"`
	Score         *float64   `json:"score,omitempty"` // [0,10]
	Feedback      *string    `json:"feedback,omitempty"`
	AskedAt       time.Time  `json:"asked_at"`
	AnsweredAt    *time.Time `json:"answered_at,omitempty"`
}

// AnswerUpdate carries the answer and its evaluation, written to a
// QuestionRecord as one atomic unit.
type AnswerUpdate struct {
	AnswerText string
	TimeTaken  int
	Score      float64
	Feedback   string
	AnsweredAt time.Time
}

type ChatEventType string

const (
	EventSystem   ChatEventType = "system"
	EventQuestion ChatEventType = "question"
	EventAnswer   ChatEventType = "answer"
	EventInfo     ChatEventType = "info"
	EventError    ChatEventType = "error"
)

// ChatEvent is an append-only audit trail entry for the live interview UI.
type ChatEvent struct {
	ID        int64          `json:"id"`
	SessionID uuid.UUID      `json:"session_id"`
	Type      ChatEventType  `json:"type"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// QuestionPrompt is what a client needs to present one question.
type QuestionPrompt struct {
	SessionID     uuid.UUID  `json:"session_id"`
	Position      int        `json:"position"`
	TotalQuestions int       `json:"total_questions"`
	Difficulty    Difficulty `json:"difficulty"`
	Question      string     `json:"question"`
	TimeAllocated int        `json:"time_allocated"`
}

// SubmitOutcome is the result of answering a question: the evaluation of the
// submitted answer plus either the next prompt or the final result.
type SubmitOutcome struct {
	Score      float64         `json:"score"`
	Feedback   string          `json:"feedback"`
	Completed  bool            `json:"completed"`
	Next       *QuestionPrompt `json:"next,omitempty"`
	FinalScore *float64        `json:"final_score,omitempty"`
	Summary    *string         `json:"summary,omitempty"`
}

// SessionSnapshot is the read-only recovery view for a reconnecting client.
type SessionSnapshot struct {
	SessionID       uuid.UUID       `json:"session_id"`
	CandidateID     uuid.UUID       `json:"candidate_id"`
	Track           string          `json:"track"`
	Status          InterviewStatus `json:"status"`
	CurrentQuestion int             `json:"current_question"`
	TotalQuestions  int             `json:"total_questions"`
	Question        *QuestionPrompt `json:"question,omitempty"`
	FinalScore      *float64        `json:"final_score,omitempty"`
	Summary         *string         `json:"summary,omitempty"`
}

type InterviewRepository interface {
	CreateSession(ctx context.Context, s *InterviewSession) error
	GetSession(ctx context.Context, id uuid.UUID) (*InterviewSession, error)
	// GetActiveSession returns the in_progress session for the candidate and
	// track, or ErrNotFound.
	GetActiveSession(ctx context.Context, candidateID uuid.UUID, track string) (*InterviewSession, error)
	ListSessionsByCandidate(ctx context.Context, candidateID uuid.UUID) ([]InterviewSession, error)

	// StartSession transitions the session out of `from` and inserts the
	// first question record plus trail events in a single transaction.
	// Returns ErrConflict if the stored status no longer matches `from`.
	StartSession(ctx context.Context, s *InterviewSession, from InterviewStatus, first *QuestionRecord, events []ChatEvent) error

	// AnswerAndAdvance writes the answer at `position` (write-once: a record
	// that already holds an answer yields ErrConflict and stays untouched),
	// applies the session mutation carried on `s` (advanced index or
	// completion fields), inserts `next` when non-nil, and appends the trail
	// events, all in one transaction serialized on the session row.
	AnswerAndAdvance(ctx context.Context, s *InterviewSession, position int, ans *AnswerUpdate, next *QuestionRecord, events []ChatEvent) error

	// SetStatus flips the session status from `from` to `to` (abandon /
	// resume). Returns ErrConflict on a status mismatch.
	SetStatus(ctx context.Context, id uuid.UUID, from, to InterviewStatus) error

	GetQuestion(ctx context.Context, sessionID uuid.UUID, position int) (*QuestionRecord, error)
	ListQuestions(ctx context.Context, sessionID uuid.UUID) ([]QuestionRecord, error)
	ListEvents(ctx context.Context, sessionID uuid.UUID) ([]ChatEvent, error)
}

type InterviewUsecase interface {
	Start(ctx context.Context, sessionID uuid.UUID) (*QuestionPrompt, error)
	SubmitAnswer(ctx context.Context, sessionID uuid.UUID, answer string, timeTaken int) (*SubmitOutcome, error)
	Abandon(ctx context.Context, sessionID uuid.UUID) error
	Resume(ctx context.Context, sessionID uuid.UUID) (*SessionSnapshot, error)
	CheckRecoverable(ctx context.Context, sessionID uuid.UUID) (*SessionSnapshot, error)
}
