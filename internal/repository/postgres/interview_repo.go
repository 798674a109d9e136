package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-interview-backend/internal/domain"
)

type interviewRepo struct {
	db *pgxpool.Pool
}

// NewInterviewRepository creates a new interview session repository
func NewInterviewRepository(db *pgxpool.Pool) domain.InterviewRepository {
	return &interviewRepo{db: db}
}

const sessionColumns = `id, candidate_id, track, status, current_question, question_plan,
	started_at, completed_at, final_score, summary, created_at, updated_at`

func (r *interviewRepo) CreateSession(ctx context.Context, s *domain.InterviewSession) error {
	query := `
		INSERT INTO interview_sessions
			(id, candidate_id, track, status, current_question, question_plan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	plan, err := marshalPlan(s.QuestionPlan)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err = r.db.Exec(ctx, query,
		s.ID, s.CandidateID, s.Track, s.Status, s.CurrentQuestion, plan, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *interviewRepo) GetSession(ctx context.Context, id uuid.UUID) (*domain.InterviewSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM interview_sessions WHERE id = $1`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, id))
}

func (r *interviewRepo) GetActiveSession(ctx context.Context, candidateID uuid.UUID, track string) (*domain.InterviewSession, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM interview_sessions
		WHERE candidate_id = $1 AND track = $2 AND status = $3
		ORDER BY created_at DESC
		LIMIT 1`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, candidateID, track, domain.StatusInProgress))
}

func (r *interviewRepo) ListSessionsByCandidate(ctx context.Context, candidateID uuid.UUID) ([]domain.InterviewSession, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM interview_sessions
		WHERE candidate_id = $1
		ORDER BY created_at DESC`, sessionColumns)

	rows, err := r.db.Query(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.InterviewSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// StartSession performs the full start transition in one transaction: the
// session row is locked, its status is verified against `from`, the plan and
// progress fields are written, and the first question plus trail events are
// inserted.
func (r *interviewRepo) StartSession(ctx context.Context, s *domain.InterviewSession, from domain.InterviewStatus, first *domain.QuestionRecord, events []domain.ChatEvent) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockSession(ctx, tx, s.ID, from); err != nil {
		return err
	}

	plan, err := marshalPlan(s.QuestionPlan)
	if err != nil {
		return err
	}

	s.UpdatedAt = time.Now().UTC()
	_, err = tx.Exec(ctx, `
		UPDATE interview_sessions
		SET status = $2, current_question = $3, question_plan = $4, started_at = $5, updated_at = $6
		WHERE id = $1`,
		s.ID, s.Status, s.CurrentQuestion, plan, s.StartedAt, s.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertQuestion(ctx, tx, first); err != nil {
		return err
	}
	if err := insertEvents(ctx, tx, events); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// AnswerAndAdvance writes an answer and the follow-up session mutation as
// one transaction. The answer update is guarded by `answer_text IS NULL`:
// a concurrent duplicate observes zero affected rows and gets ErrConflict,
// leaving the stored record untouched.
func (r *interviewRepo) AnswerAndAdvance(ctx context.Context, s *domain.InterviewSession, position int, ans *domain.AnswerUpdate, next *domain.QuestionRecord, events []domain.ChatEvent) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockSession(ctx, tx, s.ID, domain.StatusInProgress); err != nil {
		return err
	}

	result, err := tx.Exec(ctx, `
		UPDATE interview_questions
		SET answer_text = $3, time_taken = $4, score = $5, feedback = $6, answered_at = $7
		WHERE session_id = $1 AND position = $2 AND answer_text IS NULL`,
		s.ID, position, ans.AnswerText, ans.TimeTaken, ans.Score, ans.Feedback, ans.AnsweredAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM interview_questions WHERE session_id = $1 AND position = $2)`,
			s.ID, position).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return domain.ErrConflict
		}
		return domain.ErrNotFound
	}

	s.UpdatedAt = time.Now().UTC()
	if next != nil {
		_, err = tx.Exec(ctx, `
			UPDATE interview_sessions
			SET current_question = $2, updated_at = $3
			WHERE id = $1`,
			s.ID, s.CurrentQuestion, s.UpdatedAt)
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE interview_sessions
			SET status = $2, final_score = $3, summary = $4, completed_at = $5, updated_at = $6
			WHERE id = $1`,
			s.ID, s.Status, s.FinalScore, s.Summary, s.CompletedAt, s.UpdatedAt)
	}
	if err != nil {
		return err
	}

	if next != nil {
		if err := insertQuestion(ctx, tx, next); err != nil {
			return err
		}
	}
	if err := insertEvents(ctx, tx, events); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *interviewRepo) SetStatus(ctx context.Context, id uuid.UUID, from, to domain.InterviewStatus) error {
	result, err := r.db.Exec(ctx, `
		UPDATE interview_sessions
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`,
		id, from, to, time.Now().UTC())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM interview_sessions WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return domain.ErrConflict
		}
		return domain.ErrNotFound
	}
	return nil
}

const questionColumns = `id, session_id, position, difficulty, question_text, time_allocated,
	answer_text, time_taken, score, feedback, asked_at, answered_at`

func (r *interviewRepo) GetQuestion(ctx context.Context, sessionID uuid.UUID, position int) (*domain.QuestionRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM interview_questions
		WHERE session_id = $1 AND position = $2`, questionColumns)

	q, err := scanQuestion(r.db.QueryRow(ctx, query, sessionID, position))
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *interviewRepo) ListQuestions(ctx context.Context, sessionID uuid.UUID) ([]domain.QuestionRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM interview_questions
		WHERE session_id = $1
		ORDER BY position`, questionColumns)

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []domain.QuestionRecord
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

func (r *interviewRepo) ListEvents(ctx context.Context, sessionID uuid.UUID) ([]domain.ChatEvent, error) {
	query := `
		SELECT id, session_id, event_type, content, metadata, created_at
		FROM chat_events
		WHERE session_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.ChatEvent
	for rows.Next() {
		var (
			e        domain.ChatEvent
			metadata []byte
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Type, &e.Content, &metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("decode event metadata: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// lockSession takes the per-session row lock that serializes all mutating
// operations, and verifies the stored status still matches the expected one.
func lockSession(ctx context.Context, tx pgx.Tx, id uuid.UUID, expected domain.InterviewStatus) error {
	var status domain.InterviewStatus
	err := tx.QueryRow(ctx,
		`SELECT status FROM interview_sessions WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if status != expected {
		return domain.ErrConflict
	}
	return nil
}

func insertQuestion(ctx context.Context, tx pgx.Tx, q *domain.QuestionRecord) error {
	return tx.QueryRow(ctx, `
		INSERT INTO interview_questions
			(session_id, position, difficulty, question_text, time_allocated, time_taken, asked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		q.SessionID, q.Position, q.Difficulty, q.QuestionText, q.TimeAllocated, q.TimeTaken, q.AskedAt,
	).Scan(&q.ID)
}

func insertEvents(ctx context.Context, tx pgx.Tx, events []domain.ChatEvent) error {
	for i := range events {
		metadata, err := json.Marshal(events[i].Metadata)
		if err != nil {
			return fmt.Errorf("encode event metadata: %w", err)
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO chat_events (session_id, event_type, content, metadata, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			events[i].SessionID, events[i].Type, events[i].Content, metadata, time.Now().UTC(),
		).Scan(&events[i].ID)
		if err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.InterviewSession, error) {
	var (
		s    domain.InterviewSession
		plan []byte
	)
	err := row.Scan(
		&s.ID, &s.CandidateID, &s.Track, &s.Status, &s.CurrentQuestion, &plan,
		&s.StartedAt, &s.CompletedAt, &s.FinalScore, &s.Summary, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(plan) > 0 {
		if err := json.Unmarshal(plan, &s.QuestionPlan); err != nil {
			return nil, fmt.Errorf("decode question plan: %w", err)
		}
	}
	return &s, nil
}

func scanQuestion(row rowScanner) (*domain.QuestionRecord, error) {
	var q domain.QuestionRecord
	err := row.Scan(
		&q.ID, &q.SessionID, &q.Position, &q.Difficulty, &q.QuestionText, &q.TimeAllocated,
		&q.AnswerText, &q.TimeTaken, &q.Score, &q.Feedback, &q.AskedAt, &q.AnsweredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

func marshalPlan(plan []domain.PlannedQuestion) ([]byte, error) {
	if plan == nil {
		plan = []domain.PlannedQuestion{}
	}
	data, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("encode question plan: %w", err)
	}
	return data, nil
}
