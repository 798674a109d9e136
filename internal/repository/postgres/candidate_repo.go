package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-interview-backend/internal/domain"
)

type candidateRepo struct {
	db *pgxpool.Pool
}

// NewCandidateRepository creates a new candidate repository
func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepo{db: db}
}

func (r *candidateRepo) Create(ctx context.Context, c *domain.Candidate) error {
	query := `
		INSERT INTO candidates (id, name, email, phone, resume_text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.db.Exec(ctx, query, c.ID, c.Name, c.Email, c.Phone, c.ResumeText, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *candidateRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Candidate, error) {
	query := `
		SELECT id, name, email, phone, resume_text, created_at, updated_at
		FROM candidates
		WHERE id = $1`

	var c domain.Candidate
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.ResumeText, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *candidateRepo) Update(ctx context.Context, c *domain.Candidate) error {
	query := `
		UPDATE candidates
		SET name = $2, email = $3, phone = $4, updated_at = $5
		WHERE id = $1`

	c.UpdatedAt = time.Now().UTC()
	result, err := r.db.Exec(ctx, query, c.ID, c.Name, c.Email, c.Phone, c.UpdatedAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns all candidates, best final score first, for the reviewer
// dashboard.
func (r *candidateRepo) List(ctx context.Context) ([]domain.Candidate, error) {
	query := `
		SELECT c.id, c.name, c.email, c.phone, c.resume_text, c.created_at, c.updated_at
		FROM candidates c
		LEFT JOIN (
			SELECT candidate_id, MAX(final_score) AS best_score
			FROM interview_sessions
			GROUP BY candidate_id
		) s ON s.candidate_id = c.id
		ORDER BY s.best_score DESC NULLS LAST, c.created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.ResumeText, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
