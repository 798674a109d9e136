package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Candidate struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	ResumeText string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ContactUpdate fills in fields the resume parser could not extract.
type ContactUpdate struct {
	Name  string `json:"name" validate:"max=100"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"max=20"`
}

// RegistrationResult is returned after a resume upload: the new candidate,
// its not_started session, and whatever contact fields were parsed.
type RegistrationResult struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	SessionID   uuid.UUID `json:"session_id"`
	Track       string    `json:"track"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
}

// CandidateOverview is one dashboard row.
type CandidateOverview struct {
	Candidate Candidate          `json:"candidate"`
	Sessions  []InterviewSession `json:"sessions"`
}

// SessionDetail is one session with its full question and event history.
type SessionDetail struct {
	Session   InterviewSession `json:"session"`
	Questions []QuestionRecord `json:"questions"`
	Events    []ChatEvent      `json:"chat_history"`
}

type CandidateDetail struct {
	Candidate Candidate       `json:"candidate"`
	Sessions  []SessionDetail `json:"sessions"`
}

type CandidateRepository interface {
	Create(ctx context.Context, c *Candidate) error
	GetByID(ctx context.Context, id uuid.UUID) (*Candidate, error)
	Update(ctx context.Context, c *Candidate) error
	List(ctx context.Context) ([]Candidate, error)
}

type CandidateUsecase interface {
	RegisterWithResume(ctx context.Context, filename string, data []byte, track string) (*RegistrationResult, error)
	UpdateContact(ctx context.Context, id uuid.UUID, in *ContactUpdate) (*Candidate, error)
	List(ctx context.Context) ([]CandidateOverview, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*CandidateDetail, error)
}
