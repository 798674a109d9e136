package usecase

import (
	"context"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"go-interview-backend/internal/domain"
	"go-interview-backend/internal/resume"
	"go-interview-backend/pkg/apperror"
	"go-interview-backend/pkg/logger"
)

type candidateUsecase struct {
	candidates domain.CandidateRepository
	sessions   domain.InterviewRepository
	extractor  resume.Extractor
	validate   *validator.Validate
}

func NewCandidateUsecase(
	candidates domain.CandidateRepository,
	sessions domain.InterviewRepository,
	extractor resume.Extractor,
	validate *validator.Validate,
) domain.CandidateUsecase {
	return &candidateUsecase{
		candidates: candidates,
		sessions:   sessions,
		extractor:  extractor,
		validate:   validate,
	}
}

// RegisterWithResume creates a candidate and its not_started session from an
// uploaded resume. Text extraction and contact parsing are best-effort: a
// parse failure leaves the contact fields blank and the flow proceeds.
func (u *candidateUsecase) RegisterWithResume(ctx context.Context, filename string, data []byte, track string) (*domain.RegistrationResult, error) {
	format := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	switch format {
	case "pdf", "docx", "txt":
		// accepted
	default:
		return nil, apperror.BadRequest("Unsupported file type. Please upload a PDF or DOCX resume.")
	}

	text, err := u.extractor.Extract(data, format)
	if err != nil {
		logger.Log.Info("resume text extraction failed, proceeding without contact fields",
			"format", format, "error", err)
		text = ""
	}

	var contact resume.Contact
	if strings.TrimSpace(text) != "" {
		contact = resume.ExtractContact(text)
	}

	track = strings.ToLower(strings.TrimSpace(track))
	if track == "" {
		track = domain.TrackFrontend
	}

	candidate := &domain.Candidate{
		ID:         uuid.New(),
		Name:       contact.Name,
		Email:      contact.Email,
		Phone:      contact.Phone,
		ResumeText: text,
	}
	if err := u.candidates.Create(ctx, candidate); err != nil {
		return nil, err
	}

	session := &domain.InterviewSession{
		ID:          uuid.New(),
		CandidateID: candidate.ID,
		Track:       track,
		Status:      domain.StatusNotStarted,
	}
	if err := u.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return &domain.RegistrationResult{
		CandidateID: candidate.ID,
		SessionID:   session.ID,
		Track:       track,
		Name:        candidate.Name,
		Email:       candidate.Email,
		Phone:       candidate.Phone,
	}, nil
}

// UpdateContact fills in contact fields the parser missed. Empty input
// fields leave the stored values untouched.
func (u *candidateUsecase) UpdateContact(ctx context.Context, id uuid.UUID, in *domain.ContactUpdate) (*domain.Candidate, error) {
	if err := u.validate.Struct(in); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	candidate, err := u.candidates.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "Candidate not found")
	}

	if in.Name != "" {
		candidate.Name = in.Name
	}
	if in.Email != "" {
		candidate.Email = in.Email
	}
	if in.Phone != "" {
		candidate.Phone = in.Phone
	}

	if err := u.candidates.Update(ctx, candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}

// List returns the reviewer dashboard rows: every candidate with their
// interview sessions.
func (u *candidateUsecase) List(ctx context.Context) ([]domain.CandidateOverview, error) {
	candidates, err := u.candidates.List(ctx)
	if err != nil {
		return nil, err
	}

	overviews := make([]domain.CandidateOverview, 0, len(candidates))
	for _, candidate := range candidates {
		sessions, err := u.sessions.ListSessionsByCandidate(ctx, candidate.ID)
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, domain.CandidateOverview{
			Candidate: candidate,
			Sessions:  sessions,
		})
	}
	return overviews, nil
}

// GetDetail returns a candidate with every session's full question and chat
// history for the reviewer drill-down.
func (u *candidateUsecase) GetDetail(ctx context.Context, id uuid.UUID) (*domain.CandidateDetail, error) {
	candidate, err := u.candidates.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "Candidate not found")
	}

	sessions, err := u.sessions.ListSessionsByCandidate(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &domain.CandidateDetail{
		Candidate: *candidate,
		Sessions:  make([]domain.SessionDetail, 0, len(sessions)),
	}

	for _, session := range sessions {
		questions, err := u.sessions.ListQuestions(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		events, err := u.sessions.ListEvents(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		detail.Sessions = append(detail.Sessions, domain.SessionDetail{
			Session:   session,
			Questions: questions,
			Events:    events,
		})
	}

	return detail, nil
}
