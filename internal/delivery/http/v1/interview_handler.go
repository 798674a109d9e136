package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-interview-backend/internal/delivery/http/response"
	"go-interview-backend/internal/domain"
	"go-interview-backend/pkg/apperror"
)

// maxResumeSize caps uploaded resume files at 5MB.
const maxResumeSize = 5 << 20

type InterviewHandler struct {
	interviewUC domain.InterviewUsecase
	candidateUC domain.CandidateUsecase
}

// NewInterviewHandler registers the interview flow routes. `upload` carries
// the stricter rate limit for the resume endpoint.
func NewInterviewHandler(rg *gin.RouterGroup, upload gin.HandlerFunc, interviewUC domain.InterviewUsecase, candidateUC domain.CandidateUsecase) {
	handler := &InterviewHandler{
		interviewUC: interviewUC,
		candidateUC: candidateUC,
	}

	interviews := rg.Group("/interviews")
	interviews.POST("/resume", upload, handler.UploadResume)
	interviews.GET("/:id", handler.GetSession)
	interviews.POST("/:id/start", handler.Start)
	interviews.POST("/:id/answers", handler.SubmitAnswer)
	interviews.POST("/:id/abandon", handler.Abandon)
	interviews.POST("/:id/resume", handler.Resume)
}

// UploadResume accepts a multipart resume file plus an optional track field,
// creates the candidate and their not_started session, and returns both ids
// with whatever contact fields were parsed from the resume.
func (h *InterviewHandler) UploadResume(c *gin.Context) {
	fileHeader, err := c.FormFile("resume")
	if err != nil {
		c.Error(apperror.BadRequest("Resume file is required (multipart field 'resume')."))
		return
	}
	if fileHeader.Size > maxResumeSize {
		c.Error(apperror.BadRequest("Resume file is too large. The limit is 5MB."))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.New(http.StatusInternalServerError, "Failed to read uploaded file", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxResumeSize+1))
	if err != nil {
		c.Error(apperror.New(http.StatusInternalServerError, "Failed to read uploaded file", err))
		return
	}
	if len(data) > maxResumeSize {
		c.Error(apperror.BadRequest("Resume file is too large. The limit is 5MB."))
		return
	}

	track := c.PostForm("track")

	result, err := h.candidateUC.RegisterWithResume(c.Request.Context(), fileHeader.Filename, data, track)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Resume uploaded", result)
}

// Start begins the interview and returns the first question.
func (h *InterviewHandler) Start(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	prompt, err := h.interviewUC.Start(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Interview started", prompt)
}

type submitAnswerRequest struct {
	Answer    string `json:"answer"`
	TimeTaken int    `json:"time_taken" binding:"min=0"`
}

// SubmitAnswer records the answer for the current question and returns its
// evaluation together with the next question, or the final result when the
// last question was just answered.
func (h *InterviewHandler) SubmitAnswer(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req submitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	outcome, err := h.interviewUC.SubmitAnswer(c.Request.Context(), id, req.Answer, req.TimeTaken)
	if err != nil {
		c.Error(err)
		return
	}

	message := "Answer recorded"
	if outcome.Completed {
		message = "Interview completed"
	}
	response.Success(c, http.StatusOK, message, outcome)
}

// Abandon marks an in-progress interview as abandoned, keeping all answers
// recorded so far.
func (h *InterviewHandler) Abandon(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	if err := h.interviewUC.Abandon(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Interview abandoned", nil)
}

// Resume reactivates an abandoned interview at its stored position.
func (h *InterviewHandler) Resume(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	snapshot, err := h.interviewUC.Resume(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Interview resumed", snapshot)
}

// GetSession returns the recovery snapshot a reconnecting client uses to
// restore its state without advancing the interview.
func (h *InterviewHandler) GetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	snapshot, err := h.interviewUC.CheckRecoverable(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Session state", snapshot)
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.BadRequest("Invalid session id"))
		return uuid.Nil, false
	}
	return id, true
}
