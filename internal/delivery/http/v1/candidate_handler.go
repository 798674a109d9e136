package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-interview-backend/internal/delivery/http/response"
	"go-interview-backend/internal/domain"
	"go-interview-backend/pkg/apperror"
)

type CandidateHandler struct {
	candidateUC domain.CandidateUsecase
}

// NewCandidateHandler registers the reviewer dashboard routes.
func NewCandidateHandler(rg *gin.RouterGroup, candidateUC domain.CandidateUsecase) {
	handler := &CandidateHandler{
		candidateUC: candidateUC,
	}

	candidates := rg.Group("/candidates")
	candidates.GET("", handler.List)
	candidates.GET("/:id", handler.GetDetail)
	candidates.PATCH("/:id", handler.UpdateContact)
}

// List returns every candidate with their sessions, ordered best final
// score first for the dashboard.
func (h *CandidateHandler) List(c *gin.Context) {
	overviews, err := h.candidateUC.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Candidates retrieved", overviews)
}

// GetDetail returns one candidate with the full question and chat history
// of every session, for the reviewer drill-down.
func (h *CandidateHandler) GetDetail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.BadRequest("Invalid candidate id"))
		return
	}

	detail, err := h.candidateUC.GetDetail(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Candidate retrieved", detail)
}

// UpdateContact fills in contact fields the resume parser missed. Empty
// fields in the request body leave the stored values untouched.
func (h *CandidateHandler) UpdateContact(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.BadRequest("Invalid candidate id"))
		return
	}

	var req domain.ContactUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	candidate, err := h.candidateUC.UpdateContact(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Candidate updated", candidate)
}
