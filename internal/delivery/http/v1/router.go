package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"go-interview-backend/config"
	"go-interview-backend/internal/delivery/http/middleware"
	"go-interview-backend/internal/delivery/http/response"
	"go-interview-backend/internal/domain"
)

type RouterDeps struct {
	InterviewUC domain.InterviewUsecase
	CandidateUC domain.CandidateUsecase
	Redis       *goredis.Client // nil when Redis is unconfigured
	Config      *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimit(deps.Redis, middleware.DefaultRateLimitConfig()))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	uploadLimit := middleware.RateLimit(deps.Redis, middleware.UploadRateLimitConfig())
	NewInterviewHandler(v1, uploadLimit, deps.InterviewUC, deps.CandidateUC)
	NewCandidateHandler(v1, deps.CandidateUC)

	return r
}
