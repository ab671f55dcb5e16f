package v1

import (
	"net/http"

	"freelance-marketplace-backend/config"
	"freelance-marketplace-backend/internal/delivery/http/middleware"
	"freelance-marketplace-backend/internal/delivery/http/response"
	"freelance-marketplace-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	ShortlistUC domain.ShortlistUsecase
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

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	rateLimit := middleware.RateLimitMiddleware(middleware.ComputeRateLimitConfig(
		deps.Config.ComputeRateLimit, deps.Config.ComputeRateWindowSeconds,
	))
	NewShortlistHandler(v1, deps.ShortlistUC, rateLimit)

	return r
}
