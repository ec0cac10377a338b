package api

import (
	"github.com/Ayash-Bera/student-lookup/internal/api/handlers"
	"github.com/Ayash-Bera/student-lookup/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RouterDeps struct {
	Students  *handlers.StudentHandler
	Health    *handlers.HealthHandler
	RateLimit int
	Logger    *logrus.Logger
}

// NewRouter registers every route on a fresh engine.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(deps.Logger),
		middleware.CORS(),
		middleware.SecurityHeaders(),
	)

	if deps.Health != nil {
		r.GET("/health", deps.Health.HandleHealth)
	}

	limited := r.Group("/")
	limited.Use(middleware.NewRateLimiter(deps.RateLimit).RateLimit())
	{
		limited.POST("/byENR", deps.Students.HandleLookup)
		limited.POST("/search", deps.Students.HandleSearch)
		limited.GET("/audit/recent", deps.Students.HandleRecentAudits)

		// The browser frontend posts under /student.
		student := limited.Group("/student")
		student.POST("/byENR", deps.Students.HandleLookup)
	}

	return r
}
