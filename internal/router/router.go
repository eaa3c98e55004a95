package router

import (
	"net/http"
	"time"

	"kscore-go/internal/config"
	"kscore-go/internal/handlers"
	"kscore-go/internal/models"
	"kscore-go/internal/session"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

const contentSecurityPolicy = "default-src 'self'; script-src 'self' https://go-echarts.github.io 'unsafe-inline'; style-src 'self' 'unsafe-inline'"

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Try again later."})
}

func Setup(log *zap.Logger, conf config.ServerConfig, controller *session.Controller, assessment *models.Assessment) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: contentSecurityPolicy,
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
	})
	router.Use(CSRFProtection())

	sessionHandler := handlers.NewSessionHandler(log, controller)
	metricsHandler := handlers.NewMetricsHandler(log, controller)
	assessmentHandler := handlers.NewAssessmentHandler(log, controller, assessment)
	resultsHandler := handlers.NewResultsHandler(log, controller)

	limit := conf.ExportLimit
	if limit == 0 {
		limit = 10
	}
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: limit,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	api := router.Group("/api")
	{
		api.GET("/session", sessionHandler.Show)
		api.GET("/session/chart", resultsHandler.Chart)
		api.POST("/consent", sessionHandler.Consent)
		api.POST("/navigate", sessionHandler.Navigate)
		api.POST("/essay", sessionHandler.Essay)

		api.POST("/keystrokes", metricsHandler.RecordKeystroke)
		api.POST("/autocorrect", metricsHandler.Autocorrect)

		api.GET("/questionnaires/:kind", assessmentHandler.Show)
		api.POST("/questionnaires/:kind", assessmentHandler.Answer)

		api.POST("/export", limiter, resultsHandler.Export)
	}

	return router
}
