package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/passarei/backend/internal/http/handlers"
	httpMW "github.com/passarei/backend/internal/http/middleware"
	"github.com/passarei/backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware    *httpMW.AuthMiddleware
	ContestMiddleware *httpMW.ContestMiddleware

	AuthHandler            *httpH.AuthHandler
	ContestHandler         *httpH.ContestHandler
	ContentHandler         *httpH.ContentHandler
	WeeklyQuestionsHandler *httpH.WeeklyQuestionsHandler
	HealthHandler          *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/v1")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// Contests
		if cfg.ContestHandler != nil {
			protected.GET("/concursos", cfg.ContestHandler.ListContests)
			protected.GET("/concursos/:id", cfg.ContestHandler.GetContest)
		}

		// Weekly questions (contest-scoped)
		weekly := protected.Group("/questoes-semanais")
		{
			if cfg.ContestMiddleware != nil {
				weekly.Use(cfg.ContestMiddleware.RequireContest())
			}
			if cfg.WeeklyQuestionsHandler != nil {
				weekly.GET("/atual", cfg.WeeklyQuestionsHandler.GetCurrentWeek)
				weekly.GET("/historico", cfg.WeeklyQuestionsHandler.GetHistory)
				weekly.GET("/roadmap", cfg.WeeklyQuestionsHandler.GetRoadmap)
				weekly.POST("/:numero_semana/concluir", cfg.WeeklyQuestionsHandler.CompleteWeek)
			}
			if cfg.ContentHandler != nil {
				weekly.GET("/semana/:numero_semana", cfg.ContentHandler.GetWeekSet)
			}
		}
	}

	return r
}
