package app

import (
	apphttp "github.com/passarei/backend/internal/http"
	"github.com/passarei/backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, handlerset Handlers, middlewareset Middleware) *apphttp.Server {
	log.Info("Wiring router...")
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:                    log,
		AuthMiddleware:         middlewareset.Auth,
		ContestMiddleware:      middlewareset.Contest,
		AuthHandler:            handlerset.Auth,
		ContestHandler:         handlerset.Contest,
		ContentHandler:         handlerset.Content,
		WeeklyQuestionsHandler: handlerset.WeeklyQuestions,
		HealthHandler:          handlerset.Health,
	})
}
