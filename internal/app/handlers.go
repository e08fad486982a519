package app

import (
	httpH "github.com/passarei/backend/internal/http/handlers"
	"github.com/passarei/backend/internal/platform/logger"
)

type Handlers struct {
	Auth            *httpH.AuthHandler
	Contest         *httpH.ContestHandler
	Content         *httpH.ContentHandler
	WeeklyQuestions *httpH.WeeklyQuestionsHandler
	Health          *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:            httpH.NewAuthHandler(log, serviceset.Auth),
		Contest:         httpH.NewContestHandler(log, serviceset.Contest),
		Content:         httpH.NewContentHandler(log, serviceset.WeeklyContent),
		WeeklyQuestions: httpH.NewWeeklyQuestionsHandler(log, serviceset.Progression, serviceset.Completion),
		Health:          httpH.NewHealthHandler(),
	}
}
