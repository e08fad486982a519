package app

import (
	httpMW "github.com/passarei/backend/internal/http/middleware"
	"github.com/passarei/backend/internal/platform/logger"
)

type Middleware struct {
	Auth    *httpMW.AuthMiddleware
	Contest *httpMW.ContestMiddleware
}

func wireMiddleware(log *logger.Logger, serviceset Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:    httpMW.NewAuthMiddleware(log, serviceset.Auth),
		Contest: httpMW.NewContestMiddleware(log, serviceset.Contest),
	}
}
