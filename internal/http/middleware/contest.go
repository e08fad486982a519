package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/passarei/backend/internal/http/response"
	"github.com/passarei/backend/internal/platform/apierr"
	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/requestdata"
	"github.com/passarei/backend/internal/services"
)

const headerContestID = "X-Concurso-Id"

type ContestMiddleware struct {
	log            *logger.Logger
	contestService services.ContestService
}

func NewContestMiddleware(log *logger.Logger, contestService services.ContestService) *ContestMiddleware {
	middlewareLog := log.With("middleware", "ContestMiddleware")
	return &ContestMiddleware{log: middlewareLog, contestService: contestService}
}

// RequireContest resolves the contest scope from the X-Concurso-Id header or
// the concurso_id query param. A missing contest is a configuration-class
// error (CONCURSO_REQUIRED), an unknown one is not-found.
func (cm *ContestMiddleware) RequireContest() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(headerContestID))
		if raw == "" {
			raw = strings.TrimSpace(c.Query("concurso_id"))
		}
		if raw == "" {
			response.RespondError(c, apierr.Newf(apierr.CodeContestRequired,
				"concurso nao informado: envie o header %s ou o parametro concurso_id", headerContestID))
			c.Abort()
			return
		}
		contestID, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, apierr.Newf(apierr.CodeValidationError, "concurso_id invalido"))
			c.Abort()
			return
		}
		if _, err := cm.contestService.Resolve(c.Request.Context(), contestID); err != nil {
			response.RespondError(c, err)
			c.Abort()
			return
		}

		rd := requestdata.GetRequestData(c.Request.Context())
		if rd == nil {
			rd = &requestdata.RequestData{}
		}
		rd.ContestID = contestID
		c.Request = c.Request.WithContext(requestdata.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}
