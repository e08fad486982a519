package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/passarei/backend/internal/http/response"
	"github.com/passarei/backend/internal/platform/apierr"
	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/requestdata"
	"github.com/passarei/backend/internal/services"
)

// ContentHandler serves the read-only weekly question content. Requests for
// weeks beyond the caller's progression return WEEK_NOT_AVAILABLE.
type ContentHandler struct {
	log     *logger.Logger
	content services.WeeklyContentService
}

func NewContentHandler(log *logger.Logger, content services.WeeklyContentService) *ContentHandler {
	handlerLog := log.With("handler", "ContentHandler")
	return &ContentHandler{log: handlerLog, content: content}
}

// GET /api/v1/questoes-semanais/semana/:numero_semana
func (h *ContentHandler) GetWeekSet(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, apierr.Newf(apierr.CodeUnauthorized, "usuario nao autenticado"))
		return
	}
	if rd.ContestID == uuid.Nil {
		response.RespondError(c, apierr.Newf(apierr.CodeContestRequired, "concurso nao resolvido"))
		return
	}

	weekNumber, err := strconv.Atoi(c.Param("numero_semana"))
	if err != nil || weekNumber < 1 {
		response.RespondError(c, apierr.Newf(apierr.CodeValidationError, "numero_semana invalido"))
		return
	}

	year := time.Now().Year()
	if raw := strings.TrimSpace(c.Query("ano")); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 2000 || y > 2100 {
			response.RespondError(c, apierr.Newf(apierr.CodeValidationError, "ano invalido"))
			return
		}
		year = y
	}

	set, err := h.content.GetWeekSet(c.Request.Context(), rd.UserID, rd.ContestID, weekNumber, year)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, set)
}
