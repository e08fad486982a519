package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/passarei/backend/internal/http/response"
	"github.com/passarei/backend/internal/platform/apierr"
	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/services"
)

type ContestHandler struct {
	log            *logger.Logger
	contestService services.ContestService
}

func NewContestHandler(log *logger.Logger, contestService services.ContestService) *ContestHandler {
	handlerLog := log.With("handler", "ContestHandler")
	return &ContestHandler{log: handlerLog, contestService: contestService}
}

// GET /api/v1/concursos
func (h *ContestHandler) ListContests(c *gin.Context) {
	contests, err := h.contestService.ListActive(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"concursos": contests})
}

// GET /api/v1/concursos/:id
func (h *ContestHandler) GetContest(c *gin.Context) {
	contestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, apierr.Newf(apierr.CodeValidationError, "id de concurso invalido"))
		return
	}
	contest, err := h.contestService.Resolve(c.Request.Context(), contestID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, contest)
}
