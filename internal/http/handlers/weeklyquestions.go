package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/passarei/backend/internal/http/response"
	"github.com/passarei/backend/internal/platform/apierr"
	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/requestdata"
	"github.com/passarei/backend/internal/services"
	"github.com/passarei/backend/internal/types"
)

const (
	defaultHistoryLimit  = 10
	maxHistoryLimit      = 100
	maxInlineHistory     = 20
	defaultInlineHistory = 5
)

type WeeklyQuestionsHandler struct {
	log         *logger.Logger
	progression services.ProgressionService
	completion  services.CompletionService
}

func NewWeeklyQuestionsHandler(
	log *logger.Logger,
	progression services.ProgressionService,
	completion services.CompletionService,
) *WeeklyQuestionsHandler {
	handlerLog := log.With("handler", "WeeklyQuestionsHandler")
	return &WeeklyQuestionsHandler{
		log:         handlerLog,
		progression: progression,
		completion:  completion,
	}
}

type completeWeekAnswer struct {
	QuestaoID             string `json:"questao_id" binding:"required,uuid"`
	Alternativa           string `json:"alternativa" binding:"omitempty,max=10"`
	Correta               *bool  `json:"correta"`
	TempoRespostaSegundos *int   `json:"tempo_resposta_segundos" binding:"omitempty,min=0"`
}

type completeWeekRequest struct {
	Respostas    []completeWeekAnswer `json:"respostas" binding:"omitempty,dive"`
	Pontuacao    *int                 `json:"pontuacao" binding:"required,min=0,max=100"`
	TempoMinutos *int                 `json:"tempo_minutos" binding:"omitempty,min=0,max=1440"`
	Observacoes  string               `json:"observacoes" binding:"omitempty,max=500"`
}

// GET /api/v1/questoes-semanais/atual
func (h *WeeklyQuestionsHandler) GetCurrentWeek(c *gin.Context) {
	rd, ok := h.scope(c)
	if !ok {
		return
	}

	info, err := h.progression.GetCurrentWeekInfo(c.Request.Context(), rd.UserID, rd.ContestID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	data := gin.H{"semana": info}

	if boolQuery(c, "include_roadmap") {
		roadmap, err := h.progression.GetRoadmap(c.Request.Context(), rd.UserID, rd.ContestID, false)
		if err != nil {
			response.RespondError(c, err)
			return
		}
		data["roadmap"] = roadmap.Entries
	}

	if boolQuery(c, "include_historico") {
		limit, err := intQuery(c, "historico_limit", defaultInlineHistory, 1, maxInlineHistory)
		if err != nil {
			response.RespondError(c, err)
			return
		}
		records, _, err := h.completion.GetHistory(c.Request.Context(), rd.UserID, rd.ContestID, "", limit)
		if err != nil {
			response.RespondError(c, err)
			return
		}
		data["historico"] = records
	}

	response.RespondOK(c, data)
}

// GET /api/v1/questoes-semanais/historico
func (h *WeeklyQuestionsHandler) GetHistory(c *gin.Context) {
	rd, ok := h.scope(c)
	if !ok {
		return
	}

	limit, err := intQuery(c, "limit", defaultHistoryLimit, 1, maxHistoryLimit)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	cursor := strings.TrimSpace(c.Query("cursor"))

	records, next, err := h.completion.GetHistory(c.Request.Context(), rd.UserID, rd.ContestID, cursor, limit)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if records == nil {
		records = []*types.CompletionRecord{}
	}

	response.RespondPage(c, gin.H{"historico": records}, &response.Pagination{
		Limit:      limit,
		NextCursor: next,
	})
}

// GET /api/v1/questoes-semanais/roadmap
func (h *WeeklyQuestionsHandler) GetRoadmap(c *gin.Context) {
	rd, ok := h.scope(c)
	if !ok {
		return
	}

	if ano := strings.TrimSpace(c.Query("ano")); ano != "" {
		year, err := strconv.Atoi(ano)
		if err != nil || year < 2000 || year > 2100 {
			response.RespondError(c, apierr.Newf(apierr.CodeValidationError, "ano invalido"))
			return
		}
	}

	roadmap, err := h.progression.GetRoadmap(c.Request.Context(), rd.UserID, rd.ContestID, boolQuery(c, "include_stats"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, roadmap)
}

// POST /api/v1/questoes-semanais/:numero_semana/concluir
func (h *WeeklyQuestionsHandler) CompleteWeek(c *gin.Context) {
	rd, ok := h.scope(c)
	if !ok {
		return
	}

	weekNumber, err := strconv.Atoi(c.Param("numero_semana"))
	if err != nil || weekNumber < 1 {
		response.RespondError(c, apierr.Newf(apierr.CodeValidationError, "numero_semana invalido"))
		return
	}

	var req completeWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.New(apierr.CodeValidationError, err))
		return
	}

	sub := services.CompletionSubmission{
		Score:            *req.Pontuacao,
		TimeSpentMinutes: req.TempoMinutos,
		Notes:            req.Observacoes,
		Answers:          make([]types.CompletionAnswer, 0, len(req.Respostas)),
	}
	for _, a := range req.Respostas {
		questionID, err := uuid.Parse(a.QuestaoID)
		if err != nil {
			response.RespondError(c, apierr.Newf(apierr.CodeValidationError, "questao_id invalido: %s", a.QuestaoID))
			return
		}
		sub.Answers = append(sub.Answers, types.CompletionAnswer{
			QuestionID:          questionID,
			ChosenOption:        a.Alternativa,
			IsCorrect:           a.Correta,
			ResponseTimeSeconds: a.TempoRespostaSegundos,
		})
	}

	result, err := h.completion.CompleteWeek(c.Request.Context(), rd.UserID, rd.ContestID, weekNumber, sub)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, result)
}

// scope pulls the identity and contest resolved by the middleware chain; a
// missing scope means a route was wired without it.
func (h *WeeklyQuestionsHandler) scope(c *gin.Context) (*requestdata.RequestData, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, apierr.Newf(apierr.CodeUnauthorized, "usuario nao autenticado"))
		return nil, false
	}
	if rd.ContestID == uuid.Nil {
		response.RespondError(c, apierr.Newf(apierr.CodeContestRequired, "concurso nao resolvido"))
		return nil, false
	}
	return rd, true
}

func boolQuery(c *gin.Context, name string) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(name))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func intQuery(c *gin.Context, name string, def, min, max int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.Newf(apierr.CodeValidationError, "%s invalido", name)
	}
	if v < min || v > max {
		return 0, apierr.Newf(apierr.CodeValidationError, "%s fora do intervalo [%d, %d]", name, min, max)
	}
	return v, nil
}
