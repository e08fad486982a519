package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/passarei/backend/internal/http/response"
	"github.com/passarei/backend/internal/platform/apierr"
	"github.com/passarei/backend/internal/platform/logger"
	"github.com/passarei/backend/internal/requestdata"
	"github.com/passarei/backend/internal/services"
	"github.com/passarei/backend/internal/types"
)

type fakeProgressionService struct {
	getCurrentWeekInfoFn func(ctx context.Context, userID, contestID uuid.UUID) (*services.CurrentWeekInfo, error)
	getRoadmapFn         func(ctx context.Context, userID, contestID uuid.UUID, includeStats bool) (*services.Roadmap, error)
}

func (f *fakeProgressionService) GetOrCreateStatus(ctx context.Context, userID, contestID uuid.UUID) (*types.ProgressionStatus, error) {
	return nil, nil
}

func (f *fakeProgressionService) CanAdvance(ctx context.Context, userID, contestID uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeProgressionService) GetCurrentWeekInfo(ctx context.Context, userID, contestID uuid.UUID) (*services.CurrentWeekInfo, error) {
	if f.getCurrentWeekInfoFn != nil {
		return f.getCurrentWeekInfoFn(ctx, userID, contestID)
	}
	return &services.CurrentWeekInfo{WeekNumber: 1, UnlockPolicy: types.UnlockPolicyStrict}, nil
}

func (f *fakeProgressionService) GetRoadmap(ctx context.Context, userID, contestID uuid.UUID, includeStats bool) (*services.Roadmap, error) {
	if f.getRoadmapFn != nil {
		return f.getRoadmapFn(ctx, userID, contestID, includeStats)
	}
	return &services.Roadmap{Entries: []services.RoadmapEntry{}}, nil
}

func (f *fakeProgressionService) ProcessAutomaticAdvances(ctx context.Context) (services.AdvanceReport, error) {
	return services.AdvanceReport{}, nil
}

type fakeCompletionService struct {
	completeWeekFn func(ctx context.Context, userID, contestID uuid.UUID, weekNumber int, sub services.CompletionSubmission) (*services.CompletionResult, error)
	getHistoryFn   func(ctx context.Context, userID, contestID uuid.UUID, cursor string, limit int) ([]*types.CompletionRecord, string, error)
}

func (f *fakeCompletionService) CompleteWeek(ctx context.Context, userID, contestID uuid.UUID, weekNumber int, sub services.CompletionSubmission) (*services.CompletionResult, error) {
	if f.completeWeekFn != nil {
		return f.completeWeekFn(ctx, userID, contestID, weekNumber, sub)
	}
	return &services.CompletionResult{UnlockPolicy: types.UnlockPolicyStrict}, nil
}

func (f *fakeCompletionService) GetHistory(ctx context.Context, userID, contestID uuid.UUID, cursor string, limit int) ([]*types.CompletionRecord, string, error) {
	if f.getHistoryFn != nil {
		return f.getHistoryFn(ctx, userID, contestID, cursor, limit)
	}
	return []*types.CompletionRecord{}, "", nil
}

func handlerTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

// injectScope stands in for the auth and contest middleware.
func injectScope(userID, contestID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := &requestdata.RequestData{UserID: userID, ContestID: contestID}
		c.Request = c.Request.WithContext(requestdata.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

func newTestRouter(t *testing.T, userID, contestID uuid.UUID, progression services.ProgressionService, completion services.CompletionService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewWeeklyQuestionsHandler(handlerTestLogger(t), progression, completion)

	r := gin.New()
	g := r.Group("/api/v1/questoes-semanais", injectScope(userID, contestID))
	g.GET("/atual", h.GetCurrentWeek)
	g.GET("/historico", h.GetHistory)
	g.GET("/roadmap", h.GetRoadmap)
	g.POST("/:numero_semana/concluir", h.CompleteWeek)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetCurrentWeek_EnvelopeShape(t *testing.T) {
	userID, contestID := uuid.New(), uuid.New()
	remaining := (3 * 24 * time.Hour).Milliseconds()
	progression := &fakeProgressionService{
		getCurrentWeekInfoFn: func(ctx context.Context, u, c uuid.UUID) (*services.CurrentWeekInfo, error) {
			if u != userID || c != contestID {
				t.Fatalf("scope not propagated: user %v contest %v", u, c)
			}
			return &services.CurrentWeekInfo{
				WeekNumber:      2,
				UnlockPolicy:    types.UnlockPolicyStrict,
				RemainingMillis: &remaining,
			}, nil
		},
	}

	r := newTestRouter(t, userID, contestID, progression, &fakeCompletionService{})
	w := doRequest(r, http.MethodGet, "/api/v1/questoes-semanais/atual", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Semana struct {
				NumeroSemana    int    `json:"numero_semana"`
				ModoDesbloqueio string `json:"modo_desbloqueio"`
				MillisRestantes *int64 `json:"millis_restantes"`
			} `json:"semana"`
		} `json:"data"`
		Metadata struct {
			Timestamp time.Time `json:"timestamp"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if !env.Success {
		t.Fatalf("success = false")
	}
	if env.Data.Semana.NumeroSemana != 2 {
		t.Fatalf("numero_semana = %d, want 2", env.Data.Semana.NumeroSemana)
	}
	if env.Data.Semana.MillisRestantes == nil || *env.Data.Semana.MillisRestantes != remaining {
		t.Fatalf("millis_restantes = %v, want %d", env.Data.Semana.MillisRestantes, remaining)
	}
	if env.Metadata.Timestamp.IsZero() {
		t.Fatalf("metadata.timestamp missing")
	}
}

func TestGetCurrentWeek_MissingScopeIsUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewWeeklyQuestionsHandler(handlerTestLogger(t), &fakeProgressionService{}, &fakeCompletionService{})
	r := gin.New()
	r.GET("/atual", h.GetCurrentWeek)

	w := doRequest(r, http.MethodGet, "/atual", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var env response.ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if env.Code != apierr.CodeUnauthorized {
		t.Fatalf("code = %q, want UNAUTHORIZED", env.Code)
	}
}

func TestGetCurrentWeek_MissingContestIsUnprocessable(t *testing.T) {
	r := newTestRouter(t, uuid.New(), uuid.Nil, &fakeProgressionService{}, &fakeCompletionService{})
	w := doRequest(r, http.MethodGet, "/api/v1/questoes-semanais/atual", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	var env response.ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if env.Code != apierr.CodeContestRequired {
		t.Fatalf("code = %q, want CONCURSO_REQUIRED", env.Code)
	}
}

func TestGetHistory_PaginationEnvelope(t *testing.T) {
	var gotCursor string
	var gotLimit int
	completion := &fakeCompletionService{
		getHistoryFn: func(ctx context.Context, u, c uuid.UUID, cursor string, limit int) ([]*types.CompletionRecord, string, error) {
			gotCursor, gotLimit = cursor, limit
			return []*types.CompletionRecord{
				{ID: uuid.New(), WeekNumber: 3, Score: 80, CompletedAt: time.Now().UTC()},
			}, "next-page", nil
		},
	}

	r := newTestRouter(t, uuid.New(), uuid.New(), &fakeProgressionService{}, completion)
	w := doRequest(r, http.MethodGet, "/api/v1/questoes-semanais/historico?limit=25&cursor=abc", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if gotCursor != "abc" || gotLimit != 25 {
		t.Fatalf("service called with cursor=%q limit=%d", gotCursor, gotLimit)
	}
	var env struct {
		Success    bool                 `json:"success"`
		Pagination *response.Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if env.Pagination == nil {
		t.Fatalf("pagination block missing")
	}
	if env.Pagination.Limit != 25 || env.Pagination.NextCursor != "next-page" {
		t.Fatalf("pagination = %+v", env.Pagination)
	}
}

func TestGetHistory_LimitOutOfRangeRejectedBeforeService(t *testing.T) {
	called := false
	completion := &fakeCompletionService{
		getHistoryFn: func(ctx context.Context, u, c uuid.UUID, cursor string, limit int) ([]*types.CompletionRecord, string, error) {
			called = true
			return nil, "", nil
		},
	}

	r := newTestRouter(t, uuid.New(), uuid.New(), &fakeProgressionService{}, completion)
	w := doRequest(r, http.MethodGet, "/api/v1/questoes-semanais/historico?limit=500", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if called {
		t.Fatalf("service invoked despite invalid limit")
	}
}

func TestGetRoadmap_InvalidYearRejected(t *testing.T) {
	r := newTestRouter(t, uuid.New(), uuid.New(), &fakeProgressionService{}, &fakeCompletionService{})
	w := doRequest(r, http.MethodGet, "/api/v1/questoes-semanais/roadmap?ano=1800", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCompleteWeek_Success(t *testing.T) {
	next := 4
	var gotWeek int
	var gotSub services.CompletionSubmission
	completion := &fakeCompletionService{
		completeWeekFn: func(ctx context.Context, u, c uuid.UUID, weekNumber int, sub services.CompletionSubmission) (*services.CompletionResult, error) {
			gotWeek, gotSub = weekNumber, sub
			return &services.CompletionResult{
				NextWeek:     &next,
				Advanced:     true,
				UnlockPolicy: types.UnlockPolicyAccelerated,
			}, nil
		},
	}

	r := newTestRouter(t, uuid.New(), uuid.New(), &fakeProgressionService{}, completion)
	body := `{
		"pontuacao": 85,
		"tempo_minutos": 30,
		"respostas": [
			{"questao_id": "` + uuid.NewString() + `", "alternativa": "B", "correta": true}
		]
	}`
	w := doRequest(r, http.MethodPost, "/api/v1/questoes-semanais/3/concluir", body)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if gotWeek != 3 {
		t.Fatalf("weekNumber = %d, want 3", gotWeek)
	}
	if gotSub.Score != 85 || len(gotSub.Answers) != 1 || gotSub.Answers[0].ChosenOption != "B" {
		t.Fatalf("submission = %+v", gotSub)
	}
	var env struct {
		Data struct {
			ProximaSemana *int   `json:"proximaSemana"`
			Avancou       bool   `json:"avancou"`
			Modo          string `json:"modoDesbloqueio"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if !env.Data.Avancou || env.Data.ProximaSemana == nil || *env.Data.ProximaSemana != 4 {
		t.Fatalf("data = %+v", env.Data)
	}
}

func TestCompleteWeek_ValidationRejectedBeforeService(t *testing.T) {
	cases := []struct {
		name string
		path string
		body string
	}{
		{"missing pontuacao", "/api/v1/questoes-semanais/1/concluir", `{}`},
		{"score above 100", "/api/v1/questoes-semanais/1/concluir", `{"pontuacao": 120}`},
		{"bad question id", "/api/v1/questoes-semanais/1/concluir", `{"pontuacao": 50, "respostas": [{"questao_id": "nope"}]}`},
		{"week number zero", "/api/v1/questoes-semanais/0/concluir", `{"pontuacao": 50}`},
		{"week number not numeric", "/api/v1/questoes-semanais/abc/concluir", `{"pontuacao": 50}`},
	}

	for _, tc := range cases {
		called := false
		completion := &fakeCompletionService{
			completeWeekFn: func(ctx context.Context, u, c uuid.UUID, weekNumber int, sub services.CompletionSubmission) (*services.CompletionResult, error) {
				called = true
				return nil, nil
			},
		}
		r := newTestRouter(t, uuid.New(), uuid.New(), &fakeProgressionService{}, completion)
		w := doRequest(r, http.MethodPost, tc.path, tc.body)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, w.Code)
		}
		if called {
			t.Errorf("%s: service invoked despite invalid request", tc.name)
		}
		var env response.ErrorEnvelope
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Errorf("%s: bad body: %v", tc.name, err)
			continue
		}
		if env.Code != apierr.CodeValidationError {
			t.Errorf("%s: code = %q, want VALIDATION_ERROR", tc.name, env.Code)
		}
	}
}

func TestCompleteWeek_DomainErrorsPassThrough(t *testing.T) {
	cases := []struct {
		name       string
		err        *apierr.Error
		wantStatus int
	}{
		{"out of order", apierr.Newf(apierr.CodeInvalidWeekOrder, "semana fora de ordem"), http.StatusBadRequest},
		{"duplicate", apierr.Newf(apierr.CodeWeekAlreadyCompleted, "semana ja concluida"), http.StatusConflict},
	}

	for _, tc := range cases {
		completion := &fakeCompletionService{
			completeWeekFn: func(ctx context.Context, u, c uuid.UUID, weekNumber int, sub services.CompletionSubmission) (*services.CompletionResult, error) {
				return nil, tc.err
			},
		}
		r := newTestRouter(t, uuid.New(), uuid.New(), &fakeProgressionService{}, completion)
		w := doRequest(r, http.MethodPost, "/api/v1/questoes-semanais/1/concluir", `{"pontuacao": 50}`)

		if w.Code != tc.wantStatus {
			t.Errorf("%s: status = %d, want %d", tc.name, w.Code, tc.wantStatus)
		}
		var env response.ErrorEnvelope
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Errorf("%s: bad body: %v", tc.name, err)
			continue
		}
		if env.Code != tc.err.Code {
			t.Errorf("%s: code = %q, want %q", tc.name, env.Code, tc.err.Code)
		}
	}
}

func TestGetCurrentWeek_InlineHistory(t *testing.T) {
	var gotLimit int
	completion := &fakeCompletionService{
		getHistoryFn: func(ctx context.Context, u, c uuid.UUID, cursor string, limit int) ([]*types.CompletionRecord, string, error) {
			gotLimit = limit
			return []*types.CompletionRecord{}, "", nil
		},
	}

	r := newTestRouter(t, uuid.New(), uuid.New(), &fakeProgressionService{}, completion)
	w := doRequest(r, http.MethodGet, "/api/v1/questoes-semanais/atual?include_historico=true", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if gotLimit != defaultInlineHistory {
		t.Fatalf("inline history limit = %d, want %d", gotLimit, defaultInlineHistory)
	}
	var env struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if _, ok := env.Data["historico"]; !ok {
		t.Fatalf("historico block missing from data")
	}
	if _, ok := env.Data["roadmap"]; ok {
		t.Fatalf("roadmap included without being requested")
	}
}
