package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dafibh/fluxo/fluxo-backend/internal/domain"
	"github.com/dafibh/fluxo/fluxo-backend/internal/service"
	"github.com/dafibh/fluxo/fluxo-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoalFixture() (*GoalHandler, *testutil.MockGoalRepository) {
	repo := testutil.NewMockGoalRepository()
	return NewGoalHandler(service.NewGoalService(repo)), repo
}

func TestGoalHandler_CreateAndDuplicate(t *testing.T) {
	e := echo.New()
	h, _ := newGoalFixture()
	body := `{"categoria": "Alimentação", "valorMeta": "800.00", "mes": 3, "ano": 2024}`

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/goals", body), rec)
	setupClientContext(c, 1)
	require.NoError(t, h.CreateGoal(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var goal domain.Goal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &goal))
	assert.Equal(t, domain.GoalPeriodMonthly, goal.Periodo)
	assert.True(t, decimal.NewFromInt(800).Equal(goal.ValorMeta))

	rec = httptest.NewRecorder()
	c = e.NewContext(jsonRequest(http.MethodPost, "/api/v1/goals", body), rec)
	setupClientContext(c, 1)
	require.NoError(t, h.CreateGoal(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var problem ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, ErrorTypeConflict, problem.Type)
}

func TestGoalHandler_CreateInvalidMonth(t *testing.T) {
	e := echo.New()
	h, repo := newGoalFixture()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/goals", `{"categoria": "Lazer", "valorMeta": 100, "mes": 13, "ano": 2024}`), rec)
	setupClientContext(c, 1)
	require.NoError(t, h.CreateGoal(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, repo.Goals)
}

func TestGoalHandler_ListByMonth(t *testing.T) {
	e := echo.New()
	h, repo := newGoalFixture()
	repo.AddGoal(&domain.Goal{ClientID: 1, Categoria: "Lazer", ValorMeta: decimal.NewFromInt(200), Mes: 3, Ano: 2024})
	repo.AddGoal(&domain.Goal{ClientID: 1, Categoria: "Moradia", ValorMeta: decimal.NewFromInt(1500), Mes: 4, Ano: 2024})
	repo.AddGoal(&domain.Goal{ClientID: 2, Categoria: "Lazer", ValorMeta: decimal.NewFromInt(50), Mes: 3, Ano: 2024})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/goals?year=2024&month=3", nil), rec)
	setupClientContext(c, 1)
	require.NoError(t, h.GetGoals(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var goals []domain.Goal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &goals))
	require.Len(t, goals, 1)
	assert.Equal(t, "Lazer", goals[0].Categoria)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/goals?year=2024&month=5", nil), rec)
	setupClientContext(c, 1)
	require.NoError(t, h.GetGoals(c))
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/goals?year=x&month=3", nil), rec)
	setupClientContext(c, 1)
	require.NoError(t, h.GetGoals(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGoalHandler_UpdateAndDelete(t *testing.T) {
	e := echo.New()
	h, repo := newGoalFixture()
	repo.AddGoal(&domain.Goal{ID: 7, ClientID: 1, Categoria: "Lazer", ValorMeta: decimal.NewFromInt(200), Mes: 3, Ano: 2024, Periodo: domain.GoalPeriodMonthly})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/api/v1/goals/7", `{"categoria": "Lazer", "valorMeta": 350, "mes": 3, "ano": 2024}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("7")
	setupClientContext(c, 1)
	require.NoError(t, h.UpdateGoal(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decimal.NewFromInt(350).Equal(repo.Goals[7].ValorMeta))

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/v1/goals/7", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("7")
	setupClientContext(c, 2)
	require.NoError(t, h.DeleteGoal(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/api/v1/goals/7", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("7")
	setupClientContext(c, 1)
	require.NoError(t, h.DeleteGoal(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, repo.Goals)
}
