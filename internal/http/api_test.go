package http

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"spendtrack/internal/auth"
	"spendtrack/internal/repository/sqlite"
	"spendtrack/internal/service"
)

type APITestSuite struct {
	suite.Suite
	db     *sql.DB
	router *gin.Engine
	token  string
}

func (s *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := sqlite.Open(":memory:")
	require.NoError(s.T(), err)
	s.db = db

	userRepo := sqlite.NewUserRepository(db)
	categoryRepo := sqlite.NewCategoryRepository(db)
	expenseRepo := sqlite.NewExpenseRepository(db)
	require.NoError(s.T(), userRepo.Init(ctx))
	require.NoError(s.T(), categoryRepo.Init(ctx))
	require.NoError(s.T(), expenseRepo.Init(ctx))
	require.NoError(s.T(), categoryRepo.Seed(ctx))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	handler := NewHandler(
		service.NewUserService(userRepo),
		service.NewCategoryService(categoryRepo),
		service.NewExpenseService(expenseRepo),
		auth.NewTokenIssuer("test-secret", time.Hour),
		nil,
		"",
		"receipts",
		logger,
	)

	s.router = gin.New()
	handler.RegisterRoutes(s.router, nil)

	s.token = s.register("alice@example.com", "supersecret")
}

func (s *APITestSuite) TearDownTest() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *APITestSuite) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	s.T().Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *APITestSuite) register(email, password string) string {
	s.T().Helper()

	rec := s.do(http.MethodPost, "/api/auth/register", gin.H{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(s.T(), http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(s.T(), resp.Token)
	return resp.Token
}

func (s *APITestSuite) createExpense(title, amount, date string, categoryID int64) int64 {
	s.T().Helper()

	rec := s.do(http.MethodPost, "/api/expenses", gin.H{
		"title":      title,
		"amount":     amount,
		"date":       date,
		"categoryId": categoryID,
	}, s.token)
	require.Equal(s.T(), http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID int64 `json:"id"`
	}
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ID
}

// thisMonth returns noon UTC on the given day of the current month, for
// expenses that must fall inside the default listing window.
func thisMonth(day int) string {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), day, 12, 0, 0, 0, time.UTC).Format(time.RFC3339)
}

func (s *APITestSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/api/health", nil, "")
	assert.Equal(s.T(), http.StatusOK, rec.Code)
}

func (s *APITestSuite) TestRegisterDuplicate() {
	rec := s.do(http.MethodPost, "/api/auth/register", gin.H{
		"email":    "alice@example.com",
		"password": "supersecret",
	}, "")
	assert.Equal(s.T(), http.StatusConflict, rec.Code)
}

func (s *APITestSuite) TestLogin() {
	rec := s.do(http.MethodPost, "/api/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "supersecret",
	}, "")
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "wrong",
	}, "")
	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)
}

func (s *APITestSuite) TestProtectedRoutesRequireToken() {
	assert.Equal(s.T(), http.StatusUnauthorized, s.do(http.MethodGet, "/api/expenses", nil, "").Code)
	assert.Equal(s.T(), http.StatusUnauthorized, s.do(http.MethodGet, "/api/expenses", nil, "garbage").Code)
	assert.Equal(s.T(), http.StatusUnauthorized, s.do(http.MethodGet, "/api/categories", nil, "").Code)
}

func (s *APITestSuite) TestListCategories() {
	rec := s.do(http.MethodGet, "/api/categories", nil, s.token)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var resp struct {
		Categories []CategoryResponse `json:"categories"`
	}
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(s.T(), resp.Categories, 10)
}

func (s *APITestSuite) TestExpenseLifecycle() {
	id := s.createExpense("Lunch", "12.50", "2024-03-01", 1)

	rec := s.do(http.MethodGet, fmt.Sprintf("/api/expenses/%d", id), nil, s.token)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var got ExpenseResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(s.T(), "Lunch", got.Title)
	assert.Equal(s.T(), "12.5", got.Amount.String())
	require.NotNil(s.T(), got.CategoryName)
	assert.Equal(s.T(), "Food", *got.CategoryName)

	rec = s.do(http.MethodPut, fmt.Sprintf("/api/expenses/%d", id), gin.H{
		"title": "Team lunch",
	}, s.token)
	require.Equal(s.T(), http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/expenses/%d", id), nil, s.token)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/expenses/%d", id), nil, s.token)
	assert.Equal(s.T(), http.StatusNotFound, rec.Code)
}

func (s *APITestSuite) TestListExpensesPagination() {
	for i := 1; i <= 12; i++ {
		s.createExpense("Expense", "1.00", thisMonth(i+1), 1)
	}

	rec := s.do(http.MethodGet, "/api/expenses?page=2&pageSize=5", nil, s.token)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var resp ListExpensesResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(s.T(), resp.Expenses, 5)
	assert.Equal(s.T(), 12, resp.Pagination.Total)
	assert.Equal(s.T(), 2, resp.Pagination.Page)
	assert.Equal(s.T(), 5, resp.Pagination.PageSize)
	assert.Equal(s.T(), 3, resp.Pagination.Pages)
}

func (s *APITestSuite) TestListExpensesFilterValidation() {
	assert.Equal(s.T(), http.StatusBadRequest,
		s.do(http.MethodGet, "/api/expenses?minAmount=abc", nil, s.token).Code)
	assert.Equal(s.T(), http.StatusBadRequest,
		s.do(http.MethodGet, "/api/expenses?categories=food", nil, s.token).Code)
	assert.Equal(s.T(), http.StatusBadRequest,
		s.do(http.MethodGet, "/api/expenses?startDate=not-a-date", nil, s.token).Code)
}

func (s *APITestSuite) TestListExpensesByCategory() {
	s.createExpense("Groceries", "10.00", thisMonth(2), 1)
	s.createExpense("Bus", "2.50", thisMonth(3), 2)

	rec := s.do(http.MethodGet, "/api/expenses?categories=1", nil, s.token)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var resp ListExpensesResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(s.T(), resp.Expenses, 1)
	assert.Equal(s.T(), "Groceries", resp.Expenses[0].Title)
}

func (s *APITestSuite) TestDefaultWindowIsCurrentMonth() {
	s.createExpense("Recent", "10.00", thisMonth(2), 1)
	s.createExpense("Ancient", "99.00", "2000-01-15", 1)

	// no timeFilter: only the current month's spend is visible
	rec := s.do(http.MethodGet, "/api/expenses", nil, s.token)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var listResp ListExpensesResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Equal(s.T(), 1, listResp.Pagination.Total)
	assert.Equal(s.T(), "Recent", listResp.Expenses[0].Title)

	rec = s.do(http.MethodGet, "/api/expenses/summary", nil, s.token)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var sumResp SummaryResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &sumResp))
	assert.Equal(s.T(), "10", sumResp.Total.String())

	// an explicitly unrecognized filter still restricts nothing
	rec = s.do(http.MethodGet, "/api/expenses?timeFilter=all", nil, s.token)
	require.Equal(s.T(), http.StatusOK, rec.Code)
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &listResp))
	assert.Equal(s.T(), 2, listResp.Pagination.Total)
}

func (s *APITestSuite) TestSummary() {
	s.createExpense("Groceries", "10.00", "2024-03-01", 1)
	s.createExpense("Restaurant", "30.00", "2024-03-02", 1)

	rec := s.do(http.MethodGet,
		"/api/expenses/summary?timeFilter=custom&startDate=2024-03-01&endDate=2024-03-31", nil, s.token)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var resp SummaryResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(s.T(), "40", resp.Total.String())
	require.NotEmpty(s.T(), resp.ByCategory)
	assert.Equal(s.T(), "Food", resp.ByCategory[0].Name)
	assert.InDelta(s.T(), 100.0, resp.ByCategory[0].Percentage, 0.001)
	assert.Len(s.T(), resp.RecentExpenses, 2)
}

func (s *APITestSuite) TestUsersCannotSeeEachOther() {
	id := s.createExpense("Lunch", "12.50", "2024-03-01", 1)

	bobToken := s.register("bob@example.com", "supersecret")
	rec := s.do(http.MethodGet, fmt.Sprintf("/api/expenses/%d", id), nil, bobToken)
	assert.Equal(s.T(), http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/expenses", nil, bobToken)
	require.Equal(s.T(), http.StatusOK, rec.Code)

	var resp ListExpensesResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(s.T(), resp.Pagination.Total)
}

func (s *APITestSuite) TestReceiptsDisabledWithoutStorage() {
	id := s.createExpense("Lunch", "12.50", "2024-03-01", 1)

	rec := s.do(http.MethodGet, fmt.Sprintf("/api/expenses/%d/receipt", id), nil, s.token)
	assert.Equal(s.T(), http.StatusServiceUnavailable, rec.Code)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
