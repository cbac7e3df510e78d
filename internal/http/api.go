package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"spendtrack/internal/auth"
	"spendtrack/internal/domain"
	"spendtrack/internal/service"
	"spendtrack/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users      service.UserService
	categories service.CategoryService
	expenses   service.ExpenseService
	tokens     *auth.TokenIssuer
	receipts   storage.Service
	bucket     string
	keyPrefix  string
	logger     *logrus.Logger
}

func NewHandler(
	users service.UserService,
	categories service.CategoryService,
	expenses service.ExpenseService,
	tokens *auth.TokenIssuer,
	receipts storage.Service,
	bucket, keyPrefix string,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		users:      users,
		categories: categories,
		expenses:   expenses,
		tokens:     tokens,
		receipts:   receipts,
		bucket:     bucket,
		keyPrefix:  keyPrefix,
		logger:     logger,
	}
}

// RegisterRoutes attaches all endpoints. authLimiter is applied to the
// register/login routes only and may be nil.
func (h *Handler) RegisterRoutes(router *gin.Engine, authLimiter *RateLimiter) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	public := api.Group("/auth")
	if authLimiter != nil {
		public.Use(authLimiter.Middleware())
	}
	public.POST("/register", h.register)
	public.POST("/login", h.login)

	protected := api.Group("")
	protected.Use(h.requireAuth())
	{
		protected.GET("/auth/profile", h.getProfile)
		protected.PUT("/auth/profile", h.updateProfile)
		protected.POST("/auth/change-password", h.changePassword)

		protected.GET("/categories", h.listCategories)
		protected.POST("/categories", h.createCategory)
		protected.PUT("/categories/:id", h.updateCategory)
		protected.DELETE("/categories/:id", h.deleteCategory)

		protected.GET("/expenses", h.listExpenses)
		protected.GET("/expenses/summary", h.getSummary)
		protected.GET("/expenses/:id", h.getExpense)
		protected.POST("/expenses", h.createExpense)
		protected.PUT("/expenses/:id", h.updateExpense)
		protected.DELETE("/expenses/:id", h.deleteExpense)
		protected.POST("/expenses/:id/receipt", h.uploadReceipt)
		protected.GET("/expenses/:id/receipt", h.getReceipt)
	}
}

// respondError maps the service error taxonomy onto HTTP statuses.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).Error("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// parseDate accepts a calendar date or a full RFC3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

type UserResponse struct {
	ID          int64   `json:"id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"displayName,omitempty"`
	PhotoURL    *string `json:"photoURL,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

type CategoryResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ExpenseResponse serializes an enriched expense. Amount marshals as a
// decimal string, never a binary float.
type ExpenseResponse struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"userId"`
	Title         string          `json:"title"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	CategoryID    *int64          `json:"categoryId"`
	CategoryName  *string         `json:"categoryName,omitempty"`
	CategoryColor *string         `json:"categoryColor,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	ReceiptURL    *string         `json:"receiptUrl,omitempty"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
}

type PaginationResponse struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Pages    int `json:"pages"`
}

type ListExpensesResponse struct {
	Expenses   []ExpenseResponse  `json:"expenses"`
	Pagination PaginationResponse `json:"pagination"`
}

type CategorySummaryResponse struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Color      string          `json:"color"`
	Amount     decimal.Decimal `json:"amount"`
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
}

type SummaryResponse struct {
	Total          decimal.Decimal           `json:"total"`
	ByCategory     []CategorySummaryResponse `json:"byCategory"`
	RecentExpenses []ExpenseResponse         `json:"recentExpenses"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
}

func categoryToResponse(category domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:    category.ID,
		Name:  category.Name,
		Color: category.Color,
	}
}

func expenseToResponse(expense domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:            expense.ID,
		UserID:        expense.UserID,
		Title:         expense.Title,
		Amount:        expense.Amount,
		Date:          expense.Date.Format(time.RFC3339),
		CategoryID:    expense.CategoryID,
		CategoryName:  expense.CategoryName,
		CategoryColor: expense.CategoryColor,
		Notes:         expense.Notes,
		ReceiptURL:    expense.ReceiptURL,
		CreatedAt:     expense.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     expense.UpdatedAt.Format(time.RFC3339),
	}
}

func expensesToResponse(expenses []domain.Expense) []ExpenseResponse {
	resp := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		resp[i] = expenseToResponse(expenses[i])
	}
	return resp
}

func summaryToResponse(summary *domain.Summary) SummaryResponse {
	byCategory := make([]CategorySummaryResponse, len(summary.ByCategory))
	for i, entry := range summary.ByCategory {
		byCategory[i] = CategorySummaryResponse{
			ID:         entry.CategoryID,
			Name:       entry.Name,
			Color:      entry.Color,
			Amount:     entry.Amount,
			Count:      entry.Count,
			Percentage: entry.Percentage,
		}
	}
	return SummaryResponse{
		Total:          summary.Total,
		ByCategory:     byCategory,
		RecentExpenses: expensesToResponse(summary.RecentExpenses),
	}
}
