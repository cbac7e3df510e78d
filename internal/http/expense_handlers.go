package http

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"spendtrack/internal/domain"
	"spendtrack/internal/service"
	"spendtrack/internal/storage"
)

const receiptURLTTL = 15 * time.Minute

type createExpenseRequest struct {
	Title      string          `json:"title" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Date       string          `json:"date" binding:"required"`
	CategoryID int64           `json:"categoryId" binding:"required"`
	Notes      *string         `json:"notes"`
}

type updateExpenseRequest struct {
	Title      *string          `json:"title"`
	Amount     *decimal.Decimal `json:"amount"`
	Date       *string          `json:"date"`
	CategoryID *int64           `json:"categoryId"`
	Notes      *string          `json:"notes"`
}

func (h *Handler) listExpenses(c *gin.Context) {
	filter, ok := h.parseExpenseFilter(c)
	if !ok {
		return
	}

	page, err := parseIntQuery(c, "page", 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}
	pageSize, err := parseIntQuery(c, "pageSize", service.DefaultPageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pageSize"})
		return
	}

	expenses, total, err := h.expenses.List(c.Request.Context(), currentUserID(c), filter, page, pageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = service.DefaultPageSize
	}
	if pageSize > service.MaxPageSize {
		pageSize = service.MaxPageSize
	}
	pages := (total + pageSize - 1) / pageSize

	c.JSON(http.StatusOK, ListExpensesResponse{
		Expenses: expensesToResponse(expenses),
		Pagination: PaginationResponse{
			Total:    total,
			Page:     page,
			PageSize: pageSize,
			Pages:    pages,
		},
	})
}

func (h *Handler) getExpense(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	expense, err := h.expenses.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenseToResponse(*expense))
}

func (h *Handler) createExpense(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	expense, err := h.expenses.Create(c.Request.Context(), currentUserID(c), service.CreateExpenseInput{
		Title:      req.Title,
		Amount:     req.Amount,
		Date:       date,
		CategoryID: req.CategoryID,
		Notes:      req.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expenseToResponse(*expense))
}

func (h *Handler) updateExpense(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req updateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := domain.ExpensePatch{
		Title:      req.Title,
		Amount:     req.Amount,
		CategoryID: req.CategoryID,
		Notes:      req.Notes,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		patch.Date = &date
	}

	expense, err := h.expenses.Update(c.Request.Context(), currentUserID(c), id, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenseToResponse(*expense))
}

func (h *Handler) deleteExpense(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	userID := currentUserID(c)

	expense, err := h.expenses.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.expenses.Delete(c.Request.Context(), userID, id); err != nil {
		h.respondError(c, err)
		return
	}

	// Receipt cleanup is best effort; a stale object must not fail the delete.
	if h.receipts != nil && expense.ReceiptURL != nil {
		if key, err := storage.ExtractObjectKey(*expense.ReceiptURL, h.bucket); err == nil {
			if err := h.receipts.DeleteObject(c.Request.Context(), h.bucket, key); err != nil {
				h.logger.WithError(err).Warn("failed to delete receipt object")
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "expense deleted successfully"})
}

func (h *Handler) getSummary(c *gin.Context) {
	filter, ok := h.parseExpenseFilter(c)
	if !ok {
		return
	}

	summary, err := h.expenses.Summarize(c.Request.Context(), currentUserID(c), filter.TimeFilter, filter.StartDate, filter.EndDate)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaryToResponse(summary))
}

func (h *Handler) uploadReceipt(c *gin.Context) {
	if h.receipts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "receipt storage is not configured"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	userID := currentUserID(c)

	if _, err := h.expenses.Get(c.Request.Context(), userID, id); err != nil {
		h.respondError(c, err)
		return
	}

	fileHeader, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receipt file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	key := fmt.Sprintf("%s/%d/%d-%s%s", h.keyPrefix, userID, id, uuid.NewString(), ext)
	location, err := h.receipts.PutObject(c.Request.Context(), h.bucket, key, file, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	expense, err := h.expenses.Update(c.Request.Context(), userID, id, domain.ExpensePatch{ReceiptURL: &location})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenseToResponse(*expense))
}

func (h *Handler) getReceipt(c *gin.Context) {
	if h.receipts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "receipt storage is not configured"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	expense, err := h.expenses.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if expense.ReceiptURL == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "expense has no receipt"})
		return
	}

	key, err := storage.ExtractObjectKey(*expense.ReceiptURL, h.bucket)
	if err != nil {
		h.respondError(c, err)
		return
	}
	url, err := h.receipts.PresignGet(c.Request.Context(), h.bucket, key, receiptURLTTL)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// parseExpenseFilter reads the shared filter query parameters used by both the
// listing and summary endpoints. An omitted timeFilter defaults to the current
// month; explicitly unrecognized values pass through and restrict nothing. On
// a malformed value it writes a 400 and returns ok=false.
func (h *Handler) parseExpenseFilter(c *gin.Context) (domain.ExpenseFilter, bool) {
	filter := domain.ExpenseFilter{
		TimeFilter:  domain.TimeFilter(c.DefaultQuery("timeFilter", string(domain.TimeFilterCurrentMonth))),
		SearchQuery: strings.TrimSpace(c.Query("searchQuery")),
	}

	if s := c.Query("startDate"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startDate"})
			return filter, false
		}
		filter.StartDate = &t
	}
	if s := c.Query("endDate"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endDate"})
			return filter, false
		}
		filter.EndDate = &t
	}

	for _, raw := range c.QueryArray("categories") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid categories"})
				return filter, false
			}
			filter.CategoryIDs = append(filter.CategoryIDs, id)
		}
	}

	if s := c.Query("minAmount"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid minAmount"})
			return filter, false
		}
		filter.MinAmount = &d
	}
	if s := c.Query("maxAmount"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid maxAmount"})
			return filter, false
		}
		filter.MaxAmount = &d
	}

	return filter, true
}

func parseIntQuery(c *gin.Context, name string, fallback int) (int, error) {
	s := c.Query(name)
	if s == "" {
		return fallback, nil
	}
	return strconv.Atoi(s)
}
