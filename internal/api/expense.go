package api

import (
	"context"                          // Repository calls
	"errors"                           // Error inspection
	"finance_tracker/internal/domain"  // Importing domain models
	"finance_tracker/internal/notify"  // Budget alerts
	"finance_tracker/internal/storage" // Repositories
	"finance_tracker/internal/summary" // Expense aggregation
	"finance_tracker/internal/utils"   // Utility functions
	"fmt"                              // Cache keys
	"net/http"                         // HTTP status codes
	"strings"                          // String manipulation
	"time"                             // Cache TTL

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
)

const summaryCacheTTL = 60 * time.Second // Summaries are cheap to rebuild

// ExpenseStore is what the expense handlers read and write through
type ExpenseStore interface {
	storage.ExpenseRepository
	GetCategory(ctx context.Context, id uint) (domain.Category, error)
}

// Request struct for creating an expense
type ExpenseRequest struct {
	Title      string            `json:"title" binding:"required,notblank,max=255"`                    // Short description
	Amount     float64           `json:"amount" binding:"required,gte=0.01"`                           // At least one cent
	CategoryID uint              `json:"categoryId" binding:"required"`                                // Must reference a category
	Date       string            `json:"date" binding:"required"`                                      // YYYY-MM-DD or RFC3339
	Notes      *string           `json:"notes" binding:"omitempty,max=2000"`                           // Optional notes
	Importance domain.Importance `json:"importance" binding:"omitempty,oneof=important normal luxury"` // Defaults to normal
}

// Request struct for updating an expense; absent fields are left unchanged
type UpdateExpenseRequest struct {
	Title      *string            `json:"title" binding:"omitempty,notblank,max=255"`
	Amount     *float64           `json:"amount" binding:"omitempty,gte=0.01"`
	CategoryID *uint              `json:"categoryId" binding:"omitempty,gt=0"`
	Date       *string            `json:"date"`
	Notes      *string            `json:"notes" binding:"omitempty,max=2000"`
	Importance *domain.Importance `json:"importance" binding:"omitempty,oneof=important normal luxury"`
}

// ExpenseQuery holds the filters shared by the list and summary endpoints
type ExpenseQuery struct {
	Month     int    `form:"month" binding:"omitempty,min=1,max=12"`
	Year      int    `form:"year" binding:"omitempty,min=2000,max=2100"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// periodFromQuery binds and validates the expense filters
func periodFromQuery(c *gin.Context) (summary.Period, bool) {
	var q ExpenseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return summary.Period{}, false
	}
	from, err := parseOptionalDate(q.StartDate)
	if err != nil {
		respondValidation(c, FieldError{Field: "startDate", Message: err.Error()})
		return summary.Period{}, false
	}
	to, err := parseOptionalDate(q.EndDate)
	if err != nil {
		respondValidation(c, FieldError{Field: "endDate", Message: err.Error()})
		return summary.Period{}, false
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		respondValidation(c, FieldError{Field: "endDate", Message: "must not be before startDate"})
		return summary.Period{}, false
	}
	return summary.Period{Month: q.Month, Year: q.Year, From: from, To: to}, true
}

func summaryCacheKey(userID uint, p summary.Period) string {
	format := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	}
	return fmt.Sprintf("summary:%d:m=%d:y=%d:from=%s:to=%s", userID, p.Month, p.Year, format(p.From), format(p.To))
}

// invalidateSummaries drops every cached summary of the user
func invalidateSummaries(ctx context.Context, rdb *redis.Client, userID uint) {
	if err := utils.DeleteCachePattern(ctx, rdb, fmt.Sprintf("summary:%d:*", userID)); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("Failed to invalidate summary cache")
	}
}

// checkCategory reports a validation error when the category does not exist
func checkCategory(c *gin.Context, expenses ExpenseStore, id uint) bool {
	_, err := expenses.GetCategory(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondValidation(c, FieldError{Field: "categoryId", Message: "category does not exist"})
		return false
	}
	if err != nil {
		respondError(c, "category", err)
		return false
	}
	return true
}

// ownedExpense loads an expense and checks it belongs to the user
func ownedExpense(c *gin.Context, expenses ExpenseStore, userID, id uint) (domain.Expense, bool) {
	e, err := expenses.GetExpense(c.Request.Context(), id)
	if err != nil {
		respondError(c, "expense", err)
		return e, false
	}
	if e.UserID != userID {
		respondError(c, "expense", domain.ErrForbidden)
		return e, false
	}
	return e, true
}

// ListExpensesHandler returns the user's expenses for the requested period
func ListExpensesHandler(svc *summary.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		p, ok := periodFromQuery(c)
		if !ok {
			return
		}
		expenses, err := svc.Expenses(c.Request.Context(), userID, p)
		if err != nil {
			respondError(c, "expense", err)
			return
		}
		if expenses == nil {
			expenses = []domain.Expense{}
		}
		c.JSON(http.StatusOK, expenses)
	}
}

// ExpenseSummaryHandler returns totals and breakdowns for the requested period
func ExpenseSummaryHandler(svc *summary.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		p, ok := periodFromQuery(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		key := summaryCacheKey(userID, p)
		var cached summary.Summary
		if found, err := utils.GetCache(ctx, rdb, key, &cached); err == nil && found {
			c.JSON(http.StatusOK, cached)
			return
		}
		s, err := svc.ForPeriod(ctx, userID, p)
		if err != nil {
			respondError(c, "summary", err)
			return
		}
		if err := utils.SetCache(ctx, rdb, key, s, summaryCacheTTL); err != nil {
			logrus.WithError(err).Warn("Failed to cache summary")
		}
		c.JSON(http.StatusOK, s)
	}
}

// CreateExpenseHandler records an expense and runs the budget check
func CreateExpenseHandler(expenses ExpenseStore, budget *notify.BudgetMonitor, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req ExpenseRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		date, err := parseDate(req.Date)
		if err != nil {
			respondValidation(c, FieldError{Field: "date", Message: err.Error()})
			return
		}
		if !checkCategory(c, expenses, req.CategoryID) {
			return
		}
		importance := req.Importance
		if importance == "" {
			importance = domain.ImportanceNormal
		}
		e := domain.Expense{
			Title:      strings.TrimSpace(req.Title),
			Amount:     req.Amount,
			CategoryID: req.CategoryID,
			Date:       date,
			Notes:      req.Notes,
			UserID:     userID,
			Importance: importance,
		}
		ctx := c.Request.Context()
		if err := expenses.CreateExpense(ctx, &e); err != nil {
			respondError(c, "expense", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"expense_id":  e.ID,
			"user_id":     userID,
			"amount":      e.Amount,
			"category_id": e.CategoryID,
		}).Info("Expense created")
		invalidateSummaries(ctx, rdb, userID)
		if budget != nil {
			budget.Check(ctx, userID, e.Date, e.Amount)
		}
		c.JSON(http.StatusCreated, e)
	}
}

// UpdateExpenseHandler changes one of the user's expenses
func UpdateExpenseHandler(expenses ExpenseStore, budget *notify.BudgetMonitor, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req UpdateExpenseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		e, ok := ownedExpense(c, expenses, userID, id)
		if !ok {
			return
		}
		before := e
		if req.Title != nil {
			e.Title = strings.TrimSpace(*req.Title)
		}
		if req.Amount != nil {
			e.Amount = *req.Amount
		}
		if req.CategoryID != nil && *req.CategoryID != e.CategoryID {
			if !checkCategory(c, expenses, *req.CategoryID) {
				return
			}
			e.CategoryID = *req.CategoryID
		}
		if req.Date != nil {
			date, err := parseDate(*req.Date)
			if err != nil {
				respondValidation(c, FieldError{Field: "date", Message: err.Error()})
				return
			}
			e.Date = date
		}
		if req.Notes != nil {
			e.Notes = req.Notes
		}
		if req.Importance != nil {
			e.Importance = *req.Importance
		}
		ctx := c.Request.Context()
		if err := expenses.UpdateExpense(ctx, &e); err != nil {
			respondError(c, "expense", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"expense_id": e.ID,
			"user_id":    userID,
		}).Info("Expense updated")
		invalidateSummaries(ctx, rdb, userID)
		if budget != nil {
			delta := e.Amount
			if before.Year == e.Year && before.Month == e.Month {
				delta = e.Amount - before.Amount // Same month: only the difference is new spending
			}
			budget.Check(ctx, userID, e.Date, delta)
		}
		c.JSON(http.StatusOK, e)
	}
}

// DeleteExpenseHandler removes one of the user's expenses
func DeleteExpenseHandler(expenses ExpenseStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if _, ok := ownedExpense(c, expenses, userID, id); !ok {
			return
		}
		ctx := c.Request.Context()
		if err := expenses.DeleteExpense(ctx, id); err != nil {
			respondError(c, "expense", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"expense_id": id,
			"user_id":    userID,
		}).Info("Expense deleted")
		invalidateSummaries(ctx, rdb, userID)
		c.JSON(http.StatusOK, gin.H{"message": "Expense deleted"})
	}
}
