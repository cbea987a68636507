package api

import (
	"finance_tracker/internal/domain"  // Importing domain models
	"finance_tracker/internal/notify"  // Goal completion events
	"finance_tracker/internal/storage" // Repositories
	"net/http"                         // HTTP status codes
	"strings"                          // String manipulation
	"time"                             // Deadlines

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// Request struct for creating a savings goal
type SavingsGoalRequest struct {
	Title         string  `json:"title" binding:"required,notblank,max=255"`
	TargetAmount  float64 `json:"targetAmount" binding:"required,gt=0"`
	CurrentAmount float64 `json:"currentAmount" binding:"gte=0"`
	Deadline      *string `json:"deadline"`
}

// Request struct for updating a savings goal; absent fields are left unchanged
type UpdateSavingsGoalRequest struct {
	Title         *string  `json:"title" binding:"omitempty,notblank,max=255"`
	TargetAmount  *float64 `json:"targetAmount" binding:"omitempty,gt=0"`
	CurrentAmount *float64 `json:"currentAmount" binding:"omitempty,gte=0"`
	Deadline      *string  `json:"deadline"`
}

// Request struct for creating a sub-goal; progress is clamped into 0-100
type SubGoalRequest struct {
	GoalID   uint   `json:"goalId" binding:"required"`
	Title    string `json:"title" binding:"required,notblank,max=255"`
	Progress int    `json:"progress"`
}

// Request struct for updating a sub-goal
type UpdateSubGoalRequest struct {
	Title     *string `json:"title" binding:"omitempty,notblank,max=255"`
	Progress  *int    `json:"progress"`
	Completed *bool   `json:"completed"`
}

// parseDeadline reads an optional deadline; an empty string clears it
func parseDeadline(c *gin.Context, s *string) (*time.Time, bool) {
	if s == nil || *s == "" {
		return nil, true
	}
	t, err := parseDate(*s)
	if err != nil {
		respondValidation(c, FieldError{Field: "deadline", Message: err.Error()})
		return nil, false
	}
	return &t, true
}

// ownedGoal loads a savings goal and checks it belongs to the user
func ownedGoal(c *gin.Context, goals storage.SavingsGoalRepository, userID, id uint) (domain.SavingsGoal, bool) {
	g, err := goals.GetSavingsGoal(c.Request.Context(), id)
	if err != nil {
		respondError(c, "savings goal", err)
		return g, false
	}
	if g.UserID != userID {
		respondError(c, "savings goal", domain.ErrForbidden)
		return g, false
	}
	return g, true
}

// ListSavingsGoalsHandler returns the user's goals with their sub-goals
func ListSavingsGoalsHandler(goals storage.SavingsGoalRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		list, err := goals.ListSavingsGoals(c.Request.Context(), userID)
		if err != nil {
			respondError(c, "savings goal", err)
			return
		}
		if list == nil {
			list = []domain.SavingsGoal{}
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetSavingsGoalHandler returns one of the user's goals
func GetSavingsGoalHandler(goals storage.SavingsGoalRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		g, ok := ownedGoal(c, goals, userID, id)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, g)
	}
}

// CreateSavingsGoalHandler adds a savings goal
func CreateSavingsGoalHandler(goals storage.SavingsGoalRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req SavingsGoalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		deadline, ok := parseDeadline(c, req.Deadline)
		if !ok {
			return
		}
		g := domain.SavingsGoal{
			Title:         strings.TrimSpace(req.Title),
			TargetAmount:  req.TargetAmount,
			CurrentAmount: req.CurrentAmount,
			Deadline:      deadline,
			UserID:        userID,
			SubGoals:      []domain.SubGoal{},
		}
		if err := goals.CreateSavingsGoal(c.Request.Context(), &g); err != nil {
			respondError(c, "savings goal", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"goal_id": g.ID,
			"user_id": userID,
			"target":  g.TargetAmount,
		}).Info("Savings goal created")
		c.JSON(http.StatusCreated, g)
	}
}

// UpdateSavingsGoalHandler changes a goal and emits goal_completed when it crosses its target
func UpdateSavingsGoalHandler(goals storage.SavingsGoalRepository, dispatcher *notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req UpdateSavingsGoalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		g, ok := ownedGoal(c, goals, userID, id)
		if !ok {
			return
		}
		wasReached := g.Reached()
		if req.Title != nil {
			g.Title = strings.TrimSpace(*req.Title)
		}
		if req.TargetAmount != nil {
			g.TargetAmount = *req.TargetAmount
		}
		if req.CurrentAmount != nil {
			g.CurrentAmount = *req.CurrentAmount
		}
		if req.Deadline != nil {
			deadline, ok := parseDeadline(c, req.Deadline)
			if !ok {
				return
			}
			g.Deadline = deadline
		}
		ctx := c.Request.Context()
		if err := goals.UpdateSavingsGoal(ctx, &g); err != nil {
			respondError(c, "savings goal", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"goal_id": g.ID,
			"user_id": userID,
			"current": g.CurrentAmount,
		}).Info("Savings goal updated")
		if !wasReached && g.Reached() && dispatcher != nil {
			dispatcher.Dispatch(ctx, notify.GoalCompleted(g))
		}
		c.JSON(http.StatusOK, g)
	}
}

// CreateSubGoalHandler adds a sub-goal to one of the user's goals
func CreateSubGoalHandler(goals storage.SavingsGoalRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req SubGoalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		if _, ok := ownedGoal(c, goals, userID, req.GoalID); !ok {
			return
		}
		sg := domain.SubGoal{Title: strings.TrimSpace(req.Title), GoalID: req.GoalID}
		sg.SetProgress(req.Progress)
		if err := goals.CreateSubGoal(c.Request.Context(), &sg); err != nil {
			respondError(c, "sub-goal", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"sub_goal_id": sg.ID,
			"goal_id":     sg.GoalID,
			"user_id":     userID,
		}).Info("Sub-goal created")
		c.JSON(http.StatusCreated, sg)
	}
}

// UpdateSubGoalHandler changes a sub-goal; ownership is checked through its goal
func UpdateSubGoalHandler(goals storage.SavingsGoalRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req UpdateSubGoalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		ctx := c.Request.Context()
		sg, err := goals.GetSubGoal(ctx, id)
		if err != nil {
			respondError(c, "sub-goal", err)
			return
		}
		if _, ok := ownedGoal(c, goals, userID, sg.GoalID); !ok {
			return
		}
		if req.Title != nil {
			sg.Title = strings.TrimSpace(*req.Title)
		}
		if req.Progress != nil {
			sg.SetProgress(*req.Progress)
		}
		if req.Completed != nil {
			sg.Completed = *req.Completed // An explicit flag wins over the derived one
		}
		if err := goals.UpdateSubGoal(ctx, &sg); err != nil {
			respondError(c, "sub-goal", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"sub_goal_id": sg.ID,
			"progress":    sg.Progress,
			"user_id":     userID,
		}).Info("Sub-goal updated")
		c.JSON(http.StatusOK, sg)
	}
}
