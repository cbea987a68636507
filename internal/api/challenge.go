package api

import (
	"encoding/json"                      // Raw metadata
	"finance_tracker/internal/challenge" // Lifecycle service
	"finance_tracker/internal/domain"    // Importing domain models
	"net/http"                           // HTTP status codes
	"strings"                            // String manipulation
	"time"                               // Suggestion clock

	"github.com/gin-gonic/gin"         // Gin web framework
	"github.com/gin-gonic/gin/binding" // Body re-binding
)

// startTarget decides whether a start request names a suggestion or describes a custom challenge
type startTarget struct {
	ChallengeID *uint `json:"challengeId"`
}

// Request struct for creating a custom challenge
type CustomChallengeRequest struct {
	Title       string               `json:"title" binding:"required,notblank,max=255"`
	Description string               `json:"description" binding:"omitempty,max=2000"`
	Type        domain.ChallengeType `json:"type" binding:"required,oneof=category_limit importance_limit time_based spending_reduction consistency"`
	TargetValue float64              `json:"targetValue" binding:"gte=0"`
	EndDate     string               `json:"endDate" binding:"required"`
	Metadata    json.RawMessage      `json:"metadata" binding:"required"`
}

// Request struct for progress updates
type ProgressRequest struct {
	Progress     *float64 `json:"progress" binding:"required"`
	CurrentValue *float64 `json:"currentValue"`
}

func challengeList(c *gin.Context, list []domain.Challenge, err error) {
	if err != nil {
		respondError(c, "challenge", err)
		return
	}
	if list == nil {
		list = []domain.Challenge{}
	}
	c.JSON(http.StatusOK, list)
}

// ListChallengesHandler returns every challenge of the user
func ListChallengesHandler(svc *challenge.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		list, err := svc.List(c.Request.Context(), userID)
		challengeList(c, list, err)
	}
}

// ActiveChallengesHandler returns the user's active challenges
func ActiveChallengesHandler(svc *challenge.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		list, err := svc.Active(c.Request.Context(), userID)
		challengeList(c, list, err)
	}
}

// SuggestionsHandler returns pending suggestions, generating them when there are none
func SuggestionsHandler(svc *challenge.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		list, err := svc.Suggestions(c.Request.Context(), userID, time.Now())
		challengeList(c, list, err)
	}
}

// StartChallengeHandler starts a suggestion by id, or creates a custom active challenge
func StartChallengeHandler(svc *challenge.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var target startTarget
		if err := c.ShouldBindBodyWith(&target, binding.JSON); err != nil {
			respondBindError(c, err)
			return
		}
		ctx := c.Request.Context()
		if target.ChallengeID != nil {
			started, err := svc.Start(ctx, userID, *target.ChallengeID)
			if err != nil {
				respondError(c, "challenge", err)
				return
			}
			c.JSON(http.StatusOK, started)
			return
		}

		var req CustomChallengeRequest
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			respondBindError(c, err)
			return
		}
		endDate, err := parseDate(req.EndDate)
		if err != nil {
			respondValidation(c, FieldError{Field: "endDate", Message: err.Error()})
			return
		}
		metadata, err := domain.ParseChallengeMetadata(req.Type, req.Metadata)
		if err != nil {
			respondError(c, "challenge", err)
			return
		}
		created, err := svc.CreateCustom(ctx, userID, challenge.CustomInput{
			Title:       strings.TrimSpace(req.Title),
			Description: req.Description,
			Type:        req.Type,
			TargetValue: req.TargetValue,
			EndDate:     endDate,
			Metadata:    metadata,
		})
		if err != nil {
			respondError(c, "challenge", err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

// CancelChallengeHandler dismisses one of the user's challenges
func CancelChallengeHandler(svc *challenge.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		cancelled, err := svc.Cancel(c.Request.Context(), userID, id)
		if err != nil {
			respondError(c, "challenge", err)
			return
		}
		c.JSON(http.StatusOK, cancelled)
	}
}

// UpdateProgressHandler records progress on one of the user's active challenges
func UpdateProgressHandler(svc *challenge.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req ProgressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		updated, err := svc.UpdateProgress(c.Request.Context(), userID, id, *req.Progress, req.CurrentValue)
		if err != nil {
			respondError(c, "challenge", err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}
