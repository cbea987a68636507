package api

import (
	"errors"                              // Error inspection
	"finance_tracker/internal/domain"     // Importing domain models
	"finance_tracker/internal/middleware" // Session cookie and context keys
	"finance_tracker/internal/notify"     // Welcome notification
	"finance_tracker/internal/storage"    // Repositories
	"finance_tracker/internal/utils"      // Utility functions
	"net/http"                            // HTTP status codes
	"strings"                             // String manipulation
	"time"                                // Token expiry

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
	"golang.org/x/crypto/bcrypt"   // Password hashing
)

// Request struct for registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required,alphanum,min=3,max=32"` // Letters and digits only
	Password string `json:"password" binding:"required,min=8,max=64"`          // Plain password, hashed before storage
	Email    string `json:"email" binding:"required,email,max=255"`            // Contact address
	FullName string `json:"fullName" binding:"omitempty,max=255"`              // Optional display name
}

// Request struct for login
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	User  domain.User `json:"user"`  // Authenticated user
	Token string      `json:"token"` // JWT token, also set as the session cookie
}

// Request struct for salary updates
type SalaryRequest struct {
	MonthlySalary *float64 `json:"monthlySalary" binding:"required,gt=0"`
}

// Request struct for profile updates; absent fields are left unchanged
type ProfileRequest struct {
	FullName      *string  `json:"fullName" binding:"omitempty,max=255"`
	MonthlyBudget *float64 `json:"monthlyBudget" binding:"omitempty,gte=0"`
}

// RegisterHandler creates a user account
func RegisterHandler(users storage.UserRepository, dispatcher *notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, "user", err)
			return
		}
		user := domain.User{
			Username: req.Username,
			Password: string(hash),
			Email:    req.Email,
			FullName: strings.TrimSpace(req.FullName),
		}
		if err := users.CreateUser(c.Request.Context(), &user); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				// Username and email are both unique
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "Username or email already exists"})
				return
			}
			respondError(c, "user", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,
			"username": user.Username,
		}).Info("User registered")
		if dispatcher != nil {
			dispatcher.Dispatch(c.Request.Context(), domain.Event{
				UserID:  user.ID,
				Type:    domain.NotificationSystem,
				Title:   "Welcome",
				Message: "Your account is ready. Start by logging your first expense.",
			})
		}
		c.JSON(http.StatusCreated, user)
	}
}

// LoginHandler authenticates a user, sets the session cookie and returns the token
func LoginHandler(users storage.UserRepository, jwtSecret string, cookieSecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		user, err := users.GetUserByUsername(c.Request.Context(), req.Username)
		if errors.Is(err, storage.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		if err != nil {
			respondError(c, "user", err)
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		session, err := utils.GenerateJWT(user.ID, jwtSecret, time.Now())
		if err != nil {
			respondError(c, "session", err)
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, session.Token, int(utils.SessionTTL.Seconds()), "/", "", cookieSecure, true)
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
		}).Info("User logged in")
		c.JSON(http.StatusOK, AuthResponse{User: user, Token: session.Token})
	}
}

// LogoutHandler revokes the current token and clears the session cookie
func LogoutHandler(rdb *redis.Client, cookieSecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		tokenID := c.GetString(middleware.TokenIDKey)
		expiresAt := c.GetTime(middleware.TokenExpKey)
		if err := utils.RevokeToken(c.Request.Context(), rdb, tokenID, expiresAt); err != nil {
			respondError(c, "session", err)
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", cookieSecure, true)
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
		}).Info("User logged out")
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// GetUserHandler returns the authenticated user
func GetUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// UpdateSalaryHandler sets the user's monthly salary
func UpdateSalaryHandler(users storage.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		var req SalaryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		user.MonthlySalary = *req.MonthlySalary
		if err := users.UpdateUser(c.Request.Context(), &user); err != nil {
			respondError(c, "user", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":        user.ID,
			"monthly_salary": user.MonthlySalary,
		}).Info("Salary updated")
		c.JSON(http.StatusOK, user)
	}
}

// UpdateProfileHandler changes the display name and monthly budget
func UpdateProfileHandler(users storage.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		var req ProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		if req.FullName != nil {
			user.FullName = strings.TrimSpace(*req.FullName)
		}
		if req.MonthlyBudget != nil {
			user.MonthlyBudget = *req.MonthlyBudget
		}
		if err := users.UpdateUser(c.Request.Context(), &user); err != nil {
			respondError(c, "user", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
		}).Info("Profile updated")
		c.JSON(http.StatusOK, user)
	}
}
