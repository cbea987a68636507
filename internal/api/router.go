package api

import (
	"context"                             // Health check
	"finance_tracker/internal/challenge"  // Challenge service
	"finance_tracker/internal/middleware" // Custom middleware
	"finance_tracker/internal/notify"     // Notifications
	"finance_tracker/internal/storage"    // Repositories
	"finance_tracker/internal/summary"    // Expense aggregation
	"net/http"                            // HTTP status codes
	"time"                                // Health check timeout

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
)

// Pinger reports whether a backing service answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps is everything the router wires into handlers
type Deps struct {
	Store        storage.Store
	Redis        *redis.Client    // Optional; caching and logout revocation are skipped without it
	Publisher    notify.Publisher // Optional AMQP publisher for notifications
	Health       Pinger           // Optional database health check
	JWTSecret    string
	CookieSecure bool
}

// NewRouter builds the gin engine with every route of the API
func NewRouter(d Deps) *gin.Engine {
	useJSONFieldNames()

	dispatcher := notify.NewDispatcher(d.Store, d.Publisher)
	notifications := notify.NewService(d.Store, dispatcher)
	budget := notify.NewBudgetMonitor(d.Store, d.Store, dispatcher)
	summaries := summary.NewService(d.Store, d.Store)
	challenges := challenge.NewService(d.Store, dispatcher)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.WithError(err).Warn("Failed to set trusted proxies")
	}

	r.GET("/healthz", HealthHandler(d.Health, d.Redis))

	apiGroup := r.Group("/api")
	apiGroup.POST("/register", RegisterHandler(d.Store, dispatcher))             // Registration endpoint
	apiGroup.POST("/login", LoginHandler(d.Store, d.JWTSecret, d.CookieSecure)) // Login endpoint

	// Everything below requires a session
	authGroup := apiGroup.Group("")
	authGroup.Use(middleware.JWTAuthMiddleware(d.JWTSecret, d.Redis), middleware.CurrentUserMiddleware(d.Store))
	authGroup.POST("/logout", LogoutHandler(d.Redis, d.CookieSecure))

	authGroup.GET("/user", GetUserHandler())
	authGroup.PUT("/user/salary", UpdateSalaryHandler(d.Store))
	authGroup.PUT("/user/profile", UpdateProfileHandler(d.Store))

	authGroup.GET("/categories", ListCategoriesHandler(d.Store, d.Redis))
	authGroup.POST("/categories", CreateCategoryHandler(d.Store, d.Redis))

	authGroup.GET("/expenses", ListExpensesHandler(summaries))
	authGroup.GET("/expenses/summary", ExpenseSummaryHandler(summaries, d.Redis))
	authGroup.POST("/expenses", CreateExpenseHandler(d.Store, budget, d.Redis))
	authGroup.PUT("/expenses/:id", UpdateExpenseHandler(d.Store, budget, d.Redis))
	authGroup.DELETE("/expenses/:id", DeleteExpenseHandler(d.Store, d.Redis))

	authGroup.GET("/savings-goals", ListSavingsGoalsHandler(d.Store))
	authGroup.GET("/savings-goals/:id", GetSavingsGoalHandler(d.Store))
	authGroup.POST("/savings-goals", CreateSavingsGoalHandler(d.Store))
	authGroup.PUT("/savings-goals/:id", UpdateSavingsGoalHandler(d.Store, dispatcher))
	authGroup.POST("/sub-goals", CreateSubGoalHandler(d.Store))
	authGroup.PUT("/sub-goals/:id", UpdateSubGoalHandler(d.Store))

	authGroup.GET("/challenges", ListChallengesHandler(challenges))
	authGroup.GET("/challenges/active", ActiveChallengesHandler(challenges))
	authGroup.GET("/challenges/suggestions", SuggestionsHandler(challenges))
	authGroup.POST("/challenges/start", StartChallengeHandler(challenges))
	authGroup.PUT("/challenges/:id/cancel", CancelChallengeHandler(challenges))
	authGroup.PUT("/challenges/:id/update-progress", UpdateProgressHandler(challenges))

	authGroup.GET("/notifications", ListNotificationsHandler(notifications))
	authGroup.GET("/notifications/unread-count", UnreadCountHandler(notifications))
	authGroup.PUT("/notifications/mark-all-read", MarkAllReadHandler(notifications))
	authGroup.PUT("/notifications/:id/read", MarkReadHandler(notifications))

	return r
}

// HealthHandler reports whether the database and redis answer
func HealthHandler(db Pinger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		status := gin.H{"status": "ok"}
		if db != nil {
			if err := db.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
				return
			}
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				status["redis"] = "unavailable" // Cache is best-effort
			}
		}
		c.JSON(http.StatusOK, status)
	}
}
