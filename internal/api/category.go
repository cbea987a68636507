package api

import (
	"finance_tracker/internal/domain"  // Importing domain models
	"finance_tracker/internal/storage" // Repositories
	"finance_tracker/internal/utils"   // Utility functions
	"net/http"                         // HTTP status codes
	"strings"                          // String manipulation
	"time"                             // Cache TTL

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
)

const (
	categoriesCacheKey = "categories:all" // Cache key of the category list
	categoriesCacheTTL = 10 * time.Minute // Categories change rarely
)

// Request struct for creating a category
type CategoryRequest struct {
	Name  string `json:"name" binding:"required,notblank,max=64"`
	Icon  string `json:"icon" binding:"omitempty,max=32"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}

// ListCategoriesHandler returns every category, served from redis when cached
func ListCategoriesHandler(categories storage.CategoryRepository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var cached []domain.Category
		if found, err := utils.GetCache(ctx, rdb, categoriesCacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, cached)
			return
		}
		list, err := categories.ListCategories(ctx)
		if err != nil {
			respondError(c, "category", err)
			return
		}
		if list == nil {
			list = []domain.Category{}
		}
		if err := utils.SetCache(ctx, rdb, categoriesCacheKey, list, categoriesCacheTTL); err != nil {
			logrus.WithError(err).Warn("Failed to cache categories")
		}
		c.JSON(http.StatusOK, list)
	}
}

// CreateCategoryHandler adds a category and drops the cached list
func CreateCategoryHandler(categories storage.CategoryRepository, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		category := domain.Category{Name: strings.TrimSpace(req.Name), Icon: req.Icon, Color: req.Color}
		ctx := c.Request.Context()
		if err := categories.CreateCategory(ctx, &category); err != nil {
			respondError(c, "category", err)
			return
		}
		if err := utils.DeleteCache(ctx, rdb, categoriesCacheKey); err != nil {
			logrus.WithError(err).Warn("Failed to invalidate category cache")
		}
		logrus.WithFields(logrus.Fields{
			"category_id": category.ID,
			"name":        category.Name,
		}).Info("Category created")
		c.JSON(http.StatusCreated, category)
	}
}
