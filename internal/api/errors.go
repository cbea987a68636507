package api

import (
	"encoding/json"                      // JSON decode errors
	"errors"                             // Error inspection
	"finance_tracker/internal/challenge" // Lifecycle errors
	"finance_tracker/internal/domain"    // Domain errors
	"finance_tracker/internal/storage"   // Storage sentinels
	"net/http"                           // HTTP status codes
	"reflect"                            // Struct tag lookup for field names
	"strconv"                            // Path parameter parsing
	"strings"                            // String manipulation
	"sync"                               // One-time validator setup

	"github.com/gin-gonic/gin"                                       // Gin web framework
	"github.com/gin-gonic/gin/binding"                               // Gin binding engine
	"github.com/go-playground/validator/v10"                         // Validation errors
	"github.com/go-playground/validator/v10/non-standard/validators" // notblank rule
	"github.com/sirupsen/logrus"                                     // Logging
)

// FieldError describes one invalid request field
type FieldError struct {
	Field   string `json:"field"`   // JSON name of the field
	Message string `json:"message"` // Human readable problem
}

// ValidationResponse is the body of every 400 caused by invalid input
type ValidationResponse struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}

var setupValidator sync.Once

// useJSONFieldNames makes validator report fields by their json or form tag name and
// registers the notblank rule
func useJSONFieldNames() {
	setupValidator.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			logrus.WithError(err).Error("Failed to register notblank validation")
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})
}

// respondValidation writes a 400 with per-field detail
func respondValidation(c *gin.Context, errs ...FieldError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ValidationResponse{Message: "Validation failed", Errors: errs})
}

// respondBindError turns a binding failure into a validation response
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		respondValidation(c, out...)
		return
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		respondValidation(c, FieldError{Field: typeErr.Field, Message: "must be a " + typeErr.Type.String()})
		return
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		respondValidation(c, FieldError{Field: "query", Message: "must be a number"})
		return
	}
	respondValidation(c, FieldError{Field: "body", Message: "malformed request"})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "hexcolor":
		return "must be a hex color such as #FF0000"
	case "notblank":
		return "must not be blank"
	case "alphanum":
		return "must contain only letters and digits"
	}
	return "is invalid"
}

// respondError maps service and storage errors onto status codes; resource names the entity
// in 403/404 messages
func respondError(c *gin.Context, resource string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": capitalize(resource) + " not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You do not have access to this " + resource})
	case errors.Is(err, storage.ErrDuplicate):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": capitalize(resource) + " already exists"})
	case errors.Is(err, challenge.ErrInvalidTransition):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, challenge.ErrInvalidEndDate):
		respondValidation(c, FieldError{Field: "endDate", Message: "must be in the future"})
	case errors.Is(err, domain.ErrInvalidMetadata):
		respondValidation(c, FieldError{Field: "metadata", Message: err.Error()})
	default:
		logrus.WithFields(logrus.Fields{
			"path":     c.FullPath(),
			"resource": resource,
			"user_id":  c.GetUint("userID"),
			"error":    err.Error(),
		}).Error("Request failed")
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// currentUserID reads the id stored by the session middleware
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID")
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return 0, false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return 0, false
	}
	return id, true
}

// pathID parses a positive integer path parameter
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondValidation(c, FieldError{Field: name, Message: "must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}
