package utils

import (
	"errors"
	"time" // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
	"github.com/google/uuid"       // Token ids
)

// SessionTTL is how long an issued session token stays valid
const SessionTTL = 24 * time.Hour

// ErrInvalidToken is returned for tokens that fail validation
var ErrInvalidToken = errors.New("invalid or expired token")

// JWT Claims
type Claims struct {
	UserID               uint `json:"user_id"` // Custom claim for user ID
	jwt.RegisteredClaims      // Standard JWT claims, ID carries the jti
}

// Session is a freshly issued token with its id and expiry
type Session struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// GenerateJWT creates a session token for a given user ID
func GenerateJWT(userID uint, secret string, now time.Time) (Session, error) {
	expires := now.Add(SessionTTL)
	claims := Claims{
		UserID: userID, // Custom claim for user ID
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),            // Unique id so the token can be revoked
			ExpiresAt: jwt.NewNumericDate(expires), // Token expires in 24 hours
			IssuedAt:  jwt.NewNumericDate(now),     // Issued at current time
			NotBefore: jwt.NewNumericDate(now),     // Not valid before issue
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	signed, err := token.SignedString([]byte(secret))          // Sign the token with the secret
	if err != nil {
		return Session{}, err
	}
	return Session{Token: signed, ID: claims.ID, ExpiresAt: expires}, nil
}

// ParseJWT parses and validates a JWT token string
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err) // Return error if parsing fails
	}
	// Validate token and extract claims
	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != 0 && claims.ID != "" {
		return claims, nil // Return claims if valid
	}
	return nil, ErrInvalidToken
}
