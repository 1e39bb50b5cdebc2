// internal/api/auth.go
package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "article-pipeline/internal/common/errors"
	"article-pipeline/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const principalKey = "principal"

var ErrMissingToken = errors.New("missing bearer token")

// Claims are the bearer token claims the service reads. Subject carries the
// user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SignToken issues an HS256 token for userID with the given role.
func SignToken(secret, userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies an HS256 token and returns the caller it identifies.
func ParseToken(secret, tokenString string) (models.Principal, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Principal{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return models.Principal{}, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return models.Principal{}, errors.New("token has no subject")
	}
	return models.Principal{UserID: claims.Subject, Role: claims.Role}, nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller in the gin context.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortWithError(c, apperrors.NewUnauthenticatedError(ErrMissingToken.Error()))
			return
		}

		principal, err := ParseToken(secret, token)
		if err != nil {
			abortWithError(c, apperrors.NewUnauthenticatedError(err.Error()))
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRole allows only callers whose role is in roles.
func RequireRole(roles []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := principalFrom(c)
		if principal.Role != "" {
			for _, role := range roles {
				if strings.EqualFold(role, principal.Role) {
					c.Next()
					return
				}
			}
		}
		abortWithError(c, apperrors.NewPermissionDeniedError(principal.Role))
	}
}

func principalFrom(c *gin.Context) models.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(models.Principal); ok {
			return p
		}
	}
	return models.Principal{}
}
