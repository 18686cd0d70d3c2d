package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/authz"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Context keys set by the auth middleware.
const (
	UserIDKey  = "user_id"
	IsStaffKey = "is_staff"
	ClaimsKey  = "claims"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// AuthMiddleware rejects requests without valid credentials.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return authenticate(validator, true)
}

// OptionalAuthMiddleware lets anonymous requests through but still rejects
// a token that is present and invalid.
func OptionalAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return authenticate(validator, false)
}

func authenticate(validator TokenValidator, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				abortWithError(c, http.StatusUnauthorized, "authentication credentials were not provided")
				return
			}
			c.Next()
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if models.KindOf(err) == models.KindInternal {
				logging.Ctx(c.Request.Context()).Error().Err(err).Msg("token validation failed")
				abortWithError(c, http.StatusInternalServerError, "internal server error")
				return
			}
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}

		// Store user info in context
		c.Set(UserIDKey, claims.UserID)
		c.Set(IsStaffKey, claims.IsStaff)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// bearerToken accepts "Bearer <jwt>" and "Token <jwt>".
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	if !strings.EqualFold(scheme, "Bearer") && !strings.EqualFold(scheme, "Token") {
		return "", false
	}
	return token, true
}

// ActorFromContext returns the authenticated actor, or the anonymous one.
func ActorFromContext(c *gin.Context) authz.Actor {
	userID, _ := c.Get(UserIDKey)
	isStaff, _ := c.Get(IsStaffKey)
	id, _ := userID.(uint)
	staff, _ := isStaff.(bool)
	return authz.Actor{UserID: id, IsStaff: staff}
}

// ClaimsFromContext returns the claims of the validated token, if any.
func ClaimsFromContext(c *gin.Context) (*types.TokenClaims, bool) {
	value, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*types.TokenClaims)
	return claims, ok
}
