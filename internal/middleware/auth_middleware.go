// internal/middleware/auth_middleware.go
package middleware

import (
	"context"
	"math/rand"

	"yadawity-service/internal/domain/auth"
	"yadawity-service/internal/pkg/response"
	"yadawity-service/internal/pkg/sessioncookie"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionValidator is the sole integration point every handler in the
// storefront consumes. Implemented by the auth service.
type SessionValidator interface {
	Validate(ctx context.Context, cookieValue string) (*auth.AuthResult, error)
	Sweep(ctx context.Context) (int64, error)
}

// sweepOneIn is the denominator of the probabilistic reaper trigger: roughly
// one in this many authenticated requests kicks off a ledger sweep.
const sweepOneIn = 100

type AuthMiddleware struct {
	validator SessionValidator
	logger    *zap.Logger
}

func NewAuthMiddleware(validator SessionValidator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		logger:    logger,
	}
}

// Auth validates the login cookie and sets the user identity in the request
// context. Every failure, whatever the cause, produces the same 401.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(sessioncookie.CookieName)
		if err != nil {
			response.Unauthorized(c)
			return
		}

		result, err := m.validator.Validate(c.Request.Context(), cookie)
		if err != nil {
			m.logger.Error("session validation failed", zap.Error(err))
			response.ServerError(c)
			return
		}
		if !result.Authenticated {
			response.Unauthorized(c)
			return
		}

		c.Set("user_id", result.UserID)
		c.Set("user_type", result.UserType)
		c.Set("session_id", result.SessionID)

		m.maybeSweep()
		c.Next()
	}
}

// OptionalAuth sets the user identity when a valid cookie is present but
// never aborts. Used by storefront pages that render for guests too.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(sessioncookie.CookieName)
		if err != nil {
			c.Next()
			return
		}

		result, err := m.validator.Validate(c.Request.Context(), cookie)
		if err != nil || !result.Authenticated {
			c.Next()
			return
		}

		c.Set("user_id", result.UserID)
		c.Set("user_type", result.UserType)
		c.Set("session_id", result.SessionID)
		c.Next()
	}
}

// RequireUserType restricts a route to the given account types.
// MUST be used after Auth().
func (m *AuthMiddleware) RequireUserType(types ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userType, ok := GetUserType(c)
		if !ok {
			response.Error(c, 403, "authentication required")
			return
		}

		for _, t := range types {
			if userType == t {
				c.Next()
				return
			}
		}

		response.Error(c, 403, "insufficient permissions")
	}
}

// maybeSweep opportunistically reaps dead ledger rows instead of relying on
// a background scheduler. Validation semantics never depend on it.
func (m *AuthMiddleware) maybeSweep() {
	if rand.Intn(sweepOneIn) != 0 {
		return
	}
	go func() {
		if _, err := m.validator.Sweep(context.Background()); err != nil {
			m.logger.Error("session sweep failed", zap.Error(err))
		}
	}()
}
