package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"inventario/internal/core/apperror"
	appctx "inventario/internal/core/context"
)

// HeaderUserID carries the caller identity when no token validator is configured.
const HeaderUserID = "X-User-ID"

// SourceHeader marks an actor taken from HeaderUserID.
const SourceHeader = "header"

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*appctx.Actor, error)
}

// Auth middleware requires a valid bearer token and puts its actor in context.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		actor, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

// TrustedHeader takes the acting user from X-User-ID. Requests without the
// header run anonymously.
func TrustedHeader() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := strings.TrimSpace(c.GetHeader(HeaderUserID)); userID != "" {
			setActor(c, &appctx.Actor{UserID: userID, Source: SourceHeader})
		}
		c.Next()
	}
}

// Identity picks Auth when a validator is configured, TrustedHeader otherwise.
func Identity(validator TokenValidator) gin.HandlerFunc {
	if validator == nil {
		return TrustedHeader()
	}
	return Auth(validator)
}

func setActor(c *gin.Context, actor *appctx.Actor) {
	ctx := appctx.WithActor(c.Request.Context(), actor)
	c.Request = c.Request.WithContext(ctx)
	c.Set("user_id", actor.UserID)
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
