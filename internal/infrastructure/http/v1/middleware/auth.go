package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"planora/internal/core/apperror"
	appctx "planora/internal/core/context"
	"planora/internal/core/role"
)

// TokenVerifier validates an access token and resolves the caller identity.
type TokenVerifier interface {
	Verify(tokenString string) (*appctx.Identity, error)
}

// Auth validates the bearer token and installs the caller identity on the
// request context.
//
// A request with no credentials at all is rejected as unauthenticated (401);
// a request that presents a token which is malformed, expired or otherwise
// invalid is rejected as forbidden (403). The split lets clients tell
// "log in first" apart from "your session is no longer acceptable".
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			_ = c.Error(apperror.NewUnauthorized("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			_ = c.Error(apperror.NewForbidden("invalid authorization header format"))
			c.Abort()
			return
		}

		ident, err := verifier.Verify(parts[1])
		if err != nil {
			_ = c.Error(apperror.NewForbidden("invalid or expired token"))
			c.Abort()
			return
		}

		ctx := appctx.WithIdentity(c.Request.Context(), ident)
		c.Request = c.Request.WithContext(ctx)

		// Stored in gin context for access logging
		c.Set("user_id", ident.UserID.String())
		c.Set("role", ident.Role.String())

		c.Next()
	}
}

// OptionalAuth resolves the identity if a valid token is present but lets
// anonymous requests through. Used on public endpoints that personalize
// output for logged-in callers.
func OptionalAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.Next()
			return
		}

		if ident, err := verifier.Verify(parts[1]); err == nil && ident != nil {
			ctx := appctx.WithIdentity(c.Request.Context(), ident)
			c.Request = c.Request.WithContext(ctx)
			c.Set("user_id", ident.UserID.String())
			c.Set("role", ident.Role.String())
		}

		c.Next()
	}
}

// RequireRole rejects callers whose role is not in the allowed set.
// Must run after Auth.
func RequireRole(roles ...role.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := appctx.GetIdentity(c.Request.Context())
		if ident == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if ident.Role == allowed {
				c.Next()
				return
			}
		}

		_ = c.Error(
			apperror.NewForbidden("insufficient role").
				WithDetail("role", ident.Role.String()),
		)
		c.Abort()
	}
}
