package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"job-board-backend/internal/domain"
	"job-board-backend/pkg/apperror"
	"job-board-backend/pkg/logger"
)

// SessionCookie is checked when no Authorization header is sent.
const SessionCookie = "auth_token"

// BearerToken reads the session token from the Authorization header, falling
// back to the auth_token cookie.
func BearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// AdminSession lets a request through only when its session is PRESENT.
// An UNKNOWN session is a 503, never a 401: the caller should retry rather
// than be sent to the login page.
func AdminSession(authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, principal, err := authUC.Resolve(c.Request.Context(), BearerToken(c))
		switch state {
		case domain.SessionPresent:
		case domain.SessionUnknown:
			logger.Log.Warn("session could not be verified",
				"request_id", c.GetString(string(domain.KeyRequestID)),
				"error", err,
			)
			c.Error(apperror.Unavailable("Session could not be verified, please retry"))
			c.Abort()
			return
		default:
			c.Error(apperror.Unauthorized("Admin session required"))
			c.Abort()
			return
		}

		c.Set(string(domain.KeyPrincipal), principal)
		c.Set(string(domain.KeyUserID), principal.Subject)
		c.Set(string(domain.KeyUserEmail), principal.Email)

		ctx := context.WithValue(c.Request.Context(), domain.KeyPrincipal, principal)
		ctx = context.WithValue(ctx, domain.KeyUserEmail, principal.Email)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// PrincipalFrom returns the principal stored by AdminSession.
func PrincipalFrom(c *gin.Context) *domain.Principal {
	v, ok := c.Get(string(domain.KeyPrincipal))
	if !ok {
		return nil
	}
	p, _ := v.(*domain.Principal)
	return p
}
