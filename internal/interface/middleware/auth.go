package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/crm-accounts/internal/application"
	"github.com/oksasatya/crm-accounts/pkg/helpers"
	"github.com/oksasatya/crm-accounts/pkg/response"
)

const ctxActorKey = "actor"

// ActorResolver turns an access token into the request's actor.
type ActorResolver interface {
	ResolveActor(ctx context.Context, accessToken string) (application.Actor, error)
}

// Auth requires a valid access token bound to the live session of an
// active account. The token is read from the access_token cookie, or from an
// Authorization: Bearer header.
func Auth(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "unauthenticated", "missing access token", nil)
			return
		}
		actor, err := resolver.ResolveActor(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, application.ErrInactiveAccount):
			response.Abort(c, http.StatusUnauthorized, "inactive_account", "account is inactive", nil)
			return
		case errors.Is(err, application.ErrInvalidCredentials):
			response.Abort(c, http.StatusUnauthorized, "unauthenticated", "invalid or expired session", nil)
			return
		default:
			_ = c.Error(err)
			response.Abort(c, http.StatusInternalServerError, "internal_error", "internal server error", nil)
			return
		}
		c.Set(ctxActorKey, actor)
		c.Next()
	}
}

// ActorFrom returns the actor stored by Auth.
func ActorFrom(c *gin.Context) (application.Actor, bool) {
	v, ok := c.Get(ctxActorKey)
	if !ok {
		return application.Actor{}, false
	}
	a, ok := v.(application.Actor)
	return a, ok
}

func accessToken(c *gin.Context) string {
	if t, err := c.Cookie(helpers.AccessCookie); err == nil && t != "" {
		return t
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
