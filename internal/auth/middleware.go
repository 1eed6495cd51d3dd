package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/campus-stack/testing-service/internal/authz"
	"github.com/gin-gonic/gin"
)

const actorContextKey = "auth.actor"

// Middleware authenticates every request via the Authorization header
// and stores the resulting actor in the gin context.
func Middleware(authenticator *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing bearer token",
			})
			return
		}

		actor, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, ErrAccountBlocked) {
				status = http.StatusLocked
			}
			c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// GetActor returns the authenticated actor placed by Middleware.
func GetActor(c *gin.Context) (*authz.Actor, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return nil, false
	}
	actor, ok := v.(*authz.Actor)
	return actor, ok
}
