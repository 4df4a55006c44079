package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// actorContextKey is the gin context key holding the authenticated actor.
const actorContextKey = "auth_actor"

// Middleware extracts and validates the bearer token on every request,
// storing the actor in the gin context.
func Middleware(validator *TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		actor, err := validator.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// ActorFrom returns the actor stored by Middleware.
func ActorFrom(c *gin.Context) (*Actor, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return nil, false
	}
	actor, ok := v.(*Actor)
	return actor, ok
}
