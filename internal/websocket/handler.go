package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaWS "github.com/gorilla/websocket"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/auth"
)

var upgrader = gorillaWS.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// origin checking belongs to the reverse proxy in production
		return true
	},
}

// Handler upgrades an authenticated connection and subscribes it to
// workflow events. The token travels in the query string because
// browsers cannot set headers on websocket upgrades.
func Handler(hub *Hub, validator *auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		actor, err := validator.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "upgrade failed"})
			return
		}

		client := NewClient(uuid.NewString(), actor.ID, hub, conn)
		hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
