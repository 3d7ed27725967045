package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/gmstreak/core"
	"github.com/layer-3/gmstreak/service"
)

// SessionMiddleware creates middleware that validates session tokens
func SessionMiddleware(checkinService *service.CheckinService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		// Check if the Authorization header is present and in correct format
		if len(auth) < 8 || auth[:7] != "Bearer " {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		// Extract the token
		token := auth[7:]

		// Validate the token
		session, err := checkinService.ValidateSession(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			}
			return
		}

		// Set the wallet address in the context
		c.Set("walletAddress", session.Address)

		c.Next()
	}
}
