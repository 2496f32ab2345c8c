package middleware

import (
	"net/http" // HTTP status codes

	"trading_sim/internal/utils" // Session token helpers

	"github.com/gin-gonic/gin" // Gin web framework
)

// SessionAuth gates routes behind an active session. The session is a
// signed token in an HTTP-only cookie; any missing, expired or invalid
// token redirects the browser to the login page instead of raising a
// data error.
func SessionAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(utils.SessionCookie)
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		claims, err := utils.ParseSessionToken(token, secret)
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Set("userID", claims.UserID) // Store userID in context
		c.Next()
	}
}
