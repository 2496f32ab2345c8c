package middleware

import "github.com/gin-gonic/gin"

// NoStore marks every response as non-cacheable so browsers never show
// a stale portfolio or balance after navigating back.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Next()
	}
}
