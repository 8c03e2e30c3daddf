package middleware

import "github.com/gin-gonic/gin"

// FrameOptions sets X-Frame-Options on every response of the route.
func FrameOptions(value string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", value)
		c.Next()
	}
}
