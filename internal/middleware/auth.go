package middleware

import (
	"github.com/gin-gonic/gin"
)

// Authentication is a placeholder global middleware. It currently allows all requests.
// Platform access control fronts this service in production.
func Authentication(c *gin.Context) {
	c.Next()
}
