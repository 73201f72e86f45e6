// api/middleware/cors.go
package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows credentialed requests from the dashboard origin.
func CORSMiddleware(origin string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{origin}
	corsConfig.AllowCredentials = true
	corsConfig.AddAllowHeaders("Authorization", "X-API-KEY", "X-CSRF-Token", "Cache-Control", "X-Requested-With")
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	return cors.New(corsConfig)
}
