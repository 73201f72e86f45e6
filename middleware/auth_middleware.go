package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"funnelscope/api/utils"
)

// Context keys set by AuthRequired.
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)

const (
	apiKeyHeader = "X-API-KEY"
	tokenCookie  = "jwt_token"
)

// TokenValidator validates analyst tokens.
type TokenValidator interface {
	Validate(tokenString string) (*utils.Claims, error)
}

// AuthRequired accepts either the service API key or an analyst JWT from the
// jwt_token cookie or a Bearer Authorization header. An empty apiKey
// disables key authentication.
func AuthRequired(tokens TokenValidator, apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader(apiKeyHeader); apiKey != "" && key != "" &&
			subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
			c.Next()
			return
		}

		tokenString, err := c.Cookie(tokenCookie)
		if err != nil || tokenString == "" {
			tokenString = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if tokenString == "" {
			log.WithField("path", c.Request.URL.Path).Debug("No JWT token found in cookie or header.")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			log.WithError(err).WithField("path", c.Request.URL.Path).Info("Rejected invalid JWT token.")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid or expired token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}
