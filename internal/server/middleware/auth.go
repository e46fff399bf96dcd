package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/agentstation/fieldeval/internal/server/response"
)

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey      string
	HeaderName  string
	PublicPaths []string
}

// DefaultAuthConfig returns default authentication configuration.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		HeaderName:  "X-API-Key",
		PublicPaths: []string{"/health"},
	}
}

// Auth rejects requests to non-public paths that lack the API key.
func Auth(config AuthConfig, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isPublicPath(c.Request.URL.Path, config.PublicPaths) {
			c.Next()
			return
		}

		key := extractAPIKey(c, config)
		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(config.APIKey)) != 1 {
			logger.Warn().
				Str("path", c.Request.URL.Path).
				Str("client_ip", c.ClientIP()).
				Bool("key_provided", key != "").
				Msg("Authentication failed")
			response.Unauthorized(c, "Provide a valid API key in the "+config.HeaderName+" header")
			return
		}
		c.Next()
	}
}

func isPublicPath(path string, publicPaths []string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

// extractAPIKey reads the configured header, then Authorization with or
// without a Bearer prefix.
func extractAPIKey(c *gin.Context, config AuthConfig) string {
	if key := c.GetHeader(config.HeaderName); key != "" {
		return key
	}
	auth := c.GetHeader("Authorization")
	return strings.TrimPrefix(auth, "Bearer ")
}
