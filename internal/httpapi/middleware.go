package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
)

// requireAuth accepts a bearer token issued by the sign-in endpoints
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			respondError(c, http.StatusUnauthorized, "unauthorized", errMissingToken)
			c.Abort()
			return
		}
		claims, err := s.svc.Tokens.Parse(tokenString)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "unauthorized", err)
			c.Abort()
			return
		}
		c.Set(ctxUserID, claims.Subject)
		c.Set(ctxUsername, claims.Username)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if userID := c.GetString(ctxUserID); userID != "" {
			fields = append(fields, "user_id", userID)
		}

		switch {
		case status >= 500:
			s.log.Error("HTTP request", fields...)
		case status >= 400:
			s.log.Warn("HTTP request", fields...)
		default:
			s.log.Info("HTTP request", fields...)
		}
	}
}
