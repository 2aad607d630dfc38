package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const subjectKey = "auth.subject"

// ContextWithSubject stores the verified subject on the request context.
func ContextWithSubject(c *gin.Context, subject string) {
	c.Set(subjectKey, subject)
}

// SubjectFromContext returns the subject set by Middleware.
func SubjectFromContext(c *gin.Context) (string, bool) {
	val, ok := c.Get(subjectKey)
	if !ok {
		return "", false
	}
	subject, ok := val.(string)
	return subject, ok && subject != ""
}

// Middleware requires a valid bearer token on every request it guards.
// Missing, malformed, expired and forged credentials all get the same
// 401 response.
func Middleware(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authorization header required"})
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid authorization header"})
			return
		}

		tokenStr := strings.TrimSpace(header[len(prefix):])
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid authorization header"})
			return
		}

		subject, err := v.Verify(c.Request.Context(), tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid authentication credentials"})
			return
		}

		ContextWithSubject(c, subject)
		c.Next()
	}
}
