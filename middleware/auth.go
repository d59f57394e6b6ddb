// middleware/auth.go
package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sidhant-sriv/db-auth/session"
)

// RequireLogin lets the request through only when it carries a live
// session, which it attaches to the context for the handler.
func RequireLogin(sessions *session.Manager, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := sessions.Load(c)
		if errors.Is(err, session.ErrNoSession) {
			c.String(http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}
		if err != nil {
			log.ErrorContext(c.Request.Context(), "session lookup failed", "err", err)
			c.String(http.StatusInternalServerError, "Erreur serveur")
			c.Abort()
			return
		}

		session.Set(c, sess)
		c.Next()
	}
}

// CurrentSession retrieves the session set by RequireLogin.
func CurrentSession(c *gin.Context) *session.Session {
	sess, _ := session.FromContext(c)
	return sess
}
