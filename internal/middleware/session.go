package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/attendix/backend/config"
	"github.com/attendix/backend/internal/session"
	"github.com/attendix/backend/pkg/response"
)

const (
	// ContextSession is the key for the loaded *session.Session in gin context.
	ContextSession = "session"
	// ContextRegisterNo is the key for the student register number in gin context.
	ContextRegisterNo = "register_no"
)

// Session returns a middleware that authenticates a request: it accepts the
// session JWT from the Authorization header or the session cookie, validates
// it, and loads the server-side session. A JWT whose session is gone gets a
// 401 "session expired" and a cleared cookie.
func Session(jwtService *session.JWTService, store *session.Store, cookieCfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie(cookieCfg.CookieName)
		}
		if token == "" {
			response.Unauthorized(c, "missing session token")
			c.Abort()
			return
		}

		claims, err := jwtService.Validate(token)
		if err != nil {
			ClearSessionCookie(c, cookieCfg)
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		sess, err := store.Get(c.Request.Context(), claims.SessionID)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				ClearSessionCookie(c, cookieCfg)
				response.Unauthorized(c, "session expired")
			} else {
				response.Internal(c, "failed to load session")
			}
			c.Abort()
			return
		}

		c.Set(ContextSession, sess)
		c.Set(ContextRegisterNo, sess.Student.RegisterNo)
		c.Next()
	}
}

// SessionFromContext returns the session loaded by the Session middleware.
func SessionFromContext(c *gin.Context) *session.Session {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

// SetSessionCookie writes the session JWT as an HttpOnly cookie.
func SetSessionCookie(c *gin.Context, cfg config.SessionConfig, token string) {
	maxAge := cfg.TTLHours * 3600
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, token, maxAge, "/", cfg.CookieDomain, cfg.CookieSecure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, cfg config.SessionConfig) {
	c.SetCookie(cfg.CookieName, "", -1, "/", cfg.CookieDomain, cfg.CookieSecure, true)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
