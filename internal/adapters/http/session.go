package httpadapter

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Mozzzaic/banani-ai-test/internal/domain"
)

const (
	DefaultCookieName   = "screensmith_session_id"
	DefaultCookieMaxAge = 7 * 24 * time.Hour

	// SessionHeader carries the session id for clients that do not keep cookies.
	SessionHeader = "X-Session-ID"

	maxSessionIDLen = 128
)

// sessionID reads the caller's session id from the cookie, then the header.
func (s *Server) sessionID(c *gin.Context) (domain.SessionID, bool) {
	if v, err := c.Cookie(s.opts.CookieName); err == nil && validSessionID(v) {
		return domain.SessionID(v), true
	}
	if v := c.GetHeader(SessionHeader); validSessionID(v) {
		return domain.SessionID(v), true
	}
	return "", false
}

// ensureSession returns the caller's id, minting one when absent, and
// re-issues the cookie so its lifetime slides with every request.
func (s *Server) ensureSession(c *gin.Context) domain.SessionID {
	id, ok := s.sessionID(c)
	if !ok {
		id = domain.SessionID(uuid.NewString())
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.opts.CookieName, string(id), int(s.opts.CookieMaxAge.Seconds()), "/", "", s.opts.SecureCookies, true)
	c.Header(SessionHeader, string(id))
	return id
}

func validSessionID(v string) bool {
	return v != "" && len(v) <= maxSessionIDLen
}
