package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sahara-storefront/internal/session"
)

const (
	sessionHeader = "X-Session-ID"
	sessionCookie = "sahara_session"
	sessionCtxKey = "storefront.session"
)

// sessionMiddleware resolves the caller's session from the header or
// cookie, creating one when neither names a live session. The id is echoed
// back on every response. Requests for one session run one at a time.
func sessionMiddleware(registry *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(sessionHeader)
		if id == "" {
			id, _ = c.Cookie(sessionCookie)
		}
		s, _ := registry.GetOrCreate(id)
		c.Header(sessionHeader, s.ID)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, s.ID, 0, "/", "", false, true)
		c.Set(sessionCtxKey, s)
		s.Do(c.Next)
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionCtxKey).(*session.Session)
}
