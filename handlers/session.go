package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookie    = "querygpt_session"
	sessionKey       = "session_id"
	sessionIssuedKey = "session_issued"
)

// SessionMiddleware makes sure every request carries a session id, issuing a
// cookie when the browser has none.
func (h *Handlers) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		if err == nil {
			_, err = uuid.Parse(id)
		}
		if err != nil {
			id = uuid.NewString()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     sessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(sessionIssuedKey, true)
		}
		c.Set(sessionKey, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}

// apiCaller keys the in-flight guards of the JSON API. Clients that send no
// session cookie get a new session on every request, so they are keyed by
// address instead.
func apiCaller(c *gin.Context) string {
	if c.GetBool(sessionIssuedKey) {
		return "client:" + c.ClientIP()
	}
	return sessionID(c)
}
