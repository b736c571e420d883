package web

import (
	"github.com/gin-gonic/gin"

	"billed/session"
)

const sessionUserContextKey = "session_user"

// Session cookies live for a work day.
const sessionCookieMaxAge = 8 * 3600

// cookieSession adapts the request's cookie jar to the session.Storage
// contract the containers consume. Values ride url-escaped in the cookie,
// which covers the JSON user record.
type cookieSession struct {
	c *gin.Context
}

func (s cookieSession) GetItem(key string) (string, bool) {
	value, err := s.c.Cookie(key)
	if err != nil {
		return "", false
	}
	return value, true
}

func (s cookieSession) SetItem(key, value string) {
	s.c.SetCookie(key, value, sessionCookieMaxAge, "/", "", false, true)
}

// sessionUser returns the user decoded by the gate middleware, falling back
// to the cookie for routes outside the gate.
func sessionUser(c *gin.Context) (*session.User, error) {
	if u, ok := c.Get(sessionUserContextKey); ok {
		if user, ok := u.(*session.User); ok {
			return user, nil
		}
	}
	return session.CurrentUser(cookieSession{c})
}
