package server

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sofatutor/copilot-metrics-gateway/internal/auth"
	"github.com/sofatutor/copilot-metrics-gateway/internal/authz"
)

// Session keys written by the login flow.
const (
	sessionAccessToken = "access_token"
	sessionExpiresAt   = "expires_at"
	sessionLogin       = "login"
	sessionName        = "name"
	sessionEmail       = "email"
	sessionUserID      = "user_id"
)

// loadSession reads the caller's login session, or nil when there is none.
func (s *Server) loadSession(c *gin.Context) *auth.Session {
	if !s.sessions {
		return nil
	}
	sess := sessions.Default(c)
	out := &auth.Session{
		AccessToken: stringValue(sess.Get(sessionAccessToken)),
		Identity: authz.Identity{
			Login: stringValue(sess.Get(sessionLogin)),
			Name:  stringValue(sess.Get(sessionName)),
			Email: stringValue(sess.Get(sessionEmail)),
			ID:    int64Value(sess.Get(sessionUserID)),
		},
	}
	if exp := int64Value(sess.Get(sessionExpiresAt)); exp > 0 {
		out.ExpiresAt = time.Unix(exp, 0)
	}
	if out.AccessToken == "" && out.Identity == (authz.Identity{}) {
		return nil
	}
	return out
}

// SaveSession stores a login session in the cookie. The login flow that
// obtains the token lives outside the gateway and calls this on success.
func SaveSession(c *gin.Context, s auth.Session) error {
	sess := sessions.Default(c)
	sess.Set(sessionAccessToken, s.AccessToken)
	if !s.ExpiresAt.IsZero() {
		sess.Set(sessionExpiresAt, s.ExpiresAt.Unix())
	}
	sess.Set(sessionLogin, s.Identity.Login)
	sess.Set(sessionName, s.Identity.Name)
	sess.Set(sessionEmail, s.Identity.Email)
	sess.Set(sessionUserID, s.Identity.ID)
	return sess.Save()
}

// ClearSession removes the login session.
func ClearSession(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	return sess.Save()
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func int64Value(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
