// Package session carries the caller's credential through a request.
//
// The credential lives in a single cookie. Middleware reads it once and
// injects a Session; handlers pass that Session explicitly to every service
// call that needs the bearer token.
package session

import (
	"github.com/gin-gonic/gin"

	"github.com/kavyapath/kavyapath-web/pkg/jwt"
)

const contextKey = "kavyapath_session"

// Session is the request's view of the credential
type Session struct {
	token   string
	claims  *jwt.Claims
	visitor string
}

// New builds a session around a raw token; an empty token is anonymous
func New(token string) *Session {
	s := &Session{token: token}
	if token != "" {
		if c, err := jwt.ParseUnverified(token); err == nil {
			s.claims = c
		}
	}
	return s
}

// Anonymous returns a session without a credential
func Anonymous() *Session {
	return &Session{}
}

// Token returns the bearer token and whether one is present
func (s *Session) Token() (string, bool) {
	if s == nil || s.token == "" {
		return "", false
	}
	return s.token, true
}

// Authenticated reports whether a token is present. Validity is the API's call.
func (s *Session) Authenticated() bool {
	_, ok := s.Token()
	return ok
}

// BearerHeader is the Authorization header value, or "" when anonymous
func (s *Session) BearerHeader() string {
	if t, ok := s.Token(); ok {
		return "Bearer " + t
	}
	return ""
}

// Claims returns display claims when the token is a JWT
func (s *Session) Claims() (*jwt.Claims, bool) {
	if s == nil || s.claims == nil {
		return nil, false
	}
	return s.claims, true
}

// DisplayName is the user's name for page headers, or ""
func (s *Session) DisplayName() string {
	if c, ok := s.Claims(); ok {
		return c.GetUserName()
	}
	return ""
}

// IsModerator reports whether the token claims moderation rights
func (s *Session) IsModerator() bool {
	c, ok := s.Claims()
	return ok && c.IsModerator()
}

// ID is a stable key for session-scoped state (drafts, transcripts)
func (s *Session) ID() string {
	if c, ok := s.Claims(); ok && c.GetUserID() != "" {
		return c.GetUserID()
	}
	if t, ok := s.Token(); ok {
		return hashToken(t)
	}
	if s != nil && s.visitor != "" {
		return "v:" + s.visitor
	}
	return ""
}

// From returns the session injected by Middleware, or an anonymous one
func From(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	return Anonymous()
}

func set(c *gin.Context, s *Session) {
	c.Set(contextKey, s)
}
