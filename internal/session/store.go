package session

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kavyapath/kavyapath-web/internal/config"
)

// VisitorCookie identifies anonymous readers for session-scoped state
const VisitorCookie = "kp_visitor"

// Store reads and writes the credential cookie
type Store struct {
	name   string
	maxAge int
	secure bool
	domain string
}

// NewStore creates a cookie store from configuration
func NewStore(cfg config.SessionConfig) *Store {
	return &Store{
		name:   cfg.CookieName,
		maxAge: int(cfg.MaxAge.Seconds()),
		secure: cfg.Secure,
		domain: cfg.Domain,
	}
}

// Load reads the session from the request cookie
func (s *Store) Load(c *gin.Context) *Session {
	token, err := c.Cookie(s.name)
	if err != nil || token == "" {
		return &Session{visitor: s.visitor(c)}
	}
	return New(token)
}

// visitor returns the anonymous visitor id, issuing one when missing
func (s *Store) visitor(c *gin.Context) string {
	if v, err := c.Cookie(VisitorCookie); err == nil {
		if _, err := uuid.Parse(v); err == nil {
			return v
		}
	}
	v := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(VisitorCookie, v, s.maxAge, "/", s.domain, s.secure, true)
	return v
}

// Set stores the token and makes it the request's session
func (s *Store) Set(c *gin.Context, token string) *Session {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(s.name, token, s.maxAge, "/", s.domain, s.secure, true)
	sess := New(token)
	set(c, sess)
	return sess
}

// Clear removes the cookie and leaves the request anonymous
func (s *Store) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(s.name, "", -1, "/", s.domain, s.secure, true)
	set(c, Anonymous())
}

func hashToken(t string) string {
	sum := sha256.Sum256([]byte(t))
	return hex.EncodeToString(sum[:16])
}
