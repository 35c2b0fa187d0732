// Package jwt reads display claims out of the API's bearer token.
//
// The web server never verifies tokens; the remote API does. Claims are only
// used to greet the user and show moderator controls, so parsing is unverified.
package jwt

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned when the token is opaque
var ErrNotJWT = errors.New("token is not a JWT")

// Claims is the token payload. The API has issued two field layouts over
// time; both are read.
type Claims struct {
	jwt.RegisteredClaims
	ID       string `json:"id,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	IsAdmin  bool   `json:"isAdmin,omitempty"`
}

// GetUserID returns the user id, checking both layouts and the subject
func (c *Claims) GetUserID() string {
	switch {
	case c.ID != "":
		return c.ID
	case c.UserID != "":
		return c.UserID
	}
	return c.Subject
}

// GetUserName returns the display name, checking both layouts
func (c *Claims) GetUserName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Username
}

// IsModerator reports whether the token claims moderation rights
func (c *Claims) IsModerator() bool {
	return c.IsAdmin || c.Role == "admin" || c.Role == "moderator"
}

// ParseUnverified decodes the payload without checking the signature
func ParseUnverified(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, errors.Join(ErrNotJWT, err)
	}
	return claims, nil
}
