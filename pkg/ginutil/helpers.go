package ginutil

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// WantsJSON reports whether the caller asked for a JSON reply rather than a page
func WantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json") ||
		c.GetHeader("X-Requested-With") == "XMLHttpRequest" ||
		c.ContentType() == "application/json"
}

// PostFormTrim returns a form value with surrounding whitespace removed
func PostFormTrim(c *gin.Context, key string) string {
	return strings.TrimSpace(c.PostForm(key))
}

// LocalRedirect returns target when it is a same-site path, fallback otherwise
func LocalRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return fallback
	}
	return u.RequestURI()
}

// WithNext appends a next= parameter pointing back at the current request
func WithNext(path string, c *gin.Context) string {
	if c.Request.Method != "GET" {
		return path
	}
	return path + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
}

// FlashCookie carries one notice across a redirect
const FlashCookie = "kp_flash"

// SetFlash stores a notice for the next page render
func SetFlash(c *gin.Context, kind, message string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, url.QueryEscape(kind+"|"+message), 60, "/", "", false, true)
}

// TakeFlash returns and clears the pending notice
func TakeFlash(c *gin.Context) (kind, message string, ok bool) {
	raw, err := c.Cookie(FlashCookie)
	if err != nil || raw == "" {
		return "", "", false
	}
	c.SetCookie(FlashCookie, "", -1, "/", "", false, true)
	v, err := url.QueryUnescape(raw)
	if err != nil {
		return "", "", false
	}
	kind, message, ok = strings.Cut(v, "|")
	return kind, message, ok
}
