package session

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kavyapath/kavyapath-web/internal/common"
	"github.com/kavyapath/kavyapath-web/pkg/ginutil"
)

// Middleware loads the session once per request
func Middleware(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		set(c, store.Load(c))
		c.Next()
	}
}

// Guard sends anonymous callers to the login page before anything renders.
// JSON callers get a 401 instead of a redirect.
func Guard(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if From(c).Authenticated() {
			c.Next()
			return
		}
		if ginutil.WantsJSON(c) {
			common.ErrorResponse(c, http.StatusUnauthorized, "Login required", common.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Redirect(http.StatusFound, ginutil.WithNext(loginPath, c))
		c.Abort()
	}
}
