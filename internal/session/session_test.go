package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavyapath/kavyapath-web/internal/config"
)

func testStore() *Store {
	return NewStore(config.SessionConfig{
		CookieName: "token",
		MaxAge:     30 * 24 * time.Hour,
		Secure:     true,
		LoginPath:  "/login",
	})
}

func guardedRouter(store *Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(store))
	r.GET("/profile", Guard("/login"), func(c *gin.Context) {
		c.String(http.StatusOK, "secret profile of "+From(c).DisplayName())
	})
	r.POST("/login", func(c *gin.Context) {
		store.Set(c, c.PostForm("token"))
		c.Status(http.StatusNoContent)
	})
	r.POST("/logout", func(c *gin.Context) {
		store.Clear(c)
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestGuard_RedirectsWithoutToken(t *testing.T) {
	r := guardedRouter(testStore())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/profile", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Fprofile", w.Header().Get("Location"))
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestGuard_JSONCallerGets401(t *testing.T) {
	r := guardedRouter(testStore())

	req := httptest.NewRequest("GET", "/profile", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestGuard_PassesWithToken(t *testing.T) {
	r := guardedRouter(testStore())
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{"name": "मीरा"}).
		SignedString([]byte("k"))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/profile", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "secret profile of मीरा", w.Body.String())
}

func TestGuard_OpaqueTokenIsEnough(t *testing.T) {
	r := guardedRouter(testStore())

	req := httptest.NewRequest("GET", "/profile", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "opaque"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStore_SetCookieAttributes(t *testing.T) {
	r := guardedRouter(testStore())

	req := httptest.NewRequest("POST", "/login", strings.NewReader("token=abc"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	ck := findCookie(w.Result().Cookies(), "token")
	require.NotNil(t, ck)
	assert.Equal(t, "abc", ck.Value)
	assert.Equal(t, 30*24*3600, ck.MaxAge)
	assert.True(t, ck.Secure)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)
	assert.Equal(t, "/", ck.Path)
}

func TestStore_Clear(t *testing.T) {
	r := guardedRouter(testStore())

	req := httptest.NewRequest("POST", "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "abc"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, ck := range cookies {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestStore_AnonymousVisitorID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(testStore()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, From(c).ID()) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	visitor := findCookie(w.Result().Cookies(), VisitorCookie)
	require.NotNil(t, visitor)
	assert.Equal(t, "v:"+visitor.Value, w.Body.String())

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(visitor)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Nil(t, findCookie(w.Result().Cookies(), VisitorCookie))
	assert.Equal(t, "v:"+visitor.Value, w.Body.String())
}

func TestSession_Accessors(t *testing.T) {
	anon := Anonymous()
	_, ok := anon.Token()
	assert.False(t, ok)
	assert.Empty(t, anon.BearerHeader())
	assert.Empty(t, anon.ID())

	var nilSession *Session
	assert.False(t, nilSession.Authenticated())

	s := New("opaque")
	tok, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, "opaque", tok)
	assert.Equal(t, "Bearer opaque", s.BearerHeader())
	assert.Len(t, s.ID(), 32)
	assert.False(t, s.IsModerator())
}

func TestFrom_WithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, From(c).Authenticated())
}
