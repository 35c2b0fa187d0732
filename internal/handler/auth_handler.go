package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kavyapath/kavyapath-web/internal/common"
	"github.com/kavyapath/kavyapath-web/internal/domain"
	"github.com/kavyapath/kavyapath-web/internal/service"
	"github.com/kavyapath/kavyapath-web/internal/session"
	"github.com/kavyapath/kavyapath-web/pkg/ginutil"
)

// AfterRegister is where a new account lands
const AfterRegister = "/write"

// AuthHandler handles sign-up, sign-in and sign-out
type AuthHandler struct {
	auth  service.AuthService
	store *session.Store
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth service.AuthService, store *session.Store) *AuthHandler {
	return &AuthHandler{auth: auth, store: store}
}

func errorNotice(msg string) *domain.Notice {
	return &domain.Notice{Kind: service.NoticeError, Message: msg}
}

// LoginPage handles GET /login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	next := ginutil.LocalRedirect(c.Query("next"), "/")
	if session.From(c).Authenticated() {
		c.Redirect(http.StatusFound, next)
		return
	}
	page(c, http.StatusOK, "login.html", gin.H{"Title": "Login", "Next": next})
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	_ = c.ShouldBind(&req)
	next := ginutil.LocalRedirect(c.PostForm("next"), "/")

	token, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		if ginutil.WantsJSON(c) {
			common.ErrorResponse(c, http.StatusUnauthorized, userMessage(err), err)
			return
		}
		page(c, http.StatusUnauthorized, "login.html", gin.H{
			"Title": "Login", "Next": next, "Email": req.Email, "Notice": errorNotice(userMessage(err)),
		})
		return
	}

	h.store.Set(c, token)
	if ginutil.WantsJSON(c) {
		common.SuccessResponse(c, gin.H{"redirect": next}, "")
		return
	}
	c.Redirect(http.StatusSeeOther, next)
}

// RegisterPage handles GET /register
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	page(c, http.StatusOK, "register.html", gin.H{"Title": "Register"})
}

// Register handles POST /register. On success the token becomes the
// session cookie and the user lands on the authoring page.
func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	_ = c.ShouldBind(&req)

	token, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		if ginutil.WantsJSON(c) {
			common.ErrorResponse(c, http.StatusBadRequest, userMessage(err), err)
			return
		}
		page(c, http.StatusBadRequest, "register.html", gin.H{
			"Title": "Register", "Name": req.Name, "Email": req.Email, "Notice": errorNotice(userMessage(err)),
		})
		return
	}

	h.store.Set(c, token)
	if ginutil.WantsJSON(c) {
		common.SuccessResponse(c, gin.H{"redirect": AfterRegister}, "")
		return
	}
	c.Redirect(http.StatusSeeOther, AfterRegister)
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.store.Clear(c)
	if ginutil.WantsJSON(c) {
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}
