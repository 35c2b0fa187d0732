package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kavyapath/kavyapath-web/internal/common"
	"github.com/kavyapath/kavyapath-web/internal/service"
	"github.com/kavyapath/kavyapath-web/internal/session"
	"github.com/kavyapath/kavyapath-web/pkg/ginutil"
)

// ProfileHandler serves the signed-in user's profile page
type ProfileHandler struct {
	profiles service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Show handles GET /profile
func (h *ProfileHandler) Show(c *gin.Context) {
	p, err := h.profiles.Page(c.Request.Context(), session.From(c))
	if ginutil.WantsJSON(c) {
		if err != nil {
			common.ErrorResponse(c, http.StatusBadGateway, userMessage(err), err)
			return
		}
		common.SuccessResponse(c, p, "")
		return
	}
	if err != nil {
		_ = c.Error(err)
		page(c, http.StatusBadGateway, "profile.html", gin.H{"Title": "Profile", "Notice": errorNotice(userMessage(err))})
		return
	}
	page(c, http.StatusOK, "profile.html", gin.H{"Title": "Profile", "Profile": p})
}
