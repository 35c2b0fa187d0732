package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kavyapath/kavyapath-web/internal/common"
	"github.com/kavyapath/kavyapath-web/internal/domain"
	"github.com/kavyapath/kavyapath-web/internal/service"
	"github.com/kavyapath/kavyapath-web/internal/session"
	"github.com/kavyapath/kavyapath-web/pkg/ginutil"
)

// page renders a template with the values every layout needs.
// A pending flash notice is shown unless data already carries one.
func page(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Session"] = session.From(c)
	if _, ok := data["Notice"]; !ok {
		if kind, msg, ok := ginutil.TakeFlash(c); ok {
			data["Notice"] = &domain.Notice{Kind: kind, Message: msg}
		}
	}
	c.HTML(status, name, data)
}

// errorPage renders the error template; JSON callers get the standard envelope
func errorPage(c *gin.Context, status int, title, message string, err error) {
	if ginutil.WantsJSON(c) {
		common.ErrorResponse(c, status, message, err)
		return
	}
	if err != nil {
		_ = c.Error(err)
	}
	page(c, status, "error.html", gin.H{"Title": title, "Message": message})
}

// notify answers a form action: JSON callers get the notice, browsers are
// redirected to target with the notice as flash.
func notify(c *gin.Context, n domain.Notice, target string, data interface{}) {
	if ginutil.WantsJSON(c) {
		status := http.StatusOK
		if n.Kind == service.NoticeError {
			status = http.StatusBadRequest
		}
		c.JSON(status, common.APIResponse{
			Success: n.Kind == service.NoticeSuccess,
			Data:    data,
			Message: n.Message,
		})
		return
	}
	ginutil.SetFlash(c, n.Kind, n.Message)
	c.Redirect(http.StatusSeeOther, target)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, common.ErrInvalidInput),
		errors.Is(err, common.ErrInvalidLink), errors.Is(err, common.ErrUnknownCommand),
		errors.Is(err, common.ErrCommandNotAllowed), errors.Is(err, common.ErrUnsupportedImage):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrNotFound), errors.Is(err, common.ErrDraftNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrSubmitInProgress), errors.Is(err, common.ErrAssistantBusy),
		errors.Is(err, common.ErrReplyDiscarded):
		return http.StatusConflict
	case errors.Is(err, common.ErrPanelClosed):
		return http.StatusGone
	case errors.Is(err, common.ErrAssistantUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, common.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// userMessage is the text shown for err; internal details never leak
func userMessage(err error) string {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	switch statusFor(err) {
	case http.StatusInternalServerError, http.StatusBadGateway:
		return common.MsgSomethingWrong
	}
	return err.Error()
}

func bindJSONString(raw string, dst interface{}) error {
	return json.Unmarshal([]byte(raw), dst)
}
