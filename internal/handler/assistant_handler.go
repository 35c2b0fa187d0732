package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kavyapath/kavyapath-web/internal/assistant"
	"github.com/kavyapath/kavyapath-web/internal/common"
	"github.com/kavyapath/kavyapath-web/internal/domain"
	"github.com/kavyapath/kavyapath-web/internal/service"
	"github.com/kavyapath/kavyapath-web/internal/session"
	"github.com/kavyapath/kavyapath-web/pkg/ginutil"
)

// Analysis endpoint error bodies
const (
	MsgMissingParams = "Missing required parameters"
	MsgProcessFailed = "Failed to process your request"
)

// AssistantHandler serves the per-story assistant panel and the stateless
// analysis endpoint
type AssistantHandler struct {
	answerer assistant.Answerer
	panels   *assistant.Registry
	stories  service.StoryService
}

// NewAssistantHandler creates a new AssistantHandler
func NewAssistantHandler(answerer assistant.Answerer, panels *assistant.Registry, stories service.StoryService) *AssistantHandler {
	return &AssistantHandler{answerer: answerer, panels: panels, stories: stories}
}

// Analyze handles POST /api/gemini
func (h *AssistantHandler) Analyze(c *gin.Context) {
	var req domain.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil ||
		strings.TrimSpace(req.PoemTitle) == "" ||
		strings.TrimSpace(req.PoemContent) == "" ||
		strings.TrimSpace(req.UserQuery) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgMissingParams})
		return
	}

	text, err := h.answerer.Analyze(c.Request.Context(), req.PoemTitle, req.PoemContent, req.UserQuery)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": MsgProcessFailed})
		return
	}
	c.JSON(http.StatusOK, domain.AnalyzeResponse{Response: text})
}

// open returns the caller's panel for the story, loading the story when
// the panel is not open yet
func (h *AssistantHandler) open(c *gin.Context) (*assistant.Panel, error) {
	sess := session.From(c)
	slug := c.Param("slug")
	if p, ok := h.panels.Lookup(sess.ID(), slug); ok {
		return p, nil
	}
	view, err := h.stories.Story(c.Request.Context(), sess, slug)
	if err != nil {
		return nil, err
	}
	return h.panels.Open(c.Request.Context(), sess.ID(), view.Page.Story), nil
}

func (h *AssistantHandler) panelJSON(c *gin.Context, p *assistant.Panel, reply *domain.ChatMessage) {
	data := gin.H{"panel": assistantView(p)}
	if reply != nil {
		data["reply"] = reply
	}
	common.SuccessResponse(c, data, "")
}

func (h *AssistantHandler) back(c *gin.Context) string {
	return "/story/" + c.Param("slug") + "#assistant"
}

// Panel handles GET /story/:slug/assistant
func (h *AssistantHandler) Panel(c *gin.Context) {
	p, err := h.open(c)
	if err != nil {
		common.ErrorResponse(c, statusFor(err), userMessage(err), err)
		return
	}
	h.panelJSON(c, p, nil)
}

// Ask handles POST /story/:slug/assistant
func (h *AssistantHandler) Ask(c *gin.Context) {
	var req domain.AskRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, common.ErrInvalidInput)
		return
	}
	p, err := h.open(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	reply, err := p.Ask(c.Request.Context(), req.Question)
	switch {
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrAssistantBusy),
		errors.Is(err, common.ErrPanelClosed), errors.Is(err, common.ErrReplyDiscarded):
		h.fail(c, err)
		return
	case err != nil:
		// the failure notice is already part of the transcript
		_ = c.Error(err)
	}

	if ginutil.WantsJSON(c) {
		h.panelJSON(c, p, &reply)
		return
	}
	c.Redirect(http.StatusSeeOther, h.back(c))
}

// Reset handles POST /story/:slug/assistant/reset
func (h *AssistantHandler) Reset(c *gin.Context) {
	sess := session.From(c)
	p, ok := h.panels.Lookup(sess.ID(), c.Param("slug"))
	if ok {
		p.Reset()
	}
	if ginutil.WantsJSON(c) {
		h.panelJSON(c, p, nil)
		return
	}
	c.Redirect(http.StatusSeeOther, h.back(c))
}

// Close handles DELETE /story/:slug/assistant
func (h *AssistantHandler) Close(c *gin.Context) {
	h.panels.Close(c.Request.Context(), session.From(c).ID(), c.Param("slug"))
	c.Status(http.StatusNoContent)
}

func (h *AssistantHandler) fail(c *gin.Context, err error) {
	msg := userMessage(err)
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		msg = "Please enter a question."
	case errors.Is(err, common.ErrAssistantBusy):
		msg = "Please wait for the current answer."
	case errors.Is(err, common.ErrNotFound):
		msg = "The poem you are looking for does not exist."
	}
	if ginutil.WantsJSON(c) {
		common.ErrorResponse(c, statusFor(err), msg, err)
		return
	}
	_ = c.Error(err)
	ginutil.SetFlash(c, service.NoticeError, msg)
	c.Redirect(http.StatusSeeOther, h.back(c))
}
