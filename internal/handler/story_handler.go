package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kavyapath/kavyapath-web/internal/assistant"
	"github.com/kavyapath/kavyapath-web/internal/common"
	"github.com/kavyapath/kavyapath-web/internal/domain"
	"github.com/kavyapath/kavyapath-web/internal/editor"
	"github.com/kavyapath/kavyapath-web/internal/service"
	"github.com/kavyapath/kavyapath-web/internal/session"
	"github.com/kavyapath/kavyapath-web/pkg/ginutil"
)

// StoryHandler serves the public reading pages
type StoryHandler struct {
	stories  service.StoryService
	comments service.CommentService
	panels   *assistant.Registry
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(stories service.StoryService, comments service.CommentService, panels *assistant.Registry) *StoryHandler {
	return &StoryHandler{stories: stories, comments: comments, panels: panels}
}

// AssistantView is the assistant panel as rendered inside the story page
type AssistantView struct {
	Messages  []domain.ChatMessage `json:"messages"`
	Loading   bool                 `json:"loading"`
	Suggested []string             `json:"suggested"`
}

func assistantView(p *assistant.Panel) AssistantView {
	v := AssistantView{Suggested: assistant.SuggestedQuestions}
	if p == nil {
		v.Messages = []domain.ChatMessage{{Role: domain.RoleAssistant, Text: assistant.Greeting}}
		return v
	}
	v.Messages = p.Messages()
	v.Loading = p.Loading()
	return v
}

// Home handles GET /
func (h *StoryHandler) Home(c *gin.Context) {
	chapters, err := h.stories.Home(c.Request.Context(), session.From(c))
	if err != nil {
		errorPage(c, http.StatusBadGateway, "Something went wrong", common.MsgSomethingWrong, err)
		return
	}
	if ginutil.WantsJSON(c) {
		common.SuccessResponse(c, chapters, "")
		return
	}
	page(c, http.StatusOK, "home.html", gin.H{"Title": "Home", "Chapters": chapters})
}

// Show handles GET /story/:slug
func (h *StoryHandler) Show(c *gin.Context) {
	ctx := c.Request.Context()
	sess := session.From(c)
	slug := c.Param("slug")

	view, err := h.stories.Story(ctx, sess, slug)
	if errors.Is(err, common.ErrNotFound) {
		errorPage(c, http.StatusNotFound, "Story not found", "The poem you are looking for does not exist.", err)
		return
	}
	if err != nil {
		errorPage(c, http.StatusBadGateway, "Something went wrong", common.MsgSomethingWrong, err)
		return
	}

	list := h.comments.List(ctx, sess, view.Page.Story.ID)
	var panel *assistant.Panel
	if p, ok := h.panels.Lookup(sess.ID(), slug); ok {
		panel = p
	}

	if ginutil.WantsJSON(c) {
		common.SuccessResponse(c, gin.H{
			"story":        view.Page.Story,
			"nextSlug":     view.Page.NextSlug,
			"previousSlug": view.Page.PreviousSlug,
			"comments":     list.Comments,
		}, "")
		return
	}
	page(c, http.StatusOK, "story.html", gin.H{
		"Meta":          view.Meta,
		"Story":         view.Page.Story,
		"Content":       editor.Sanitize(view.Page.Story.Content),
		"NextSlug":      view.Page.NextSlug,
		"PreviousSlug":  view.Page.PreviousSlug,
		"Comments":      list.Comments,
		"CommentNotice": list.Notice,
		"Assistant":     assistantView(panel),
	})
}

// Verify handles POST /stories/:id/verify
func (h *StoryHandler) Verify(c *gin.Context) {
	n := h.comments.Verify(c.Request.Context(), session.From(c), c.Param("id"))
	notify(c, n, storyTarget(c), nil)
}

// Sitemap handles GET /sitemap.xml
func (h *StoryHandler) Sitemap(c *gin.Context) {
	body, err := h.stories.Sitemap(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

// storyTarget is where a story-page form action returns to
func storyTarget(c *gin.Context) string {
	slug := ginutil.PostFormTrim(c, "slug")
	if slug == "" {
		slug = c.Param("slug")
	}
	if slug == "" {
		return ginutil.LocalRedirect(c.Query("next"), "/")
	}
	return "/story/" + slug
}
