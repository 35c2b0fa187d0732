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

// CommentHandler handles comment posting and moderation
type CommentHandler struct {
	comments service.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type commentForm struct {
	StoryID string `json:"storyId" form:"storyId"`
	Comment string `json:"comment" form:"comment"`
	Slug    string `json:"slug" form:"slug"`
}

func bindCommentForm(c *gin.Context) commentForm {
	var f commentForm
	_ = c.ShouldBind(&f)
	return f
}

// List handles GET /comments?storyId= (JSON only)
func (h *CommentHandler) List(c *gin.Context) {
	list := h.comments.List(c.Request.Context(), session.From(c), c.Query("storyId"))
	if list.Notice != nil {
		common.ErrorResponse(c, http.StatusBadGateway, list.Notice.Message, nil)
		return
	}
	common.SuccessResponse(c, list.Comments, "")
}

// Post handles POST /story/:slug/comments
func (h *CommentHandler) Post(c *gin.Context) {
	f := bindCommentForm(c)
	n := h.comments.Post(c.Request.Context(), session.From(c), f.StoryID, f.Comment)
	notify(c, n, "/story/"+c.Param("slug")+"#comments", nil)
}

// Approve handles POST /comments/:id/approve. The story's comment list is
// returned with the approved comment flipped.
func (h *CommentHandler) Approve(c *gin.Context) {
	ctx := c.Request.Context()
	sess := session.From(c)
	f := bindCommentForm(c)

	var current []domain.Comment
	if f.StoryID != "" {
		current = h.comments.List(ctx, sess, f.StoryID).Comments
	}
	n, list := h.comments.Approve(ctx, sess, c.Param("id"), current)

	target := "/"
	if f.Slug != "" {
		target = "/story/" + f.Slug + "#comments"
	} else if next := c.Query("next"); next != "" {
		target = ginutil.LocalRedirect(next, "/")
	}
	notify(c, n, target, list)
}
