package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/kavyapath/kavyapath-web/internal/chapter"
	"github.com/kavyapath/kavyapath-web/internal/common"
	"github.com/kavyapath/kavyapath-web/internal/domain"
	"github.com/kavyapath/kavyapath-web/internal/editor"
	"github.com/kavyapath/kavyapath-web/internal/service"
	"github.com/kavyapath/kavyapath-web/internal/session"
	"github.com/kavyapath/kavyapath-web/pkg/ginutil"
)

// WriteHandler serves the authoring page and its editor round-trips
type WriteHandler struct {
	submissions  service.SubmissionService
	chapterAPI   chapter.API
	toolbar      editor.Toolbar
	maxImageSize int64
}

// NewWriteHandler creates a new WriteHandler
func NewWriteHandler(submissions service.SubmissionService, chapters chapter.API, maxImageSize int64) *WriteHandler {
	return &WriteHandler{
		submissions:  submissions,
		chapterAPI:   chapters,
		toolbar:      editor.DefaultToolbar(),
		maxImageSize: maxImageSize,
	}
}

// DraftView is the JSON shape of a draft
type DraftView struct {
	ID         string                `json:"id"`
	Title      string                `json:"title"`
	Category   string                `json:"category"`
	Tags       []string              `json:"tags"`
	ChapterID  string                `json:"chapterId"`
	Content    string                `json:"content"`
	Selection  editor.Selection      `json:"selection"`
	Toolbar    []editor.ControlState `json:"toolbar"`
	HasCover   bool                  `json:"hasCover"`
	Submitting bool                  `json:"submitting"`
}

func (h *WriteHandler) view(sess *session.Session, d *domain.StoryDraft) DraftView {
	return DraftView{
		ID:         d.ID,
		Title:      d.Title,
		Category:   d.Category,
		Tags:       d.Tags,
		ChapterID:  d.ChapterID,
		Content:    d.Content(),
		Selection:  d.Doc.Selection(),
		Toolbar:    h.toolbar.State(d.Doc),
		HasCover:   d.Image != nil,
		Submitting: h.submissions.Submitting(sess, d.ID),
	}
}

// chapters loads the selector options for this page load
func (h *WriteHandler) chapters(c *gin.Context) *chapter.Directory {
	dir := chapter.NewDirectory(h.chapterAPI)
	dir.Load(c.Request.Context())
	return dir
}

func (h *WriteHandler) render(c *gin.Context, status int, d *domain.StoryDraft, extra gin.H) {
	sess := session.From(c)
	data := gin.H{
		"Title":      "Write",
		"Draft":      d,
		"DraftID":    d.ID,
		"Chapters":   h.chapters(c).List(),
		"Toolbar":    h.toolbar.State(d.Doc),
		"Content":    d.Content(),
		"Submitting": h.submissions.Submitting(sess, d.ID),
	}
	for k, v := range extra {
		data[k] = v
	}
	page(c, status, "write.html", data)
}

// respond sends the draft back as JSON, or re-renders the page
func (h *WriteHandler) respond(c *gin.Context, d *domain.StoryDraft, err error) {
	if err != nil {
		if ginutil.WantsJSON(c) || d == nil {
			common.ErrorResponse(c, statusFor(err), userMessage(err), err)
			return
		}
		h.render(c, statusFor(err), d, gin.H{"Notice": &domain.Notice{Kind: service.NoticeError, Message: userMessage(err)}})
		return
	}
	if ginutil.WantsJSON(c) {
		common.SuccessResponse(c, h.view(session.From(c), d), "")
		return
	}
	c.Redirect(http.StatusSeeOther, "/write?draft="+d.ID)
}

// Page handles GET /write. A plain page load starts a fresh draft;
// ?draft= resumes one after a form round-trip.
func (h *WriteHandler) Page(c *gin.Context) {
	ctx := c.Request.Context()
	sess := session.From(c)

	var d *domain.StoryDraft
	if id := c.Query("draft"); id != "" {
		if existing, err := h.submissions.Draft(ctx, sess, id); err == nil {
			d = existing
		}
	}
	if d == nil {
		created, err := h.submissions.NewDraft(ctx, sess)
		if err != nil {
			errorPage(c, http.StatusInternalServerError, "Something went wrong", common.MsgSomethingWrong, err)
			return
		}
		d = created
	}
	h.render(c, http.StatusOK, d, nil)
}

// Get handles GET /write/:id (JSON)
func (h *WriteHandler) Get(c *gin.Context) {
	d, err := h.submissions.Draft(c.Request.Context(), session.From(c), c.Param("id"))
	h.respond(c, d, err)
}

// fieldsForm leaves absent keys nil so partial bodies only touch what they carry
type fieldsForm struct {
	Title     *string `json:"title" form:"title"`
	Category  *string `json:"category" form:"category"`
	Tags      *string `json:"tags" form:"tags"`
	ChapterID *string `json:"chapterId" form:"chapterId"`
	Content   *string `json:"content" form:"content"`
}

func (f fieldsForm) fields() service.DraftFields {
	return service.DraftFields{Title: f.Title, Category: f.Category, Tags: f.Tags, ChapterID: f.ChapterID}
}

// UpdateFields handles PUT /write/:id
func (h *WriteHandler) UpdateFields(c *gin.Context) {
	var f fieldsForm
	if err := c.ShouldBind(&f); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	d, err := h.submissions.UpdateFields(c.Request.Context(), session.From(c), c.Param("id"), f.fields())
	h.respond(c, d, err)
}

// SetContent handles PUT /write/:id/content
func (h *WriteHandler) SetContent(c *gin.Context) {
	var body struct {
		HTML string `json:"html" form:"html"`
	}
	if err := c.ShouldBind(&body); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	d, err := h.submissions.SetContent(c.Request.Context(), session.From(c), c.Param("id"), body.HTML)
	h.respond(c, d, err)
}

type controlRequest struct {
	Control   string            `json:"control" binding:"required"`
	Value     string            `json:"value"`
	Selection *editor.Selection `json:"selection"`
}

// Control handles POST /write/:id/control
func (h *WriteHandler) Control(c *gin.Context) {
	var req controlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	d, err := h.submissions.ApplyControl(c.Request.Context(), session.From(c), c.Param("id"), req.Selection, req.Control, req.Value)
	h.respond(c, d, err)
}

// readUpload reads a multipart file, refusing anything over the size limit
func (h *WriteHandler) readUpload(c *gin.Context, field string) (*domain.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, common.ErrInvalidInput
	}
	if h.maxImageSize > 0 && fh.Size > h.maxImageSize {
		return nil, common.ErrImageTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxImageSize+1))
	if err != nil {
		return nil, err
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return &domain.Upload{Name: fh.Filename, ContentType: ct, Data: data}, nil
}

// InsertImage handles POST /write/:id/image (multipart "image", optional
// JSON "selection" field)
func (h *WriteHandler) InsertImage(c *gin.Context) {
	up, err := h.readUpload(c, "image")
	if err == nil && up == nil {
		err = common.ErrInvalidInput
	}
	if err != nil {
		common.ErrorResponse(c, statusFor(err), userMessage(err), err)
		return
	}
	var sel *editor.Selection
	if raw := c.PostForm("selection"); raw != "" {
		var s editor.Selection
		if err := bindJSONString(raw, &s); err == nil {
			sel = &s
		}
	}
	d, err := h.submissions.InsertImage(c.Request.Context(), session.From(c), c.Param("id"), sel, up.Data)
	h.respond(c, d, err)
}

// AttachCover handles POST /write/:id/cover (multipart "file")
func (h *WriteHandler) AttachCover(c *gin.Context) {
	up, err := h.readUpload(c, "file")
	if err != nil {
		common.ErrorResponse(c, statusFor(err), userMessage(err), err)
		return
	}
	d, err := h.submissions.AttachCover(c.Request.Context(), session.From(c), c.Param("id"), up)
	h.respond(c, d, err)
}

// Submit handles POST /write/:id/submit. The form carries the latest field
// values (and optionally content and cover) so a plain HTML post works.
func (h *WriteHandler) Submit(c *gin.Context) {
	h.publish(c, h.submissions.Submit)
}

// SubmitBlog handles POST /write/:id/blog, the same form published as a blog post
func (h *WriteHandler) SubmitBlog(c *gin.Context) {
	h.publish(c, h.submissions.SubmitBlog)
}

func (h *WriteHandler) publish(c *gin.Context, send func(context.Context, *session.Session, string) (service.SubmitOutcome, error)) {
	ctx := c.Request.Context()
	sess := session.From(c)
	id := c.Param("id")

	// a JSON submit without a body sends the stored draft as is
	var (
		f   fieldsForm
		d   *domain.StoryDraft
		err error
	)
	if c.ShouldBind(&f) == nil && !f.fields().Empty() {
		d, err = h.submissions.UpdateFields(ctx, sess, id, f.fields())
	}
	if err == nil && f.Content != nil {
		d, err = h.submissions.SetContent(ctx, sess, id, *f.Content)
	}
	if err == nil && c.ContentType() == "multipart/form-data" {
		var up *domain.Upload
		if up, err = h.readUpload(c, "file"); err == nil && up != nil {
			d, err = h.submissions.AttachCover(ctx, sess, id, up)
		}
	}
	if err != nil {
		h.respond(c, d, err)
		return
	}

	out, err := send(ctx, sess, id)
	if err != nil {
		h.respond(c, d, err)
		return
	}

	if ginutil.WantsJSON(c) {
		status := http.StatusOK
		if out.Notice.Kind == service.NoticeError {
			status = http.StatusBadRequest
		}
		c.JSON(status, common.APIResponse{
			Success: out.Notice.Kind == service.NoticeSuccess,
			Message: out.Notice.Message,
			Data: gin.H{
				"pendingReview": out.PendingReview,
				"draft":         h.view(sess, out.Draft),
			},
		})
		return
	}
	status := http.StatusOK
	if out.Notice.Kind == service.NoticeError {
		status = http.StatusUnprocessableEntity
	}
	h.render(c, status, out.Draft, gin.H{"Notice": &out.Notice, "PendingReview": out.PendingReview})
}

// Discard handles DELETE /write/:id
func (h *WriteHandler) Discard(c *gin.Context) {
	if err := h.submissions.Discard(c.Request.Context(), session.From(c), c.Param("id")); err != nil {
		common.ErrorResponse(c, statusFor(err), userMessage(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateChapter handles POST /write/chapters
func (h *WriteHandler) CreateChapter(c *gin.Context) {
	var body struct {
		Title string `json:"title" form:"title"`
		Draft string `json:"draft" form:"draft"`
	}
	_ = c.ShouldBind(&body)

	dir := h.chapters(c)
	n, err := dir.Create(c.Request.Context(), session.From(c), body.Title)
	if err != nil {
		n = domain.Notice{Kind: service.NoticeError, Message: common.MsgSomethingWrong}
	}
	target := "/write"
	if body.Draft != "" {
		target += "?draft=" + url.QueryEscape(body.Draft)
	}
	notify(c, n, target, dir.List())
}
