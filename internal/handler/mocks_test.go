package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kavyapath/kavyapath-web/internal/apiclient"
	"github.com/kavyapath/kavyapath-web/internal/config"
	"github.com/kavyapath/kavyapath-web/internal/domain"
	"github.com/kavyapath/kavyapath-web/internal/editor"
	"github.com/kavyapath/kavyapath-web/internal/service"
	"github.com/kavyapath/kavyapath-web/internal/session"
	"github.com/kavyapath/kavyapath-web/web"
)

// --- Mock services ---

type mockStoryService struct{ mock.Mock }

func (m *mockStoryService) Home(ctx context.Context, sess *session.Session) ([]domain.HomeChapter, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HomeChapter), args.Error(1)
}

func (m *mockStoryService) Story(ctx context.Context, sess *session.Session, slug string) (*service.StoryView, error) {
	args := m.Called(ctx, sess, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StoryView), args.Error(1)
}

func (m *mockStoryService) Meta(ctx context.Context, slug string) service.PageMeta {
	return m.Called(ctx, slug).Get(0).(service.PageMeta)
}

func (m *mockStoryService) Sitemap(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type mockCommentService struct{ mock.Mock }

func (m *mockCommentService) List(ctx context.Context, sess *session.Session, storyID string) service.CommentList {
	return m.Called(ctx, sess, storyID).Get(0).(service.CommentList)
}

func (m *mockCommentService) Post(ctx context.Context, sess *session.Session, storyID, text string) domain.Notice {
	return m.Called(ctx, sess, storyID, text).Get(0).(domain.Notice)
}

func (m *mockCommentService) Approve(ctx context.Context, sess *session.Session, commentID string, list []domain.Comment) (domain.Notice, []domain.Comment) {
	args := m.Called(ctx, sess, commentID, list)
	out, _ := args.Get(1).([]domain.Comment)
	return args.Get(0).(domain.Notice), out
}

func (m *mockCommentService) Verify(ctx context.Context, sess *session.Session, storyID string) domain.Notice {
	return m.Called(ctx, sess, storyID).Get(0).(domain.Notice)
}

type mockSubmissionService struct{ mock.Mock }

func (m *mockSubmissionService) draft(args mock.Arguments) (*domain.StoryDraft, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoryDraft), args.Error(1)
}

func (m *mockSubmissionService) NewDraft(ctx context.Context, sess *session.Session) (*domain.StoryDraft, error) {
	return m.draft(m.Called(ctx, sess))
}

func (m *mockSubmissionService) Draft(ctx context.Context, sess *session.Session, id string) (*domain.StoryDraft, error) {
	return m.draft(m.Called(ctx, sess, id))
}

func (m *mockSubmissionService) UpdateFields(ctx context.Context, sess *session.Session, id string, f service.DraftFields) (*domain.StoryDraft, error) {
	return m.draft(m.Called(ctx, sess, id, f))
}

func (m *mockSubmissionService) SetContent(ctx context.Context, sess *session.Session, id, html string) (*domain.StoryDraft, error) {
	return m.draft(m.Called(ctx, sess, id, html))
}

func (m *mockSubmissionService) ApplyControl(ctx context.Context, sess *session.Session, id string, sel *editor.Selection, control, value string) (*domain.StoryDraft, error) {
	return m.draft(m.Called(ctx, sess, id, sel, control, value))
}

func (m *mockSubmissionService) InsertImage(ctx context.Context, sess *session.Session, id string, sel *editor.Selection, data []byte) (*domain.StoryDraft, error) {
	return m.draft(m.Called(ctx, sess, id, sel, data))
}

func (m *mockSubmissionService) AttachCover(ctx context.Context, sess *session.Session, id string, up *domain.Upload) (*domain.StoryDraft, error) {
	return m.draft(m.Called(ctx, sess, id, up))
}

func (m *mockSubmissionService) Submit(ctx context.Context, sess *session.Session, id string) (service.SubmitOutcome, error) {
	args := m.Called(ctx, sess, id)
	return args.Get(0).(service.SubmitOutcome), args.Error(1)
}

func (m *mockSubmissionService) SubmitBlog(ctx context.Context, sess *session.Session, id string) (service.SubmitOutcome, error) {
	args := m.Called(ctx, sess, id)
	return args.Get(0).(service.SubmitOutcome), args.Error(1)
}

func (m *mockSubmissionService) Discard(ctx context.Context, sess *session.Session, id string) error {
	return m.Called(ctx, sess, id).Error(0)
}

func (m *mockSubmissionService) Submitting(sess *session.Session, id string) bool {
	return m.Called(sess, id).Bool(0)
}

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Register(ctx context.Context, req domain.RegisterRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, req domain.LoginRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type mockProfileService struct{ mock.Mock }

func (m *mockProfileService) Page(ctx context.Context, sess *session.Session) (*domain.ProfilePage, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfilePage), args.Error(1)
}

type mockAnswerer struct{ mock.Mock }

func (m *mockAnswerer) Analyze(ctx context.Context, title, content, query string) (string, error) {
	args := m.Called(ctx, title, content, query)
	return args.String(0), args.Error(1)
}

type mockChapterAPI struct{ mock.Mock }

func (m *mockChapterAPI) Chapters(ctx context.Context) (apiclient.Result[[]domain.Chapter], error) {
	args := m.Called(ctx)
	return args.Get(0).(apiclient.Result[[]domain.Chapter]), args.Error(1)
}

func (m *mockChapterAPI) CreateChapter(ctx context.Context, cred apiclient.Credential, title string) (apiclient.Result[domain.Chapter], error) {
	args := m.Called(ctx, cred, title)
	return args.Get(0).(apiclient.Result[domain.Chapter]), args.Error(1)
}

// --- helpers ---

const testLoginPath = "/login"

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tmpl, err := web.Templates()
	require.NoError(t, err)
	r.SetHTMLTemplate(tmpl)
	r.Use(session.Middleware(newStore()))
	return r
}

func newStore() *session.Store {
	return session.NewStore(config.SessionConfig{CookieName: "token", MaxAge: time.Hour, LoginPath: testLoginPath})
}

func do(r http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var (
	jsonHeaders = map[string]string{"Content-Type": "application/json", "Accept": "application/json"}
	formHeaders = map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
)

func withToken(h map[string]string, token string) map[string]string {
	out := map[string]string{"Cookie": "token=" + token}
	for k, v := range h {
		out[k] = v
	}
	return out
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func ptr(s string) *string { return &s }
