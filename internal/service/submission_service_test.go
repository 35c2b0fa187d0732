package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kavyapath/kavyapath-web/internal/apiclient"
	"github.com/kavyapath/kavyapath-web/internal/common"
	"github.com/kavyapath/kavyapath-web/internal/domain"
	"github.com/kavyapath/kavyapath-web/internal/editor"
	"github.com/kavyapath/kavyapath-web/internal/repository"
	"github.com/kavyapath/kavyapath-web/internal/session"
	"github.com/kavyapath/kavyapath-web/pkg/cache"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func newSubmissionFixture(t *testing.T) (SubmissionService, *mockAPI, *session.Session) {
	t.Helper()
	api := new(mockAPI)
	drafts := repository.NewDraftRepository(cache.NewMemory(), time.Hour)
	return NewSubmissionService(api, drafts, 1<<20), api, session.New("opaque-token")
}

func ptr(s string) *string { return &s }

// fillDraft creates a draft with every required field set
func fillDraft(t *testing.T, svc SubmissionService, sess *session.Session) *domain.StoryDraft {
	t.Helper()
	ctx := context.Background()
	d, err := svc.NewDraft(ctx, sess)
	require.NoError(t, err)
	_, err = svc.UpdateFields(ctx, sess, d.ID, DraftFields{
		Title:     ptr("Barish"),
		Category:  ptr("Kavita"),
		Tags:      ptr("rain, , monsoon "),
		ChapterID: ptr("ch-1"),
	})
	require.NoError(t, err)
	d, err = svc.SetContent(ctx, sess, d.ID, "<p>Hello rain</p>")
	require.NoError(t, err)
	return d
}

func TestValidate_MissingFields(t *testing.T) {
	full := func() *domain.StoryDraft {
		d := domain.NewStoryDraft("d1")
		d.Title, d.Category, d.Tags, d.ChapterID = "T", "C", []string{"x"}, "ch"
		require.NoError(t, d.Doc.SetContent("<p>body</p>"))
		return d
	}
	assert.NoError(t, Validate(full()))

	tests := map[string]func(d *domain.StoryDraft){
		"title":    func(d *domain.StoryDraft) { d.Title = "  " },
		"category": func(d *domain.StoryDraft) { d.Category = "" },
		"tags":     func(d *domain.StoryDraft) { d.Tags = []string{" ", ""} },
		"chapter":  func(d *domain.StoryDraft) { d.ChapterID = "" },
		"content":  func(d *domain.StoryDraft) { d.Doc = editor.New() },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			d := full()
			mutate(d)
			var verr *ValidationError
			require.ErrorAs(t, Validate(d), &verr)
			assert.Equal(t, MsgFillAllFields, verr.Message)
		})
	}
}

func TestBuildForm(t *testing.T) {
	d := domain.NewStoryDraft("d1")
	d.Title, d.Category, d.ChapterID = " Barish ", "Kavita", "ch-1"
	d.Tags = []string{"rain", " ", "monsoon"}
	require.NoError(t, d.Doc.SetContent("<p>"+fmt.Sprintf("%0150d", 0)+"</p>"))

	form := BuildForm(d)
	assert.Equal(t, "Barish", form.Fields["title"])
	assert.Equal(t, "rain,monsoon", form.Fields["tags"])
	assert.Equal(t, "ch-1", form.Fields["chapterId"])
	assert.Equal(t, d.Content(), form.Fields["content"])
	assert.Len(t, []rune(form.Fields["excerpt"]), domain.ExcerptLength)
	assert.Nil(t, form.File)
}

func TestSubmit_ValidationSkipsNetwork(t *testing.T) {
	svc, api, sess := newSubmissionFixture(t)
	ctx := context.Background()
	d, err := svc.NewDraft(ctx, sess)
	require.NoError(t, err)

	out, err := svc.Submit(ctx, sess, d.ID)
	require.NoError(t, err)
	assert.Equal(t, NoticeError, out.Notice.Kind)
	assert.Equal(t, MsgFillAllFields, out.Notice.Message)
	assert.False(t, out.PendingReview)
	api.AssertNotCalled(t, "SubmitStory", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_Success(t *testing.T) {
	svc, api, sess := newSubmissionFixture(t)
	ctx := context.Background()
	d := fillDraft(t, svc, sess)

	api.On("SubmitStory", mock.Anything, sess, mock.MatchedBy(func(f apiclient.StoryForm) bool {
		return f.Fields["title"] == "Barish" && f.Fields["tags"] == "rain,monsoon"
	})).Return(okRaw("created"), nil).Once()

	out, err := svc.Submit(ctx, sess, d.ID)
	require.NoError(t, err)
	assert.Equal(t, NoticeSuccess, out.Notice.Kind)
	assert.Equal(t, MsgPoemAdded, out.Notice.Message)
	assert.True(t, out.PendingReview)

	stored, err := svc.Draft(ctx, sess, d.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Title)
	assert.Empty(t, stored.Tags)
	assert.True(t, stored.Doc.IsEmpty())
	api.AssertExpectations(t)
}

func TestSubmitBlog(t *testing.T) {
	svc, api, sess := newSubmissionFixture(t)
	ctx := context.Background()

	empty, err := svc.NewDraft(ctx, sess)
	require.NoError(t, err)
	out, err := svc.SubmitBlog(ctx, sess, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, MsgFillAllFields, out.Notice.Message)

	d := fillDraft(t, svc, sess)
	api.On("SubmitBlog", mock.Anything, sess, mock.MatchedBy(func(f apiclient.StoryForm) bool {
		return f.Fields["title"] == "Barish" && f.Fields["chapterId"] == "ch-1"
	})).Return(okRaw(""), nil).Once()

	out, err = svc.SubmitBlog(ctx, sess, d.ID)
	require.NoError(t, err)
	assert.Equal(t, NoticeSuccess, out.Notice.Kind)
	assert.Equal(t, MsgStoryAdded, out.Notice.Message)
	assert.False(t, out.PendingReview)
	assert.True(t, out.Draft.Doc.IsEmpty())
	api.AssertExpectations(t)
	api.AssertNotCalled(t, "SubmitStory", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_ServerRejectionKeepsDraft(t *testing.T) {
	svc, api, sess := newSubmissionFixture(t)
	ctx := context.Background()
	d := fillDraft(t, svc, sess)

	api.On("SubmitStory", mock.Anything, sess, mock.Anything).
		Return(apiclient.Err[json.RawMessage]("Title already exists"), nil).Once()

	out, err := svc.Submit(ctx, sess, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Title already exists", out.Notice.Message)
	assert.False(t, out.PendingReview)

	stored, err := svc.Draft(ctx, sess, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Barish", stored.Title)
	assert.Contains(t, stored.Content(), "Hello rain")
}

func TestSubmit_TransportFailure(t *testing.T) {
	svc, api, sess := newSubmissionFixture(t)
	ctx := context.Background()
	d := fillDraft(t, svc, sess)

	api.On("SubmitStory", mock.Anything, sess, mock.Anything).
		Return(apiclient.Result[json.RawMessage]{}, fmt.Errorf("%w: connection refused", common.ErrUpstream)).Once()

	out, err := svc.Submit(ctx, sess, d.ID)
	require.NoError(t, err)
	assert.Equal(t, common.MsgSomethingWrong, out.Notice.Message)
	assert.Equal(t, "Barish", out.Draft.Title)
}

func TestSubmit_SecondSubmitWhileInFlight(t *testing.T) {
	svc, api, sess := newSubmissionFixture(t)
	ctx := context.Background()
	d := fillDraft(t, svc, sess)

	started := make(chan struct{})
	release := make(chan struct{})
	api.On("SubmitStory", mock.Anything, sess, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(okRaw(""), nil).Once()

	done := make(chan SubmitOutcome)
	go func() {
		out, _ := svc.Submit(ctx, sess, d.ID)
		done <- out
	}()
	<-started

	assert.True(t, svc.Submitting(sess, d.ID))
	_, err := svc.Submit(ctx, sess, d.ID)
	assert.ErrorIs(t, err, common.ErrSubmitInProgress)
	_, err = svc.UpdateFields(ctx, sess, d.ID, DraftFields{Title: ptr("x")})
	assert.ErrorIs(t, err, common.ErrSubmitInProgress)

	close(release)
	out := <-done
	assert.Equal(t, MsgPoemAdded, out.Notice.Message)
	assert.False(t, svc.Submitting(sess, d.ID))
	api.AssertNumberOfCalls(t, "SubmitStory", 1)
}

func TestDraft_IsolatedPerSession(t *testing.T) {
	svc, _, sess := newSubmissionFixture(t)
	ctx := context.Background()
	d, err := svc.NewDraft(ctx, sess)
	require.NoError(t, err)

	_, err = svc.Draft(ctx, session.New("someone-else"), d.ID)
	assert.True(t, errors.Is(err, common.ErrDraftNotFound))
}

func TestApplyControl_BoldSelection(t *testing.T) {
	svc, _, sess := newSubmissionFixture(t)
	ctx := context.Background()
	d := fillDraft(t, svc, sess)

	sel := editor.Range(0, 0, 0, 5)
	d, err := svc.ApplyControl(ctx, sess, d.ID, &sel, "bold", "")
	require.NoError(t, err)
	assert.Contains(t, d.Content(), "<strong>Hello</strong>")

	_, err = svc.ApplyControl(ctx, sess, d.ID, nil, "nope", "")
	assert.ErrorIs(t, err, common.ErrUnknownCommand)
}

func TestInsertImage(t *testing.T) {
	svc, _, sess := newSubmissionFixture(t)
	ctx := context.Background()
	d := fillDraft(t, svc, sess)

	d, err := svc.InsertImage(ctx, sess, d.ID, nil, pngHeader)
	require.NoError(t, err)
	assert.Contains(t, d.Content(), `src="data:image/png;base64,`)

	_, err = svc.InsertImage(ctx, sess, d.ID, nil, []byte("plain text"))
	assert.ErrorIs(t, err, common.ErrUnsupportedImage)
}

func TestAttachCover_TooLarge(t *testing.T) {
	svc, _, sess := newSubmissionFixture(t)
	ctx := context.Background()
	d := fillDraft(t, svc, sess)

	_, err := svc.AttachCover(ctx, sess, d.ID, &domain.Upload{Name: "big.png", Data: make([]byte, 2<<20)})
	assert.ErrorIs(t, err, common.ErrImageTooLarge)

	d, err = svc.AttachCover(ctx, sess, d.ID, &domain.Upload{Name: "c.png", ContentType: "image/png", Data: pngHeader})
	require.NoError(t, err)
	require.NotNil(t, d.Image)
	assert.Equal(t, "c.png", BuildForm(d).File.Name)
}

func TestDiscard(t *testing.T) {
	svc, _, sess := newSubmissionFixture(t)
	ctx := context.Background()
	d, err := svc.NewDraft(ctx, sess)
	require.NoError(t, err)

	require.NoError(t, svc.Discard(ctx, sess, d.ID))
	_, err = svc.Draft(ctx, sess, d.ID)
	assert.ErrorIs(t, err, common.ErrDraftNotFound)
}

func TestUpdateFields_KeepsFieldsNotSent(t *testing.T) {
	svc, _, sess := newSubmissionFixture(t)
	ctx := context.Background()
	d := fillDraft(t, svc, sess)

	d, err := svc.UpdateFields(ctx, sess, d.ID, DraftFields{Title: ptr("Barish 2")})
	require.NoError(t, err)
	assert.Equal(t, "Barish 2", d.Title)
	assert.Equal(t, "Kavita", d.Category)
	assert.Equal(t, []string{"rain", "monsoon"}, d.Tags)
	assert.Equal(t, "ch-1", d.ChapterID)

	d, err = svc.UpdateFields(ctx, sess, d.ID, DraftFields{Category: ptr("")})
	require.NoError(t, err)
	assert.Empty(t, d.Category)
	assert.Equal(t, "Barish 2", d.Title)
}

// gatedDrafts blocks the first armed Save until released
type gatedDrafts struct {
	repository.DraftRepository
	armed   chan struct{}
	saving  chan struct{}
	release chan struct{}
}

func (g *gatedDrafts) Save(ctx context.Context, owner string, d *domain.StoryDraft) error {
	select {
	case <-g.armed:
		close(g.saving)
		<-g.release
	default:
	}
	return g.DraftRepository.Save(ctx, owner, d)
}

func TestSubmit_WaitsForEditInProgress(t *testing.T) {
	api := new(mockAPI)
	drafts := &gatedDrafts{
		DraftRepository: repository.NewDraftRepository(cache.NewMemory(), time.Hour),
		armed:           make(chan struct{}, 1),
		saving:          make(chan struct{}),
		release:         make(chan struct{}),
	}
	svc := NewSubmissionService(api, drafts, 1<<20)
	sess := session.New("opaque-token")
	ctx := context.Background()
	d := fillDraft(t, svc, sess)

	var submitted apiclient.StoryForm
	api.On("SubmitStory", mock.Anything, sess, mock.Anything).
		Run(func(args mock.Arguments) { submitted = args.Get(2).(apiclient.StoryForm) }).
		Return(okRaw(""), nil).Once()

	drafts.armed <- struct{}{}
	edited := make(chan error)
	go func() {
		_, err := svc.UpdateFields(ctx, sess, d.ID, DraftFields{Title: ptr("Barish 2")})
		edited <- err
	}()
	<-drafts.saving

	done := make(chan SubmitOutcome)
	go func() {
		out, _ := svc.Submit(ctx, sess, d.ID)
		done <- out
	}()
	require.Eventually(t, func() bool { return svc.Submitting(sess, d.ID) }, time.Second, time.Millisecond)
	api.AssertNotCalled(t, "SubmitStory", mock.Anything, mock.Anything, mock.Anything)

	close(drafts.release)
	require.NoError(t, <-edited)
	out := <-done
	assert.Equal(t, MsgPoemAdded, out.Notice.Message)
	assert.Equal(t, "Barish 2", submitted.Fields["title"])

	stored, err := svc.Draft(ctx, sess, d.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Title)
}
