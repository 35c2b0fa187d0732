package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kavyapath/kavyapath-web/internal/apiclient"
	"github.com/kavyapath/kavyapath-web/internal/common"
	"github.com/kavyapath/kavyapath-web/internal/domain"
	"github.com/kavyapath/kavyapath-web/internal/editor"
	"github.com/kavyapath/kavyapath-web/internal/repository"
	"github.com/kavyapath/kavyapath-web/internal/session"
	pkglogger "github.com/kavyapath/kavyapath-web/pkg/logger"
)

// Submission texts
const (
	MsgFillAllFields = "Please fill all the fields"
	MsgPoemAdded     = "poem has been added successfully"
	MsgStoryAdded    = "Story has been added successfully"
	MsgPendingReview = "Your poem will be reviewed by our team before it is published. Please wait for the review. Thank you."
)

// SubmissionAPI is the part of the remote client used to publish
type SubmissionAPI interface {
	SubmitStory(ctx context.Context, cred apiclient.Credential, form apiclient.StoryForm) (apiclient.Result[json.RawMessage], error)
	SubmitBlog(ctx context.Context, cred apiclient.Credential, form apiclient.StoryForm) (apiclient.Result[json.RawMessage], error)
}

// DraftFields are the plain form fields of the authoring page.
// A nil field was not sent and keeps its stored value.
type DraftFields struct {
	Title     *string
	Category  *string
	Tags      *string // comma separated
	ChapterID *string
}

// Empty reports whether no field was sent
func (f DraftFields) Empty() bool {
	return f.Title == nil && f.Category == nil && f.Tags == nil && f.ChapterID == nil
}

// SubmitOutcome is what the authoring page shows after a submit
type SubmitOutcome struct {
	Notice        domain.Notice
	PendingReview bool
	Draft         *domain.StoryDraft
}

// SubmissionService owns the authoring draft and publishes it
type SubmissionService interface {
	// NewDraft starts a blank draft for the caller
	NewDraft(ctx context.Context, sess *session.Session) (*domain.StoryDraft, error)
	// Draft loads an existing draft
	Draft(ctx context.Context, sess *session.Session, id string) (*domain.StoryDraft, error)
	// UpdateFields stores the plain form fields
	UpdateFields(ctx context.Context, sess *session.Session, id string, f DraftFields) (*domain.StoryDraft, error)
	// SetContent replaces the editor document with HTML posted by the page
	SetContent(ctx context.Context, sess *session.Session, id, html string) (*domain.StoryDraft, error)
	// ApplyControl triggers one toolbar control at the given selection
	ApplyControl(ctx context.Context, sess *session.Session, id string, sel *editor.Selection, control, value string) (*domain.StoryDraft, error)
	// InsertImage embeds an uploaded image in the document at the selection
	InsertImage(ctx context.Context, sess *session.Session, id string, sel *editor.Selection, data []byte) (*domain.StoryDraft, error)
	// AttachCover sets the optional cover file sent with the story
	AttachCover(ctx context.Context, sess *session.Session, id string, up *domain.Upload) (*domain.StoryDraft, error)
	// Submit validates and publishes the draft for review
	Submit(ctx context.Context, sess *session.Session, id string) (SubmitOutcome, error)
	// SubmitBlog validates and publishes the draft as a blog post
	SubmitBlog(ctx context.Context, sess *session.Session, id string) (SubmitOutcome, error)
	// Discard drops the draft
	Discard(ctx context.Context, sess *session.Session, id string) error
	// Submitting reports whether a submit of the draft is in flight
	Submitting(sess *session.Session, id string) bool
}

type submissionService struct {
	api          SubmissionAPI
	drafts       repository.DraftRepository
	toolbar      editor.Toolbar
	maxImageSize int64
	inflight     sync.Map
	edits        [editStripes]sync.Mutex
	log          zerolog.Logger
}

const editStripes = 64

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(api SubmissionAPI, drafts repository.DraftRepository, maxImageSize int64) SubmissionService {
	return &submissionService{
		api:          api,
		drafts:       drafts,
		toolbar:      editor.DefaultToolbar(),
		maxImageSize: maxImageSize,
		log:          pkglogger.WithComponent("submission"),
	}
}

// Validate reports the first missing field. Content counts as missing when
// the editor serializes to nothing.
func Validate(d *domain.StoryDraft) error {
	switch {
	case strings.TrimSpace(d.Title) == "",
		strings.TrimSpace(d.Category) == "",
		len(d.CleanTags()) == 0,
		strings.TrimSpace(d.ChapterID) == "",
		d.Content() == "":
		return &ValidationError{Message: MsgFillAllFields}
	}
	return nil
}

// BuildForm maps a draft to the multipart fields of POST /story
func BuildForm(d *domain.StoryDraft) apiclient.StoryForm {
	return apiclient.StoryForm{
		Fields: map[string]string{
			"title":     strings.TrimSpace(d.Title),
			"content":   d.Content(),
			"category":  strings.TrimSpace(d.Category),
			"tags":      strings.Join(d.CleanTags(), ","),
			"chapterId": d.ChapterID,
			"excerpt":   d.Excerpt(),
		},
		File: d.Image,
	}
}

func (s *submissionService) NewDraft(ctx context.Context, sess *session.Session) (*domain.StoryDraft, error) {
	d := domain.NewStoryDraft(uuid.NewString())
	if err := s.drafts.Save(ctx, sess.ID(), d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *submissionService) Draft(ctx context.Context, sess *session.Session, id string) (*domain.StoryDraft, error) {
	d, err := s.drafts.Get(ctx, sess.ID(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, common.ErrDraftNotFound
	}
	return d, err
}

// update loads, mutates and stores a draft. Drafts being submitted are read-only.
func (s *submissionService) update(ctx context.Context, sess *session.Session, id string, fn func(*domain.StoryDraft) error) (*domain.StoryDraft, error) {
	key := s.key(sess, id)
	if _, busy := s.inflight.Load(key); busy {
		return nil, common.ErrSubmitInProgress
	}
	mu := s.editLock(key)
	mu.Lock()
	defer mu.Unlock()
	// a submit may have started while waiting for the lock
	if _, busy := s.inflight.Load(key); busy {
		return nil, common.ErrSubmitInProgress
	}

	d, err := s.Draft(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		return d, err
	}
	if err := s.drafts.Save(ctx, sess.ID(), d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *submissionService) UpdateFields(ctx context.Context, sess *session.Session, id string, f DraftFields) (*domain.StoryDraft, error) {
	return s.update(ctx, sess, id, func(d *domain.StoryDraft) error {
		if f.Title != nil {
			d.Title = *f.Title
		}
		if f.Category != nil {
			d.Category = *f.Category
		}
		if f.Tags != nil {
			d.Tags = domain.SplitTags(*f.Tags)
		}
		if f.ChapterID != nil {
			d.ChapterID = *f.ChapterID
		}
		return nil
	})
}

func (s *submissionService) SetContent(ctx context.Context, sess *session.Session, id, html string) (*domain.StoryDraft, error) {
	return s.update(ctx, sess, id, func(d *domain.StoryDraft) error {
		return d.Doc.SetContent(html)
	})
}

func (s *submissionService) ApplyControl(ctx context.Context, sess *session.Session, id string, sel *editor.Selection, control, value string) (*domain.StoryDraft, error) {
	return s.update(ctx, sess, id, func(d *domain.StoryDraft) error {
		if sel != nil {
			d.Doc.Select(*sel)
		}
		return s.toolbar.Trigger(d.Doc, control, value)
	})
}

func (s *submissionService) InsertImage(ctx context.Context, sess *session.Session, id string, sel *editor.Selection, data []byte) (*domain.StoryDraft, error) {
	src, err := editor.DataURL(data, s.maxImageSize)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, sess, id, func(d *domain.StoryDraft) error {
		if sel != nil {
			d.Doc.Select(*sel)
		}
		return d.Doc.Apply(editor.Command{Kind: editor.KindImage, Args: editor.Args{Src: src}})
	})
}

func (s *submissionService) AttachCover(ctx context.Context, sess *session.Session, id string, up *domain.Upload) (*domain.StoryDraft, error) {
	if up != nil && s.maxImageSize > 0 && int64(len(up.Data)) > s.maxImageSize {
		return nil, fmt.Errorf("%w: %d bytes", common.ErrImageTooLarge, len(up.Data))
	}
	return s.update(ctx, sess, id, func(d *domain.StoryDraft) error {
		d.Image = up
		return nil
	})
}

// Submit publishes the draft with a single request. Validation problems,
// server rejections and transport failures are all reported through the
// outcome's notice; the draft is only reset on success.
func (s *submissionService) Submit(ctx context.Context, sess *session.Session, id string) (SubmitOutcome, error) {
	return s.publish(ctx, sess, id, storyTarget)
}

func (s *submissionService) SubmitBlog(ctx context.Context, sess *session.Session, id string) (SubmitOutcome, error) {
	return s.publish(ctx, sess, id, blogTarget)
}

// publishTarget is one remote endpoint a draft can be published to
type publishTarget struct {
	name          string
	send          func(SubmissionAPI, context.Context, apiclient.Credential, apiclient.StoryForm) (apiclient.Result[json.RawMessage], error)
	success       string
	pendingReview bool
}

var (
	storyTarget = publishTarget{name: "story", send: SubmissionAPI.SubmitStory, success: MsgPoemAdded, pendingReview: true}
	blogTarget  = publishTarget{name: "blog", send: SubmissionAPI.SubmitBlog, success: MsgStoryAdded}
)

func (s *submissionService) publish(ctx context.Context, sess *session.Session, id string, t publishTarget) (SubmitOutcome, error) {
	key := s.key(sess, id)
	if _, busy := s.inflight.LoadOrStore(key, struct{}{}); busy {
		return SubmitOutcome{}, common.ErrSubmitInProgress
	}
	defer s.inflight.Delete(key)

	// wait out an edit that passed its check before the marker was set
	mu := s.editLock(key)
	mu.Lock()
	mu.Unlock() //nolint:staticcheck // barrier only

	d, err := s.Draft(ctx, sess, id)
	if err != nil {
		return SubmitOutcome{}, err
	}

	if err := Validate(d); err != nil {
		submissionsTotal.WithLabelValues(t.name, resultInvalid).Inc()
		return SubmitOutcome{Notice: failure(err.Error()), Draft: d}, nil
	}

	res, err := t.send(s.api, ctx, sess, BuildForm(d))
	if err != nil {
		submissionsTotal.WithLabelValues(t.name, resultFailed).Inc()
		s.log.Error().Err(err).Str("draft_id", id).Str("target", t.name).Msg("submit failed")
		return SubmitOutcome{Notice: failure(common.MsgSomethingWrong), Draft: d}, nil
	}
	if !res.IsOk() {
		submissionsTotal.WithLabelValues(t.name, resultRejected).Inc()
		return SubmitOutcome{Notice: failure(res.Message()), Draft: d}, nil
	}

	submissionsTotal.WithLabelValues(t.name, resultOK).Inc()
	d.Reset()
	if err := s.drafts.Save(ctx, sess.ID(), d); err != nil {
		s.log.Warn().Err(err).Str("draft_id", id).Msg("draft reset not stored")
	}
	return SubmitOutcome{Notice: success(t.success), PendingReview: t.pendingReview, Draft: d}, nil
}

func (s *submissionService) Discard(ctx context.Context, sess *session.Session, id string) error {
	return s.drafts.Delete(ctx, sess.ID(), id)
}

func (s *submissionService) Submitting(sess *session.Session, id string) bool {
	_, busy := s.inflight.Load(s.key(sess, id))
	return busy
}

func (s *submissionService) key(sess *session.Session, id string) string {
	return sess.ID() + ":" + id
}

// editLock serializes load, mutate and save for one draft key
func (s *submissionService) editLock(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.edits[h.Sum32()%editStripes]
}
