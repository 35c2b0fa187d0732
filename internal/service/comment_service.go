package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kavyapath/kavyapath-web/internal/apiclient"
	"github.com/kavyapath/kavyapath-web/internal/common"
	"github.com/kavyapath/kavyapath-web/internal/domain"
	"github.com/kavyapath/kavyapath-web/internal/session"
	pkglogger "github.com/kavyapath/kavyapath-web/pkg/logger"
)

// Comment texts
const (
	MsgCommentsFailed    = "Failed to fetch comments."
	MsgCommentEmpty      = "Comment cannot be empty."
	MsgCommentSubmitted  = "Your comment has been submitted for review."
	MsgCommentFailed     = "Failed to submit the comment."
	MsgCommentApproved   = "The comment has been approved successfully."
	MsgApproveFailed     = "Failed to approve the comment."
	MsgVerifyFailed      = "Failed to verify post"
	MsgVerifyDefaultDone = "Post verified successfully"
)

// CommentAPI is the part of the remote client used for comments and moderation
type CommentAPI interface {
	Comments(ctx context.Context, cred apiclient.Credential, storyID string) (apiclient.Result[[]domain.Comment], error)
	PostComment(ctx context.Context, cred apiclient.Credential, storyID, text string) (apiclient.Result[json.RawMessage], error)
	ApproveComment(ctx context.Context, cred apiclient.Credential, id string) (apiclient.Result[json.RawMessage], error)
	VerifyStory(ctx context.Context, cred apiclient.Credential, id string) (apiclient.Result[json.RawMessage], error)
}

// CommentList is the comment section of a story page
type CommentList struct {
	Comments []domain.Comment
	Notice   *domain.Notice
}

// CommentService business logic for comments and story moderation
type CommentService interface {
	// List fetches the comments of a story; failures become the list notice
	List(ctx context.Context, sess *session.Session, storyID string) CommentList
	// Post submits a new comment for review
	Post(ctx context.Context, sess *session.Session, storyID, text string) domain.Notice
	// Approve approves a pending comment and, on success, marks it approved in list
	Approve(ctx context.Context, sess *session.Session, commentID string, list []domain.Comment) (domain.Notice, []domain.Comment)
	// Verify marks a story as reviewed
	Verify(ctx context.Context, sess *session.Session, storyID string) domain.Notice
}

type commentService struct {
	api CommentAPI
	log zerolog.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(api CommentAPI) CommentService {
	return &commentService{api: api, log: pkglogger.WithComponent("comment")}
}

func (s *commentService) List(ctx context.Context, sess *session.Session, storyID string) CommentList {
	res, err := s.api.Comments(ctx, sess, storyID)
	if err != nil {
		s.log.Error().Err(err).Str("story_id", storyID).Msg("comment fetch failed")
		n := failure(MsgCommentsFailed)
		return CommentList{Notice: &n}
	}
	if !res.IsOk() {
		n := failure(orDefault(res.Message(), MsgCommentsFailed))
		return CommentList{Notice: &n}
	}
	return CommentList{Comments: res.Data()}
}

func (s *commentService) Post(ctx context.Context, sess *session.Session, storyID, text string) domain.Notice {
	text = strings.TrimSpace(text)
	if text == "" {
		return failure(MsgCommentEmpty)
	}
	res, err := s.api.PostComment(ctx, sess, storyID, text)
	if err != nil {
		s.log.Error().Err(err).Str("story_id", storyID).Msg("comment post failed")
		return failure(common.MsgSomethingWrong)
	}
	if !res.IsOk() {
		return failure(orDefault(res.Message(), MsgCommentFailed))
	}
	return success(MsgCommentSubmitted)
}

func (s *commentService) Approve(ctx context.Context, sess *session.Session, commentID string, list []domain.Comment) (domain.Notice, []domain.Comment) {
	res, err := s.api.ApproveComment(ctx, sess, commentID)
	if err != nil {
		moderationTotal.WithLabelValues("approve", resultFailed).Inc()
		s.log.Error().Err(err).Str("comment_id", commentID).Msg("comment approve failed")
		return failure(MsgApproveFailed), list
	}
	if !res.IsOk() {
		moderationTotal.WithLabelValues("approve", resultRejected).Inc()
		return failure(orDefault(res.Message(), MsgApproveFailed)), list
	}
	moderationTotal.WithLabelValues("approve", resultOK).Inc()
	return success(MsgCommentApproved), markApproved(list, commentID)
}

func (s *commentService) Verify(ctx context.Context, sess *session.Session, storyID string) domain.Notice {
	res, err := s.api.VerifyStory(ctx, sess, storyID)
	if err != nil {
		moderationTotal.WithLabelValues("verify", resultFailed).Inc()
		s.log.Error().Err(err).Str("story_id", storyID).Msg("story verify failed")
		return failure(MsgVerifyFailed)
	}
	if !res.IsOk() {
		moderationTotal.WithLabelValues("verify", resultRejected).Inc()
		return failure(orDefault(res.Message(), MsgVerifyFailed))
	}
	moderationTotal.WithLabelValues("verify", resultOK).Inc()
	return success(orDefault(res.Message(), MsgVerifyDefaultDone))
}

// markApproved returns a copy of list with the given comment approved
func markApproved(list []domain.Comment, id string) []domain.Comment {
	out := make([]domain.Comment, len(list))
	copy(out, list)
	approved := true
	for i := range out {
		if out[i].ID == id {
			out[i].IsApproved = &approved
		}
	}
	return out
}

func orDefault(msg, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}
