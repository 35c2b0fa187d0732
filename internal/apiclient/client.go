// Package apiclient is the typed client of the remote Kavyapath API.
//
// Every call decodes the {success, data, message} envelope exactly once and
// returns a Result; callers never look at raw JSON.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/kavyapath/kavyapath-web/internal/common"
	"github.com/kavyapath/kavyapath-web/internal/config"
	"github.com/kavyapath/kavyapath-web/internal/domain"
	pkglogger "github.com/kavyapath/kavyapath-web/pkg/logger"
)

// Credential supplies the bearer token for a call
type Credential interface {
	Token() (string, bool)
}

// Anonymous is a credential without a token
var Anonymous Credential = anonymous{}

type anonymous struct{}

func (anonymous) Token() (string, bool) { return "", false }

// Client talks to the remote API
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

// New creates a client from configuration. Only GET requests are retried.
func New(cfg config.APIConfig) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
				return false
			}
			return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		}).
		SetLogger(silentLogger{})

	return &Client{http: rc, log: pkglogger.WithComponent("apiclient")}
}

func (c *Client) request(ctx context.Context, cred Credential) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if cred == nil {
		return req
	}
	if token, ok := cred.Token(); ok {
		req.SetAuthToken(token)
	}
	return req
}

// do executes the request and returns the decoded envelope. Bodies without
// an envelope are a transport-level failure.
func (c *Client) do(req *resty.Request, method, path string) (envelope, error) {
	resp, err := req.Execute(method, path)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("api request failed")
		return envelope{}, fmt.Errorf("%w: %s %s: %v", common.ErrUpstream, method, path, err)
	}
	env, err := decodeEnvelope(resp.Body())
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).
			Int("status", resp.StatusCode()).Msg("api response not decodable")
		return envelope{}, fmt.Errorf("%w: %s %s: status %d", common.ErrUpstream, method, path, resp.StatusCode())
	}
	return env, nil
}

func call[T any](c *Client, req *resty.Request, method, path string) (Result[T], error) {
	env, err := c.do(req, method, path)
	if err != nil {
		return Result[T]{}, err
	}
	return toResult[T](env)
}

// loose decodes endpoints that answer with either a bare object or an envelope
func loose[T any](c *Client, req *resty.Request, path string) (T, error) {
	var out T
	resp, err := req.Get(path)
	if err != nil {
		return out, fmt.Errorf("%w: GET %s: %v", common.ErrUpstream, path, err)
	}
	if resp.IsError() {
		return out, fmt.Errorf("%w: GET %s: status %d", common.ErrUpstream, path, resp.StatusCode())
	}
	body := resp.Body()
	if env, err := decodeEnvelope(body); err == nil {
		if !*env.Success {
			return out, fmt.Errorf("%w: %s", common.ErrUpstream, env.Message)
		}
		body = env.Data
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("%w: decode %s: %v", common.ErrUpstream, path, err)
	}
	return out, nil
}

// Chapters lists every chapter: GET /story/chapter
func (c *Client) Chapters(ctx context.Context) (Result[[]domain.Chapter], error) {
	return call[[]domain.Chapter](c, c.request(ctx, nil), http.MethodGet, "/story/chapter")
}

// CreateChapter adds a chapter: POST /story/chapter
func (c *Client) CreateChapter(ctx context.Context, cred Credential, title string) (Result[domain.Chapter], error) {
	req := c.request(ctx, cred).SetBody(domain.CreateChapterRequest{Title: title})
	return call[domain.Chapter](c, req, http.MethodPost, "/story/chapter")
}

// StoryForm is the multipart body of POST /story
type StoryForm struct {
	Fields map[string]string
	File   *domain.Upload
}

// SubmitStory publishes a draft: POST /story (multipart). Never retried.
func (c *Client) SubmitStory(ctx context.Context, cred Credential, form StoryForm) (Result[json.RawMessage], error) {
	return c.postForm(ctx, cred, form, "/story")
}

// SubmitBlog publishes a draft as a blog post: POST /blog (multipart)
func (c *Client) SubmitBlog(ctx context.Context, cred Credential, form StoryForm) (Result[json.RawMessage], error) {
	return c.postForm(ctx, cred, form, "/blog")
}

func (c *Client) postForm(ctx context.Context, cred Credential, form StoryForm, path string) (Result[json.RawMessage], error) {
	req := c.request(ctx, cred).SetMultipartFormData(form.Fields)
	if f := form.File; f != nil {
		req.SetMultipartField("file", f.Name, f.ContentType, bytes.NewReader(f.Data))
	}
	return call[json.RawMessage](c, req, http.MethodPost, path)
}

// Story fetches a story with its neighbours: GET /story/slug/:slug
func (c *Client) Story(ctx context.Context, cred Credential, slug string) (Result[domain.StoryPage], error) {
	req := c.request(ctx, cred).SetPathParam("slug", slug)
	env, err := c.do(req, http.MethodGet, "/story/slug/{slug}")
	if err != nil {
		return Result[domain.StoryPage]{}, err
	}
	res, err := toResult[domain.Story](env)
	if err != nil || !res.IsOk() {
		return Err[domain.StoryPage](res.Message()), err
	}
	return Ok(domain.StoryPage{
		Story:        res.Data(),
		NextSlug:     env.NextSlug,
		PreviousSlug: env.PreviousSlug,
	}, res.Message()), nil
}

// StoryMetadata fetches the share metadata: GET /story/metadata/:slug
func (c *Client) StoryMetadata(ctx context.Context, slug string) (Result[domain.StoryMetadata], error) {
	req := c.request(ctx, nil).SetPathParam("slug", slug)
	return call[domain.StoryMetadata](c, req, http.MethodGet, "/story/metadata/{slug}")
}

// Home lists published stories with their chapter: GET /story/home
func (c *Client) Home(ctx context.Context, cred Credential) (Result[[]domain.StorySummary], error) {
	return call[[]domain.StorySummary](c, c.request(ctx, cred), http.MethodGet, "/story/home")
}

// VerifyStory marks a story as reviewed: PUT /story/verify/:id
func (c *Client) VerifyStory(ctx context.Context, cred Credential, id string) (Result[json.RawMessage], error) {
	req := c.request(ctx, cred).SetPathParam("id", id)
	return call[json.RawMessage](c, req, http.MethodPut, "/story/verify/{id}")
}

// Comments lists comments of a story. Signed-in callers get the moderator
// listing (/comment/all/:id) that includes pending comments.
func (c *Client) Comments(ctx context.Context, cred Credential, storyID string) (Result[[]domain.Comment], error) {
	path := "/comment/{id}"
	if cred != nil {
		if _, ok := cred.Token(); ok {
			path = "/comment/all/{id}"
		}
	}
	req := c.request(ctx, cred).SetPathParam("id", storyID)
	return call[[]domain.Comment](c, req, http.MethodGet, path)
}

// PostComment submits a comment for review: POST /comment
func (c *Client) PostComment(ctx context.Context, cred Credential, storyID, text string) (Result[json.RawMessage], error) {
	req := c.request(ctx, cred).SetBody(domain.PostCommentRequest{Comment: text, StoryID: storyID})
	return call[json.RawMessage](c, req, http.MethodPost, "/comment")
}

// ApproveComment approves a pending comment: PUT /comment/approve/:id
func (c *Client) ApproveComment(ctx context.Context, cred Credential, id string) (Result[json.RawMessage], error) {
	req := c.request(ctx, cred).SetPathParam("id", id)
	return call[json.RawMessage](c, req, http.MethodPut, "/comment/approve/{id}")
}

// Profile fetches the signed-in user: GET /user/profile
func (c *Client) Profile(ctx context.Context, cred Credential) (domain.Profile, error) {
	return loose[domain.Profile](c, c.request(ctx, cred), "/user/profile")
}

// UserStories lists the signed-in user's stories: GET /stories/user
func (c *Client) UserStories(ctx context.Context, cred Credential) ([]domain.UserStory, error) {
	return loose[[]domain.UserStory](c, c.request(ctx, cred), "/stories/user")
}

// Register creates an account: POST /auth/register
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	return c.auth(ctx, "/auth/register", req)
}

// Login exchanges credentials for a token: POST /auth/login
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	return c.auth(ctx, "/auth/login", req)
}

// auth endpoints answer {token} on success and {message} otherwise,
// whatever the HTTP status.
func (c *Client) auth(ctx context.Context, path string, body any) (domain.AuthResponse, error) {
	var out domain.AuthResponse
	resp, err := c.request(ctx, nil).SetBody(body).Post(path)
	if err != nil {
		return out, fmt.Errorf("%w: POST %s: %v", common.ErrUpstream, path, err)
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return out, fmt.Errorf("%w: POST %s: status %d", common.ErrUpstream, path, resp.StatusCode())
	}
	if out.Token == "" && out.Message == "" {
		return out, fmt.Errorf("%w: POST %s: empty auth response", common.ErrUpstream, path)
	}
	return out, nil
}

// Ping checks that the API answers at all; used by kavyactl health
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.request(ctx, nil).SetDoNotParseResponse(true).Get("/story/chapter")
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}
	body := resp.RawBody()
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
	if resp.StatusCode() >= 500 {
		return fmt.Errorf("%w: status %d", common.ErrUpstream, resp.StatusCode())
	}
	return nil
}

// IsTransport reports whether err came from the network rather than the server's envelope
func IsTransport(err error) bool {
	return errors.Is(err, common.ErrUpstream)
}

type silentLogger struct{}

func (silentLogger) Errorf(string, ...interface{}) {}
func (silentLogger) Warnf(string, ...interface{})  {}
func (silentLogger) Debugf(string, ...interface{}) {}
