package service

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/kavyapath/kavyapath-web/internal/apiclient"
	"github.com/kavyapath/kavyapath-web/internal/domain"
)

// --- Mock remote API ---

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) SubmitStory(ctx context.Context, cred apiclient.Credential, form apiclient.StoryForm) (apiclient.Result[json.RawMessage], error) {
	args := m.Called(ctx, cred, form)
	return args.Get(0).(apiclient.Result[json.RawMessage]), args.Error(1)
}

func (m *mockAPI) SubmitBlog(ctx context.Context, cred apiclient.Credential, form apiclient.StoryForm) (apiclient.Result[json.RawMessage], error) {
	args := m.Called(ctx, cred, form)
	return args.Get(0).(apiclient.Result[json.RawMessage]), args.Error(1)
}

func (m *mockAPI) Comments(ctx context.Context, cred apiclient.Credential, storyID string) (apiclient.Result[[]domain.Comment], error) {
	args := m.Called(ctx, cred, storyID)
	return args.Get(0).(apiclient.Result[[]domain.Comment]), args.Error(1)
}

func (m *mockAPI) PostComment(ctx context.Context, cred apiclient.Credential, storyID, text string) (apiclient.Result[json.RawMessage], error) {
	args := m.Called(ctx, cred, storyID, text)
	return args.Get(0).(apiclient.Result[json.RawMessage]), args.Error(1)
}

func (m *mockAPI) ApproveComment(ctx context.Context, cred apiclient.Credential, id string) (apiclient.Result[json.RawMessage], error) {
	args := m.Called(ctx, cred, id)
	return args.Get(0).(apiclient.Result[json.RawMessage]), args.Error(1)
}

func (m *mockAPI) VerifyStory(ctx context.Context, cred apiclient.Credential, id string) (apiclient.Result[json.RawMessage], error) {
	args := m.Called(ctx, cred, id)
	return args.Get(0).(apiclient.Result[json.RawMessage]), args.Error(1)
}

func (m *mockAPI) Home(ctx context.Context, cred apiclient.Credential) (apiclient.Result[[]domain.StorySummary], error) {
	args := m.Called(ctx, cred)
	return args.Get(0).(apiclient.Result[[]domain.StorySummary]), args.Error(1)
}

func (m *mockAPI) Story(ctx context.Context, cred apiclient.Credential, slug string) (apiclient.Result[domain.StoryPage], error) {
	args := m.Called(ctx, cred, slug)
	return args.Get(0).(apiclient.Result[domain.StoryPage]), args.Error(1)
}

func (m *mockAPI) StoryMetadata(ctx context.Context, slug string) (apiclient.Result[domain.StoryMetadata], error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(apiclient.Result[domain.StoryMetadata]), args.Error(1)
}

func (m *mockAPI) Profile(ctx context.Context, cred apiclient.Credential) (domain.Profile, error) {
	args := m.Called(ctx, cred)
	return args.Get(0).(domain.Profile), args.Error(1)
}

func (m *mockAPI) UserStories(ctx context.Context, cred apiclient.Credential) ([]domain.UserStory, error) {
	args := m.Called(ctx, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserStory), args.Error(1)
}

func (m *mockAPI) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.AuthResponse), args.Error(1)
}

func (m *mockAPI) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.AuthResponse), args.Error(1)
}

func okRaw(msg string) apiclient.Result[json.RawMessage] {
	return apiclient.Ok(json.RawMessage(`{}`), msg)
}
