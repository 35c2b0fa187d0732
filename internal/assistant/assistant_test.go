package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kavyapath/kavyapath-web/internal/common"
	"github.com/kavyapath/kavyapath-web/internal/domain"
	"github.com/kavyapath/kavyapath-web/internal/repository"
	"github.com/kavyapath/kavyapath-web/pkg/cache"
)

// MockLLM is a mock implementation of LLMClient
type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockAnalysisRepo is a mock implementation of repository.AnalysisRepository
type MockAnalysisRepo struct {
	mock.Mock
}

func (m *MockAnalysisRepo) FindFresh(ctx context.Context, hash string, maxAge time.Duration) (*domain.Analysis, error) {
	args := m.Called(ctx, hash, maxAge)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Analysis), args.Error(1)
}

func (m *MockAnalysisRepo) Save(ctx context.Context, a *domain.Analysis) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAnalysisRepo) Purge(ctx context.Context, maxAge time.Duration) (int64, error) {
	args := m.Called(ctx, maxAge)
	return args.Get(0).(int64), args.Error(1)
}

// blockingAnswerer answers only when released, or fails when ctx ends
type blockingAnswerer struct {
	started chan struct{}
	release chan string
}

func newBlocking() *blockingAnswerer {
	return &blockingAnswerer{started: make(chan struct{}, 1), release: make(chan string, 1)}
}

func (b *blockingAnswerer) Analyze(ctx context.Context, _, _, _ string) (string, error) {
	b.started <- struct{}{}
	select {
	case text := <-b.release:
		return text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type echoAnswerer struct{}

func (echoAnswerer) Analyze(_ context.Context, _, _, q string) (string, error) {
	return "answer: " + q, nil
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("मधुशाला", "मृदु भावों के अंगूरों की", "What is the theme?")
	assert.Contains(t, p.System, `Title: "मधुशाला"`)
	assert.Contains(t, p.System, "Hindi poetic traditions")
	assert.True(t, strings.HasSuffix(p.Text(), "\n\nUser question: What is the theme?"))
}

func TestAnalyze_NoAPIKey(t *testing.T) {
	a := NewAnalyzer(nil)
	got, err := a.Analyze(context.Background(), "t", "c", "q")
	require.NoError(t, err)
	assert.Equal(t, MsgNoAPIKey, got)
	assert.False(t, a.Configured())
}

func TestAnalyze_ProviderErrorBecomesApology(t *testing.T) {
	llm := new(MockLLM)
	llm.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	got, err := NewAnalyzer(llm).Analyze(context.Background(), "t", "c", "q")
	require.NoError(t, err)
	assert.Equal(t, MsgAnalysisFailed, got)
}

func TestAnalyze_CanceledContextIsAnError(t *testing.T) {
	llm := new(MockLLM)
	llm.On("Complete", mock.Anything, mock.Anything).Return("", context.Canceled)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnalyzer(llm).Analyze(ctx, "t", "c", "q")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAnalyze_UsesCache(t *testing.T) {
	llm := new(MockLLM)
	repo := new(MockAnalysisRepo)
	hash := Hash("t", "c", "q")

	repo.On("FindFresh", mock.Anything, hash, time.Hour).Return(nil, repository.ErrNotFound).Once()
	llm.On("Complete", mock.Anything, mock.MatchedBy(func(p Prompt) bool { return p.User == "q" })).
		Return("fresh", nil).Once()
	repo.On("Save", mock.Anything, mock.MatchedBy(func(a *domain.Analysis) bool {
		return a.Hash == hash && a.Response == "fresh" && a.Model == "gemini-1.5-pro"
	})).Return(nil).Once()

	a := NewAnalyzer(llm, WithCache(repo, time.Hour), WithModel("gemini-1.5-pro"))
	got, err := a.Analyze(context.Background(), "t", "c", "q")
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)

	repo.On("FindFresh", mock.Anything, hash, time.Hour).Return(&domain.Analysis{Response: "cached"}, nil).Once()
	got, err = a.Analyze(context.Background(), "t", "c", "q")
	require.NoError(t, err)
	assert.Equal(t, "cached", got)

	llm.AssertNumberOfCalls(t, "Complete", 1)
	repo.AssertExpectations(t)
}

func TestHash_SeparatesFields(t *testing.T) {
	assert.NotEqual(t, Hash("ab", "c", "q"), Hash("a", "bc", "q"))
	assert.Len(t, Hash("a", "b", "c"), 64)
}

func TestPanel_TranscriptGrowsByTwoPerQuestion(t *testing.T) {
	p := NewPanel(context.Background(), echoAnswerer{}, "t", "c")
	require.Len(t, p.Messages(), 1)
	assert.Equal(t, Greeting, p.Messages()[0].Text)

	for n := 1; n <= 3; n++ {
		reply, err := p.Ask(context.Background(), "question")
		require.NoError(t, err)
		assert.Equal(t, "answer: question", reply.Text)
		assert.Len(t, p.Messages(), 2*n+1)
	}

	msgs := p.Messages()
	assert.Equal(t, domain.RoleUser, msgs[1].Role)
	assert.Equal(t, domain.RoleAssistant, msgs[2].Role)

	p.Reset()
	assert.Len(t, p.Messages(), 1)
	assert.Equal(t, Greeting, p.Messages()[0].Text)
}

func TestPanel_EmptyQuestion(t *testing.T) {
	p := NewPanel(context.Background(), echoAnswerer{}, "t", "c")
	_, err := p.Ask(context.Background(), "   ")
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
	assert.Len(t, p.Messages(), 1)
}

func TestPanel_BusyWhileLoading(t *testing.T) {
	b := newBlocking()
	p := NewPanel(context.Background(), b, "t", "c")

	done := make(chan error, 1)
	go func() {
		_, err := p.Ask(context.Background(), "first")
		done <- err
	}()
	<-b.started
	assert.True(t, p.Loading())

	_, err := p.Ask(context.Background(), "second")
	assert.True(t, errors.Is(err, common.ErrAssistantBusy))

	b.release <- "ok"
	require.NoError(t, <-done)
	assert.False(t, p.Loading())
	assert.Len(t, p.Messages(), 3)
}

func TestPanel_ReplyAfterResetIsDropped(t *testing.T) {
	b := newBlocking()
	p := NewPanel(context.Background(), b, "t", "c")

	done := make(chan error, 1)
	go func() {
		_, err := p.Ask(context.Background(), "slow")
		done <- err
	}()
	<-b.started
	p.Reset()
	b.release <- "late"

	assert.True(t, errors.Is(<-done, common.ErrReplyDiscarded))
	assert.Len(t, p.Messages(), 1)
	assert.False(t, p.Loading())
}

func TestPanel_CloseCancelsInFlight(t *testing.T) {
	b := newBlocking()
	p := NewPanel(context.Background(), b, "t", "c")

	done := make(chan error, 1)
	go func() {
		_, err := p.Ask(context.Background(), "slow")
		done <- err
	}()
	<-b.started
	before := len(p.Messages())
	p.Close()

	assert.True(t, errors.Is(<-done, common.ErrPanelClosed))
	assert.Len(t, p.Messages(), before)

	_, err := p.Ask(context.Background(), "again")
	assert.True(t, errors.Is(err, common.ErrPanelClosed))
}

func TestPanel_RequestCancelAppendsFailureNotice(t *testing.T) {
	b := newBlocking()
	p := NewPanel(context.Background(), b, "t", "c")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := p.Ask(ctx, "slow")
		done <- err
	}()
	<-b.started
	cancel()

	assert.True(t, errors.Is(<-done, context.Canceled))
	msgs := p.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, MsgReplyFailed, msgs[2].Text)
	assert.False(t, p.Closed())
}

func TestRegistry_PersistsAndRestores(t *testing.T) {
	store := repository.NewTranscriptRepository(cache.NewMemory(), time.Hour)
	story := domain.Story{Slug: "chand", Title: "चाँद", Content: "<p>रात</p>"}

	r1 := NewRegistry(context.Background(), echoAnswerer{}, store, time.Minute)
	p := r1.Open(context.Background(), "owner", story)
	_, err := p.Ask(context.Background(), "q")
	require.NoError(t, err)
	assert.Same(t, p, r1.Open(context.Background(), "owner", story))

	r2 := NewRegistry(context.Background(), echoAnswerer{}, store, time.Minute)
	restored := r2.Open(context.Background(), "owner", story)
	assert.Len(t, restored.Messages(), 3)

	other := r2.Open(context.Background(), "someone-else", story)
	assert.Len(t, other.Messages(), 1)

	r2.Close(context.Background(), "owner", "chand")
	assert.True(t, restored.Closed())
	_, err = store.Get(context.Background(), "owner", "chand")
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestRegistry_SweepClosesIdlePanels(t *testing.T) {
	r := NewRegistry(context.Background(), echoAnswerer{}, nil, time.Minute)
	p := r.Open(context.Background(), "o", domain.Story{Slug: "s"})
	require.Equal(t, 1, r.Len())

	assert.Equal(t, 0, r.Sweep(time.Now()))
	assert.Equal(t, 1, r.Sweep(time.Now().Add(2*time.Minute)))
	assert.True(t, p.Closed())
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ShutdownClosesPanels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRegistry(ctx, echoAnswerer{}, nil, 0)
	p := r.Open(context.Background(), "o", domain.Story{Slug: "s"})
	cancel()
	assert.True(t, p.Closed())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Run(ctx, time.Millisecond)
	}()
	wg.Wait()
}
