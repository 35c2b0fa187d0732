package assistant

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/kavyapath/kavyapath-web/internal/domain"
	"github.com/kavyapath/kavyapath-web/internal/repository"
	pkglogger "github.com/kavyapath/kavyapath-web/pkg/logger"
)

// User-facing assistant texts
const (
	MsgNoAPIKey       = "API key not configured. Please add your Google Gemini API key to the .env file as GEMINI_API_KEY."
	MsgAnalysisFailed = "I'm sorry, I couldn't analyze this poem right now. Please check your API key configuration or try again later."
	MsgReplyFailed    = "Failed to get a response. Please try again."
	Greeting          = "Hello! I can help analyze this poem for you. What would you like to know about it?"
)

// SuggestedQuestions are offered under the panel input
var SuggestedQuestions = []string{
	"Can you explain the main theme of this poem?",
	"What literary devices are used in this poem?",
	"What is the cultural context of this poem?",
}

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kavyapath_assistant_requests_total",
		Help: "Assistant questions by outcome",
	},
	[]string{"result"},
)

var panelsOpen = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "kavyapath_assistant_panels_open",
		Help: "Number of open assistant panels",
	},
)

// Answerer answers one question about a poem
type Answerer interface {
	Analyze(ctx context.Context, title, content, query string) (string, error)
}

// Analyzer sends questions to the provider, optionally through a cache
type Analyzer struct {
	llm      LLMClient
	model    string
	cache    repository.AnalysisRepository
	cacheTTL time.Duration
	timeout  time.Duration
	log      zerolog.Logger
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithCache stores answers for ttl
func WithCache(repo repository.AnalysisRepository, ttl time.Duration) Option {
	return func(a *Analyzer) {
		a.cache = repo
		a.cacheTTL = ttl
	}
}

// WithTimeout bounds each provider call
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) { a.timeout = d }
}

// WithModel records the model name on cached rows
func WithModel(model string) Option {
	return func(a *Analyzer) { a.model = model }
}

// NewAnalyzer creates an Analyzer. A nil llm means no API key is configured.
func NewAnalyzer(llm LLMClient, opts ...Option) *Analyzer {
	a := &Analyzer{llm: llm, timeout: 60 * time.Second, log: pkglogger.WithComponent("assistant")}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Configured reports whether a provider is available
func (a *Analyzer) Configured() bool {
	return a.llm != nil
}

// Analyze answers query about the poem. Provider failures become a fixed
// apology text; an error is returned only when ctx itself is done.
func (a *Analyzer) Analyze(ctx context.Context, title, content, query string) (string, error) {
	if a.llm == nil {
		requestsTotal.WithLabelValues("no_key").Inc()
		return MsgNoAPIKey, nil
	}

	hash := Hash(title, content, query)
	if a.cache != nil {
		if cached, err := a.cache.FindFresh(ctx, hash, a.cacheTTL); err == nil {
			requestsTotal.WithLabelValues("cached").Inc()
			return cached.Response, nil
		} else if !errors.Is(err, repository.ErrNotFound) {
			a.log.Warn().Err(err).Msg("analysis cache lookup failed")
		}
	}

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	reply, err := a.llm.Complete(callCtx, BuildPrompt(title, content, query))
	if err != nil {
		if ctx.Err() != nil {
			requestsTotal.WithLabelValues("canceled").Inc()
			return "", ctx.Err()
		}
		requestsTotal.WithLabelValues("error").Inc()
		a.log.Error().Err(err).Str("poem", title).Msg("poem analysis failed")
		return MsgAnalysisFailed, nil
	}
	requestsTotal.WithLabelValues("ok").Inc()

	if a.cache != nil {
		row := &domain.Analysis{Hash: hash, PoemTitle: title, Query: query, Response: reply, Model: a.model}
		if err := a.cache.Save(ctx, row); err != nil {
			a.log.Warn().Err(err).Msg("analysis cache save failed")
		}
	}
	return reply, nil
}

// Hash keys the analysis cache
func Hash(title, content, query string) string {
	h := sha256.New()
	for _, s := range []string{title, content, query} {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
