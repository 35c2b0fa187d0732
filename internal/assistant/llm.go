// Package assistant answers reader questions about a poem through a
// generative-AI provider and keeps the per-story chat panel state.
package assistant

import "context"

// LLMClient is a text completion provider
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Settings configures a concrete provider
type Settings struct {
	BaseURL string
	APIKey  string
	Model   string
}
