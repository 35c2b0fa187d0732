package assistant

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kavyapath/kavyapath-web/internal/common"
	"github.com/kavyapath/kavyapath-web/internal/domain"
)

// Panel is the chat about one poem. Replies that arrive after Reset or
// Close are dropped rather than appended.
type Panel struct {
	answerer Answerer
	title    string
	content  string

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	msgs     []domain.ChatMessage
	loading  bool
	gen      uint64
	closed   bool
	lastUsed time.Time
	onChange func([]domain.ChatMessage)
}

// NewPanel opens a panel seeded with the greeting. The panel lives until
// Close or until parent is done.
func NewPanel(parent context.Context, a Answerer, title, content string) *Panel {
	ctx, cancel := context.WithCancel(parent)
	return &Panel{
		answerer: a,
		title:    title,
		content:  content,
		ctx:      ctx,
		cancel:   cancel,
		msgs:     []domain.ChatMessage{seed()},
		lastUsed: time.Now(),
	}
}

func seed() domain.ChatMessage {
	return newMessage(domain.RoleAssistant, Greeting)
}

func newMessage(role domain.ChatRole, text string) domain.ChatMessage {
	return domain.ChatMessage{ID: uuid.NewString(), Role: role, Text: text, CreatedAt: time.Now()}
}

// Restore replaces the transcript with a stored one
func (p *Panel) Restore(msgs []domain.ChatMessage) {
	if len(msgs) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append([]domain.ChatMessage(nil), msgs...)
}

// Messages returns a copy of the transcript
func (p *Panel) Messages() []domain.ChatMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ChatMessage(nil), p.msgs...)
}

// Loading reports whether a question is in flight
func (p *Panel) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Closed reports whether Close was called
func (p *Panel) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed || p.ctx.Err() != nil
}

// Ask appends the question, waits for the answer and appends it. The call
// is canceled when either ctx or the panel ends.
func (p *Panel) Ask(ctx context.Context, question string) (domain.ChatMessage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.ChatMessage{}, common.ErrInvalidInput
	}

	p.mu.Lock()
	switch {
	case p.closed || p.ctx.Err() != nil:
		p.mu.Unlock()
		return domain.ChatMessage{}, common.ErrPanelClosed
	case p.loading:
		p.mu.Unlock()
		return domain.ChatMessage{}, common.ErrAssistantBusy
	}
	p.msgs = append(p.msgs, newMessage(domain.RoleUser, question))
	p.loading = true
	p.lastUsed = time.Now()
	gen := p.gen
	p.mu.Unlock()
	p.changed()

	callCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	text, err := p.answerer.Analyze(callCtx, p.title, p.content, question)

	p.mu.Lock()
	p.loading = false
	switch {
	case p.closed || p.ctx.Err() != nil:
		p.mu.Unlock()
		return domain.ChatMessage{}, common.ErrPanelClosed
	case p.gen != gen:
		p.mu.Unlock()
		return domain.ChatMessage{}, common.ErrReplyDiscarded
	}
	if err != nil || text == "" {
		text = MsgReplyFailed
	}
	reply := newMessage(domain.RoleAssistant, text)
	p.msgs = append(p.msgs, reply)
	p.lastUsed = time.Now()
	p.mu.Unlock()
	p.changed()

	return reply, err
}

// Reset returns the transcript to the greeting. An in-flight question keeps
// running but its reply is dropped.
func (p *Panel) Reset() {
	p.mu.Lock()
	p.msgs = []domain.ChatMessage{seed()}
	p.gen++
	p.lastUsed = time.Now()
	p.mu.Unlock()
	p.changed()
}

// Close cancels any in-flight question and rejects further ones
func (p *Panel) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cancel()
}

func (p *Panel) idleSince() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastUsed
}

func (p *Panel) setOnChange(fn func([]domain.ChatMessage)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

func (p *Panel) changed() {
	p.mu.Lock()
	fn := p.onChange
	msgs := append([]domain.ChatMessage(nil), p.msgs...)
	p.mu.Unlock()
	if fn != nil {
		fn(msgs)
	}
}
