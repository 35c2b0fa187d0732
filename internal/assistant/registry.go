package assistant

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kavyapath/kavyapath-web/internal/domain"
	"github.com/kavyapath/kavyapath-web/internal/repository"
	pkglogger "github.com/kavyapath/kavyapath-web/pkg/logger"
)

type panelKey struct {
	owner string
	slug  string
}

// Registry keeps one open panel per (session, story) and mirrors each
// transcript into a TranscriptRepository so it survives restarts.
type Registry struct {
	ctx      context.Context
	answerer Answerer
	store    repository.TranscriptRepository
	idle     time.Duration
	log      zerolog.Logger

	mu     sync.Mutex
	panels map[panelKey]*Panel
}

// NewRegistry creates a registry; every panel is closed when ctx is done
func NewRegistry(ctx context.Context, a Answerer, store repository.TranscriptRepository, idle time.Duration) *Registry {
	return &Registry{
		ctx:      ctx,
		answerer: a,
		store:    store,
		idle:     idle,
		log:      pkglogger.WithComponent("assistant"),
		panels:   make(map[panelKey]*Panel),
	}
}

// Open returns the panel for owner and story, creating or restoring it
func (r *Registry) Open(ctx context.Context, owner string, story domain.Story) *Panel {
	key := panelKey{owner: owner, slug: story.Slug}

	if p, ok := r.Lookup(owner, story.Slug); ok {
		return p
	}

	p := NewPanel(r.ctx, r.answerer, story.Title, story.Content)
	if r.store != nil {
		msgs, err := r.store.Get(ctx, owner, story.Slug)
		switch {
		case err == nil:
			p.Restore(msgs)
		case !errors.Is(err, repository.ErrNotFound):
			r.log.Warn().Err(err).Msg("transcript load failed")
		}
		p.setOnChange(func(msgs []domain.ChatMessage) {
			// detached from the request so a disconnect does not lose the save
			saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := r.store.Save(saveCtx, owner, story.Slug, msgs); err != nil {
				r.log.Warn().Err(err).Msg("transcript save failed")
			}
		})
	}

	r.mu.Lock()
	if existing, ok := r.panels[key]; ok && !existing.Closed() {
		r.mu.Unlock()
		p.Close()
		return existing
	}
	r.panels[key] = p
	r.mu.Unlock()
	return p
}

// Lookup returns an open panel without creating one
func (r *Registry) Lookup(owner, slug string) (*Panel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.panels[panelKey{owner: owner, slug: slug}]
	if !ok || p.Closed() {
		return nil, false
	}
	return p, true
}

// Close closes the panel and forgets its transcript
func (r *Registry) Close(ctx context.Context, owner, slug string) {
	key := panelKey{owner: owner, slug: slug}
	r.mu.Lock()
	p, ok := r.panels[key]
	delete(r.panels, key)
	r.mu.Unlock()

	if ok {
		p.Close()
	}
	if r.store != nil {
		if err := r.store.Delete(ctx, owner, slug); err != nil {
			r.log.Warn().Err(err).Msg("transcript delete failed")
		}
	}
}

// Sweep closes panels idle for longer than the configured duration.
// Their transcripts stay in the store until it expires them.
func (r *Registry) Sweep(now time.Time) int {
	if r.idle <= 0 {
		return 0
	}
	r.mu.Lock()
	var stale []*Panel
	for key, p := range r.panels {
		if !p.Loading() && now.Sub(p.idleSince()) > r.idle {
			stale = append(stale, p)
			delete(r.panels, key)
		}
	}
	r.mu.Unlock()

	for _, p := range stale {
		p.Close()
	}
	return len(stale)
}

// Run sweeps idle panels until ctx is done
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := r.Sweep(now); n > 0 {
				r.log.Debug().Int("closed", n).Msg("idle assistant panels closed")
			}
			panelsOpen.Set(float64(r.Len()))
		}
	}
}

// Len is the number of open panels
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.panels)
}
