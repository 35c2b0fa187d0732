package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kavyapath/kavyapath-web/internal/domain"
	"github.com/kavyapath/kavyapath-web/pkg/cache"
)

// ErrNotFound is returned when a stored item does not exist
var ErrNotFound = errors.New("not found")

// DraftRepository keeps authoring drafts between form round-trips
type DraftRepository interface {
	// Get returns the draft, or ErrNotFound once it expired
	Get(ctx context.Context, owner, id string) (*domain.StoryDraft, error)
	// Save stores the draft and refreshes its TTL
	Save(ctx context.Context, owner string, d *domain.StoryDraft) error
	// Delete discards the draft
	Delete(ctx context.Context, owner, id string) error
}

type draftRepository struct {
	cache cache.Service
	ttl   time.Duration
}

// NewDraftRepository creates a DraftRepository on top of a cache
func NewDraftRepository(c cache.Service, ttl time.Duration) DraftRepository {
	if ttl <= 0 {
		ttl = cache.TTLDraft
	}
	return &draftRepository{cache: c, ttl: ttl}
}

// drafts are namespaced by owner so one session cannot load another's draft
func draftKey(owner, id string) string {
	return cache.DraftKey(owner + ":" + id)
}

func (r *draftRepository) Get(ctx context.Context, owner, id string) (*domain.StoryDraft, error) {
	var d domain.StoryDraft
	if err := r.cache.Get(ctx, draftKey(owner, id), &d); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if d.Doc == nil {
		d.Doc = domain.NewStoryDraft(id).Doc
	}
	return &d, nil
}

func (r *draftRepository) Save(ctx context.Context, owner string, d *domain.StoryDraft) error {
	d.UpdatedAt = time.Now()
	return r.cache.Set(ctx, draftKey(owner, d.ID), d, r.ttl)
}

func (r *draftRepository) Delete(ctx context.Context, owner, id string) error {
	return r.cache.Delete(ctx, draftKey(owner, id))
}
