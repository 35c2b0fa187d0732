package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kavyapath/kavyapath-web/internal/domain"
	"github.com/kavyapath/kavyapath-web/pkg/cache"
)

// TranscriptRepository keeps assistant conversations per (session, story)
type TranscriptRepository interface {
	Get(ctx context.Context, owner, slug string) ([]domain.ChatMessage, error)
	Save(ctx context.Context, owner, slug string, msgs []domain.ChatMessage) error
	Delete(ctx context.Context, owner, slug string) error
}

type transcriptRepository struct {
	cache cache.Service
	ttl   time.Duration
}

// NewTranscriptRepository creates a TranscriptRepository on top of a cache
func NewTranscriptRepository(c cache.Service, ttl time.Duration) TranscriptRepository {
	if ttl <= 0 {
		ttl = cache.TTLTranscript
	}
	return &transcriptRepository{cache: c, ttl: ttl}
}

func (r *transcriptRepository) Get(ctx context.Context, owner, slug string) ([]domain.ChatMessage, error) {
	var msgs []domain.ChatMessage
	if err := r.cache.Get(ctx, cache.TranscriptKey(owner, slug), &msgs); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return msgs, nil
}

func (r *transcriptRepository) Save(ctx context.Context, owner, slug string, msgs []domain.ChatMessage) error {
	return r.cache.Set(ctx, cache.TranscriptKey(owner, slug), msgs, r.ttl)
}

func (r *transcriptRepository) Delete(ctx context.Context, owner, slug string) error {
	return r.cache.Delete(ctx, cache.TranscriptKey(owner, slug))
}
