package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kavyapath/kavyapath-web/internal/domain"
)

// AnalysisRepository stores assistant answers so identical questions about
// the same poem are not sent to the provider twice.
type AnalysisRepository interface {
	// FindFresh returns the cached answer for hash if newer than maxAge
	FindFresh(ctx context.Context, hash string, maxAge time.Duration) (*domain.Analysis, error)
	// Save upserts the answer for a.Hash
	Save(ctx context.Context, a *domain.Analysis) error
	// Purge deletes answers older than maxAge
	Purge(ctx context.Context, maxAge time.Duration) (int64, error)
}

type analysisRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAnalysisRepository creates a new AnalysisRepository
func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db, now: time.Now}
}

func (r *analysisRepository) FindFresh(ctx context.Context, hash string, maxAge time.Duration) (*domain.Analysis, error) {
	var a domain.Analysis
	q := r.db.WithContext(ctx).Where("hash = ?", hash)
	if maxAge > 0 {
		q = q.Where("created_at >= ?", r.now().Add(-maxAge))
	}
	if err := q.First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *analysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	a.CreatedAt = r.now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hash"}},
		DoUpdates: clause.AssignmentColumns([]string{"response", "model", "created_at"}),
	}).Create(a).Error
}

func (r *analysisRepository) Purge(ctx context.Context, maxAge time.Duration) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", r.now().Add(-maxAge)).
		Delete(&domain.Analysis{})
	return res.RowsAffected, res.Error
}
