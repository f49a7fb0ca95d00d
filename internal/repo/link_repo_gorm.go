package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"linkbio/internal/domain"
)

type LinkRepo struct{ db *gorm.DB }

func NewLinkRepo(db *gorm.DB) *LinkRepo { return &LinkRepo{db: db} }

func (r *LinkRepo) ListByUser(ctx context.Context, userID uint64) ([]domain.Link, error) {
	links := []domain.Link{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").
		Find(&links).Error
	return links, err
}

func (r *LinkRepo) Create(ctx context.Context, l *domain.Link) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LinkRepo) FindByID(ctx context.Context, id uint64) (*domain.Link, error) {
	var l domain.Link
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

// Update writes title and url only; the owner never changes.
func (r *LinkRepo) Update(ctx context.Context, l *domain.Link) error {
	l.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&domain.Link{}).
		Where("id = ?", l.ID).
		Updates(map[string]any{"title": l.Title, "url": l.URL, "updated_at": l.UpdatedAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LinkRepo) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Link{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
