package domain

import (
	"context"
	"time"

	"linkbio/pkg/dto"
)

type Link struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"index;not null" json:"user_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	URL       string    `gorm:"column:url;size:2048;not null" json:"url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Link) TableName() string { return "links" }

func (l *Link) OwnedBy(userID uint64) bool { return l.UserID == userID }

func (l *Link) DTO() dto.Link {
	return dto.Link{ID: l.ID, UserID: l.UserID, Title: l.Title, URL: l.URL, CreatedAt: l.CreatedAt}
}

func (l *Link) Public() dto.PublicLink {
	return dto.PublicLink{ID: l.ID, Title: l.Title, URL: l.URL}
}

// LinkRepository returns lists in ascending (created_at, id) order.
type LinkRepository interface {
	ListByUser(ctx context.Context, userID uint64) ([]Link, error)
	Create(ctx context.Context, l *Link) error
	FindByID(ctx context.Context, id uint64) (*Link, error)
	Update(ctx context.Context, l *Link) error
	Delete(ctx context.Context, id uint64) error
}

// Models is everything auto-migrate creates.
func Models() []any { return []any{&User{}, &Link{}} }
