package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"linkbio/pkg/dto"
)

type User struct {
	ID              uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Username        string            `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash    string            `gorm:"size:100;not null" json:"-"`
	ThemePreference datatypes.JSONMap `gorm:"column:theme_preference" json:"theme_preference"`
	ProfileImageURL *string           `gorm:"column:profile_image_url;size:2048" json:"profile_image_url,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Identity is the minimal shape returned by register and login.
func (u *User) Identity() dto.PublicUser {
	return dto.PublicUser{ID: u.ID, Username: u.Username}
}

func (u *User) Public() dto.PublicUser {
	p := u.Identity()
	if u.ProfileImageURL != nil {
		p.ProfileImageURL = *u.ProfileImageURL
	}
	return p
}

// Preference is the stored preference document with the theme resolved.
func (u *User) Preference() map[string]any {
	return dto.ResolvePreference(u.ThemePreference)
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	// MergeThemePreference overlays patch onto the stored document and returns the result.
	MergeThemePreference(ctx context.Context, id uint64, patch map[string]any) (datatypes.JSONMap, error)
	SetProfileImageURL(ctx context.Context, id uint64, url string) (*User, error)
}
