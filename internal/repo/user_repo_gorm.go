package repo

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"linkbio/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ThemePreference == nil {
		u.ThemePreference = datatypes.JSONMap{}
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// MergeThemePreference locks the row so concurrent merges never drop each other's keys.
func (r *UserRepo) MergeThemePreference(ctx context.Context, id uint64, patch map[string]any) (datatypes.JSONMap, error) {
	var merged datatypes.JSONMap
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u domain.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "theme_preference").
			First(&u, "id = ?", id).Error
		if err != nil {
			return translate(err)
		}
		merged = make(datatypes.JSONMap, len(u.ThemePreference)+len(patch))
		for k, v := range u.ThemePreference {
			merged[k] = v
		}
		for k, v := range patch {
			merged[k] = v
		}
		return tx.Model(&domain.User{}).
			Where("id = ?", id).
			Updates(map[string]any{"theme_preference": merged, "updated_at": time.Now()}).Error
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (r *UserRepo) SetProfileImageURL(ctx context.Context, id uint64, url string) (*domain.User, error) {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"profile_image_url": url, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.FindByID(ctx, id)
}
