package service

import (
	"context"
	"errors"
	"strings"

	"linkbio/internal/core/errs"
	"linkbio/internal/domain"
	"linkbio/pkg/dto"
)

type ThemeService struct {
	users    domain.UserRepository
	profiles Invalidator
}

func NewThemeService(users domain.UserRepository, profiles Invalidator) *ThemeService {
	return &ThemeService{users: users, profiles: profiles}
}

// Update merges {theme} into the stored preference document; other keys survive.
func (s *ThemeService) Update(ctx context.Context, userID uint64, theme string) (*dto.ThemeResult, error) {
	const op = "theme.Update"
	if strings.TrimSpace(theme) == "" {
		return nil, errs.BadRequest(op, "Theme is required")
	}
	t, ok := dto.ParseTheme(theme)
	if !ok {
		return nil, errs.BadRequest(op, "Unsupported theme")
	}

	merged, err := s.users.MergeThemePreference(ctx, userID, map[string]any{dto.ThemeKey: string(t)})
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, errs.NotFound(op, "User not found")
	case err != nil:
		return nil, errs.Internalf(op, "Failed to update theme", err)
	}
	if s.profiles != nil {
		s.profiles.Invalidate(ctx, userID)
	}
	return &dto.ThemeResult{ID: userID, ThemePreference: dto.ResolvePreference(merged)}, nil
}
