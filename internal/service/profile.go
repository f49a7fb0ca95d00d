package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"linkbio/internal/core/cache"
	"linkbio/internal/core/errs"
	"linkbio/internal/domain"
	"linkbio/pkg/dto"
)

// Invalidator drops cached views of a user's public profile.
type Invalidator interface {
	Invalidate(ctx context.Context, userID uint64)
}

func profileKey(username string) string { return "profile:" + username }

type ProfileService struct {
	users domain.UserRepository
	links domain.LinkRepository
	cache cache.Store
	ttl   time.Duration
	log   *zap.Logger
}

func NewProfileService(users domain.UserRepository, links domain.LinkRepository, c cache.Store, ttl time.Duration, l *zap.Logger) *ProfileService {
	if c == nil {
		c = cache.Nop{}
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &ProfileService{users: users, links: links, cache: c, ttl: ttl, log: l}
}

// Resolve finds the owner of a public profile slug.
func (s *ProfileService) Resolve(ctx context.Context, username string) (*domain.User, error) {
	const op = "profile.Resolve"
	u, err := s.users.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, errs.NotFound(op, "Username not found")
	case err != nil:
		return nil, errs.Internalf(op, "Error checking database", err)
	}
	return u, nil
}

func (s *ProfileService) Public(ctx context.Context, u *domain.User) (*dto.PublicProfile, error) {
	const op = "profile.Public"
	p, err := cache.GetOrLoadJSON(s.cache, ctx, profileKey(u.Username), s.ttl,
		func(ctx context.Context) (*dto.PublicProfile, error) {
			return s.compose(ctx, u)
		})
	if err != nil {
		return nil, errs.Internalf(op, "Failed to get user profile", err)
	}
	return p, nil
}

func (s *ProfileService) compose(ctx context.Context, u *domain.User) (*dto.PublicProfile, error) {
	links, err := s.links.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	p := &dto.PublicProfile{
		Username:        u.Username,
		Links:           make([]dto.PublicLink, 0, len(links)),
		ThemePreference: u.Preference(),
	}
	if u.ProfileImageURL != nil {
		p.ProfileImageURL = *u.ProfileImageURL
	}
	for i := range links {
		p.Links = append(p.Links, links[i].Public())
	}
	return p, nil
}

// Invalidate never fails the caller; a stale entry expires with its TTL.
func (s *ProfileService) Invalidate(ctx context.Context, userID uint64) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.log.Warn("profile invalidate: lookup failed", zap.Uint64("user_id", userID), zap.Error(err))
		return
	}
	if err := s.cache.Del(ctx, profileKey(u.Username)); err != nil {
		s.log.Warn("profile invalidate: delete failed", zap.String("username", u.Username), zap.Error(err))
	}
}
