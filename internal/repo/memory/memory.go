// Package memory implements the domain repositories over guarded maps.
// It backs db.driver=memory and the service and HTTP tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/datatypes"

	"linkbio/internal/domain"
)

type Users struct {
	mu     sync.RWMutex
	nextID uint64
	byID   map[uint64]*domain.User
	byName map[string]uint64
	now    func() time.Time
}

func NewUsers() *Users {
	return &Users{byID: map[uint64]*domain.User{}, byName: map[string]uint64{}, now: time.Now}
}

func (r *Users) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[u.Username]; ok {
		return domain.ErrUsernameTaken
	}
	r.nextID++
	now := r.now()
	u.ID, u.CreatedAt, u.UpdatedAt = r.nextID, now, now
	if u.ThemePreference == nil {
		u.ThemePreference = datatypes.JSONMap{}
	}
	r.byID[u.ID] = cloneUser(u)
	r.byName[u.Username] = u.ID
	return nil
}

func (r *Users) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *Users) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byName[username]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *Users) MergeThemePreference(ctx context.Context, id uint64, patch map[string]any) (datatypes.JSONMap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	merged := cloneMap(u.ThemePreference)
	for k, v := range patch {
		merged[k] = v
	}
	u.ThemePreference = merged
	u.UpdatedAt = r.now()
	return cloneMap(merged), nil
}

func (r *Users) SetProfileImageURL(ctx context.Context, id uint64, url string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.ProfileImageURL = &url
	u.UpdatedAt = r.now()
	return cloneUser(u), nil
}

// Delete drops a user; tests use it to simulate a row vanishing mid-session.
func (r *Users) Delete(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		delete(r.byName, u.Username)
		delete(r.byID, id)
	}
}

type Links struct {
	mu     sync.RWMutex
	nextID uint64
	byID   map[uint64]*domain.Link
	now    func() time.Time
}

func NewLinks() *Links {
	return &Links{byID: map[uint64]*domain.Link{}, now: time.Now}
}

func (r *Links) ListByUser(ctx context.Context, userID uint64) ([]domain.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Link{}
	for _, l := range r.byID {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Links) Create(ctx context.Context, l *domain.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := r.now()
	l.ID, l.CreatedAt, l.UpdatedAt = r.nextID, now, now
	cp := *l
	r.byID[l.ID] = &cp
	return nil
}

func (r *Links) FindByID(ctx context.Context, id uint64) (*domain.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *Links) Update(ctx context.Context, l *domain.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[l.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Title, cur.URL, cur.UpdatedAt = l.Title, l.URL, r.now()
	l.UserID, l.CreatedAt, l.UpdatedAt = cur.UserID, cur.CreatedAt, cur.UpdatedAt
	return nil
}

func (r *Links) Delete(ctx context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func cloneUser(u *domain.User) *domain.User {
	cp := *u
	cp.ThemePreference = cloneMap(u.ThemePreference)
	if u.ProfileImageURL != nil {
		s := *u.ProfileImageURL
		cp.ProfileImageURL = &s
	}
	return &cp
}

func cloneMap(m datatypes.JSONMap) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
