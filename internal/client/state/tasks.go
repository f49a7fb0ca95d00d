package state

import (
	"context"

	"linkbio/pkg/dto"
)

// API is the part of the HTTP client the tasks drive.
type API interface {
	Register(ctx context.Context, username, password string) (*dto.AuthResponse, error)
	Login(ctx context.Context, username, password string) (*dto.AuthResponse, error)
	Links(ctx context.Context) ([]dto.Link, error)
	CreateLink(ctx context.Context, title, url string) (*dto.Link, error)
	UpdateLink(ctx context.Context, id uint64, title, url string) (*dto.Link, error)
	DeleteLink(ctx context.Context, id uint64) error
	UpdateTheme(ctx context.Context, theme string) (*dto.ThemeResult, error)
}

// Tasks run one network call each and dispatch its outcome. Link tasks always
// end with IsLoading cleared; the error is also returned to the caller.
type Tasks struct {
	Store *Store
	API   API
}

func (t *Tasks) Register(ctx context.Context, username, password string) error {
	res, err := t.API.Register(ctx, username, password)
	if err != nil {
		return err
	}
	t.Store.Dispatch(ctx, CredentialsSet{Auth: *res})
	return nil
}

func (t *Tasks) Login(ctx context.Context, username, password string) error {
	res, err := t.API.Login(ctx, username, password)
	if err != nil {
		return err
	}
	t.Store.Dispatch(ctx, CredentialsSet{Auth: *res})
	return nil
}

func (t *Tasks) Logout(ctx context.Context) {
	t.Store.Dispatch(ctx, LoggedOut{})
}

func (t *Tasks) ChangeTheme(ctx context.Context, theme string) error {
	res, err := t.API.UpdateTheme(ctx, theme)
	if err != nil {
		return err
	}
	t.Store.Dispatch(ctx, ThemeChanged{Preference: res.ThemePreference})
	return nil
}

func (t *Tasks) FetchLinks(ctx context.Context) error {
	return t.run(ctx, func() (Action, error) {
		items, err := t.API.Links(ctx)
		return LinksLoaded{Items: items}, err
	})
}

func (t *Tasks) AddLink(ctx context.Context, title, url string) error {
	return t.run(ctx, func() (Action, error) {
		l, err := t.API.CreateLink(ctx, title, url)
		if err != nil {
			return nil, err
		}
		return LinkAdded{Link: *l}, nil
	})
}

func (t *Tasks) EditLink(ctx context.Context, id uint64, title, url string) error {
	return t.run(ctx, func() (Action, error) {
		l, err := t.API.UpdateLink(ctx, id, title, url)
		if err != nil {
			return nil, err
		}
		return LinkUpdated{Link: *l}, nil
	})
}

func (t *Tasks) RemoveLink(ctx context.Context, id uint64) error {
	return t.run(ctx, func() (Action, error) {
		return LinkDeleted{ID: id}, t.API.DeleteLink(ctx, id)
	})
}

func (t *Tasks) run(ctx context.Context, call func() (Action, error)) error {
	t.Store.Dispatch(ctx, RequestStarted{})
	done, err := call()
	if err != nil {
		t.Store.Dispatch(ctx, RequestFailed{Message: err.Error()})
		return err
	}
	t.Store.Dispatch(ctx, done)
	return nil
}
