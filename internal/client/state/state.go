// Package state is the client's application state: an auth slice and a links
// slice, each changed only by reducing typed actions.
package state

import (
	"maps"
	"slices"

	"linkbio/pkg/dto"
)

type AuthState struct {
	User            *dto.PublicUser
	Token           string
	IsAuthenticated bool
}

type LinksState struct {
	Items     []dto.Link
	IsLoading bool
	Error     string
}

type State struct {
	Auth  AuthState
	Links LinksState
}

// DefaultRequestError is shown when a failed request carries no message.
const DefaultRequestError = "Something went wrong"

type Action interface{ isAction() }

type (
	CredentialsSet struct{ Auth dto.AuthResponse }
	LoggedOut      struct{}
	ThemeChanged   struct{ Preference map[string]any }
	RequestStarted struct{}
	RequestFailed  struct{ Message string }
	LinksLoaded    struct{ Items []dto.Link }
	LinkAdded      struct{ Link dto.Link }
	LinkUpdated    struct{ Link dto.Link }
	LinkDeleted    struct{ ID uint64 }
)

func (CredentialsSet) isAction() {}
func (LoggedOut) isAction()      {}
func (ThemeChanged) isAction()   {}
func (RequestStarted) isAction() {}
func (RequestFailed) isAction()  {}
func (LinksLoaded) isAction()    {}
func (LinkAdded) isAction()      {}
func (LinkUpdated) isAction()    {}
func (LinkDeleted) isAction()    {}

func Reduce(s State, a Action) State {
	return State{Auth: ReduceAuth(s.Auth, a), Links: ReduceLinks(s.Links, a)}
}

// ReduceAuth never mutates s; the returned state shares nothing writable with it.
func ReduceAuth(s AuthState, a Action) AuthState {
	switch a := a.(type) {
	case CredentialsSet:
		u := clonedUser(&a.Auth.User)
		return AuthState{User: u, Token: a.Auth.Token, IsAuthenticated: true}
	case LoggedOut:
		return AuthState{}
	case ThemeChanged:
		if s.User == nil {
			return s
		}
		u := clonedUser(s.User)
		u.ThemePreference = maps.Clone(a.Preference)
		s.User = u
		return s
	}
	return s
}

func ReduceLinks(s LinksState, a Action) LinksState {
	switch a := a.(type) {
	case RequestStarted:
		s.IsLoading, s.Error = true, ""
	case RequestFailed:
		s.IsLoading = false
		s.Error = a.Message
		if s.Error == "" {
			s.Error = DefaultRequestError
		}
	case LinksLoaded:
		s.Items = slices.Clone(a.Items)
		s.IsLoading = false
	case LinkAdded:
		// appended: the server lists links oldest first
		s.Items = append(slices.Clone(s.Items), a.Link)
		s.IsLoading = false
	case LinkUpdated:
		items := slices.Clone(s.Items)
		if i := slices.IndexFunc(items, func(l dto.Link) bool { return l.ID == a.Link.ID }); i >= 0 {
			items[i] = a.Link
		}
		s.Items = items
		s.IsLoading = false
	case LinkDeleted:
		s.Items = slices.DeleteFunc(slices.Clone(s.Items), func(l dto.Link) bool { return l.ID == a.ID })
		s.IsLoading = false
	}
	return s
}

func clonedUser(u *dto.PublicUser) *dto.PublicUser {
	c := *u
	c.ThemePreference = maps.Clone(u.ThemePreference)
	return &c
}
