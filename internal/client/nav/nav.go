// Package nav holds the client's route guard and the public-profile loader.
package nav

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"linkbio/pkg/dto"
)

const (
	Home      = "/"
	Login     = "/login"
	Register  = "/register"
	Dashboard = "/dashboard"
	// ProfilePrefix starts the public route /u/:username.
	ProfilePrefix = "/u/"
)

// Resolve returns where a navigation to path should land.
func Resolve(path string, authenticated bool) string {
	switch {
	case path == Dashboard && !authenticated:
		return Login
	case path == Home && authenticated:
		return Dashboard
	default:
		return path
	}
}

// ProfileUsername extracts :username from /u/:username.
func ProfileUsername(path string) (string, bool) {
	name, ok := strings.CutPrefix(path, ProfilePrefix)
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

var notFoundRe = regexp.MustCompile(`(?i)not\s*found`)

// IsNotFoundMessage reports whether an error text means the profile is missing.
func IsNotFoundMessage(msg string) bool { return notFoundRe.MatchString(msg) }

type ProfileView struct {
	Loading  bool
	NotFound bool
	Error    string
	Profile  *dto.PublicProfile
}

type ProfileFetcher interface {
	Profile(ctx context.Context, username string) (*dto.PublicProfile, error)
}

// ProfileLoader loads one public profile at a time. A response is applied only
// if no newer Load or Leave happened while it was in flight; the request
// itself is not cancelled.
type ProfileLoader struct {
	api ProfileFetcher

	mu   sync.Mutex
	gen  uint64
	view ProfileView
}

func NewProfileLoader(api ProfileFetcher) *ProfileLoader {
	return &ProfileLoader{api: api}
}

func (l *ProfileLoader) View() ProfileView {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view
}

// Leave drops whatever load is still in flight.
func (l *ProfileLoader) Leave() {
	l.mu.Lock()
	l.gen++
	l.mu.Unlock()
}

// Load fetches username and reports whether its result was applied.
func (l *ProfileLoader) Load(ctx context.Context, username string) (ProfileView, bool) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.view = ProfileView{Loading: true, Profile: l.view.Profile}
	l.mu.Unlock()

	p, err := l.api.Profile(ctx, username)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return l.view, false
	}
	switch {
	case err == nil:
		l.view = ProfileView{Profile: p}
	case IsNotFoundMessage(err.Error()):
		l.view = ProfileView{NotFound: true}
	default:
		l.view = ProfileView{Error: err.Error()}
	}
	return l.view, true
}
