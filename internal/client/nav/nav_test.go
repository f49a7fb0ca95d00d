package nav

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkbio/pkg/dto"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		path   string
		authed bool
		want   string
	}{
		{"/dashboard", false, "/login"},
		{"/dashboard", true, "/dashboard"},
		{"/", true, "/dashboard"},
		{"/", false, "/"},
		{"/u/alice", false, "/u/alice"},
		{"/login", true, "/login"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Resolve(c.path, c.authed), "%s authed=%v", c.path, c.authed)
	}
}

func TestProfileUsername(t *testing.T) {
	name, ok := ProfileUsername("/u/alice")
	assert.True(t, ok)
	assert.Equal(t, "alice", name)

	for _, p := range []string{"/u/", "/users/alice", "/u/a/b"} {
		_, ok := ProfileUsername(p)
		assert.False(t, ok, p)
	}
}

func TestIsNotFoundMessage(t *testing.T) {
	assert.True(t, IsNotFoundMessage("Username not found"))
	assert.True(t, IsNotFoundMessage("NotFound"))
	assert.True(t, IsNotFoundMessage("user NOT   FOUND"))
	assert.False(t, IsNotFoundMessage("HTTP 500"))
}

type result struct {
	p   *dto.PublicProfile
	err error
}

// gatedFetcher blocks each call until the test releases it.
type gatedFetcher struct {
	started chan string
	release map[string]chan result
}

func (g *gatedFetcher) Profile(_ context.Context, username string) (*dto.PublicProfile, error) {
	g.started <- username
	r := <-g.release[username]
	return r.p, r.err
}

func newGated(names ...string) *gatedFetcher {
	g := &gatedFetcher{started: make(chan string, len(names)), release: map[string]chan result{}}
	for _, n := range names {
		g.release[n] = make(chan result, 1)
	}
	return g
}

func TestProfileLoader_Outcomes(t *testing.T) {
	g := newGated("alice", "ghost", "boom")
	l := NewProfileLoader(g)

	g.release["alice"] <- result{p: &dto.PublicProfile{Username: "alice"}}
	v, applied := l.Load(context.Background(), "alice")
	require.True(t, applied)
	assert.Equal(t, "alice", v.Profile.Username)
	assert.False(t, v.Loading)

	g.release["ghost"] <- result{err: errors.New("Username not found")}
	v, _ = l.Load(context.Background(), "ghost")
	assert.True(t, v.NotFound)
	assert.Empty(t, v.Error)

	g.release["boom"] <- result{err: errors.New("HTTP 500")}
	v, _ = l.Load(context.Background(), "boom")
	assert.False(t, v.NotFound)
	assert.Equal(t, "HTTP 500", v.Error)
}

func TestProfileLoader_StaleResponseDropped(t *testing.T) {
	g := newGated("slow", "fast")
	l := NewProfileLoader(g)

	type out struct {
		v       ProfileView
		applied bool
	}
	done := make(chan out, 1)
	go func() {
		v, ok := l.Load(context.Background(), "slow")
		done <- out{v, ok}
	}()
	require.Equal(t, "slow", <-g.started)

	g.release["fast"] <- result{p: &dto.PublicProfile{Username: "fast"}}
	v, applied := l.Load(context.Background(), "fast")
	<-g.started
	require.True(t, applied)
	assert.Equal(t, "fast", v.Profile.Username)

	g.release["slow"] <- result{p: &dto.PublicProfile{Username: "slow"}}
	stale := <-done
	assert.False(t, stale.applied)
	assert.Equal(t, "fast", l.View().Profile.Username)
}

func TestProfileLoader_LeaveDropsInFlight(t *testing.T) {
	g := newGated("alice")
	l := NewProfileLoader(g)

	done := make(chan bool, 1)
	go func() {
		_, ok := l.Load(context.Background(), "alice")
		done <- ok
	}()
	<-g.started
	assert.True(t, l.View().Loading)

	l.Leave()
	g.release["alice"] <- result{p: &dto.PublicProfile{Username: "alice"}}
	assert.False(t, <-done)
	assert.Nil(t, l.View().Profile)
}
