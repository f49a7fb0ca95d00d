package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkbio/internal/core/auth"
	"linkbio/internal/core/errs"
	"linkbio/internal/core/storage"
	"linkbio/internal/domain"
	"linkbio/internal/repo/memory"
	"linkbio/pkg/dto"
	"linkbio/pkg/media"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type fixture struct {
	users    *memory.Users
	links    *memory.Links
	cache    *mapCache
	bucket   *storage.Memory
	jwt      *auth.JWTer
	auth     *AuthService
	profiles *ProfileService
	linkSvc  *LinkService
	themes   *ThemeService
	avatars  *AvatarService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:  memory.NewUsers(),
		links:  memory.NewLinks(),
		cache:  newMapCache(),
		bucket: storage.NewMemory("https://cdn.test"),
		jwt:    &auth.JWTer{Secret: []byte("k"), Issuer: "linkbio", TTL: 24 * time.Hour},
	}
	f.auth = NewAuthService(f.users, f.jwt)
	f.profiles = NewProfileService(f.users, f.links, f.cache, time.Minute, nil)
	f.linkSvc = NewLinkService(f.links, f.profiles)
	f.themes = NewThemeService(f.users, f.profiles)
	f.avatars = NewAvatarService(f.users, f.bucket, f.profiles, 2<<20)
	return f
}

func (f *fixture) register(t *testing.T, name string) uint64 {
	t.Helper()
	res, err := f.auth.Register(context.Background(), name, "pw123456")
	require.NoError(t, err)
	return res.User.ID
}

// mapCache counts loads so tests can see hits and invalidations.
type mapCache struct {
	mu    sync.Mutex
	data  map[string][]byte
	loads int
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) GetOrLoad(ctx context.Context, key string, _ time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	if b, ok := c.data[key]; ok {
		c.mu.Unlock()
		return b, nil
	}
	c.loads++
	c.mu.Unlock()
	b, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.data[key] = b
	c.mu.Unlock()
	return b, nil
}

func (c *mapCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func assertKind(t *testing.T, err error, kind errs.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	e := errs.From(err)
	assert.Equal(t, kind, e.Kind, err.Error())
	if msg != "" {
		assert.Equal(t, msg, e.Msg)
	}
}

func TestAuth_RegisterOncePerUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Register(ctx, "  alice ", "pw123456")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "alice", res.User.Username)
	assert.Empty(t, res.User.ThemePreference)

	_, err = f.auth.Register(ctx, "alice", "other")
	assertKind(t, err, errs.KindConflict, "Username already exists")

	stored, err := f.users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123456", stored.PasswordHash)
	assert.Equal(t, "system", stored.ThemePreference["theme"])
}

func TestAuth_RegisterValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Register(context.Background(), "   ", "pw")
	assertKind(t, err, errs.KindBadRequest, "Username and password are required")

	_, err = f.auth.Register(context.Background(), "carol", strings.Repeat("p", 80))
	assertKind(t, err, errs.KindBadRequest, "Password is too long")
}

func TestAuth_LoginAndVerify(t *testing.T) {
	f := newFixture(t)
	id := f.register(t, "alice")
	ctx := context.Background()

	res, err := f.auth.Login(ctx, "alice", "pw123456")
	require.NoError(t, err)
	uid, err := f.auth.VerifyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, id, uid)

	_, err = f.auth.Login(ctx, "alice", "wrongpw")
	assertKind(t, err, errs.KindUnauthorized, "Invalid credentials")

	_, err = f.auth.Login(ctx, "nobody", "pw123456")
	assertKind(t, err, errs.KindUnauthorized, "Invalid credentials")

	_, err = f.auth.VerifyToken("garbage")
	assertKind(t, err, errs.KindForbidden, "Forbidden: Invalid token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestLinks_CreateListOrder(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	for _, title := range []string{"Blog", "Shop", "Talks"} {
		_, err := f.linkSvc.Create(ctx, alice, dto.LinkInput{Title: title, URL: "https://" + strings.ToLower(title)})
		require.NoError(t, err)
	}
	list, err := f.linkSvc.ListOwn(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Blog", "Shop", "Talks"}, []string{list[0].Title, list[1].Title, list[2].Title})
	assert.Equal(t, alice, list[0].UserID)

	_, err = f.linkSvc.Create(ctx, alice, dto.LinkInput{Title: " ", URL: "x"})
	assertKind(t, err, errs.KindBadRequest, "Title and URL are required")
}

func TestLinks_NonOwnerCannotMutate(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	ctx := context.Background()

	created, err := f.linkSvc.Create(ctx, alice, dto.LinkInput{Title: "Blog", URL: "https://a.example"})
	require.NoError(t, err)
	l, err := f.linkSvc.Get(ctx, created.ID)
	require.NoError(t, err)

	_, err = f.linkSvc.Update(ctx, bob, l, dto.LinkInput{Title: "pwned", URL: "https://evil"})
	assertKind(t, err, errs.KindForbidden, "Forbidden: Not the owner of this link")
	assertKind(t, f.linkSvc.Delete(ctx, bob, l), errs.KindForbidden, "")

	after, err := f.linkSvc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blog", after.Title)
	assert.Equal(t, "https://a.example", after.URL)
}

func TestLinks_UpdateDelete(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	created, err := f.linkSvc.Create(ctx, alice, dto.LinkInput{Title: "Blog", URL: "https://a"})
	require.NoError(t, err)
	l, err := f.linkSvc.Get(ctx, created.ID)
	require.NoError(t, err)

	upd, err := f.linkSvc.Update(ctx, alice, l, dto.LinkInput{Title: "Journal", URL: "https://b"})
	require.NoError(t, err)
	assert.Equal(t, "Journal", upd.Title)
	assert.Equal(t, created.CreatedAt, upd.CreatedAt)

	require.NoError(t, f.linkSvc.Delete(ctx, alice, l))
	_, err = f.linkSvc.Get(ctx, created.ID)
	assertKind(t, err, errs.KindNotFound, "Link not found")
	assertKind(t, f.linkSvc.Delete(ctx, alice, l), errs.KindNotFound, "")
}

func TestTheme_UpdateIdempotentAndMerging(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	_, err := f.users.MergeThemePreference(ctx, alice, map[string]any{"accent": "teal"})
	require.NoError(t, err)

	first, err := f.themes.Update(ctx, alice, "dark")
	require.NoError(t, err)
	second, err := f.themes.Update(ctx, alice, "dark")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, map[string]any{"theme": "dark", "accent": "teal"}, second.ThemePreference)
	assert.Equal(t, alice, second.ID)
}

func TestTheme_Validation(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	_, err := f.themes.Update(ctx, alice, "")
	assertKind(t, err, errs.KindBadRequest, "Theme is required")
	_, err = f.themes.Update(ctx, alice, "neon")
	assertKind(t, err, errs.KindBadRequest, "Unsupported theme")

	f.users.Delete(alice)
	_, err = f.themes.Update(ctx, alice, "calm")
	assertKind(t, err, errs.KindNotFound, "User not found")
}

func TestProfile_PublicCachedAndInvalidated(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	ctx := context.Background()

	_, err := f.profiles.Resolve(ctx, "ghost")
	assertKind(t, err, errs.KindNotFound, "Username not found")

	u, err := f.profiles.Resolve(ctx, "alice")
	require.NoError(t, err)
	p, err := f.profiles.Public(ctx, u)
	require.NoError(t, err)
	assert.Empty(t, p.Links)
	assert.NotNil(t, p.Links)
	assert.Equal(t, "system", p.ThemePreference["theme"])

	_, err = f.profiles.Public(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.loads)

	_, err = f.linkSvc.Create(ctx, alice, dto.LinkInput{Title: "Blog", URL: "https://a"})
	require.NoError(t, err)
	p, err = f.profiles.Public(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, 2, f.cache.loads)
	require.Len(t, p.Links, 1)
	assert.Equal(t, "Blog", p.Links[0].Title)

	_, err = f.themes.Update(ctx, alice, "calm")
	require.NoError(t, err)
	p, err = f.profiles.Public(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, 3, f.cache.loads)
	// u was resolved before the theme changed
	assert.Equal(t, "system", p.ThemePreference["theme"])
}

type failingBucket struct{ calls int }

func (b *failingBucket) Put(context.Context, string, string, io.Reader, int64) error {
	b.calls++
	return errors.New("s3 down")
}
func (b *failingBucket) PublicURL(key string) string { return key }

func TestAvatar_Upload(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	f.avatars.now = func() time.Time { return time.UnixMilli(1700000000000) }
	before := testutil.ToFloat64(avatarUploads.WithLabelValues("ok"))

	res, err := f.avatars.Upload(context.Background(), alice, media.File{Name: "me.PNG", ContentType: "image/png", Data: pngBytes})
	require.NoError(t, err)

	want := "https://cdn.test/avatars/1-1700000000000.png"
	assert.Equal(t, want, res.ProfileImageURL)
	assert.Equal(t, want, res.User.ProfileImageURL)
	assert.Equal(t, "alice", res.User.Username)

	obj, ok := f.bucket.Get("avatars/1-1700000000000.png")
	require.True(t, ok)
	assert.True(t, bytes.Equal(pngBytes, obj.Data))
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, before+1, testutil.ToFloat64(avatarUploads.WithLabelValues("ok")))
}

func TestAvatar_RejectedNeverReachesStorage(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	small := NewAvatarService(f.users, f.bucket, f.profiles, 8)

	cases := []struct {
		name string
		svc  *AvatarService
		file media.File
		msg  string
	}{
		{"empty", f.avatars, media.File{Name: "a.png", ContentType: "image/png"}, "No file uploaded"},
		{"text", f.avatars, media.File{Name: "a.txt", ContentType: "text/plain", Data: []byte("hello")}, "Only image files are allowed"},
		{"webp", f.avatars, media.File{Name: "a.webp", ContentType: "image/webp", Data: pngBytes}, "Only image files are allowed"},
		{"lying header", f.avatars, media.File{Name: "a.png", ContentType: "image/png", Data: []byte("%PDF-1.7 not an image")}, "Only image files are allowed"},
		{"too big", small, media.File{Name: "a.png", ContentType: "image/png", Data: pngBytes}, "File too large (max 8 bytes)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.svc.Upload(context.Background(), alice, tc.file)
			assertKind(t, err, errs.KindBadRequest, tc.msg)
		})
	}
	assert.Equal(t, 0, f.bucket.Len())
}

func TestAvatar_StorageFailure(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	b := &failingBucket{}
	svc := NewAvatarService(f.users, b, f.profiles, 2<<20)

	_, err := svc.Upload(context.Background(), alice, media.File{Name: "a.png", ContentType: "image/png", Data: pngBytes})
	assertKind(t, err, errs.KindInternal, "Failed to upload image")
	assert.Equal(t, 1, b.calls)

	u, err := f.users.FindByID(context.Background(), alice)
	require.NoError(t, err)
	assert.Nil(t, u.ProfileImageURL)
}

var _ domain.UserRepository = (*memory.Users)(nil)
