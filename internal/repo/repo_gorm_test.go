package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"linkbio/internal/core/database"
	"linkbio/internal/domain"
)

var userCols = []string{"id", "username", "password_hash", "theme_preference", "profile_image_url", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := database.Open(postgres.New(postgres.Config{Conn: sqlDB}), database.Opts{})
	require.NoError(t, err)
	return db, mock
}

func TestUserRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepo(db)

	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	u := &domain.User{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, r.Create(context.Background(), u))
	assert.Equal(t, uint64(7), u.ID)
	assert.NotNil(t, u.ThemePreference)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepo(db)

	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := r.Create(context.Background(), &domain.User{Username: "alice", PasswordHash: "hash"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_FindByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepo(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "alice", "hash", []byte(`{"theme":"dark"}`), nil, now, now))

	u, err := r.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)
	assert.Equal(t, "dark", u.ThemePreference["theme"])
	assert.Nil(t, u.ProfileImageURL)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows(userCols))
	_, err = r.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_MergeThemePreference(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id","theme_preference" FROM "users" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "theme_preference"}).
			AddRow(1, []byte(`{"theme":"light","accent":"teal"}`)))
	mock.ExpectExec(`UPDATE "users" SET "theme_preference"=\$1,"updated_at"=\$2 WHERE id = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	merged, err := r.MergeThemePreference(context.Background(), 1, map[string]any{"theme": "calm"})
	require.NoError(t, err)
	assert.Equal(t, "calm", merged["theme"])
	assert.Equal(t, "teal", merged["accent"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_MergeThemePreference_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(sqlmock.NewRows([]string{"id", "theme_preference"}))
	mock.ExpectRollback()

	_, err := r.MergeThemePreference(context.Background(), 9, map[string]any{"theme": "dark"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_SetProfileImageURL(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepo(db)
	now := time.Now()
	url := "https://cdn/avatars/1-1.png"

	mock.ExpectExec(`UPDATE "users" SET "profile_image_url"=\$1,"updated_at"=\$2 WHERE id = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "alice", "hash", []byte(`{}`), url, now, now))

	u, err := r.SetProfileImageURL(context.Background(), 1, url)
	require.NoError(t, err)
	require.NotNil(t, u.ProfileImageURL)
	assert.Equal(t, url, *u.ProfileImageURL)

	mock.ExpectExec(`UPDATE "users"`).WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = r.SetProfileImageURL(context.Background(), 2, url)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

var linkCols = []string{"id", "user_id", "title", "url", "created_at", "updated_at"}

func TestLinkRepo_ListByUser_Ordered(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewLinkRepo(db)
	t0 := time.Now().Add(-time.Hour)

	mock.ExpectQuery(`SELECT \* FROM "links" WHERE user_id = \$1 ORDER BY created_at ASC,id ASC`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(linkCols).
			AddRow(1, 1, "Blog", "https://blog", t0, t0).
			AddRow(2, 1, "Shop", "https://shop", t0.Add(time.Minute), t0))

	links, err := r.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "Blog", links[0].Title)

	mock.ExpectQuery(`FROM "links"`).WillReturnRows(sqlmock.NewRows(linkCols))
	links, err = r.ListByUser(context.Background(), 3)
	require.NoError(t, err)
	assert.NotNil(t, links)
	assert.Empty(t, links)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkRepo_CreateFind(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewLinkRepo(db)

	mock.ExpectQuery(`INSERT INTO "links"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	l := &domain.Link{UserID: 1, Title: "Blog", URL: "https://blog"}
	require.NoError(t, r.Create(context.Background(), l))
	assert.Equal(t, uint64(11), l.ID)

	mock.ExpectQuery(`SELECT \* FROM "links" WHERE id = \$1`).WillReturnRows(sqlmock.NewRows(linkCols))
	_, err := r.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkRepo_UpdateDelete(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewLinkRepo(db)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE "links" SET "title"=\$1,"updated_at"=\$2,"url"=\$3 WHERE id = \$4`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, r.Update(ctx, &domain.Link{ID: 1, UserID: 1, Title: "New", URL: "https://new"}))

	mock.ExpectExec(`DELETE FROM "links" WHERE id = \$1`).WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, r.Delete(ctx, 1))

	mock.ExpectExec(`DELETE FROM "links"`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, r.Delete(ctx, 1), domain.ErrNotFound)

	mock.ExpectExec(`UPDATE "links"`).WillReturnError(errors.New("conn reset"))
	assert.EqualError(t, r.Update(ctx, &domain.Link{ID: 2}), "conn reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDupKey(t *testing.T) {
	assert.True(t, isDupKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDupKey(errors.New("Error 1062 (23000): Duplicate entry 'alice' for key 'users.username'")))
	assert.True(t, isDupKey(errors.New("UNIQUE constraint failed: users.username")))
	assert.False(t, isDupKey(errors.New("connection refused")))
}
