// Package localstore is the client's durable key/value storage on sqlite.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"linkbio/pkg/dto"

	_ "modernc.org/sqlite"
)

// AuthKey holds the persisted auth slice as {token, user} JSON.
const AuthKey = "auth"

const schema = `
CREATE TABLE IF NOT EXISTS kv (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`

type KV struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite file at path; ":memory:" works too.
func Open(ctx context.Context, path string) (*KV, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// one connection: sqlite serializes writers and :memory: is per-connection
	db.SetMaxOpenConns(1)
	kv, err := New(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return kv, nil
}

func New(ctx context.Context, db *sql.DB) (*KV, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to init kv table: %w", err)
	}
	return &KV{db: db}, nil
}

func (s *KV) Close() error { return s.db.Close() }

// Get returns (nil, nil) when key is absent.
func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return value, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

func (s *KV) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w", key, err)
	}
	return nil
}

// AuthStorage persists the auth slice under AuthKey.
type AuthStorage struct {
	kv  *KV
	log *zap.Logger
}

func NewAuthStorage(kv *KV, l *zap.Logger) *AuthStorage {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuthStorage{kv: kv, log: l}
}

// Load treats a corrupt or token-less entry as logged out.
func (a *AuthStorage) Load(ctx context.Context) (*dto.AuthResponse, error) {
	raw, err := a.kv.Get(ctx, AuthKey)
	if err != nil || raw == nil {
		return nil, err
	}
	var out dto.AuthResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		a.log.Warn("discarding unreadable auth entry", zap.Error(err))
		return nil, nil
	}
	if out.Token == "" {
		return nil, nil
	}
	return &out, nil
}

func (a *AuthStorage) Save(ctx context.Context, v dto.AuthResponse) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return a.kv.Set(ctx, AuthKey, raw)
}

func (a *AuthStorage) Clear(ctx context.Context) error {
	return a.kv.Delete(ctx, AuthKey)
}
