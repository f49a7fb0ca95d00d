// Package storage is the blob store for uploaded avatars.
package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

type Bucket interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PublicURL(key string) string
}

type Object struct {
	ContentType string
	Data        []byte
}

// Memory keeps objects in a map. Used in tests and with storage.driver=memory.
type Memory struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemory(baseURL string) *Memory {
	return &Memory{BaseURL: strings.TrimRight(baseURL, "/"), objects: map[string]Object{}}
}

func (m *Memory) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{ContentType: contentType, Data: buf.Bytes()}
	return nil
}

func (m *Memory) PublicURL(key string) string {
	return m.BaseURL + "/" + key
}

func (m *Memory) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	return o, ok
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// ServeHTTP serves stored objects by key so memory-backed URLs resolve.
func (m *Memory) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	o, ok := m.Get(strings.TrimPrefix(r.URL.Path, "/"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", o.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(o.Data)))
	_, _ = w.Write(o.Data)
}
