// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/poiesic/blobsearch/blobstore"
	"github.com/poiesic/blobsearch/core"
)

// MockStore is an in-memory blobstore.Store for testing.
// It is safe for concurrent use.
type MockStore struct {
	// ListFunc, GrantFunc, OpenFunc and AttributesFunc override the
	// in-memory behavior when set.
	ListFunc       func(ctx context.Context, prefix string, fn blobstore.ListFunc) error
	GrantFunc      func(ctx context.Context, name string, start, expiry time.Time) (string, error)
	OpenFunc       func(ctx context.Context, uri string) (io.ReadCloser, error)
	AttributesFunc func(ctx context.Context, name string) (*core.Attributes, error)

	container string
	modified  time.Time

	mu   sync.RWMutex
	docs map[string][]byte

	grantCount atomic.Int64
	closed     atomic.Bool
}

var _ blobstore.Store = (*MockStore)(nil)

// NewMockStore creates an empty store for container.
// Note: Returns concrete type to allow test assertions.
func NewMockStore(container string) *MockStore {
	return &MockStore{
		container: container,
		modified:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		docs:      make(map[string][]byte),
	}
}

// Put stores a document.
func (m *MockStore) Put(name string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[name] = content
}

// Delete removes a document.
func (m *MockStore) Delete(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, name)
}

// URL returns "mem://<container>".
func (m *MockStore) URL() string {
	return "mem://" + m.container
}

// Container returns the container name.
func (m *MockStore) Container() string {
	return m.container
}

// List reports stored names under prefix in lexical order.
func (m *MockStore) List(ctx context.Context, prefix string, fn blobstore.ListFunc) error {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, prefix, fn)
	}

	m.mu.RLock()
	names := make([]string, 0, len(m.docs))
	for name := range m.docs {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	m.mu.RUnlock()
	slices.Sort(names)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(name); err != nil {
			return err
		}
	}
	return nil
}

// Grant returns "mem://<container>/<name>?se=<expiry>".
func (m *MockStore) Grant(ctx context.Context, name string, start, expiry time.Time) (string, error) {
	m.grantCount.Add(1)
	if m.GrantFunc != nil {
		return m.GrantFunc(ctx, name, start, expiry)
	}

	m.mu.RLock()
	_, ok := m.docs[name]
	m.mu.RUnlock()
	if !ok {
		return "", blobstore.ErrNotFound
	}

	q := url.Values{}
	q.Set("st", start.UTC().Format(time.RFC3339))
	q.Set("se", expiry.UTC().Format(time.RFC3339))
	return m.URL() + "/" + url.PathEscape(name) + "?" + q.Encode(), nil
}

// Open returns the content behind a grant.
func (m *MockStore) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, uri)
	}

	name, err := m.nameFromGrant(uri)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	content, ok := m.docs[name]
	m.mu.RUnlock()
	if !ok {
		return nil, blobstore.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// Attributes reports text/plain, the content length and a fixed modification time.
func (m *MockStore) Attributes(ctx context.Context, name string) (*core.Attributes, error) {
	if m.AttributesFunc != nil {
		return m.AttributesFunc(ctx, name)
	}

	m.mu.RLock()
	content, ok := m.docs[name]
	m.mu.RUnlock()
	if !ok {
		return nil, blobstore.ErrNotFound
	}
	return &core.Attributes{
		ContentType:  "text/plain",
		Size:         int64(len(content)),
		LastModified: m.modified,
	}, nil
}

// Close marks the store closed.
func (m *MockStore) Close() error {
	m.closed.Store(true)
	return nil
}

// GrantCount returns the number of times Grant was called.
func (m *MockStore) GrantCount() int {
	return int(m.grantCount.Load())
}

// Closed reports whether Close was called.
func (m *MockStore) Closed() bool {
	return m.closed.Load()
}

func (m *MockStore) nameFromGrant(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "mem" || u.Host != m.container {
		return "", blobstore.ErrGrantInvalid
	}
	return strings.TrimPrefix(u.Path, "/"), nil
}
