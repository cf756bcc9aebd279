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


package blobstore

import (
	"context"
	"io"
	"time"

	"github.com/poiesic/blobsearch/core"
)

// Grant window relative to the moment a grant is requested. The start is
// backdated to tolerate clock skew between this host and the store.
const (
	GrantBackdate = 5 * time.Minute
	GrantLifetime = 24 * time.Hour
)

// ListFunc receives each document name during a listing. Returning an error
// stops the listing and the error is returned from List.
type ListFunc func(name string) error

// Store is an object store container holding the documents to index.
// Implementations must be safe for concurrent use.
type Store interface {
	// URL returns the container URL. It prefixes every storage name.
	URL() string

	// Container returns the container name.
	Container() string

	// List calls fn for every document under prefix, recursively, in the
	// order the store reports them.
	List(ctx context.Context, prefix string, fn ListFunc) error

	// Grant returns a read-only URI for the named document, valid from
	// start until expiry.
	Grant(ctx context.Context, name string, start, expiry time.Time) (string, error)

	// Open fetches the document behind a URI returned by Grant.
	Open(ctx context.Context, uri string) (io.ReadCloser, error)

	// Attributes returns the store-maintained attributes of a document.
	Attributes(ctx context.Context, name string) (*core.Attributes, error)

	// Close releases resources held by the store.
	Close() error
}

// GrantWindow returns the start and expiry of a grant requested at now.
func GrantWindow(now time.Time) (start, expiry time.Time) {
	return now.Add(-GrantBackdate), now.Add(GrantLifetime)
}

// ListAll collects every document name under prefix.
func ListAll(ctx context.Context, s Store, prefix string) ([]string, error) {
	var names []string
	err := s.List(ctx, prefix, func(name string) error {
		names = append(names, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
