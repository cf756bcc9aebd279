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


package extract

import (
	"context"
	"io"

	"github.com/poiesic/blobsearch/core"
)

// Extractor turns a document reachable through an access grant into text and
// metadata. Implementations must be thread-safe for concurrent use.
type Extractor interface {
	// Extract fetches the document behind uri and returns its text and
	// metadata. An empty document yields an empty Text, not an error.
	Extract(ctx context.Context, uri string) (*core.Extraction, error)
}

// Opener fetches the bytes behind an access grant. Every blobstore.Store
// satisfies it.
type Opener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, uri string) (io.ReadCloser, error)

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	return f(ctx, uri)
}
