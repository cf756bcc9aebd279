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
	"context"
	"io"
	"strconv"
	"sync/atomic"

	"github.com/poiesic/blobsearch/core"
	"github.com/poiesic/blobsearch/extract"
)

// MockExtractor is a mock implementation of extract.Extractor for testing.
// It is safe for concurrent use.
type MockExtractor struct {
	// ExtractFunc allows customizing the behavior of Extract.
	ExtractFunc func(ctx context.Context, uri string) (*core.Extraction, error)

	// Opener, when set, is used by the default behavior to read the document.
	Opener extract.Opener

	callCount atomic.Int64
}

var _ extract.Extractor = (*MockExtractor)(nil)

// NewMockExtractor creates a mock extractor that reads documents through opener.
// Note: Returns concrete type to allow test assertions.
func NewMockExtractor(opener extract.Opener) *MockExtractor {
	return &MockExtractor{Opener: opener}
}

// Extract returns the document bytes as text.
// Default behavior: reads the grant through Opener, or echoes the URI when no
// Opener is set.
func (m *MockExtractor) Extract(ctx context.Context, uri string) (*core.Extraction, error) {
	m.callCount.Add(1)

	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, uri)
	}

	if m.Opener == nil {
		return &core.Extraction{
			Text:     uri,
			Metadata: map[string]string{core.MetaContentType: "text/plain"},
		}, nil
	}

	body, err := m.Opener.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	return &core.Extraction{
		Text: string(data),
		Metadata: map[string]string{
			core.MetaContentType:   "text/plain",
			core.MetaContentLength: strconv.Itoa(len(data)),
		},
	}, nil
}

// CallCount returns the number of times Extract was called.
func (m *MockExtractor) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockExtractor) Reset() {
	m.callCount.Store(0)
	m.ExtractFunc = nil
}
