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


package tika

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	gotika "github.com/google/go-tika/tika"
	"github.com/poiesic/blobsearch/core"
	"github.com/poiesic/blobsearch/extract"
)

const contentKey = "X-TIKA:content"

// Extractor sends documents to an Apache Tika server.
type Extractor struct {
	baseURL string
	opener  extract.Opener
	client  *http.Client
	tika    *gotika.Client
	logger  *slog.Logger
}

var _ extract.Extractor = (*Extractor)(nil)

// Option configures an Extractor.
type Option func(*Extractor)

// WithHTTPClient sets the HTTP client used to reach Tika.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Extractor) {
		if client != nil {
			e.client = client
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates a Tika extractor. Documents are fetched through opener.
func New(cfg *extract.Config, opener extract.Opener, opts ...Option) (*Extractor, error) {
	if cfg == nil {
		cfg = extract.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opener == nil {
		return nil, extract.ErrOpenerRequired
	}

	e := &Extractor{
		baseURL: cfg.TikaURL,
		opener:  opener,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "tika")
	e.tika = gotika.NewClient(e.client, e.baseURL)

	return e, nil
}

// Extract streams the document to Tika and parses the recursive metadata
// response. Text from embedded documents is appended after the container's.
func (e *Extractor) Extract(ctx context.Context, uri string) (*core.Extraction, error) {
	body, err := e.opener.Open(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	defer body.Close()

	entries, err := e.tika.MetaRecursive(ctx, body)
	if err != nil {
		var status gotika.ClientError
		if errors.As(err, &status) {
			return nil, fmt.Errorf("%w: %d", extract.ErrServiceStatus, status.StatusCode)
		}
		return nil, fmt.Errorf("tika request: %w", err)
	}
	e.logger.Debug("extracted document", "uri", uri, "entries", len(entries))

	return parseEntries(entries), nil
}

// parseEntries builds an Extraction from /rmeta output. The first entry
// describes the container document.
func parseEntries(entries []map[string][]string) *core.Extraction {
	result := &core.Extraction{Metadata: map[string]string{}}
	if len(entries) == 0 {
		return result
	}

	var texts []string
	for _, entry := range entries {
		for _, text := range entry[contentKey] {
			if text = strings.TrimSpace(text); text != "" {
				texts = append(texts, text)
			}
		}
	}
	result.Text = strings.Join(texts, "\n")

	first := make(map[string]any, len(entries[0]))
	for k, v := range entries[0] {
		if k == contentKey {
			continue
		}
		first[k] = v
	}
	result.Metadata = extract.FlattenMetadata(first)

	return result
}
