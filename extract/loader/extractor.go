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


package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/poiesic/blobsearch/core"
	"github.com/poiesic/blobsearch/extract"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
)

// Extractor extracts text in process with langchaingo document loaders.
type Extractor struct {
	opener   extract.Opener
	maxBytes int64
	logger   *slog.Logger
}

var _ extract.Extractor = (*Extractor)(nil)

// New creates a loader extractor. Documents are fetched through opener.
func New(cfg *extract.Config, opener extract.Opener, logger *slog.Logger) (*Extractor, error) {
	if cfg == nil {
		cfg = extract.NewConfig(extract.WithKind(extract.KindLoader))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opener == nil {
		return nil, extract.ErrOpenerRequired
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Extractor{
		opener:   opener,
		maxBytes: cfg.MaxBytes,
		logger:   logger.With("component", "loader"),
	}, nil
}

// Extract reads the document, sniffs its type and dispatches to the matching
// loader.
func (e *Extractor) Extract(ctx context.Context, uri string) (*core.Extraction, error) {
	body, err := e.opener.Open(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, e.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if int64(len(data)) > e.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", extract.ErrDocumentTooLarge, e.maxBytes)
	}

	mtype := mimetype.Detect(data)
	loader, err := loaderFor(mtype, data)
	if err != nil {
		return nil, err
	}

	docs, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", mtype.String(), err)
	}

	result := &core.Extraction{
		Metadata: map[string]string{
			core.MetaContentType:   mtype.String(),
			core.MetaContentLength: strconv.Itoa(len(data)),
		},
	}

	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		texts = append(texts, doc.PageContent)
	}
	result.Text = strings.TrimSpace(strings.Join(texts, "\n"))

	if mtype.Is("application/pdf") {
		result.Pages = texts
		result.Metadata[core.MetaPageCount] = strconv.Itoa(pageCount(docs))
	}

	e.logger.Debug("extracted document", "type", mtype.String(), "parts", len(docs), "bytes", len(data))
	return result, nil
}

func loaderFor(mtype *mimetype.MIME, data []byte) (documentloaders.Loader, error) {
	switch {
	case mtype.Is("application/pdf"):
		return documentloaders.NewPDF(bytes.NewReader(data), int64(len(data))), nil
	case mtype.Is("text/html"):
		return documentloaders.NewHTML(bytes.NewReader(data)), nil
	case mtype.Is("text/csv"):
		return documentloaders.NewCSV(bytes.NewReader(data)), nil
	case isText(mtype):
		return documentloaders.NewText(bytes.NewReader(data)), nil
	}
	return nil, fmt.Errorf("%w: %s", extract.ErrUnsupportedContent, mtype.String())
}

// isText reports whether mtype is plain text or derives from it (JSON, XML, ...).
func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func pageCount(docs []schema.Document) int {
	if len(docs) == 0 {
		return 0
	}
	if total, ok := docs[0].Metadata["total_pages"].(int); ok {
		return total
	}
	return len(docs)
}
