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


package core

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Metadata keys read from extractor output.
const (
	MetaContentType   = "Content-Type"
	MetaLastModified  = "Last-Modified"
	MetaContentLength = "Content-Length"
	MetaCreator       = "dc:creator"
	MetaAuthor        = "meta:author"
	MetaPageCount     = "xmpTPg:NPages"
	MetaLanguage      = "language"
)

// SentinelTime stands in for a missing or unparseable Last-Modified value.
var SentinelTime = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

var (
	creationDateKeys = []string{"dcterms:created", "meta:creation-date", "Creation-Date"}
	pageCountKeys    = []string{MetaPageCount, "meta:page-count", "Page-Count"}
	languageKeys     = []string{MetaLanguage, "dc:language"}
	authorKeys       = []string{MetaCreator, MetaAuthor}

	timeLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		time.RFC1123,
		time.RFC1123Z,
		"2006-01-02",
	}
)

// StorageName joins the container URL and the document name.
func StorageName(containerURL, name string) string {
	return strings.TrimRight(containerURL, "/") + "/" + name
}

// EncodeStoragePath encodes a storage name as a URL token: URL-safe base64 of
// the UTF-8 bytes with the padding replaced by a trailing count digit.
func EncodeStoragePath(storageName string) string {
	if storageName == "" {
		return ""
	}
	enc := base64.StdEncoding.EncodeToString([]byte(storageName))
	trimmed := strings.TrimRight(enc, "=")
	pad := len(enc) - len(trimmed)
	trimmed = strings.NewReplacer("+", "-", "/", "_").Replace(trimmed)
	return trimmed + strconv.Itoa(pad)
}

// DecodeStoragePath reverses EncodeStoragePath.
func DecodeStoragePath(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	pad := int(token[len(token)-1] - '0')
	if pad < 0 || pad > 2 {
		return "", fmt.Errorf("%w: bad padding digit", ErrInvalidStoragePath)
	}
	body := strings.NewReplacer("-", "+", "_", "/").Replace(token[:len(token)-1])
	raw, err := base64.StdEncoding.DecodeString(body + strings.Repeat("=", pad))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidStoragePath, err)
	}
	return string(raw), nil
}

// NewIndexRecord builds the index record for one document. attrs and ent may
// be nil. Store attributes overwrite the matching extractor values.
func NewIndexRecord(storageName string, ext *Extraction, attrs *Attributes, ent *Entities) *IndexRecord {
	if ext == nil {
		ext = &Extraction{}
	}
	meta := ext.Metadata

	rec := &IndexRecord{
		Content:        ext.Text,
		StorageName:    storageName,
		StoragePath:    EncodeStoragePath(storageName),
		Author:         firstValue(meta, authorKeys...),
		CharacterCount: utf8.RuneCountInString(ext.Text),
		WordCount:      len(strings.Fields(ext.Text)),
		LastModified:   parseTimeOr(meta[MetaLastModified], SentinelTime),
		People:         []string{},
		Organizations:  []string{},
		Locations:      []string{},
		Keyphrases:     []string{},
	}
	rec.StorageLastModified = rec.LastModified

	if ct, ok := meta[MetaContentType]; ok && ct != "" {
		rec.ContentType = &ct
		rec.StorageContentType = ct
	}
	if size, err := strconv.ParseInt(meta[MetaContentLength], 10, 64); err == nil {
		rec.StorageSize = size
	}
	if raw := firstValue(meta, creationDateKeys...); raw != "" {
		if ts, ok := parseTime(raw); ok {
			rec.CreationDate = &ts
		}
	}
	if n, err := strconv.Atoi(firstValue(meta, pageCountKeys...)); err == nil {
		rec.PageCount = n
	}
	if len(ext.Pages) > 0 {
		rec.Text = strings.Join(ext.Pages, "\f")
		if rec.PageCount == 0 {
			rec.PageCount = len(ext.Pages)
		}
	}

	if attrs != nil {
		rec.StorageContentType = attrs.ContentType
		rec.StorageSize = attrs.Size
		rec.StorageContentChecksum = attrs.ContentMD5
		if !attrs.LastModified.IsZero() {
			rec.StorageLastModified = attrs.LastModified.UTC()
		}
	}

	if ent != nil {
		rec.People = nonNil(ent.People)
		rec.Organizations = nonNil(ent.Organizations)
		rec.Locations = nonNil(ent.Locations)
		rec.Keyphrases = nonNil(ent.Keyphrases)
		rec.Language = ent.Language
	}
	if rec.Language == "" {
		rec.Language = firstValue(meta, languageKeys...)
	}

	rec.MergedContent = rec.Content
	if len(rec.Keyphrases) > 0 {
		rec.MergedContent += "\n" + strings.Join(rec.Keyphrases, ", ")
	}

	return rec
}

func firstValue(meta map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(meta[k]); v != "" {
			return v
		}
	}
	return ""
}

func parseTimeOr(raw string, fallback time.Time) time.Time {
	if ts, ok := parseTime(raw); ok {
		return ts
	}
	return fallback
}

func parseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
