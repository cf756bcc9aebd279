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
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Fingerprint returns a stable hex digest of text using BLAKE2b.
// Identical text always produces the identical fingerprint.
func Fingerprint(text string) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentRef identifies one document in the object store.
type DocumentRef struct {
	Container string
	Name      string // Path of the document relative to the container root
}

// String returns "container/name".
func (r DocumentRef) String() string {
	return r.Container + "/" + r.Name
}

// Batch is an ordered group of document references processed by one worker.
type Batch struct {
	ID   int
	Refs []DocumentRef
}

// Len returns the number of documents in the batch.
func (b Batch) Len() int {
	return len(b.Refs)
}

// Attributes are the properties the object store maintains for a document.
// When present they take precedence over anything the extractor reported.
type Attributes struct {
	ContentType  string
	Size         int64
	ContentMD5   string // base64, as reported by the store
	LastModified time.Time
}

// Extraction is the output of a content extractor.
type Extraction struct {
	Text     string
	Metadata map[string]string // Multi-valued entries are joined with ", "
	Pages    []string          // Per-page text when the extractor can split pages
}

// Entities holds optional enrichment for a document.
type Entities struct {
	People        []string
	Organizations []string
	Locations     []string
	Keyphrases    []string
	Language      string
}

// IsEmpty reports whether no enrichment value is set.
func (e *Entities) IsEmpty() bool {
	if e == nil {
		return true
	}
	return len(e.People) == 0 && len(e.Organizations) == 0 && len(e.Locations) == 0 &&
		len(e.Keyphrases) == 0 && e.Language == ""
}

// IndexRecord is the structured record written to the search index.
// StoragePath is the index key.
type IndexRecord struct {
	Content                string     `json:"content"`
	StorageContentType     string     `json:"metadata_storage_content_type"`
	StorageSize            int64      `json:"metadata_storage_size"`
	StorageLastModified    time.Time  `json:"metadata_storage_last_modified"`
	StorageContentChecksum string     `json:"metadata_storage_content_md5"`
	StorageName            string     `json:"metadata_storage_name"`
	StoragePath            string     `json:"metadata_storage_path"`
	ContentType            *string    `json:"metadata_content_type"`
	Author                 string     `json:"metadata_author"`
	CharacterCount         int        `json:"metadata_character_count"`
	CreationDate           *time.Time `json:"metadata_creation_date"`
	LastModified           time.Time  `json:"metadata_last_modified"`
	PageCount              int        `json:"metadata_page_count"`
	WordCount              int        `json:"metadata_word_count"`
	People                 []string   `json:"people"`
	Organizations          []string   `json:"organizations"`
	Locations              []string   `json:"locations"`
	Keyphrases             []string   `json:"keyphrases"`
	Language               string     `json:"language"`
	MergedContent          string     `json:"merged_content"`
	Text                   string     `json:"text"`
	LayoutText             string     `json:"layoutText"`
}

// Key returns the index key of the record.
func (r *IndexRecord) Key() string {
	return r.StoragePath
}

// UploadOutcome reports the result of uploading one record.
type UploadOutcome struct {
	Key        string
	Succeeded  bool
	StatusCode int
	Message    string
}
