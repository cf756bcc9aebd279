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


package index

import (
	"fmt"
)

// Field data types.
const (
	TypeString           = "Edm.String"
	TypeInt32            = "Edm.Int32"
	TypeInt64            = "Edm.Int64"
	TypeDateTimeOffset   = "Edm.DateTimeOffset"
	TypeStringCollection = "Collection(Edm.String)"
)

// AnalyzerEnglish is the language analyzer applied to searchable text fields.
const AnalyzerEnglish = "en.microsoft"

// SuggesterPrefix is prepended to the index name to name its suggester.
const SuggesterPrefix = "sg-"

// Field describes one index field. All flags are sent explicitly because the
// service defaults several of them to true.
type Field struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Key         bool   `json:"key"`
	Searchable  bool   `json:"searchable"`
	Filterable  bool   `json:"filterable"`
	Facetable   bool   `json:"facetable"`
	Sortable    bool   `json:"sortable"`
	Retrievable bool   `json:"retrievable"`
	Analyzer    string `json:"analyzer,omitempty"`
}

// Suggester enables type-ahead over a set of source fields.
type Suggester struct {
	Name         string   `json:"name"`
	SearchMode   string   `json:"searchMode"`
	SourceFields []string `json:"sourceFields"`
}

// Definition is the full schema of an index.
type Definition struct {
	Name       string      `json:"name"`
	Fields     []Field     `json:"fields"`
	Suggesters []Suggester `json:"suggesters,omitempty"`
}

// KeyField returns the name of the key field.
func (d *Definition) KeyField() string {
	for _, f := range d.Fields {
		if f.Key {
			return f.Name
		}
	}
	return ""
}

// SearchableFields returns the names of the searchable fields in order.
func (d *Definition) SearchableFields() []string {
	var names []string
	for _, f := range d.Fields {
		if f.Searchable {
			names = append(names, f.Name)
		}
	}
	return names
}

// Validate checks that the definition names exactly one string key field and
// that suggesters reference existing fields.
func (d *Definition) Validate() error {
	if err := ValidateName(d.Name); err != nil {
		return err
	}

	byName := make(map[string]Field, len(d.Fields))
	keys := 0
	for _, f := range d.Fields {
		if _, dup := byName[f.Name]; dup {
			return fmt.Errorf("%w: duplicate field %s", ErrInvalidDefinition, f.Name)
		}
		byName[f.Name] = f
		if f.Key {
			keys++
			if f.Type != TypeString {
				return fmt.Errorf("%w: key field %s must be %s", ErrInvalidDefinition, f.Name, TypeString)
			}
		}
	}
	if keys != 1 {
		return fmt.Errorf("%w: expected one key field, found %d", ErrInvalidDefinition, keys)
	}

	for _, s := range d.Suggesters {
		for _, name := range s.SourceFields {
			if _, ok := byName[name]; !ok {
				return fmt.Errorf("%w: suggester %s references unknown field %s", ErrInvalidDefinition, s.Name, name)
			}
		}
	}
	return nil
}

func text(name string) Field {
	return Field{Name: name, Type: TypeString, Searchable: true, Retrievable: true, Analyzer: AnalyzerEnglish}
}

func sortable(name, typ string) Field {
	return Field{Name: name, Type: typ, Filterable: true, Facetable: true, Sortable: true, Retrievable: true}
}

func entityList(name string) Field {
	return Field{Name: name, Type: TypeStringCollection, Searchable: true, Filterable: true, Facetable: true, Retrievable: true, Analyzer: AnalyzerEnglish}
}

// DefaultDefinition returns the document index schema with a suggester named
// "sg-<name>" over people, organizations and locations.
func DefaultDefinition(name string) *Definition {
	return &Definition{
		Name: name,
		Fields: []Field{
			text("content"),
			{Name: "metadata_storage_content_type", Type: TypeString, Searchable: true, Filterable: true, Facetable: true, Retrievable: true},
			sortable("metadata_storage_size", TypeInt64),
			sortable("metadata_storage_last_modified", TypeDateTimeOffset),
			{Name: "metadata_storage_content_md5", Type: TypeString, Retrievable: true},
			text("metadata_storage_name"),
			{Name: "metadata_storage_path", Type: TypeString, Key: true, Retrievable: true},
			sortable("metadata_content_type", TypeString),
			{Name: "metadata_author", Type: TypeString, Searchable: true, Filterable: true, Facetable: true, Retrievable: true, Analyzer: AnalyzerEnglish},
			sortable("metadata_character_count", TypeInt32),
			sortable("metadata_creation_date", TypeDateTimeOffset),
			sortable("metadata_last_modified", TypeDateTimeOffset),
			sortable("metadata_page_count", TypeInt32),
			sortable("metadata_word_count", TypeInt32),
			entityList("people"),
			entityList("organizations"),
			entityList("locations"),
			entityList("keyphrases"),
			{Name: "language", Type: TypeString, Filterable: true, Facetable: true, Retrievable: true},
			text("merged_content"),
			text("text"),
			{Name: "layoutText", Type: TypeString, Retrievable: true},
		},
		Suggesters: []Suggester{{
			Name:         SuggesterPrefix + name,
			SearchMode:   "analyzingInfixMatching",
			SourceFields: []string{"people", "organizations", "locations"},
		}},
	}
}

// ValidateName checks an index name: lower-case letters, digits and dashes,
// starting with a letter or digit, at most 128 characters.
func ValidateName(name string) error {
	if name == "" {
		return ErrIndexNameRequired
	}
	if len(name) > 128 {
		return fmt.Errorf("%w: %q is longer than 128 characters", ErrInvalidName, name)
	}
	for i, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '-' && i > 0:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	return nil
}
