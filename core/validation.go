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
	"fmt"
)

// ValidateIndexRecord validates an IndexRecord before upload.
//
// Validation rules:
//   - record must not be nil
//   - StoragePath (the key) must not be empty
//   - StoragePath may only contain letters, digits, '_', '-' and '='
//
// NOT validated:
//   - Content (empty documents are indexed)
//   - entity lists (enrichment is optional)
func ValidateIndexRecord(record *IndexRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidIndexRecord)
	}

	if record.StoragePath == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIndexRecord, ErrEmptyKey)
	}

	if !IsValidKey(record.StoragePath) {
		return fmt.Errorf("%w: %w", ErrInvalidIndexRecord, ErrInvalidKey)
	}

	return nil
}

// IsValidKey reports whether key only uses characters accepted for index keys.
func IsValidKey(key string) bool {
	if key == "" {
		return false
	}
	for _, c := range key {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '_', c == '-', c == '=':
		default:
			return false
		}
	}
	return true
}
