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

import "errors"

var (
	// ErrOpenerRequired indicates no Opener was provided.
	ErrOpenerRequired = errors.New("extract: opener is required")

	// ErrUnsupportedContent indicates the document type cannot be extracted.
	ErrUnsupportedContent = errors.New("extract: unsupported content type")

	// ErrDocumentTooLarge indicates a document exceeds the configured MaxBytes.
	ErrDocumentTooLarge = errors.New("extract: document exceeds size limit")

	// ErrServiceStatus indicates the extraction service returned a non-success status.
	ErrServiceStatus = errors.New("extract: service returned an error status")
)
