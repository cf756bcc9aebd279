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

import "errors"

var (
	// ErrIndexNameRequired indicates the index name is empty.
	ErrIndexNameRequired = errors.New("index name is required")

	// ErrInvalidName indicates the index name uses characters the service rejects.
	ErrInvalidName = errors.New("invalid index name")

	// ErrInvalidDefinition indicates an index definition is malformed.
	ErrInvalidDefinition = errors.New("invalid index definition")

	// ErrIndexNotFound indicates the index is not defined.
	ErrIndexNotFound = errors.New("index not found")

	// ErrIndexExists indicates Create was called for an index that already exists.
	ErrIndexExists = errors.New("index already exists")

	// ErrRecordNotFound indicates no record is stored under the requested key.
	ErrRecordNotFound = errors.New("record not found")
)
