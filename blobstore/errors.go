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


package blobstore

import "errors"

var (
	// ErrNotFound indicates the named document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrGrantExpired indicates a grant is used outside its validity window.
	ErrGrantExpired = errors.New("access grant is not valid at this time")

	// ErrGrantInvalid indicates a grant URI is malformed or its signature does not match.
	ErrGrantInvalid = errors.New("invalid access grant")

	// ErrContainerRequired indicates no container name was configured.
	ErrContainerRequired = errors.New("container name is required")
)
