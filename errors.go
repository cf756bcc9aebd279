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


package blobsearch

import "errors"

var (
	// ErrConfigRequired is returned when New is called without a config.
	ErrConfigRequired = errors.New("config required")

	// ErrUnsupported is returned for component types this build cannot create.
	ErrUnsupported = errors.New("unsupported component")

	// ErrListFailed wraps listing failures from ListDocuments.
	ErrListFailed = errors.New("listing documents failed")
)
