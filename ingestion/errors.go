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


package ingestion

import "errors"

var (
	// ErrStoreFactoryRequired is returned when no store factory is provided.
	ErrStoreFactoryRequired = errors.New("store factory required")

	// ErrExtractorFactoryRequired is returned when no extractor factory is provided.
	ErrExtractorFactoryRequired = errors.New("extractor factory required")

	// ErrIndexFactoryRequired is returned when no index factory is provided.
	ErrIndexFactoryRequired = errors.New("index factory required")

	// ErrRunInProgress is returned when Run is called while another run is active.
	ErrRunInProgress = errors.New("pipeline run already in progress")

	// ErrInvalidMaxAttempts is returned when retry is configured with no attempts.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")

	// ErrNoResult is recorded for records the index did not report on.
	ErrNoResult = errors.New("index reported no result for record")
)
