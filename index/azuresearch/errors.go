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


package azuresearch

import "errors"

var (
	// ErrEndpointRequired indicates the search service endpoint is empty.
	ErrEndpointRequired = errors.New("azure search: endpoint is required")

	// ErrAPIKeyRequired indicates the admin API key is empty.
	ErrAPIKeyRequired = errors.New("azure search: api key is required")

	// ErrServiceStatus indicates the service answered with an unexpected status.
	ErrServiceStatus = errors.New("azure search: unexpected status")
)
