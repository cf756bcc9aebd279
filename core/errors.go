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
	"errors"
	"fmt"
	"strings"
)

// Domain validation errors
var (
	// ErrInvalidIndexRecord indicates an IndexRecord failed validation.
	ErrInvalidIndexRecord = errors.New("invalid index record")

	// ErrEmptyKey indicates the record key is empty.
	ErrEmptyKey = errors.New("record key cannot be empty")

	// ErrInvalidKey indicates the record key contains characters the index rejects.
	ErrInvalidKey = errors.New("record key contains invalid characters")

	// ErrInvalidStoragePath indicates a storage path could not be decoded.
	ErrInvalidStoragePath = errors.New("invalid storage path")
)

// Run stages that can fail fatally.
const (
	StageIndexReset  = "index_reset"
	StageEnumerating = "enumerating"
	StageProcessing  = "processing"
)

// Per-document processing steps.
const (
	StepGrant      = "grant"
	StepExtract    = "extract"
	StepAttributes = "attributes"
	StepNormalize  = "normalize"
	StepSetup      = "setup"
)

// FatalSetupError aborts a run. It is returned when the index cannot be reset
// or the document listing cannot be produced.
type FatalSetupError struct {
	Stage string
	Err   error
}

func (e *FatalSetupError) Error() string {
	return fmt.Sprintf("fatal error during %s: %v", e.Stage, e.Err)
}

func (e *FatalSetupError) Unwrap() error {
	return e.Err
}

// DocumentError is a failure isolated to one document.
type DocumentError struct {
	Document DocumentRef
	Step     string
	Err      error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %s failed at %s: %v", e.Document, e.Step, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// PublishError reports records that were not accepted by the index.
type PublishError struct {
	Keys []string
	Err  error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to index %d record(s) [%s]: %v", len(e.Keys), strings.Join(e.Keys, ", "), e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// EnumerationError reports a listing failure. Listed is the number of names
// retrieved before the failure; those partial results are discarded.
type EnumerationError struct {
	Prefix string
	Listed int
	Err    error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("listing %q failed after %d documents: %v", e.Prefix, e.Listed, e.Err)
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}
