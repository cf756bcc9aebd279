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

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/poiesic/blobsearch/core"
	"github.com/poiesic/blobsearch/index"
)

const (
	// DefaultAPIVersion is the REST API version sent with every request.
	DefaultAPIVersion = "2023-11-01"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	uploadAction = "upload"
)

// Index is a REST client for one Azure Cognitive Search index.
type Index struct {
	endpoint   string
	apiKey     string
	name       string
	apiVersion string
	client     *http.Client
	logger     *slog.Logger
}

var _ index.Index = (*Index)(nil)

// Option configures an Index.
type Option func(*Index) error

// WithAPIVersion overrides DefaultAPIVersion.
func WithAPIVersion(version string) Option {
	return func(i *Index) error {
		if version == "" {
			return fmt.Errorf("api version cannot be empty")
		}
		i.apiVersion = version
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(i *Index) error {
		if client == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		i.client = client
		return nil
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(i *Index) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", timeout)
		}
		i.client = &http.Client{Timeout: timeout}
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Index) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		i.logger = logger
		return nil
	}
}

// New creates a client for the index name on the search service at endpoint
// (for example https://<service>.search.windows.net).
func New(endpoint, apiKey, name string, opts ...Option) (*Index, error) {
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if err := index.ValidateName(name); err != nil {
		return nil, err
	}

	i := &Index{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		apiKey:     apiKey,
		name:       name,
		apiVersion: DefaultAPIVersion,
		client:     &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	i.logger = i.logger.With("component", "azure-search", "index", name)
	return i, nil
}

// Name returns the index name.
func (i *Index) Name() string {
	return i.name
}

// Exists issues GET /indexes/{name}; 404 means the index is not defined.
func (i *Index) Exists(ctx context.Context) (bool, error) {
	resp, err := i.do(ctx, http.MethodGet, "/indexes/"+url.PathEscape(i.name), nil)
	if err != nil {
		return false, err
	}
	defer drain(resp)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode < 300:
		return true, nil
	default:
		return false, statusError(resp)
	}
}

// Delete issues DELETE /indexes/{name}.
func (i *Index) Delete(ctx context.Context) error {
	resp, err := i.do(ctx, http.MethodDelete, "/indexes/"+url.PathEscape(i.name), nil)
	if err != nil {
		return err
	}
	defer drain(resp)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return index.ErrIndexNotFound
	case resp.StatusCode < 300:
		i.logger.Debug("deleted index")
		return nil
	default:
		return statusError(resp)
	}
}

// Create issues POST /indexes with the definition.
func (i *Index) Create(ctx context.Context, def *index.Definition) error {
	if def == nil {
		return fmt.Errorf("%w: definition is nil", index.ErrInvalidDefinition)
	}
	if def.Name != i.name {
		return fmt.Errorf("%w: definition is for %q, not %q", index.ErrInvalidDefinition, def.Name, i.name)
	}
	if err := def.Validate(); err != nil {
		return err
	}

	resp, err := i.do(ctx, http.MethodPost, "/indexes", def)
	if err != nil {
		return err
	}
	defer drain(resp)

	switch {
	case resp.StatusCode == http.StatusConflict:
		return index.ErrIndexExists
	case resp.StatusCode < 300:
		i.logger.Debug("created index", "fields", len(def.Fields))
		return nil
	default:
		return statusError(resp)
	}
}

// uploadDocument adds the indexing action to a record's JSON fields.
type uploadDocument struct {
	Action string `json:"@search.action"`
	*core.IndexRecord
}

type uploadRequest struct {
	Value []uploadDocument `json:"value"`
}

type uploadResult struct {
	Key          string  `json:"key"`
	Status       bool    `json:"status"`
	ErrorMessage *string `json:"errorMessage"`
	StatusCode   int     `json:"statusCode"`
}

type uploadResponse struct {
	Value []uploadResult `json:"value"`
}

// Upload issues POST /indexes/{name}/docs/index with one upload action per
// record. 200 and 207 responses yield per-record outcomes; any other status
// fails the whole submission.
func (i *Index) Upload(ctx context.Context, records []*core.IndexRecord) ([]core.UploadOutcome, error) {
	if len(records) == 0 {
		return []core.UploadOutcome{}, nil
	}

	req := uploadRequest{Value: make([]uploadDocument, 0, len(records))}
	for _, rec := range records {
		if rec == nil {
			continue
		}
		req.Value = append(req.Value, uploadDocument{Action: uploadAction, IndexRecord: rec})
	}

	resp, err := i.do(ctx, http.MethodPost, "/indexes/"+url.PathEscape(i.name)+"/docs/index", req)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusMultiStatus:
	case http.StatusNotFound:
		return nil, index.ErrIndexNotFound
	default:
		return nil, statusError(resp)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}

	outcomes := make([]core.UploadOutcome, 0, len(parsed.Value))
	for _, r := range parsed.Value {
		outcome := core.UploadOutcome{Key: r.Key, Succeeded: r.Status, StatusCode: r.StatusCode}
		if r.ErrorMessage != nil {
			outcome.Message = *r.ErrorMessage
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// Close releases idle connections.
func (i *Index) Close() error {
	i.client.CloseIdleConnections()
	return nil
}

func (i *Index) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	target := i.endpoint + path + "?api-version=" + url.QueryEscape(i.apiVersion)
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("api-key", i.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// statusError reads the service error message, if any, into an error
// wrapping ErrServiceStatus.
func statusError(resp *http.Response) error {
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error.Message != "" {
		return fmt.Errorf("%w: %d %s", ErrServiceStatus, resp.StatusCode, payload.Error.Message)
	}
	return fmt.Errorf("%w: %s", ErrServiceStatus, resp.Status)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
