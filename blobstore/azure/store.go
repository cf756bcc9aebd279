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


package azure

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/poiesic/blobsearch/blobstore"
	"github.com/poiesic/blobsearch/core"
)

const defaultEndpointFormat = "https://%s.blob.core.windows.net"

// Store is a blobstore.Store backed by one Azure Blob Storage container.
type Store struct {
	client        *container.Client
	containerName string
	pageSize      int32
	logger        *slog.Logger
}

var _ blobstore.Store = (*Store)(nil)

type settings struct {
	endpoint   string
	pageSize   int32
	logger     *slog.Logger
	clientOpts *container.ClientOptions
}

// Option configures a Store.
type Option func(*settings) error

// WithEndpoint overrides the account endpoint, e.g. for the Azurite emulator
// ("http://127.0.0.1:10000/devstoreaccount1").
func WithEndpoint(endpoint string) Option {
	return func(s *settings) error {
		if endpoint == "" {
			return errors.New("azure: endpoint cannot be empty")
		}
		s.endpoint = strings.TrimRight(endpoint, "/")
		return nil
	}
}

// WithPageSize sets the number of names requested per listing page.
// Default is 100.
func WithPageSize(size int32) Option {
	return func(s *settings) error {
		if size < 1 {
			size = 1
		}
		s.pageSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithClientOptions sets azblob client options (retry policy, transport).
func WithClientOptions(opts *container.ClientOptions) Option {
	return func(s *settings) error {
		s.clientOpts = opts
		return nil
	}
}

// New opens a container with shared-key credentials.
func New(account, key, containerName string, opts ...Option) (*Store, error) {
	if containerName == "" {
		return nil, blobstore.ErrContainerRequired
	}
	if account == "" || key == "" {
		return nil, ErrCredentialsRequired
	}

	s := &settings{
		endpoint: fmt.Sprintf(defaultEndpointFormat, account),
		pageSize: 100,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	cred, err := container.NewSharedKeyCredential(account, key)
	if err != nil {
		return nil, fmt.Errorf("azure: invalid shared key: %w", err)
	}

	client, err := container.NewClientWithSharedKeyCredential(s.endpoint+"/"+containerName, cred, s.clientOpts)
	if err != nil {
		return nil, err
	}

	return &Store{
		client:        client,
		containerName: containerName,
		pageSize:      s.pageSize,
		logger:        s.logger.With("component", "azure-store", "container", containerName),
	}, nil
}

// URL returns the container URL.
func (s *Store) URL() string {
	return s.client.URL()
}

// Container returns the container name.
func (s *Store) Container() string {
	return s.containerName
}

// List pages through the flat blob listing under prefix.
func (s *Store) List(ctx context.Context, prefix string, fn blobstore.ListFunc) error {
	pageSize := s.pageSize
	opts := &container.ListBlobsFlatOptions{MaxResults: &pageSize}
	if prefix != "" {
		opts.Prefix = &prefix
	}

	pager := s.client.NewListBlobsFlatPager(opts)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("azure: list blobs: %w", err)
		}
		if resp.Segment == nil {
			continue
		}
		for _, item := range resp.Segment.BlobItems {
			if item == nil || item.Name == nil {
				continue
			}
			if err := fn(*item.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Grant returns a read-only SAS URL for the blob.
func (s *Store) Grant(_ context.Context, name string, start, expiry time.Time) (string, error) {
	start = start.UTC()
	uri, err := s.client.NewBlobClient(name).GetSASURL(
		sas.BlobPermissions{Read: true},
		expiry.UTC(),
		&blob.GetSASURLOptions{StartTime: &start},
	)
	if err != nil {
		return "", fmt.Errorf("azure: sas for %s: %w", name, err)
	}
	return uri, nil
}

// Open downloads the blob behind a SAS URL.
func (s *Store) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	client, err := blob.NewClientWithNoCredential(uri, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", blobstore.ErrGrantInvalid, err)
	}
	resp, err := client.DownloadStream(ctx, nil)
	if err != nil {
		return nil, translate(err)
	}
	return resp.Body, nil
}

// Attributes fetches the blob properties.
func (s *Store) Attributes(ctx context.Context, name string) (*core.Attributes, error) {
	props, err := s.client.NewBlobClient(name).GetProperties(ctx, nil)
	if err != nil {
		return nil, translate(err)
	}

	attrs := &core.Attributes{}
	if props.ContentType != nil {
		attrs.ContentType = *props.ContentType
	}
	if props.ContentLength != nil {
		attrs.Size = *props.ContentLength
	}
	if len(props.ContentMD5) > 0 {
		attrs.ContentMD5 = base64.StdEncoding.EncodeToString(props.ContentMD5)
	}
	if props.LastModified != nil {
		attrs.LastModified = props.LastModified.UTC()
	}
	return attrs, nil
}

// Close is a no-op; azblob clients hold no resources beyond the shared transport.
func (s *Store) Close() error {
	return nil
}

func translate(err error) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return fmt.Errorf("%w: %w", blobstore.ErrNotFound, err)
	}
	if bloberror.HasCode(err, bloberror.AuthenticationFailed, bloberror.AuthorizationFailure) {
		return fmt.Errorf("%w: %w", blobstore.ErrGrantInvalid, err)
	}
	return err
}
