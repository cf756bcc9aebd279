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


package fs

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/blobsearch/blobstore"
	"github.com/poiesic/blobsearch/core"
)

const (
	permRead   = "r"
	timeFormat = "2006-01-02T15:04:05Z"
)

// Store is a blobstore.Store over a local directory. The container is a
// sub-directory of root.
type Store struct {
	dir           string
	containerName string
	secret        []byte
	now           func() time.Time
	logger        *slog.Logger
}

var _ blobstore.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithSecret sets the key used to sign grants. Stores sharing a secret accept
// each other's grants. Default is a random per-store key.
func WithSecret(secret []byte) Option {
	return func(s *Store) error {
		if len(secret) == 0 {
			return errors.New("fs: grant secret cannot be empty")
		}
		if len(secret) > 64 {
			return errors.New("fs: grant secret cannot exceed 64 bytes")
		}
		s.secret = secret
		return nil
	}
}

// WithClock sets the time source used to check grant windows.
func WithClock(now func() time.Time) Option {
	return func(s *Store) error {
		if now == nil {
			now = time.Now
		}
		s.now = now
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New opens the container directory root/containerName. The directory must exist.
func New(root, containerName string, opts ...Option) (*Store, error) {
	if containerName == "" {
		return nil, blobstore.ErrContainerRequired
	}

	dir, err := filepath.Abs(filepath.Join(root, containerName))
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("fs: container %s: %w", containerName, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fs: %s is not a directory", dir)
	}

	s := &Store{
		dir:           dir,
		containerName: containerName,
		now:           time.Now,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.secret == nil {
		s.secret = make([]byte, 32)
		if _, err := rand.Read(s.secret); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "fs-store", "container", containerName)

	return s, nil
}

// URL returns the container directory as a file URL.
func (s *Store) URL() string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(s.dir)}).String()
}

// Container returns the container name.
func (s *Store) Container() string {
	return s.containerName
}

// List walks the container in lexical order and reports every regular file
// whose slash-separated relative name starts with prefix.
func (s *Store) List(ctx context.Context, prefix string, fn blobstore.ListFunc) error {
	return filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		return fn(name)
	})
}

// Grant returns a signed read-only file URL.
func (s *Store) Grant(_ context.Context, name string, start, expiry time.Time) (string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}

	st := start.UTC().Format(timeFormat)
	se := expiry.UTC().Format(timeFormat)

	q := url.Values{}
	q.Set("sp", permRead)
	q.Set("st", st)
	q.Set("se", se)
	q.Set("sig", s.sign(permRead, st, se, name))

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path), RawQuery: q.Encode()}
	return u.String(), nil
}

// Open verifies a grant and opens the file behind it.
func (s *Store) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return nil, fmt.Errorf("%w: not a file grant", blobstore.ErrGrantInvalid)
	}

	rel, err := filepath.Rel(s.dir, filepath.FromSlash(u.Path))
	if err != nil || rel == "." || !filepath.IsLocal(rel) {
		return nil, fmt.Errorf("%w: outside container", blobstore.ErrGrantInvalid)
	}
	name := filepath.ToSlash(rel)

	q := u.Query()
	sp, st, se := q.Get("sp"), q.Get("st"), q.Get("se")
	if sp != permRead {
		return nil, fmt.Errorf("%w: missing read permission", blobstore.ErrGrantInvalid)
	}
	want := s.sign(sp, st, se, name)
	if subtle.ConstantTimeCompare([]byte(want), []byte(q.Get("sig"))) != 1 {
		return nil, fmt.Errorf("%w: signature mismatch", blobstore.ErrGrantInvalid)
	}

	start, err := time.Parse(timeFormat, st)
	if err != nil {
		return nil, fmt.Errorf("%w: bad start time", blobstore.ErrGrantInvalid)
	}
	expiry, err := time.Parse(timeFormat, se)
	if err != nil {
		return nil, fmt.Errorf("%w: bad expiry time", blobstore.ErrGrantInvalid)
	}
	now := s.now()
	if now.Before(start) || now.After(expiry) {
		return nil, blobstore.ErrGrantExpired
	}

	f, err := os.Open(filepath.Join(s.dir, rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", blobstore.ErrNotFound, name)
		}
		return nil, err
	}
	return f, nil
}

// Attributes reports size, modification time, sniffed content type and the
// base64 MD5 of the content.
func (s *Store) Attributes(ctx context.Context, name string) (*core.Attributes, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", blobstore.ErrNotFound, name)
		}
		return nil, err
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, err
	}

	sum, err := md5File(ctx, path)
	if err != nil {
		return nil, err
	}

	return &core.Attributes{
		ContentType:  mtype.String(),
		Size:         info.Size(),
		ContentMD5:   base64.StdEncoding.EncodeToString(sum),
		LastModified: info.ModTime().UTC(),
	}, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// resolve maps a document name to a path inside the container.
func (s *Store) resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", blobstore.ErrNotFound)
	}
	path := filepath.Join(s.dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(s.dir, path)
	if err != nil || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s is outside the container", blobstore.ErrGrantInvalid, name)
	}
	return path, nil
}

func (s *Store) sign(perm, start, expiry, name string) string {
	h, _ := blake2b.New(32, s.secret)
	h.Write([]byte(perm + "\n" + start + "\n" + expiry + "\n" + name))
	return hex.EncodeToString(h.Sum(nil))
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func md5File(ctx context.Context, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, &ctxReader{ctx: ctx, r: f}); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
