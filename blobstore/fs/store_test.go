package fs

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/blobsearch/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T, files map[string]string, opts ...Option) *Store {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "docs")
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	opts = append([]Option{WithSecret([]byte("test-secret"))}, opts...)
	s, err := New(root, "docs", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew(t *testing.T) {
	_, err := New(t.TempDir(), "")
	assert.ErrorIs(t, err, blobstore.ErrContainerRequired)

	_, err = New(t.TempDir(), "missing")
	assert.Error(t, err)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "file"), []byte("x"), 0644))
	_, err = New(root, "file")
	assert.Error(t, err)

	require.NoError(t, os.Mkdir(filepath.Join(root, "c"), 0755))
	_, err = New(root, "c", WithSecret(nil))
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	s := setupStore(t, map[string]string{
		"b.txt":         "b",
		"a.txt":         "a",
		"sub/c.txt":     "c",
		"sub/deep/d.md": "d",
		"other/e.txt":   "e",
	})

	names, err := blobstore.ListAll(context.Background(), s, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt", "other/e.txt", "sub/c.txt", "sub/deep/d.md"}, names)

	names, err = blobstore.ListAll(context.Background(), s, "sub/")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/c.txt", "sub/deep/d.md"}, names)
}

func TestListCancelled(t *testing.T) {
	s := setupStore(t, map[string]string{"a.txt": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := blobstore.ListAll(ctx, s, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGrantAndOpen(t *testing.T) {
	s := setupStore(t, map[string]string{"sub/a.txt": "hello"})
	now := time.Now()
	start, expiry := blobstore.GrantWindow(now)

	uri, err := s.Grant(context.Background(), "sub/a.txt", start, expiry)
	require.NoError(t, err)

	u, err := url.Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "file", u.Scheme)
	assert.Equal(t, "r", u.Query().Get("sp"))

	rc, err := s.Open(context.Background(), uri)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestOpenRejectsTamperedGrant(t *testing.T) {
	s := setupStore(t, map[string]string{"a.txt": "a", "b.txt": "b"})
	start, expiry := blobstore.GrantWindow(time.Now())

	uri, err := s.Grant(context.Background(), "a.txt", start, expiry)
	require.NoError(t, err)

	u, _ := url.Parse(uri)
	u.Path = filepath.ToSlash(filepath.Join(s.dir, "b.txt"))
	_, err = s.Open(context.Background(), u.String())
	assert.ErrorIs(t, err, blobstore.ErrGrantInvalid)

	u, _ = url.Parse(uri)
	q := u.Query()
	q.Set("se", "2999-01-01T00:00:00Z")
	u.RawQuery = q.Encode()
	_, err = s.Open(context.Background(), u.String())
	assert.ErrorIs(t, err, blobstore.ErrGrantInvalid)

	_, err = s.Open(context.Background(), "https://example.com/a.txt")
	assert.ErrorIs(t, err, blobstore.ErrGrantInvalid)
}

func TestOpenRejectsForeignSecret(t *testing.T) {
	s := setupStore(t, map[string]string{"a.txt": "a"})
	other, err := New(filepath.Dir(s.dir), "docs", WithSecret([]byte("another-secret")))
	require.NoError(t, err)

	start, expiry := blobstore.GrantWindow(time.Now())
	uri, err := other.Grant(context.Background(), "a.txt", start, expiry)
	require.NoError(t, err)

	_, err = s.Open(context.Background(), uri)
	assert.ErrorIs(t, err, blobstore.ErrGrantInvalid)
}

func TestOpenOutsideWindow(t *testing.T) {
	granted := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"within backdate", granted.Add(-4 * time.Minute), nil},
		{"before start", granted.Add(-10 * time.Minute), blobstore.ErrGrantExpired},
		{"just before expiry", granted.Add(23 * time.Hour), nil},
		{"after expiry", granted.Add(25 * time.Hour), blobstore.ErrGrantExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupStore(t, map[string]string{"a.txt": "a"}, WithClock(func() time.Time { return tt.now }))
			start, expiry := blobstore.GrantWindow(granted)
			uri, err := s.Grant(context.Background(), "a.txt", start, expiry)
			require.NoError(t, err)

			rc, err := s.Open(context.Background(), uri)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			rc.Close()
		})
	}
}

func TestOpenMissingDocument(t *testing.T) {
	s := setupStore(t, map[string]string{})
	start, expiry := blobstore.GrantWindow(time.Now())
	uri, err := s.Grant(context.Background(), "gone.txt", start, expiry)
	require.NoError(t, err)

	_, err = s.Open(context.Background(), uri)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestGrantOutsideContainer(t *testing.T) {
	s := setupStore(t, map[string]string{})
	start, expiry := blobstore.GrantWindow(time.Now())
	_, err := s.Grant(context.Background(), "../escape.txt", start, expiry)
	assert.ErrorIs(t, err, blobstore.ErrGrantInvalid)
}

func TestDotPrefixedNames(t *testing.T) {
	s := setupStore(t, map[string]string{"..notes.txt": "dotted", "sub/..hidden.md": "deep"})

	names, err := blobstore.ListAll(context.Background(), s, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"..notes.txt", "sub/..hidden.md"}, names)

	start, expiry := blobstore.GrantWindow(time.Now())
	for _, name := range names {
		uri, err := s.Grant(context.Background(), name, start, expiry)
		require.NoError(t, err, name)

		rc, err := s.Open(context.Background(), uri)
		require.NoError(t, err, name)
		_, err = io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)

		_, err = s.Attributes(context.Background(), name)
		require.NoError(t, err, name)
	}
}

func TestAttributes(t *testing.T) {
	body := "plain text body"
	s := setupStore(t, map[string]string{"a.txt": body})

	attrs, err := s.Attributes(context.Background(), "a.txt")
	require.NoError(t, err)

	sum := md5.Sum([]byte(body))
	assert.Equal(t, int64(len(body)), attrs.Size)
	assert.Equal(t, base64.StdEncoding.EncodeToString(sum[:]), attrs.ContentMD5)
	assert.Contains(t, attrs.ContentType, "text/plain")
	assert.False(t, attrs.LastModified.IsZero())

	_, err = s.Attributes(context.Background(), "missing.txt")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestURL(t *testing.T) {
	s := setupStore(t, map[string]string{})
	assert.Equal(t, "docs", s.Container())
	assert.Contains(t, s.URL(), "file://")
	assert.Contains(t, s.URL(), "/docs")
}
