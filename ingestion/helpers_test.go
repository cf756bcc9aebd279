package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/poiesic/blobsearch/blobstore"
	"github.com/poiesic/blobsearch/blobstore/mock"
	"github.com/poiesic/blobsearch/core"
	"github.com/poiesic/blobsearch/extract"
	extractmock "github.com/poiesic/blobsearch/extract/mock"
	"github.com/poiesic/blobsearch/index"
	"github.com/poiesic/blobsearch/index/badger"
	"github.com/stretchr/testify/require"
)

const testIndexName = "docs"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestStore creates a store holding n documents named doc-0000.txt and up.
func newTestStore(n int) *mock.MockStore {
	store := mock.NewMockStore("docs")
	for i := 0; i < n; i++ {
		store.Put(docName(i), []byte(fmt.Sprintf("Document %d written by Ada in Lisbon", i)))
	}
	return store
}

func docName(i int) string {
	return fmt.Sprintf("doc-%04d.txt", i)
}

func docKey(store blobstore.Store, name string) string {
	return core.EncodeStoragePath(core.StorageName(store.URL(), name))
}

// newTestBackend opens an in-memory badger backend closed at test end.
func newTestBackend(t *testing.T) *badger.Backend {
	t.Helper()
	backend, err := badger.OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return backend
}

func storeFactory(store blobstore.Store) StoreFactory {
	return func() (blobstore.Store, error) { return store, nil }
}

func extractorFactory() ExtractorFactory {
	return func(opener extract.Opener) (extract.Extractor, error) {
		return extractmock.NewMockExtractor(opener), nil
	}
}

func badgerFactory(backend *badger.Backend) IndexFactory {
	return func() (index.Index, error) {
		return badger.New(backend, testIndexName, nil)
	}
}

// newTestPipeline wires a pipeline over store and backend with quiet logging
// and no reset retries.
func newTestPipeline(t *testing.T, store blobstore.Store, backend *badger.Backend, opts ...Option) *Pipeline {
	t.Helper()
	base := []Option{WithLogger(quietLogger()), WithResetRetry(1, 0)}
	p, err := NewPipeline(storeFactory(store), extractorFactory(), badgerFactory(backend), append(base, opts...)...)
	require.NoError(t, err)
	return p
}

// searchIndex opens the badger index for assertions.
func searchIndex(t *testing.T, backend *badger.Backend) *badger.Index {
	t.Helper()
	idx, err := badger.New(backend, testIndexName, nil)
	require.NoError(t, err)
	return idx
}

// rejectingIndex fails the named keys per record and passes the rest through.
type rejectingIndex struct {
	index.Index
	reject map[string]bool
}

func (r *rejectingIndex) Upload(ctx context.Context, records []*core.IndexRecord) ([]core.UploadOutcome, error) {
	var accepted []*core.IndexRecord
	var rejected []core.UploadOutcome
	for _, rec := range records {
		if r.reject[rec.Key()] {
			rejected = append(rejected, core.UploadOutcome{Key: rec.Key(), StatusCode: 400, Message: "rejected"})
			continue
		}
		accepted = append(accepted, rec)
	}
	outcomes, err := r.Index.Upload(ctx, accepted)
	if err != nil {
		return nil, err
	}
	return append(outcomes, rejected...), nil
}

// stubIndex is an index.Index whose methods are overridable.
type stubIndex struct {
	ExistsFunc func(ctx context.Context) (bool, error)
	DeleteFunc func(ctx context.Context) error
	CreateFunc func(ctx context.Context, def *index.Definition) error
	UploadFunc func(ctx context.Context, records []*core.IndexRecord) ([]core.UploadOutcome, error)
}

func (s *stubIndex) Name() string { return testIndexName }

func (s *stubIndex) Exists(ctx context.Context) (bool, error) {
	if s.ExistsFunc != nil {
		return s.ExistsFunc(ctx)
	}
	return false, nil
}

func (s *stubIndex) Delete(ctx context.Context) error {
	if s.DeleteFunc != nil {
		return s.DeleteFunc(ctx)
	}
	return nil
}

func (s *stubIndex) Create(ctx context.Context, def *index.Definition) error {
	if s.CreateFunc != nil {
		return s.CreateFunc(ctx, def)
	}
	return nil
}

func (s *stubIndex) Upload(ctx context.Context, records []*core.IndexRecord) ([]core.UploadOutcome, error) {
	if s.UploadFunc != nil {
		return s.UploadFunc(ctx, records)
	}
	outcomes := make([]core.UploadOutcome, len(records))
	for i, rec := range records {
		outcomes[i] = core.UploadOutcome{Key: rec.Key(), Succeeded: true, StatusCode: 200}
	}
	return outcomes, nil
}

func (s *stubIndex) Close() error { return nil }
