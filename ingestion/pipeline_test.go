package ingestion

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/blobsearch/blobstore"
	"github.com/poiesic/blobsearch/core"
	enrichmock "github.com/poiesic/blobsearch/enrich/mock"
	"github.com/poiesic/blobsearch/extract"
	extractmock "github.com/poiesic/blobsearch/extract/mock"
	"github.com/poiesic/blobsearch/index"
	"github.com/poiesic/blobsearch/index/badger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineRequiresFactories(t *testing.T) {
	store := newTestStore(0)

	_, err := NewPipeline(nil, extractorFactory(), badgerFactory(nil))
	assert.ErrorIs(t, err, ErrStoreFactoryRequired)

	_, err = NewPipeline(storeFactory(store), nil, badgerFactory(nil))
	assert.ErrorIs(t, err, ErrExtractorFactoryRequired)

	_, err = NewPipeline(storeFactory(store), extractorFactory(), nil)
	assert.ErrorIs(t, err, ErrIndexFactoryRequired)

	_, err = NewPipeline(storeFactory(store), extractorFactory(), badgerFactory(nil), WithBatchSize(0))
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "index_reset", StateIndexReset.String())
	assert.Equal(t, "enumerating", StateEnumerating.String())
	assert.Equal(t, "processing", StateProcessing.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "state(9)", State(9).String())
}

func TestRunIndexesEveryDocument(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(250)
	backend := newTestBackend(t)
	var progress bytes.Buffer

	p := newTestPipeline(t, store, backend, WithProgress(&progress, 100))
	assert.Equal(t, StateIdle, p.State())

	summary, err := p.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, StateDone, p.State())
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 250, summary.Enumerated)
	assert.Equal(t, 3, summary.Batches)
	assert.Equal(t, int64(250), summary.Completed)
	assert.Equal(t, int64(250), summary.Indexed)
	assert.Zero(t, summary.Failed())
	assert.Equal(t, 250, store.GrantCount())

	idx := searchIndex(t, backend)
	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 250, count)

	rec, err := idx.Get(ctx, docKey(store, docName(42)))
	require.NoError(t, err)
	assert.Equal(t, "Document 42 written by Ada in Lisbon", rec.Content)
	assert.Equal(t, "mem://docs/doc-0042.txt", rec.StorageName)
	assert.Equal(t, "text/plain", rec.StorageContentType)

	def, err := idx.Definition(ctx)
	require.NoError(t, err)
	require.Len(t, def.Suggesters, 1)
	assert.Equal(t, "sg-docs", def.Suggesters[0].Name)

	assert.Contains(t, progress.String(), "Completed 250/250 docs in ")
}

// failingExtractors reads documents through the opener and fails the ones
// whose grant URI contains any of the broken names.
func failingExtractors(broken ...string) ExtractorFactory {
	return func(opener extract.Opener) (extract.Extractor, error) {
		m := extractmock.NewMockExtractor(opener)
		m.ExtractFunc = func(ctx context.Context, uri string) (*core.Extraction, error) {
			for _, name := range broken {
				if strings.Contains(uri, name) {
					return nil, errors.New("fetch failed")
				}
			}
			body, err := opener.Open(ctx, uri)
			if err != nil {
				return nil, err
			}
			defer body.Close()
			data, err := io.ReadAll(body)
			if err != nil {
				return nil, err
			}
			return &core.Extraction{Text: string(data), Metadata: map[string]string{}}, nil
		}
		return m, nil
	}
}

func TestRunIsolatesFetchFailure(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(250)
	broken := docName(137)
	backend := newTestBackend(t)

	p, err := NewPipeline(storeFactory(store), failingExtractors(broken), badgerFactory(backend),
		WithLogger(quietLogger()), WithResetRetry(1, 0))
	require.NoError(t, err)

	summary, err := p.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(250), summary.Completed)
	assert.Equal(t, int64(1), summary.DocumentErrors)
	assert.Equal(t, int64(249), summary.Indexed)
	assert.Equal(t, int64(1), summary.Failed())

	idx := searchIndex(t, backend)
	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 249, count)

	_, err = idx.Get(ctx, docKey(store, broken))
	assert.ErrorIs(t, err, index.ErrRecordNotFound)
	_, err = idx.Get(ctx, docKey(store, docName(138)))
	assert.NoError(t, err, "the rest of the batch continues")
}

func TestRunIsolatesGrantAndAttributeFailures(t *testing.T) {
	store := newTestStore(10)
	store.GrantFunc = func(ctx context.Context, name string, start, expiry time.Time) (string, error) {
		if name == docName(5) {
			return "", blobstore.ErrGrantInvalid
		}
		return store.URL() + "/" + name, nil
	}
	store.AttributesFunc = func(ctx context.Context, name string) (*core.Attributes, error) {
		if name == docName(3) {
			return nil, blobstore.ErrNotFound
		}
		return &core.Attributes{ContentType: "text/plain"}, nil
	}
	backend := newTestBackend(t)
	p := newTestPipeline(t, store, backend)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.DocumentErrors)
	assert.Equal(t, int64(8), summary.Indexed)
	assert.Equal(t, int64(10), summary.Completed)

	idx := searchIndex(t, backend)
	for _, i := range []int{3, 5} {
		_, err := idx.Get(context.Background(), docKey(store, docName(i)))
		assert.ErrorIs(t, err, index.ErrRecordNotFound, docName(i))
	}
	_, err = idx.Get(context.Background(), docKey(store, docName(4)))
	assert.NoError(t, err)
}

func TestRunPerRecordPublishFailure(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(250)
	backend := newTestBackend(t)
	rejected := docKey(store, docName(7))

	indexes := func() (index.Index, error) {
		inner, err := badger.New(backend, testIndexName, nil)
		if err != nil {
			return nil, err
		}
		return &rejectingIndex{Index: inner, reject: map[string]bool{rejected: true}}, nil
	}
	p, err := NewPipeline(storeFactory(store), extractorFactory(), indexes,
		WithLogger(quietLogger()), WithResetRetry(1, 0))
	require.NoError(t, err)

	summary, err := p.Run(ctx)
	require.NoError(t, err)

	assert.Zero(t, summary.DocumentErrors)
	assert.Equal(t, int64(1), summary.PublishErrors)
	assert.Equal(t, int64(249), summary.Indexed)

	count, err := searchIndex(t, backend).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 249, count)
}

// snapshot returns every record of the index keyed by index key.
func snapshot(t *testing.T, backend *badger.Backend, store blobstore.Store, n int) map[string]*core.IndexRecord {
	t.Helper()
	idx := searchIndex(t, backend)
	out := make(map[string]*core.IndexRecord, n)
	for i := 0; i < n; i++ {
		key := docKey(store, docName(i))
		rec, err := idx.Get(context.Background(), key)
		if errors.Is(err, index.ErrRecordNotFound) {
			continue
		}
		require.NoError(t, err)
		out[key] = rec
	}
	return out
}

func TestRunParallelismDoesNotChangeResult(t *testing.T) {
	store := newTestStore(250)
	broken := docName(99)

	run := func(parallelism int) map[string]*core.IndexRecord {
		backend := newTestBackend(t)
		p, err := NewPipeline(storeFactory(store), failingExtractors(broken), badgerFactory(backend),
			WithLogger(quietLogger()), WithResetRetry(1, 0), WithParallelism(parallelism))
		require.NoError(t, err)

		summary, err := p.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(249), summary.Indexed)
		return snapshot(t, backend, store, 250)
	}

	sequential := run(1)
	parallel := run(16)

	assert.Len(t, sequential, 249)
	assert.Equal(t, sequential, parallel)
}

func TestRunIsRepeatable(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(120)
	backend := newTestBackend(t)
	p := newTestPipeline(t, store, backend)

	first, err := p.Run(ctx)
	require.NoError(t, err)
	before := snapshot(t, backend, store, 120)

	second, err := p.Run(ctx)
	require.NoError(t, err)
	after := snapshot(t, backend, store, 120)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Indexed, second.Indexed)
	assert.Equal(t, before, after)
}

func TestRunResetsIndex(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(5)
	backend := newTestBackend(t)
	p := newTestPipeline(t, store, backend)

	_, err := p.Run(ctx)
	require.NoError(t, err)

	store.Delete(docName(0))
	summary, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Enumerated)

	idx := searchIndex(t, backend)
	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count, "records of removed documents do not survive a run")
	_, err = idx.Get(ctx, docKey(store, docName(0)))
	assert.ErrorIs(t, err, index.ErrRecordNotFound)
}

func TestRunEmptyContainer(t *testing.T) {
	backend := newTestBackend(t)
	p := newTestPipeline(t, newTestStore(0), backend)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Enumerated)
	assert.Zero(t, summary.Batches)

	exists, err := searchIndex(t, backend).Exists(context.Background())
	require.NoError(t, err)
	assert.True(t, exists, "the index is recreated even when there is nothing to index")
}

func TestRunIndexResetFailureIsFatal(t *testing.T) {
	var creates atomic.Int64
	idx := &stubIndex{CreateFunc: func(ctx context.Context, def *index.Definition) error {
		creates.Add(1)
		return errors.New("quota exceeded")
	}}
	store := newTestStore(10)

	p, err := NewPipeline(storeFactory(store), extractorFactory(),
		func() (index.Index, error) { return idx, nil },
		WithLogger(quietLogger()), WithResetRetry(2, time.Millisecond))
	require.NoError(t, err)

	summary, err := p.Run(context.Background())
	assert.Nil(t, summary)

	var fatal *core.FatalSetupError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, core.StageIndexReset, fatal.Stage)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, int64(2), creates.Load())
	assert.Zero(t, store.GrantCount(), "no document is processed")
}

func TestRunDeletesExistingIndex(t *testing.T) {
	var deleted atomic.Bool
	idx := &stubIndex{
		ExistsFunc: func(ctx context.Context) (bool, error) { return true, nil },
		DeleteFunc: func(ctx context.Context) error { deleted.Store(true); return nil },
	}
	p, err := NewPipeline(storeFactory(newTestStore(1)), extractorFactory(),
		func() (index.Index, error) { return idx, nil }, WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, deleted.Load())
}

func TestRunEnumerationFailureIsFatal(t *testing.T) {
	store := newTestStore(10)
	store.ListFunc = func(ctx context.Context, prefix string, fn blobstore.ListFunc) error {
		return errors.New("access denied")
	}
	p := newTestPipeline(t, store, newTestBackend(t))

	_, err := p.Run(context.Background())

	var fatal *core.FatalSetupError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, core.StageEnumerating, fatal.Stage)
	var enumErr *core.EnumerationError
	assert.ErrorAs(t, err, &enumErr)
	assert.Equal(t, StateDone, p.State())
}

func TestRunUnreachableStoreIsEnumerationError(t *testing.T) {
	unreachable := errors.New("dial tcp: connection refused")
	stores := func() (blobstore.Store, error) { return nil, unreachable }
	p, err := NewPipeline(stores, extractorFactory(), badgerFactory(newTestBackend(t)),
		WithLogger(quietLogger()), WithResetRetry(1, 0), WithPrefix("reports/"))
	require.NoError(t, err)

	_, err = p.Run(context.Background())

	var fatal *core.FatalSetupError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, core.StageEnumerating, fatal.Stage)
	var enumErr *core.EnumerationError
	require.ErrorAs(t, err, &enumErr)
	assert.Equal(t, "reports/", enumErr.Prefix)
	assert.Equal(t, 0, enumErr.Listed)
	assert.ErrorIs(t, err, unreachable)
}

func TestRunWorkerSetupFailure(t *testing.T) {
	store := newTestStore(150)
	var calls atomic.Int64
	extractors := func(opener extract.Opener) (extract.Extractor, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("extractor unavailable")
		}
		return extractmock.NewMockExtractor(opener), nil
	}
	p, err := NewPipeline(storeFactory(store), extractors, badgerFactory(newTestBackend(t)),
		WithLogger(quietLogger()), WithResetRetry(1, 0), WithParallelism(1))
	require.NoError(t, err)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(150), summary.Completed)
	assert.Equal(t, int64(100), summary.DocumentErrors, "the first batch fails as a whole")
	assert.Equal(t, int64(50), summary.Indexed)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newTestStore(500)
	var extracted atomic.Int64
	extractors := func(opener extract.Opener) (extract.Extractor, error) {
		m := extractmock.NewMockExtractor(opener)
		m.ExtractFunc = func(ctx context.Context, uri string) (*core.Extraction, error) {
			if extracted.Add(1) == 50 {
				cancel()
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return &core.Extraction{Text: uri}, nil
		}
		return m, nil
	}
	p, err := NewPipeline(storeFactory(store), extractors, badgerFactory(newTestBackend(t)),
		WithLogger(quietLogger()), WithResetRetry(1, 0), WithParallelism(2))
	require.NoError(t, err)

	summary, err := p.Run(ctx)

	var fatal *core.FatalSetupError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, core.StageProcessing, fatal.Stage)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Less(t, summary.Completed, int64(500))
	assert.Equal(t, StateDone, p.State())
}

func TestRunWithEnrichment(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(3)
	backend := newTestBackend(t)
	enricher := enrichmock.NewMockEnricher()

	p := newTestPipeline(t, store, backend, WithEnricher(enricher))
	_, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, enricher.CallCount())

	rec, err := searchIndex(t, backend).Get(ctx, docKey(store, docName(1)))
	require.NoError(t, err)
	assert.Contains(t, rec.People, "Ada")
	assert.Contains(t, rec.People, "Lisbon")
	assert.Equal(t, "en", rec.Language)
}

func TestRunEnrichmentFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(3)
	backend := newTestBackend(t)
	enricher := enrichmock.NewMockEnricher()
	enricher.EnrichFunc = func(ctx context.Context, text string) (*core.Entities, error) {
		return nil, errors.New("model offline")
	}

	p := newTestPipeline(t, store, backend, WithEnricher(enricher))
	summary, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Indexed)
	assert.Zero(t, summary.DocumentErrors)

	rec, err := searchIndex(t, backend).Get(ctx, docKey(store, docName(0)))
	require.NoError(t, err)
	assert.Empty(t, rec.People)
}

func TestRunGrantWindow(t *testing.T) {
	now := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	store := newTestStore(1)
	var gotStart, gotExpiry time.Time
	store.GrantFunc = func(ctx context.Context, name string, start, expiry time.Time) (string, error) {
		gotStart, gotExpiry = start, expiry
		return "mem://docs/" + name, nil
	}

	p := newTestPipeline(t, store, newTestBackend(t), WithClock(func() time.Time { return now }))
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, now.Add(-5*time.Minute), gotStart)
	assert.Equal(t, now.Add(24*time.Hour), gotExpiry)
}

func TestRunRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	store := newTestStore(20)
	p, err := NewPipeline(storeFactory(store), failingExtractors(docName(4)), badgerFactory(newTestBackend(t)),
		WithLogger(quietLogger()), WithResetRetry(1, 0), WithMetrics(metrics))
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	counters := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			name := mf.GetName()
			for _, l := range m.GetLabel() {
				name += ":" + l.GetValue()
			}
			counters[name] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 19.0, counters["blobsearch_documents_total:success"])
	assert.Equal(t, 1.0, counters["blobsearch_documents_total:failed"])
	assert.Equal(t, 19.0, counters["blobsearch_publish_total:indexed"])

	_, err = NewMetrics(reg)
	assert.Error(t, err, "collectors cannot be registered twice")
}
