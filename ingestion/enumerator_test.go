package ingestion

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/blobsearch/blobstore"
	"github.com/poiesic/blobsearch/blobstore/mock"
	"github.com/poiesic/blobsearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerateBatchSizes(t *testing.T) {
	tests := []struct {
		name  string
		docs  int
		sizes []int
	}{
		{"empty container", 0, nil},
		{"single partial batch", 7, []int{7}},
		{"exact multiple has no empty tail", 200, []int{100, 100}},
		{"250 documents", 250, []int{100, 100, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(tt.docs)
			batches, err := NewEnumerator(store, DefaultBatchSize, quietLogger()).Enumerate(context.Background(), "")
			require.NoError(t, err)

			var sizes []int
			for i, b := range batches {
				assert.Equal(t, i, b.ID)
				sizes = append(sizes, b.Len())
			}
			assert.Equal(t, tt.sizes, sizes)
			assert.Equal(t, tt.docs, CountDocuments(batches))
		})
	}
}

func TestEnumeratePreservesStoreOrder(t *testing.T) {
	store := newTestStore(5)
	batches, err := NewEnumerator(store, 2, quietLogger()).Enumerate(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, batches, 3)

	var names []string
	for _, b := range batches {
		for _, ref := range b.Refs {
			assert.Equal(t, "docs", ref.Container)
			names = append(names, ref.Name)
		}
	}
	assert.Equal(t, []string{docName(0), docName(1), docName(2), docName(3), docName(4)}, names)
}

func TestEnumeratePrefix(t *testing.T) {
	store := newTestStore(3)
	store.Put("archive/old.txt", []byte("old"))

	batches, err := NewEnumerator(store, 0, nil).Enumerate(context.Background(), "archive/")
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, []core.DocumentRef{{Container: "docs", Name: "archive/old.txt"}}, batches[0].Refs)
}

func TestEnumerateFailureDiscardsPartialResults(t *testing.T) {
	listErr := errors.New("connection reset")
	store := mock.NewMockStore("docs")
	store.ListFunc = func(ctx context.Context, prefix string, fn blobstore.ListFunc) error {
		for i := 0; i < 150; i++ {
			if err := fn(fmt.Sprintf("doc-%d", i)); err != nil {
				return err
			}
		}
		return listErr
	}

	batches, err := NewEnumerator(store, DefaultBatchSize, quietLogger()).Enumerate(context.Background(), "p/")
	assert.Nil(t, batches)

	var enumErr *core.EnumerationError
	require.ErrorAs(t, err, &enumErr)
	assert.Equal(t, "p/", enumErr.Prefix)
	assert.Equal(t, 150, enumErr.Listed)
	assert.ErrorIs(t, err, listErr)
}

func TestEnumerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEnumerator(newTestStore(10), DefaultBatchSize, quietLogger()).Enumerate(ctx, "")
	var enumErr *core.EnumerationError
	require.ErrorAs(t, err, &enumErr)
	assert.ErrorIs(t, err, context.Canceled)
}
