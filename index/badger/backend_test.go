package badger

import (
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackendOnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	assert.False(t, backend.IsClosed())

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestWithTxCommitsWrites(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithTx(func(tx *badger.Txn) error {
		return tx.Set([]byte("k"), []byte("v"))
	}, true)
	require.NoError(t, err)

	var got []byte
	err = backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte("k"))
		if err != nil {
			return err
		}
		got, err = item.ValueCopy(nil)
		return err
	}, false)
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestWithTxDiscardsOnError(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte("k"), []byte("v")); err != nil {
			return err
		}
		return assert.AnError
	}, true)
	require.ErrorIs(t, err, assert.AnError)

	err = backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get([]byte("k"))
		return err
	}, false)
	assert.ErrorIs(t, err, badger.ErrKeyNotFound)
}

func TestDropPrefix(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithTx(func(tx *badger.Txn) error {
		for _, k := range []string{"a:1", "a:2", "b:1"} {
			if err := tx.Set([]byte(k), []byte("x")); err != nil {
				return err
			}
		}
		return nil
	}, true)
	require.NoError(t, err)

	require.NoError(t, backend.DropPrefix([]byte("a:")))

	err = backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get([]byte("a:1"))
		assert.ErrorIs(t, err, badger.ErrKeyNotFound)
		_, err = tx.Get([]byte("b:1"))
		return err
	}, false)
	assert.NoError(t, err)
}

func TestRecordKeysDoNotOverlap(t *testing.T) {
	assert.Equal(t, "idxrec:docs:abc", string(makeRecordKey("docs", "abc")))
	assert.NotContains(t, string(makeRecordKey("docs-2", "x")), string(makeRecordPrefix("docs")))
}
