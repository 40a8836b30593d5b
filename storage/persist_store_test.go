package storage

import (
	"testing"

	"github.com/colorfulnotion/intcode/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistenceStore_BasicOperations(t *testing.T) {
	ps, err := NewMemoryPersistenceStore()
	require.NoError(t, err)
	defer ps.Close()

	key := []byte("test-key")
	value := []byte("test-value")
	require.NoError(t, ps.Put(key, value))

	got, found, err := ps.Get(key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, value, got)

	_, found, err = ps.Get([]byte("non-existent"))
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, ps.Delete(key))
	ok, err := ps.Has(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPersistenceStore_Prefix(t *testing.T) {
	ps, err := NewMemoryPersistenceStore()
	require.NoError(t, err)
	defer ps.Close()

	var b Batch
	b.Put([]byte("a/2"), []byte("two"))
	b.Put([]byte("a/1"), []byte("one"))
	b.Put([]byte("b/1"), []byte("other"))
	require.Equal(t, 3, b.Len())
	require.NoError(t, ps.Write(&b))

	pairs, err := ps.GetWithPrefix([]byte("a/"))
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "a/1", string(pairs[0][0]))
	assert.Equal(t, "two", string(pairs[1][1]))
}

func TestPersistenceStore_HashOperations(t *testing.T) {
	ps, err := NewMemoryPersistenceStore()
	require.NoError(t, err)
	defer ps.Close()

	h := common.Blake2Hash([]byte("image"))
	require.NoError(t, ps.PutHash(h, []byte{1, 2, 3}))
	got, err := ps.GetHash(h)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	_, err = ps.GetHash(common.Blake2Hash([]byte("missing")))
	assert.Error(t, err)
}

func TestPersistenceStore_File(t *testing.T) {
	dir := t.TempDir()
	ps, err := NewPersistenceStore(dir)
	require.NoError(t, err)
	require.NoError(t, ps.Put([]byte("k"), []byte("v")))
	require.NoError(t, ps.Close())

	ps, err = NewPersistenceStore(dir)
	require.NoError(t, err)
	defer ps.Close()
	got, found, err := ps.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v", string(got))
}
