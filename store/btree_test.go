package store

import (
	"testing"

	"github.com/iov-one/quorum/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBase() (CacheableKVStore, func()) {
	return MemStore(), func() {}
}

var suite = NewTestSuite(makeBase)

func TestBTreeCacheGetSet(t *testing.T)           { suite.GetSet(t) }
func TestBTreeCacheConflicts(t *testing.T)        { suite.CacheConflicts(t) }
func TestBTreeFuzzIterator(t *testing.T)          { suite.FuzzIterator(t) }
func TestBTreeIteratorWithConflicts(t *testing.T) { suite.IteratorWithConflicts(t) }
func TestBTreeNestedExecution(t *testing.T)       { suite.NestedExecution(t) }

func TestBTreeCacheDiscard(t *testing.T) {
	base := MemStore()
	require.NoError(t, base.Set([]byte("group"), []byte("one")))

	cache := base.CacheWrap()
	require.NoError(t, cache.Set([]byte("group"), []byte("two")))
	require.NoError(t, cache.Set([]byte("proposal"), []byte("1")))
	cache.Discard()

	// Writing a discarded cache must not leak any of its operations.
	require.NoError(t, cache.Write())

	suite.AssertGetHas(t, base, []byte("group"), []byte("one"), true)
	suite.AssertGetHas(t, base, []byte("proposal"), nil, false)
}

func TestSliceIterator(t *testing.T) {
	iter := NewSliceIterator([]Model{
		Pair([]byte("a"), []byte("1")),
		Pair([]byte("b"), []byte("2")),
	})
	defer iter.Release()

	k, v, err := iter.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), k)
	assert.Equal(t, []byte("1"), v)

	k, _, err = iter.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), k)

	_, _, err = iter.Next()
	assert.True(t, errors.ErrIteratorDone.Is(err))
}

func TestNonAtomicBatch(t *testing.T) {
	base := MemStore()
	batch := base.NewBatch()
	require.NoError(t, batch.Set([]byte("k1"), []byte("v1")))
	require.NoError(t, batch.Set([]byte("k2"), []byte("v2")))
	require.NoError(t, batch.Delete([]byte("k1")))

	ops := batch.(*NonAtomicBatch).ShowOps()
	require.Len(t, ops, 3)
	assert.True(t, ops[0].IsSetOp())
	assert.False(t, ops[2].IsSetOp())

	// nothing is visible before the write
	suite.AssertGetHas(t, base, []byte("k2"), nil, false)
	require.NoError(t, batch.Write())
	suite.AssertGetHas(t, base, []byte("k1"), nil, false)
	suite.AssertGetHas(t, base, []byte("k2"), []byte("v2"), true)
}
