package app

import (
	"sync"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// CommitStore keeps the check and deliver cache wraps on top of the
// committed state. The ABCI server calls the application from separate
// mempool, consensus and query connections, so swapping the caches on
// commit is guarded by a lock.
type CommitStore struct {
	mu        sync.RWMutex
	committed quorum.CommitKVStore
	deliver   quorum.KVCacheWrap
	check     quorum.KVCacheWrap
}

// NewCommitStore loads the latest version of the store or panics.
func NewCommitStore(store quorum.CommitKVStore) *CommitStore {
	if err := store.LoadLatestVersion(); err != nil {
		panic(errors.Wrap(errors.ErrDatabase, err.Error()))
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
		check:     store.CacheWrap(),
	}
}

// CommitInfo returns the current height and hash
func (cs *CommitStore) CommitInfo() (quorum.CommitID, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.committed.LatestVersion()
}

// Commit writes the deliver cache into the committed store, drops all
// pending check state and persists a new version. Fresh caches are created
// on top of the new version.
func (cs *CommitStore) Commit() (quorum.CommitID, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err := cs.deliver.Write(); err != nil {
		return quorum.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	cs.check.Discard()

	id, err := cs.committed.Commit()
	if err != nil {
		return id, errors.Wrap(errors.ErrDatabase, err.Error())
	}

	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
	return id, nil
}

// CheckStore returns the store used by CheckTx.
func (cs *CommitStore) CheckStore() quorum.CacheableKVStore {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.check
}

// DeliverStore returns the store used by DeliverTx and InitChain.
func (cs *CommitStore) DeliverStore() quorum.CacheableKVStore {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.deliver
}

// Keys prefixed with _q: hold application data that no extension owns.
const chainIDKey = "_q:chainID"

// mustLoadChainID returns the stored chain id, or an empty string before
// genesis.
func mustLoadChainID(kv quorum.ReadOnlyKVStore) string {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		panic(errors.Wrap(errors.ErrDatabase, err.Error()))
	}
	return string(v)
}

// saveChainID stores the chain id. It can be written only once.
func saveChainID(kv quorum.KVStore, chainID string) error {
	if !quorum.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %q", chainID)
	}
	key := []byte(chainIDKey)
	switch exists, err := kv.Has(key); {
	case err != nil:
		return errors.Wrap(errors.ErrDatabase, err.Error())
	case exists:
		return errors.Wrap(errors.ErrState, "chain id cannot be changed after genesis")
	}
	if err := kv.Set(key, []byte(chainID)); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}
