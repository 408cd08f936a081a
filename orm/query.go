package orm

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// bucketQuery exposes the bucket content to the query router. Returned
// models are keyed by the primary key, without the bucket prefix.
type bucketQuery struct {
	mb *modelBucket
}

var _ quorum.QueryHandler = bucketQuery{}

func (q bucketQuery) Query(db quorum.ReadOnlyKVStore, mod string, data []byte) ([]quorum.Model, error) {
	switch mod {
	case quorum.KeyQueryMod:
		raw, err := db.Get(q.mb.dbKey(data))
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, err.Error())
		}
		if raw == nil {
			return nil, nil
		}
		return []quorum.Model{quorum.Pair(data, raw)}, nil
	case quorum.PrefixQueryMod:
		start, end := prefixRange(q.mb.dbKey(data))
		it, err := db.Iterator(start, end)
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, err.Error())
		}
		return consumeIterator(it, len(q.mb.prefix))
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}

// indexQuery returns all models indexed under the value given as the query
// data.
type indexQuery struct {
	mb  *modelBucket
	idx index
}

var _ quorum.QueryHandler = indexQuery{}

func (q indexQuery) Query(db quorum.ReadOnlyKVStore, mod string, data []byte) ([]quorum.Model, error) {
	if mod != quorum.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
	keys, err := q.idx.Keys(db, data)
	if err != nil {
		return nil, err
	}
	res := make([]quorum.Model, 0, len(keys))
	for _, pk := range keys {
		raw, err := db.Get(q.mb.dbKey(pk))
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, err.Error())
		}
		if raw != nil {
			res = append(res, quorum.Pair(pk, raw))
		}
	}
	return res, nil
}

// consumeIterator will read all remaining data into an
// array and release the iterator. Given number of bytes is cut from the
// beginning of every key.
func consumeIterator(it quorum.Iterator, cut int) ([]quorum.Model, error) {
	defer it.Release()

	var res []quorum.Model
	for {
		key, value, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res, nil
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, err.Error())
		}
		res = append(res, quorum.Pair(key[cut:], value))
	}
}
