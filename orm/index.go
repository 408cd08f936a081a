package orm

import (
	"bytes"
	"encoding/binary"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// index keeps a single store entry for every indexed model. The entry key is
// built from the index prefix, the length prefixed index value and the
// primary key of the model, so all models indexed under the same value can
// be found with a prefix scan.
type index struct {
	name    string
	prefix  []byte
	unique  bool
	indexer Indexer
}

func newIndex(bucketName, name string, indexer Indexer, unique bool) index {
	return index{
		name:    name,
		prefix:  []byte("_i." + bucketName + "_" + name + ":"),
		unique:  unique,
		indexer: indexer,
	}
}

// valuePrefix returns the prefix shared by all entries indexed under given
// value.
func (i index) valuePrefix(value []byte) []byte {
	out := make([]byte, len(i.prefix)+2+len(value))
	n := copy(out, i.prefix)
	binary.BigEndian.PutUint16(out[n:], uint16(len(value)))
	copy(out[n+2:], value)
	return out
}

func (i index) entryKey(value, pk []byte) []byte {
	return append(i.valuePrefix(value), pk...)
}

// Keys returns all primary keys indexed under given value.
func (i index) Keys(db quorum.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	prefix := i.valuePrefix(value)
	start, end := prefixRange(prefix)
	it, err := db.Iterator(start, end)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	defer it.Release()

	var keys [][]byte
	for {
		key, _, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return keys, nil
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, err.Error())
		}
		pk := make([]byte, len(key)-len(prefix))
		copy(pk, key[len(prefix):])
		keys = append(keys, pk)
	}
}

// Update moves the index entry of the model from the previous index value to
// the new one. prev == nil means insert, next == nil means delete.
func (i index) Update(db quorum.KVStore, pk []byte, prev, next Model) error {
	var prevVal, nextVal []byte
	var err error
	if prev != nil {
		if prevVal, err = i.indexer(prev); err != nil {
			return errors.Wrapf(err, "index %q", i.name)
		}
	}
	if next != nil {
		if nextVal, err = i.indexer(next); err != nil {
			return errors.Wrapf(err, "index %q", i.name)
		}
	}
	if prev != nil && next != nil && bytes.Equal(prevVal, nextVal) {
		return nil
	}

	if prev != nil && prevVal != nil {
		if err := db.Delete(i.entryKey(prevVal, pk)); err != nil {
			return errors.Wrap(errors.ErrDatabase, err.Error())
		}
	}
	if next == nil || nextVal == nil {
		return nil
	}
	if i.unique {
		keys, err := i.Keys(db, nextVal)
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			return errors.Wrapf(errors.ErrDuplicate, "index %q", i.name)
		}
	}
	if err := db.Set(i.entryKey(nextVal, pk), []byte{}); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// prefixRange turns a prefix into (start, end) to create
// and iterator
func prefixRange(prefix []byte) ([]byte, []byte) {
	// special case: no prefix is whole range
	if len(prefix) == 0 {
		return nil, nil
	}

	// copy the prefix and update last byte
	end := make([]byte, len(prefix))
	copy(end, prefix)
	l := len(end) - 1
	end[l]++

	// wait, what if that overflowed?....
	for end[l] == 0 && l > 0 {
		l--
		end[l]++
	}

	// okay, funny guy, you gave us FFF, no end to this range...
	if l == 0 && end[0] == 0 {
		end = nil
	}
	return prefix, end
}
