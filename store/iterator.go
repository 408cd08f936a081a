package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/quorum/errors"
)

///////////////////////////////////////////////////////
// From Items to Iterator

// ascendBtree collects all cached items within [start, end) in ascending
// order. Items are collected eagerly so the tree can be modified while the
// iterator is alive.
func ascendBtree(bt *btree.BTree, start, end []byte) []btree.Item {
	var items []btree.Item
	insert := func(item btree.Item) bool {
		items = append(items, item)
		return true
	}

	switch {
	case start == nil && end == nil:
		bt.Ascend(insert)
	case start == nil:
		bt.AscendLessThan(bkey{end}, insert)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, insert)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, insert)
	}
	return items
}

// descendBtree collects all cached items within [start, end) in descending
// order.
func descendBtree(bt *btree.BTree, start, end []byte) []btree.Item {
	items := ascendBtree(bt, start, end)
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// itemIter combines cached items with the results of the parent store,
// taking into consideration overwrites and deletes.
type itemIter struct {
	items []btree.Item
	idx   int

	// if we are iterating in a cache-wrap (and who isn't),
	// we need to combine this iterator with the parent
	parent      Iterator
	parentKey   []byte
	parentValue []byte
	parentValid bool

	reverse bool
}

var _ Iterator = (*itemIter)(nil)

func newItemIter(items []btree.Item, parent Iterator, reverse bool) (*itemIter, error) {
	it := &itemIter{
		items:   items,
		parent:  parent,
		reverse: reverse,
	}
	if err := it.advanceParent(); err != nil {
		parent.Release()
		return nil, err
	}
	return it, nil
}

// Next implements Iterator.
func (i *itemIter) Next() ([]byte, []byte, error) {
	for {
		ourValid := i.idx < len(i.items)
		if !ourValid && !i.parentValid {
			return nil, nil, errors.ErrIteratorDone
		}

		if !ourValid {
			return i.takeParent()
		}

		item := i.items[i.idx]
		if i.parentValid {
			cmp := bytes.Compare(i.parentKey, item.(keyer).Key())
			if i.reverse {
				cmp = -cmp
			}
			if cmp < 0 {
				return i.takeParent()
			}
			if cmp == 0 {
				// Cached item overwrites or deletes the parent entry.
				if err := i.advanceParent(); err != nil {
					return nil, nil, err
				}
			}
		}

		i.idx++
		switch t := item.(type) {
		case setItem:
			return t.key, t.value, nil
		case deletedItem:
			continue
		default:
			return nil, nil, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", item)
		}
	}
}

func (i *itemIter) takeParent() ([]byte, []byte, error) {
	key, value := i.parentKey, i.parentValue
	if err := i.advanceParent(); err != nil {
		return nil, nil, err
	}
	return key, value, nil
}

func (i *itemIter) advanceParent() error {
	key, value, err := i.parent.Next()
	switch {
	case err == nil:
		i.parentKey, i.parentValue, i.parentValid = key, value, true
		return nil
	case errors.ErrIteratorDone.Is(err):
		i.parentKey, i.parentValue, i.parentValid = nil, nil, false
		return nil
	default:
		return err
	}
}

// Release implements Iterator.
func (i *itemIter) Release() {
	i.parent.Release()
	i.items = nil
}
