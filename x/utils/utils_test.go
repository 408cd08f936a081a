package utils

import (
	"context"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeHandler writes a key before returning err.
type writeHandler struct {
	key, value []byte
	err        error
}

func (h writeHandler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	if err := db.Set(h.key, h.value); err != nil {
		return nil, err
	}
	if h.err != nil {
		return nil, h.err
	}
	return &quorum.CheckResult{}, nil
}

func (h writeHandler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	if err := db.Set(h.key, h.value); err != nil {
		return nil, err
	}
	if h.err != nil {
		return nil, h.err
	}
	return &quorum.DeliverResult{}, nil
}

type panicHandler struct{}

func (panicHandler) Check(quorum.Context, quorum.KVStore, quorum.Tx) (*quorum.CheckResult, error) {
	panic("check")
}

func (panicHandler) Deliver(quorum.Context, quorum.KVStore, quorum.Tx) (*quorum.DeliverResult, error) {
	panic("deliver")
}

func TestSavepoint(t *testing.T) {
	key, value := []byte("key"), []byte("value")
	errFail := errors.Wrap(errors.ErrState, "fail")

	cases := map[string]struct {
		Savepoint Savepoint
		Check     bool
		Err       error
		WantKey   bool
	}{
		"inactive savepoint keeps a failed check write": {
			Savepoint: NewSavepoint(),
			Check:     true,
			Err:       errFail,
			WantKey:   true,
		},
		"check savepoint drops a failed check write": {
			Savepoint: NewSavepoint().OnCheck(),
			Check:     true,
			Err:       errFail,
		},
		"deliver savepoint drops a failed deliver write": {
			Savepoint: NewSavepoint().OnDeliver(),
			Err:       errFail,
		},
		"deliver savepoint ignores check": {
			Savepoint: NewSavepoint().OnDeliver(),
			Check:     true,
			Err:       errFail,
			WantKey:   true,
		},
		"both savepoints write on success": {
			Savepoint: NewSavepoint().OnCheck().OnDeliver(),
			WantKey:   true,
		},
		"both savepoints drop on failure": {
			Savepoint: NewSavepoint().OnDeliver().OnCheck(),
			Err:       errFail,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			h := quorumtest.Decorate(writeHandler{key: key, value: value, err: tc.Err}, tc.Savepoint)

			var err error
			if tc.Check {
				_, err = h.Check(context.Background(), db, &quorumtest.Tx{})
			} else {
				_, err = h.Deliver(context.Background(), db, &quorumtest.Tx{})
			}
			assert.Equal(t, tc.Err, err)

			has, err := db.Has(key)
			require.NoError(t, err)
			assert.Equal(t, tc.WantKey, has)
		})
	}
}

func TestRecovery(t *testing.T) {
	h := quorumtest.Decorate(panicHandler{}, NewRecovery())

	_, err := h.Check(context.Background(), store.MemStore(), &quorumtest.Tx{})
	assert.True(t, errors.ErrPanic.Is(err), "%+v", err)
	_, err = h.Deliver(context.Background(), store.MemStore(), &quorumtest.Tx{})
	assert.True(t, errors.ErrPanic.Is(err), "%+v", err)
}

func TestLoggingPassesResults(t *testing.T) {
	errFail := errors.Wrap(errors.ErrState, "fail")
	tx := &quorumtest.Tx{Msg: &quorumtest.Msg{RoutePath: "test/log"}}

	ok := &quorumtest.Handler{DeliverResult: quorum.DeliverResult{Log: "done"}}
	res, err := quorumtest.Decorate(ok, NewLogging()).Deliver(context.Background(), store.MemStore(), tx)
	require.NoError(t, err)
	assert.Equal(t, "done", res.Log)

	fail := &quorumtest.Handler{CheckErr: errFail}
	_, err = quorumtest.Decorate(fail, NewLogging()).Check(context.Background(), store.MemStore(), tx)
	assert.Equal(t, errFail, err)
}

func TestActionTagger(t *testing.T) {
	tx := &quorumtest.Tx{Msg: &quorumtest.Msg{RoutePath: "multisig/execute"}}
	h := &quorumtest.Handler{}

	res, err := quorumtest.Decorate(h, NewActionTagger()).Deliver(context.Background(), store.MemStore(), tx)
	require.NoError(t, err)
	require.Len(t, res.Tags, 1)
	assert.Equal(t, []byte(PathKey), res.Tags[0].Key)
	assert.Equal(t, []byte("multisig/execute"), res.Tags[0].Value)

	h.DeliverErr = errors.ErrUnauthorized
	_, err = quorumtest.Decorate(h, NewActionTagger()).Deliver(context.Background(), store.MemStore(), tx)
	assert.True(t, errors.ErrUnauthorized.Is(err))
}
