package app

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

func TestRouter(t *testing.T) {
	r := NewRouter()

	good := &quorumtest.Handler{}
	bad := &quorumtest.Handler{
		CheckErr:   errors.ErrUnauthorized,
		DeliverErr: errors.ErrUnauthorized,
	}
	r.Handle("test/good", good)
	r.Handle("test/bad", bad)

	assert.Panics(t, func() { r.Handle("test/good", good) })
	assert.Panics(t, func() { r.Handle("l:7", good) })

	ctx := context.Background()
	db := store.MemStore()

	_, err := r.Check(ctx, db, &quorumtest.Tx{Msg: &quorumtest.Msg{RoutePath: "test/good"}})
	require.NoError(t, err)
	_, err = r.Deliver(ctx, db, &quorumtest.Tx{Msg: &quorumtest.Msg{RoutePath: "test/good"}})
	require.NoError(t, err)
	assert.Equal(t, 2, good.CallCount())

	_, err = r.Deliver(ctx, db, &quorumtest.Tx{Msg: &quorumtest.Msg{RoutePath: "test/bad"}})
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Equal(t, 1, bad.DeliverCallCount())

	_, err = r.Deliver(ctx, db, &quorumtest.Tx{Msg: &quorumtest.Msg{RoutePath: "test/missing"}})
	assert.True(t, errors.ErrNotFound.Is(err))
	_, err = r.Check(ctx, db, &quorumtest.Tx{Msg: &quorumtest.Msg{RoutePath: "test/missing"}})
	assert.True(t, errors.ErrNotFound.Is(err))

	_, err = r.Deliver(ctx, db, &quorumtest.Tx{Err: errors.ErrMsg})
	assert.True(t, errors.ErrMsg.Is(err))
	assert.Equal(t, 2, good.CallCount())
}

func TestRouterIsRegistry(t *testing.T) {
	var reg quorum.Registry = NewRouter()
	h := &quorumtest.Handler{}
	reg.Handle("some_path", h)
	assert.Equal(t, h, reg.(*Router).Handler("some_path"))
}
