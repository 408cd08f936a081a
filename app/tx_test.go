package app

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/x/sigs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMsgRegistry(t *testing.T) {
	r := NewMsgRegistry()
	r.Register(&quorumtest.Msg{RoutePath: "test/one"})

	assert.Panics(t, func() { r.Register(&quorumtest.Msg{RoutePath: "test/one"}) })
	assert.Panics(t, func() { r.Register(&quorumtest.Msg{RoutePath: "bad path"}) })

	raw, err := proto.Marshal(&quorumtest.Msg{RoutePath: "test/one", Body: []byte("hello")})
	require.NoError(t, err)

	msg, err := r.DecodeMsg("test/one", raw)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), msg.(*quorumtest.Msg).Body)

	_, err = r.DecodeMsg("test/two", raw)
	assert.True(t, errors.ErrNotFound.Is(err))

	_, err = r.DecodeMsg("test/one", []byte{0xff, 0xff})
	assert.True(t, errors.ErrInput.Is(err))
}

func TestDecodeTx(t *testing.T) {
	r := NewMsgRegistry()
	r.Register(&quorumtest.Msg{RoutePath: "test/one"})

	tx, err := NewTx(&quorumtest.Msg{RoutePath: "test/one", Body: []byte("payload")})
	require.NoError(t, err)
	assert.Equal(t, "test/one", tx.Path)

	unsigned, err := tx.GetSignBytes()
	require.NoError(t, err)

	key := quorumtest.NewKey()
	sig, err := sigs.SignTx(key, tx, "test-chain", 0)
	require.NoError(t, err)
	tx.Signatures = append(tx.Signatures, sig)

	// Signatures are not part of the signed content.
	signed, err := tx.GetSignBytes()
	require.NoError(t, err)
	assert.Equal(t, unsigned, signed)

	raw, err := proto.Marshal(tx)
	require.NoError(t, err)

	decoded, err := r.DecodeTx(raw)
	require.NoError(t, err)
	msg, err := decoded.GetMsg()
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), msg.(*quorumtest.Msg).Body)

	stx, ok := decoded.(sigs.SignedTx)
	require.True(t, ok)
	require.Len(t, stx.GetSignatures(), 1)
	assert.Equal(t, key.PublicKey(), stx.GetSignatures()[0].Pubkey)

	_, err = r.DecodeTx([]byte("not a transaction"))
	assert.Error(t, err)
}
