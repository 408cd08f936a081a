package client

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/app"
	quorumapp "github.com/iov-one/quorum/cmd/quorum/app"
	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/resource"
	"github.com/iov-one/quorum/x/sigs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/p2p"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

const chainID = "client-test"

// appConn runs every request against an in-process application. Each
// broadcast transaction is committed in its own block.
type appConn struct {
	app    app.BaseApp
	height int64
}

func newAppConn(t *testing.T) *appConn {
	t.Helper()
	a, err := quorumapp.Application("", log.NewNopLogger(), false)
	require.NoError(t, err)
	state, err := json.Marshal(quorum.Options{})
	require.NoError(t, err)
	a.InitChain(abci.RequestInitChain{ChainId: chainID, AppStateBytes: state})
	return &appConn{app: a}
}

func (c *appConn) Status() (*ctypes.ResultStatus, error) {
	return &ctypes.ResultStatus{
		NodeInfo: p2p.DefaultNodeInfo{Network: chainID},
		SyncInfo: ctypes.SyncInfo{LatestBlockHeight: c.height},
	}, nil
}

func (c *appConn) ABCIQuery(path string, data cmn.HexBytes) (*ctypes.ResultABCIQuery, error) {
	return &ctypes.ResultABCIQuery{
		Response: c.app.Query(abci.RequestQuery{Path: path, Data: data}),
	}, nil
}

func (c *appConn) BroadcastTxCommit(tx tmtypes.Tx) (*ctypes.ResultBroadcastTxCommit, error) {
	res := &ctypes.ResultBroadcastTxCommit{CheckTx: c.app.CheckTx(tx)}
	if res.CheckTx.Code != 0 {
		return res, nil
	}
	c.height++
	c.app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: c.height}})
	res.DeliverTx = c.app.DeliverTx(tx)
	c.app.EndBlock(abci.RequestEndBlock{Height: c.height})
	c.app.Commit()
	res.Height = c.height
	res.Hash = tx.Hash()
	return res, nil
}

func signedTx(t *testing.T, c *Client, key *crypto.PrivateKey, msg quorum.Msg) []byte {
	t.Helper()
	ctx := context.Background()

	tx, err := app.NewTx(msg)
	require.NoError(t, err)
	seq, err := c.Nonce(ctx, key.PublicKey().Address())
	require.NoError(t, err)
	status, err := c.Status(ctx)
	require.NoError(t, err)
	sig, err := sigs.SignTx(key, tx, status.ChainID, seq)
	require.NoError(t, err)
	tx.Signatures = []*sigs.StdSignature{sig}
	raw, err := proto.Marshal(tx)
	require.NoError(t, err)
	return raw
}

func TestClientCommitAndQuery(t *testing.T) {
	c := NewClient(newAppConn(t))
	ctx := context.Background()
	key := crypto.GenPrivKeyEd25519()

	status, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, chainID, status.ChainID)
	assert.Equal(t, int64(0), status.Height)

	raw := signedTx(t, c, key, &resource.RegisterMsg{
		Metadata: &quorum.Metadata{Schema: 1},
		Name:     "first",
	})
	res, err := c.CommitTx(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Height)
	assert.Equal(t, []byte("first"), res.Data)

	nonce, err := c.Nonce(ctx, key.PublicKey().Address())
	require.NoError(t, err)
	assert.Equal(t, int64(1), nonce)

	models, err := c.Query(ctx, "/resources", []byte("first"))
	require.NoError(t, err)
	require.Len(t, models, 1)
	var r resource.Resource
	require.NoError(t, proto.Unmarshal(models[0].Value, &r))
	assert.Equal(t, key.PublicKey().Address(), r.Owner)

	// Registering the same name again is rejected by the node.
	raw = signedTx(t, c, key, &resource.RegisterMsg{
		Metadata: &quorum.Metadata{Schema: 1},
		Name:     "first",
	})
	_, err = c.CommitTx(ctx, raw)
	assert.True(t, errors.ErrDuplicate.Is(err), "%+v", err)

	_, err = c.Query(ctx, "/unknown", nil)
	assert.True(t, errors.ErrNotFound.Is(err))
}
