/*
Package client provides access to a running quorum node over the tendermint
RPC interface.
*/
package client

import (
	"context"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/app"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/sigs"
	cmn "github.com/tendermint/tendermint/libs/common"
	rpcclient "github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

// Conn is the part of the tendermint client used to talk to a node.
type Conn interface {
	Status() (*ctypes.ResultStatus, error)
	ABCIQuery(path string, data cmn.HexBytes) (*ctypes.ResultABCIQuery, error)
	BroadcastTxCommit(tx tmtypes.Tx) (*ctypes.ResultBroadcastTxCommit, error)
}

var _ Conn = (rpcclient.Client)(nil)

// NewHTTPConnection takes a URL and sends all requests to the remote node
func NewHTTPConnection(remote string) Conn {
	return rpcclient.NewHTTP(remote, "/websocket")
}

// Client is a tendermint client wrapped to provide
// simple access to the data structures of the application.
type Client struct {
	conn Conn
}

// NewClient wraps a Client around an existing tendermint client connection.
func NewClient(conn Conn) *Client {
	return &Client{conn: conn}
}

// Status is the current status of the node we connect to.
type Status struct {
	ChainID    string
	Height     int64
	CatchingUp bool
}

// CommitResult is returned once a transaction is included in a block.
type CommitResult struct {
	Hash   cmn.HexBytes
	Height int64
	Data   []byte
	Log    string
	Tags   []cmn.KVPair
}

// Status returns current height and chain id of the node.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	status, err := c.conn.Status()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "status: %s", err)
	}
	return &Status{
		ChainID:    status.NodeInfo.Network,
		Height:     status.SyncInfo.LatestBlockHeight,
		CatchingUp: status.SyncInfo.CatchingUp,
	}, nil
}

// Query returns all models matching the query. An application error is
// returned as the registered error it was created from.
func (c *Client) Query(ctx context.Context, path string, data []byte) ([]quorum.Model, error) {
	res, err := c.conn.ABCIQuery(path, data)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "query %s: %s", path, err)
	}
	if err := errors.ABCIError(res.Response.Code, res.Response.Log); err != nil {
		return nil, err
	}
	return app.ParseQueryResponse(res.Response.Key, res.Response.Value)
}

// Nonce returns the sequence that the next signature of given address must
// use.
func (c *Client) Nonce(ctx context.Context, signer quorum.Address) (int64, error) {
	models, err := c.Query(ctx, "/auth", signer)
	if err != nil {
		return 0, err
	}
	if len(models) == 0 {
		return 0, nil
	}
	var user sigs.UserData
	if err := proto.Unmarshal(models[0].Value, &user); err != nil {
		return 0, errors.Wrap(errors.ErrInput, "cannot unmarshal user data")
	}
	return user.Sequence, nil
}

// CommitTx submits a transaction and waits until it is included in a block.
// A rejected transaction is returned as an error.
func (c *Client) CommitTx(ctx context.Context, raw []byte) (*CommitResult, error) {
	res, err := c.conn.BroadcastTxCommit(raw)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "broadcast: %s", err)
	}
	if _, err := quorum.ParseCheckOrError(res.CheckTx); err != nil {
		return nil, errors.Wrap(err, "check tx")
	}
	deliver, err := quorum.ParseDeliverOrError(res.DeliverTx)
	if err != nil {
		return nil, errors.Wrap(err, "deliver tx")
	}
	return &CommitResult{
		Hash:   res.Hash,
		Height: res.Height,
		Data:   deliver.Data,
		Log:    deliver.Log,
		Tags:   deliver.Tags,
	}, nil
}
