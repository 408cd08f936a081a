package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/app"
	"github.com/iov-one/quorum/client"
	quorumapp "github.com/iov-one/quorum/cmd/quorum/app"
	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/store/iavl"
	"github.com/iov-one/quorum/x/sigs"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// node is where transactions are committed and queries are answered.
type node interface {
	ChainID(ctx context.Context) (string, error)
	Nonce(ctx context.Context, signer quorum.Address) (int64, error)
	CommitTx(ctx context.Context, raw []byte) (*client.CommitResult, error)
	Query(ctx context.Context, path string, data []byte) ([]quorum.Model, error)
	Close()
}

// openNode connects to the configured remote node, or opens the local
// database when no node address is set.
func openNode(cfg Config) (node, error) {
	if cfg.Node != "" {
		return &remoteNode{Client: client.NewClient(client.NewHTTPConnection(cfg.Node))}, nil
	}
	n, err := openLocalNode(cfg, log.NewNopLogger())
	if err != nil {
		return nil, err
	}
	return n, nil
}

type remoteNode struct {
	*client.Client
}

func (n *remoteNode) ChainID(ctx context.Context) (string, error) {
	status, err := n.Status(ctx)
	if err != nil {
		return "", err
	}
	return status.ChainID, nil
}

func (n *remoteNode) Close() {}

// localNode runs the application in process. Every transaction is
// committed in its own block.
type localNode struct {
	kv  iavl.CommitStore
	app app.BaseApp
}

func openLocalNode(cfg Config, logger log.Logger) (*localNode, error) {
	dir := filepath.Dir(cfg.DBPath())
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "create %s: %s", dir, err)
	}
	name := filepath.Base(cfg.DBPath())
	kv, err := iavl.NewCommitStore(dir, name[:len(name)-len(filepath.Ext(name))])
	if err != nil {
		return nil, err
	}
	return &localNode{
		kv:  kv,
		app: quorumapp.NewApplication(kv, logger, cfg.Debug),
	}, nil
}

func (n *localNode) ChainID(ctx context.Context) (string, error) {
	id := n.app.GetChainID()
	if id == "" {
		return "", errors.Wrap(errors.ErrState, "local database is not initialized, run init first")
	}
	return id, nil
}

func (n *localNode) Nonce(ctx context.Context, signer quorum.Address) (int64, error) {
	return sigs.NextNonce(n.app.DeliverStore(), signer)
}

func (n *localNode) CommitTx(ctx context.Context, raw []byte) (*client.CommitResult, error) {
	if _, err := quorum.ParseCheckOrError(n.app.CheckTx(raw)); err != nil {
		return nil, errors.Wrap(err, "check tx")
	}

	info := n.app.Info(abci.RequestInfo{})
	height := info.LastBlockHeight + 1
	n.app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: height, ChainID: n.app.GetChainID()}})
	deliver := n.app.DeliverTx(raw)
	n.app.EndBlock(abci.RequestEndBlock{Height: height})
	// State changes of a failed transaction, like the signer nonce, are
	// committed as well.
	n.app.Commit()

	res, err := quorum.ParseDeliverOrError(deliver)
	if err != nil {
		return nil, errors.Wrap(err, "deliver tx")
	}
	return &client.CommitResult{
		Height: height,
		Data:   res.Data,
		Log:    res.Log,
		Tags:   res.Tags,
	}, nil
}

func (n *localNode) Query(ctx context.Context, path string, data []byte) ([]quorum.Model, error) {
	res := n.app.Query(abci.RequestQuery{Path: path, Data: data})
	if err := errors.ABCIError(res.Code, res.Log); err != nil {
		return nil, err
	}
	return app.ParseQueryResponse(res.Key, res.Value)
}

// InitChain loads the genesis state into the local database.
func (n *localNode) InitChain(chainID string, state []byte) {
	n.app.InitChain(abci.RequestInitChain{ChainId: chainID, AppStateBytes: state})
	n.app.Commit()
}

func (n *localNode) Close() {
	n.kv.Close()
}

// signAndCommit wraps the message into a transaction signed by given key
// and commits it.
func signAndCommit(ctx context.Context, n node, key *crypto.PrivateKey, msg quorum.Msg) (*client.CommitResult, error) {
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid message")
	}
	tx, err := app.NewTx(msg)
	if err != nil {
		return nil, err
	}
	chainID, err := n.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	seq, err := n.Nonce(ctx, key.PublicKey().Address())
	if err != nil {
		return nil, err
	}
	sig, err := sigs.SignTx(key, tx, chainID, seq)
	if err != nil {
		return nil, errors.Wrap(err, "sign")
	}
	tx.Signatures = []*sigs.StdSignature{sig}
	raw, err := proto.Marshal(tx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, "cannot marshal transaction")
	}
	return n.CommitTx(ctx, raw)
}

// queryOne loads a single model into dest. ErrNotFound is returned when
// nothing matches.
func queryOne(ctx context.Context, n node, path string, key []byte, dest proto.Message) error {
	models, err := n.Query(ctx, path, key)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", path, key)
	}
	if err := proto.Unmarshal(models[0].Value, dest); err != nil {
		return errors.Wrap(errors.ErrInput, "cannot unmarshal query result")
	}
	return nil
}
