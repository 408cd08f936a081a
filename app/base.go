package app

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp decodes raw transactions and dispatches them to the handler
// stack. Storage, queries and the block lifecycle come from StoreApp.
type BaseApp struct {
	*StoreApp
	decoder quorum.TxDecoder
	handler quorum.Handler
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp returns an application running every transaction decoded by
// decoder through handler. With debug set, error responses carry stack
// traces.
func NewBaseApp(store *StoreApp, decoder quorum.TxDecoder, handler quorum.Handler, debug bool) BaseApp {
	return BaseApp{
		StoreApp: store.WithDebug(debug),
		decoder:  decoder,
		handler:  handler,
		debug:    debug,
	}
}

func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return quorum.DeliverTxError(err, b.debug)
	}
	res, err := b.handler.Deliver(b.txContext("deliver_tx", tx), b.DeliverStore(), tx)
	return quorum.DeliverOrError(res, err, b.debug)
}

func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return quorum.CheckTxError(err, b.debug)
	}
	res, err := b.handler.Check(b.txContext("check_tx", tx), b.CheckStore(), tx)
	return quorum.CheckOrError(res, err, b.debug)
}

// txContext returns the block context with the logger annotated for a
// single transaction.
func (b BaseApp) txContext(call string, tx quorum.Tx) quorum.Context {
	ctx := b.BlockContext()
	height, _ := quorum.GetHeight(ctx)
	return quorum.WithLogInfo(ctx,
		"call", call,
		"height", height,
		"path", quorum.GetPath(tx))
}

// loadTx decodes the transaction. A decoder panic is returned as an error.
func (b BaseApp) loadTx(txBytes []byte) (tx quorum.Tx, err error) {
	defer errors.Recover(&err)
	if len(txBytes) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "transaction")
	}
	return b.decoder(txBytes)
}
