package quorumtest

import "github.com/iov-one/quorum"

// Handler is a mock implementation of the quorum.Handler interface.
//
// Set CheckErr or DeliverErr to force an error response. Each method call is
// counted and the last store and transaction are remembered, so that a test
// can inspect what the handler was called with.
type Handler struct {
	checkCall   int
	CheckResult quorum.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult quorum.DeliverResult
	DeliverErr    error

	// OnDeliver if set is called with the arguments of each Deliver
	// call before the result is returned.
	OnDeliver func(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx)

	lastTx quorum.Tx
}

var _ quorum.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	h.checkCall++
	h.lastTx = tx
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	h.deliverCall++
	h.lastTx = tx
	if h.OnDeliver != nil {
		h.OnDeliver(ctx, db, tx)
	}
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

// LastTx returns the transaction of the most recent call or nil.
func (h *Handler) LastTx() quorum.Tx {
	return h.lastTx
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
