package multisig

import (
	"context"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/store"
	"github.com/stretchr/testify/require"
)

// stubDeriver derives a predictable authority that differs from the
// production one.
type stubDeriver struct{}

func (stubDeriver) Derive(groupID []byte, nonce uint32) quorum.Condition {
	data := append(append([]byte{}, groupID...), byte(nonce))
	return quorum.NewCondition("test", "authority", data)
}

var invokedKey = []byte("invoked")

// recordingInvoker remembers all invocations. Each invocation writes its
// payload under invokedKey before failing with err, if set.
type recordingInvoker struct {
	calls []Invocation
	err   error
}

func (r *recordingInvoker) Invoke(ctx quorum.Context, db quorum.KVStore, inv Invocation) (*quorum.DeliverResult, error) {
	r.calls = append(r.calls, inv)
	if err := db.Set(invokedKey, inv.Payload); err != nil {
		return nil, err
	}
	if r.err != nil {
		return nil, r.err
	}
	return &quorum.DeliverResult{Log: "invoked"}, nil
}

func addrs(t testing.TB, n int) []quorum.Address {
	t.Helper()
	out := make([]quorum.Address, n)
	for i := range out {
		out[i] = quorumtest.RandomAddr(t)
	}
	return out
}

func newTestController() (*Controller, *recordingInvoker) {
	inv := &recordingInvoker{}
	return NewController(stubDeriver{}, inv), inv
}

func mustCreateGroup(t testing.TB, ctrl *Controller, db quorum.KVStore, owners []quorum.Address, threshold uint32) []byte {
	t.Helper()
	id, _, err := ctrl.CreateGroup(context.Background(), db, "test group", owners, threshold, 0)
	require.NoError(t, err)
	return id
}

func mustPropose(t testing.TB, ctrl *Controller, db quorum.KVStore, groupID []byte, op *Operation, proposer quorum.Address) []byte {
	t.Helper()
	id, _, err := ctrl.Propose(context.Background(), db, groupID, op, proposer)
	require.NoError(t, err)
	return id
}

func externalOp(operands ...quorum.Address) *Operation {
	op := &Operation{
		Target:  "resource/transfer",
		Payload: []byte("payload"),
	}
	for _, a := range operands {
		op.Operands = append(op.Operands, &Operand{Address: a, IsWritable: true})
	}
	return op
}

func newStore() quorum.CacheableKVStore {
	return store.MemStore()
}
