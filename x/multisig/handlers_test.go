package multisig

import (
	"context"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/gconf"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/x"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRouter dispatches a transaction to the handler registered for the
// message path.
type testRouter map[string]quorum.Handler

func (r testRouter) Handle(path string, h quorum.Handler) {
	r[path] = h
}

func (r testRouter) route(tx quorum.Tx) (quorum.Handler, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	h, ok := r[msg.Path()]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no handler for %q", msg.Path())
	}
	return h, nil
}

func (r testRouter) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	h, err := r.route(tx)
	if err != nil {
		return nil, err
	}
	return h.Check(ctx, db, tx)
}

func (r testRouter) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	h, err := r.route(tx)
	if err != nil {
		return nil, err
	}
	return h.Deliver(ctx, db, tx)
}

// mockDecoder wraps any payload into a mock message routed to the target.
type mockDecoder struct{}

func (mockDecoder) DecodeMsg(path string, raw []byte) (quorum.Msg, error) {
	return &quorumtest.Msg{RoutePath: path, Body: raw}, nil
}

type handlerFixture struct {
	db        quorum.CacheableKVStore
	signers   *quorumtest.CtxAuth
	router    testRouter
	protected *quorumtest.Handler
	ctrl      *Controller
}

func newHandlerFixture() *handlerFixture {
	signers := &quorumtest.CtxAuth{Key: "signers"}
	router := testRouter{}
	protected := &quorumtest.Handler{}
	router.Handle("test/protected", protected)

	ctrl := NewController(ConditionDeriver{}, NewHandlerInvoker(router, mockDecoder{}))
	RegisterRoutes(router, x.ChainAuth(signers, Authenticate{}), ctrl)
	return &handlerFixture{
		db:        newStore(),
		signers:   signers,
		router:    router,
		protected: protected,
		ctrl:      ctrl,
	}
}

func (f *handlerFixture) deliver(t testing.TB, msg quorum.Msg, signers ...quorum.Condition) (*quorum.DeliverResult, error) {
	t.Helper()
	ctx := f.signers.SetConditions(context.Background(), signers...)
	tx := &quorumtest.Tx{Msg: msg}
	if _, err := f.router.Check(ctx, f.db, tx); err != nil {
		return nil, err
	}
	return f.router.Deliver(ctx, f.db, tx)
}

func TestHandlersFlow(t *testing.T) {
	f := newHandlerFixture()
	alice := quorumtest.NewCondition()
	bob := quorumtest.NewCondition()
	carol := quorumtest.NewCondition()
	meta := &quorum.Metadata{Schema: 1}

	res, err := f.deliver(t, &CreateGroupMsg{
		Metadata:  meta,
		Owners:    []quorum.Address{alice.Address(), bob.Address(), carol.Address()},
		Threshold: 2,
	}, carol)
	require.NoError(t, err)
	groupID := res.Data
	assert.Equal(t, quorumtest.SequenceID(1), groupID)

	authority, err := f.ctrl.Authority(f.db, groupID)
	require.NoError(t, err)

	var (
		sawAuthority bool
		sawSigners   []quorum.Condition
	)
	f.protected.OnDeliver = func(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) {
		sawAuthority = Authenticate{}.HasAddress(ctx, authority.Address())
		sawSigners = f.signers.GetConditions(ctx)
	}

	op := &Operation{
		Target:   "test/protected",
		Operands: []*Operand{{Address: authority.Address(), IsWritable: true}},
		Payload:  []byte("do it"),
	}
	_, err = f.deliver(t, &CreateProposalMsg{Metadata: meta, GroupID: groupID, Operation: op}, quorumtest.NewCondition())
	assert.True(t, ErrUnknownSigner.Is(err), "%+v", err)

	res, err = f.deliver(t, &CreateProposalMsg{Metadata: meta, GroupID: groupID, Operation: op}, alice)
	require.NoError(t, err)
	proposalID := res.Data

	_, err = f.deliver(t, &ExecuteMsg{Metadata: meta, ProposalID: proposalID})
	assert.True(t, ErrQuorumNotReached.Is(err), "%+v", err)
	assert.Equal(t, 0, f.protected.DeliverCallCount())

	_, err = f.deliver(t, &ApproveMsg{Metadata: meta, ProposalID: proposalID})
	assert.True(t, errors.ErrUnauthorized.Is(err), "%+v", err)

	res, err = f.deliver(t, &ApproveMsg{Metadata: meta, ProposalID: proposalID}, bob)
	require.NoError(t, err)
	assert.Equal(t, proposalID, res.Data)

	// Anyone can execute. Signers of the executing transaction are not
	// visible to the invoked handler.
	res, err = f.deliver(t, &ExecuteMsg{Metadata: meta, ProposalID: proposalID}, carol)
	require.NoError(t, err)
	assert.Equal(t, proposalID, res.Data)
	assert.Equal(t, 1, f.protected.DeliverCallCount())
	assert.True(t, sawAuthority, "authority must authenticate the invocation")
	assert.Empty(t, sawSigners)

	tx, ok := f.protected.LastTx().(*invocationTx)
	require.True(t, ok)
	assert.Equal(t, []byte("do it"), tx.msg.(*quorumtest.Msg).Body)

	_, err = f.deliver(t, &ExecuteMsg{Metadata: meta, ProposalID: proposalID})
	assert.True(t, ErrAlreadyExecuted.Is(err), "%+v", err)
	assert.Equal(t, 1, f.protected.DeliverCallCount())
}

func TestHandlerInvokerWithoutAuthorityOperand(t *testing.T) {
	f := newHandlerFixture()
	alice := quorumtest.NewCondition()
	meta := &quorum.Metadata{Schema: 1}

	groupID, _, err := f.ctrl.CreateGroup(context.Background(), f.db, "", []quorum.Address{alice.Address()}, 1, 0)
	require.NoError(t, err)
	authority, err := f.ctrl.Authority(f.db, groupID)
	require.NoError(t, err)

	var sawAuthority bool
	f.protected.OnDeliver = func(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) {
		sawAuthority = Authenticate{}.HasAddress(ctx, authority.Address())
	}

	op := &Operation{Target: "test/protected"}
	res, err := f.deliver(t, &CreateProposalMsg{Metadata: meta, GroupID: groupID, Operation: op}, alice)
	require.NoError(t, err)
	_, err = f.deliver(t, &ExecuteMsg{Metadata: meta, ProposalID: res.Data})
	require.NoError(t, err)
	assert.False(t, sawAuthority, "authority granted only when referenced")
}

func TestHandlerInvokerRejectsForeignSigner(t *testing.T) {
	f := newHandlerFixture()
	alice := quorumtest.NewCondition()
	meta := &quorum.Metadata{Schema: 1}

	groupID, _, err := f.ctrl.CreateGroup(context.Background(), f.db, "", []quorum.Address{alice.Address()}, 1, 0)
	require.NoError(t, err)

	op := &Operation{
		Target:   "test/protected",
		Operands: []*Operand{{Address: alice.Address(), IsSigner: true}},
	}
	res, err := f.deliver(t, &CreateProposalMsg{Metadata: meta, GroupID: groupID, Operation: op}, alice)
	require.NoError(t, err)

	_, err = f.deliver(t, &ExecuteMsg{Metadata: meta, ProposalID: res.Data}, alice)
	assert.True(t, errors.ErrUnauthorized.Is(err), "%+v", err)
	assert.Equal(t, 0, f.protected.DeliverCallCount())
}

func TestGovernanceIsNotRouted(t *testing.T) {
	f := newHandlerFixture()
	for _, path := range []string{pathSetOwnersMsg, pathChangeThresholdMsg, pathSetOwnersAndChangeThresholdMsg} {
		_, ok := f.router[path]
		assert.False(t, ok, path)
	}
	_, ok := f.router[pathExecuteMsg]
	assert.True(t, ok)
}

func TestUpdateConfiguration(t *testing.T) {
	f := newHandlerFixture()
	owner := quorumtest.NewCondition()
	meta := &quorum.Metadata{Schema: 1}

	require.NoError(t, gconf.Save(f.db, packageName, &Configuration{
		Metadata:  meta,
		Owner:     owner.Address(),
		MaxOwners: 10,
	}))

	msg := &UpdateConfigurationMsg{
		Metadata: meta,
		Patch:    &Configuration{Metadata: meta, MaxOwners: 2},
	}
	_, err := f.deliver(t, msg, quorumtest.NewCondition())
	assert.True(t, errors.ErrUnauthorized.Is(err), "%+v", err)

	_, err = f.deliver(t, msg, owner)
	require.NoError(t, err)

	var conf Configuration
	require.NoError(t, gconf.Load(f.db, packageName, &conf))
	assert.Equal(t, uint32(2), conf.MaxOwners)
	assert.Equal(t, owner.Address(), conf.Owner)

	_, err = f.deliver(t, &CreateGroupMsg{
		Metadata:  meta,
		Owners:    addrs(t, 3),
		Threshold: 1,
	}, owner)
	assert.True(t, errors.ErrInput.Is(err), "%+v", err)
}
