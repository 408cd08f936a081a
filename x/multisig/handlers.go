package multisig

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/gconf"
	"github.com/iov-one/quorum/x"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	tagAction   = "action"
	tagGroup    = "group"
	tagProposal = "proposal"
)

// RegisterRoutes will instantiate and register all handlers in this
// package. Governance messages are not registered, because they can only be
// executed through a proposal.
func RegisterRoutes(r quorum.Registry, auth x.Authenticator, ctrl *Controller) {
	r.Handle(pathCreateGroupMsg, &createGroupHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathCreateProposalMsg, &createProposalHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathApproveMsg, &approveHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathExecuteMsg, &executeHandler{ctrl: ctrl})
	r.Handle(pathUpdateConfigurationMsg, gconf.NewUpdateConfigurationHandler(packageName, &Configuration{}, auth))
}

// RegisterQuery register queries from buckets in this package
func RegisterQuery(qr quorum.QueryRouter) {
	NewGroupBucket().Register("groups", qr)
	NewProposalBucket().Register("proposals", qr)
}

type createGroupHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ quorum.Handler = (*createGroupHandler)(nil)

func (h *createGroupHandler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.checkOwners(db, msg.Owners); err != nil {
		return nil, err
	}
	return &quorum.CheckResult{}, nil
}

func (h *createGroupHandler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	id, _, err := h.ctrl.CreateGroup(ctx, db, msg.Description, msg.Owners, msg.Threshold, msg.AuthorityNonce)
	if err != nil {
		return nil, err
	}
	return &quorum.DeliverResult{
		Data: id,
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("create_group")},
			{Key: []byte(tagGroup), Value: id},
		},
	}, nil
}

func (h *createGroupHandler) validate(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*CreateGroupMsg, error) {
	var msg CreateGroupMsg
	if err := quorum.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := x.RequireSigner(ctx, h.auth); err != nil {
		return nil, err
	}
	return &msg, nil
}

type createProposalHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ quorum.Handler = (*createProposalHandler)(nil)

func (h *createProposalHandler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	msg, proposer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	g, err := h.ctrl.Group(db, msg.GroupID)
	if err != nil {
		return nil, err
	}
	if g.OwnerIndex(proposer) < 0 {
		return nil, errors.Wrapf(ErrUnknownSigner, "proposer %s", proposer)
	}
	return &quorum.CheckResult{}, nil
}

func (h *createProposalHandler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	msg, proposer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	id, _, err := h.ctrl.Propose(ctx, db, msg.GroupID, msg.Operation, proposer)
	if err != nil {
		return nil, err
	}
	return &quorum.DeliverResult{
		Data: id,
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("create_proposal")},
			{Key: []byte(tagGroup), Value: msg.GroupID},
			{Key: []byte(tagProposal), Value: id},
		},
	}, nil
}

func (h *createProposalHandler) validate(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*CreateProposalMsg, quorum.Address, error) {
	var msg CreateProposalMsg
	if err := quorum.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	signer, err := x.RequireSigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, signer.Address(), nil
}

type approveHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ quorum.Handler = (*approveHandler)(nil)

func (h *approveHandler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	msg, owner, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.CheckApprove(db, msg.ProposalID, owner); err != nil {
		return nil, err
	}
	return &quorum.CheckResult{}, nil
}

func (h *approveHandler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	msg, owner, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	p, err := h.ctrl.Approve(ctx, db, msg.ProposalID, owner)
	if err != nil {
		return nil, err
	}
	return &quorum.DeliverResult{
		Data: msg.ProposalID,
		Tags: []common.KVPair{
			{Key: []byte(tagAction), Value: []byte("approve")},
			{Key: []byte(tagGroup), Value: p.GroupID},
			{Key: []byte(tagProposal), Value: msg.ProposalID},
		},
	}, nil
}

func (h *approveHandler) validate(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*ApproveMsg, quorum.Address, error) {
	var msg ApproveMsg
	if err := quorum.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	signer, err := x.RequireSigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	return &msg, signer.Address(), nil
}

// executeHandler does not authenticate. Anyone can execute a proposal that
// reached quorum.
type executeHandler struct {
	ctrl *Controller
}

var _ quorum.Handler = (*executeHandler)(nil)

func (h *executeHandler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	var msg ExecuteMsg
	if err := quorum.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.ctrl.CheckExecute(db, msg.ProposalID); err != nil {
		return nil, err
	}
	return &quorum.CheckResult{}, nil
}

func (h *executeHandler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	var msg ExecuteMsg
	if err := quorum.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	cdb, ok := db.(quorum.CacheableKVStore)
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "store %T cannot be cache wrapped", db)
	}
	res, err := h.ctrl.Execute(ctx, cdb, msg.ProposalID)
	if err != nil {
		return nil, err
	}

	out := &quorum.DeliverResult{Data: msg.ProposalID}
	if res.Result != nil {
		out.Log = res.Result.Log
		out.Tags = append(out.Tags, res.Result.Tags...)
	}
	out.Tags = append(out.Tags, []common.KVPair{
		{Key: []byte(tagAction), Value: []byte("execute")},
		{Key: []byte(tagGroup), Value: res.GroupID},
		{Key: []byte(tagProposal), Value: msg.ProposalID},
	}...)
	return out, nil
}
