package resource

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
	"github.com/iov-one/quorum/x"
	"github.com/tendermint/tendermint/libs/common"
)

// RegisterRoutes registers resource handlers.
func RegisterRoutes(r quorum.Registry, auth x.Authenticator) {
	b := NewBucket()
	r.Handle(pathRegisterMsg, &registerHandler{auth: auth, bucket: b})
	r.Handle(pathTransferMsg, &transferHandler{auth: auth, bucket: b})
}

type registerHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

func (h *registerHandler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &quorum.CheckResult{}, nil
}

func (h *registerHandler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	msg, owner, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	res := Resource{
		Metadata: &quorum.Metadata{Schema: 1},
		Owner:    owner,
		Data:     msg.Data,
	}
	if _, err := h.bucket.Put(db, []byte(msg.Name), &res); err != nil {
		return nil, errors.Wrap(err, "cannot store resource")
	}
	return &quorum.DeliverResult{
		Data: []byte(msg.Name),
		Tags: []common.KVPair{
			{Key: []byte("action"), Value: []byte("register_resource")},
			{Key: []byte("owner"), Value: owner},
		},
	}, nil
}

func (h *registerHandler) validate(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*RegisterMsg, quorum.Address, error) {
	var msg RegisterMsg
	if err := quorum.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}

	signer, err := x.RequireSigner(ctx, h.auth)
	if err != nil {
		return nil, nil, err
	}
	owner := msg.Owner
	if len(owner) == 0 {
		owner = signer.Address()
	}

	switch err := h.bucket.Has(db, []byte(msg.Name)); {
	case err == nil:
		return nil, nil, errors.Wrapf(errors.ErrDuplicate, "resource %q already registered", msg.Name)
	case errors.ErrNotFound.Is(err):
		// All good. Name is not taken yet.
	default:
		return nil, nil, errors.Wrap(err, "cannot check if name is unique")
	}
	return &msg, owner, nil
}

type transferHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

func (h *transferHandler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &quorum.CheckResult{}, nil
}

func (h *transferHandler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	msg, res, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	prev := res.Owner
	res.Owner = msg.NewOwner
	if _, err := h.bucket.Put(db, []byte(msg.Name), res); err != nil {
		return nil, errors.Wrap(err, "cannot store resource")
	}
	quorum.GetLogger(ctx).Debug("resource transferred",
		"name", msg.Name,
		"from", prev,
		"to", msg.NewOwner)
	return &quorum.DeliverResult{
		Data: []byte(msg.Name),
		Tags: []common.KVPair{
			{Key: []byte("action"), Value: []byte("transfer_resource")},
			{Key: []byte("owner"), Value: msg.NewOwner},
		},
	}, nil
}

func (h *transferHandler) validate(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*TransferMsg, *Resource, error) {
	var msg TransferMsg
	if err := quorum.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}

	var res Resource
	if err := h.bucket.One(db, []byte(msg.Name), &res); err != nil {
		return nil, nil, errors.Wrap(err, "cannot get resource from database")
	}

	if !h.auth.HasAddress(ctx, res.Owner) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "only the resource owner can execute this operation")
	}
	return &msg, &res, nil
}
