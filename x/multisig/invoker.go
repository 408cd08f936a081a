package multisig

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Invocation is an operation ready to be run on behalf of a group. Every
// operand referencing the group authority is flagged as a signer.
type Invocation struct {
	Target    string
	Operands  []Operand
	Payload   []byte
	Authority quorum.Condition
}

// ReferencesAuthority returns true if any operand is the authority address.
func (inv Invocation) ReferencesAuthority() bool {
	addr := inv.Authority.Address()
	for _, o := range inv.Operands {
		if addr.Equals(o.Address) {
			return true
		}
	}
	return false
}

// Invoker runs an external operation. Any error returned is propagated
// unchanged to the caller of Execute.
type Invoker interface {
	Invoke(ctx quorum.Context, db quorum.KVStore, inv Invocation) (*quorum.DeliverResult, error)
}

// MsgDecoder builds the message routed under given path from its
// serialized form.
type MsgDecoder interface {
	DecodeMsg(path string, raw []byte) (quorum.Msg, error)
}

// HandlerInvoker delivers an invocation to a handler, usually the
// application router. The handler sees only the group authority as the
// signer of the message.
type HandlerInvoker struct {
	handler quorum.Handler
	decoder MsgDecoder
}

var _ Invoker = (*HandlerInvoker)(nil)

// NewHandlerInvoker returns an invoker dispatching to given handler.
func NewHandlerInvoker(h quorum.Handler, d MsgDecoder) *HandlerInvoker {
	return &HandlerInvoker{handler: h, decoder: d}
}

func (hi *HandlerInvoker) Invoke(ctx quorum.Context, db quorum.KVStore, inv Invocation) (*quorum.DeliverResult, error) {
	addr := inv.Authority.Address()
	for i, o := range inv.Operands {
		if o.IsSigner && !addr.Equals(o.Address) {
			return nil, errors.Wrapf(errors.ErrUnauthorized, "operand %d: no signature of %s", i, o.Address)
		}
	}

	msg, err := hi.decoder.DecodeMsg(inv.Target, inv.Payload)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", inv.Target)
	}
	if msg.Path() != inv.Target {
		return nil, errors.Wrapf(errors.ErrType, "target %q decoded to %q message", inv.Target, msg.Path())
	}

	// Signatures of the executing transaction must not authorize the
	// invoked operation.
	ictx := quorum.Detach(ctx)
	if inv.ReferencesAuthority() {
		ictx = withAuthority(ictx, inv.Authority)
	}
	return hi.handler.Deliver(ictx, db, &invocationTx{msg: msg})
}

// invocationTx carries the decoded message of an invocation.
type invocationTx struct {
	msg quorum.Msg
}

var _ quorum.Tx = (*invocationTx)(nil)

func (tx *invocationTx) GetMsg() (quorum.Msg, error) {
	return tx.msg, nil
}
