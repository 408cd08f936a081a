package sigs

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/quorumtest"
)

// signedTx is a transaction carrying a raw payload as its sign bytes.
type signedTx struct {
	quorumtest.Tx
	payload    []byte
	signatures []*StdSignature
}

var _ SignedTx = (*signedTx)(nil)
var _ quorum.Tx = (*signedTx)(nil)

func newSignedTx(payload []byte, msg quorum.Msg) *signedTx {
	return &signedTx{
		Tx:      quorumtest.Tx{Msg: msg},
		payload: payload,
	}
}

func (tx *signedTx) GetSignBytes() ([]byte, error) {
	return tx.payload, nil
}

func (tx *signedTx) GetSignatures() []*StdSignature {
	return tx.signatures
}
