package quorumtest

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/orm"
)

// NewKey returns a new random ed25519 private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns a signature condition of a new random key.
func NewCondition() quorum.Condition {
	return NewKey().PublicKey().Condition()
}

// SequenceID returns the binary representation of the n-th value of an orm
// sequence. Use it to predict the keys of entities created with an id
// sequence.
func SequenceID(n int64) []byte {
	return orm.EncodeSequence(n)
}
