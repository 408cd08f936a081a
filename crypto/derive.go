package crypto

import (
	"github.com/iov-one/quorum/errors"
	"github.com/stellar/go/exp/crypto/derivation"
)

// DerivePrivKeyEd25519 derives a private key from the master seed using
// SLIP-0010 and given path, for example "m/44'/234'/0'". Only hardened paths
// are supported.
func DerivePrivKeyEd25519(seed []byte, path string) (*PrivateKey, error) {
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "derive path %q: %s", path, err)
	}
	return PrivKeyEd25519FromSeed(k.Key), nil
}
