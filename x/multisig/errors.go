package multisig

import "github.com/iov-one/quorum/errors"

// x/multisig reserves 1030 ~ 1039.
var (
	// ErrUnknownSigner is returned when an address that is not an
	// owner of the group proposes or approves.
	ErrUnknownSigner = errors.Register(1030, "signer is not a group owner")

	// ErrStaleConfig is returned when a proposal was created for an
	// owner set that is no longer current.
	ErrStaleConfig = errors.Register(1031, "stale group configuration")

	// ErrQuorumNotReached is returned when a proposal is executed
	// before collecting threshold approvals.
	ErrQuorumNotReached = errors.Register(1032, "quorum not reached")

	// ErrAlreadyExecuted is returned when a proposal is executed for
	// the second time.
	ErrAlreadyExecuted = errors.Register(1033, "proposal already executed")

	// ErrInvalidThreshold is returned when a threshold is zero or
	// greater than the number of owners.
	ErrInvalidThreshold = errors.Register(1034, "invalid threshold")
)
