package multisig

import (
	"context"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/x"
)

type contextKey int // local to the multisig module

const (
	contextKeyAuthority contextKey = iota
)

// withAuthority is a private method, as only this module can grant the
// authority of a group.
func withAuthority(ctx quorum.Context, authority quorum.Condition) quorum.Context {
	return context.WithValue(ctx, contextKeyAuthority, authority)
}

// Authenticate exposes the group authority granted while a proposal is
// executed.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns the authority set on this context, if any.
func (a Authenticate) GetConditions(ctx quorum.Context) []quorum.Condition {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeyAuthority).(quorum.Condition)
	if val == nil {
		return nil
	}
	return []quorum.Condition{val}
}

// HasAddress returns true iff this address is in GetConditions
func (a Authenticate) HasAddress(ctx quorum.Context, addr quorum.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
