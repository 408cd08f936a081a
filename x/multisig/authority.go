package multisig

import (
	"github.com/iov-one/quorum"
)

// Deriver computes the authority condition of a group. The same group ID and
// nonce must always produce the same condition.
type Deriver interface {
	Derive(groupID []byte, nonce uint32) quorum.Condition
}

// ConditionDeriver is the default Deriver. The authority of a group is the
// condition
//
//	multisig/authority/<group id><nonce byte>
//
// which has no private key and can be fulfilled only by this extension.
type ConditionDeriver struct{}

var _ Deriver = ConditionDeriver{}

func (ConditionDeriver) Derive(groupID []byte, nonce uint32) quorum.Condition {
	data := make([]byte, 0, len(groupID)+1)
	data = append(data, groupID...)
	data = append(data, byte(nonce))
	return quorum.NewCondition("multisig", "authority", data)
}

// Credential is a proof of consent of a group. It can only be created by the
// Controller while executing a proposal that reached quorum, and it is the
// only way to call the governance methods of the Controller.
type Credential struct {
	groupID   []byte
	authority quorum.Condition
}

func newCredential(groupID []byte, authority quorum.Condition) Credential {
	return Credential{groupID: groupID, authority: authority}
}

// Authority returns the condition this credential was minted for.
func (c Credential) Authority() quorum.Condition {
	return c.authority
}
