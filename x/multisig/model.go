package multisig

import (
	"regexp"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
)

// maxAuthorityNonce is the greatest nonce value. A nonce is a single byte.
const maxAuthorityNonce = 255

// Group is the configuration of an M-of-N authority. Owners order is
// significant, because proposal approvals are stored positionally.
type Group struct {
	Metadata    *quorum.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Description string           `protobuf:"bytes,2,opt,name=description,proto3" json:"description,omitempty"`
	Owners      []quorum.Address `protobuf:"bytes,3,rep,name=owners,proto3,casttype=github.com/iov-one/quorum.Address" json:"owners,omitempty"`
	Threshold   uint32           `protobuf:"varint,4,opt,name=threshold,proto3" json:"threshold,omitempty"`
	// AuthorityNonce together with the group ID is used to derive the
	// authority of this group.
	AuthorityNonce uint32 `protobuf:"varint,5,opt,name=authority_nonce,json=authorityNonce,proto3" json:"authority_nonce,omitempty"`
	// ConfigVersion is incremented each time the owners change.
	ConfigVersion uint32 `protobuf:"varint,6,opt,name=config_version,json=configVersion,proto3" json:"config_version,omitempty"`
	// Authority is the address of the derived authority condition.
	Authority quorum.Address `protobuf:"bytes,7,opt,name=authority,proto3,casttype=github.com/iov-one/quorum.Address" json:"authority,omitempty"`
}

func (m *Group) Reset()         { *m = Group{} }
func (m *Group) String() string { return proto.CompactTextString(m) }
func (*Group) ProtoMessage()    {}

var _ orm.Model = (*Group)(nil)

func (g *Group) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", g.Metadata.Validate())
	errs = errors.AppendField(errs, "Owners", validateOwners(g.Owners))
	if err := validateThreshold(g.Threshold, len(g.Owners)); err != nil {
		errs = errors.AppendField(errs, "Threshold", err)
	}
	if g.AuthorityNonce > maxAuthorityNonce {
		errs = errors.Append(errs, errors.Field("AuthorityNonce", errors.ErrInput, "must not be greater than %d", maxAuthorityNonce))
	}
	errs = errors.AppendField(errs, "Authority", g.Authority.Validate())
	return errs
}

// OwnerIndex returns the position of given address in the owners list or -1.
func (g *Group) OwnerIndex(addr quorum.Address) int {
	for i, o := range g.Owners {
		if o.Equals(addr) {
			return i
		}
	}
	return -1
}

// validateOwners ensures the owner list is not empty, and contains only valid
// and distinct addresses.
func validateOwners(owners []quorum.Address) error {
	if len(owners) == 0 {
		return errors.Wrap(errors.ErrEmpty, "at least one owner required")
	}
	seen := make(map[string]struct{}, len(owners))
	for i, o := range owners {
		if err := o.Validate(); err != nil {
			return errors.Wrapf(err, "owner %d", i)
		}
		if _, ok := seen[string(o)]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "owner %d: %s", i, o)
		}
		seen[string(o)] = struct{}{}
	}
	return nil
}

func validateThreshold(threshold uint32, owners int) error {
	if threshold == 0 {
		return errors.Wrap(ErrInvalidThreshold, "must be greater than zero")
	}
	if int(threshold) > owners {
		return errors.Wrapf(ErrInvalidThreshold, "%d is greater than the number of owners %d", threshold, owners)
	}
	return nil
}

// Operand references an address an operation reads or writes.
type Operand struct {
	Address    quorum.Address `protobuf:"bytes,1,opt,name=address,proto3,casttype=github.com/iov-one/quorum.Address" json:"address,omitempty"`
	IsSigner   bool           `protobuf:"varint,2,opt,name=is_signer,json=isSigner,proto3" json:"is_signer,omitempty"`
	IsWritable bool           `protobuf:"varint,3,opt,name=is_writable,json=isWritable,proto3" json:"is_writable,omitempty"`
}

func (m *Operand) Reset()         { *m = Operand{} }
func (m *Operand) String() string { return proto.CompactTextString(m) }
func (*Operand) ProtoMessage()    {}

// Operation is a fully specified external operation. Target is the route
// path of the handler that processes the payload.
type Operation struct {
	Target   string     `protobuf:"bytes,1,opt,name=target,proto3" json:"target,omitempty"`
	Operands []*Operand `protobuf:"bytes,2,rep,name=operands,proto3" json:"operands,omitempty"`
	Payload  []byte     `protobuf:"bytes,3,opt,name=payload,proto3" json:"payload,omitempty"`
}

func (m *Operation) Reset()         { *m = Operation{} }
func (m *Operation) String() string { return proto.CompactTextString(m) }
func (*Operation) ProtoMessage()    {}

var isPath = regexp.MustCompile(`^[a-zA-Z0-9_\-]+(/[a-zA-Z0-9_\-]+)*$`).MatchString

func (op *Operation) Validate() error {
	if op == nil {
		return errors.Wrap(errors.ErrEmpty, "operation")
	}
	var errs error
	if !isPath(op.Target) {
		errs = errors.Append(errs, errors.Field("Target", errors.ErrInput, "invalid route path %q", op.Target))
	}
	for i, o := range op.Operands {
		if o == nil {
			errs = errors.Append(errs, errors.Field("Operands", errors.ErrEmpty, "operand %d", i))
			continue
		}
		if err := o.Address.Validate(); err != nil {
			errs = errors.Append(errs, errors.Field("Operands", err, "operand %d", i))
		}
	}
	return errs
}

// Proposal is an operation awaiting approvals of the owners of a group.
// Approvals hold one slot per owner position of the group at the time the
// proposal was created.
type Proposal struct {
	Metadata      *quorum.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	GroupID       []byte           `protobuf:"bytes,2,opt,name=group_id,json=groupId,proto3" json:"group_id,omitempty"`
	Operation     *Operation       `protobuf:"bytes,3,opt,name=operation,proto3" json:"operation,omitempty"`
	Approvals     []bool           `protobuf:"varint,4,rep,packed,name=approvals,proto3" json:"approvals,omitempty"`
	Executed      bool             `protobuf:"varint,5,opt,name=executed,proto3" json:"executed,omitempty"`
	ConfigVersion uint32           `protobuf:"varint,6,opt,name=config_version,json=configVersion,proto3" json:"config_version,omitempty"`
	Proposer      quorum.Address   `protobuf:"bytes,7,opt,name=proposer,proto3,casttype=github.com/iov-one/quorum.Address" json:"proposer,omitempty"`
}

func (m *Proposal) Reset()         { *m = Proposal{} }
func (m *Proposal) String() string { return proto.CompactTextString(m) }
func (*Proposal) ProtoMessage()    {}

var _ orm.Model = (*Proposal)(nil)

func (p *Proposal) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", p.Metadata.Validate())
	if len(p.GroupID) == 0 {
		errs = errors.Append(errs, errors.Field("GroupID", errors.ErrEmpty, "required"))
	}
	errs = errors.AppendField(errs, "Operation", p.Operation.Validate())
	if len(p.Approvals) == 0 {
		errs = errors.Append(errs, errors.Field("Approvals", errors.ErrEmpty, "required"))
	}
	errs = errors.AppendField(errs, "Proposer", p.Proposer.Validate())
	return errs
}

// ApprovalCount returns the number of owners that approved the proposal.
func (p *Proposal) ApprovalCount() int {
	var n int
	for _, ok := range p.Approvals {
		if ok {
			n++
		}
	}
	return n
}
