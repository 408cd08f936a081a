package multisig

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

const (
	pathCreateGroupMsg         = "multisig/create_group"
	pathCreateProposalMsg      = "multisig/create_proposal"
	pathApproveMsg             = "multisig/approve"
	pathExecuteMsg             = "multisig/execute"
	pathUpdateConfigurationMsg = "multisig/update_configuration"

	// Governance paths are never routed. They can only be the target of
	// a proposal operation.
	pathSetOwnersMsg                   = "multisig/set_owners"
	pathChangeThresholdMsg             = "multisig/change_threshold"
	pathSetOwnersAndChangeThresholdMsg = "multisig/set_owners_and_change_threshold"
)

// CreateGroupMsg creates a new group. Owners must be distinct.
type CreateGroupMsg struct {
	Metadata       *quorum.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Description    string           `protobuf:"bytes,2,opt,name=description,proto3" json:"description,omitempty"`
	Owners         []quorum.Address `protobuf:"bytes,3,rep,name=owners,proto3,casttype=github.com/iov-one/quorum.Address" json:"owners,omitempty"`
	Threshold      uint32           `protobuf:"varint,4,opt,name=threshold,proto3" json:"threshold,omitempty"`
	AuthorityNonce uint32           `protobuf:"varint,5,opt,name=authority_nonce,json=authorityNonce,proto3" json:"authority_nonce,omitempty"`
}

func (m *CreateGroupMsg) Reset()         { *m = CreateGroupMsg{} }
func (m *CreateGroupMsg) String() string { return proto.CompactTextString(m) }
func (*CreateGroupMsg) ProtoMessage()    {}

var _ quorum.Msg = (*CreateGroupMsg)(nil)

func (CreateGroupMsg) Path() string {
	return pathCreateGroupMsg
}

func (m *CreateGroupMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owners", validateOwners(m.Owners))
	if err := validateThreshold(m.Threshold, len(m.Owners)); err != nil {
		errs = errors.AppendField(errs, "Threshold", err)
	}
	if m.AuthorityNonce > maxAuthorityNonce {
		errs = errors.Append(errs, errors.Field("AuthorityNonce", errors.ErrInput, "must not be greater than %d", maxAuthorityNonce))
	}
	return errs
}

// CreateProposalMsg creates a proposal of an operation. The main signer must
// be an owner of the group and its approval is recorded immediately.
type CreateProposalMsg struct {
	Metadata  *quorum.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	GroupID   []byte           `protobuf:"bytes,2,opt,name=group_id,json=groupId,proto3" json:"group_id,omitempty"`
	Operation *Operation       `protobuf:"bytes,3,opt,name=operation,proto3" json:"operation,omitempty"`
}

func (m *CreateProposalMsg) Reset()         { *m = CreateProposalMsg{} }
func (m *CreateProposalMsg) String() string { return proto.CompactTextString(m) }
func (*CreateProposalMsg) ProtoMessage()    {}

var _ quorum.Msg = (*CreateProposalMsg)(nil)

func (CreateProposalMsg) Path() string {
	return pathCreateProposalMsg
}

func (m *CreateProposalMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.GroupID) == 0 {
		errs = errors.Append(errs, errors.Field("GroupID", errors.ErrEmpty, "required"))
	}
	errs = errors.AppendField(errs, "Operation", m.Operation.Validate())
	return errs
}

// ApproveMsg records the approval of the main signer.
type ApproveMsg struct {
	Metadata   *quorum.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	ProposalID []byte           `protobuf:"bytes,2,opt,name=proposal_id,json=proposalId,proto3" json:"proposal_id,omitempty"`
}

func (m *ApproveMsg) Reset()         { *m = ApproveMsg{} }
func (m *ApproveMsg) String() string { return proto.CompactTextString(m) }
func (*ApproveMsg) ProtoMessage()    {}

var _ quorum.Msg = (*ApproveMsg)(nil)

func (ApproveMsg) Path() string {
	return pathApproveMsg
}

func (m *ApproveMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.ProposalID) == 0 {
		errs = errors.Append(errs, errors.Field("ProposalID", errors.ErrEmpty, "required"))
	}
	return errs
}

// ExecuteMsg executes a proposal that reached quorum. Anyone can submit it.
type ExecuteMsg struct {
	Metadata   *quorum.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	ProposalID []byte           `protobuf:"bytes,2,opt,name=proposal_id,json=proposalId,proto3" json:"proposal_id,omitempty"`
}

func (m *ExecuteMsg) Reset()         { *m = ExecuteMsg{} }
func (m *ExecuteMsg) String() string { return proto.CompactTextString(m) }
func (*ExecuteMsg) ProtoMessage()    {}

var _ quorum.Msg = (*ExecuteMsg)(nil)

func (ExecuteMsg) Path() string {
	return pathExecuteMsg
}

func (m *ExecuteMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.ProposalID) == 0 {
		errs = errors.Append(errs, errors.Field("ProposalID", errors.ErrEmpty, "required"))
	}
	return errs
}

// SetOwnersMsg replaces the owners of the group that executes it.
type SetOwnersMsg struct {
	Metadata *quorum.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Owners   []quorum.Address `protobuf:"bytes,2,rep,name=owners,proto3,casttype=github.com/iov-one/quorum.Address" json:"owners,omitempty"`
}

func (m *SetOwnersMsg) Reset()         { *m = SetOwnersMsg{} }
func (m *SetOwnersMsg) String() string { return proto.CompactTextString(m) }
func (*SetOwnersMsg) ProtoMessage()    {}

var _ quorum.Msg = (*SetOwnersMsg)(nil)

func (SetOwnersMsg) Path() string {
	return pathSetOwnersMsg
}

func (m *SetOwnersMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owners", validateOwners(m.Owners))
	return errs
}

// ChangeThresholdMsg changes the threshold of the group that executes it.
// The threshold is validated against the owners when the message is
// executed.
type ChangeThresholdMsg struct {
	Metadata  *quorum.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Threshold uint32           `protobuf:"varint,2,opt,name=threshold,proto3" json:"threshold,omitempty"`
}

func (m *ChangeThresholdMsg) Reset()         { *m = ChangeThresholdMsg{} }
func (m *ChangeThresholdMsg) String() string { return proto.CompactTextString(m) }
func (*ChangeThresholdMsg) ProtoMessage()    {}

var _ quorum.Msg = (*ChangeThresholdMsg)(nil)

func (ChangeThresholdMsg) Path() string {
	return pathChangeThresholdMsg
}

func (m *ChangeThresholdMsg) Validate() error {
	return errors.AppendField(nil, "Metadata", m.Metadata.Validate())
}

// SetOwnersAndChangeThresholdMsg replaces the owners and the threshold of the
// group that executes it in a single step.
type SetOwnersAndChangeThresholdMsg struct {
	Metadata  *quorum.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Owners    []quorum.Address `protobuf:"bytes,2,rep,name=owners,proto3,casttype=github.com/iov-one/quorum.Address" json:"owners,omitempty"`
	Threshold uint32           `protobuf:"varint,3,opt,name=threshold,proto3" json:"threshold,omitempty"`
}

func (m *SetOwnersAndChangeThresholdMsg) Reset()         { *m = SetOwnersAndChangeThresholdMsg{} }
func (m *SetOwnersAndChangeThresholdMsg) String() string { return proto.CompactTextString(m) }
func (*SetOwnersAndChangeThresholdMsg) ProtoMessage()    {}

var _ quorum.Msg = (*SetOwnersAndChangeThresholdMsg)(nil)

func (SetOwnersAndChangeThresholdMsg) Path() string {
	return pathSetOwnersAndChangeThresholdMsg
}

func (m *SetOwnersAndChangeThresholdMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owners", validateOwners(m.Owners))
	return errs
}

// UpdateConfigurationMsg patches the extension configuration. Only non zero
// fields of the patch are applied.
type UpdateConfigurationMsg struct {
	Metadata *quorum.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Patch    *Configuration   `protobuf:"bytes,2,opt,name=patch,proto3" json:"patch,omitempty"`
}

func (m *UpdateConfigurationMsg) Reset()         { *m = UpdateConfigurationMsg{} }
func (m *UpdateConfigurationMsg) String() string { return proto.CompactTextString(m) }
func (*UpdateConfigurationMsg) ProtoMessage()    {}

var _ quorum.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfigurationMsg
}

func (m *UpdateConfigurationMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	return nil
}

// GovernanceMsg decodes the payload of an operation targeting one of the
// governance paths. The returned flag is false when the target is not a
// governance path.
func GovernanceMsg(target string, payload []byte) (quorum.Msg, bool, error) {
	var msg quorum.Msg
	switch target {
	case pathSetOwnersMsg:
		msg = &SetOwnersMsg{}
	case pathChangeThresholdMsg:
		msg = &ChangeThresholdMsg{}
	case pathSetOwnersAndChangeThresholdMsg:
		msg = &SetOwnersAndChangeThresholdMsg{}
	default:
		return nil, false, nil
	}
	if err := proto.Unmarshal(payload, msg); err != nil {
		return nil, true, errors.Wrapf(errors.ErrInput, "%s payload: %s", target, err)
	}
	if err := msg.Validate(); err != nil {
		return nil, true, errors.Wrapf(err, "%s payload", target)
	}
	return msg, true, nil
}
