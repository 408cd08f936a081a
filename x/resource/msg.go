package resource

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

const (
	pathRegisterMsg = "resource/register"
	pathTransferMsg = "resource/transfer"
)

// RegisterMsg creates a new resource. When Owner is not set, the main signer
// becomes the owner.
type RegisterMsg struct {
	Metadata *quorum.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Name     string           `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Owner    quorum.Address   `protobuf:"bytes,3,opt,name=owner,proto3,casttype=github.com/iov-one/quorum.Address" json:"owner,omitempty"`
	Data     []byte           `protobuf:"bytes,4,opt,name=data,proto3" json:"data,omitempty"`
}

func (m *RegisterMsg) Reset()         { *m = RegisterMsg{} }
func (m *RegisterMsg) String() string { return proto.CompactTextString(m) }
func (*RegisterMsg) ProtoMessage()    {}

var _ quorum.Msg = (*RegisterMsg)(nil)

func (RegisterMsg) Path() string {
	return pathRegisterMsg
}

func (m *RegisterMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Name", validateName(m.Name))
	if len(m.Owner) != 0 {
		errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	}
	if len(m.Data) > maxDataLen {
		errs = errors.Append(errs, errors.Field("Data", errors.ErrInput, "longer than %d bytes", maxDataLen))
	}
	return errs
}

// TransferMsg changes the owner of a resource. It must be authorized by the
// current owner.
type TransferMsg struct {
	Metadata *quorum.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Name     string           `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	NewOwner quorum.Address   `protobuf:"bytes,3,opt,name=new_owner,json=newOwner,proto3,casttype=github.com/iov-one/quorum.Address" json:"new_owner,omitempty"`
}

func (m *TransferMsg) Reset()         { *m = TransferMsg{} }
func (m *TransferMsg) String() string { return proto.CompactTextString(m) }
func (*TransferMsg) ProtoMessage()    {}

var _ quorum.Msg = (*TransferMsg)(nil)

func (TransferMsg) Path() string {
	return pathTransferMsg
}

func (m *TransferMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Name", validateName(m.Name))
	errs = errors.AppendField(errs, "NewOwner", m.NewOwner.Validate())
	return errs
}
