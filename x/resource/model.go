package resource

import (
	"regexp"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
)

// Resource is a named entity owned by a single address. The name is the
// database key.
type Resource struct {
	Metadata *quorum.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Owner    quorum.Address   `protobuf:"bytes,2,opt,name=owner,proto3,casttype=github.com/iov-one/quorum.Address" json:"owner,omitempty"`
	// Data is an opaque content of the resource.
	Data []byte `protobuf:"bytes,3,opt,name=data,proto3" json:"data,omitempty"`
}

func (m *Resource) Reset()         { *m = Resource{} }
func (m *Resource) String() string { return proto.CompactTextString(m) }
func (*Resource) ProtoMessage()    {}

var _ orm.Model = (*Resource)(nil)

func (r *Resource) Validate() error {
	if err := r.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := r.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if len(r.Data) > maxDataLen {
		return errors.Wrapf(errors.ErrInput, "data longer than %d bytes", maxDataLen)
	}
	return nil
}

const maxDataLen = 1024

var validName = regexp.MustCompile(`^[a-z0-9_.\-]{3,64}$`).MatchString

func validateName(name string) error {
	if !validName(name) {
		return errors.Wrapf(errors.ErrInput, "invalid resource name %q", name)
	}
	return nil
}

// NewBucket returns a bucket of resources indexed by owner.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("resources", &Resource{},
		orm.WithIndex("owner", ownerIndexer, false))
}

func ownerIndexer(m orm.Model) ([]byte, error) {
	r, ok := m.(*Resource)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return r.Owner, nil
}

// RegisterQuery expose resources bucket to queries.
func RegisterQuery(qr quorum.QueryRouter) {
	NewBucket().Register("resources", qr)
}
