package multisig

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/gconf"
)

const (
	packageName = "multisig"

	// DefaultMaxOwners is used when no configuration was stored.
	DefaultMaxOwners = 100
)

// Configuration holds the extension settings. It is stored as a gconf
// singleton and can be updated by its owner.
type Configuration struct {
	Metadata *quorum.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	// Owner is allowed to update the configuration.
	Owner quorum.Address `protobuf:"bytes,2,opt,name=owner,proto3,casttype=github.com/iov-one/quorum.Address" json:"owner,omitempty"`
	// MaxOwners limits the number of owners a group can have.
	MaxOwners uint32 `protobuf:"varint,3,opt,name=max_owners,json=maxOwners,proto3" json:"max_owners,omitempty"`
}

func (m *Configuration) Reset()         { *m = Configuration{} }
func (m *Configuration) String() string { return proto.CompactTextString(m) }
func (*Configuration) ProtoMessage()    {}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) GetOwner() quorum.Address {
	if c == nil {
		return nil
	}
	return c.Owner
}

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	if len(c.Owner) != 0 {
		errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	}
	if c.MaxOwners == 0 {
		errs = errors.Append(errs, errors.Field("MaxOwners", errors.ErrEmpty, "must be greater than zero"))
	}
	return errs
}

// loadMaxOwners returns the configured owner limit, or the default when the
// configuration was never stored.
func loadMaxOwners(db gconf.ReadStore) (int, error) {
	var conf Configuration
	switch err := gconf.Load(db, packageName, &conf); {
	case err == nil:
		return int(conf.MaxOwners), nil
	case errors.ErrNotFound.Is(err):
		return DefaultMaxOwners, nil
	default:
		return 0, errors.Wrap(err, "load configuration")
	}
}
