package multisig

import (
	"context"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/gconf"
)

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct {
	// Deriver computes group authorities. ConditionDeriver is used when
	// nil.
	Deriver Deriver
}

var _ quorum.Initializer = (*Initializer)(nil)

// FromGenesis stores the extension configuration and creates all groups
// declared in the genesis file. Groups are created in the declared order.
func (i *Initializer) FromGenesis(opts quorum.Options, kv quorum.KVStore) error {
	var conf Configuration
	if err := gconf.InitConfig(kv, opts, packageName, &conf); err != nil && !errors.ErrNotFound.Is(err) {
		return errors.Wrap(err, "init config")
	}

	var groups []struct {
		Description    string           `json:"description"`
		Owners         []quorum.Address `json:"owners"`
		Threshold      uint32           `json:"threshold"`
		AuthorityNonce uint32           `json:"authority_nonce"`
	}
	if err := opts.ReadOptions(packageName, &groups); err != nil {
		return err
	}

	deriver := i.Deriver
	if deriver == nil {
		deriver = ConditionDeriver{}
	}
	// Governance and external invocations are not available at genesis.
	ctrl := NewController(deriver, nil)
	ctx := context.Background()
	for n, g := range groups {
		if _, _, err := ctrl.CreateGroup(ctx, kv, g.Description, g.Owners, g.Threshold, g.AuthorityNonce); err != nil {
			return errors.Wrapf(err, "cannot create #%d group", n)
		}
	}
	return nil
}
