package multisig

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
)

const (
	groupBucketName    = "groups"
	proposalBucketName = "proposals"

	// proposalGroupIndex indexes proposals by the group they belong to.
	proposalGroupIndex = "group"
)

// GroupBucket stores groups under a sequence generated ID.
type GroupBucket struct {
	orm.ModelBucket
	idSeq orm.Sequence
}

// NewGroupBucket returns a bucket for managing groups.
func NewGroupBucket() GroupBucket {
	seq := orm.NewSequence(groupBucketName, "id")
	return GroupBucket{
		ModelBucket: orm.NewModelBucket(groupBucketName, &Group{}, orm.WithIDSequence(seq)),
		idSeq:       seq,
	}
}

// NextID reserves a new group ID.
func (b GroupBucket) NextID(db quorum.KVStore) ([]byte, error) {
	return b.idSeq.NextVal(db)
}

// GetGroup returns the group with given ID or ErrNotFound.
func (b GroupBucket) GetGroup(db quorum.ReadOnlyKVStore, id []byte) (*Group, error) {
	var g Group
	if err := b.One(db, id, &g); err != nil {
		return nil, errors.Wrapf(err, "group %X", id)
	}
	return &g, nil
}

// ProposalBucket stores proposals under a sequence generated ID, indexed by
// the group ID.
type ProposalBucket struct {
	orm.ModelBucket
}

// NewProposalBucket returns a bucket for managing proposals.
func NewProposalBucket() ProposalBucket {
	return ProposalBucket{
		ModelBucket: orm.NewModelBucket(proposalBucketName, &Proposal{},
			orm.WithIndex(proposalGroupIndex, proposalGroupIndexer, false)),
	}
}

func proposalGroupIndexer(m orm.Model) ([]byte, error) {
	p, ok := m.(*Proposal)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return p.GroupID, nil
}

// GetProposal returns the proposal with given ID or ErrNotFound.
func (b ProposalBucket) GetProposal(db quorum.ReadOnlyKVStore, id []byte) (*Proposal, error) {
	var p Proposal
	if err := b.One(db, id, &p); err != nil {
		return nil, errors.Wrapf(err, "proposal %X", id)
	}
	return &p, nil
}

// ByGroup returns all proposals of given group in creation order, together
// with their IDs.
func (b ProposalBucket) ByGroup(db quorum.ReadOnlyKVStore, groupID []byte) ([][]byte, []*Proposal, error) {
	var proposals []*Proposal
	ids, err := b.ByIndex(db, proposalGroupIndex, groupID, &proposals)
	if err != nil {
		return nil, nil, err
	}
	return ids, proposals, nil
}
