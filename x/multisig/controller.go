package multisig

import (
	"bytes"
	"fmt"
	"math"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Controller implements the group life cycle: creation, proposals,
// approvals, execution and governance.
type Controller struct {
	groups    GroupBucket
	proposals ProposalBucket
	deriver   Deriver
	invoker   Invoker
}

// NewController returns a controller using given authority derivation and
// invoking external operations with given invoker.
func NewController(deriver Deriver, invoker Invoker) *Controller {
	return &Controller{
		groups:    NewGroupBucket(),
		proposals: NewProposalBucket(),
		deriver:   deriver,
		invoker:   invoker,
	}
}

// ExecutionResult describes a successful proposal execution.
type ExecutionResult struct {
	ProposalID []byte
	GroupID    []byte
	Authority  quorum.Condition
	// Invocation is nil for governance operations.
	Invocation *Invocation
	// Result is the outcome of the external operation, if any.
	Result *quorum.DeliverResult
}

// Group returns the group with given ID.
func (c *Controller) Group(db quorum.ReadOnlyKVStore, groupID []byte) (*Group, error) {
	return c.groups.GetGroup(db, groupID)
}

// Proposal returns the proposal with given ID.
func (c *Controller) Proposal(db quorum.ReadOnlyKVStore, proposalID []byte) (*Proposal, error) {
	return c.proposals.GetProposal(db, proposalID)
}

// Authority returns the authority condition of given group.
func (c *Controller) Authority(db quorum.ReadOnlyKVStore, groupID []byte) (quorum.Condition, error) {
	g, err := c.groups.GetGroup(db, groupID)
	if err != nil {
		return nil, err
	}
	return c.deriver.Derive(groupID, g.AuthorityNonce), nil
}

// CreateGroup stores a new group with the config version set to zero.
func (c *Controller) CreateGroup(
	ctx quorum.Context,
	db quorum.KVStore,
	description string,
	owners []quorum.Address,
	threshold uint32,
	nonce uint32,
) ([]byte, *Group, error) {
	if err := c.checkOwners(db, owners); err != nil {
		return nil, nil, err
	}
	if err := validateThreshold(threshold, len(owners)); err != nil {
		return nil, nil, err
	}
	if nonce > maxAuthorityNonce {
		return nil, nil, errors.Wrapf(errors.ErrInput, "nonce must not be greater than %d", maxAuthorityNonce)
	}

	id, err := c.groups.NextID(db)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot acquire ID")
	}
	g := &Group{
		Metadata:       &quorum.Metadata{Schema: 1},
		Description:    description,
		Owners:         copyOwners(owners),
		Threshold:      threshold,
		AuthorityNonce: nonce,
		ConfigVersion:  0,
		Authority:      c.deriver.Derive(id, nonce).Address(),
	}
	if _, err := c.groups.Put(db, id, g); err != nil {
		return nil, nil, errors.Wrap(err, "cannot store group")
	}
	quorum.GetLogger(ctx).Info("group created",
		"group", fmt.Sprintf("%X", id),
		"owners", len(g.Owners),
		"threshold", g.Threshold)
	return id, g, nil
}

// Propose stores a new proposal of given operation. The proposer must be an
// owner of the group and its approval is recorded.
func (c *Controller) Propose(
	ctx quorum.Context,
	db quorum.KVStore,
	groupID []byte,
	op *Operation,
	proposer quorum.Address,
) ([]byte, *Proposal, error) {
	if err := op.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "operation")
	}
	g, err := c.groups.GetGroup(db, groupID)
	if err != nil {
		return nil, nil, err
	}
	idx := g.OwnerIndex(proposer)
	if idx < 0 {
		return nil, nil, errors.Wrapf(ErrUnknownSigner, "proposer %s", proposer)
	}

	approvals := make([]bool, len(g.Owners))
	approvals[idx] = true
	p := &Proposal{
		Metadata:      &quorum.Metadata{Schema: 1},
		GroupID:       groupID,
		Operation:     op,
		Approvals:     approvals,
		Executed:      false,
		ConfigVersion: g.ConfigVersion,
		Proposer:      proposer,
	}
	id, err := c.proposals.Put(db, nil, p)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot store proposal")
	}
	quorum.GetLogger(ctx).Info("proposal created",
		"group", fmt.Sprintf("%X", groupID),
		"proposal", fmt.Sprintf("%X", id),
		"target", op.Target)
	return id, p, nil
}

// Approve records the approval of given owner. Approving twice has no
// effect. Approvals cannot be revoked.
func (c *Controller) Approve(
	ctx quorum.Context,
	db quorum.KVStore,
	proposalID []byte,
	owner quorum.Address,
) (*Proposal, error) {
	p, g, idx, err := c.checkApprove(db, proposalID, owner)
	if err != nil {
		return nil, err
	}
	if p.Approvals[idx] {
		return p, nil
	}

	p.Approvals[idx] = true
	if _, err := c.proposals.Put(db, proposalID, p); err != nil {
		return nil, errors.Wrap(err, "cannot store proposal")
	}
	quorum.GetLogger(ctx).Debug("proposal approved",
		"proposal", fmt.Sprintf("%X", proposalID),
		"approvals", p.ApprovalCount(),
		"threshold", g.Threshold)
	return p, nil
}

// Execute runs the operation of a proposal that collected enough approvals.
// All state changes are made in a cache wrap of given store. They are written
// only when the operation succeeds, together with marking the proposal as
// executed. Otherwise nothing is written and the error of the operation is
// returned unchanged.
func (c *Controller) Execute(
	ctx quorum.Context,
	db quorum.CacheableKVStore,
	proposalID []byte,
) (*ExecutionResult, error) {
	p, g, err := c.checkExecute(db, proposalID)
	if err != nil {
		return nil, err
	}
	authority := c.deriver.Derive(p.GroupID, g.AuthorityNonce)
	res := &ExecutionResult{
		ProposalID: proposalID,
		GroupID:    p.GroupID,
		Authority:  authority,
	}

	cache := db.CacheWrap()

	// The proposal is marked first so that the operation cannot execute
	// it again.
	p.Executed = true
	if _, err := c.proposals.Put(cache, proposalID, p); err != nil {
		cache.Discard()
		return nil, errors.Wrap(err, "cannot store proposal")
	}

	if gov, ok, err := GovernanceMsg(p.Operation.Target, p.Operation.Payload); ok {
		if err == nil {
			err = c.governance(ctx, cache, p.GroupID, newCredential(p.GroupID, authority), gov)
		}
		if err != nil {
			cache.Discard()
			return nil, err
		}
	} else {
		inv := buildInvocation(p.Operation, authority)
		out, err := c.invoker.Invoke(ctx, cache, inv)
		if err != nil {
			cache.Discard()
			return nil, err
		}
		res.Invocation = &inv
		res.Result = out
	}

	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "cannot write execution changes")
	}
	quorum.GetLogger(ctx).Info("proposal executed",
		"group", fmt.Sprintf("%X", p.GroupID),
		"proposal", fmt.Sprintf("%X", proposalID),
		"target", p.Operation.Target)
	return res, nil
}

// CheckApprove returns an error if given owner cannot approve the proposal.
// Nothing is written.
func (c *Controller) CheckApprove(db quorum.ReadOnlyKVStore, proposalID []byte, owner quorum.Address) error {
	_, _, _, err := c.checkApprove(db, proposalID, owner)
	return err
}

func (c *Controller) checkApprove(db quorum.ReadOnlyKVStore, proposalID []byte, owner quorum.Address) (*Proposal, *Group, int, error) {
	p, err := c.proposals.GetProposal(db, proposalID)
	if err != nil {
		return nil, nil, 0, err
	}
	g, err := c.groups.GetGroup(db, p.GroupID)
	if err != nil {
		return nil, nil, 0, err
	}
	if g.ConfigVersion != p.ConfigVersion {
		return nil, nil, 0, errors.Wrapf(ErrStaleConfig, "proposal version %d, group version %d", p.ConfigVersion, g.ConfigVersion)
	}
	idx := g.OwnerIndex(owner)
	if idx < 0 {
		return nil, nil, 0, errors.Wrapf(ErrUnknownSigner, "approver %s", owner)
	}
	return p, g, idx, nil
}

// CheckExecute returns an error if the proposal cannot be executed. The
// operation itself is not run, so it may still fail on execution.
func (c *Controller) CheckExecute(db quorum.ReadOnlyKVStore, proposalID []byte) error {
	_, _, err := c.checkExecute(db, proposalID)
	return err
}

func (c *Controller) checkExecute(db quorum.ReadOnlyKVStore, proposalID []byte) (*Proposal, *Group, error) {
	p, err := c.proposals.GetProposal(db, proposalID)
	if err != nil {
		return nil, nil, err
	}
	if p.Executed {
		return nil, nil, errors.Wrapf(ErrAlreadyExecuted, "proposal %X", proposalID)
	}
	g, err := c.groups.GetGroup(db, p.GroupID)
	if err != nil {
		return nil, nil, err
	}
	if g.ConfigVersion != p.ConfigVersion {
		return nil, nil, errors.Wrapf(ErrStaleConfig, "proposal version %d, group version %d", p.ConfigVersion, g.ConfigVersion)
	}
	if n := p.ApprovalCount(); n < int(g.Threshold) {
		return nil, nil, errors.Wrapf(ErrQuorumNotReached, "%d of %d approvals", n, g.Threshold)
	}
	return p, g, nil
}

// buildInvocation copies the operation, substituting the signer flag of every
// operand that references the authority.
func buildInvocation(op *Operation, authority quorum.Condition) Invocation {
	addr := authority.Address()
	operands := make([]Operand, len(op.Operands))
	for i, o := range op.Operands {
		operands[i] = *o
		if addr.Equals(o.Address) {
			operands[i].IsSigner = true
		}
	}
	return Invocation{
		Target:    op.Target,
		Operands:  operands,
		Payload:   op.Payload,
		Authority: authority,
	}
}

func (c *Controller) governance(ctx quorum.Context, db quorum.KVStore, groupID []byte, cred Credential, msg quorum.Msg) error {
	switch m := msg.(type) {
	case *SetOwnersMsg:
		return c.SetOwners(ctx, db, groupID, cred, m.Owners)
	case *ChangeThresholdMsg:
		return c.ChangeThreshold(ctx, db, groupID, cred, m.Threshold)
	case *SetOwnersAndChangeThresholdMsg:
		return c.SetOwnersAndChangeThreshold(ctx, db, groupID, cred, m.Owners, m.Threshold)
	default:
		return errors.Wrapf(errors.ErrHuman, "unknown governance message %T", msg)
	}
}

// SetOwners replaces the owners of a group. The threshold is lowered to the
// number of owners when greater. All existing proposals become stale.
func (c *Controller) SetOwners(
	ctx quorum.Context,
	db quorum.KVStore,
	groupID []byte,
	cred Credential,
	owners []quorum.Address,
) error {
	g, err := c.authorize(db, groupID, cred)
	if err != nil {
		return err
	}
	if err := c.setOwners(db, g, owners); err != nil {
		return err
	}
	if _, err := c.groups.Put(db, groupID, g); err != nil {
		return errors.Wrap(err, "cannot store group")
	}
	quorum.GetLogger(ctx).Info("group owners changed",
		"group", fmt.Sprintf("%X", groupID),
		"owners", len(g.Owners),
		"version", g.ConfigVersion)
	return nil
}

// ChangeThreshold sets a new threshold of a group. Existing proposals remain
// valid.
func (c *Controller) ChangeThreshold(
	ctx quorum.Context,
	db quorum.KVStore,
	groupID []byte,
	cred Credential,
	threshold uint32,
) error {
	g, err := c.authorize(db, groupID, cred)
	if err != nil {
		return err
	}
	if err := validateThreshold(threshold, len(g.Owners)); err != nil {
		return err
	}
	g.Threshold = threshold
	if _, err := c.groups.Put(db, groupID, g); err != nil {
		return errors.Wrap(err, "cannot store group")
	}
	quorum.GetLogger(ctx).Info("group threshold changed",
		"group", fmt.Sprintf("%X", groupID),
		"threshold", threshold)
	return nil
}

// SetOwnersAndChangeThreshold replaces the owners and then sets the
// threshold. The group is stored only if both steps succeed.
func (c *Controller) SetOwnersAndChangeThreshold(
	ctx quorum.Context,
	db quorum.KVStore,
	groupID []byte,
	cred Credential,
	owners []quorum.Address,
	threshold uint32,
) error {
	g, err := c.authorize(db, groupID, cred)
	if err != nil {
		return err
	}
	if err := c.setOwners(db, g, owners); err != nil {
		return err
	}
	if err := validateThreshold(threshold, len(g.Owners)); err != nil {
		return err
	}
	g.Threshold = threshold
	if _, err := c.groups.Put(db, groupID, g); err != nil {
		return errors.Wrap(err, "cannot store group")
	}
	quorum.GetLogger(ctx).Info("group owners and threshold changed",
		"group", fmt.Sprintf("%X", groupID),
		"owners", len(g.Owners),
		"threshold", threshold,
		"version", g.ConfigVersion)
	return nil
}

// authorize loads the group if the credential was minted for its authority.
func (c *Controller) authorize(db quorum.ReadOnlyKVStore, groupID []byte, cred Credential) (*Group, error) {
	g, err := c.groups.GetGroup(db, groupID)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(cred.groupID, groupID) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "credential of another group")
	}
	if !c.deriver.Derive(groupID, g.AuthorityNonce).Equals(cred.authority) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "not the group authority")
	}
	return g, nil
}

func (c *Controller) setOwners(db quorum.ReadOnlyKVStore, g *Group, owners []quorum.Address) error {
	if err := c.checkOwners(db, owners); err != nil {
		return err
	}
	if g.ConfigVersion == math.MaxUint32 {
		return errors.Wrap(errors.ErrOverflow, "config version")
	}
	g.Owners = copyOwners(owners)
	if int(g.Threshold) > len(g.Owners) {
		g.Threshold = uint32(len(g.Owners))
	}
	g.ConfigVersion++
	return nil
}

func (c *Controller) checkOwners(db quorum.ReadOnlyKVStore, owners []quorum.Address) error {
	if err := validateOwners(owners); err != nil {
		return err
	}
	max, err := loadMaxOwners(db)
	if err != nil {
		return err
	}
	if len(owners) > max {
		return errors.Wrapf(errors.ErrInput, "%d owners, at most %d allowed", len(owners), max)
	}
	return nil
}

func copyOwners(owners []quorum.Address) []quorum.Address {
	cpy := make([]quorum.Address, len(owners))
	for i, o := range owners {
		cpy[i] = append(quorum.Address(nil), o...)
	}
	return cpy
}
