package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/orm"
	"github.com/iov-one/quorum/x/multisig"
	"github.com/iov-one/quorum/x/resource"
)

// CreateGroupCmd registers a new group. The signer does not need to be one
// of the owners.
type CreateGroupCmd struct {
	KeyFlag
	Description string   `help:"Human readable description of the group."`
	Owners      []string `help:"Owner addresses, in order." required:""`
	Threshold   uint32   `help:"Number of approvals required to execute a proposal." required:""`
	Nonce       uint32   `help:"Authority nonce. Different nonces derive different authorities." default:"0"`

	out io.Writer `kong:"-"`
}

func (c *CreateGroupCmd) Run(ctx context.Context, g *Globals) error {
	owners, err := parseAddresses(c.Owners)
	if err != nil {
		return errors.Wrap(err, "owners")
	}
	msg := &multisig.CreateGroupMsg{
		Metadata:       &quorum.Metadata{Schema: 1},
		Description:    c.Description,
		Owners:         owners,
		Threshold:      c.Threshold,
		AuthorityNonce: c.Nonce,
	}
	return commitAndPrint(ctx, g, c.KeyFlag, msg, c.out, "group")
}

// ProposeCmd groups all kinds of proposals.
type ProposeCmd struct {
	Raw             ProposeRawCmd             `cmd:"" help:"Propose any registered message."`
	Transfer        ProposeTransferCmd        `cmd:"" help:"Propose a transfer of a resource owned by the group authority."`
	SetOwners       ProposeSetOwnersCmd       `cmd:"" name:"set-owners" help:"Propose a new owner set."`
	ChangeThreshold ProposeChangeThresholdCmd `cmd:"" name:"change-threshold" help:"Propose a new threshold."`
}

// ProposalFlags are shared by all proposal commands.
type ProposalFlags struct {
	KeyFlag
	Group uint64 `help:"Group ID." required:""`

	out io.Writer `kong:"-"`
}

func (f ProposalFlags) propose(ctx context.Context, g *Globals, op *multisig.Operation) error {
	msg := &multisig.CreateProposalMsg{
		Metadata:  &quorum.Metadata{Schema: 1},
		GroupID:   orm.EncodeSequence(int64(f.Group)),
		Operation: op,
	}
	return commitAndPrint(ctx, g, f.KeyFlag, msg, f.out, "proposal")
}

// authorityOperand looks up the authority of the group so that it can be
// passed as the signing operand of the proposed operation.
func (f ProposalFlags) authorityOperand(ctx context.Context, g *Globals) (*multisig.Operand, error) {
	n, err := openNode(g.Config)
	if err != nil {
		return nil, err
	}
	defer n.Close()
	var group multisig.Group
	if err := queryOne(ctx, n, "/groups", orm.EncodeSequence(int64(f.Group)), &group); err != nil {
		return nil, err
	}
	return &multisig.Operand{Address: group.Authority, IsSigner: true, IsWritable: true}, nil
}

type ProposeRawCmd struct {
	ProposalFlags
	Target   string   `help:"Path of the message to execute." required:""`
	Payload  string   `help:"Hex encoded serialized message."`
	Signer   []string `help:"Operand addresses that must sign. Only the group authority can."`
	Writable []string `help:"Writable operand addresses."`
	Readonly []string `help:"Read only operand addresses."`
}

func (c *ProposeRawCmd) Run(ctx context.Context, g *Globals) error {
	payload, err := hex.DecodeString(c.Payload)
	if err != nil {
		return errors.Wrap(errors.ErrInput, "payload must be hex encoded")
	}
	op := &multisig.Operation{Target: c.Target, Payload: payload}
	for _, set := range []struct {
		addrs            []string
		signer, writable bool
	}{
		{c.Signer, true, true},
		{c.Writable, false, true},
		{c.Readonly, false, false},
	} {
		addrs, err := parseAddresses(set.addrs)
		if err != nil {
			return errors.Wrap(err, "operand")
		}
		for _, a := range addrs {
			op.Operands = append(op.Operands, &multisig.Operand{Address: a, IsSigner: set.signer, IsWritable: set.writable})
		}
	}
	return c.propose(ctx, g, op)
}

type ProposeTransferCmd struct {
	ProposalFlags
	Name string `help:"Resource name." required:""`
	To   string `help:"Address of the new owner." required:""`
}

func (c *ProposeTransferCmd) Run(ctx context.Context, g *Globals) error {
	to, err := quorum.ParseAddress(c.To)
	if err != nil {
		return errors.Wrap(err, "to")
	}
	authority, err := c.authorityOperand(ctx, g)
	if err != nil {
		return err
	}
	transfer := &resource.TransferMsg{
		Metadata: &quorum.Metadata{Schema: 1},
		Name:     c.Name,
		NewOwner: to,
	}
	op, err := operation(transfer, authority)
	if err != nil {
		return err
	}
	return c.propose(ctx, g, op)
}

type ProposeSetOwnersCmd struct {
	ProposalFlags
	Owners    []string `help:"New owner addresses, in order." required:""`
	Threshold uint32   `help:"New threshold. The current one is kept when not set."`
}

func (c *ProposeSetOwnersCmd) Run(ctx context.Context, g *Globals) error {
	owners, err := parseAddresses(c.Owners)
	if err != nil {
		return errors.Wrap(err, "owners")
	}
	var msg quorum.Msg = &multisig.SetOwnersMsg{
		Metadata: &quorum.Metadata{Schema: 1},
		Owners:   owners,
	}
	if c.Threshold != 0 {
		msg = &multisig.SetOwnersAndChangeThresholdMsg{
			Metadata:  &quorum.Metadata{Schema: 1},
			Owners:    owners,
			Threshold: c.Threshold,
		}
	}
	op, err := operation(msg)
	if err != nil {
		return err
	}
	return c.propose(ctx, g, op)
}

type ProposeChangeThresholdCmd struct {
	ProposalFlags
	Threshold uint32 `help:"New threshold." required:""`
}

func (c *ProposeChangeThresholdCmd) Run(ctx context.Context, g *Globals) error {
	op, err := operation(&multisig.ChangeThresholdMsg{
		Metadata:  &quorum.Metadata{Schema: 1},
		Threshold: c.Threshold,
	})
	if err != nil {
		return err
	}
	return c.propose(ctx, g, op)
}

func operation(msg quorum.Msg, operands ...*multisig.Operand) (*multisig.Operation, error) {
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, "proposed message")
	}
	payload, err := proto.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, "cannot marshal proposed message")
	}
	return &multisig.Operation{Target: msg.Path(), Operands: operands, Payload: payload}, nil
}

// ApproveCmd records the approval of the signer. The signer must be an
// owner of the proposal group.
type ApproveCmd struct {
	KeyFlag
	ID uint64 `arg:"" help:"Proposal ID."`

	out io.Writer `kong:"-"`
}

func (c *ApproveCmd) Run(ctx context.Context, g *Globals) error {
	msg := &multisig.ApproveMsg{
		Metadata:   &quorum.Metadata{Schema: 1},
		ProposalID: orm.EncodeSequence(int64(c.ID)),
	}
	return commitAndPrint(ctx, g, c.KeyFlag, msg, c.out, "proposal")
}

// ExecuteCmd runs a proposal that collected enough approvals. Anyone can
// execute.
type ExecuteCmd struct {
	KeyFlag
	ID uint64 `arg:"" help:"Proposal ID."`

	out io.Writer `kong:"-"`
}

func (c *ExecuteCmd) Run(ctx context.Context, g *Globals) error {
	msg := &multisig.ExecuteMsg{
		Metadata:   &quorum.Metadata{Schema: 1},
		ProposalID: orm.EncodeSequence(int64(c.ID)),
	}
	return commitAndPrint(ctx, g, c.KeyFlag, msg, c.out, "proposal")
}

// GroupCmd prints a group as JSON.
type GroupCmd struct {
	ID uint64 `arg:"" help:"Group ID."`

	out io.Writer `kong:"-"`
}

func (c *GroupCmd) Run(ctx context.Context, g *Globals) error {
	n, err := openNode(g.Config)
	if err != nil {
		return err
	}
	defer n.Close()

	var group multisig.Group
	if err := queryOne(ctx, n, "/groups", orm.EncodeSequence(int64(c.ID)), &group); err != nil {
		return err
	}
	return printJSON(c.out, &group)
}

// ProposalCmd prints a single proposal, or all proposals of a group.
type ProposalCmd struct {
	ID    uint64 `arg:"" optional:"" help:"Proposal ID."`
	Group uint64 `help:"List all proposals of this group instead."`

	out io.Writer `kong:"-"`
}

func (c *ProposalCmd) Run(ctx context.Context, g *Globals) error {
	if (c.ID == 0) == (c.Group == 0) {
		return errors.Wrap(errors.ErrInput, "either a proposal ID or a group is required")
	}
	n, err := openNode(g.Config)
	if err != nil {
		return err
	}
	defer n.Close()

	if c.ID != 0 {
		var p multisig.Proposal
		if err := queryOne(ctx, n, "/proposals", orm.EncodeSequence(int64(c.ID)), &p); err != nil {
			return err
		}
		return printJSON(c.out, &p)
	}

	models, err := n.Query(ctx, "/proposals/group", orm.EncodeSequence(int64(c.Group)))
	if err != nil {
		return err
	}
	type entry struct {
		ID       int64              `json:"id"`
		Proposal *multisig.Proposal `json:"proposal"`
	}
	entries := make([]entry, 0, len(models))
	for _, m := range models {
		id, err := orm.DecodeSequence(m.Key)
		if err != nil {
			return err
		}
		var p multisig.Proposal
		if err := proto.Unmarshal(m.Value, &p); err != nil {
			return errors.Wrap(errors.ErrInput, "cannot unmarshal proposal")
		}
		entries = append(entries, entry{ID: id, Proposal: &p})
	}
	return printJSON(c.out, entries)
}

// AuthorityCmd prints the address controlled by a group.
type AuthorityCmd struct {
	ID uint64 `arg:"" help:"Group ID."`

	out io.Writer `kong:"-"`
}

func (c *AuthorityCmd) Run(ctx context.Context, g *Globals) error {
	n, err := openNode(g.Config)
	if err != nil {
		return err
	}
	defer n.Close()

	var group multisig.Group
	if err := queryOne(ctx, n, "/groups", orm.EncodeSequence(int64(c.ID)), &group); err != nil {
		return err
	}
	_, err = fmt.Fprintln(output(c.out), group.Authority)
	return err
}

// commitAndPrint signs the message with the key, commits it and prints the
// sequence ID returned by the handler.
func commitAndPrint(ctx context.Context, g *Globals, kf KeyFlag, msg quorum.Msg, out io.Writer, kind string) error {
	key, err := kf.load(g)
	if err != nil {
		return err
	}
	n, err := openNode(g.Config)
	if err != nil {
		return err
	}
	defer n.Close()

	res, err := signAndCommit(ctx, n, key, msg)
	if err != nil {
		return err
	}
	id, err := orm.DecodeSequence(res.Data)
	if err != nil {
		return errors.Wrapf(err, "%s id", kind)
	}
	_, err = fmt.Fprintf(output(out), "%s %d (height %d)\n", kind, id, res.Height)
	return err
}

func parseAddresses(encoded []string) ([]quorum.Address, error) {
	addrs := make([]quorum.Address, 0, len(encoded))
	for _, enc := range encoded {
		a, err := quorum.ParseAddress(enc)
		if err != nil {
			return nil, errors.Wrapf(err, "address %q", enc)
		}
		addrs = append(addrs, a)
	}
	return addrs, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(output(w))
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
