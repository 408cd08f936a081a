package main

import (
	"context"
	"fmt"
	"io"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/resource"
)

// ResourceCmd manages named resources.
type ResourceCmd struct {
	Register ResourceRegisterCmd `cmd:"" help:"Register a new resource."`
	Transfer ResourceTransferCmd `cmd:"" help:"Transfer a resource owned by the signer."`
	Show     ResourceShowCmd     `cmd:"" help:"Print a resource as JSON."`
}

type ResourceRegisterCmd struct {
	KeyFlag
	Name  string `arg:"" help:"Unique resource name."`
	Owner string `help:"Owner address. Defaults to the signer."`
	Data  string `help:"Data attached to the resource."`

	out io.Writer `kong:"-"`
}

func (c *ResourceRegisterCmd) Run(ctx context.Context, g *Globals) error {
	owner, err := quorum.ParseAddress(c.Owner)
	if err != nil {
		return errors.Wrap(err, "owner")
	}
	return commitResource(ctx, g, c.KeyFlag, c.out, &resource.RegisterMsg{
		Metadata: &quorum.Metadata{Schema: 1},
		Name:     c.Name,
		Owner:    owner,
		Data:     []byte(c.Data),
	})
}

type ResourceTransferCmd struct {
	KeyFlag
	Name string `arg:"" help:"Resource name."`
	To   string `help:"Address of the new owner." required:""`

	out io.Writer `kong:"-"`
}

func (c *ResourceTransferCmd) Run(ctx context.Context, g *Globals) error {
	to, err := quorum.ParseAddress(c.To)
	if err != nil {
		return errors.Wrap(err, "to")
	}
	return commitResource(ctx, g, c.KeyFlag, c.out, &resource.TransferMsg{
		Metadata: &quorum.Metadata{Schema: 1},
		Name:     c.Name,
		NewOwner: to,
	})
}

func commitResource(ctx context.Context, g *Globals, kf KeyFlag, out io.Writer, msg quorum.Msg) error {
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
	_, err = fmt.Fprintf(output(out), "resource %s (height %d)\n", res.Data, res.Height)
	return err
}

type ResourceShowCmd struct {
	Name string `arg:"" help:"Resource name."`

	out io.Writer `kong:"-"`
}

func (c *ResourceShowCmd) Run(ctx context.Context, g *Globals) error {
	n, err := openNode(g.Config)
	if err != nil {
		return err
	}
	defer n.Close()

	var r resource.Resource
	if err := queryOne(ctx, n, "/resources", []byte(c.Name), &r); err != nil {
		return err
	}
	return printJSON(c.out, &r)
}
