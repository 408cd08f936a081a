/*
Command quorum runs and operates an M-of-N authorization node.

Groups of owners control a derived authority address. Any owner can
propose an operation on behalf of the group; once enough owners approved,
anyone can execute it.
*/
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/iov-one/quorum"
	"github.com/tendermint/tendermint/libs/log"
)

// Globals are available to every command.
type Globals struct {
	Config
}

// Logger returns the node logger filtered by the configured level.
func (g *Globals) Logger() (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout))
	lvl, err := log.AllowLevel(g.LogLevel)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, lvl), nil
}

var cli struct {
	Home       string `help:"Directory holding keys, data and config.toml." default:"${home}" env:"QUORUM_HOME"`
	ConfigFile string `name:"config" help:"Path to the TOML config file. Defaults to <home>/config.toml."`
	Node       string `help:"Tendermint RPC address. Overrides the config file." env:"QUORUM_NODE"`
	Debug      bool   `help:"Return full error information."`

	Keygen  KeygenCmd  `cmd:"" help:"Generate a new private key."`
	Keyaddr KeyaddrCmd `cmd:"" help:"Print the address of a private key."`
	Init    InitCmd    `cmd:"" help:"Initialize the application state."`
	Start   StartCmd   `cmd:"" help:"Run the ABCI server."`

	CreateGroup CreateGroupCmd `cmd:"" name:"create-group" help:"Create a multi-owner group."`
	Propose     ProposeCmd     `cmd:"" help:"Propose an operation on behalf of a group."`
	Approve     ApproveCmd     `cmd:"" help:"Approve a proposal."`
	Execute     ExecuteCmd     `cmd:"" help:"Execute a proposal that reached the threshold."`
	Resource    ResourceCmd    `cmd:"" help:"Register and inspect resources."`

	Group     GroupCmd     `cmd:"" help:"Show a group."`
	Proposal  ProposalCmd  `cmd:"" help:"Show a proposal or all proposals of a group."`
	Authority AuthorityCmd `cmd:"" help:"Print the authority address of a group."`

	Version kong.VersionFlag `help:"Print version and exit."`
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quorum"
	}
	return filepath.Join(home, ".quorum")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx := kong.Parse(&cli,
		kong.Name("quorum"),
		kong.Description("M-of-N multi-party authorization node."),
		kong.Vars{
			"version": quorum.Version(),
			"home":    defaultHome(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	cfg, err := LoadConfig(cli.Home, cli.ConfigFile)
	kctx.FatalIfErrorf(err)
	if cli.Node != "" {
		cfg.Node = cli.Node
	}
	if cli.Debug {
		cfg.Debug = true
	}

	err = kctx.Run(&Globals{Config: cfg})
	kctx.FatalIfErrorf(err)
}
