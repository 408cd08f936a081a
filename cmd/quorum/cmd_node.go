package main

import (
	"context"
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/app"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/multisig"
	"github.com/tendermint/tendermint/abci/server"
	"github.com/tendermint/tendermint/libs/log"
)

// InitCmd builds the application state. The state is written into the
// app_state of a tendermint genesis file when one is given, otherwise it
// is loaded into the local database.
type InitCmd struct {
	State       string `help:"JSON file with the initial application state." type:"existingfile"`
	Genesis     string `help:"Tendermint genesis file to update instead of the local database." type:"existingfile"`
	MaxOwners   uint32 `name:"max-owners" help:"Maximum number of owners a group can have."`
	ConfigOwner string `name:"config-owner" help:"Address allowed to update the multisig configuration."`
	ChainID     string `name:"chain-id" help:"Chain ID of the local database. Overrides the config file."`
}

func (c *InitCmd) Run(ctx context.Context, g *Globals) (err error) {
	state, err := c.appState()
	if err != nil {
		return err
	}

	if c.Genesis != "" {
		return app.SetAppState(c.Genesis, state)
	}

	if c.ChainID != "" {
		g.ChainID = c.ChainID
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if !quorum.IsValidChainID(g.ChainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %q", g.ChainID)
	}
	n, err := openLocalNode(g.Config, log.NewNopLogger())
	if err != nil {
		return err
	}
	defer n.Close()
	if id := n.app.GetChainID(); id != "" {
		return errors.Wrapf(errors.ErrState, "already initialized with chain %q", id)
	}

	// Initialization failures are reported by the application as panics.
	defer errors.Recover(&err)
	n.InitChain(g.ChainID, raw)
	return nil
}

func (c *InitCmd) appState() (quorum.Options, error) {
	state := make(quorum.Options)
	if c.State != "" {
		raw, err := ioutil.ReadFile(c.State)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		if err := json.Unmarshal(raw, &state); err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "state %s: %s", c.State, err)
		}
	}
	if c.MaxOwners == 0 && c.ConfigOwner == "" {
		return state, nil
	}
	owner, err := quorum.ParseAddress(c.ConfigOwner)
	if err != nil {
		return nil, errors.Wrap(err, "config owner")
	}

	conf := make(quorum.Options)
	if err := state.ReadOptions("conf", &conf); err != nil {
		return nil, err
	}
	mconf := multisig.Configuration{MaxOwners: c.MaxOwners, Owner: owner}
	if raw, ok := conf["multisig"]; ok {
		if err := json.Unmarshal(raw, &mconf); err != nil {
			return nil, errors.Wrap(errors.ErrInput, "conf.multisig")
		}
		if c.MaxOwners != 0 {
			mconf.MaxOwners = c.MaxOwners
		}
		if len(owner) != 0 {
			mconf.Owner = owner
		}
	}
	if mconf.Metadata == nil {
		mconf.Metadata = &quorum.Metadata{Schema: 1}
	}
	if mconf.MaxOwners == 0 {
		mconf.MaxOwners = multisig.DefaultMaxOwners
	}
	if err := mconf.Validate(); err != nil {
		return nil, errors.Wrap(err, "multisig configuration")
	}
	if err := setOption(conf, "multisig", &mconf); err != nil {
		return nil, err
	}
	if err := setOption(state, "conf", conf); err != nil {
		return nil, err
	}
	return state, nil
}

func setOption(opts quorum.Options, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "%s: %s", key, err)
	}
	opts[key] = raw
	return nil
}

// StartCmd serves the application over the ABCI socket protocol until the
// process is interrupted.
type StartCmd struct {
	Bind string `help:"Address the ABCI server listens on. Overrides the config file."`
}

func (c *StartCmd) Run(ctx context.Context, g *Globals) error {
	if c.Bind != "" {
		g.Bind = c.Bind
	}
	logger, err := g.Logger()
	if err != nil {
		return err
	}

	n, err := openLocalNode(g.Config, logger)
	if err != nil {
		return err
	}
	defer n.Close()

	logger.Info("Starting ABCI app", "bind", g.Bind, "version", quorum.Version())
	svr, err := server.NewServer(g.Bind, "socket", n.app)
	if err != nil {
		return errors.Wrapf(errors.ErrNetwork, "cannot create listener: %s", err)
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrapf(errors.ErrNetwork, "cannot start server: %s", err)
	}

	<-ctx.Done()
	logger.Info("Stopping ABCI app")
	if err := svr.Stop(); err != nil {
		return errors.Wrap(errors.ErrNetwork, err.Error())
	}
	return nil
}
