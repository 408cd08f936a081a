package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// GenesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format.
type GenesisDoc map[string]json.RawMessage

// LoadGenesis reads a tendermint genesis file.
func LoadGenesis(filename string) (GenesisDoc, error) {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	var doc GenesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "genesis %s: %s", filename, err)
	}
	return doc, nil
}

// ChainID returns the chain id declared in the genesis file.
func (doc GenesisDoc) ChainID() (string, error) {
	var id string
	if err := json.Unmarshal(doc["chain_id"], &id); err != nil {
		return "", errors.Wrap(errors.ErrInput, "chain_id")
	}
	if !quorum.IsValidChainID(id) {
		return "", errors.Wrapf(errors.ErrInput, "chain id: %q", id)
	}
	return id, nil
}

// AppState returns the application options declared in the genesis file.
func (doc GenesisDoc) AppState() (quorum.Options, error) {
	var opts quorum.Options
	raw, ok := doc["app_state"]
	if !ok || len(raw) == 0 {
		return opts, nil
	}
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, errors.Wrap(errors.ErrInput, "app_state")
	}
	return opts, nil
}

// SetAppState replaces the app_state of the genesis file with given options
// and writes it back.
func SetAppState(filename string, state quorum.Options) error {
	doc, err := LoadGenesis(filename)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	doc["app_state"] = raw
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := ioutil.WriteFile(filename, out, 0600); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}
