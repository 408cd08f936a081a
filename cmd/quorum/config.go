package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/iov-one/quorum/errors"
)

// Config holds the settings shared by all commands.
type Config struct {
	// Home is the directory holding the key, the database and the config
	// file.
	Home string
	// Bind is the address the ABCI server listens on.
	Bind string
	// Node is the tendermint RPC address. When empty, commands operate
	// on the local database instead.
	Node string
	// ChainID is used when initializing the local database.
	ChainID  string
	LogLevel string
	Debug    bool
}

// DefaultConfig returns the configuration used when no config file is
// present.
func DefaultConfig(home string) Config {
	return Config{
		Home:     home,
		Bind:     "tcp://localhost:26658",
		ChainID:  "quorum-local",
		LogLevel: "info",
	}
}

// DBPath returns the path of the local application database.
func (c Config) DBPath() string {
	return filepath.Join(c.Home, "data", "quorum.db")
}

type fileConfig struct {
	Bind     string `toml:"bind"`
	Node     string `toml:"node"`
	ChainID  string `toml:"chain_id"`
	LogLevel string `toml:"log_level"`
	Debug    bool   `toml:"debug"`
}

// LoadConfig overlays the values defined in the config file on top of the
// defaults. A missing file is not an error unless the path was given
// explicitly.
func LoadConfig(home, path string) (Config, error) {
	cfg := DefaultConfig(home)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(home, "config.toml")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) && !explicit {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrInput, "load config %s: %s", path, err)
	}

	if meta.IsDefined("bind") {
		cfg.Bind = strings.TrimSpace(raw.Bind)
	}
	if meta.IsDefined("node") {
		cfg.Node = strings.TrimSpace(raw.Node)
	}
	if meta.IsDefined("chain_id") {
		cfg.ChainID = strings.TrimSpace(raw.ChainID)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("debug") {
		cfg.Debug = raw.Debug
	}
	return cfg, nil
}
