package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/quorum/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	home, err := ioutil.TempDir("", "quorum-config")
	require.NoError(t, err)
	defer os.RemoveAll(home)

	cfg, err := LoadConfig(home, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(home), cfg)
	assert.Equal(t, filepath.Join(home, "data", "quorum.db"), cfg.DBPath())

	content := `
node = " tcp://localhost:26657 "
chain_id = "test-chain"
debug = true
`
	require.NoError(t, ioutil.WriteFile(filepath.Join(home, "config.toml"), []byte(content), 0600))
	cfg, err = LoadConfig(home, "")
	require.NoError(t, err)
	assert.Equal(t, "tcp://localhost:26657", cfg.Node)
	assert.Equal(t, "test-chain", cfg.ChainID)
	assert.True(t, cfg.Debug)
	// Values not present in the file keep their defaults.
	assert.Equal(t, "tcp://localhost:26658", cfg.Bind)
	assert.Equal(t, "info", cfg.LogLevel)

	_, err = LoadConfig(home, filepath.Join(home, "missing.toml"))
	assert.True(t, errors.ErrInput.Is(err))

	require.NoError(t, ioutil.WriteFile(filepath.Join(home, "broken.toml"), []byte("bind = "), 0600))
	_, err = LoadConfig(home, filepath.Join(home, "broken.toml"))
	assert.True(t, errors.ErrInput.Is(err))
}
