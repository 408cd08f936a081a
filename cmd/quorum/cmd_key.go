package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/errors"
	"golang.org/x/crypto/ed25519"
)

// KeyFlag is embedded by every command that signs or reads a key.
type KeyFlag struct {
	Key string `help:"Path to the private key file. Defaults to <home>/key.priv." env:"QUORUM_PRIV_KEY"`
}

func (k KeyFlag) path(g *Globals) string {
	if k.Key != "" {
		return k.Key
	}
	return filepath.Join(g.Home, "key.priv")
}

func (k KeyFlag) load(g *Globals) (*crypto.PrivateKey, error) {
	return loadKey(k.path(g))
}

func loadKey(path string) (*crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot read private key file: %s", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "invalid private key length: %d", len(raw))
	}
	return &crypto.PrivateKey{Ed25519: raw}, nil
}

// KeygenCmd creates a new private key file. An existing file is never
// overwritten.
type KeygenCmd struct {
	KeyFlag
	Seed string `help:"Hex encoded master seed. A random key is generated when not set."`
	Path string `help:"SLIP-0010 derivation path used with the seed." default:"m/44'/234'/0'"`

	out io.Writer `kong:"-"`
}

func (c *KeygenCmd) Run(ctx context.Context, g *Globals) error {
	path := c.path(g)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return errors.Wrapf(errors.ErrDuplicate, "private key file %q already exists, delete this file and try again", path)
	}

	key, err := c.generate()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := ioutil.WriteFile(path, key.Ed25519, 0600); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot write private key: %s", err)
	}
	_, err = fmt.Fprintln(output(c.out), key.PublicKey().Address())
	return err
}

func (c *KeygenCmd) generate() (*crypto.PrivateKey, error) {
	if c.Seed == "" {
		seed := make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			return nil, errors.Wrap(errors.ErrInput, "cannot read random seed")
		}
		return crypto.PrivKeyEd25519FromSeed(seed), nil
	}
	seed, err := hex.DecodeString(c.Seed)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, "seed must be hex encoded")
	}
	return crypto.DerivePrivKeyEd25519(seed, c.Path)
}

// KeyaddrCmd prints the address of the key.
type KeyaddrCmd struct {
	KeyFlag

	out io.Writer `kong:"-"`
}

func (c *KeyaddrCmd) Run(ctx context.Context, g *Globals) error {
	key, err := c.load(g)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(output(c.out), key.PublicKey().Address())
	return err
}

func output(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
