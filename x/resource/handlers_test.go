package resource

import (
	"context"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/store"
	"github.com/iov-one/quorum/x"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHandler(t *testing.T) {
	var (
		aliceCond = quorumtest.NewCondition()
		bobbyCond = quorumtest.NewCondition()
		other     = quorumtest.RandomAddr(t)
	)

	cases := map[string]struct {
		Tx             quorum.Tx
		Auth           x.Authenticator
		WantCheckErr   *errors.Error
		WantDeliverErr *errors.Error
		WantOwner      quorum.Address
	}{
		"signer becomes the owner": {
			Tx: &quorumtest.Tx{
				Msg: &RegisterMsg{Metadata: &quorum.Metadata{Schema: 1}, Name: "vault"},
			},
			Auth:      &quorumtest.Auth{Signer: bobbyCond},
			WantOwner: bobbyCond.Address(),
		},
		"explicit owner": {
			Tx: &quorumtest.Tx{
				Msg: &RegisterMsg{Metadata: &quorum.Metadata{Schema: 1}, Name: "vault", Owner: other},
			},
			Auth:      &quorumtest.Auth{Signer: bobbyCond},
			WantOwner: other,
		},
		"name must be unique": {
			Tx: &quorumtest.Tx{
				Msg: &RegisterMsg{Metadata: &quorum.Metadata{Schema: 1}, Name: "alice-box"},
			},
			Auth:           &quorumtest.Auth{Signer: aliceCond},
			WantCheckErr:   errors.ErrDuplicate,
			WantDeliverErr: errors.ErrDuplicate,
		},
		"invalid name": {
			Tx: &quorumtest.Tx{
				Msg: &RegisterMsg{Metadata: &quorum.Metadata{Schema: 1}, Name: "No Spaces"},
			},
			Auth:           &quorumtest.Auth{Signer: aliceCond},
			WantCheckErr:   errors.ErrInput,
			WantDeliverErr: errors.ErrInput,
		},
		"must be signed": {
			Tx: &quorumtest.Tx{
				Msg: &RegisterMsg{Metadata: &quorum.Metadata{Schema: 1}, Name: "vault"},
			},
			Auth:           &quorumtest.Auth{},
			WantCheckErr:   errors.ErrUnauthorized,
			WantDeliverErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			b := NewBucket()
			_, err := b.Put(db, []byte("alice-box"), &Resource{
				Metadata: &quorum.Metadata{Schema: 1},
				Owner:    aliceCond.Address(),
			})
			require.NoError(t, err)

			h := registerHandler{auth: tc.Auth, bucket: b}

			cache := db.CacheWrap()
			if _, err := h.Check(context.TODO(), cache, tc.Tx); !tc.WantCheckErr.Is(err) {
				t.Fatalf("unexpected check error: %+v", err)
			}
			cache.Discard()
			res, err := h.Deliver(context.TODO(), db, tc.Tx)
			if !tc.WantDeliverErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}
			if tc.WantDeliverErr != nil {
				return
			}

			var r Resource
			require.NoError(t, b.One(db, res.Data, &r))
			assert.Equal(t, tc.WantOwner, r.Owner)
		})
	}
}

func TestTransferHandler(t *testing.T) {
	var (
		aliceCond = quorumtest.NewCondition()
		bobbyCond = quorumtest.NewCondition()
	)

	cases := map[string]struct {
		Tx             quorum.Tx
		Auth           x.Authenticator
		WantCheckErr   *errors.Error
		WantDeliverErr *errors.Error
	}{
		"owner transfers": {
			Tx: &quorumtest.Tx{
				Msg: &TransferMsg{Metadata: &quorum.Metadata{Schema: 1}, Name: "alice-box", NewOwner: bobbyCond.Address()},
			},
			Auth: &quorumtest.Auth{Signer: aliceCond},
		},
		"only the owner can transfer": {
			Tx: &quorumtest.Tx{
				Msg: &TransferMsg{Metadata: &quorum.Metadata{Schema: 1}, Name: "alice-box", NewOwner: bobbyCond.Address()},
			},
			Auth:           &quorumtest.Auth{Signer: bobbyCond},
			WantCheckErr:   errors.ErrUnauthorized,
			WantDeliverErr: errors.ErrUnauthorized,
		},
		"unknown resource": {
			Tx: &quorumtest.Tx{
				Msg: &TransferMsg{Metadata: &quorum.Metadata{Schema: 1}, Name: "nothing", NewOwner: bobbyCond.Address()},
			},
			Auth:           &quorumtest.Auth{Signer: aliceCond},
			WantCheckErr:   errors.ErrNotFound,
			WantDeliverErr: errors.ErrNotFound,
		},
		"invalid new owner": {
			Tx: &quorumtest.Tx{
				Msg: &TransferMsg{Metadata: &quorum.Metadata{Schema: 1}, Name: "alice-box"},
			},
			Auth:           &quorumtest.Auth{Signer: aliceCond},
			WantCheckErr:   errors.ErrInput,
			WantDeliverErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			b := NewBucket()
			_, err := b.Put(db, []byte("alice-box"), &Resource{
				Metadata: &quorum.Metadata{Schema: 1},
				Owner:    aliceCond.Address(),
			})
			require.NoError(t, err)

			h := transferHandler{auth: tc.Auth, bucket: b}

			cache := db.CacheWrap()
			if _, err := h.Check(context.TODO(), cache, tc.Tx); !tc.WantCheckErr.Is(err) {
				t.Fatalf("unexpected check error: %+v", err)
			}
			cache.Discard()
			if _, err := h.Deliver(context.TODO(), db, tc.Tx); !tc.WantDeliverErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}
			if tc.WantDeliverErr != nil {
				return
			}

			var r Resource
			require.NoError(t, b.One(db, []byte("alice-box"), &r))
			assert.Equal(t, bobbyCond.Address(), r.Owner)

			var owned []*Resource
			keys, err := b.ByIndex(db, "owner", bobbyCond.Address(), &owned)
			require.NoError(t, err)
			assert.Equal(t, [][]byte{[]byte("alice-box")}, keys)
		})
	}
}
