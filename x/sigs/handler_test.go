package sigs

import (
	"context"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerRegistry map[string]quorum.Handler

func (r handlerRegistry) Handle(path string, h quorum.Handler) {
	r[path] = h
}

func TestBumpSequence(t *testing.T) {
	key := quorumtest.NewKey()
	signer := key.PublicKey().Condition()

	cases := map[string]struct {
		Stored    int64
		NoUser    bool
		Signer    quorum.Condition
		Increment uint32
		WantErr   *errors.Error
		WantSeq   int64
	}{
		"increment by one is a noop": {
			Stored:    5,
			Signer:    signer,
			Increment: 1,
			WantSeq:   5,
		},
		"increment by ten": {
			Stored:    5,
			Signer:    signer,
			Increment: 10,
			WantSeq:   14,
		},
		"unknown user": {
			NoUser:    true,
			Signer:    signer,
			Increment: 2,
			WantErr:   errors.ErrNotFound,
		},
		"not signed": {
			Stored:    5,
			Increment: 2,
			WantErr:   errors.ErrUnauthorized,
			WantSeq:   5,
		},
		"too big increment": {
			Stored:    5,
			Signer:    signer,
			Increment: maxSequenceIncrement + 1,
			WantErr:   errors.ErrMsg,
			WantSeq:   5,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			b := NewBucket()
			if !tc.NoUser {
				user := &UserData{Metadata: &quorum.Metadata{Schema: 1}, Pubkey: key.PublicKey(), Sequence: tc.Stored}
				require.NoError(t, b.Save(db, user))
			}

			r := handlerRegistry{}
			var auth quorumtest.Auth
			if tc.Signer != nil {
				auth.Signer = tc.Signer
			}
			RegisterRoutes(r, &auth)
			h := r[pathBumpSequenceMsg]
			require.NotNil(t, h)

			tx := &quorumtest.Tx{Msg: &BumpSequenceMsg{Metadata: &quorum.Metadata{Schema: 1}, Increment: tc.Increment}}
			if _, err := h.Check(context.Background(), db, tx); !tc.WantErr.Is(err) {
				t.Fatalf("unexpected check error: %+v", err)
			}
			if _, err := h.Deliver(context.Background(), db, tx); !tc.WantErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}
			if tc.NoUser {
				return
			}
			seq, err := NextNonce(db, key.PublicKey().Address())
			require.NoError(t, err)
			assert.Equal(t, tc.WantSeq, seq)
		})
	}
}
