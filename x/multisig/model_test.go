package multisig

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupValidate(t *testing.T) {
	owners := addrs(t, 2)
	authority := quorumtest.RandomAddr(t)

	cases := map[string]struct {
		Group     *Group
		WantErr   *errors.Error
		WantField string
	}{
		"valid": {
			Group: &Group{
				Metadata:  &quorum.Metadata{Schema: 1},
				Owners:    owners,
				Threshold: 2,
				Authority: authority,
			},
		},
		"missing metadata": {
			Group: &Group{
				Owners:    owners,
				Threshold: 2,
				Authority: authority,
			},
			WantErr:   errors.ErrMetadata,
			WantField: "Metadata",
		},
		"threshold above owners": {
			Group: &Group{
				Metadata:  &quorum.Metadata{Schema: 1},
				Owners:    owners,
				Threshold: 3,
				Authority: authority,
			},
			WantErr:   ErrInvalidThreshold,
			WantField: "Threshold",
		},
		"nonce above a byte": {
			Group: &Group{
				Metadata:       &quorum.Metadata{Schema: 1},
				Owners:         owners,
				Threshold:      1,
				AuthorityNonce: 300,
				Authority:      authority,
			},
			WantErr:   errors.ErrInput,
			WantField: "AuthorityNonce",
		},
		"missing authority": {
			Group: &Group{
				Metadata:  &quorum.Metadata{Schema: 1},
				Owners:    owners,
				Threshold: 1,
			},
			WantErr:   errors.ErrInput,
			WantField: "Authority",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.Group.Validate()
			if !tc.WantErr.Is(err) {
				t.Fatalf("want %q error, got %+v", tc.WantErr, err)
			}
			if tc.WantField != "" {
				assert.NotEmpty(t, errors.FieldErrors(err, tc.WantField))
			}
		})
	}
}

func TestGroupSerialization(t *testing.T) {
	g := &Group{
		Metadata:       &quorum.Metadata{Schema: 1},
		Description:    "treasury",
		Owners:         addrs(t, 3),
		Threshold:      2,
		AuthorityNonce: 255,
		ConfigVersion:  7,
		Authority:      quorumtest.RandomAddr(t),
	}
	raw, err := proto.Marshal(g)
	require.NoError(t, err)
	var got Group
	require.NoError(t, proto.Unmarshal(raw, &got))
	assert.Equal(t, g, &got)

	p := &Proposal{
		Metadata:      &quorum.Metadata{Schema: 1},
		GroupID:       quorumtest.SequenceID(1),
		Operation:     externalOp(g.Owners[0]),
		Approvals:     []bool{false, true, false},
		ConfigVersion: 7,
		Proposer:      g.Owners[1],
	}
	raw, err = proto.Marshal(p)
	require.NoError(t, err)
	var gotp Proposal
	require.NoError(t, proto.Unmarshal(raw, &gotp))
	assert.Equal(t, p, &gotp)
	assert.Equal(t, 1, gotp.ApprovalCount())
}

func TestMsgValidate(t *testing.T) {
	meta := &quorum.Metadata{Schema: 1}
	owners := addrs(t, 2)

	cases := map[string]struct {
		Msg     quorum.Msg
		WantErr *errors.Error
	}{
		"valid create group": {
			Msg: &CreateGroupMsg{Metadata: meta, Owners: owners, Threshold: 1},
		},
		"create group without owners": {
			Msg:     &CreateGroupMsg{Metadata: meta, Threshold: 1},
			WantErr: errors.ErrEmpty,
		},
		"create group with zero threshold": {
			Msg:     &CreateGroupMsg{Metadata: meta, Owners: owners},
			WantErr: ErrInvalidThreshold,
		},
		"valid proposal": {
			Msg: &CreateProposalMsg{Metadata: meta, GroupID: []byte{1}, Operation: externalOp()},
		},
		"proposal without group": {
			Msg:     &CreateProposalMsg{Metadata: meta, Operation: externalOp()},
			WantErr: errors.ErrEmpty,
		},
		"proposal with invalid operand": {
			Msg: &CreateProposalMsg{
				Metadata:  meta,
				GroupID:   []byte{1},
				Operation: &Operation{Target: "a/b", Operands: []*Operand{{Address: []byte{1, 2}}}},
			},
			WantErr: errors.ErrInput,
		},
		"approve without proposal": {
			Msg:     &ApproveMsg{Metadata: meta},
			WantErr: errors.ErrEmpty,
		},
		"execute without metadata": {
			Msg:     &ExecuteMsg{ProposalID: []byte{1}},
			WantErr: errors.ErrMetadata,
		},
		"set owners with duplicates": {
			Msg:     &SetOwnersMsg{Metadata: meta, Owners: []quorum.Address{owners[0], owners[0]}},
			WantErr: errors.ErrDuplicate,
		},
		"change threshold is checked on execution": {
			Msg: &ChangeThresholdMsg{Metadata: meta, Threshold: 100},
		},
		"update configuration without patch": {
			Msg:     &UpdateConfigurationMsg{Metadata: meta},
			WantErr: errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.Msg.Validate(); !tc.WantErr.Is(err) {
				t.Fatalf("want %q error, got %+v", tc.WantErr, err)
			}
		})
	}
}

func TestGovernanceMsg(t *testing.T) {
	msg, ok, err := GovernanceMsg("resource/transfer", []byte("anything"))
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.Nil(t, msg)

	raw, err := proto.Marshal(&SetOwnersAndChangeThresholdMsg{
		Metadata:  &quorum.Metadata{Schema: 1},
		Owners:    addrs(t, 2),
		Threshold: 2,
	})
	require.NoError(t, err)
	msg, ok, err = GovernanceMsg(pathSetOwnersAndChangeThresholdMsg, raw)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(2), msg.(*SetOwnersAndChangeThresholdMsg).Threshold)

	// Missing metadata is rejected.
	raw, err = proto.Marshal(&ChangeThresholdMsg{Threshold: 2})
	require.NoError(t, err)
	_, ok, err = GovernanceMsg(pathChangeThresholdMsg, raw)
	assert.True(t, ok)
	assert.True(t, errors.ErrMetadata.Is(err), "%+v", err)
}
