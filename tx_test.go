package quorum

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteMsg struct {
	Text string `protobuf:"bytes,1,opt,name=text,proto3" json:"text,omitempty"`
}

func (m *noteMsg) Reset()         { *m = noteMsg{} }
func (m *noteMsg) String() string { return proto.CompactTextString(m) }
func (*noteMsg) ProtoMessage()    {}
func (*noteMsg) Path() string     { return "test/note" }

func (m *noteMsg) Validate() error {
	if m.Text == "" {
		return errors.Wrap(errors.ErrEmpty, "text")
	}
	return nil
}

type otherMsg struct {
	noteMsg
}

func (*otherMsg) Path() string { return "test/other" }

type msgTx struct {
	msg Msg
	err error
}

func (tx msgTx) GetMsg() (Msg, error) { return tx.msg, tx.err }

func TestLoadMsg(t *testing.T) {
	var got noteMsg
	require.NoError(t, LoadMsg(msgTx{msg: &noteMsg{Text: "hi"}}, &got))
	assert.Equal(t, "hi", got.Text)

	err := LoadMsg(msgTx{msg: &noteMsg{}}, &got)
	assert.True(t, errors.ErrEmpty.Is(err))

	err = LoadMsg(msgTx{msg: &otherMsg{noteMsg{Text: "x"}}}, &got)
	assert.True(t, errors.ErrType.Is(err))

	err = LoadMsg(msgTx{err: errors.ErrMsg}, &got)
	assert.True(t, errors.ErrMsg.Is(err))
}

func TestGetPath(t *testing.T) {
	assert.Equal(t, "test/note", GetPath(msgTx{msg: &noteMsg{}}))
	assert.Equal(t, "(missing)", GetPath(msgTx{err: errors.ErrMsg}))
}
