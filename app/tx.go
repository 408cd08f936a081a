package app

import (
	"fmt"
	"reflect"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/sigs"
)

// Tx is the transaction envelope sent over the wire. The message is kept
// serialized next to the path it is routed under, so that the envelope can
// be decoded without knowing all message types.
type Tx struct {
	Signatures []*sigs.StdSignature `protobuf:"bytes,1,rep,name=signatures,proto3" json:"signatures,omitempty"`
	Path       string               `protobuf:"bytes,2,opt,name=path,proto3" json:"path,omitempty"`
	Msg        []byte               `protobuf:"bytes,3,opt,name=msg,proto3" json:"msg,omitempty"`
}

func (m *Tx) Reset()         { *m = Tx{} }
func (m *Tx) String() string { return proto.CompactTextString(m) }
func (*Tx) ProtoMessage()    {}

var _ sigs.SignedTx = (*Tx)(nil)

// NewTx wraps given message into an unsigned envelope.
func NewTx(msg quorum.Msg) (*Tx, error) {
	raw, err := proto.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "marshal message")
	}
	return &Tx{Path: msg.Path(), Msg: raw}, nil
}

// GetSignBytes returns the serialized envelope without the signatures.
func (m *Tx) GetSignBytes() ([]byte, error) {
	bz, err := proto.Marshal(&Tx{Path: m.Path, Msg: m.Msg})
	if err != nil {
		return nil, errors.Wrap(err, "marshal sign bytes")
	}
	return bz, nil
}

func (m *Tx) GetSignatures() []*sigs.StdSignature {
	return m.Signatures
}

// decodedTx is an envelope together with its decoded message.
type decodedTx struct {
	*Tx
	msg quorum.Msg
}

var _ quorum.Tx = (*decodedTx)(nil)
var _ sigs.SignedTx = (*decodedTx)(nil)

func (tx *decodedTx) GetMsg() (quorum.Msg, error) {
	return tx.msg, nil
}

// MsgRegistry maps route paths to the message types delivered under them.
type MsgRegistry struct {
	types map[string]reflect.Type
}

// NewMsgRegistry returns an empty registry.
func NewMsgRegistry() *MsgRegistry {
	return &MsgRegistry{types: make(map[string]reflect.Type)}
}

// Register declares message types. Each message must be a pointer and its
// path must not be registered yet, otherwise this function panics.
func (r *MsgRegistry) Register(msgs ...quorum.Msg) {
	for _, m := range msgs {
		t := reflect.TypeOf(m)
		if t.Kind() != reflect.Ptr {
			panic(fmt.Sprintf("message %T must be a pointer", m))
		}
		path := m.Path()
		if !isPath(path) {
			panic(fmt.Sprintf("invalid path: %s", path))
		}
		if _, ok := r.types[path]; ok {
			panic(fmt.Sprintf("re-registering message: %s", path))
		}
		r.types[path] = t.Elem()
	}
}

// DecodeMsg unmarshals the message registered under given path.
func (r *MsgRegistry) DecodeMsg(path string, raw []byte) (quorum.Msg, error) {
	t, ok := r.types[path]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no message for path %q", path)
	}
	msg := reflect.New(t).Interface().(quorum.Msg)
	if err := proto.Unmarshal(raw, msg); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "unmarshal %s: %s", path, err)
	}
	return msg, nil
}

// DecodeTx parses an envelope and its message. It can be used as a
// quorum.TxDecoder.
func (r *MsgRegistry) DecodeTx(raw []byte) (quorum.Tx, error) {
	var tx Tx
	if err := proto.Unmarshal(raw, &tx); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "unmarshal tx: %s", err)
	}
	msg, err := r.DecodeMsg(tx.Path, tx.Msg)
	if err != nil {
		return nil, err
	}
	return &decodedTx{Tx: &tx, msg: msg}, nil
}
