package app

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// ResultSet holds either the keys or the values returned by a query.
type ResultSet struct {
	Results [][]byte `protobuf:"bytes,1,rep,name=results,proto3" json:"results,omitempty"`
}

func (m *ResultSet) Reset()         { *m = ResultSet{} }
func (m *ResultSet) String() string { return proto.CompactTextString(m) }
func (*ResultSet) ProtoMessage()    {}

// ResultsFromKeys returns a ResultSet of all keys
// given a set of models
func ResultsFromKeys(models []quorum.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values
// given a set of models
func ResultsFromValues(models []quorum.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues
// and makes then a consistent whole again
func JoinResults(keys, values *ResultSet) ([]quorum.Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrapf(errors.ErrState, "%d keys for %d values", len(kref), len(vref))
	}
	mods := make([]quorum.Model, len(kref))
	for i := range mods {
		mods[i] = quorum.Pair(kref[i], vref[i])
	}
	return mods, nil
}

// ParseQueryResponse decodes the serialized key and value result sets of
// a query response into models.
func ParseQueryResponse(key, value []byte) ([]quorum.Model, error) {
	var k, v ResultSet
	if err := proto.Unmarshal(key, &k); err != nil {
		return nil, errors.Wrap(errors.ErrInput, "cannot unmarshal keys")
	}
	if err := proto.Unmarshal(value, &v); err != nil {
		return nil, errors.Wrap(errors.ErrInput, "cannot unmarshal values")
	}
	return JoinResults(&k, &v)
}

func marshalResults(rs *ResultSet) ([]byte, error) {
	bz, err := proto.Marshal(rs)
	if err != nil {
		return nil, errors.Wrap(errors.ErrState, "cannot marshal result set")
	}
	return bz, nil
}
