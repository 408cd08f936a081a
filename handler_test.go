package quorum

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/quorum/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOptions(t *testing.T) {
	cases := map[string]struct {
		json    string
		key     string
		wantErr *errors.Error
		want    []struct{ Key int }
	}{
		"happy path": {
			json: `{"list": [{"key": 1}, {"key": 2}]}`,
			key:  "list",
			want: []struct{ Key int }{{Key: 1}, {Key: 2}},
		},
		"missing key is a noop": {
			json: `{}`,
			key:  "list",
			want: nil,
		},
		"wrong value": {
			json:    `{"list": [{"key": "dasdasas"}]}`,
			key:     "list",
			wantErr: errors.ErrInput,
		},
		"wrong body": {
			json:    `{"list": "adasda"}`,
			key:     "list",
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var o Options
			require.NoError(t, json.Unmarshal([]byte(tc.json), &o))

			var got []struct{ Key int }
			err := o.ReadOptions(tc.key, &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

type countingInit struct {
	calls *[]string
	name  string
	err   error
}

func (c countingInit) FromGenesis(Options, KVStore) error {
	*c.calls = append(*c.calls, c.name)
	return c.err
}

func TestGenesisInitializers(t *testing.T) {
	var calls []string
	all := GenesisInitializers(
		countingInit{calls: &calls, name: "first"},
		countingInit{calls: &calls, name: "second", err: errors.ErrState},
		countingInit{calls: &calls, name: "third"},
	)
	err := all.FromGenesis(Options{}, nil)
	assert.True(t, errors.ErrState.Is(err))
	assert.Equal(t, []string{"first", "second"}, calls)
}
