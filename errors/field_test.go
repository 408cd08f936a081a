package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldErrors(t *testing.T) {
	// Shared instances, so that results can be compared by identity.
	var (
		emptyOwners     = Field("Owners", ErrEmpty, "at least one owner required")
		duplicateOwner  = Field("Owners", ErrDuplicate, "owner %d", 2)
		thresholdErr    = Field("Threshold", ErrInput, "above the number of owners")
		metadataMissing = Field("Metadata", ErrMetadata, "")
		emptyOperand    = Field("Operands", ErrEmpty, "operand 0")
		operationErr    = Field("Operation", Append(
			Field("Target", ErrInput, "invalid route path"),
			emptyOperand,
		), "")

		shadowedOwners = Field("Owners", duplicateOwner, "outer")
	)

	cases := map[string]struct {
		Err   error
		Field string
		Want  []error
	}{
		"single field error": {
			Err:   thresholdErr,
			Field: "Threshold",
			Want:  []error{thresholdErr},
		},
		"all errors of a field are collected": {
			Err:   Append(emptyOwners, thresholdErr, duplicateOwner),
			Field: "Owners",
			Want:  []error{emptyOwners, duplicateOwner},
		},
		"nested field holding a multi error": {
			Err:   operationErr,
			Field: "Operation",
			Want:  []error{operationErr},
		},
		"nested field is found inside its parent": {
			Err:   Append(metadataMissing, operationErr),
			Field: "Operands",
			Want:  []error{emptyOperand},
		},
		"wrapped field error": {
			Err:   Wrap(Wrap(thresholdErr, "group"), "create"),
			Field: "Threshold",
			Want:  []error{thresholdErr},
		},
		"outer field error shadows the inner one": {
			Err:   shadowedOwners,
			Field: "Owners",
			Want:  []error{shadowedOwners},
		},
		"field of another name": {
			Err:   Append(metadataMissing, thresholdErr),
			Field: "Authority",
			Want:  nil,
		},
		"plain error": {
			Err:   ErrUnauthorized,
			Field: "Owners",
			Want:  nil,
		},
		"nil error": {
			Err:   nil,
			Field: "Owners",
			Want:  nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.Want, FieldErrors(tc.Err, tc.Field))
		})
	}
}

func TestField(t *testing.T) {
	assert.Nil(t, Field("Owners", nil, "ignored"))
	assert.Nil(t, AppendField(nil, "Owners", nil))

	err := Field("Owners", ErrDuplicate, "owner %d", 1)
	require.Error(t, err)
	assert.True(t, ErrDuplicate.Is(err))
	assert.Equal(t, `field "Owners": owner 1: duplicate`, err.Error())

	err = AppendField(nil, "Metadata", ErrMetadata)
	assert.True(t, ErrMetadata.Is(err))
	assert.Equal(t, `field "Metadata": invalid metadata`, err.Error())
}
