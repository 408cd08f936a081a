package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches err to a named attribute of the validated entity. It
// returns nil if err is nil.
//
// Field names follow the Go struct field names, for example Threshold or
// Owners. Nested fields use dot notation (Operation.Target) and slice
// elements their index (Owners.2).
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, field: fieldName, desc: description}
}

// AppendField adds the field error of fieldErrOrNil to errorsOrNil. Both
// can be nil. Validate methods chain it over every checked attribute.
func AppendField(errorsOrNil error, fieldName string, fieldErrOrNil error) error {
	return Append(errorsOrNil, Field(fieldName, fieldErrOrNil, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (e *fieldError) Error() string {
	if e.desc == "" {
		return fmt.Sprintf("field %q: %s", e.field, e.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", e.field, e.desc, e.parent)
}

func (e *fieldError) Cause() error {
	return e.parent
}

// FieldErrors returns every error attached to fieldName found in the err
// tree. The search descends into wrapped and multi errors but stops at the
// first error of a matching field, so an outer field error shadows the
// inner ones of the same name.
func FieldErrors(err error, fieldName string) []error {
	var found []error
	for !isNilErr(err) {
		if f, ok := err.(*fieldError); ok && f.field == fieldName {
			return append(found, err)
		}
		switch e := err.(type) {
		case unpacker:
			for _, inner := range e.Unpack() {
				found = append(found, FieldErrors(inner, fieldName)...)
			}
			return found
		case causer:
			err = e.Cause()
		default:
			return found
		}
	}
	return found
}
