package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If no non-nil error is given, nil is returned. If a single non-nil error
// is given, that error is returned unchanged.
func Append(errs ...error) error {
	var flat []error
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if m, ok := e.(*multiErr); ok {
			flat = append(flat, m.errs...)
			continue
		}
		flat = append(flat, e)
	}

	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	default:
		return &multiErr{errs: flat}
	}
}

// multiErr represents a collection of errors. It is implementing the
// unpacker interface so that each of the grouped errors can be inspected.
type multiErr struct {
	errs []error
}

func (e *multiErr) Error() string {
	points := make([]string, len(e.errs))
	for i, err := range e.errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf(
		"%d errors occurred:\n\t%s\n",
		len(e.errs), strings.Join(points, "\n\t"))
}

// Unpack implements unpacker interface.
func (e *multiErr) Unpack() []error {
	return e.errs
}

// ABCICode returns the code of the first error, consistent with a fail-fast
// approach.
func (e *multiErr) ABCICode() uint32 {
	return ABCICode(e.errs[0])
}
