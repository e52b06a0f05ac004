package registry

import (
	"github.com/cockroachdb/errors"
)

var (
	errEmptyID       = errors.New("empty type identifier")
	errMalformedID   = errors.New("malformed array length")
	errNestedPointer = errors.New("pointer to pointer is not supported")
	errUnknownName   = errors.New("type name not registered")
	errTooDeep       = errors.New("type identifier nested too deep")
	errTypeTooLarge  = errors.New("array type too large")
)
