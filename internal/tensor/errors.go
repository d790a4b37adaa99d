package tensor

import (
	"errors"
	"fmt"
)

// ErrUnsupported reports that a backend has no kernel for an operation.
var ErrUnsupported = errors.New("operation not supported by backend")

// Unsupported returns an error wrapping ErrUnsupported for the given backend and operation.
func Unsupported(backend, op string) error {
	return fmt.Errorf("%s: %s: %w", backend, op, ErrUnsupported)
}

// IsUnsupported reports whether err declines an operation.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// ContractError is the panic value raised when a caller violates an operation's
// shape or buffer-length contract.
type ContractError struct {
	Backend string
	Op      string
	Reason  string
}

func (e *ContractError) Error() string {
	return e.Backend + ": " + e.Op + ": " + e.Reason
}
