package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSubstanceNotFound  = errors.New("substance not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNoBackendAvailable = errors.New("no backend available")
	ErrTemporary          = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
