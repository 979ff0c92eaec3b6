package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the sentinel for missing items, ranks, and collections.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument covers unknown tier names and malformed ids.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthorized is the sentinel for requests without a resolved user.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrExternalService marks discovery failures. Callers inside the pool
	// builder swallow it; it must never reach a user-facing response.
	ErrExternalService = errors.New("external service unavailable")
	// ErrPersistence marks a failed transactional write. Sessions roll back
	// their speculative state when they see it.
	ErrPersistence = errors.New("persistence failed")
)

// TierNotEmptyError rejects deletion of a rank that items still reference.
type TierNotEmptyError struct {
	RankName  string
	ItemCount int64
}

func (e *TierNotEmptyError) Error() string {
	return fmt.Sprintf("tier %q still has %d item(s) assigned", e.RankName, e.ItemCount)
}

// IsTierNotEmpty reports whether err is (or wraps) a TierNotEmptyError.
func IsTierNotEmpty(err error) bool {
	var t *TierNotEmptyError
	return errors.As(err, &t)
}

// Persistence wraps a storage error with the ErrPersistence sentinel so the
// session layer can classify it without knowing the driver.
func Persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}
