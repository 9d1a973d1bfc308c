package repositories

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a unique index rejects a write
	// (product code, category name, order code).
	ErrDuplicate = errors.New("duplicate key")
)

// InsufficientStockError names the product whose stock could not cover the
// requested quantity, so checkout can tell the customer which line failed.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// IsInsufficientStock reports whether err is an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
