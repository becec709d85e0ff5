package checkout

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidRequest = errors.New("invalid order request")
	ErrCatalogEmpty   = errors.New("catalog is empty")
	ErrOrderNotFound  = errors.New("order not found")
	ErrInvalidStatus  = errors.New("invalid order status")
)

func invalidf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidRequest, format, args...)
}

type PlantNotFoundError struct {
	Reference string
}

func (e *PlantNotFoundError) Error() string {
	return fmt.Sprintf("plant %q not found", e.Reference)
}

type InsufficientStockError struct {
	PlantName string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.PlantName, e.Requested, e.Available)
}

// StoreError wraps a persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
