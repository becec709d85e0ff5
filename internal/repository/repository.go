package repository

import (
	"context"
	"errors"

	"github.com/plantee/storefront/internal/domain"
)

var (
	// ErrNotFound is returned for absent records and malformed identifiers.
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientStock is returned by Reserve when the plant no longer
	// holds the requested quantity. Nothing is decremented.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// PlantRepository handles catalog persistence
type PlantRepository interface {
	// List returns every plant in catalog order (createdAt ASC, id ASC)
	List(ctx context.Context) ([]domain.Plant, error)

	// Get retrieves a plant by ID
	Get(ctx context.Context, id string) (*domain.Plant, error)

	// Create inserts a plant, assigning ID and CreatedAt when unset
	Create(ctx context.Context, p *domain.Plant) error

	// Update overwrites the mutable fields of an existing plant
	Update(ctx context.Context, p *domain.Plant) error

	// Delete removes a plant
	Delete(ctx context.Context, id string) error

	// DeleteAll empties the catalog
	DeleteAll(ctx context.Context) error

	Count(ctx context.Context) (int64, error)

	// Reserve atomically decrements stock by qty only if at least qty is
	// available. It returns the plant as it is after the call; on
	// ErrInsufficientStock the returned plant carries the current stock.
	Reserve(ctx context.Context, id string, qty int) (*domain.Plant, error)

	// Release returns qty units to stock
	Release(ctx context.Context, id string, qty int) error

	// LowStock lists plants whose stock is at or below threshold
	LowStock(ctx context.Context, threshold int) ([]domain.Plant, error)
}

// OrderRepository handles order persistence
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error

	Get(ctx context.Context, id string) (*domain.Order, error)

	// List returns all orders, newest first
	List(ctx context.Context) ([]domain.Order, error)

	// UpdateStatus overwrites the status and returns the updated order
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
}

// ContactRepository handles contact form persistence
type ContactRepository interface {
	Create(ctx context.Context, m *domain.ContactMessage) error

	// List returns all messages, newest first
	List(ctx context.Context) ([]domain.ContactMessage, error)
}

// Store groups the repositories of one storage backend.
type Store struct {
	Plants   PlantRepository
	Orders   OrderRepository
	Contacts ContactRepository

	closer func(ctx context.Context) error
}

func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer(ctx)
}
