package repository

import (
	"context"
	"sync"

	"github.com/google/btree"

	"github.com/plantee/storefront/internal/domain"
	"github.com/plantee/storefront/pkg/common"
)

// memoryStore keeps records in maps with btree indexes for the listing
// orders. All reads return copies.
type memoryStore struct {
	mu sync.RWMutex

	plants     map[string]*domain.Plant
	plantIndex *btree.BTreeG[*domain.Plant]

	orders     map[string]*domain.Order
	orderIndex *btree.BTreeG[*domain.Order]

	contacts     map[string]*domain.ContactMessage
	contactIndex *btree.BTreeG[*domain.ContactMessage]
}

// NewMemoryStore builds a Store kept entirely in process memory.
func NewMemoryStore() *Store {
	s := &memoryStore{
		plants:     map[string]*domain.Plant{},
		plantIndex: btree.NewG[*domain.Plant](8, domain.CatalogLess),
		orders:     map[string]*domain.Order{},
		orderIndex: btree.NewG[*domain.Order](8, func(a, b *domain.Order) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		}),
		contacts: map[string]*domain.ContactMessage{},
		contactIndex: btree.NewG[*domain.ContactMessage](8, func(a, b *domain.ContactMessage) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		}),
	}
	return &Store{
		Plants:   &memoryPlantRepository{s},
		Orders:   &memoryOrderRepository{s},
		Contacts: &memoryContactRepository{s},
	}
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = append([]domain.OrderItem(nil), o.Items...)
	return &c
}

type memoryPlantRepository struct {
	s *memoryStore
}

func (r *memoryPlantRepository) List(_ context.Context) ([]domain.Plant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	plants := make([]domain.Plant, 0, r.s.plantIndex.Len())
	r.s.plantIndex.Ascend(func(p *domain.Plant) bool {
		plants = append(plants, *p)
		return true
	})
	return plants, nil
}

func (r *memoryPlantRepository) Get(_ context.Context, id string) (*domain.Plant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.plants[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *memoryPlantRepository) Create(_ context.Context, p *domain.Plant) error {
	if p.ID == "" {
		p.ID = common.NewID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = common.Now()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *p
	r.s.plants[c.ID] = &c
	r.s.plantIndex.ReplaceOrInsert(&c)
	return nil
}

func (r *memoryPlantRepository) Update(_ context.Context, p *domain.Plant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.plants[p.ID]
	if !ok {
		return ErrNotFound
	}
	cur.Name = p.Name
	cur.Description = p.Description
	cur.Price = p.Price
	cur.ImageURL = p.ImageURL
	cur.Category = p.Category
	cur.StockQuantity = p.StockQuantity
	return nil
}

func (r *memoryPlantRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plants[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.s.plants, id)
	r.s.plantIndex.Delete(p)
	return nil
}

func (r *memoryPlantRepository) DeleteAll(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.plants = map[string]*domain.Plant{}
	r.s.plantIndex.Clear(false)
	return nil
}

func (r *memoryPlantRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.plants)), nil
}

func (r *memoryPlantRepository) Reserve(_ context.Context, id string, qty int) (*domain.Plant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plants[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.StockQuantity < qty {
		c := *p
		return &c, ErrInsufficientStock
	}
	p.StockQuantity -= qty
	c := *p
	return &c, nil
}

func (r *memoryPlantRepository) Release(_ context.Context, id string, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plants[id]
	if !ok {
		return ErrNotFound
	}
	p.StockQuantity += qty
	return nil
}

func (r *memoryPlantRepository) LowStock(_ context.Context, threshold int) ([]domain.Plant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	plants := []domain.Plant{}
	r.s.plantIndex.Ascend(func(p *domain.Plant) bool {
		if p.StockQuantity <= threshold {
			plants = append(plants, *p)
		}
		return true
	})
	return plants, nil
}

type memoryOrderRepository struct {
	s *memoryStore
}

func (r *memoryOrderRepository) Create(_ context.Context, o *domain.Order) error {
	if o.ID == "" {
		o.ID = common.NewID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = common.Now()
	}
	for i := range o.Items {
		o.Items[i].Seq = i
		o.Items[i].OrderID = o.ID
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := cloneOrder(o)
	r.s.orders[c.ID] = c
	r.s.orderIndex.ReplaceOrInsert(c)
	return nil
}

func (r *memoryOrderRepository) Get(_ context.Context, id string) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *memoryOrderRepository) List(_ context.Context) ([]domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	orders := make([]domain.Order, 0, r.s.orderIndex.Len())
	r.s.orderIndex.Descend(func(o *domain.Order) bool {
		orders = append(orders, *cloneOrder(o))
		return true
	})
	return orders, nil
}

func (r *memoryOrderRepository) UpdateStatus(_ context.Context, id, status string) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.Status = status
	return cloneOrder(o), nil
}

type memoryContactRepository struct {
	s *memoryStore
}

func (r *memoryContactRepository) Create(_ context.Context, m *domain.ContactMessage) error {
	if m.ID == "" {
		m.ID = common.NewID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = common.Now()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *m
	r.s.contacts[c.ID] = &c
	r.s.contactIndex.ReplaceOrInsert(&c)
	return nil
}

func (r *memoryContactRepository) List(_ context.Context) ([]domain.ContactMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	msgs := make([]domain.ContactMessage, 0, r.s.contactIndex.Len())
	r.s.contactIndex.Descend(func(m *domain.ContactMessage) bool {
		msgs = append(msgs, *m)
		return true
	})
	return msgs, nil
}
