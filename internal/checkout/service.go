package checkout

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/plantee/storefront/internal/domain"
	"github.com/plantee/storefront/internal/repository"
	"github.com/plantee/storefront/pkg/common"
)

// Publisher is the event bus surface the service needs.
type Publisher interface {
	Publish(topic string, args ...interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, ...interface{}) {}

// ItemRequest is one raw cart line.
type ItemRequest struct {
	Plant    interface{}
	Quantity interface{}
	Price    float64
}

// PlaceRequest is the raw checkout payload.
type PlaceRequest struct {
	User        *domain.Buyer
	Items       []ItemRequest
	TotalAmount float64
}

type reservation struct {
	plantID string
	qty     int
}

type Option func(*Service)

// WithCompensation toggles releasing earlier reservations when a placement
// fails. Enabled by default.
func WithCompensation(on bool) Option {
	return func(s *Service) { s.compensate = on }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.bus = p
		}
	}
}

// Service runs order placement and the order read/update paths.
type Service struct {
	plants     repository.PlantRepository
	orders     repository.OrderRepository
	bus        Publisher
	compensate bool
}

func NewService(plants repository.PlantRepository, orders repository.OrderRepository, opts ...Option) *Service {
	s := &Service{
		plants:     plants,
		orders:     orders,
		bus:        noopPublisher{},
		compensate: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type line struct {
	ref      PlantRef
	quantity int
	price    float64
}

func validate(req PlaceRequest) ([]line, error) {
	if req.User == nil {
		return nil, invalidf("user is required")
	}
	if len(req.Items) == 0 {
		return nil, invalidf("items must be a non-empty list")
	}
	lines := make([]line, 0, len(req.Items))
	for i, it := range req.Items {
		ref, err := ParseRef(it.Plant)
		if err != nil {
			return nil, errors.WithMessagef(err, "item %d", i+1)
		}
		qty, err := parseQuantity(it.Quantity)
		if err != nil {
			return nil, errors.WithMessagef(err, "item %d", i+1)
		}
		lines = append(lines, line{ref: ref, quantity: qty, price: it.Price})
	}
	return lines, nil
}

func parseQuantity(v interface{}) (int, error) {
	switch v.(type) {
	case nil:
		return 0, invalidf("quantity is required")
	case bool:
		return 0, invalidf("quantity must be a positive integer")
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || f != float64(int(f)) || f < 1 {
		return 0, invalidf("quantity must be a positive integer")
	}
	return int(f), nil
}

// Place validates the cart, resolves every line against the catalog,
// reserves stock line by line and records the order.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*domain.Order, error) {
	lines, err := validate(req)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.plants.List(ctx)
	if err != nil {
		return nil, storeErr("load catalog", err)
	}
	if len(snapshot) == 0 {
		return nil, ErrCatalogEmpty
	}

	var reserved []reservation
	fail := func(err error) (*domain.Order, error) {
		s.rollback(ctx, reserved)
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, ln := range lines {
		plant, err := s.resolve(ctx, snapshot, ln.ref)
		if err != nil {
			return fail(err)
		}
		if ln.quantity > plant.StockQuantity {
			return fail(&InsufficientStockError{PlantName: plant.Name, Requested: ln.quantity, Available: plant.StockQuantity})
		}
		after, err := s.plants.Reserve(ctx, plant.ID, ln.quantity)
		switch {
		case errors.Is(err, repository.ErrInsufficientStock):
			return fail(&InsufficientStockError{PlantName: plant.Name, Requested: ln.quantity, Available: after.StockQuantity})
		case errors.Is(err, repository.ErrNotFound):
			return fail(&PlantNotFoundError{Reference: ln.ref.Raw})
		case err != nil:
			return fail(storeErr("reserve stock", err))
		}
		reserved = append(reserved, reservation{plantID: plant.ID, qty: ln.quantity})
		syncSnapshot(snapshot, after)
		s.bus.Publish(domain.TopicStockReserved, after, ln.quantity)

		items = append(items, domain.OrderItem{Plant: plant.ID, Name: plant.Name, Quantity: ln.quantity, Price: ln.price})
	}

	order := &domain.Order{
		OrderNumber: common.OrderNumber(),
		User:        *req.User,
		Items:       items,
		TotalAmount: req.TotalAmount,
		Status:      domain.OrderStatusPending,
		CreatedAt:   common.Now(),
	}
	if !order.TotalMatches() {
		zap.L().Warn("order total differs from line items",
			zap.String("namespace", "checkout"),
			zap.Float64("totalAmount", order.TotalAmount),
			zap.String("itemsTotal", order.ItemsTotal().StringFixed(2)))
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return fail(storeErr("save order", err))
	}

	zap.L().Info("order placed",
		zap.String("namespace", "checkout"),
		zap.String("id", order.ID),
		zap.Int64("number", order.OrderNumber),
		zap.Int("items", len(order.Items)))
	s.bus.Publish(domain.TopicOrderPlaced, order)
	return order, nil
}

// resolve maps a reference to a catalog plant. Id references go to the
// store and never fall through to positional or name matching.
func (s *Service) resolve(ctx context.Context, snapshot []domain.Plant, ref PlantRef) (*domain.Plant, error) {
	if ref.Kind == RefByID {
		p, err := s.plants.Get(ctx, ref.Raw)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &PlantNotFoundError{Reference: ref.Raw}
		}
		if err != nil {
			return nil, storeErr("load plant", err)
		}
		return p, nil
	}
	if ref.Kind == RefByPosition && ref.Position >= 1 && ref.Position <= len(snapshot) {
		p := snapshot[ref.Position-1]
		return &p, nil
	}
	if i := matchName(snapshot, ref.Raw); i >= 0 {
		p := snapshot[i]
		return &p, nil
	}
	return nil, &PlantNotFoundError{Reference: ref.Raw}
}

func syncSnapshot(snapshot []domain.Plant, p *domain.Plant) {
	for i := range snapshot {
		if snapshot[i].ID == p.ID {
			snapshot[i].StockQuantity = p.StockQuantity
		}
	}
}

// rollback releases reservations in reverse order. It does nothing when
// compensation is disabled.
func (s *Service) rollback(ctx context.Context, reserved []reservation) {
	if !s.compensate {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		if err := s.plants.Release(ctx, r.plantID, r.qty); err != nil {
			zap.L().Error("release reserved stock failed",
				zap.String("namespace", "checkout"),
				zap.String("plant", r.plantID),
				zap.Int("qty", r.qty),
				zap.Error(err))
			continue
		}
		s.bus.Publish(domain.TopicStockReleased, r.plantID, r.qty)
	}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.orders.Get(ctx, common.NormalizeID(id))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, storeErr("load order", err)
	}
	return o, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, storeErr("list orders", err)
	}
	return orders, nil
}

// SetStatus overwrites the order status. Any known status is accepted from
// any current status.
func (s *Service) SetStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	id = common.NormalizeID(id)
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	status = strings.TrimSpace(status)
	if !domain.ValidOrderStatus(status) {
		return nil, errors.Wrapf(ErrInvalidStatus, "%q", status)
	}
	o, err := s.orders.UpdateStatus(ctx, id, status)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, storeErr("update order status", err)
	}
	s.bus.Publish(domain.TopicOrderStatus, o)
	return o, nil
}
