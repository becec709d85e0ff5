package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/plantee/storefront/internal/domain"
	"github.com/plantee/storefront/pkg/common"
)

// NewGormStore builds a Store on a relational database. The schema is
// expected to be migrated from domain.Tables.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Plants:   &GormPlantRepository{db: db},
		Orders:   &GormOrderRepository{db: db},
		Contacts: &GormContactRepository{db: db},
		closer: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// GormPlantRepository is the GORM implementation of PlantRepository
type GormPlantRepository struct {
	db *gorm.DB
}

func (r *GormPlantRepository) List(ctx context.Context) ([]domain.Plant, error) {
	var plants []domain.Plant
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&plants).Error; err != nil {
		return nil, errors.Wrap(err, "list plants")
	}
	return plants, nil
}

func (r *GormPlantRepository) Get(ctx context.Context, id string) (*domain.Plant, error) {
	if !common.ValidID(id) {
		return nil, ErrNotFound
	}
	var p domain.Plant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get plant %s", id)
	}
	return &p, nil
}

func (r *GormPlantRepository) Create(ctx context.Context, p *domain.Plant) error {
	if p.ID == "" {
		p.ID = common.NewID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = common.Now()
	}
	return errors.Wrap(r.db.WithContext(ctx).Create(p).Error, "create plant")
}

func (r *GormPlantRepository) Update(ctx context.Context, p *domain.Plant) error {
	if !common.ValidID(p.ID) {
		return ErrNotFound
	}
	res := r.db.WithContext(ctx).Model(&domain.Plant{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":           p.Name,
		"description":    p.Description,
		"price":          p.Price,
		"image_url":      p.ImageURL,
		"category":       p.Category,
		"stock_quantity": p.StockQuantity,
	})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update plant %s", p.ID)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormPlantRepository) Delete(ctx context.Context, id string) error {
	if !common.ValidID(id) {
		return ErrNotFound
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Plant{})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete plant %s", id)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormPlantRepository) DeleteAll(ctx context.Context) error {
	err := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.Plant{}).Error
	return errors.Wrap(err, "delete all plants")
}

func (r *GormPlantRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Plant{}).Count(&total).Error; err != nil {
		return 0, errors.Wrap(err, "count plants")
	}
	return total, nil
}

func (r *GormPlantRepository) Reserve(ctx context.Context, id string, qty int) (*domain.Plant, error) {
	if !common.ValidID(id) {
		return nil, ErrNotFound
	}
	res := r.db.WithContext(ctx).Model(&domain.Plant{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "reserve plant %s", id)
	}
	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return p, ErrInsufficientStock
	}
	return p, nil
}

func (r *GormPlantRepository) Release(ctx context.Context, id string, qty int) error {
	res := r.db.WithContext(ctx).Model(&domain.Plant{}).
		Where("id = ?", id).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", qty))
	if res.Error != nil {
		return errors.Wrapf(res.Error, "release plant %s", id)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormPlantRepository) LowStock(ctx context.Context, threshold int) ([]domain.Plant, error) {
	var plants []domain.Plant
	err := r.db.WithContext(ctx).
		Where("stock_quantity <= ?", threshold).
		Order("stock_quantity ASC, name ASC").
		Find(&plants).Error
	if err != nil {
		return nil, errors.Wrap(err, "query low stock")
	}
	return plants, nil
}

// GormOrderRepository is the GORM implementation of OrderRepository
type GormOrderRepository struct {
	db *gorm.DB
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("seq ASC")
}

func (r *GormOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	if o.ID == "" {
		o.ID = common.NewID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = common.Now()
	}
	for i := range o.Items {
		o.Items[i].Seq = i
	}
	return errors.Wrap(r.db.WithContext(ctx).Create(o).Error, "create order")
}

func (r *GormOrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	if !common.ValidID(id) {
		return nil, ErrNotFound
	}
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Items", preloadItems).Where("id = ?", id).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get order %s", id)
	}
	return &o, nil
}

func (r *GormOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).Preload("Items", preloadItems).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	if !common.ValidID(id) {
		return nil, ErrNotFound
	}
	res := r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "update order %s", id)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

// GormContactRepository is the GORM implementation of ContactRepository
type GormContactRepository struct {
	db *gorm.DB
}

func (r *GormContactRepository) Create(ctx context.Context, m *domain.ContactMessage) error {
	if m.ID == "" {
		m.ID = common.NewID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = common.Now()
	}
	return errors.Wrap(r.db.WithContext(ctx).Create(m).Error, "create contact message")
}

func (r *GormContactRepository) List(ctx context.Context) ([]domain.ContactMessage, error) {
	var msgs []domain.ContactMessage
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&msgs).Error; err != nil {
		return nil, errors.Wrap(err, "list contact messages")
	}
	return msgs, nil
}
