package domain

import "time"

// Plant is a catalog entry. StockQuantity never goes negative.
type Plant struct {
	ID            string    `gorm:"primaryKey;size:24" json:"_id" bson:"_id"`
	Name          string    `gorm:"size:200;index" json:"name" bson:"name"`
	Description   string    `gorm:"type:text" json:"description" bson:"description"`
	Price         float64   `json:"price" bson:"price"`
	ImageURL      string    `gorm:"size:1024" json:"imageUrl" bson:"imageUrl"`
	Category      string    `gorm:"size:64;index" json:"category" bson:"category"`
	StockQuantity int       `json:"stockQuantity" bson:"stockQuantity"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt" bson:"createdAt"`
}

// TableName Specify table name
func (Plant) TableName() string {
	return "plantee_plant"
}

// CatalogLess orders plants by creation time, then id. Catalog snapshots and
// the public listing both use this order, so positional references are
// stable across requests.
func CatalogLess(a, b *Plant) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
