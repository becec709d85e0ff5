package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Buyer is the customer descriptor copied onto each order.
type Buyer struct {
	Name    string `gorm:"size:200" json:"name" bson:"name"`
	Email   string `gorm:"size:320" json:"email" bson:"email"`
	Address string `gorm:"size:1024" json:"address" bson:"address"`
}

// OrderItem is one line of an order. Price is the unit price the client
// asserted at checkout. Name is the plant name at checkout time and stays
// off the wire.
type OrderItem struct {
	ID       int64   `gorm:"primaryKey;autoIncrement" json:"-" bson:"-"`
	OrderID  string  `gorm:"size:24;index" json:"-" bson:"-"`
	Seq      int     `json:"-" bson:"-"`
	Plant    string  `gorm:"size:24;index" json:"plant" bson:"plant"`
	Name     string  `gorm:"size:200" json:"-" bson:"name"`
	Quantity int     `json:"quantity" bson:"quantity"`
	Price    float64 `json:"price" bson:"price"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "plantee_order_item"
}

type Order struct {
	ID          string      `gorm:"primaryKey;size:24" json:"_id" bson:"_id"`
	OrderNumber int64       `gorm:"uniqueIndex" json:"orderNumber,string" bson:"orderNumber"`
	User        Buyer       `gorm:"embedded;embeddedPrefix:user_" json:"user" bson:"user"`
	Items       []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items" bson:"items"`
	TotalAmount float64     `json:"totalAmount" bson:"totalAmount"`
	Status      string      `gorm:"size:32;index" json:"status" bson:"status"`
	CreatedAt   time.Time   `gorm:"index" json:"createdAt" bson:"createdAt"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "plantee_order"
}

// ItemsTotal sums price x quantity over the lines.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// TotalMatches reports whether the client supplied total equals the sum of
// the lines, compared at cent precision.
func (o *Order) TotalMatches() bool {
	return o.ItemsTotal().Round(2).Equal(decimal.NewFromFloat(o.TotalAmount).Round(2))
}
