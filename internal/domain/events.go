package domain

// Event bus topics.
const (
	TopicOrderPlaced     = "order:placed"
	TopicOrderStatus     = "order:status"
	TopicStockReserved   = "stock:reserved"
	TopicStockReleased   = "stock:released"
	TopicContactReceived = "contact:received"
)
