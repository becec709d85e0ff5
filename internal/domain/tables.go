package domain

var Tables = []interface{}{
	// Catalog
	&Plant{},
	// Orders
	&Order{},
	&OrderItem{},
	// Contact
	&ContactMessage{},
}
