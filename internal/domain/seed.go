package domain

// CatalogSeed is the built-in starter catalog.
var CatalogSeed = []Plant{
	{
		Name:          "Monstera Deliciosa",
		Description:   "The Swiss Cheese Plant, known for its iconic split leaves.",
		Price:         29.99,
		ImageURL:      "/assets/img/product1.png",
		Category:      "Indoor",
		StockQuantity: 10,
	},
	{
		Name:          "Snake Plant",
		Description:   "Low-maintenance plant that purifies air and thrives in most conditions.",
		Price:         19.99,
		ImageURL:      "/assets/img/product2.png",
		Category:      "Indoor",
		StockQuantity: 15,
	},
	{
		Name:          "Peace Lily",
		Description:   "Elegant flowering plant that removes toxins from the air.",
		Price:         24.99,
		ImageURL:      "/assets/img/product3.png",
		Category:      "Indoor",
		StockQuantity: 8,
	},
	{
		Name:          "Fiddle Leaf Fig",
		Description:   "Popular houseplant with large, violin-shaped leaves.",
		Price:         49.99,
		ImageURL:      "/assets/img/product4.png",
		Category:      "Indoor",
		StockQuantity: 5,
	},
	{
		Name:          "Aloe Vera",
		Description:   "Medicinal plant with thick, fleshy leaves filled with gel.",
		Price:         15.99,
		ImageURL:      "/assets/img/product5.png",
		Category:      "Succulent",
		StockQuantity: 20,
	},
	{
		Name:          "Boston Fern",
		Description:   "Lush and feathery fronds that add a tropical touch to any space.",
		Price:         22.99,
		ImageURL:      "/assets/img/product6.png",
		Category:      "Indoor",
		StockQuantity: 12,
	},
}
