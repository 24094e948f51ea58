package catalog

import "github.com/utafrali/brands-faas/internal/domain"

var builtin = []domain.Brand{
	{ID: 1, Name: "Nike", Category: "Sports & Apparel", Country: "USA", Founded: 1964, Description: "Athletic footwear and apparel", Website: "https://www.nike.com"},
	{ID: 2, Name: "Adidas", Category: "Sports & Apparel", Country: "Germany", Founded: 1949, Description: "Sports equipment and apparel", Website: "https://www.adidas.com"},
	{ID: 3, Name: "Apple", Category: "Technology", Country: "USA", Founded: 1976, Description: "Consumer electronics and software", Website: "https://www.apple.com"},
	{ID: 4, Name: "Samsung", Category: "Technology", Country: "South Korea", Founded: 1938, Description: "Electronics and technology", Website: "https://www.samsung.com"},
	{ID: 5, Name: "Toyota", Category: "Automotive", Country: "Japan", Founded: 1937, Description: "Automobile manufacturing", Website: "https://www.toyota.com"},
	{ID: 6, Name: "Tesla", Category: "Automotive", Country: "USA", Founded: 2003, Description: "Electric vehicles and clean energy", Website: "https://www.tesla.com"},
	{ID: 7, Name: "Coca-Cola", Category: "Beverages", Country: "USA", Founded: 1892, Description: "Soft drinks and beverages", Website: "https://www.coca-cola.com"},
	{ID: 8, Name: "Starbucks", Category: "Food & Beverage", Country: "USA", Founded: 1971, Description: "Coffee chain and roastery", Website: "https://www.starbucks.com"},
	{ID: 9, Name: "Gucci", Category: "Luxury Fashion", Country: "Italy", Founded: 1921, Description: "Luxury fashion and leather goods", Website: "https://www.gucci.com"},
	{ID: 10, Name: "Louis Vuitton", Category: "Luxury Fashion", Country: "France", Founded: 1854, Description: "Luxury fashion and leather goods", Website: "https://www.louisvuitton.com"},
}
