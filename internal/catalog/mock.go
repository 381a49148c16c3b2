package catalog

import "fmt"

// Fallback data shown when the upstream catalog is unreachable. Every
// field is derived from the id alone so repeated generations are
// identical.

const MockCount = 20

var mockCategories = []string{
	"electronics",
	"jewelery",
	"men's clothing",
	"women's clothing",
}

func MockProducts() []Product {
	out := make([]Product, 0, MockCount)
	for id := 1; id <= MockCount; id++ {
		out = append(out, MockProduct(id))
	}
	return out
}

func MockProduct(id int) Product {
	if id < 1 {
		id = 1
	}

	// Categories change in blocks of four.
	category := mockCategories[((id-1)/4)%len(mockCategories)]

	return Product{
		ID:          id,
		Title:       fmt.Sprintf("Sample Product %d", id),
		Price:       4.99 + float64(id)*7.25,
		Description: fmt.Sprintf("Placeholder %s item shown while the catalog is unavailable.", category),
		Category:    category,
		Image:       fmt.Sprintf("https://placehold.co/400x400?text=Product+%d", id),
		Rating: Rating{
			Rate:  1.5 + float64(id%8)*0.4,
			Count: 25 + id*13,
		},
	}
}
