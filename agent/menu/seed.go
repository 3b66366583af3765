package menu

import (
	"github.com/shopspring/decimal"

	contractx "github.com/forno-labs/pizzabot/agent/contract"
)

// SeedItems is the built-in pizza catalog. It backs the in-memory store
// directly and is inserted into Postgres on first start.
func SeedItems() []contractx.MenuItem {
	return []contractx.MenuItem{
		{Name: "Margherita Classica", Ingredients: "tomato sauce, mozzarella, fresh basil, olive oil", UnitPrice: decimal.RequireFromString("12.99")},
		{Name: "Pepperoni Supreme", Ingredients: "tomato sauce, mozzarella, pepperoni, oregano", UnitPrice: decimal.RequireFromString("14.99")},
		{Name: "Quattro Formaggi", Ingredients: "mozzarella, gorgonzola, parmesan, fontina cheese", UnitPrice: decimal.RequireFromString("16.99")},
		{Name: "Vegetariana Deluxe", Ingredients: "tomato sauce, mozzarella, bell peppers, mushrooms, onions, olives, tomatoes", UnitPrice: decimal.RequireFromString("15.99")},
		{Name: "Hawaiian Paradise", Ingredients: "tomato sauce, mozzarella, ham, pineapple", UnitPrice: decimal.RequireFromString("13.99")},
		{Name: "BBQ Chicken Feast", Ingredients: "BBQ sauce, mozzarella, grilled chicken, red onions, cilantro", UnitPrice: decimal.RequireFromString("17.99")},
		{Name: "Meat Lovers Special", Ingredients: "tomato sauce, mozzarella, pepperoni, sausage, bacon, ham", UnitPrice: decimal.RequireFromString("18.99")},
		{Name: "Mediterranean Dream", Ingredients: "tomato sauce, mozzarella, feta cheese, olives, sun-dried tomatoes, artichokes", UnitPrice: decimal.RequireFromString("16.49")},
		{Name: "Spicy Diavola", Ingredients: "tomato sauce, mozzarella, spicy salami, hot peppers, chili flakes", UnitPrice: decimal.RequireFromString("15.49")},
		{Name: "Truffle Mushroom Gourmet", Ingredients: "white sauce, mozzarella, mixed mushrooms, truffle oil, parmesan", UnitPrice: decimal.RequireFromString("19.99")},
	}
}
