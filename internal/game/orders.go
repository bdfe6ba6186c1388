package game

import (
	"math/rand"
	"time"
)

// orderCatalog is the fixed set of round 3 order templates.
var orderCatalog = []Order{
	{Type: "ham", Ingredients: map[IngredientKind]int{KindBase: 1, KindSauce: 1, KindHam: 4, KindPineapple: 0}},
	{Type: "pineapple", Ingredients: map[IngredientKind]int{KindBase: 1, KindSauce: 1, KindHam: 0, KindPineapple: 4}},
	{Type: "ham & pineapple", Ingredients: map[IngredientKind]int{KindBase: 1, KindSauce: 1, KindHam: 2, KindPineapple: 2}},
	{Type: "light ham", Ingredients: map[IngredientKind]int{KindBase: 1, KindSauce: 1, KindHam: 1, KindPineapple: 0}},
	{Type: "light pineapple", Ingredients: map[IngredientKind]int{KindBase: 1, KindSauce: 1, KindHam: 0, KindPineapple: 1}},
	{Type: "plain", Ingredients: map[IngredientKind]int{KindBase: 1, KindSauce: 1, KindHam: 0, KindPineapple: 0}},
	{Type: "heavy ham", Ingredients: map[IngredientKind]int{KindBase: 1, KindSauce: 1, KindHam: 6, KindPineapple: 0}},
	{Type: "heavy pineapple", Ingredients: map[IngredientKind]int{KindBase: 1, KindSauce: 1, KindHam: 0, KindPineapple: 6}},
}

const (
	orderCount = 15
	// Orders stop arriving this long before round end so the last one can
	// still be built and baked.
	orderArrivalMargin = 45 * time.Second
)

// GenerateOrders draws orderCount orders (with repetition) from the catalog,
// spacing their arrival offsets evenly across [0, roundDuration-margin] so
// the first arrives immediately and the last with bake time to spare.
func GenerateOrders(roundDuration time.Duration, rng *rand.Rand) []Order {
	maxTime := roundDuration - orderArrivalMargin
	if maxTime < 0 {
		maxTime = 0
	}
	orders := make([]Order, 0, orderCount)
	for i := 0; i < orderCount; i++ {
		tmpl := orderCatalog[rng.Intn(len(orderCatalog))]
		counts := make(map[IngredientKind]int, len(tmpl.Ingredients))
		for k, v := range tmpl.Ingredients {
			counts[k] = v
		}
		orders = append(orders, Order{
			ID:          newShortID(),
			Type:        tmpl.Type,
			Ingredients: counts,
			ArrivalTime: maxTime * time.Duration(i) / (orderCount - 1),
		})
	}
	return orders
}
