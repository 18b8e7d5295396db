package inventory

import "github.com/shopspring/decimal"

// ValuedQuantity cantidad y precio unitario a valorar.
type ValuedQuantity struct {
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// StockValue valor del stock: Σ cantidad × precio. Cantidades no positivas no suman.
func StockValue(items []ValuedQuantity) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if !it.Quantity.IsPositive() {
			continue
		}
		total = total.Add(it.Quantity.Mul(it.Price))
	}
	return total
}

// SuggestedOrderQty cantidad a pedir para volver al máximo de la regla (o al mínimo si no hay máximo).
func SuggestedOrderQty(current, minQty decimal.Decimal, maxQty *decimal.Decimal) decimal.Decimal {
	target := minQty
	if maxQty != nil && maxQty.GreaterThan(minQty) {
		target = *maxQty
	}
	q := target.Sub(current)
	if q.IsNegative() {
		return decimal.Zero
	}
	return q
}
