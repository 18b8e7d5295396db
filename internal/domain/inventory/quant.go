package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ApplyDelta calcula el nuevo saldo de una cuenta. Una cuenta inexistente tiene saldo cero,
// así que un delta negativo sobre ella también falla.
func ApplyDelta(key entity.QuantKey, current, delta decimal.Decimal) (decimal.Decimal, error) {
	next := current.Add(delta)
	if next.IsNegative() {
		return current, &domain.InsufficientStockError{
			ProductID:   key.ProductID,
			WarehouseID: key.WarehouseID,
			LocationID:  key.LocationID,
			Available:   current,
			Requested:   delta.Neg(),
		}
	}
	return next, nil
}

// QuantityScale decimales con que se persisten cantidades y precios (NUMERIC(18, 4)).
const QuantityScale = 4

// FitsScale indica si q cabe en QuantityScale decimales sin redondeo. "1.50000" cabe; "0.00004" no.
func FitsScale(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale))
}
