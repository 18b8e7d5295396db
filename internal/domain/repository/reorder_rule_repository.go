package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ReorderRuleRepository puerto de reglas de reposición.
type ReorderRuleRepository interface {
	Create(ctx context.Context, rule *entity.ReorderRule) error
	List(ctx context.Context, warehouseID string) ([]*entity.ReorderRule, error)

	// LowStock devuelve, en una sola consulta, las reglas cuyo saldo actual en la bodega es menor
	// a MinQty. El saldo es la suma de todas las cuentas del producto en esa bodega (nivel bodega
	// más cada ubicación), no la última cuenta tocada. Siempre se recalcula.
	LowStock(ctx context.Context) ([]entity.LowStockAlert, error)
}
