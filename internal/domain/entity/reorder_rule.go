package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReorderRule umbral de reposición de un producto en una bodega.
type ReorderRule struct {
	ID          string
	ProductID   string
	WarehouseID string
	MinQty      decimal.Decimal
	MaxQty      *decimal.Decimal
	CreatedAt   time.Time
}

// LowStockAlert regla cuyo saldo actual en bodega (suma de ubicaciones) está bajo MinQty.
type LowStockAlert struct {
	RuleID        string
	ProductID     string
	SKU           string
	ProductName   string
	WarehouseID   string
	WarehouseCode string
	CurrentQty    decimal.Decimal
	MinQty        decimal.Decimal
	MaxQty        *decimal.Decimal
}
