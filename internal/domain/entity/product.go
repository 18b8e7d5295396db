package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario (multi-bodega).
// El stock por bodega/ubicación vive en StockQuant.
type Product struct {
	ID           string
	SKU          string // único
	Name         string
	Description  string
	UnitMeasure  string
	DefaultPrice decimal.Decimal // valoración del stock en el dashboard
	CategoryID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
