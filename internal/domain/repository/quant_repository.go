package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// QuantFilter filtros de consulta de saldos. Vacío = sin filtro.
type QuantFilter struct {
	ProductID   string
	WarehouseID string
	LocationID  string
}

// QuantGroupBy agrupación de totales.
type QuantGroupBy string

const (
	GroupByProduct   QuantGroupBy = "product"
	GroupByWarehouse QuantGroupBy = "warehouse"
)

// QuantTotal saldo agregado por producto o por bodega.
type QuantTotal struct {
	GroupID  string
	Quantity decimal.Decimal
}

// QuantRepository puerto del Quantity Store. Usado dentro de transacciones para las escrituras.
type QuantRepository interface {
	// GetForUpdate bloquea la cuenta (SELECT ... FOR UPDATE). (nil, nil) si aún no existe.
	GetForUpdate(ctx context.Context, key entity.QuantKey) (*entity.StockQuant, error)
	// Create inserta una cuenta nueva con cantidad >= 0. Si otra transacción la creó
	// en paralelo, suma la cantidad sobre la fila existente y devuelve la fila resultante.
	Create(ctx context.Context, quant *entity.StockQuant) (*entity.StockQuant, error)
	// Update persiste la nueva cantidad de una cuenta ya bloqueada.
	Update(ctx context.Context, quant *entity.StockQuant) error

	Get(ctx context.Context, key entity.QuantKey) (*entity.StockQuant, error)
	List(ctx context.Context, f QuantFilter) ([]*entity.StockQuant, error)
	Totals(ctx context.Context, groupBy QuantGroupBy, f QuantFilter) ([]QuantTotal, error)

	// CountProductsInStock productos distintos con alguna cuenta > 0.
	CountProductsInStock(ctx context.Context) (int, error)
	// StockValue Σ cantidad × precio por defecto del producto.
	StockValue(ctx context.Context) (decimal.Decimal, error)
}
