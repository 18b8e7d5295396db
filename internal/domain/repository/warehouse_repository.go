package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para bodegas y sus ubicaciones.
// Los Get devuelven (nil, nil) si no existe.
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error)

	CreateLocation(ctx context.Context, loc *entity.Location) error
	GetLocation(ctx context.Context, id string) (*entity.Location, error)
	ListLocations(ctx context.Context, warehouseID string) ([]*entity.Location, error)
}
