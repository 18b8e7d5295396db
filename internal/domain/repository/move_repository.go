package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Límites de paginación del historial de movimientos.
const (
	DefaultMoveLimit = 100
	MaxMoveLimit     = 1000
)

// MoveFilter filtros del historial. Warehouse y Location coinciden con el lado origen o destino.
type MoveFilter struct {
	ProductID    string
	WarehouseID  string
	LocationID   string
	DocumentType entity.DocumentKind
	Status       string
	CategoryID   string
	From         *time.Time
	To           *time.Time
	Ascending    bool
	Limit        int // 1..MaxMoveLimit
	Page         int // >= 1
}

// Normalize aplica valores por defecto y recorta límites.
func (f *MoveFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultMoveLimit
	}
	if f.Limit > MaxMoveLimit {
		f.Limit = MaxMoveLimit
	}
	if f.Page < 1 {
		f.Page = 1
	}
}

// Offset desplazamiento derivado de Page y Limit.
func (f MoveFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// MoveRepository puerto del Movement Log. No existe camino de actualización ni borrado.
type MoveRepository interface {
	Create(ctx context.Context, move *entity.StockMove) error
	ListByDocument(ctx context.Context, kind entity.DocumentKind, documentID string) ([]*entity.StockMove, error)
	History(ctx context.Context, f MoveFilter) ([]*entity.StockMove, int, error)
}
