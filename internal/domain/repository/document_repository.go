package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// DocumentFilter filtros del listado de documentos de un tipo.
type DocumentFilter struct {
	Status entity.DocumentStatus
	Limit  int
	Offset int
}

// DocumentRepository puerto del Document Store. Cabecera y líneas se crean juntas.
// Los Get devuelven domain.ErrNotFound si el documento no existe.
type DocumentRepository interface {
	CreateReceipt(ctx context.Context, doc *entity.Receipt) error
	CreateDelivery(ctx context.Context, doc *entity.Delivery) error
	CreateTransfer(ctx context.Context, doc *entity.Transfer) error
	CreateAdjustment(ctx context.Context, doc *entity.Adjustment) error

	GetReceipt(ctx context.Context, id string) (*entity.Receipt, error)
	GetDelivery(ctx context.Context, id string) (*entity.Delivery, error)
	GetTransfer(ctx context.Context, id string) (*entity.Transfer, error)
	GetAdjustment(ctx context.Context, id string) (*entity.Adjustment, error)

	// LockStatus relee el estado del documento bloqueando su fila hasta el fin de la transacción.
	LockStatus(ctx context.Context, kind entity.DocumentKind, id string) (entity.DocumentStatus, error)
	SetStatus(ctx context.Context, kind entity.DocumentKind, id string, status entity.DocumentStatus) error

	List(ctx context.Context, kind entity.DocumentKind, f DocumentFilter) ([]entity.DocumentHeader, error)
	// CountPending cuenta documentos en draft, waiting o ready por tipo.
	CountPending(ctx context.Context) (map[entity.DocumentKind]int, error)
}
