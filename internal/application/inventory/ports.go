package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Quants    repository.QuantRepository
	Moves     repository.MoveRepository
	Documents repository.DocumentRepository
}

// TxRunner ejecuta fn dentro de una transacción. Commit si fn devuelve nil; Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}

// SlipGenerator genera el comprobante imprimible (PDF) de un documento.
type SlipGenerator interface {
	GenerateSlip(ctx context.Context, slip DocumentSlip) ([]byte, error)
}

// DocumentSlip datos ya resueltos para imprimir un documento.
type DocumentSlip struct {
	Header    entity.DocumentHeader
	Source    string // "WH01" o "WH01 / A-1-3"
	Target    string
	Partner   string
	Lines     []SlipLine
	CreatedBy string // usuario que registró el documento
}

// SlipLine línea imprimible.
type SlipLine struct {
	SKU         string
	ProductName string
	Quantity    decimal.Decimal
	UnitMeasure string
	From        string
	To          string
}
