package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoveStatusDone es el único estado con el que se crean movimientos.
const MoveStatusDone = "done"

// StockMove registro inmutable de un cambio de stock, ligado al documento que lo originó.
// Quantity > 0 entra a To*; < 0 sale de From*. Una transferencia lleva ambos lados con cantidad positiva.
type StockMove struct {
	ID              string
	ProductID       string
	Quantity        decimal.Decimal
	UnitMeasure     string
	FromWarehouseID *string
	FromLocationID  *string
	ToWarehouseID   *string
	ToLocationID    *string
	Reason          string // "Receipt #<id>"
	Reference       string // "RECEIPT#<id>"
	DocumentType    DocumentKind
	DocumentID      string
	CreatedBy       *string
	Status          string
	CreatedAt       time.Time
}
