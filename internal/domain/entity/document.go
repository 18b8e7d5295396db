package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind tipo de documento de stock.
type DocumentKind string

const (
	KindReceipt    DocumentKind = "receipt"
	KindDelivery   DocumentKind = "delivery"
	KindTransfer   DocumentKind = "transfer"
	KindAdjustment DocumentKind = "adjustment"
)

// Kinds lista los tipos en orden estable (dashboard, validación de filtros).
var Kinds = []DocumentKind{KindReceipt, KindDelivery, KindTransfer, KindAdjustment}

// Valid indica si k es un tipo conocido.
func (k DocumentKind) Valid() bool {
	switch k {
	case KindReceipt, KindDelivery, KindTransfer, KindAdjustment:
		return true
	}
	return false
}

// Label nombre legible: "Receipt", "Delivery"...
func (k DocumentKind) Label() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// MoveReason texto del movimiento, p. ej. "Receipt #42".
func (k DocumentKind) MoveReason(documentID string) string {
	return k.Label() + " #" + documentID
}

// MoveReference referencia compacta, p. ej. "RECEIPT#42".
func (k DocumentKind) MoveReference(documentID string) string {
	return strings.ToUpper(string(k)) + "#" + documentID
}

// DocumentStatus estado del documento.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusWaiting   DocumentStatus = "waiting"
	StatusReady     DocumentStatus = "ready"
	StatusDone      DocumentStatus = "done"
	StatusCancelled DocumentStatus = "cancelled"
)

// Valid indica si s es un estado conocido.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusWaiting, StatusReady, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// Pending: draft, waiting o ready.
func (s DocumentStatus) Pending() bool {
	return s == StatusDraft || s == StatusWaiting || s == StatusReady
}

// Terminal: done o cancelled.
func (s DocumentStatus) Terminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// DocumentHeader campos comunes a todos los documentos.
type DocumentHeader struct {
	ID        string
	Kind      DocumentKind
	Number    string
	Reference string
	Status    DocumentStatus
	CreatedBy *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Document cualquier documento de stock con cabecera.
type Document interface {
	Head() *DocumentHeader
}

func (h *DocumentHeader) Head() *DocumentHeader { return h }

// Receipt entrada de mercancía a una bodega.
type Receipt struct {
	DocumentHeader
	WarehouseID string
	Partner     string // proveedor
	Lines       []ReceiptLine
}

type ReceiptLine struct {
	ProductID   string
	Quantity    decimal.Decimal // > 0
	UnitMeasure string
	UnitPrice   *decimal.Decimal
	WarehouseID string // por defecto la de la cabecera
	LocationID  *string
}

// Delivery salida de mercancía de una bodega.
type Delivery struct {
	DocumentHeader
	WarehouseID string
	Partner     string // cliente
	Lines       []DeliveryLine
}

type DeliveryLine struct {
	ProductID   string
	Quantity    decimal.Decimal // > 0; se descuenta
	UnitMeasure string
	UnitPrice   *decimal.Decimal
	WarehouseID string
	LocationID  *string
}

// Transfer traslado entre bodegas (o entre ubicaciones de la misma).
type Transfer struct {
	DocumentHeader
	FromWarehouseID string
	ToWarehouseID   string
	Lines           []TransferLine
}

type TransferLine struct {
	ProductID      string
	Quantity       decimal.Decimal // > 0
	UnitMeasure    string
	FromLocationID *string
	ToLocationID   *string
}

// Adjustment corrección de inventario con cantidad con signo.
type Adjustment struct {
	DocumentHeader
	WarehouseID string
	Reason      string
	Lines       []AdjustmentLine
}

type AdjustmentLine struct {
	ProductID   string
	Quantity    decimal.Decimal // != 0, con signo
	UnitMeasure string
	Note        string
	WarehouseID string
	LocationID  *string
}
