package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateReceiptRequest body de POST /api/receipts.
type CreateReceiptRequest struct {
	WarehouseID string             `json:"warehouse_id" validate:"required,uuid"`
	Partner     string             `json:"partner" validate:"max=200"`
	Reference   string             `json:"reference" validate:"max=100"`
	Lines       []StockLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreateDeliveryRequest body de POST /api/deliveries.
type CreateDeliveryRequest struct {
	WarehouseID string             `json:"warehouse_id" validate:"required,uuid"`
	Partner     string             `json:"partner" validate:"max=200"`
	Reference   string             `json:"reference" validate:"max=100"`
	Lines       []StockLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// StockLineRequest línea de recepción o entrega. WarehouseID vacío toma la bodega de la cabecera.
type StockLineRequest struct {
	ProductID   string           `json:"product_id" validate:"required,uuid"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitMeasure string           `json:"unit_measure" validate:"max=20"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	WarehouseID string           `json:"warehouse_id" validate:"omitempty,uuid"`
	LocationID  *string          `json:"location_id" validate:"omitempty,uuid"`
}

// CreateTransferRequest body de POST /api/transfers.
type CreateTransferRequest struct {
	FromWarehouseID string                `json:"from_warehouse_id" validate:"required,uuid"`
	ToWarehouseID   string                `json:"to_warehouse_id" validate:"required,uuid"`
	Reference       string                `json:"reference" validate:"max=100"`
	Lines           []TransferLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// TransferLineRequest línea de traslado.
type TransferLineRequest struct {
	ProductID      string          `json:"product_id" validate:"required,uuid"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitMeasure    string          `json:"unit_measure" validate:"max=20"`
	FromLocationID *string         `json:"from_location_id" validate:"omitempty,uuid"`
	ToLocationID   *string         `json:"to_location_id" validate:"omitempty,uuid"`
}

// CreateAdjustmentRequest body de POST /api/adjustments.
type CreateAdjustmentRequest struct {
	WarehouseID string                  `json:"warehouse_id" validate:"required,uuid"`
	Reason      string                  `json:"reason" validate:"max=200"`
	Reference   string                  `json:"reference" validate:"max=100"`
	Lines       []AdjustmentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// AdjustmentLineRequest línea de ajuste; la cantidad lleva signo.
type AdjustmentLineRequest struct {
	ProductID   string          `json:"product_id" validate:"required,uuid"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitMeasure string          `json:"unit_measure" validate:"max=20"`
	Note        string          `json:"note" validate:"max=200"`
	WarehouseID string          `json:"warehouse_id" validate:"omitempty,uuid"`
	LocationID  *string         `json:"location_id" validate:"omitempty,uuid"`
}

// DocumentListRequest filtros de GET /api/{kind}.
type DocumentListRequest struct {
	PageRequest
	Status string `query:"status" validate:"omitempty,oneof=draft waiting ready done cancelled"`
}

// DocumentResponse salida común de los cuatro tipos de documento; los campos que no
// aplican al tipo se omiten.
type DocumentResponse struct {
	ID              string                 `json:"id"`
	Kind            string                 `json:"kind"`
	Number          string                 `json:"number"`
	Reference       string                 `json:"reference,omitempty"`
	Status          string                 `json:"status"`
	WarehouseID     string                 `json:"warehouse_id,omitempty"`
	FromWarehouseID string                 `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string                 `json:"to_warehouse_id,omitempty"`
	Partner         string                 `json:"partner,omitempty"`
	Reason          string                 `json:"reason,omitempty"`
	Lines           []DocumentLineResponse `json:"lines,omitempty"`
	CreatedBy       *string                `json:"created_by,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// DocumentLineResponse línea de cualquier documento.
type DocumentLineResponse struct {
	ProductID      string           `json:"product_id"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitMeasure    string           `json:"unit_measure,omitempty"`
	UnitPrice      *decimal.Decimal `json:"unit_price,omitempty"`
	WarehouseID    string           `json:"warehouse_id,omitempty"`
	LocationID     *string          `json:"location_id,omitempty"`
	FromLocationID *string          `json:"from_location_id,omitempty"`
	ToLocationID   *string          `json:"to_location_id,omitempty"`
	Note           string           `json:"note,omitempty"`
}

// DocumentListResponse cabeceras paginadas de un tipo de documento.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
