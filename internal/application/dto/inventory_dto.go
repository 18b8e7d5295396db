package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuantFilterRequest filtros de GET /api/quants y /api/quants/totals.
type QuantFilterRequest struct {
	ProductID   string `query:"product_id"`
	WarehouseID string `query:"warehouse_id"`
	LocationID  string `query:"location_id"`
	GroupBy     string `query:"group_by" validate:"omitempty,oneof=product warehouse"`
}

// QuantResponse saldo de una cuenta (producto, bodega, ubicación).
type QuantResponse struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	LocationID  *string         `json:"location_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// QuantTotalResponse saldo agregado por producto o por bodega.
type QuantTotalResponse struct {
	GroupBy  string          `json:"group_by"`
	ID       string          `json:"id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// MoveHistoryRequest filtros de GET /api/moves. Las fechas van en RFC3339.
type MoveHistoryRequest struct {
	ProductID    string `query:"product_id"`
	WarehouseID  string `query:"warehouse_id"`
	LocationID   string `query:"location_id"`
	DocumentType string `query:"document_type" validate:"omitempty,oneof=receipt delivery transfer adjustment"`
	Status       string `query:"status" validate:"omitempty,oneof=done"`
	CategoryID   string `query:"category_id"`
	From         string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To           string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Sort         string `query:"sort" validate:"omitempty,oneof=asc desc"`
	Limit        int    `query:"limit" validate:"min=0,max=1000"`
	Page         int    `query:"page" validate:"min=0"`
}

// MoveResponse un movimiento del historial.
type MoveResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitMeasure     string          `json:"unit_measure,omitempty"`
	FromWarehouseID *string         `json:"from_warehouse_id,omitempty"`
	FromLocationID  *string         `json:"from_location_id,omitempty"`
	ToWarehouseID   *string         `json:"to_warehouse_id,omitempty"`
	ToLocationID    *string         `json:"to_location_id,omitempty"`
	Reason          string          `json:"reason"`
	Reference       string          `json:"reference"`
	DocumentType    string          `json:"document_type"`
	DocumentID      string          `json:"document_id"`
	CreatedBy       *string         `json:"created_by,omitempty"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// MoveHistoryMeta metadatos de paginación del historial.
type MoveHistoryMeta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// MoveHistoryResponse respuesta de GET /api/moves.
type MoveHistoryResponse struct {
	Data []MoveResponse   `json:"data"`
	Meta MoveHistoryMeta `json:"meta"`
}

// CreateReorderRuleRequest entrada para crear una regla de reposición.
type CreateReorderRuleRequest struct {
	ProductID   string           `json:"product_id" validate:"required,uuid"`
	WarehouseID string           `json:"warehouse_id" validate:"required,uuid"`
	MinQty      decimal.Decimal  `json:"min_qty"`
	MaxQty      *decimal.Decimal `json:"max_qty"`
}

// ReorderRuleResponse salida de una regla de reposición.
type ReorderRuleResponse struct {
	ID          string           `json:"id"`
	ProductID   string           `json:"product_id"`
	WarehouseID string           `json:"warehouse_id"`
	MinQty      decimal.Decimal  `json:"min_qty"`
	MaxQty      *decimal.Decimal `json:"max_qty,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// LowStockAlertDTO producto bajo su mínimo en una bodega, con la cantidad sugerida a pedir.
type LowStockAlertDTO struct {
	RuleID            string           `json:"rule_id"`
	ProductID         string           `json:"product_id"`
	SKU               string           `json:"sku"`
	ProductName       string           `json:"product_name"`
	WarehouseID       string           `json:"warehouse_id"`
	WarehouseCode     string           `json:"warehouse_code"`
	CurrentQty        decimal.Decimal  `json:"current_qty"`
	MinQty            decimal.Decimal  `json:"min_qty"`
	MaxQty            *decimal.Decimal `json:"max_qty,omitempty"`
	SuggestedOrderQty decimal.Decimal  `json:"suggested_order_qty"` // hasta MaxQty, o hasta MinQty sin máximo
}

// DashboardDTO respuesta de GET /api/dashboard.
type DashboardDTO struct {
	TotalProductsInStock int             `json:"total_products_in_stock"`
	TotalStockValue      decimal.Decimal `json:"total_stock_value"` // Σ cantidad × precio por defecto
	LowStockCount        int             `json:"low_stock_count"`
	PendingReceipts      int             `json:"pending_receipts"`
	PendingDeliveries    int             `json:"pending_deliveries"`
	PendingTransfers     int             `json:"pending_transfers"`
	PendingAdjustments   int             `json:"pending_adjustments"`
}
