package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
// InitialStock, si viene, se registra como un ajuste aplicado sobre la bodega indicada.
type CreateProductRequest struct {
	SKU          string               `json:"sku" validate:"required,min=1,max=100"`
	Name         string               `json:"name" validate:"required,min=1,max=200"`
	Description  string               `json:"description"`
	UnitMeasure  string               `json:"unit_measure" validate:"omitempty,max=20"`
	DefaultPrice decimal.Decimal      `json:"default_price"`
	CategoryID   *string              `json:"category_id" validate:"omitempty,uuid"`
	InitialStock *InitialStockRequest `json:"initial_stock" validate:"omitempty"`
}

// InitialStockRequest existencia de apertura de un producto nuevo.
type InitialStockRequest struct {
	WarehouseID string          `json:"warehouse_id" validate:"required,uuid"`
	LocationID  *string         `json:"location_id" validate:"omitempty,uuid"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// ProductFilterRequest filtros de GET /api/products.
type ProductFilterRequest struct {
	PageRequest
	Query      string `query:"q"`
	SKU        string `query:"sku"`
	CategoryID string `query:"category_id"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	UnitMeasure  string          `json:"unit_measure"`
	DefaultPrice decimal.Decimal `json:"default_price"`
	CategoryID   *string         `json:"category_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
