package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuantKey identifica una cuenta de stock. LocationID nil = saldo a nivel de bodega.
type QuantKey struct {
	ProductID   string
	WarehouseID string
	LocationID  *string
}

// LocationOrEmpty devuelve el ID de ubicación o "" para el nivel bodega.
func (k QuantKey) LocationOrEmpty() string {
	if k.LocationID == nil {
		return ""
	}
	return *k.LocationID
}

// String produce una clave estable para mapas y logs.
func (k QuantKey) String() string {
	return k.ProductID + "|" + k.WarehouseID + "|" + k.LocationOrEmpty()
}

// StockQuant saldo on-hand de una cuenta. Nunca negativo; se crea al primer movimiento y no se borra.
type StockQuant struct {
	ID          string
	ProductID   string
	WarehouseID string
	LocationID  *string
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}

// Key devuelve la clave de la cuenta.
func (q *StockQuant) Key() QuantKey {
	return QuantKey{ProductID: q.ProductID, WarehouseID: q.WarehouseID, LocationID: q.LocationID}
}
