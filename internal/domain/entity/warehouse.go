package entity

import "time"

// Warehouse representa una bodega identificada por un código único.
type Warehouse struct {
	ID        string
	Code      string
	Name      string
	Address   string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location es una subdivisión opcional de una bodega (estante, zona, muelle).
// Code es único dentro de la bodega.
type Location struct {
	ID          string
	WarehouseID string
	Code        string
	Name        string
	CreatedAt   time.Time
}
