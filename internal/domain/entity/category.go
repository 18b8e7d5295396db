package entity

import "time"

// Category representa una categoría de productos (jerárquica opcional).
type Category struct {
	ID        string
	ParentID  *string // nil si es raíz
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
