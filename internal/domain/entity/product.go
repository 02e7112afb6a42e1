package entity

import "time"

// Product producto del catálogo. El núcleo de inventario solo necesita existencia e identidad.
type Product struct {
	ID        string
	SKU       string // único
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
