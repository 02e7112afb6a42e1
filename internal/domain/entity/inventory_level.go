package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryLevel fila de stock unida al producto para listados y reportes.
type InventoryLevel struct {
	ProductID   string
	SKU         string
	ProductName string
	Area        Area
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}
