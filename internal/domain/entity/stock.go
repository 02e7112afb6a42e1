package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockEntry cantidad actual de un producto en un área (proyección materializada del log).
type StockEntry struct {
	ProductID string
	Area      Area
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}

// StockProjection valores crudos de reconstrucción para un par (producto, área):
// Base es la cantidad del último ajuste (0 si no hay) y Delta la suma firmada
// de ingresos/salidas posteriores. Aún sin piso en cero.
type StockProjection struct {
	ProductID string
	Area      Area
	Base      decimal.Decimal
	Delta     decimal.Decimal
}
