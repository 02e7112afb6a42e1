package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-stock/internal/domain/entity"
)

// StockFilter filtros del listado de stock. Area vacía = todas.
type StockFilter struct {
	Area  entity.Area
	Query string // búsqueda por SKU o nombre
	Limit int
}

// InventoryLevelRepository puerto de lecturas de stock unidas al catálogo (listados, reportes).
type InventoryLevelRepository interface {
	List(ctx context.Context, f StockFilter) ([]*entity.InventoryLevel, error)
	// ListLow devuelve las filas con cantidad <= threshold, menor cantidad primero.
	ListLow(ctx context.Context, threshold decimal.Decimal, limit int) ([]*entity.InventoryLevel, error)
	TotalsByArea(ctx context.Context) (map[entity.Area]decimal.Decimal, error)
}
