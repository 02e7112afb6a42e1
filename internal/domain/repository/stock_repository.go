package repository

import (
	"context"

	"github.com/jhoicas/bodega-stock/internal/domain/entity"
)

// StockRepository puerto de la proyección de stock por (producto, área).
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve la entrada o una en cero si no existe.
	Get(ctx context.Context, productID string, area entity.Area) (*entity.StockEntry, error)
	// GetForUpdate crea la fila en cero si falta y la bloquea (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, productID string, area entity.Area) (*entity.StockEntry, error)
	Upsert(ctx context.Context, stock *entity.StockEntry) error
	// LockTable bloquea la proyección completa contra movimientos concurrentes.
	LockTable(ctx context.Context) error
	ListAll(ctx context.Context) ([]*entity.StockEntry, error)
	// ListByArea devuelve las entradas con cantidad distinta de cero en un área.
	ListByArea(ctx context.Context, area entity.Area) ([]*entity.StockEntry, error)
	DeleteArea(ctx context.Context, area entity.Area) (int64, error)
}
