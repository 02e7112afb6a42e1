package repository

import (
	"context"

	"github.com/jhoicas/bodega-stock/internal/domain/entity"
)

// InventoryMovementRepository puerto del log de movimientos (solo inserción y lectura).
type InventoryMovementRepository interface {
	// Create agrega un movimiento y completa su ID.
	Create(ctx context.Context, movement *entity.Movement) error
	// ListByPair devuelve la historia completa de un par en orden (created_at, id).
	ListByPair(ctx context.Context, productID string, area entity.Area) ([]*entity.Movement, error)
	// ListByProduct devuelve los movimientos de un producto, más recientes primero.
	ListByProduct(ctx context.Context, productID string, limit int) ([]*entity.Movement, error)
	// ListRecent devuelve los últimos movimientos de todos los productos.
	ListRecent(ctx context.Context, limit int) ([]*entity.MovementDetail, error)
	// Projections calcula base y delta de reconstrucción para cada par con historia.
	Projections(ctx context.Context) ([]entity.StockProjection, error)
}
