package repository

import (
	"context"

	"github.com/jhoicas/bodega-stock/internal/domain/entity"
)

// ProductRepository puerto de lectura del catálogo que consume el inventario.
// Ambos métodos devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
}
