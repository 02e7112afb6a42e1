package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-stock/internal/domain/entity"
	"github.com/jhoicas/bodega-stock/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: si fn devuelve error se hace Rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// StockChange notificación de un cambio confirmado en la proyección.
type StockChange struct {
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku"`
	Area          entity.Area     `json:"area"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	TransactionID string          `json:"transaction_id,omitempty"`
}

// StockNotifier publica cambios de stock después del Commit. Puede ser nil.
type StockNotifier interface {
	StockChanged(ctx context.Context, changes []StockChange) error
}

// StockReportGenerator genera la representación PDF del reporte de existencias.
type StockReportGenerator interface {
	GenerateStockReport(ctx context.Context, report StockReport) ([]byte, error)
}
