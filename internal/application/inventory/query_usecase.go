package inventory

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-stock/internal/domain"
	"github.com/jhoicas/bodega-stock/internal/domain/entity"
	"github.com/jhoicas/bodega-stock/internal/domain/repository"
)

const (
	stockListLimit       = 500
	summaryLowLimit      = 20
	summaryRecentLimit   = 20
	productActivityLimit = 200
)

// DefaultLowStockThreshold umbral de stock bajo si no se configura otro.
var DefaultLowStockThreshold = decimal.NewFromInt(5)

// QueryUseCase lecturas de inventario (no transaccionales).
type QueryUseCase struct {
	levelRepo    repository.InventoryLevelRepository
	movRepo      repository.InventoryMovementRepository
	productRepo  repository.ProductRepository
	lowThreshold decimal.Decimal
}

// NewQueryUseCase construye el caso de uso. lowThreshold <= 0 usa DefaultLowStockThreshold.
func NewQueryUseCase(
	levelRepo repository.InventoryLevelRepository,
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	lowThreshold decimal.Decimal,
) *QueryUseCase {
	if !lowThreshold.IsPositive() {
		lowThreshold = DefaultLowStockThreshold
	}
	return &QueryUseCase{
		levelRepo:    levelRepo,
		movRepo:      movRepo,
		productRepo:  productRepo,
		lowThreshold: lowThreshold,
	}
}

// ListStock lista el stock por producto y área. area vacía = ambas; q busca en SKU o nombre.
func (uc *QueryUseCase) ListStock(ctx context.Context, area, q string) ([]*entity.InventoryLevel, error) {
	f := repository.StockFilter{Query: strings.TrimSpace(q), Limit: stockListLimit}
	if strings.TrimSpace(area) != "" {
		a, err := entity.ParseArea(area)
		if err != nil {
			return nil, err
		}
		f.Area = a
	}
	list, err := uc.levelRepo.List(ctx, f)
	if err != nil {
		return nil, storageErr(err)
	}
	return list, nil
}

// Summary resumen del tablero de inventario.
type Summary struct {
	LowStock     []*entity.InventoryLevel
	Recent       []*entity.MovementDetail
	Totals       map[entity.Area]decimal.Decimal
	LowThreshold decimal.Decimal
}

// Summary devuelve stock bajo, últimos movimientos y totales por área.
func (uc *QueryUseCase) Summary(ctx context.Context) (*Summary, error) {
	low, err := uc.levelRepo.ListLow(ctx, uc.lowThreshold, summaryLowLimit)
	if err != nil {
		return nil, storageErr(err)
	}
	recent, err := uc.movRepo.ListRecent(ctx, summaryRecentLimit)
	if err != nil {
		return nil, storageErr(err)
	}
	totals, err := uc.levelRepo.TotalsByArea(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	for _, a := range entity.Areas {
		if _, ok := totals[a]; !ok {
			totals[a] = decimal.Zero
		}
	}
	return &Summary{LowStock: low, Recent: recent, Totals: totals, LowThreshold: uc.lowThreshold}, nil
}

// ProductActivity historia de movimientos de un producto, más recientes primero.
func (uc *QueryUseCase) ProductActivity(ctx context.Context, productID string) (*entity.Product, []*entity.Movement, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, nil, domain.ErrProductNotFound
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, nil, storageErr(err)
	}
	if product == nil {
		return nil, nil, domain.ErrProductNotFound
	}
	movs, err := uc.movRepo.ListByProduct(ctx, product.ID, productActivityLimit)
	if err != nil {
		return nil, nil, storageErr(err)
	}
	return product, movs, nil
}
