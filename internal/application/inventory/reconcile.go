package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-stock/internal/domain/entity"
	ledger "github.com/jhoicas/bodega-stock/internal/domain/inventory"
	"github.com/jhoicas/bodega-stock/internal/domain/repository"
	"github.com/jhoicas/bodega-stock/pkg/logger"
)

// ReconcileUseCase recalcula la proyección de stock a partir del log de movimientos.
type ReconcileUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.InventoryMovementRepository
	stockRepo   repository.StockRepository
	log         *logger.Logger
}

// NewReconcileUseCase construye el caso de uso. movRepo y stockRepo (pool) se usan
// solo en VerifyPair, que no escribe.
func NewReconcileUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	log *logger.Logger,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		movRepo:     movRepo,
		stockRepo:   stockRepo,
		log:         log.Named("inventory.reconcile"),
	}
}

// StockDrift diferencia entre la proyección guardada y la recalculada para un par.
type StockDrift struct {
	ProductID string
	Area      entity.Area
	Stored    decimal.Decimal
	Computed  decimal.Decimal
}

// ReconcileResult resumen de una reconstrucción o de un informe de desvíos.
type ReconcileResult struct {
	Pairs   int          // pares con al menos un movimiento
	Changed []StockDrift // pares cuya cantidad guardada difería de la recalculada
	DryRun  bool
}

// Rebuild recalcula y sobrescribe el stock de cada par con historia:
// base = último ajuste (0 si no hay), más ingresos y menos salidas posteriores,
// con piso en cero. Todo en una transacción con la tabla bloqueada. Idempotente.
// Los pares sin movimientos no se tocan.
func (uc *ReconcileUseCase) Rebuild(ctx context.Context) (*ReconcileResult, error) {
	return uc.run(ctx, true)
}

// Drift ejecuta la reconstrucción en modo lectura y devuelve los pares desviados.
func (uc *ReconcileUseCase) Drift(ctx context.Context) (*ReconcileResult, error) {
	return uc.run(ctx, false)
}

func (uc *ReconcileUseCase) run(ctx context.Context, write bool) (*ReconcileResult, error) {
	start := time.Now()
	var res *ReconcileResult
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		var err error
		res, err = rebuild(ctx, movRepo, stockRepo, write, time.Now().UTC())
		return err
	})
	if err != nil {
		err = storageErr(err)
		uc.log.Error().Err(err).Bool("dry_run", !write).Msg("reconstruir stock")
		return nil, err
	}

	ev := uc.log.Info()
	if len(res.Changed) > 0 {
		ev = uc.log.Warn()
	}
	ev.Int("pairs", res.Pairs).
		Int("changed", len(res.Changed)).
		Bool("dry_run", res.DryRun).
		Dur("elapsed", time.Since(start)).
		Msg("reconstrucción de stock")
	if uc.log.DebugEnabled() {
		for _, d := range res.Changed {
			uc.log.Debug().
				Str("product_id", d.ProductID).
				Str("area", d.Area.String()).
				Str("stored", d.Stored.String()).
				Str("computed", d.Computed.String()).
				Bool("dry_run", res.DryRun).
				Msg("desvío")
		}
	}
	return res, nil
}

// rebuild es el núcleo de la reconstrucción. Con write=false no bloquea ni escribe.
func rebuild(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	write bool,
	now time.Time,
) (*ReconcileResult, error) {
	if write {
		if err := stockRepo.LockTable(ctx); err != nil {
			return nil, err
		}
	}
	projections, err := movRepo.Projections(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := stockRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	stored := make(map[pairKey]decimal.Decimal, len(entries))
	for _, e := range entries {
		stored[pairKey{e.ProductID, e.Area}] = e.Quantity
	}

	res := &ReconcileResult{Pairs: len(projections), DryRun: !write}
	for _, p := range projections {
		computed := ledger.Project(p)
		// una fila ausente cuenta como cero
		if prev := stored[pairKey{p.ProductID, p.Area}]; !prev.Equal(computed) {
			res.Changed = append(res.Changed, StockDrift{
				ProductID: p.ProductID,
				Area:      p.Area,
				Stored:    prev,
				Computed:  computed,
			})
		}
		if !write {
			continue
		}
		if err := stockRepo.Upsert(ctx, &entity.StockEntry{
			ProductID: p.ProductID,
			Area:      p.Area,
			Quantity:  computed,
			UpdatedAt: now,
		}); err != nil {
			return nil, err
		}
	}
	return res, nil
}

type pairKey struct {
	productID string
	area      entity.Area
}

// PairVerification compara, para un par, la réplica completa del log con el atajo
// de reconstrucción y con la cantidad guardada.
type PairVerification struct {
	ProductID  string
	SKU        string
	Area       entity.Area
	Movements  int
	Stored     decimal.Decimal
	Replayed   decimal.Decimal
	Projected  decimal.Decimal
	Consistent bool
}

// VerifyPair reproduce la historia completa de (sku, area). No escribe.
func (uc *ReconcileUseCase) VerifyPair(ctx context.Context, sku, area string) (*PairVerification, error) {
	a, err := entity.ParseArea(area)
	if err != nil {
		return nil, err
	}
	product, err := resolveProduct(ctx, uc.productRepo, sku)
	if err != nil {
		return nil, err
	}
	movs, err := uc.movRepo.ListByPair(ctx, product.ID, a)
	if err != nil {
		return nil, storageErr(err)
	}
	stock, err := uc.stockRepo.Get(ctx, product.ID, a)
	if err != nil {
		return nil, storageErr(err)
	}

	v := &PairVerification{
		ProductID: product.ID,
		SKU:       product.SKU,
		Area:      a,
		Movements: len(movs),
		Stored:    stock.Quantity,
		Replayed:  ledger.Replay(movs),
	}
	if len(movs) == 0 {
		// sin historia la reconstrucción no toca el par
		v.Replayed = stock.Quantity
		v.Projected = stock.Quantity
	} else {
		v.Projected = ledger.Project(ledger.Baseline(movs))
	}
	v.Consistent = v.Replayed.Equal(v.Projected) && v.Projected.Equal(v.Stored)
	if !v.Consistent {
		uc.log.Warn().
			Str("sku", v.SKU).
			Str("area", a.String()).
			Str("stored", v.Stored.String()).
			Str("replayed", v.Replayed.String()).
			Str("projected", v.Projected.String()).
			Msg("par inconsistente")
	}
	return v, nil
}

// IsDriftFree indica si una reconstrucción no encontró diferencias.
func (r *ReconcileResult) IsDriftFree() bool { return r != nil && len(r.Changed) == 0 }
