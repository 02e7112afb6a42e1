package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-stock/internal/domain/entity"
	"github.com/jhoicas/bodega-stock/internal/domain/repository"
	"github.com/jhoicas/bodega-stock/pkg/logger"
)

// MigrationReason motivo de los movimientos sintéticos de la migración de área.
const MigrationReason = "migracion surtido->bodega"

// AreaMigrationUseCase consolida todo el surtido en bodega.
type AreaMigrationUseCase struct {
	txRunner TxRunner
	notifier StockNotifier
	log      *logger.Logger
}

// NewAreaMigrationUseCase construye el caso de uso. notifier puede ser nil.
func NewAreaMigrationUseCase(txRunner TxRunner, notifier StockNotifier, log *logger.Logger) *AreaMigrationUseCase {
	return &AreaMigrationUseCase{
		txRunner: txRunner,
		notifier: notifier,
		log:      log.Named("inventory.migration"),
	}
}

// AreaMigrationResult resumen de MoveAllToBodega.
type AreaMigrationResult struct {
	Products    int             // productos con surtido distinto de cero
	Quantity    decimal.Decimal // total trasladado
	DeletedRows int64           // filas de surtido borradas
}

// MoveAllToBodega suma el stock de surtido de cada producto a bodega y borra las filas
// de surtido, en una sola transacción con la tabla bloqueada. Por cada producto deja en
// el log un par salida/ingreso con el mismo transaction id, así la reconstrucción
// reproduce el resultado.
func (uc *AreaMigrationUseCase) MoveAllToBodega(ctx context.Context, actorID string) (*AreaMigrationResult, error) {
	now := time.Now().UTC()
	res := &AreaMigrationResult{Quantity: decimal.Zero}
	var changes []StockChange

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		if err := stockRepo.LockTable(ctx); err != nil {
			return err
		}
		entries, err := stockRepo.ListByArea(ctx, entity.AreaSurtido)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.Quantity.IsZero() {
				continue
			}
			txID := uuid.New().String()
			_, bodega, err := transferInTx(ctx, movRepo, stockRepo, e.ProductID,
				entity.AreaSurtido, entity.AreaBodega, e.Quantity, MigrationReason, actorID, txID, now)
			if err != nil {
				return err
			}
			res.Products++
			res.Quantity = res.Quantity.Add(e.Quantity)
			changes = append(changes, StockChange{
				ProductID:     e.ProductID,
				Area:          entity.AreaBodega,
				Type:          string(entity.MovementIngreso),
				Quantity:      bodega,
				TransactionID: txID,
			})
		}
		res.DeletedRows, err = stockRepo.DeleteArea(ctx, entity.AreaSurtido)
		return err
	})
	if err != nil {
		err = storageErr(err)
		uc.log.Error().Err(err).Str("actor", actorID).Msg("migrar surtido a bodega")
		return nil, err
	}

	uc.log.Info().
		Int("products", res.Products).
		Str("quantity", res.Quantity.String()).
		Int64("deleted_rows", res.DeletedRows).
		Str("actor", actorID).
		Msg("surtido consolidado en bodega")

	notify(ctx, uc.notifier, uc.log, changes)
	return res, nil
}
