package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-stock/internal/domain"
	"github.com/jhoicas/bodega-stock/internal/domain/entity"
	ledger "github.com/jhoicas/bodega-stock/internal/domain/inventory"
	"github.com/jhoicas/bodega-stock/internal/domain/repository"
	"github.com/jhoicas/bodega-stock/pkg/logger"
)

// RecordMovementUseCase registra un movimiento (ingreso, salida, ajuste) y actualiza la
// proyección de stock en la misma transacción, con bloqueo de fila (SELECT FOR UPDATE).
type RecordMovementUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	notifier    StockNotifier
	log         *logger.Logger
}

// NewRecordMovementUseCase construye el caso de uso. notifier puede ser nil.
func NewRecordMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	notifier StockNotifier,
	log *logger.Logger,
) *RecordMovementUseCase {
	return &RecordMovementUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		notifier:    notifier,
		log:         log.Named("inventory.movement"),
	}
}

// MovementInput entrada para registrar un movimiento.
type MovementInput struct {
	SKU      string
	Area     string
	Type     string
	Quantity decimal.Decimal
	Reason   string
	ActorID  string
}

// MovementResult resultado de un movimiento aceptado.
type MovementResult struct {
	ProductID string
	SKU       string
	Area      entity.Area
	Type      entity.MovementType
	Stock     decimal.Decimal // nueva cantidad del par (producto, área)
}

// RecordMovement valida la entrada, resuelve el producto por SKU y aplica el movimiento.
// Los ingresos directos a surtido se rechazan: el surtido solo crece por traslado desde bodega.
func (uc *RecordMovementUseCase) RecordMovement(ctx context.Context, in MovementInput) (*MovementResult, error) {
	area, err := entity.ParseArea(in.Area)
	if err != nil {
		return nil, err
	}
	typ, err := entity.ParseMovementType(in.Type)
	if err != nil {
		return nil, err
	}
	if err := ledger.ValidateQuantity(in.Quantity); err != nil {
		return nil, err
	}
	if typ == entity.MovementIngreso && area == entity.AreaSurtido {
		return nil, domain.ErrIngressToStagingForbidden
	}

	product, err := resolveProduct(ctx, uc.productRepo, in.SKU)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txID := uuid.New().String()
	var next decimal.Decimal
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		var err error
		next, err = applyMovement(ctx, movRepo, stockRepo, &entity.Movement{
			TransactionID: txID,
			ProductID:     product.ID,
			Area:          area,
			Type:          typ,
			Quantity:      in.Quantity,
			Reason:        in.Reason,
			ActorID:       in.ActorID,
			CreatedAt:     now,
		})
		return err
	})
	if err != nil {
		err = storageErr(err)
		if !domain.IsBusinessError(err) {
			uc.log.Error().Err(err).Str("sku", product.SKU).Str("area", area.String()).Msg("registrar movimiento")
		}
		return nil, err
	}

	uc.log.Info().
		Str("sku", product.SKU).
		Str("area", area.String()).
		Str("type", string(typ)).
		Str("quantity", in.Quantity.String()).
		Str("stock", next.String()).
		Str("actor", in.ActorID).
		Msg("movimiento registrado")

	notify(ctx, uc.notifier, uc.log, []StockChange{{
		ProductID:     product.ID,
		SKU:           product.SKU,
		Area:          area,
		Type:          string(typ),
		Quantity:      next,
		TransactionID: txID,
	}})

	return &MovementResult{
		ProductID: product.ID,
		SKU:       product.SKU,
		Area:      area,
		Type:      typ,
		Stock:     next,
	}, nil
}

// applyMovement bloquea la fila del par, calcula la nueva cantidad, agrega el movimiento
// al log y actualiza la proyección. Debe ejecutarse dentro de una transacción.
// No aplica la política de ingresos a surtido: la usan también traslados y migraciones.
func applyMovement(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	mov *entity.Movement,
) (decimal.Decimal, error) {
	stock, err := stockRepo.GetForUpdate(ctx, mov.ProductID, mov.Area)
	if err != nil {
		return decimal.Zero, err
	}
	next, err := ledger.Next(stock.Quantity, mov.Type, mov.Quantity)
	if err != nil {
		return decimal.Zero, err
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return decimal.Zero, err
	}
	stock.Quantity = next
	stock.UpdatedAt = mov.CreatedAt
	if err := stockRepo.Upsert(ctx, stock); err != nil {
		return decimal.Zero, err
	}
	return next, nil
}

// resolveProduct busca el producto por SKU. SKU vacío o inexistente → ErrProductNotFound.
func resolveProduct(ctx context.Context, repo repository.ProductRepository, sku string) (*entity.Product, error) {
	if sku == "" {
		return nil, domain.ErrProductNotFound
	}
	product, err := repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, storageErr(err)
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

// notify publica los cambios sin afectar el resultado de la operación ya confirmada.
func notify(ctx context.Context, n StockNotifier, log *logger.Logger, changes []StockChange) {
	if n == nil || len(changes) == 0 {
		return
	}
	if err := n.StockChanged(ctx, changes); err != nil {
		log.Warn().Err(err).Int("changes", len(changes)).Msg("notificar cambio de stock")
	}
}
