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

// DefaultTransferReason motivo usado cuando el traslado no trae uno.
const DefaultTransferReason = "transfer"

// TransferUseCase traslada stock de un área a otra: una salida en origen y un ingreso
// en destino dentro de la misma transacción. La suma de ambas áreas no cambia.
type TransferUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
	notifier    StockNotifier
	log         *logger.Logger
}

// NewTransferUseCase construye el caso de uso. stockRepo (pool) se usa solo para la
// verificación previa de stock; notifier puede ser nil.
func NewTransferUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	notifier StockNotifier,
	log *logger.Logger,
) *TransferUseCase {
	return &TransferUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		notifier:    notifier,
		log:         log.Named("inventory.transfer"),
	}
}

// TransferInput entrada de un traslado entre áreas.
type TransferInput struct {
	SKU      string
	FromArea string
	ToArea   string
	Quantity decimal.Decimal
	Reason   string
	ActorID  string
}

// TransferResult cantidades resultantes en ambas áreas.
type TransferResult struct {
	ProductID     string
	SKU           string
	TransactionID string
	From          entity.Area
	To            entity.Area
	FromStock     decimal.Decimal
	ToStock       decimal.Decimal
}

// Transfer valida y ejecuta el traslado.
func (uc *TransferUseCase) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if in.FromArea == in.ToArea {
		return nil, domain.ErrSameArea
	}
	from, err := entity.ParseArea(in.FromArea)
	if err != nil {
		return nil, err
	}
	to, err := entity.ParseArea(in.ToArea)
	if err != nil {
		return nil, err
	}
	if err := ledger.ValidateQuantity(in.Quantity); err != nil {
		return nil, err
	}

	product, err := resolveProduct(ctx, uc.productRepo, in.SKU)
	if err != nil {
		return nil, err
	}

	// Verificación previa para un error limpio; la escritura vuelve a verificar bajo bloqueo.
	current, err := uc.stockRepo.Get(ctx, product.ID, from)
	if err != nil {
		return nil, storageErr(err)
	}
	if current.Quantity.LessThan(in.Quantity) {
		return nil, domain.ErrInsufficientStock
	}

	reason := in.Reason
	if reason == "" {
		reason = DefaultTransferReason
	}
	now := time.Now().UTC()
	out := &TransferResult{
		ProductID:     product.ID,
		SKU:           product.SKU,
		TransactionID: uuid.New().String(),
		From:          from,
		To:            to,
	}

	err = uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		var err error
		out.FromStock, out.ToStock, err = transferInTx(ctx, movRepo, stockRepo, product.ID, from, to, in.Quantity, reason, in.ActorID, out.TransactionID, now)
		return err
	})
	if err != nil {
		err = storageErr(err)
		if !domain.IsBusinessError(err) {
			uc.log.Error().Err(err).Str("sku", product.SKU).Msg("traslado")
		}
		return nil, err
	}

	uc.log.Info().
		Str("sku", product.SKU).
		Str("from", from.String()).
		Str("to", to.String()).
		Str("quantity", in.Quantity.String()).
		Str("tx", out.TransactionID).
		Str("actor", in.ActorID).
		Msg("traslado registrado")

	notify(ctx, uc.notifier, uc.log, []StockChange{
		{ProductID: product.ID, SKU: product.SKU, Area: from, Type: string(entity.MovementSalida), Quantity: out.FromStock, TransactionID: out.TransactionID},
		{ProductID: product.ID, SKU: product.SKU, Area: to, Type: string(entity.MovementIngreso), Quantity: out.ToStock, TransactionID: out.TransactionID},
	})
	return out, nil
}

// transferInTx bloquea ambas filas en el orden fijo de entity.Areas (evita interbloqueos
// entre traslados opuestos) y aplica salida + ingreso con el mismo transaction id.
func transferInTx(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	productID string,
	from, to entity.Area,
	qty decimal.Decimal,
	reason, actorID, txID string,
	now time.Time,
) (fromStock, toStock decimal.Decimal, err error) {
	locked := make(map[entity.Area]*entity.StockEntry, 2)
	for _, a := range entity.Areas {
		if a != from && a != to {
			continue
		}
		s, err := stockRepo.GetForUpdate(ctx, productID, a)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		locked[a] = s
	}
	if locked[from].Quantity.LessThan(qty) {
		return decimal.Zero, decimal.Zero, domain.ErrInsufficientStock
	}

	fromStock, err = applyMovement(ctx, movRepo, stockRepo, &entity.Movement{
		TransactionID: txID,
		ProductID:     productID,
		Area:          from,
		Type:          entity.MovementSalida,
		Quantity:      qty,
		Reason:        reason,
		ActorID:       actorID,
		CreatedAt:     now,
	})
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	toStock, err = applyMovement(ctx, movRepo, stockRepo, &entity.Movement{
		TransactionID: txID,
		ProductID:     productID,
		Area:          to,
		Type:          entity.MovementIngreso,
		Quantity:      qty,
		Reason:        reason,
		ActorID:       actorID,
		CreatedAt:     now,
	})
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return fromStock, toStock, nil
}
