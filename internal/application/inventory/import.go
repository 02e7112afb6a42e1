package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-stock/internal/domain/entity"
	ledger "github.com/jhoicas/bodega-stock/internal/domain/inventory"
	"github.com/jhoicas/bodega-stock/internal/domain/repository"
	"github.com/jhoicas/bodega-stock/pkg/logger"
)

// ImportReason motivo de los ajustes generados a partir de filas de stock importadas.
const ImportReason = "import"

// ImportStockRow nivel de stock a fijar para un par.
type ImportStockRow struct {
	SKU      string          `json:"sku"`
	Area     string          `json:"area"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ImportMovementRow movimiento histórico. CreatedAt nil = ahora.
type ImportMovementRow struct {
	SKU       string          `json:"sku"`
	Area      string          `json:"area"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason"`
	CreatedAt *time.Time      `json:"created_at"`
}

// ImportInput carga inicial de datos.
type ImportInput struct {
	Stock     []ImportStockRow    `json:"inventory_stock"`
	Movements []ImportMovementRow `json:"inventory_movements"`
	ActorID   string              `json:"-"`
}

// ImportSkip fila descartada y el motivo.
type ImportSkip struct {
	Kind   string // "stock" o "movement"
	Index  int
	SKU    string
	Reason string
}

// ImportResult resumen de la importación.
type ImportResult struct {
	Stock     int
	Movements int
	Skipped   []ImportSkip
	Rebuild   *ReconcileResult
}

// ImportUseCase agrega historia al log y fija niveles iniciales sin romper la
// derivabilidad de la proyección.
type ImportUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewImportUseCase construye el caso de uso.
func NewImportUseCase(txRunner TxRunner, log *logger.Logger) *ImportUseCase {
	return &ImportUseCase{txRunner: txRunner, log: log.Named("inventory.import")}
}

// Import agrega los movimientos con su fecha original y registra cada fila de stock
// como un ajuste con motivo "import". Luego reconstruye la proyección en la misma
// transacción. Las filas inválidas se omiten y se reportan.
func (uc *ImportUseCase) Import(ctx context.Context, in ImportInput) (*ImportResult, error) {
	now := time.Now().UTC()
	res := &ImportResult{}

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		if err := stockRepo.LockTable(ctx); err != nil {
			return err
		}
		ids := make(map[string]string)
		lookup := func(sku string) (string, error) {
			if id, ok := ids[sku]; ok {
				return id, nil
			}
			p, err := productRepo.GetBySKU(ctx, sku)
			if err != nil {
				return "", err
			}
			if p == nil {
				ids[sku] = ""
				return "", nil
			}
			ids[sku] = p.ID
			return p.ID, nil
		}
		skip := func(kind string, i int, sku, reason string) {
			res.Skipped = append(res.Skipped, ImportSkip{Kind: kind, Index: i, SKU: sku, Reason: reason})
		}

		for i, m := range in.Movements {
			area, err := entity.ParseArea(m.Area)
			if err != nil {
				skip("movement", i, m.SKU, err.Error())
				continue
			}
			typ, err := entity.ParseMovementType(m.Type)
			if err != nil {
				skip("movement", i, m.SKU, err.Error())
				continue
			}
			if m.Quantity.IsNegative() {
				skip("movement", i, m.SKU, fmt.Sprintf("cantidad negativa: %s", m.Quantity))
				continue
			}
			if !ledger.Fits(m.Quantity) {
				skip("movement", i, m.SKU, fmt.Sprintf("cantidad fuera de NUMERIC(14,3): %s", m.Quantity))
				continue
			}
			pid, err := lookup(m.SKU)
			if err != nil {
				return err
			}
			if pid == "" {
				skip("movement", i, m.SKU, "producto no encontrado")
				continue
			}
			at := now
			if m.CreatedAt != nil {
				at = m.CreatedAt.UTC()
			}
			if err := movRepo.Create(ctx, &entity.Movement{
				TransactionID: uuid.New().String(),
				ProductID:     pid,
				Area:          area,
				Type:          typ,
				Quantity:      m.Quantity,
				Reason:        m.Reason,
				ActorID:       in.ActorID,
				CreatedAt:     at,
			}); err != nil {
				return err
			}
			res.Movements++
		}

		for i, s := range in.Stock {
			area, err := entity.ParseArea(s.Area)
			if err != nil {
				skip("stock", i, s.SKU, err.Error())
				continue
			}
			if s.Quantity.IsNegative() {
				skip("stock", i, s.SKU, fmt.Sprintf("cantidad negativa: %s", s.Quantity))
				continue
			}
			if !ledger.Fits(s.Quantity) {
				skip("stock", i, s.SKU, fmt.Sprintf("cantidad fuera de NUMERIC(14,3): %s", s.Quantity))
				continue
			}
			pid, err := lookup(s.SKU)
			if err != nil {
				return err
			}
			if pid == "" {
				skip("stock", i, s.SKU, "producto no encontrado")
				continue
			}
			if err := movRepo.Create(ctx, &entity.Movement{
				TransactionID: uuid.New().String(),
				ProductID:     pid,
				Area:          area,
				Type:          entity.MovementAjuste,
				Quantity:      s.Quantity,
				Reason:        ImportReason,
				ActorID:       in.ActorID,
				CreatedAt:     now,
			}); err != nil {
				return err
			}
			res.Stock++
		}

		var err error
		res.Rebuild, err = rebuild(ctx, movRepo, stockRepo, true, now)
		return err
	})
	if err != nil {
		err = storageErr(err)
		uc.log.Error().Err(err).Msg("importar inventario")
		return nil, err
	}

	uc.log.Info().
		Int("stock", res.Stock).
		Int("movements", res.Movements).
		Int("skipped", len(res.Skipped)).
		Int("changed", len(res.Rebuild.Changed)).
		Str("actor", in.ActorID).
		Msg("importación aplicada")
	return res, nil
}
