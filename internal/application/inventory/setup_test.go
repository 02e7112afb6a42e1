package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-stock/internal/application/inventory"
	"github.com/jhoicas/bodega-stock/internal/domain/entity"
	"github.com/jhoicas/bodega-stock/internal/infrastructure/memstore"
	"github.com/jhoicas/bodega-stock/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers compartidos por los tests del paquete.
// ──────────────────────────────────────────────────────────────────────────────

type recordingNotifier struct {
	mu      sync.Mutex
	changes []inventory.StockChange
}

func (n *recordingNotifier) StockChanged(_ context.Context, changes []inventory.StockChange) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, changes...)
	return nil
}

func (n *recordingNotifier) all() []inventory.StockChange {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]inventory.StockChange(nil), n.changes...)
}

type env struct {
	store     *memstore.Store
	notifier  *recordingNotifier
	movement  *inventory.RecordMovementUseCase
	transfer  *inventory.TransferUseCase
	reconcile *inventory.ReconcileUseCase
	migration *inventory.AreaMigrationUseCase
	importer  *inventory.ImportUseCase
	query     *inventory.QueryUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s := memstore.New()
	n := &recordingNotifier{}
	log := logger.NewNop()
	return &env{
		store:     s,
		notifier:  n,
		movement:  inventory.NewRecordMovementUseCase(s, s.ProductRepository(), n, log),
		transfer:  inventory.NewTransferUseCase(s, s.ProductRepository(), s.StockRepository(), n, log),
		reconcile: inventory.NewReconcileUseCase(s, s.ProductRepository(), s.MovementRepository(), s.StockRepository(), log),
		migration: inventory.NewAreaMigrationUseCase(s, n, log),
		importer:  inventory.NewImportUseCase(s, log),
		query:     inventory.NewQueryUseCase(s.LevelRepository(), s.MovementRepository(), s.ProductRepository(), decimal.Zero),
	}
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// record registra un movimiento y exige que sea aceptado.
func (e *env) record(t *testing.T, sku string, area entity.Area, typ entity.MovementType, qty int64) decimal.Decimal {
	t.Helper()
	res, err := e.movement.RecordMovement(context.Background(), inventory.MovementInput{
		SKU:      sku,
		Area:     string(area),
		Type:     string(typ),
		Quantity: d(qty),
		ActorID:  "u-test",
	})
	require.NoError(t, err)
	return res.Stock
}

func (e *env) stock(p *entity.Product, area entity.Area) decimal.Decimal {
	q, _ := e.store.StockOf(p.ID, area)
	return q
}

// requireQty compara decimales por valor (no por representación).
func requireQty(t *testing.T, want int64, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.Truef(t, d(want).Equal(got), "esperado %d, obtenido %s %v", want, got, msgAndArgs)
}
