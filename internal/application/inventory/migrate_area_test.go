package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-stock/internal/application/inventory"
	"github.com/jhoicas/bodega-stock/internal/domain"
	"github.com/jhoicas/bodega-stock/internal/domain/entity"
	"github.com/jhoicas/bodega-stock/internal/infrastructure/memstore"
)

func seedSurtido(t *testing.T, e *env) (a, b, c *entity.Product) {
	t.Helper()
	a = e.store.AddProduct("A", "Aceite")
	b = e.store.AddProduct("B", "Beans")
	c = e.store.AddProduct("C", "Café")
	e.record(t, "A", entity.AreaBodega, entity.MovementIngreso, 10)
	e.record(t, "A", entity.AreaSurtido, entity.MovementAjuste, 4)
	e.record(t, "B", entity.AreaSurtido, entity.MovementAjuste, 6) // sin fila en bodega
	e.record(t, "C", entity.AreaBodega, entity.MovementIngreso, 2)
	e.store.SetStock(c.ID, entity.AreaSurtido, d(0)) // fila en cero sin historia
	return a, b, c
}

func TestMoveAllToBodega_ConsolidaYBorraSurtido(t *testing.T) {
	e := newEnv(t)
	a, b, c := seedSurtido(t, e)
	before := len(e.store.Movements())

	res, err := e.migration.MoveAllToBodega(context.Background(), "u-admin")

	require.NoError(t, err)
	assert.Equal(t, 2, res.Products)
	requireQty(t, 10, res.Quantity)
	assert.EqualValues(t, 3, res.DeletedRows)

	requireQty(t, 14, e.stock(a, entity.AreaBodega))
	requireQty(t, 6, e.stock(b, entity.AreaBodega))
	requireQty(t, 2, e.stock(c, entity.AreaBodega))
	for _, p := range []*entity.Product{a, b, c} {
		_, exists := e.store.StockOf(p.ID, entity.AreaSurtido)
		assert.False(t, exists, p.SKU)
	}

	movs := e.store.Movements()[before:]
	require.Len(t, movs, 4, "un par salida/ingreso por producto con surtido")
	for i := 0; i < len(movs); i += 2 {
		out, in := movs[i], movs[i+1]
		assert.Equal(t, entity.MovementSalida, out.Type)
		assert.Equal(t, entity.AreaSurtido, out.Area)
		assert.Equal(t, entity.MovementIngreso, in.Type)
		assert.Equal(t, entity.AreaBodega, in.Area)
		assert.Equal(t, out.TransactionID, in.TransactionID)
		assert.Equal(t, inventory.MigrationReason, out.Reason)
		assert.Equal(t, "u-admin", in.ActorID)
	}
}

func TestMoveAllToBodega_ReconstruibleDesdeElLog(t *testing.T) {
	e := newEnv(t)
	a, b, _ := seedSurtido(t, e)
	_, err := e.migration.MoveAllToBodega(context.Background(), "u-admin")
	require.NoError(t, err)

	res, err := e.reconcile.Rebuild(context.Background())

	require.NoError(t, err)
	assert.Empty(t, res.Changed)
	requireQty(t, 14, e.stock(a, entity.AreaBodega))
	requireQty(t, 6, e.stock(b, entity.AreaBodega))
	requireQty(t, 0, e.stock(a, entity.AreaSurtido))
}

func TestMoveAllToBodega_FallaNoCambiaNada(t *testing.T) {
	e := newEnv(t)
	a, b, _ := seedSurtido(t, e)
	before := len(e.store.Movements())
	e.store.InjectFailure(memstore.OpStockDeleteArea, 0, nil)

	_, err := e.migration.MoveAllToBodega(context.Background(), "u-admin")

	require.ErrorIs(t, err, domain.ErrStorage)
	requireQty(t, 10, e.stock(a, entity.AreaBodega))
	requireQty(t, 4, e.stock(a, entity.AreaSurtido))
	requireQty(t, 6, e.stock(b, entity.AreaSurtido))
	_, exists := e.store.StockOf(b.ID, entity.AreaBodega)
	assert.False(t, exists)
	assert.Len(t, e.store.Movements(), before)
}

func TestMoveAllToBodega_SinSurtido(t *testing.T) {
	e := newEnv(t)
	e.store.AddProduct("A", "Aceite")
	e.record(t, "A", entity.AreaBodega, entity.MovementIngreso, 3)

	res, err := e.migration.MoveAllToBodega(context.Background(), "")

	require.NoError(t, err)
	assert.Zero(t, res.Products)
	assert.Zero(t, res.DeletedRows)
}
