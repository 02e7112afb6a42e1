package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-stock/internal/application/inventory"
	"github.com/jhoicas/bodega-stock/internal/domain"
	"github.com/jhoicas/bodega-stock/internal/domain/entity"
	"github.com/jhoicas/bodega-stock/internal/infrastructure/memstore"
)

func TestImport_MovimientosHistoricosYStock(t *testing.T) {
	e := newEnv(t)
	a := e.store.AddProduct("A", "Aceite")
	b := e.store.AddProduct("B", "Beans")
	t0 := time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	res, err := e.importer.Import(context.Background(), inventory.ImportInput{
		Movements: []inventory.ImportMovementRow{
			{SKU: "A", Area: "bodega", Type: "ingreso", Quantity: d(20), CreatedAt: &t0},
			{SKU: "A", Area: "bodega", Type: "salida", Quantity: d(5), CreatedAt: &t1},
			{SKU: "A", Area: "patio", Type: "ingreso", Quantity: d(1)},
			{SKU: "Z", Area: "bodega", Type: "ingreso", Quantity: d(1)},
			{SKU: "A", Area: "bodega", Type: "robo", Quantity: d(1)},
		},
		Stock: []inventory.ImportStockRow{
			{SKU: "B", Area: "surtido", Quantity: d(7)},
			{SKU: "B", Area: "bodega", Quantity: d(-1)},
		},
		ActorID: "u-admin",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Movements)
	assert.Equal(t, 1, res.Stock)
	require.Len(t, res.Skipped, 4)
	assert.Equal(t, "movement", res.Skipped[0].Kind)
	assert.Equal(t, 2, res.Skipped[0].Index)
	assert.Equal(t, "stock", res.Skipped[3].Kind)

	requireQty(t, 15, e.stock(a, entity.AreaBodega))
	requireQty(t, 7, e.stock(b, entity.AreaSurtido))

	var ajustes int
	for _, m := range e.store.Movements() {
		if m.Type == entity.MovementAjuste {
			ajustes++
			assert.Equal(t, inventory.ImportReason, m.Reason)
		}
	}
	assert.Equal(t, 1, ajustes, "el stock importado queda en el log como ajuste")

	drift, err := e.reconcile.Drift(context.Background())
	require.NoError(t, err)
	assert.True(t, drift.IsDriftFree())
}

func TestImport_StockPosteriorAMovimientos(t *testing.T) {
	e := newEnv(t)
	a := e.store.AddProduct("A", "Aceite")
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := e.importer.Import(context.Background(), inventory.ImportInput{
		Movements: []inventory.ImportMovementRow{
			{SKU: "A", Area: "bodega", Type: "ingreso", Quantity: d(100), CreatedAt: &old},
		},
		Stock: []inventory.ImportStockRow{{SKU: "A", Area: "bodega", Quantity: d(30)}},
	})

	require.NoError(t, err)
	requireQty(t, 30, e.stock(a, entity.AreaBodega))
}

func TestImport_FallaRevierteTodo(t *testing.T) {
	e := newEnv(t)
	a := e.store.AddProduct("A", "Aceite")
	e.store.InjectFailure(memstore.OpMovementCreate, 1, nil)

	_, err := e.importer.Import(context.Background(), inventory.ImportInput{
		Movements: []inventory.ImportMovementRow{
			{SKU: "A", Area: "bodega", Type: "ingreso", Quantity: d(3)},
			{SKU: "A", Area: "bodega", Type: "ingreso", Quantity: d(4)},
		},
	})

	require.ErrorIs(t, err, domain.ErrStorage)
	assert.Empty(t, e.store.Movements())
	_, exists := e.store.StockOf(a.ID, entity.AreaBodega)
	assert.False(t, exists)
}

func TestImport_DescartaCantidadesFueraDeColumna(t *testing.T) {
	e := newEnv(t)
	a := e.store.AddProduct("A", "Aceite")

	res, err := e.importer.Import(context.Background(), inventory.ImportInput{
		Movements: []inventory.ImportMovementRow{
			{SKU: "A", Area: "bodega", Type: "ingreso", Quantity: decimal.RequireFromString("0.0004")},
			{SKU: "A", Area: "bodega", Type: "ingreso", Quantity: decimal.RequireFromString("2.500")},
		},
		Stock: []inventory.ImportStockRow{
			{SKU: "A", Area: "surtido", Quantity: decimal.New(1, 12)},
			{SKU: "A", Area: "surtido", Quantity: decimal.Zero},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Movements)
	assert.Equal(t, 1, res.Stock)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "movement", res.Skipped[0].Kind)
	assert.Equal(t, 0, res.Skipped[0].Index)
	assert.Equal(t, "stock", res.Skipped[1].Kind)
	assert.Equal(t, 0, res.Skipped[1].Index)
	assert.True(t, decimal.RequireFromString("2.5").Equal(e.stock(a, entity.AreaBodega)))
}
