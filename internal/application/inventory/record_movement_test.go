package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-stock/internal/application/inventory"
	"github.com/jhoicas/bodega-stock/internal/domain"
	"github.com/jhoicas/bodega-stock/internal/domain/entity"
	"github.com/jhoicas/bodega-stock/internal/infrastructure/memstore"
)

func TestRecordMovement_IngresoSinEntradaPrevia(t *testing.T) {
	e := newEnv(t)
	p := e.store.AddProduct("P-1", "Arroz")

	got := e.record(t, "P-1", entity.AreaBodega, entity.MovementIngreso, 50)

	requireQty(t, 50, got)
	requireQty(t, 50, e.stock(p, entity.AreaBodega))
	movs := e.store.Movements()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementIngreso, movs[0].Type)
	assert.Equal(t, "u-test", movs[0].ActorID)
	assert.NotEmpty(t, movs[0].TransactionID)
}

func TestRecordMovement_SalidaMayorAlStockFallaSinEscribir(t *testing.T) {
	e := newEnv(t)
	p := e.store.AddProduct("P-1", "Arroz")
	e.record(t, "P-1", entity.AreaBodega, entity.MovementIngreso, 50)

	_, err := e.movement.RecordMovement(context.Background(), inventory.MovementInput{
		SKU: "P-1", Area: "bodega", Type: "salida", Quantity: d(60),
	})

	require.ErrorIs(t, err, domain.ErrNegativeStock)
	requireQty(t, 50, e.stock(p, entity.AreaBodega))
	assert.Len(t, e.store.Movements(), 1, "no debe escribirse el movimiento rechazado")
}

func TestRecordMovement_IngresoASurtidoProhibido(t *testing.T) {
	e := newEnv(t)
	p := e.store.AddProduct("P-1", "Arroz")
	e.record(t, "P-1", entity.AreaSurtido, entity.MovementAjuste, 7)

	for _, qty := range []int64{1, 5, 1000} {
		_, err := e.movement.RecordMovement(context.Background(), inventory.MovementInput{
			SKU: "P-1", Area: "surtido", Type: "ingreso", Quantity: d(qty),
		})
		require.ErrorIs(t, err, domain.ErrIngressToStagingForbidden)
	}
	requireQty(t, 7, e.stock(p, entity.AreaSurtido))
}

func TestRecordMovement_AjusteFijaValorAbsoluto(t *testing.T) {
	e := newEnv(t)
	p := e.store.AddProduct("P-1", "Arroz")
	e.record(t, "P-1", entity.AreaBodega, entity.MovementIngreso, 80)

	got := e.record(t, "P-1", entity.AreaBodega, entity.MovementAjuste, 12)

	requireQty(t, 12, got)
	requireQty(t, 12, e.stock(p, entity.AreaBodega))
}

func TestRecordMovement_Validaciones(t *testing.T) {
	e := newEnv(t)
	e.store.AddProduct("P-1", "Arroz")

	tests := []struct {
		name string
		in   inventory.MovementInput
		want error
	}{
		{"área inválida", inventory.MovementInput{SKU: "P-1", Area: "patio", Type: "ingreso", Quantity: d(1)}, domain.ErrInvalidArea},
		{"tipo inválido", inventory.MovementInput{SKU: "P-1", Area: "bodega", Type: "robo", Quantity: d(1)}, domain.ErrInvalidType},
		{"área con espacios", inventory.MovementInput{SKU: "P-1", Area: " bodega", Type: "ingreso", Quantity: d(1)}, domain.ErrInvalidArea},
		{"tipo con espacios", inventory.MovementInput{SKU: "P-1", Area: "bodega", Type: "ingreso ", Quantity: d(1)}, domain.ErrInvalidType},
		{"cantidad cero", inventory.MovementInput{SKU: "P-1", Area: "bodega", Type: "ingreso", Quantity: decimal.Zero}, domain.ErrInvalidQuantity},
		{"cantidad negativa", inventory.MovementInput{SKU: "P-1", Area: "bodega", Type: "salida", Quantity: d(-3)}, domain.ErrInvalidQuantity},
		{"más de tres decimales", inventory.MovementInput{SKU: "P-1", Area: "bodega", Type: "ingreso", Quantity: decimal.RequireFromString("0.0004")}, domain.ErrInvalidQuantity},
		{"no cabe en la columna", inventory.MovementInput{SKU: "P-1", Area: "bodega", Type: "ingreso", Quantity: decimal.New(1, 12)}, domain.ErrInvalidQuantity},
		{"sku desconocido", inventory.MovementInput{SKU: "NOPE", Area: "bodega", Type: "ingreso", Quantity: d(1)}, domain.ErrProductNotFound},
		{"sku vacío", inventory.MovementInput{SKU: "", Area: "bodega", Type: "ingreso", Quantity: d(1)}, domain.ErrProductNotFound},
		// el área se valida antes que el tipo
		{"área y tipo inválidos", inventory.MovementInput{SKU: "P-1", Area: "x", Type: "y", Quantity: d(1)}, domain.ErrInvalidArea},
		// la política de surtido se evalúa antes de resolver el producto
		{"surtido con sku desconocido", inventory.MovementInput{SKU: "NOPE", Area: "surtido", Type: "ingreso", Quantity: d(1)}, domain.ErrIngressToStagingForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.movement.RecordMovement(context.Background(), tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, e.store.Movements())
}

func TestRecordMovement_FallaDeAlmacenamientoHaceRollback(t *testing.T) {
	e := newEnv(t)
	p := e.store.AddProduct("P-1", "Arroz")
	e.record(t, "P-1", entity.AreaBodega, entity.MovementIngreso, 10)
	e.store.InjectFailure(memstore.OpStockUpsert, 0, nil)

	_, err := e.movement.RecordMovement(context.Background(), inventory.MovementInput{
		SKU: "P-1", Area: "bodega", Type: "ingreso", Quantity: d(5),
	})

	require.ErrorIs(t, err, domain.ErrStorage)
	require.ErrorIs(t, err, memstore.ErrInjected)
	requireQty(t, 10, e.stock(p, entity.AreaBodega))
	assert.Len(t, e.store.Movements(), 1)
}

func TestRecordMovement_NotificaDespuesDelCommit(t *testing.T) {
	e := newEnv(t)
	p := e.store.AddProduct("P-1", "Arroz")

	e.record(t, "P-1", entity.AreaBodega, entity.MovementIngreso, 3)
	_, err := e.movement.RecordMovement(context.Background(), inventory.MovementInput{
		SKU: "P-1", Area: "bodega", Type: "salida", Quantity: d(9),
	})
	require.Error(t, err)

	changes := e.notifier.all()
	require.Len(t, changes, 1, "los movimientos rechazados no se notifican")
	assert.Equal(t, p.ID, changes[0].ProductID)
	assert.Equal(t, entity.AreaBodega, changes[0].Area)
	requireQty(t, 3, changes[0].Quantity)
}

func TestRecordMovement_NuncaNegativo(t *testing.T) {
	e := newEnv(t)
	p := e.store.AddProduct("P-1", "Arroz")
	ops := []struct {
		typ entity.MovementType
		qty int64
	}{
		{entity.MovementIngreso, 10}, {entity.MovementSalida, 4}, {entity.MovementSalida, 7},
		{entity.MovementAjuste, 2}, {entity.MovementSalida, 3}, {entity.MovementSalida, 2},
		{entity.MovementIngreso, 1}, {entity.MovementSalida, 1},
	}
	for _, op := range ops {
		before := e.stock(p, entity.AreaBodega)
		_, err := e.movement.RecordMovement(context.Background(), inventory.MovementInput{
			SKU: "P-1", Area: "bodega", Type: string(op.typ), Quantity: d(op.qty),
		})
		after := e.stock(p, entity.AreaBodega)
		if err != nil {
			require.ErrorIs(t, err, domain.ErrNegativeStock)
			assert.True(t, before.Equal(after))
		}
		assert.False(t, after.IsNegative())
	}
	requireQty(t, 0, e.stock(p, entity.AreaBodega))
}

func TestRecordMovement_IngresoQueDesbordaLaColumna(t *testing.T) {
	e := newEnv(t)
	p := e.store.AddProduct("P-1", "Arroz")
	tope := decimal.RequireFromString("99999999999.999")
	_, err := e.movement.RecordMovement(context.Background(), inventory.MovementInput{
		SKU: "P-1", Area: "bodega", Type: "ajuste", Quantity: tope,
	})
	require.NoError(t, err)

	_, err = e.movement.RecordMovement(context.Background(), inventory.MovementInput{
		SKU: "P-1", Area: "bodega", Type: "ingreso", Quantity: decimal.RequireFromString("0.001"),
	})

	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.True(t, tope.Equal(e.stock(p, entity.AreaBodega)))
	assert.Len(t, e.store.Movements(), 1)
}
