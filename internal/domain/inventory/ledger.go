// Package inventory contiene la aritmética del log de movimientos: aplicar un
// movimiento a una cantidad, reconstruir un par (producto, área) desde su historia
// completa y el atajo de reconstrucción a partir del último ajuste.
package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-stock/internal/domain"
	"github.com/jhoicas/bodega-stock/internal/domain/entity"
)

// Apply calcula la cantidad resultante de aplicar un movimiento a current.
// ingreso suma, salida resta y ajuste fija quantity como valor absoluto.
// No valida el signo del resultado.
func Apply(current decimal.Decimal, t entity.MovementType, quantity decimal.Decimal) decimal.Decimal {
	switch t {
	case entity.MovementIngreso:
		return current.Add(quantity)
	case entity.MovementSalida:
		return current.Sub(quantity)
	case entity.MovementAjuste:
		return quantity
	}
	return current
}

// Las columnas de cantidad son NUMERIC(14,3): tres decimales y once dígitos enteros.
const QuantityScale = 3

// MaxQuantity es la primera cantidad que ya no cabe en NUMERIC(14,3).
var MaxQuantity = decimal.New(1, 11)

// Fits informa si q es representable en NUMERIC(14,3) sin redondeo: a lo sumo
// tres decimales significativos y valor absoluto menor que MaxQuantity.
func Fits(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale)) && q.Abs().LessThan(MaxQuantity)
}

// ValidateQuantity exige una cantidad estrictamente positiva que quepa en la columna.
func ValidateQuantity(q decimal.Decimal) error {
	if !q.IsPositive() || !Fits(q) {
		return domain.ErrInvalidQuantity
	}
	return nil
}

// Next es Apply con la regla de no negatividad: devuelve ErrNegativeStock si el
// resultado queda por debajo de cero y ErrInvalidQuantity si desborda la columna.
func Next(current decimal.Decimal, t entity.MovementType, quantity decimal.Decimal) (decimal.Decimal, error) {
	if !t.Valid() {
		return current, domain.ErrInvalidType
	}
	next := Apply(current, t, quantity)
	if next.IsNegative() {
		return current, domain.ErrNegativeStock
	}
	if !Fits(next) {
		return current, domain.ErrInvalidQuantity
	}
	return next, nil
}

// Floor aplica el piso en cero de la reconstrucción.
func Floor(q decimal.Decimal) decimal.Decimal {
	if q.IsNegative() {
		return decimal.Zero
	}
	return q
}

// SortMovements ordena in place por (CreatedAt, ID).
func SortMovements(movs []*entity.Movement) {
	sort.SliceStable(movs, func(i, j int) bool { return movs[i].Before(movs[j]) })
}

// Replay reproduce la historia completa de un par desde cero en orden (CreatedAt, ID)
// y aplica el piso en cero al valor final. movs no se modifica.
func Replay(movs []*entity.Movement) decimal.Decimal {
	ordered := make([]*entity.Movement, len(movs))
	copy(ordered, movs)
	SortMovements(ordered)

	q := decimal.Zero
	for _, m := range ordered {
		q = Apply(q, m.Type, m.Quantity)
	}
	return Floor(q)
}

// Baseline calcula el atajo de reconstrucción para un par: Base es la cantidad del
// ajuste más reciente (0 si no hay) y Delta la suma de ingresos (+) y salidas (-)
// estrictamente posteriores a ese ajuste, o de todos si no hay ajuste.
func Baseline(movs []*entity.Movement) entity.StockProjection {
	var last *entity.Movement
	for _, m := range movs {
		if m.Type == entity.MovementAjuste && (last == nil || last.Before(m)) {
			last = m
		}
	}
	p := entity.StockProjection{Base: decimal.Zero, Delta: decimal.Zero}
	if last != nil {
		p.Base = last.Quantity
	}
	for _, m := range movs {
		if last != nil && !last.Before(m) {
			continue
		}
		switch m.Type {
		case entity.MovementIngreso:
			p.Delta = p.Delta.Add(m.Quantity)
		case entity.MovementSalida:
			p.Delta = p.Delta.Sub(m.Quantity)
		}
	}
	if len(movs) > 0 {
		p.ProductID = movs[0].ProductID
		p.Area = movs[0].Area
	}
	return p
}

// Project convierte una proyección cruda en el stock final: max(0, Base + Delta).
func Project(p entity.StockProjection) decimal.Decimal {
	return Floor(p.Base.Add(p.Delta))
}
