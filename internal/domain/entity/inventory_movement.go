package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-stock/internal/domain"
)

// MovementType tipo de movimiento de inventario.
type MovementType string

const (
	MovementIngreso MovementType = "ingreso" // suma
	MovementSalida  MovementType = "salida"  // resta
	MovementAjuste  MovementType = "ajuste"  // fija el valor absoluto
)

// ParseMovementType valida el tipo de movimiento, sin normalizar espacios ni mayúsculas.
func ParseMovementType(s string) (MovementType, error) {
	switch t := MovementType(s); t {
	case MovementIngreso, MovementSalida, MovementAjuste:
		return t, nil
	}
	return "", domain.ErrInvalidType
}

// Valid indica si el tipo es uno de los tres conocidos.
func (t MovementType) Valid() bool {
	return t == MovementIngreso || t == MovementSalida || t == MovementAjuste
}

// Movement es un hecho inmutable del log de inventario. Nunca se actualiza ni se borra.
// Quantity es la magnitud solicitada (>= 0); en ajuste es el nuevo nivel absoluto.
type Movement struct {
	ID            int64 // serial; desempata movimientos con la misma fecha
	TransactionID string
	ProductID     string
	Area          Area
	Type          MovementType
	Quantity      decimal.Decimal
	Reason        string
	ActorID       string
	CreatedAt     time.Time
}

// Before ordena por (CreatedAt, ID), el orden total del log.
func (m *Movement) Before(o *Movement) bool {
	if !m.CreatedAt.Equal(o.CreatedAt) {
		return m.CreatedAt.Before(o.CreatedAt)
	}
	return m.ID < o.ID
}

// MovementDetail movimiento con datos del producto para listados.
type MovementDetail struct {
	Movement
	SKU         string
	ProductName string
}
