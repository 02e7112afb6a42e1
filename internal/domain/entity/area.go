package entity

import "github.com/jhoicas/bodega-stock/internal/domain"

// Area es una de las dos ubicaciones fijas de inventario.
type Area string

const (
	AreaBodega  Area = "bodega"  // reserva
	AreaSurtido Area = "surtido" // frente de venta
)

// Areas en orden fijo. Los traslados bloquean filas en este orden.
var Areas = []Area{AreaBodega, AreaSurtido}

// ParseArea valida el nombre de un área. La comparación es exacta: " bodega" o
// "Bodega" no son áreas.
func ParseArea(s string) (Area, error) {
	switch a := Area(s); a {
	case AreaBodega, AreaSurtido:
		return a, nil
	}
	return "", domain.ErrInvalidArea
}

func (a Area) String() string { return string(a) }
