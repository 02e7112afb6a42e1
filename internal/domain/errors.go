package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound = errors.New("recurso no encontrado")

	// Validación de movimientos y traslados.
	ErrProductNotFound = errors.New("producto no encontrado")
	ErrInvalidArea     = errors.New("área inválida")
	ErrInvalidType     = errors.New("tipo de movimiento inválido")
	ErrInvalidQuantity = errors.New("cantidad inválida")
	ErrSameArea        = errors.New("el área de origen y destino son la misma")

	// Reglas de negocio.
	ErrIngressToStagingForbidden = errors.New("los ingresos a surtido deben hacerse vía traslado desde bodega")
	ErrInsufficientStock         = errors.New("stock insuficiente")
	ErrNegativeStock             = errors.New("el movimiento dejaría el stock en negativo")

	// Infraestructura: conexión, timeout o conflicto de transacción. Reintentable.
	ErrStorage = errors.New("error de almacenamiento")
)

var businessErrors = []error{
	ErrNotFound,
	ErrProductNotFound, ErrInvalidArea, ErrInvalidType, ErrInvalidQuantity, ErrSameArea,
	ErrIngressToStagingForbidden, ErrInsufficientStock, ErrNegativeStock,
}

// BusinessErrors devuelve una copia de los errores de validación y de negocio.
func BusinessErrors() []error {
	out := make([]error, len(businessErrors))
	copy(out, businessErrors)
	return out
}

// IsBusinessError indica si err es un error de validación o de regla de negocio
// (no reintentable). Todo lo demás se trata como ErrStorage.
func IsBusinessError(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
