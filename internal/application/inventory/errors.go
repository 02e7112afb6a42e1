package inventory

import (
	"errors"
	"fmt"

	"github.com/jhoicas/bodega-stock/internal/domain"
)

// storageErr deja pasar los errores de dominio y envuelve cualquier otro en ErrStorage.
func storageErr(err error) error {
	if err == nil || domain.IsBusinessError(err) || errors.Is(err, domain.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorage, err)
}
