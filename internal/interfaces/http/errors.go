package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bodega-stock/internal/application/dto"
	"github.com/jhoicas/bodega-stock/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// El orden importa: el primer errors.Is que coincide gana.
var errorMappings = []errorMapping{
	{domain.ErrProductNotFound, fiber.StatusNotFound, "PRODUCT_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidArea, fiber.StatusBadRequest, "INVALID_AREA"},
	{domain.ErrInvalidType, fiber.StatusBadRequest, "INVALID_TYPE"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY"},
	{domain.ErrSameArea, fiber.StatusBadRequest, "SAME_AREA"},
	{domain.ErrIngressToStagingForbidden, fiber.StatusBadRequest, "INGRESS_TO_SURTIDO_FORBIDDEN"},
	{domain.ErrInsufficientStock, fiber.StatusBadRequest, "INSUFFICIENT_STOCK"},
	{domain.ErrNegativeStock, fiber.StatusBadRequest, "NEGATIVE_STOCK"},
}

// errorStatus traduce un error de la capa de aplicación a status HTTP y código.
// Lo que no es de negocio se responde como 500 STORAGE_ERROR.
func errorStatus(err error) (int, string, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code, m.target.Error()
		}
	}
	return fiber.StatusInternalServerError, "STORAGE_ERROR", domain.ErrStorage.Error()
}

func writeError(c *fiber.Ctx, err error) error {
	status, code, msg := errorStatus(err)
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
