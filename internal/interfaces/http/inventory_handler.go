package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bodega-stock/internal/application/dto"
	"github.com/jhoicas/bodega-stock/internal/application/inventory"
	"github.com/jhoicas/bodega-stock/internal/domain/entity"
	"github.com/jhoicas/bodega-stock/pkg/logger"
)

// InventoryHandler maneja movimientos, traslados y consultas de stock (protegido).
type InventoryHandler struct {
	movement *inventory.RecordMovementUseCase
	transfer *inventory.TransferUseCase
	query    *inventory.QueryUseCase
	report   *inventory.ReportUseCase
	log      *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	movement *inventory.RecordMovementUseCase,
	transfer *inventory.TransferUseCase,
	query *inventory.QueryUseCase,
	report *inventory.ReportUseCase,
	log *logger.Logger,
) *InventoryHandler {
	return &InventoryHandler{movement: movement, transfer: transfer, query: query, report: report, log: log}
}

// RecordMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  ingreso suma, salida resta, ajuste fija el valor. Los ingresos a surtido se rechazan.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "sku, area, type, quantity, reason"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/manager/inventory/movement [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.movement.RecordMovement(c.UserContext(), inventory.MovementInput{
		SKU:      in.SKU,
		Area:     in.Area,
		Type:     in.Type,
		Quantity: in.Quantity,
		Reason:   in.Reason,
		ActorID:  GetUserID(c),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.MovementResponse{
		OK:        true,
		ProductID: res.ProductID,
		SKU:       res.SKU,
		Area:      string(res.Area),
		Type:      string(res.Type),
		Stock:     res.Stock,
	})
}

// Transfer godoc
// @Summary      Trasladar stock entre áreas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "sku, fromArea, toArea, quantity, reason"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/manager/inventory/transfer [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.transfer.Transfer(c.UserContext(), inventory.TransferInput{
		SKU:      in.SKU,
		FromArea: in.FromArea,
		ToArea:   in.ToArea,
		Quantity: in.Quantity,
		Reason:   in.Reason,
		ActorID:  GetUserID(c),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.TransferResponse{
		OK:            true,
		TransactionID: res.TransactionID,
		SKU:           res.SKU,
		FromArea:      string(res.From),
		ToArea:        string(res.To),
		FromStock:     res.FromStock,
		ToStock:       res.ToStock,
	})
}

// ListStock godoc
// @Summary      Listar stock por producto y área
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        area  query  string  false  "bodega | surtido"
// @Param        q     query  string  false  "búsqueda por SKU o nombre"
// @Success      200   {object}  dto.StockListResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/manager/inventory/stock [get]
func (h *InventoryHandler) ListStock(c *fiber.Ctx) error {
	list, err := h.query.ListStock(c.UserContext(), c.Query("area"), c.Query("q"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.StockListResponse{Items: toStockLevelDTOs(list)})
}

// Summary godoc
// @Summary      Resumen de inventario
// @Description  Stock bajo, últimos movimientos y totales por área.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SummaryResponse
// @Router       /api/manager/inventory/summary [get]
func (h *InventoryHandler) Summary(c *fiber.Ctx) error {
	s, err := h.query.Summary(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	recent := make([]dto.MovementDTO, 0, len(s.Recent))
	for _, m := range s.Recent {
		item := toMovementDTO(&m.Movement)
		item.SKU = m.SKU
		item.Name = m.ProductName
		recent = append(recent, item)
	}
	return c.JSON(dto.SummaryResponse{
		LowStock:          toStockLevelDTOs(s.LowStock),
		LastMovements:     recent,
		StockBodegaTotal:  s.Totals[entity.AreaBodega],
		StockSurtidoTotal: s.Totals[entity.AreaSurtido],
		LowThreshold:      s.LowThreshold,
	})
}

// StockReportPDF godoc
// @Summary      Reporte PDF de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        area  query  string  false  "bodega | surtido"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/manager/inventory/report.pdf [get]
func (h *InventoryHandler) StockReportPDF(c *fiber.Ctx) error {
	pdf, err := h.report.StockReportPDF(c.UserContext(), c.Query("area"))
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`inline; filename="stock-%s.pdf"`, time.Now().Format("20060102")))
	return c.Send(pdf)
}

// ProductActivity godoc
// @Summary      Historial de movimientos de un producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ActivityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/manager/products/{id}/activity [get]
func (h *InventoryHandler) ProductActivity(c *fiber.Ctx) error {
	product, movs, err := h.query.ProductActivity(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	out := dto.ActivityResponse{
		ProductID: product.ID,
		SKU:       product.SKU,
		Name:      product.Name,
		Activity:  make([]dto.MovementDTO, 0, len(movs)),
	}
	for _, m := range movs {
		out.Activity = append(out.Activity, toMovementDTO(m))
	}
	return c.JSON(out)
}

func (h *InventoryHandler) fail(c *fiber.Ctx, err error) error {
	return failWith(c, h.log, err)
}

// failWith responde el error y registra los que no son de negocio.
func failWith(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, _, _ := errorStatus(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("error de almacenamiento")
	}
	return writeError(c, err)
}

func toStockLevelDTOs(list []*entity.InventoryLevel) []dto.StockLevelDTO {
	out := make([]dto.StockLevelDTO, 0, len(list))
	for _, l := range list {
		out = append(out, dto.StockLevelDTO{
			ProductID: l.ProductID,
			SKU:       l.SKU,
			Name:      l.ProductName,
			Area:      string(l.Area),
			Quantity:  l.Quantity,
			UpdatedAt: l.UpdatedAt,
		})
	}
	return out
}

func toMovementDTO(m *entity.Movement) dto.MovementDTO {
	return dto.MovementDTO{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		ProductID:     m.ProductID,
		Area:          string(m.Area),
		Type:          string(m.Type),
		Quantity:      m.Quantity,
		Reason:        m.Reason,
		UserID:        m.ActorID,
		CreatedAt:     m.CreatedAt,
	}
}
