package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bodega-stock/internal/application/dto"
	"github.com/jhoicas/bodega-stock/internal/application/inventory"
	"github.com/jhoicas/bodega-stock/pkg/logger"
)

// MaintenanceHandler operaciones administrativas sobre la proyección de stock (solo manager).
type MaintenanceHandler struct {
	reconcile *inventory.ReconcileUseCase
	migration *inventory.AreaMigrationUseCase
	importer  *inventory.ImportUseCase
	log       *logger.Logger
}

// NewMaintenanceHandler construye el handler.
func NewMaintenanceHandler(
	reconcile *inventory.ReconcileUseCase,
	migration *inventory.AreaMigrationUseCase,
	importer *inventory.ImportUseCase,
	log *logger.Logger,
) *MaintenanceHandler {
	return &MaintenanceHandler{reconcile: reconcile, migration: migration, importer: importer, log: log}
}

// RebuildStock godoc
// @Summary      Reconstruir inventory_stock desde el log de movimientos
// @Tags         maintenance
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/manager/inventory/rebuild-stock [post]
func (h *MaintenanceHandler) RebuildStock(c *fiber.Ctx) error {
	res, err := h.reconcile.Rebuild(c.UserContext())
	if err != nil {
		return failWith(c, h.log, err)
	}
	h.log.Info().Str("user_id", GetUserID(c)).Int("pairs", res.Pairs).Int("changed", len(res.Changed)).Msg("stock reconstruido")
	return c.JSON(toReconcileResponse(res))
}

// Drift godoc
// @Summary      Listar pares cuyo stock difiere del log (no escribe)
// @Tags         maintenance
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconcileResponse
// @Router       /api/manager/inventory/drift [get]
func (h *MaintenanceHandler) Drift(c *fiber.Ctx) error {
	res, err := h.reconcile.Drift(c.UserContext())
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.JSON(toReconcileResponse(res))
}

// Verify godoc
// @Summary      Verificar un par producto/área contra su historia completa
// @Tags         maintenance
// @Security     Bearer
// @Produce      json
// @Param        sku   query  string  true  "SKU"
// @Param        area  query  string  true  "bodega | surtido"
// @Success      200  {object}  dto.VerifyResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/manager/inventory/verify [get]
func (h *MaintenanceHandler) Verify(c *fiber.Ctx) error {
	v, err := h.reconcile.VerifyPair(c.UserContext(), c.Query("sku"), c.Query("area"))
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.JSON(dto.VerifyResponse{
		ProductID:  v.ProductID,
		SKU:        v.SKU,
		Area:       string(v.Area),
		Movements:  v.Movements,
		Stored:     v.Stored,
		Replayed:   v.Replayed,
		Projected:  v.Projected,
		Consistent: v.Consistent,
	})
}

// MoveAllToBodega godoc
// @Summary      Mover todo el stock de surtido a bodega
// @Description  Suma surtido a bodega por producto y elimina las filas de surtido, en una transacción.
// @Tags         maintenance
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MoveAllToBodegaResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/manager/inventory/move-all-to-bodega [post]
func (h *MaintenanceHandler) MoveAllToBodega(c *fiber.Ctx) error {
	res, err := h.migration.MoveAllToBodega(c.UserContext(), GetUserID(c))
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.JSON(dto.MoveAllToBodegaResponse{
		OK:          true,
		Products:    res.Products,
		Quantity:    res.Quantity,
		DeletedRows: res.DeletedRows,
	})
}

// Import godoc
// @Summary      Importar stock y movimientos históricos
// @Description  Las filas inválidas se omiten y se reportan. Termina con una reconstrucción.
// @Tags         maintenance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  inventory.ImportInput  true  "inventory_stock, inventory_movements"
// @Success      200  {object}  dto.ImportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/manager/import [post]
func (h *MaintenanceHandler) Import(c *fiber.Ctx) error {
	var in inventory.ImportInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	in.ActorID = GetUserID(c)
	res, err := h.importer.Import(c.UserContext(), in)
	if err != nil {
		return failWith(c, h.log, err)
	}
	out := dto.ImportResponse{
		OK:        true,
		Stock:     res.Stock,
		Movements: res.Movements,
		Skipped:   make([]dto.ImportSkipDTO, 0, len(res.Skipped)),
	}
	for _, s := range res.Skipped {
		out.Skipped = append(out.Skipped, dto.ImportSkipDTO{Kind: s.Kind, Index: s.Index, SKU: s.SKU, Reason: s.Reason})
	}
	if res.Rebuild != nil {
		out.Rebuilt = len(res.Rebuild.Changed)
	}
	return c.JSON(out)
}

func toReconcileResponse(res *inventory.ReconcileResult) dto.ReconcileResponse {
	out := dto.ReconcileResponse{
		OK:      true,
		DryRun:  res.DryRun,
		Pairs:   res.Pairs,
		Changed: make([]dto.StockDriftDTO, 0, len(res.Changed)),
	}
	for _, d := range res.Changed {
		out.Changed = append(out.Changed, dto.StockDriftDTO{
			ProductID: d.ProductID,
			Area:      string(d.Area),
			Stored:    d.Stored,
			Computed:  d.Computed,
		})
	}
	return out
}
