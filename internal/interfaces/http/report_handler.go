package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kiosco-app/ventas-api/internal/application/usecase"
)

// ReportHandler reportes de inventario (protegido).
type ReportHandler struct {
	uc *usecase.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *usecase.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// LowStock productos activos con stock en o por debajo de su mínimo.
// GET /api/reports/low-stock
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	items, err := h.uc.LowStock()
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{"items": items})
}
