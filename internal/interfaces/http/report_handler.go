package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cobranza-etl/internal/application/dto"
	"github.com/jhoicas/cobranza-etl/internal/application/report"
	"github.com/jhoicas/cobranza-etl/internal/domain"
)

// ReportHandler expone el informe diario en PDF.
type ReportHandler struct {
	svc *report.Service
}

// NewReportHandler construye el handler.
func NewReportHandler(svc *report.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Daily godoc
// @Summary      Informe diario de gestión en PDF
// @Tags         reports
// @Produce      application/pdf
// @Param        tenant  path  string  true  "ID del tenant"
// @Param        fecha   path  string  true  "Fecha YYYY-MM-DD"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/daily/{tenant}/{fecha} [get]
func (h *ReportHandler) Daily(c *fiber.Ctx) error {
	tenantID := c.Params("tenant")
	fecha, err := parseFecha(c.Params("fecha"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, use YYYY-MM-DD"})
	}

	pdf, err := h.svc.RenderDaily(c.Context(), tenantID, fecha)
	if err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "tenant no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="informe_%s_%s.pdf"`, tenantID, fecha.Format("2006-01-02")))
	return c.Send(pdf)
}
