package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cobranza-etl/internal/application/dto"
	"github.com/jhoicas/cobranza-etl/internal/application/etl"
	"github.com/jhoicas/cobranza-etl/internal/domain"
)

// ETLHandler maneja las peticiones HTTP del pipeline.
type ETLHandler struct {
	orch *etl.Orchestrator
}

// NewETLHandler construye el handler.
func NewETLHandler(orch *etl.Orchestrator) *ETLHandler {
	return &ETLHandler{orch: orch}
}

// parseFecha acepta solo YYYY-MM-DD.
func parseFecha(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// Run godoc
// @Summary      Ejecutar corrida ETL por fecha o rango
// @Tags         etl
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RunETLRequest  true  "Tenant y fecha (o desde/hasta)"
// @Success      200   {array}   etl.RunSummary
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/etl/run [post]
func (h *ETLHandler) Run(c *fiber.Ctx) error {
	var in dto.RunETLRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Tenant == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tenant es requerido"})
	}

	switch {
	case in.Fecha != "":
		fecha, err := parseFecha(in.Fecha)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, use YYYY-MM-DD"})
		}
		summary := h.orch.RunForDate(c.Context(), in.Tenant, fecha)
		return c.JSON([]*etl.RunSummary{summary})

	case in.Desde != "" && in.Hasta != "":
		desde, err := parseFecha(in.Desde)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "desde inválida, use YYYY-MM-DD"})
		}
		hasta, err := parseFecha(in.Hasta)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "hasta inválida, use YYYY-MM-DD"})
		}
		if hasta.Before(desde) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "hasta es anterior a desde"})
		}
		return c.JSON(h.orch.RunForRange(c.Context(), in.Tenant, desde, hasta))

	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "indique fecha o desde y hasta"})
	}
}

// Status godoc
// @Summary      Último resultado de una fecha procesada
// @Tags         etl
// @Produce      json
// @Param        tenant  path  string  true  "ID del tenant"
// @Param        fecha   path  string  true  "Fecha YYYY-MM-DD"
// @Success      200  {object}  etl.RunSummary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/etl/status/{tenant}/{fecha} [get]
func (h *ETLHandler) Status(c *fiber.Ctx) error {
	tenantID := c.Params("tenant")
	fecha, err := parseFecha(c.Params("fecha"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, use YYYY-MM-DD"})
	}

	summary, err := h.orch.GetStatus(tenantID, fecha)
	if err != nil {
		if errors.Is(err, domain.ErrNotRun) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_RUN", Message: "la fecha no se ha procesado para este tenant"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(summary)
}
