package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cobranza-etl/internal/application/dto"
	"github.com/jhoicas/cobranza-etl/internal/application/etl"
)

// TenantHandler expone el registro de tenants (solo lectura).
type TenantHandler struct {
	registry etl.ConfigRegistry
}

// NewTenantHandler construye el handler.
func NewTenantHandler(registry etl.ConfigRegistry) *TenantHandler {
	return &TenantHandler{registry: registry}
}

// List godoc
// @Summary      Listar tenants configurados
// @Tags         tenants
// @Produce      json
// @Success      200  {object}  dto.TenantListResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/tenants [get]
func (h *TenantHandler) List(c *fiber.Ctx) error {
	tenants, err := h.registry.ListTenants()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.TenantListResponse{Tenants: tenants})
}
