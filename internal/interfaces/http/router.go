package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cobranza-etl/internal/application/etl"
	"github.com/jhoicas/cobranza-etl/internal/application/report"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Orchestrator *etl.Orchestrator
	Registry     etl.ConfigRegistry
	ReportSvc    *report.Service
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Pipeline ETL
	etlGroup := api.Group("/etl")
	etlHandler := NewETLHandler(deps.Orchestrator)
	etlGroup.Post("/run", etlHandler.Run)
	etlGroup.Get("/status/:tenant/:fecha", etlHandler.Status)

	// Tenants (solo lectura)
	tenantHandler := NewTenantHandler(deps.Registry)
	api.Get("/tenants", tenantHandler.List)

	// Reportes
	reports := api.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportSvc)
	reports.Get("/daily/:tenant/:fecha", reportHandler.Daily)
}
