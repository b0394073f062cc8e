package main

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"steelops/collections"
	"steelops/handlers"
	"steelops/services"
)

func main() {
	app := pocketbase.New()

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Project CRUD ─────────────────────────────────────────
		se.Router.GET("/projects", handlers.HandleProjectList(app))
		se.Router.POST("/projects",
			handlers.RequireCapability(services.CapProjectsWrite, handlers.HandleProjectCreate(app)))
		se.Router.GET("/projects/{id}", handlers.HandleProjectView(app))
		se.Router.PATCH("/projects/{id}",
			handlers.RequireCapability(services.CapProjectsWrite, handlers.HandleProjectUpdate(app)))
		se.Router.DELETE("/projects/{id}",
			handlers.RequireCapability(services.CapProjectsWrite, handlers.HandleProjectDelete(app)))
		se.Router.GET("/projects/{id}/status", handlers.HandleProjectStatus(app))

		// ── Product CRUD ─────────────────────────────────────────
		se.Router.GET("/projects/{projectId}/products", handlers.HandleProductList(app))
		se.Router.POST("/projects/{projectId}/products",
			handlers.RequireCapability(services.CapProductsWrite, handlers.HandleProductCreate(app)))
		se.Router.PATCH("/projects/{projectId}/products/{id}",
			handlers.RequireCapability(services.CapProductsWrite, handlers.HandleProductUpdate(app)))
		se.Router.DELETE("/projects/{projectId}/products/{id}",
			handlers.RequireCapability(services.CapProductsWrite, handlers.HandleProductDelete(app)))

		// ── Product import ──────────────────────────────────────
		se.Router.GET("/projects/{projectId}/products/import/template",
			handlers.HandleProductTemplateDownload(app))
		se.Router.POST("/projects/{projectId}/products/import",
			handlers.RequireCapability(services.CapProductsImport, handlers.HandleProductValidate(app)))
		se.Router.POST("/projects/{projectId}/products/import/commit",
			handlers.RequireCapability(services.CapProductsImport, handlers.HandleProductImportCommit(app)))
		se.Router.POST("/projects/{projectId}/products/import/errors",
			handlers.HandleProductImportErrorReport(app))

		// ── Quote CRUD ───────────────────────────────────────────
		se.Router.GET("/projects/{projectId}/quotes", handlers.HandleQuoteList(app))
		se.Router.POST("/projects/{projectId}/quotes",
			handlers.RequireCapability(services.CapQuotesWrite, handlers.HandleQuoteCreate(app)))
		se.Router.GET("/quotes/{id}", handlers.HandleQuoteView(app))
		se.Router.PATCH("/quotes/{id}",
			handlers.RequireCapability(services.CapQuotesWrite, handlers.HandleQuoteUpdate(app)))
		se.Router.DELETE("/quotes/{id}",
			handlers.RequireCapability(services.CapQuotesWrite, handlers.HandleQuoteDelete(app)))

		// ── Quote lines ─────────────────────────────────────────
		se.Router.POST("/quotes/{id}/lines",
			handlers.RequireCapability(services.CapQuotesWrite, handlers.HandleQuoteLineCreate(app)))
		se.Router.PATCH("/quotes/{id}/lines/{lineId}",
			handlers.RequireCapability(services.CapQuotesWrite, handlers.HandleQuoteLineUpdate(app)))
		se.Router.DELETE("/quotes/{id}/lines/{lineId}",
			handlers.RequireCapability(services.CapQuotesWrite, handlers.HandleQuoteLineDelete(app)))

		// ── Quote export ────────────────────────────────────────
		se.Router.GET("/quotes/{id}/export/excel", handlers.HandleQuoteExportExcel(app))
		se.Router.GET("/quotes/{id}/export/pdf", handlers.HandleQuoteExportPDF(app))

		// ── Pricing helpers ─────────────────────────────────────
		se.Router.GET("/pricing/margin-check", handlers.HandleMarginCheck(app))

		// ── Capacity ────────────────────────────────────────────
		se.Router.GET("/capacity/heatmap", handlers.HandleCapacityHeatmap(app))
		se.Router.GET("/capacity/summary", handlers.HandleCapacitySummary(app))
		se.Router.GET("/capacity/departments", handlers.HandleDepartmentCapacityList(app))
		se.Router.PATCH("/capacity/departments/{id}",
			handlers.RequireCapability(services.CapCapacityWrite, handlers.HandleDepartmentCapacityUpdate(app)))

		// ── Purchase orders ─────────────────────────────────────
		se.Router.GET("/projects/{projectId}/purchase-orders", handlers.HandlePOList(app))
		se.Router.POST("/projects/{projectId}/purchase-orders",
			handlers.RequireCapability(services.CapPOWrite, handlers.HandlePOCreate(app)))
		se.Router.GET("/projects/{projectId}/purchase-orders/{id}", handlers.HandlePOView(app))
		se.Router.PATCH("/projects/{projectId}/purchase-orders/{id}",
			handlers.RequireCapability(services.CapPOWrite, handlers.HandlePOUpdate(app)))
		se.Router.DELETE("/projects/{projectId}/purchase-orders/{id}",
			handlers.RequireCapability(services.CapPOWrite, handlers.HandlePODelete(app)))
		se.Router.POST("/projects/{projectId}/purchase-orders/{id}/lines",
			handlers.RequireCapability(services.CapPOWrite, handlers.HandlePOAddLine(app)))
		se.Router.DELETE("/projects/{projectId}/purchase-orders/{id}/lines/{lineId}",
			handlers.RequireCapability(services.CapPOWrite, handlers.HandlePODeleteLine(app)))

		// ── Invoices ────────────────────────────────────────────
		se.Router.GET("/projects/{projectId}/invoices", handlers.HandleInvoiceList(app))
		se.Router.POST("/projects/{projectId}/invoices",
			handlers.RequireCapability(services.CapInvoicesWrite, handlers.HandleInvoiceCreate(app)))
		se.Router.PATCH("/projects/{projectId}/invoices/{id}",
			handlers.RequireCapability(services.CapInvoicesWrite, handlers.HandleInvoiceUpdate(app)))
		se.Router.DELETE("/projects/{projectId}/invoices/{id}",
			handlers.RequireCapability(services.CapInvoicesWrite, handlers.HandleInvoiceDelete(app)))
		se.Router.POST("/invoices/export/sage",
			handlers.RequireCapability(services.CapSageExport, handlers.HandleSageExport(app)))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
