package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/ascom-demandas/internal/config"
	"github.com/localnerve/ascom-demandas/internal/models"
	"github.com/localnerve/ascom-demandas/internal/pdf"
	"github.com/localnerve/ascom-demandas/internal/storage"
	"github.com/localnerve/ascom-demandas/internal/utils"
	"gorm.io/gorm"
)

// Deps is everything the route handlers share.
type Deps struct {
	Config      *config.Config
	DB          *gorm.DB
	Blobs       *storage.BlobStore
	PDF         *pdf.Renderer
	Clock       Clock
	Transitions models.Transitions
}

// Register mounts every API route on router, normally the /api group.
func Register(router fiber.Router, d Deps) {
	health := &HealthHandler{Config: d.Config, DB: d.DB, Blobs: d.Blobs}
	reports := &ReportHandler{DB: d.DB, Blobs: d.Blobs, PDF: d.PDF, Clock: d.Clock}
	demandas := &DemandaHandler{DB: d.DB, Blobs: d.Blobs, PDF: d.PDF, Clock: d.Clock, Transitions: d.Transitions}
	solicitantes := &SolicitanteHandler{DB: d.DB}
	files := &FileHandler{Blobs: d.Blobs}

	router.Get("/health", health.Health)

	// Relatórios
	router.Get("/reports", reports.ListReports)
	router.Post("/reports", reports.CreateReport)
	router.Get("/reports/:id", reports.GetReport)
	router.Put("/reports/:id", reports.UpdateReport)
	router.Delete("/reports/:id", reports.DeleteReport)
	router.Get("/reports/:id/pdf", reports.ReportPDF)

	// Demandas
	router.Get("/demandas", demandas.ListDemandas)
	router.Post("/demandas", demandas.CreateDemanda)
	router.Get("/demandas/:id", demandas.GetDemanda)
	router.Put("/demandas/:id", demandas.UpdateDemanda)
	router.Delete("/demandas/:id", demandas.DeleteDemanda)
	router.Put("/demandas/:id/status", demandas.UpdateStatus)
	router.Post("/demandas/:id/entregas", demandas.AddEntregas)
	router.Get("/demandas/:id/whatsapp", demandas.WhatsAppText)
	router.Get("/months", demandas.ListMonths)
	router.Get("/relatorio/:month/:year/pdf", demandas.MonthlyPDF)

	router.Get("/solicitantes", solicitantes.ListSolicitantes)
	router.Post("/solicitantes", solicitantes.CreateSolicitante)

	router.Get("/files/:shard/:id", files.Download)
}

// ErrorHandler handles errors globally
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Erro interno do servidor"
	errorType := "unknown"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
		errorType = "http"
	}

	if code == fiber.StatusRequestEntityTooLarge {
		message = "Arquivo muito grande"
	}

	return utils.ErrorResponse(c, message, code, errorType)
}

// NotFound is the catch-all for unknown routes
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   "[404] Resource Not Found",
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
	})
}
