package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/ascom-demandas/internal/services"
	"gorm.io/gorm"
)

// SolicitanteHandler handles requester routes
type SolicitanteHandler struct {
	DB *gorm.DB
}

// ListSolicitantes handles GET /api/solicitantes
// @Summary List requesters
// @Tags Solicitantes
// @Produce json
// @Success 200 {array} models.Solicitante
// @Router /solicitantes [get]
func (h *SolicitanteHandler) ListSolicitantes(c *fiber.Ctx) error {
	solicitantes, err := services.ListSolicitantes(h.DB)
	if err != nil {
		return serviceError(c, err, "Solicitante não encontrado", "solicitantes.list")
	}
	return c.Status(fiber.StatusOK).JSON(solicitantes)
}

// CreateSolicitante handles POST /api/solicitantes
// @Summary Create requester
// @Description Idempotent: an existing name, compared ignoring case, returns the stored record.
// @Tags Solicitantes
// @Accept mpfd
// @Produce json
// @Param nome formData string true "Requester name"
// @Success 200 {object} models.Solicitante
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /solicitantes [post]
func (h *SolicitanteHandler) CreateSolicitante(c *fiber.Ctx) error {
	solicitante, err := services.EnsureSolicitante(h.DB, formValue(c, "nome"))
	if err != nil {
		return serviceError(c, err, "Solicitante não encontrado", "solicitantes.create")
	}
	return c.Status(fiber.StatusOK).JSON(solicitante)
}
