// demandas.go
//
// Demand and report tracking service for the Assessoria de Comunicação
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of ascom-demandas.
// ascom-demandas is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ascom-demandas is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ascom-demandas.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/ascom-demandas/internal/models"
	"github.com/localnerve/ascom-demandas/internal/pdf"
	"github.com/localnerve/ascom-demandas/internal/services"
	"github.com/localnerve/ascom-demandas/internal/storage"
	"github.com/localnerve/ascom-demandas/internal/utils"
	"gorm.io/gorm"
)

const demandaNotFound = "Demanda não encontrada"

// DemandaHandler handles demanda routes
type DemandaHandler struct {
	DB          *gorm.DB
	Blobs       *storage.BlobStore
	PDF         *pdf.Renderer
	Clock       Clock
	Transitions models.Transitions
}

// ListDemandas handles GET /api/demandas
// @Summary List demandas
// @Description Filters are AND-combined. month and year apply only when both are present.
// @Tags Demandas
// @Produce json
// @Param month query string false "Month 1-12"
// @Param year query string false "Four digit year"
// @Param status query string false "Exact status"
// @Param solicitante query string false "Case-insensitive substring of the requester"
// @Param search query string false "Case-insensitive substring of numero, demanda or solicitante"
// @Success 200 {array} models.Demanda
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /demandas [get]
func (h *DemandaHandler) ListDemandas(c *fiber.Ctx) error {
	filter := services.DemandaFilter{
		Month:       c.Query("month"),
		Year:        c.Query("year"),
		Status:      c.Query("status"),
		Solicitante: c.Query("solicitante"),
		Search:      c.Query("search"),
	}

	demandas, err := services.ListDemandas(h.DB, filter)
	if err != nil {
		return serviceError(c, err, demandaNotFound, "demandas.list")
	}
	return c.Status(fiber.StatusOK).JSON(demandas)
}

// GetDemanda handles GET /api/demandas/:id
// @Summary Get demanda
// @Tags Demandas
// @Produce json
// @Param id path string true "Demanda ID"
// @Success 200 {object} models.Demanda
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /demandas/{id} [get]
func (h *DemandaHandler) GetDemanda(c *fiber.Ctx) error {
	demanda, err := services.GetDemanda(h.DB, c.Params("id"))
	if err != nil {
		return serviceError(c, err, demandaNotFound, "demandas.get")
	}
	return c.Status(fiber.StatusOK).JSON(demanda)
}

// CreateDemanda handles POST /api/demandas
// @Summary Create demanda
// @Description Assigns the next #YYYY-NNN numero and registers unknown requesters.
// @Tags Demandas
// @Accept mpfd
// @Produce json
// @Param solicitante formData string true "Requester name"
// @Param demanda formData string true "Description"
// @Param referencia_links formData string false "Comma separated links"
// @Param referencia_files formData file false "Reference files"
// @Success 200 {object} models.Demanda
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /demandas [post]
func (h *DemandaHandler) CreateDemanda(c *fiber.Ctx) error {
	in := services.DemandaInput{
		Solicitante: formValue(c, "solicitante"),
		Demanda:     formValue(c, "demanda"),
		Links:       c.FormValue("referencia_links"),
		Files:       fileUploads(multipartFiles(c, "referencia_files")),
	}

	demanda, err := services.CreateDemanda(h.DB, h.Blobs, in, h.Clock.now())
	if err != nil {
		return serviceError(c, err, demandaNotFound, "demandas.create")
	}
	return c.Status(fiber.StatusOK).JSON(demanda)
}

// UpdateDemanda handles PUT /api/demandas/:id
// @Summary Update demanda
// @Description Partial update. Empty fields and unknown statuses are ignored.
// @Tags Demandas
// @Accept mpfd
// @Produce json
// @Param id path string true "Demanda ID"
// @Param solicitante formData string false "Requester name"
// @Param demanda formData string false "Description"
// @Param status formData string false "Status"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /demandas/{id} [put]
func (h *DemandaHandler) UpdateDemanda(c *fiber.Ctx) error {
	u := services.DemandaUpdate{
		Solicitante: formValue(c, "solicitante"),
		Demanda:     formValue(c, "demanda"),
		Status:      formValue(c, "status"),
	}
	if err := services.UpdateDemanda(h.DB, c.Params("id"), u); err != nil {
		return serviceError(c, err, demandaNotFound, "demandas.update")
	}
	return utils.MessageResponse(c, "Demanda atualizada", nil)
}

// UpdateStatus handles PUT /api/demandas/:id/status
// @Summary Update demanda status
// @Tags Demandas
// @Accept mpfd
// @Produce json
// @Param id path string true "Demanda ID"
// @Param status formData string true "Em aberto, Confirmado, Em aprovação or Finalizado"
// @Success 200 {object} utils.StatusResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /demandas/{id}/status [put]
func (h *DemandaHandler) UpdateStatus(c *fiber.Ctx) error {
	status := formValue(c, "status")
	transitions := h.Transitions
	if transitions == nil {
		transitions = models.AnyToAny
	}

	if err := services.UpdateDemandaStatus(h.DB, c.Params("id"), status, transitions); err != nil {
		return serviceError(c, err, demandaNotFound, "demandas.status")
	}
	return utils.MessageResponse(c, "Status atualizado", fiber.Map{"status": status})
}

// AddEntregas handles POST /api/demandas/:id/entregas
// @Summary Add entregas
// @Description Appends deliverables. At least one link or file is required.
// @Tags Demandas
// @Accept mpfd
// @Produce json
// @Param id path string true "Demanda ID"
// @Param entrega_links formData string false "Comma separated links"
// @Param entrega_files formData file false "Delivered files"
// @Success 200 {object} utils.EntregaResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /demandas/{id}/entregas [post]
func (h *DemandaHandler) AddEntregas(c *fiber.Ctx) error {
	files := fileUploads(multipartFiles(c, "entrega_files"))
	total, err := services.AddEntregas(h.DB, h.Blobs, c.Params("id"), c.FormValue("entrega_links"), files, h.Clock.now())
	if err != nil {
		return serviceError(c, err, demandaNotFound, "demandas.entregas")
	}
	return utils.MessageResponse(c, "Entregas adicionadas", fiber.Map{"total": total})
}

// DeleteDemanda handles DELETE /api/demandas/:id
// @Summary Delete demanda
// @Tags Demandas
// @Produce json
// @Param id path string true "Demanda ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /demandas/{id} [delete]
func (h *DemandaHandler) DeleteDemanda(c *fiber.Ctx) error {
	if err := services.DeleteDemanda(h.DB, h.Blobs, c.Params("id")); err != nil {
		return serviceError(c, err, demandaNotFound, "demandas.delete")
	}
	return utils.MessageResponse(c, "Demanda excluída", nil)
}

// WhatsAppText handles GET /api/demandas/:id/whatsapp
// @Summary WhatsApp text
// @Description Plain text summary ready to paste into WhatsApp
// @Tags Demandas
// @Produce json
// @Param id path string true "Demanda ID"
// @Success 200 {object} utils.TextResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /demandas/{id}/whatsapp [get]
func (h *DemandaHandler) WhatsAppText(c *fiber.Ctx) error {
	text, err := services.WhatsAppText(h.DB, c.Params("id"))
	if err != nil {
		return serviceError(c, err, demandaNotFound, "demandas.whatsapp")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"text": text})
}

// ListMonths handles GET /api/months
// @Summary List months
// @Description Every MM/YYYY key with demandas, newest first
// @Tags Demandas
// @Produce json
// @Success 200 {array} string
// @Router /months [get]
func (h *DemandaHandler) ListMonths(c *fiber.Ctx) error {
	months, err := services.ListMonths(h.DB)
	if err != nil {
		return serviceError(c, err, demandaNotFound, "demandas.months")
	}
	return c.Status(fiber.StatusOK).JSON(months)
}

// MonthlyPDF handles GET /api/relatorio/:month/:year/pdf
// @Summary Monthly production PDF
// @Tags Demandas
// @Produce application/pdf
// @Param month path string true "Month 1-12"
// @Param year path string true "Four digit year"
// @Success 200 {file} binary
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /relatorio/{month}/{year}/pdf [get]
func (h *DemandaHandler) MonthlyPDF(c *fiber.Ctx) error {
	key, demandas, err := services.MonthDemandas(h.DB, c.Params("month"), c.Params("year"))
	if err != nil {
		return serviceError(c, err, "Nenhuma demanda encontrada para este mês", "relatorio.pdf")
	}

	out, err := h.PDF.Month(key, demandas)
	if err != nil {
		return serviceError(c, err, demandaNotFound, "relatorio.pdf")
	}
	return utils.AttachmentResponse(c, out, "application/pdf", pdf.MonthFilename(key))
}
