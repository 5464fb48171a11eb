// reports.go
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

const reportNotFound = "Relatório não encontrado"

// ReportHandler handles report (relatório) routes
type ReportHandler struct {
	DB    *gorm.DB
	Blobs *storage.BlobStore
	PDF   *pdf.Renderer
	Clock Clock
}

// ListReports handles GET /api/reports
// @Summary List reports
// @Description List report summaries, newest first. Summaries never carry image_data.
// @Tags Reports
// @Produce json
// @Param search query string false "Case-insensitive text search"
// @Success 200 {array} models.ReportResponse
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /reports [get]
func (h *ReportHandler) ListReports(c *fiber.Ctx) error {
	reports, err := services.ListReports(h.DB, c.Query("search"))
	if err != nil {
		return serviceError(c, err, reportNotFound, "reports.list")
	}

	result := make([]models.ReportResponse, 0, len(reports))
	for i := range reports {
		resp, _ := services.ToReportResponse(h.Blobs, &reports[i], false)
		result = append(result, resp)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// GetReport handles GET /api/reports/:id
// @Summary Get report
// @Description Get a full report including its base64 PNG image
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} models.ReportResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /reports/{id} [get]
func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	report, err := services.GetReport(h.DB, c.Params("id"))
	if err != nil {
		return serviceError(c, err, reportNotFound, "reports.get")
	}

	resp, err := services.ToReportResponse(h.Blobs, report, true)
	if err != nil {
		return serviceError(c, err, reportNotFound, "reports.get")
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// CreateReport handles POST /api/reports
// @Summary Create report
// @Tags Reports
// @Accept mpfd
// @Produce json
// @Param demanda formData string true "Description of the work"
// @Param solicitacao formData string true "Who requested it"
// @Param data formData string false "Date DD/MM/YYYY, defaults to today"
// @Param image formData file false "Image, stored as PNG"
// @Success 200 {object} models.ReportResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /reports [post]
func (h *ReportHandler) CreateReport(c *fiber.Ctx) error {
	in, closeImage, err := h.reportInput(c)
	if err != nil {
		return serviceError(c, err, reportNotFound, "reports.create")
	}
	defer closeImage()

	report, err := services.CreateReport(h.DB, h.Blobs, in, h.Clock.now())
	if err != nil {
		return serviceError(c, err, reportNotFound, "reports.create")
	}

	resp, _ := services.ToReportResponse(h.Blobs, report, false)
	return c.Status(fiber.StatusOK).JSON(resp)
}

// UpdateReport handles PUT /api/reports/:id
// @Summary Update report
// @Description Replace every field. The image is replaced when sent, removed with remove_image=true, kept otherwise.
// @Tags Reports
// @Accept mpfd
// @Produce json
// @Param id path string true "Report ID"
// @Param demanda formData string true "Description of the work"
// @Param solicitacao formData string true "Who requested it"
// @Param data formData string false "Date DD/MM/YYYY"
// @Param image formData file false "Replacement image"
// @Param remove_image formData bool false "Drop the stored image"
// @Success 200 {object} models.ReportResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /reports/{id} [put]
func (h *ReportHandler) UpdateReport(c *fiber.Ctx) error {
	in, closeImage, err := h.reportInput(c)
	if err != nil {
		return serviceError(c, err, reportNotFound, "reports.update")
	}
	defer closeImage()

	report, err := services.UpdateReport(h.DB, h.Blobs, c.Params("id"), in, h.Clock.now())
	if err != nil {
		return serviceError(c, err, reportNotFound, "reports.update")
	}

	resp, _ := services.ToReportResponse(h.Blobs, report, false)
	return c.Status(fiber.StatusOK).JSON(resp)
}

// DeleteReport handles DELETE /api/reports/:id
// @Summary Delete report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /reports/{id} [delete]
func (h *ReportHandler) DeleteReport(c *fiber.Ctx) error {
	if err := services.DeleteReport(h.DB, h.Blobs, c.Params("id")); err != nil {
		return serviceError(c, err, reportNotFound, "reports.delete")
	}
	return utils.MessageResponse(c, "Relatório excluído", nil)
}

// ReportPDF handles GET /api/reports/:id/pdf
// @Summary Report PDF
// @Tags Reports
// @Produce application/pdf
// @Param id path string true "Report ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /reports/{id}/pdf [get]
func (h *ReportHandler) ReportPDF(c *fiber.Ctx) error {
	report, err := services.GetReport(h.DB, c.Params("id"))
	if err != nil {
		return serviceError(c, err, reportNotFound, "reports.pdf")
	}

	img, err := services.ReportImage(h.Blobs, report)
	if err != nil {
		return serviceError(c, err, reportNotFound, "reports.pdf")
	}

	out, err := h.PDF.Report(report, img)
	if err != nil {
		return serviceError(c, err, reportNotFound, "reports.pdf")
	}
	return utils.AttachmentResponse(c, out, "application/pdf", pdf.ReportFilename(report))
}

func (h *ReportHandler) reportInput(c *fiber.Ctx) (services.ReportInput, func(), error) {
	in := services.ReportInput{
		Demanda:     formValue(c, "demanda"),
		Solicitacao: formValue(c, "solicitacao"),
		Data:        formValue(c, "data"),
		RemoveImage: formValue(c, "remove_image") == "true",
	}

	f, err := singleFile(c, "image")
	if err != nil {
		return in, func() {}, err
	}
	if f == nil {
		return in, func() {}, nil
	}
	in.Image = f
	return in, func() { f.Close() }, nil
}
