// pdf.go
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

// Package pdf renders the production reports handed to the secretary:
// a single report sheet and the monthly demandas summary.
package pdf

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
	"github.com/localnerve/ascom-demandas/internal/format"
	"github.com/localnerve/ascom-demandas/internal/models"
)

// Image boxes are 12 x 8 cm.
const (
	maxImageWidth  = 120.0
	maxImageHeight = 80.0
	margin         = 20.0
	// Pixel cap applied before embedding, roughly 250 dpi at the box size
	maxImagePixels = 1200
)

// Header is the author block printed under the title.
type Header struct {
	AuthorName   string
	AuthorRole   string
	Secretary    string
	Organization string
}

// ImageSource resolves stored attachment bytes.
type ImageSource interface {
	ReadAll(key string) ([]byte, error)
}

// Renderer builds PDF documents. Images may be nil when no attachment
// images should be embedded.
type Renderer struct {
	Header Header
	Images ImageSource
}

// document wraps fpdf with the cp1252 translator every string needs.
type document struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	images int
}

func newDocument() *document {
	p := fpdf.New("P", "mm", "A4", "")
	p.SetMargins(margin, margin, margin)
	p.SetAutoPageBreak(true, margin)
	p.SetCreator("ascom-demandas", true)
	p.AddPage()
	return &document{pdf: p, tr: p.UnicodeTranslatorFromDescriptor("")}
}

func (d *document) title(text string) {
	d.pdf.SetFont("Times", "B", 18)
	d.pdf.CellFormat(0, 9, d.tr(text), "", 1, "C", false, 0, "")
}

func (d *document) centered(text string) {
	d.pdf.SetFont("Times", "", 11)
	d.pdf.CellFormat(0, 6, d.tr(text), "", 1, "C", false, 0, "")
}

func (d *document) header(h Header) {
	d.pdf.Ln(4)
	d.centered("Nome: " + h.AuthorName)
	d.centered("Cargo: " + h.AuthorRole)
	d.centered("Secretária: " + h.Secretary)
	d.centered(h.Organization)
	d.pdf.Ln(7)
}

func (d *document) section(text string) {
	d.pdf.Ln(5)
	d.pdf.SetFont("Times", "B", 12)
	d.pdf.MultiCell(0, 6, d.tr(text), "", "L", false)
	d.pdf.Ln(1)
}

// field prints "<label>: <value>" with a bold label.
func (d *document) field(label, value string) {
	d.pdf.SetFont("Times", "B", 10)
	d.pdf.Write(5, d.tr(label+": "))
	d.pdf.SetFont("Times", "", 10)
	d.pdf.Write(5, d.tr(value))
	d.pdf.Ln(7)
}

func (d *document) body(text string) {
	d.pdf.SetFont("Times", "", 10)
	d.pdf.MultiCell(0, 5, d.tr(text), "", "L", false)
	d.pdf.Ln(2)
}

func (d *document) small(text string) {
	d.pdf.SetFont("Times", "", 9)
	d.pdf.SetTextColor(128, 128, 128)
	d.pdf.MultiCell(0, 4.5, d.tr(text), "", "L", false)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.Ln(1)
}

func (d *document) rule() {
	y := d.pdf.GetY() + 2
	w, _ := d.pdf.GetPageSize()
	d.pdf.SetDrawColor(160, 160, 160)
	d.pdf.Line(margin, y, w-margin, y)
	d.pdf.SetY(y + 2)
}

// image embeds raw image bytes scaled to fit the 12 x 8 cm box. Bytes that
// do not decode are skipped and reported.
func (d *document) image(raw []byte) error {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	img = fitPixels(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return fmt.Errorf("encode image: %w", err)
	}

	d.images++
	name := fmt.Sprintf("img%d", d.images)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader(name, opts, &buf)

	w, h := FitBox(img.Bounds().Dx(), img.Bounds().Dy(), maxImageWidth, maxImageHeight)
	d.pdf.Ln(2)
	d.pdf.ImageOptions(name, margin, -1, w, h, true, opts, 0, "")
	d.pdf.Ln(2)
	return d.pdf.Error()
}

func (d *document) bytes() ([]byte, error) {
	var out bytes.Buffer
	if err := d.pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return out.Bytes(), nil
}

func fitPixels(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxImagePixels && b.Dy() <= maxImagePixels {
		return img
	}
	return imaging.Fit(img, maxImagePixels, maxImagePixels, imaging.Lanczos)
}

// FitBox scales a width x height image to fit inside maxW x maxH keeping its
// aspect ratio. Images are scaled up as well as down.
func FitBox(width, height int, maxW, maxH float64) (float64, float64) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	ratio := min(maxW/float64(width), maxH/float64(height))
	return float64(width) * ratio, float64(height) * ratio
}

// Report renders a single report with its optional image.
func (r *Renderer) Report(report *models.Report, img []byte) ([]byte, error) {
	d := newDocument()
	d.title("Relatório de Produção")
	d.title(format.DateMonthHeading(report.Data))
	d.header(r.Header)

	d.field("Data", report.Data)
	d.field("Solicitação", report.Solicitacao)
	d.section("Demanda")
	d.body(report.Demanda)

	if len(img) > 0 {
		if err := d.image(img); err != nil {
			return nil, err
		}
	}
	return d.bytes()
}

// Month renders the production summary for the demandas of one month,
// which must already be in creation order.
func (r *Renderer) Month(key string, demandas []models.Demanda) ([]byte, error) {
	d := newDocument()
	d.title("Relatório de Produção")
	d.title(format.MonthKeyLong(key))
	d.header(r.Header)

	finalizadas := 0
	for i := range demandas {
		if demandas[i].Finalizada() {
			finalizadas++
		}
	}
	d.body(fmt.Sprintf("Total de demandas: %d | Finalizadas: %d", len(demandas), finalizadas))
	d.pdf.Ln(5)

	for i := range demandas {
		r.demanda(d, &demandas[i])
	}
	return d.bytes()
}

func (r *Renderer) demanda(d *document, dem *models.Demanda) {
	d.rule()
	d.section(dem.Numero + " - " + dem.Solicitante)
	d.small("Status: " + dem.Status)
	d.field("Demanda", dem.Demanda)

	if len(dem.Referencias) > 0 {
		refs := make([]string, 0, len(dem.Referencias))
		for _, ref := range dem.Referencias {
			refs = append(refs, referenceLabel(ref))
		}
		d.small("Referências: " + strings.Join(refs, "; "))
	}

	if len(dem.Entregas) == 0 {
		return
	}
	d.body("Entregas:")
	for _, e := range dem.Entregas {
		d.small("• " + referenceLabel(e))
		if !e.IsImage() || r.Images == nil {
			continue
		}
		raw, err := r.Images.ReadAll(e.Blob)
		if err != nil {
			d.small("(imagem indisponível)")
			continue
		}
		if err := d.image(raw); err != nil {
			d.small("(imagem indisponível)")
		}
	}
	d.pdf.Ln(3)
}

func referenceLabel(a models.Attachment) string {
	if a.Type == models.AttachmentLink {
		return "Link: " + a.URL
	}
	return "Arquivo: " + a.Filename
}

// MonthFilename is the download name of a monthly PDF, e.g.
// relatorio_03-2024.pdf.
func MonthFilename(key string) string {
	return "relatorio_" + strings.ReplaceAll(key, "/", "-") + ".pdf"
}

// ReportFilename is the download name of a single report PDF.
func ReportFilename(report *models.Report) string {
	if format.ValidDate(report.Data) {
		return "relatorio_" + strings.ReplaceAll(report.Data, "/", "-") + ".pdf"
	}
	return "relatorio.pdf"
}
