package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/localnerve/ascom-demandas/internal/models"
)

// ReportPayload is the multipart body of a report create or update.
type ReportPayload struct {
	Demanda     string
	Solicitacao string
	Data        string
	Image       *Upload
	RemoveImage bool
}

func (p ReportPayload) form() *form {
	f := &form{}
	f.set("demanda", p.Demanda)
	f.set("solicitacao", p.Solicitacao)
	f.set("data", p.Data)
	if p.RemoveImage {
		f.set("remove_image", "true")
	}
	if p.Image != nil {
		f.file("image", *p.Image)
	}
	return f
}

// ListReports returns report summaries, optionally filtered by search.
func (c *Client) ListReports(ctx context.Context, search string) ([]models.ReportResponse, error) {
	var query url.Values
	if search != "" {
		query = url.Values{"search": {search}}
	}
	reports := []models.ReportResponse{}
	if err := c.getJSON(ctx, "/reports", query, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// GetReport returns a full report including image_data.
func (c *Client) GetReport(ctx context.Context, id string) (*models.ReportResponse, error) {
	var report models.ReportResponse
	if err := c.getJSON(ctx, "/reports/"+url.PathEscape(id), nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// CreateReport posts a new report.
func (c *Client) CreateReport(ctx context.Context, p ReportPayload) (*models.ReportResponse, error) {
	var report models.ReportResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/reports", p.form(), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// UpdateReport replaces the fields of a report.
func (c *Client) UpdateReport(ctx context.Context, id string, p ReportPayload) (*models.ReportResponse, error) {
	var report models.ReportResponse
	if err := c.sendJSON(ctx, http.MethodPut, "/reports/"+url.PathEscape(id), p.form(), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// DeleteReport removes a report.
func (c *Client) DeleteReport(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/reports/"+url.PathEscape(id), nil, nil)
}

// ReportPDF downloads the PDF of one report.
func (c *Client) ReportPDF(ctx context.Context, id string) (*Download, error) {
	return c.download(ctx, "/reports/"+url.PathEscape(id)+"/pdf", nil, "relatorio.pdf")
}
