package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/localnerve/ascom-demandas/internal/format"
	"github.com/localnerve/ascom-demandas/internal/models"
)

// DemandaFilter holds the list filters. Empty dimensions are left out of
// the query string entirely.
type DemandaFilter struct {
	Month       string
	Year        string
	Status      string
	Solicitante string
	Search      string
}

// Query encodes the non-empty dimensions.
func (f DemandaFilter) Query() url.Values {
	q := url.Values{}
	add := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			q.Set(key, v)
		}
	}
	add("month", f.Month)
	add("year", f.Year)
	add("status", f.Status)
	add("solicitante", f.Solicitante)
	add("search", f.Search)
	return q
}

// Active reports whether any dimension is set.
func (f DemandaFilter) Active() bool {
	return len(f.Query()) > 0
}

// DemandaPayload is the multipart body of a demanda creation.
type DemandaPayload struct {
	Solicitante string
	Demanda     string
	Links       []string
	Files       []Upload
}

// DemandaPatch is a partial update; empty fields are not sent.
type DemandaPatch struct {
	Solicitante string
	Demanda     string
	Status      string
}

// ListDemandas returns the demandas matching f, newest first.
func (c *Client) ListDemandas(ctx context.Context, f DemandaFilter) ([]models.Demanda, error) {
	demandas := []models.Demanda{}
	if err := c.getJSON(ctx, "/demandas", f.Query(), &demandas); err != nil {
		return nil, err
	}
	return demandas, nil
}

// GetDemanda returns one demanda.
func (c *Client) GetDemanda(ctx context.Context, id string) (*models.Demanda, error) {
	var d models.Demanda
	if err := c.getJSON(ctx, "/demandas/"+url.PathEscape(id), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDemanda posts a new demanda and returns it with its numero.
func (c *Client) CreateDemanda(ctx context.Context, p DemandaPayload) (*models.Demanda, error) {
	f := &form{}
	f.set("solicitante", p.Solicitante)
	f.set("demanda", p.Demanda)
	if links := format.JoinLinks(p.Links); links != "" {
		f.set("referencia_links", links)
	}
	for _, u := range p.Files {
		f.file("referencia_files", u)
	}

	var d models.Demanda
	if err := c.sendJSON(ctx, http.MethodPost, "/demandas", f, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDemanda sends a partial update.
func (c *Client) UpdateDemanda(ctx context.Context, id string, p DemandaPatch) error {
	f := &form{}
	if p.Solicitante != "" {
		f.set("solicitante", p.Solicitante)
	}
	if p.Demanda != "" {
		f.set("demanda", p.Demanda)
	}
	if p.Status != "" {
		f.set("status", p.Status)
	}
	return c.sendJSON(ctx, http.MethodPut, "/demandas/"+url.PathEscape(id), f, nil)
}

// UpdateStatus sets the status of a demanda.
func (c *Client) UpdateStatus(ctx context.Context, id, status string) error {
	f := &form{}
	f.set("status", status)
	return c.sendJSON(ctx, http.MethodPut, "/demandas/"+url.PathEscape(id)+"/status", f, nil)
}

// AddEntregas appends links and files and returns the new entrega count.
func (c *Client) AddEntregas(ctx context.Context, id string, links []string, files []Upload) (int, error) {
	f := &form{}
	if joined := format.JoinLinks(links); joined != "" {
		f.set("entrega_links", joined)
	}
	for _, u := range files {
		f.file("entrega_files", u)
	}

	var resp struct {
		Total int `json:"total"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/demandas/"+url.PathEscape(id)+"/entregas", f, &resp); err != nil {
		return 0, err
	}
	return resp.Total, nil
}

// DeleteDemanda removes a demanda.
func (c *Client) DeleteDemanda(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/demandas/"+url.PathEscape(id), nil, nil)
}

// WhatsAppText returns the shareable text of a demanda.
func (c *Client) WhatsAppText(ctx context.Context, id string) (string, error) {
	var resp struct {
		Text string `json:"text"`
	}
	if err := c.getJSON(ctx, "/demandas/"+url.PathEscape(id)+"/whatsapp", nil, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// ListMonths returns the MM/YYYY keys that have demandas.
func (c *Client) ListMonths(ctx context.Context) ([]string, error) {
	months := []string{}
	if err := c.getJSON(ctx, "/months", nil, &months); err != nil {
		return nil, err
	}
	return months, nil
}

// MonthlyPDF downloads the production report of a month.
func (c *Client) MonthlyPDF(ctx context.Context, month, year string) (*Download, error) {
	path := "/relatorio/" + url.PathEscape(month) + "/" + url.PathEscape(year) + "/pdf"
	return c.download(ctx, path, nil, "relatorio.pdf")
}

// DownloadFile fetches a stored reference or entrega file.
func (c *Client) DownloadFile(ctx context.Context, a models.Attachment) (*Download, error) {
	var query url.Values
	if a.Filename != "" {
		query = url.Values{"filename": {a.Filename}}
	}
	return c.download(ctx, "/files/"+a.Blob, query, a.Filename)
}

// ListSolicitantes returns every requester sorted by name.
func (c *Client) ListSolicitantes(ctx context.Context) ([]models.Solicitante, error) {
	solicitantes := []models.Solicitante{}
	if err := c.getJSON(ctx, "/solicitantes", nil, &solicitantes); err != nil {
		return nil, err
	}
	return solicitantes, nil
}

// CreateSolicitante registers a requester, returning the existing one when
// the name is already known.
func (c *Client) CreateSolicitante(ctx context.Context, nome string) (*models.Solicitante, error) {
	f := &form{}
	f.set("nome", nome)
	var s models.Solicitante
	if err := c.sendJSON(ctx, http.MethodPost, "/solicitantes", f, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
