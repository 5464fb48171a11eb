package views

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/localnerve/ascom-demandas/internal/client"
	"github.com/localnerve/ascom-demandas/internal/models"
)

var errBoom = errors.New("boom")

type recordNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordNotifier) Success(m string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, m)
}

func (n *recordNotifier) Error(m string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, m)
}

func (n *recordNotifier) lastError() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.errors) == 0 {
		return ""
	}
	return n.errors[len(n.errors)-1]
}

func (n *recordNotifier) lastSuccess() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.successes) == 0 {
		return ""
	}
	return n.successes[len(n.successes)-1]
}

type memClipboard struct {
	text string
	fail bool
}

func (c *memClipboard) Copy(text string) bool {
	if c.fail {
		return false
	}
	c.text = text
	return true
}

type memDownloader struct {
	saved []*client.Download
}

func (d *memDownloader) Save(dl *client.Download) error {
	d.saved = append(d.saved, dl)
	return nil
}

func fixedNow() time.Time {
	return time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
}

// fakeAPI implements both ReportsAPI and DemandasAPI in memory.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error

	// gate blocks ListReports/ListDemandas for the matching search text
	// until released.
	gateKey string
	started chan struct{}
	release chan struct{}

	reports      []models.ReportResponse
	demandas     []models.Demanda
	solicitantes []models.Solicitante
	months       []string

	lastReport  client.ReportPayload
	lastDemanda client.DemandaPayload
	lastStatus  string
	lastLinks   []string
	lastFiles   []client.Upload
	lastPeriod  [2]string
	nextNumero  int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{fail: map[string]error{}}
}

func (f *fakeAPI) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.fail[name]
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) wait(key string) {
	if f.gateKey != "" && key == f.gateKey {
		close(f.started)
		<-f.release
	}
}

func (f *fakeAPI) ListReports(ctx context.Context, search string) ([]models.ReportResponse, error) {
	if err := f.record("ListReports"); err != nil {
		return nil, err
	}
	f.wait(search)
	if search == "" {
		return f.reports, nil
	}
	return []models.ReportResponse{{ID: "search-" + search}}, nil
}

func (f *fakeAPI) GetReport(ctx context.Context, id string) (*models.ReportResponse, error) {
	if err := f.record("GetReport"); err != nil {
		return nil, err
	}
	for _, r := range f.reports {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Message: "Relatório não encontrado"}
}

func (f *fakeAPI) CreateReport(ctx context.Context, p client.ReportPayload) (*models.ReportResponse, error) {
	if err := f.record("CreateReport"); err != nil {
		return nil, err
	}
	f.lastReport = p
	r := models.ReportResponse{ID: "r-new", Demanda: p.Demanda, Solicitacao: p.Solicitacao, Data: p.Data}
	f.reports = append(f.reports, r)
	return &r, nil
}

func (f *fakeAPI) UpdateReport(ctx context.Context, id string, p client.ReportPayload) (*models.ReportResponse, error) {
	if err := f.record("UpdateReport"); err != nil {
		return nil, err
	}
	f.lastReport = p
	return &models.ReportResponse{ID: id}, nil
}

func (f *fakeAPI) DeleteReport(ctx context.Context, id string) error {
	return f.record("DeleteReport")
}

func (f *fakeAPI) ReportPDF(ctx context.Context, id string) (*client.Download, error) {
	if err := f.record("ReportPDF"); err != nil {
		return nil, err
	}
	return &client.Download{Filename: "relatorio.pdf", ContentType: "application/pdf", Data: []byte("%PDF-")}, nil
}

func (f *fakeAPI) ListDemandas(ctx context.Context, filter client.DemandaFilter) ([]models.Demanda, error) {
	if err := f.record("ListDemandas"); err != nil {
		return nil, err
	}
	f.wait(filter.Search)
	if filter.Search != "" {
		return []models.Demanda{{ID: "search-" + filter.Search}}, nil
	}
	return f.demandas, nil
}

func (f *fakeAPI) GetDemanda(ctx context.Context, id string) (*models.Demanda, error) {
	if err := f.record("GetDemanda"); err != nil {
		return nil, err
	}
	for _, d := range f.demandas {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Message: "Demanda não encontrada"}
}

func (f *fakeAPI) CreateDemanda(ctx context.Context, p client.DemandaPayload) (*models.Demanda, error) {
	if err := f.record("CreateDemanda"); err != nil {
		return nil, err
	}
	f.lastDemanda = p
	f.nextNumero++
	d := models.Demanda{
		ID:          "d-new",
		Numero:      fmt.Sprintf("#2024-%03d", f.nextNumero),
		Solicitante: p.Solicitante,
		Demanda:     p.Demanda,
		Status:      models.StatusEmAberto,
	}
	f.demandas = append(f.demandas, d)
	return &d, nil
}

func (f *fakeAPI) UpdateStatus(ctx context.Context, id, status string) error {
	if err := f.record("UpdateStatus"); err != nil {
		return err
	}
	f.lastStatus = status
	for i := range f.demandas {
		if f.demandas[i].ID == id {
			f.demandas[i].Status = status
		}
	}
	return nil
}

func (f *fakeAPI) AddEntregas(ctx context.Context, id string, links []string, files []client.Upload) (int, error) {
	if err := f.record("AddEntregas"); err != nil {
		return 0, err
	}
	f.lastLinks = links
	f.lastFiles = files
	return len(links) + len(files), nil
}

func (f *fakeAPI) DeleteDemanda(ctx context.Context, id string) error {
	return f.record("DeleteDemanda")
}

func (f *fakeAPI) WhatsAppText(ctx context.Context, id string) (string, error) {
	if err := f.record("WhatsAppText"); err != nil {
		return "", err
	}
	return "*Demanda " + id + "*", nil
}

func (f *fakeAPI) ListMonths(ctx context.Context) ([]string, error) {
	if err := f.record("ListMonths"); err != nil {
		return nil, err
	}
	return f.months, nil
}

func (f *fakeAPI) MonthlyPDF(ctx context.Context, month, year string) (*client.Download, error) {
	if err := f.record("MonthlyPDF"); err != nil {
		return nil, err
	}
	f.lastPeriod = [2]string{month, year}
	return &client.Download{Filename: "relatorio_" + month + "-" + year + ".pdf", Data: []byte("%PDF-")}, nil
}

func (f *fakeAPI) ListSolicitantes(ctx context.Context) ([]models.Solicitante, error) {
	if err := f.record("ListSolicitantes"); err != nil {
		return nil, err
	}
	return f.solicitantes, nil
}

func (f *fakeAPI) CreateSolicitante(ctx context.Context, nome string) (*models.Solicitante, error) {
	if err := f.record("CreateSolicitante"); err != nil {
		return nil, err
	}
	s := models.Solicitante{ID: "s-" + nome, Nome: nome}
	f.solicitantes = append(f.solicitantes, s)
	return &s, nil
}
