package views

import (
	"context"
	"strings"

	"github.com/localnerve/ascom-demandas/internal/client"
	"github.com/localnerve/ascom-demandas/internal/format"
	"github.com/localnerve/ascom-demandas/internal/models"
)

// ReportsAPI is the part of the API client the reports view uses.
type ReportsAPI interface {
	ListReports(ctx context.Context, search string) ([]models.ReportResponse, error)
	GetReport(ctx context.Context, id string) (*models.ReportResponse, error)
	CreateReport(ctx context.Context, p client.ReportPayload) (*models.ReportResponse, error)
	UpdateReport(ctx context.Context, id string, p client.ReportPayload) (*models.ReportResponse, error)
	DeleteReport(ctx context.Context, id string) error
	ReportPDF(ctx context.Context, id string) (*client.Download, error)
}

// ReportForm is the create/edit buffer. ExistingImage holds the base64 PNG
// of the report being edited while the user keeps it.
type ReportForm struct {
	Demanda       string
	Solicitacao   string
	Data          string
	Image         *client.Upload
	ImagePreview  string
	ExistingImage string
}

// ReportsState is everything the reports screen shows.
type ReportsState struct {
	Reports  []models.ReportResponse
	Search   string
	FormOpen bool
	Editing  string
	Form     ReportForm
	Preview  *models.ReportResponse
}

// Heading is the month title of the form date, e.g. "Março / 2024".
func (s ReportsState) Heading() string {
	return format.DateMonthHeading(s.Form.Data)
}

// ReportsView drives the reports screen.
type ReportsView struct {
	api  ReportsAPI
	env  Env
	gens generations
	st   guarded[ReportsState]
}

func NewReportsView(api ReportsAPI, env Env) *ReportsView {
	v := &ReportsView{api: api, env: env.withDefaults()}
	v.st.state.Form = v.blankForm()
	return v
}

// State returns a copy of the current state.
func (v *ReportsView) State() ReportsState {
	return v.st.get()
}

func (v *ReportsView) blankForm() ReportForm {
	return ReportForm{Data: format.Date(v.env.Now())}
}

// Load fetches the report list for the current search. A response that
// arrives after a newer Load started is dropped.
func (v *ReportsView) Load(ctx context.Context) error {
	gen := v.gens.next()
	search := v.State().Search

	reports, err := v.api.ListReports(ctx, search)
	if err != nil {
		if v.gens.current(gen) {
			v.env.Notifier.Error("Erro ao carregar relatórios")
		}
		return err
	}

	v.st.update(func(s *ReportsState) {
		if v.gens.current(gen) {
			s.Reports = reports
		}
	})
	return nil
}

// SetSearch changes the search text and reloads.
func (v *ReportsView) SetSearch(ctx context.Context, search string) error {
	v.st.update(func(s *ReportsState) { s.Search = search })
	return v.Load(ctx)
}

// OpenNew opens an empty form dated today.
func (v *ReportsView) OpenNew() {
	form := v.blankForm()
	v.st.update(func(s *ReportsState) {
		s.FormOpen = true
		s.Editing = ""
		s.Form = form
	})
}

// OpenEdit loads the full report and opens it in the form, keeping its
// image.
func (v *ReportsView) OpenEdit(ctx context.Context, id string) error {
	report, err := v.api.GetReport(ctx, id)
	if err != nil {
		v.env.Notifier.Error("Erro ao carregar relatório")
		return err
	}

	v.st.update(func(s *ReportsState) {
		s.FormOpen = true
		s.Editing = report.ID
		s.Form = ReportForm{
			Demanda:       report.Demanda,
			Solicitacao:   report.Solicitacao,
			Data:          report.Data,
			ExistingImage: report.ImageData,
		}
		if report.ImageData != "" {
			s.Form.ImagePreview = "data:image/png;base64," + report.ImageData
		}
	})
	return nil
}

// SetFields updates the text fields of the form.
func (v *ReportsView) SetFields(demanda, solicitacao, data string) {
	v.st.update(func(s *ReportsState) {
		s.Form.Demanda = demanda
		s.Form.Solicitacao = solicitacao
		s.Form.Data = data
	})
}

// ChooseImage selects a new image for upload.
func (v *ReportsView) ChooseImage(u client.Upload, preview string) {
	v.st.update(func(s *ReportsState) {
		s.Form.Image = &u
		s.Form.ImagePreview = preview
	})
}

// RemoveImage drops both a chosen and an existing image.
func (v *ReportsView) RemoveImage() {
	v.st.update(func(s *ReportsState) {
		s.Form.Image = nil
		s.Form.ImagePreview = ""
		s.Form.ExistingImage = ""
	})
}

// CloseForm discards the form buffer.
func (v *ReportsView) CloseForm() {
	form := v.blankForm()
	v.st.update(func(s *ReportsState) {
		s.FormOpen = false
		s.Editing = ""
		s.Form = form
	})
}

// reportPayload builds the request body. remove_image is set only when editing
// with neither a new nor a kept image.
func reportPayload(editing string, f ReportForm) client.ReportPayload {
	return client.ReportPayload{
		Demanda:     f.Demanda,
		Solicitacao: f.Solicitacao,
		Data:        f.Data,
		Image:       f.Image,
		RemoveImage: editing != "" && f.Image == nil && f.ExistingImage == "",
	}
}

// Submit validates and sends the form. Validation failures send nothing.
func (v *ReportsView) Submit(ctx context.Context) error {
	st := v.State()
	if strings.TrimSpace(st.Form.Demanda) == "" || strings.TrimSpace(st.Form.Solicitacao) == "" {
		v.env.Notifier.Error("Preencha todos os campos obrigatórios")
		return invalid("Preencha todos os campos obrigatórios")
	}

	p := reportPayload(st.Editing, st.Form)
	var err error
	if st.Editing != "" {
		_, err = v.api.UpdateReport(ctx, st.Editing, p)
	} else {
		_, err = v.api.CreateReport(ctx, p)
	}
	if err != nil {
		v.env.Notifier.Error("Erro ao salvar relatório")
		return err
	}

	if st.Editing != "" {
		v.env.Notifier.Success("Relatório atualizado!")
	} else {
		v.env.Notifier.Success("Relatório criado!")
	}
	v.CloseForm()
	return v.Load(ctx)
}

// Delete removes a report after confirmation.
func (v *ReportsView) Delete(ctx context.Context, id string) error {
	if !v.env.Confirm("Tem certeza que deseja excluir este relatório?") {
		return nil
	}
	if err := v.api.DeleteReport(ctx, id); err != nil {
		v.env.Notifier.Error("Erro ao excluir relatório")
		return err
	}
	v.env.Notifier.Success("Relatório excluído!")
	return v.Load(ctx)
}

// OpenPreview shows a full report.
func (v *ReportsView) OpenPreview(ctx context.Context, id string) error {
	report, err := v.api.GetReport(ctx, id)
	if err != nil {
		v.env.Notifier.Error("Erro ao carregar relatório")
		return err
	}
	v.st.update(func(s *ReportsState) { s.Preview = report })
	return nil
}

// ClosePreview hides the preview.
func (v *ReportsView) ClosePreview() {
	v.st.update(func(s *ReportsState) { s.Preview = nil })
}

// DownloadPDF fetches the PDF of a report and hands it to the downloader.
func (v *ReportsView) DownloadPDF(ctx context.Context, id string) error {
	d, err := v.api.ReportPDF(ctx, id)
	if err == nil {
		err = v.env.save(d)
	}
	if err != nil {
		v.env.Notifier.Error("Erro ao gerar PDF")
		return err
	}
	v.env.Notifier.Success("PDF baixado!")
	return nil
}
