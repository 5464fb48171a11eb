package views

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/localnerve/ascom-demandas/internal/client"
	"github.com/localnerve/ascom-demandas/internal/format"
	"github.com/localnerve/ascom-demandas/internal/models"
)

// DemandasAPI is the part of the API client the demandas view uses.
type DemandasAPI interface {
	ListDemandas(ctx context.Context, f client.DemandaFilter) ([]models.Demanda, error)
	GetDemanda(ctx context.Context, id string) (*models.Demanda, error)
	CreateDemanda(ctx context.Context, p client.DemandaPayload) (*models.Demanda, error)
	UpdateStatus(ctx context.Context, id, status string) error
	AddEntregas(ctx context.Context, id string, links []string, files []client.Upload) (int, error)
	DeleteDemanda(ctx context.Context, id string) error
	WhatsAppText(ctx context.Context, id string) (string, error)
	ListMonths(ctx context.Context) ([]string, error)
	MonthlyPDF(ctx context.Context, month, year string) (*client.Download, error)
	ListSolicitantes(ctx context.Context) ([]models.Solicitante, error)
	CreateSolicitante(ctx context.Context, nome string) (*models.Solicitante, error)
}

// DemandaForm is the creation buffer. Links is the comma separated text
// typed by the user.
type DemandaForm struct {
	Solicitante string
	Demanda     string
	Links       string
	Files       []client.Upload
}

// EntregaForm is the buffer for appending deliverables to one demanda.
type EntregaForm struct {
	DemandaID string
	Links     string
	Files     []client.Upload
}

// DemandasState is everything the demandas screen shows.
type DemandasState struct {
	Demandas     []models.Demanda
	Solicitantes []models.Solicitante
	Months       []string
	Filter       client.DemandaFilter
	FormOpen     bool
	Form         DemandaForm
	// Created is the confirmation shown after a successful creation.
	Created *models.Demanda
	Entrega *EntregaForm
	Detail  *models.Demanda
}

// DemandasView drives the demandas screen.
type DemandasView struct {
	api  DemandasAPI
	env  Env
	gens generations
	st   guarded[DemandasState]
}

func NewDemandasView(api DemandasAPI, env Env) *DemandasView {
	return &DemandasView{api: api, env: env.withDefaults()}
}

// State returns a copy of the current state.
func (v *DemandasView) State() DemandasState {
	return v.st.get()
}

// Init loads requesters, months and the demanda list.
func (v *DemandasView) Init(ctx context.Context) error {
	if err := v.LoadSolicitantes(ctx); err != nil {
		return err
	}
	if err := v.LoadMonths(ctx); err != nil {
		return err
	}
	return v.Load(ctx)
}

// Load fetches the demandas matching the current filter. A response that
// arrives after a newer Load started is dropped.
func (v *DemandasView) Load(ctx context.Context) error {
	gen := v.gens.next()
	filter := v.State().Filter

	demandas, err := v.api.ListDemandas(ctx, filter)
	if err != nil {
		if v.gens.current(gen) {
			v.env.Notifier.Error("Erro ao carregar demandas")
		}
		return err
	}

	v.st.update(func(s *DemandasState) {
		if v.gens.current(gen) {
			s.Demandas = demandas
		}
	})
	return nil
}

// LoadSolicitantes refreshes the requester list.
func (v *DemandasView) LoadSolicitantes(ctx context.Context) error {
	solicitantes, err := v.api.ListSolicitantes(ctx)
	if err != nil {
		v.env.Notifier.Error("Erro ao carregar solicitantes")
		return err
	}
	v.st.update(func(s *DemandasState) { s.Solicitantes = solicitantes })
	return nil
}

// LoadMonths refreshes the months offered by the month filter.
func (v *DemandasView) LoadMonths(ctx context.Context) error {
	months, err := v.api.ListMonths(ctx)
	if err != nil {
		v.env.Notifier.Error("Erro ao carregar meses")
		return err
	}
	v.st.update(func(s *DemandasState) { s.Months = months })
	return nil
}

// SetFilter replaces the filter and reloads.
func (v *DemandasView) SetFilter(ctx context.Context, f client.DemandaFilter) error {
	v.st.update(func(s *DemandasState) { s.Filter = f })
	return v.Load(ctx)
}

// ClearFilter removes every filter and reloads.
func (v *DemandasView) ClearFilter(ctx context.Context) error {
	return v.SetFilter(ctx, client.DemandaFilter{})
}

// OpenForm opens an empty creation form.
func (v *DemandasView) OpenForm() {
	v.st.update(func(s *DemandasState) {
		s.FormOpen = true
		s.Form = DemandaForm{}
		s.Created = nil
	})
}

// CloseForm discards the creation form.
func (v *DemandasView) CloseForm() {
	v.st.update(func(s *DemandasState) {
		s.FormOpen = false
		s.Form = DemandaForm{}
	})
}

// SetForm replaces the creation buffer.
func (v *DemandasView) SetForm(f DemandaForm) {
	v.st.update(func(s *DemandasState) { s.Form = f })
}

// AddSolicitante registers a requester, adds it to the sorted local list
// and selects it in the form.
func (v *DemandasView) AddSolicitante(ctx context.Context, nome string) error {
	nome = strings.TrimSpace(nome)
	if nome == "" {
		v.env.Notifier.Error("Informe o nome do solicitante")
		return invalid("Informe o nome do solicitante")
	}

	created, err := v.api.CreateSolicitante(ctx, nome)
	if err != nil {
		v.env.Notifier.Error("Erro ao adicionar solicitante")
		return err
	}

	v.st.update(func(s *DemandasState) {
		list := slices.Clone(s.Solicitantes)
		if !slices.ContainsFunc(list, func(x models.Solicitante) bool { return x.ID == created.ID }) {
			list = append(list, *created)
		}
		slices.SortStableFunc(list, func(a, b models.Solicitante) int {
			return strings.Compare(strings.ToLower(a.Nome), strings.ToLower(b.Nome))
		})
		s.Solicitantes = list
		s.Form.Solicitante = created.Nome
	})
	v.env.Notifier.Success("Solicitante adicionado!")
	return nil
}

// Submit validates and creates the demanda. On success the confirmation
// with the assigned numero replaces the form.
func (v *DemandasView) Submit(ctx context.Context) error {
	form := v.State().Form
	if strings.TrimSpace(form.Solicitante) == "" || strings.TrimSpace(form.Demanda) == "" {
		v.env.Notifier.Error("Preencha todos os campos obrigatórios")
		return invalid("Preencha todos os campos obrigatórios")
	}

	created, err := v.api.CreateDemanda(ctx, client.DemandaPayload{
		Solicitante: form.Solicitante,
		Demanda:     form.Demanda,
		Links:       format.SplitLinks(form.Links),
		Files:       form.Files,
	})
	if err != nil {
		v.env.Notifier.Error("Erro ao criar demanda")
		return err
	}

	v.st.update(func(s *DemandasState) {
		s.FormOpen = false
		s.Form = DemandaForm{}
		s.Created = created
	})
	v.env.Notifier.Success("Demanda criada!")

	// A new requester or month may have appeared. Failures are already
	// notified and must not hide the created numero.
	_ = v.LoadSolicitantes(ctx)
	_ = v.LoadMonths(ctx)
	return v.Load(ctx)
}

// CopyNumero copies the numero shown in the confirmation.
func (v *DemandasView) CopyNumero() bool {
	created := v.State().Created
	if created == nil {
		return false
	}
	return v.copy(created.Numero, "Número copiado!")
}

// DismissConfirmation hides the creation confirmation.
func (v *DemandasView) DismissConfirmation() {
	v.st.update(func(s *DemandasState) { s.Created = nil })
}

// SetStatus sends the new status and reloads. Nothing changes locally
// until the server answers.
func (v *DemandasView) SetStatus(ctx context.Context, id, status string) error {
	if err := v.api.UpdateStatus(ctx, id, status); err != nil {
		v.env.Notifier.Error("Erro ao atualizar status")
		return err
	}
	v.env.Notifier.Success("Status atualizado!")
	return v.reloadAfter(ctx, id)
}

// OpenEntrega opens the deliverable form for a demanda.
func (v *DemandasView) OpenEntrega(id string) {
	v.st.update(func(s *DemandasState) { s.Entrega = &EntregaForm{DemandaID: id} })
}

// SetEntrega replaces the deliverable buffer.
func (v *DemandasView) SetEntrega(links string, files []client.Upload) {
	v.st.update(func(s *DemandasState) {
		if s.Entrega != nil {
			e := *s.Entrega
			e.Links = links
			e.Files = files
			s.Entrega = &e
		}
	})
}

// CloseEntrega discards the deliverable form.
func (v *DemandasView) CloseEntrega() {
	v.st.update(func(s *DemandasState) { s.Entrega = nil })
}

// SubmitEntrega sends the deliverables. At least one link or file is
// required.
func (v *DemandasView) SubmitEntrega(ctx context.Context) error {
	entrega := v.State().Entrega
	if entrega == nil {
		return invalid("Nenhuma demanda selecionada")
	}
	links := format.SplitLinks(entrega.Links)
	if len(links) == 0 && len(entrega.Files) == 0 {
		v.env.Notifier.Error("Adicione ao menos um link ou arquivo")
		return invalid("Adicione ao menos um link ou arquivo")
	}

	if _, err := v.api.AddEntregas(ctx, entrega.DemandaID, links, entrega.Files); err != nil {
		v.env.Notifier.Error("Erro ao adicionar entrega")
		return err
	}

	v.CloseEntrega()
	v.env.Notifier.Success("Entrega adicionada!")
	return v.reloadAfter(ctx, entrega.DemandaID)
}

// Delete removes a demanda after confirmation.
func (v *DemandasView) Delete(ctx context.Context, id string) error {
	if !v.env.Confirm("Tem certeza que deseja excluir esta demanda?") {
		return nil
	}
	if err := v.api.DeleteDemanda(ctx, id); err != nil {
		v.env.Notifier.Error("Erro ao excluir demanda")
		return err
	}
	v.env.Notifier.Success("Demanda excluída!")
	v.st.update(func(s *DemandasState) {
		if s.Detail != nil && s.Detail.ID == id {
			s.Detail = nil
		}
	})
	// The month may now be empty; a failure is already notified
	_ = v.LoadMonths(ctx)
	return v.Load(ctx)
}

// OpenDetail loads one demanda for the detail panel.
func (v *DemandasView) OpenDetail(ctx context.Context, id string) error {
	d, err := v.api.GetDemanda(ctx, id)
	if err != nil {
		v.env.Notifier.Error("Erro ao carregar demanda")
		return err
	}
	v.st.update(func(s *DemandasState) { s.Detail = d })
	return nil
}

// CloseDetail hides the detail panel.
func (v *DemandasView) CloseDetail() {
	v.st.update(func(s *DemandasState) { s.Detail = nil })
}

// reloadAfter refreshes the list after a mutation of id, then the detail
// panel when it shows id. The list reload never depends on the detail.
func (v *DemandasView) reloadAfter(ctx context.Context, id string) error {
	listErr := v.Load(ctx)
	return errors.Join(listErr, v.refreshDetail(ctx, id))
}

func (v *DemandasView) refreshDetail(ctx context.Context, id string) error {
	detail := v.State().Detail
	if detail == nil || detail.ID != id {
		return nil
	}
	return v.OpenDetail(ctx, id)
}

// CopyWhatsApp fetches the WhatsApp text of a demanda and copies it.
func (v *DemandasView) CopyWhatsApp(ctx context.Context, id string) (bool, error) {
	text, err := v.api.WhatsAppText(ctx, id)
	if err != nil {
		v.env.Notifier.Error("Erro ao gerar texto")
		return false, err
	}
	return v.copy(text, "Texto copiado para o WhatsApp!"), nil
}

func (v *DemandasView) copy(text, success string) bool {
	if !v.env.Clipboard.Copy(text) {
		v.env.Notifier.Error("Não foi possível copiar")
		return false
	}
	v.env.Notifier.Success(success)
	return true
}

// ReportPeriod is the month and year of the monthly PDF: the filtered
// month when both parts are set, the current month otherwise.
func (v *DemandasView) ReportPeriod() (month, year string) {
	f := v.State().Filter
	if f.Month != "" && f.Year != "" {
		return f.Month, f.Year
	}
	now := v.env.Now()
	return fmt.Sprintf("%02d", int(now.Month())), fmt.Sprintf("%d", now.Year())
}

// DownloadMonthlyPDF fetches the production report of ReportPeriod.
func (v *DemandasView) DownloadMonthlyPDF(ctx context.Context) error {
	month, year := v.ReportPeriod()
	d, err := v.api.MonthlyPDF(ctx, month, year)
	if err == nil {
		err = v.env.save(d)
	}
	if err != nil {
		v.env.Notifier.Error("Erro ao gerar relatório")
		return err
	}
	v.env.Notifier.Success("Relatório baixado!")
	return nil
}
