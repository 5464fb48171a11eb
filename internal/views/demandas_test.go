package views

import (
	"context"
	"errors"
	"testing"

	"github.com/localnerve/ascom-demandas/internal/client"
	"github.com/localnerve/ascom-demandas/internal/models"
)

func newDemandasView(api *fakeAPI) (*DemandasView, *recordNotifier, *memClipboard, *memDownloader) {
	n := &recordNotifier{}
	c := &memClipboard{}
	d := &memDownloader{}
	v := NewDemandasView(api, Env{Notifier: n, Clipboard: c, Download: d, Now: fixedNow})
	return v, n, c, d
}

func TestDemandaInit(t *testing.T) {
	api := newFakeAPI()
	api.solicitantes = []models.Solicitante{{ID: "s1", Nome: "Educação"}}
	api.months = []string{"03/2024", "02/2024"}
	api.demandas = []models.Demanda{{ID: "d1", Numero: "#2024-001"}}
	v, _, _, _ := newDemandasView(api)

	if err := v.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	st := v.State()
	if len(st.Solicitantes) != 1 || len(st.Months) != 2 || len(st.Demandas) != 1 {
		t.Errorf("Unexpected state after init: %+v", st)
	}
}

func TestDemandaSubmitValidation(t *testing.T) {
	api := newFakeAPI()
	v, n, _, _ := newDemandasView(api)

	v.OpenForm()
	v.SetForm(DemandaForm{Solicitante: "Saúde"})
	if err := v.Submit(context.Background()); !errors.Is(err, ErrValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if api.count("CreateDemanda") != 0 {
		t.Error("Expected no request on validation failure")
	}
	if n.lastError() != "Preencha todos os campos obrigatórios" {
		t.Errorf("Unexpected notification %q", n.lastError())
	}
}

func TestDemandaSubmitShowsNumero(t *testing.T) {
	api := newFakeAPI()
	v, n, clip, _ := newDemandasView(api)
	ctx := context.Background()

	v.OpenForm()
	v.SetForm(DemandaForm{
		Solicitante: "Saúde",
		Demanda:     "Arte para campanha",
		Links:       "https://a.example, , https://b.example",
		Files:       []client.Upload{{Filename: "briefing.pdf"}},
	})
	if err := v.Submit(ctx); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if got := api.lastDemanda.Links; len(got) != 2 || got[1] != "https://b.example" {
		t.Errorf("Expected trimmed links, got %v", got)
	}
	st := v.State()
	if st.FormOpen {
		t.Error("Expected form closed after creation")
	}
	if st.Created == nil || st.Created.Numero != "#2024-001" {
		t.Fatalf("Expected confirmation with numero, got %+v", st.Created)
	}
	if len(st.Demandas) != 1 {
		t.Errorf("Expected list reloaded, got %d", len(st.Demandas))
	}
	if api.count("ListMonths") != 1 || api.count("ListSolicitantes") != 1 {
		t.Errorf("Expected months and solicitantes refreshed, calls %v", api.calls)
	}

	if !v.CopyNumero() {
		t.Fatal("Expected numero copied")
	}
	if clip.text != "#2024-001" {
		t.Errorf("Clipboard holds %q", clip.text)
	}
	if n.lastSuccess() != "Número copiado!" {
		t.Errorf("Unexpected notification %q", n.lastSuccess())
	}

	v.DismissConfirmation()
	if v.State().Created != nil {
		t.Error("Expected confirmation dismissed")
	}
	if v.CopyNumero() {
		t.Error("Nothing to copy after dismissal")
	}
}

func TestDemandaCopyFailure(t *testing.T) {
	api := newFakeAPI()
	v, n, clip, _ := newDemandasView(api)
	clip.fail = true

	ok, err := v.CopyWhatsApp(context.Background(), "d1")
	if err != nil {
		t.Fatalf("CopyWhatsApp failed: %v", err)
	}
	if ok {
		t.Error("Expected copy to report failure")
	}
	if n.lastError() != "Não foi possível copiar" {
		t.Errorf("Unexpected notification %q", n.lastError())
	}

	clip.fail = false
	ok, _ = v.CopyWhatsApp(context.Background(), "d1")
	if !ok || clip.text != "*Demanda d1*" {
		t.Errorf("Expected WhatsApp text copied, got %q", clip.text)
	}
}

func TestDemandaAddSolicitante(t *testing.T) {
	api := newFakeAPI()
	api.solicitantes = []models.Solicitante{{ID: "s1", Nome: "educação"}, {ID: "s2", Nome: "Saúde"}}
	v, _, _, _ := newDemandasView(api)
	ctx := context.Background()

	if err := v.LoadSolicitantes(ctx); err != nil {
		t.Fatalf("LoadSolicitantes failed: %v", err)
	}
	if err := v.AddSolicitante(ctx, "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if err := v.AddSolicitante(ctx, "Cultura"); err != nil {
		t.Fatalf("AddSolicitante failed: %v", err)
	}

	st := v.State()
	var names []string
	for _, s := range st.Solicitantes {
		names = append(names, s.Nome)
	}
	want := []string{"Cultura", "educação", "Saúde"}
	if len(names) != len(want) {
		t.Fatalf("Expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, names)
			break
		}
	}
	if st.Form.Solicitante != "Cultura" {
		t.Errorf("Expected new solicitante selected, got %q", st.Form.Solicitante)
	}
}

func TestDemandaSetStatusRefreshes(t *testing.T) {
	api := newFakeAPI()
	api.demandas = []models.Demanda{{ID: "d1", Status: models.StatusEmAberto}}
	v, n, _, _ := newDemandasView(api)
	ctx := context.Background()

	if err := v.OpenDetail(ctx, "d1"); err != nil {
		t.Fatalf("OpenDetail failed: %v", err)
	}
	if err := v.SetStatus(ctx, "d1", models.StatusFinalizado); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	st := v.State()
	if st.Demandas[0].Status != models.StatusFinalizado {
		t.Errorf("Expected list refreshed with new status, got %q", st.Demandas[0].Status)
	}
	if st.Detail.Status != models.StatusFinalizado {
		t.Errorf("Expected detail refreshed, got %q", st.Detail.Status)
	}
	if n.lastSuccess() != "Status atualizado!" {
		t.Errorf("Unexpected notification %q", n.lastSuccess())
	}
}

func TestDemandaSetStatusFailureNoChange(t *testing.T) {
	api := newFakeAPI()
	api.demandas = []models.Demanda{{ID: "d1", Status: models.StatusEmAberto}}
	v, n, _, _ := newDemandasView(api)
	ctx := context.Background()
	_ = v.Load(ctx)

	api.fail["UpdateStatus"] = &client.APIError{StatusCode: 400, Message: "Status inválido"}
	if err := v.SetStatus(ctx, "d1", "Arquivado"); err == nil {
		t.Fatal("Expected error")
	}
	if v.State().Demandas[0].Status != models.StatusEmAberto {
		t.Error("Expected local status untouched")
	}
	if api.count("ListDemandas") != 1 {
		t.Error("Expected no reload after a failed status change")
	}
	if n.lastError() != "Erro ao atualizar status" {
		t.Errorf("Unexpected notification %q", n.lastError())
	}
}

func TestDemandaEntrega(t *testing.T) {
	api := newFakeAPI()
	v, n, _, _ := newDemandasView(api)
	ctx := context.Background()

	if err := v.SubmitEntrega(ctx); !errors.Is(err, ErrValidation) {
		t.Fatalf("Expected validation error without a selected demanda, got %v", err)
	}

	v.OpenEntrega("d1")
	v.SetEntrega(" , ", nil)
	if err := v.SubmitEntrega(ctx); !errors.Is(err, ErrValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if api.count("AddEntregas") != 0 {
		t.Error("Expected no request for an empty entrega")
	}

	v.SetEntrega("https://drive.example/x", []client.Upload{{Filename: "arte.png"}})
	if err := v.SubmitEntrega(ctx); err != nil {
		t.Fatalf("SubmitEntrega failed: %v", err)
	}
	if len(api.lastLinks) != 1 || len(api.lastFiles) != 1 {
		t.Errorf("Unexpected entrega sent: %v %v", api.lastLinks, api.lastFiles)
	}
	if v.State().Entrega != nil {
		t.Error("Expected entrega form closed")
	}
	if api.count("ListDemandas") != 1 {
		t.Error("Expected list reload after entrega")
	}
	if n.lastSuccess() != "Entrega adicionada!" {
		t.Errorf("Unexpected notification %q", n.lastSuccess())
	}
}

func TestDemandaDelete(t *testing.T) {
	api := newFakeAPI()
	api.demandas = []models.Demanda{{ID: "d1"}}
	v, _, _, _ := newDemandasView(api)
	ctx := context.Background()

	_ = v.OpenDetail(ctx, "d1")
	if err := v.Delete(ctx, "d1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if v.State().Detail != nil {
		t.Error("Expected detail closed for deleted demanda")
	}
	if api.count("DeleteDemanda") != 1 || api.count("ListMonths") != 1 {
		t.Errorf("Unexpected calls %v", api.calls)
	}
}

func TestDemandaMonthlyPDFPeriod(t *testing.T) {
	api := newFakeAPI()
	v, _, _, d := newDemandasView(api)
	ctx := context.Background()

	if err := v.DownloadMonthlyPDF(ctx); err != nil {
		t.Fatalf("DownloadMonthlyPDF failed: %v", err)
	}
	if api.lastPeriod != [2]string{"03", "2024"} {
		t.Errorf("Expected current month, got %v", api.lastPeriod)
	}

	// Only the month set: still the current month
	_ = v.SetFilter(ctx, client.DemandaFilter{Month: "01"})
	_ = v.DownloadMonthlyPDF(ctx)
	if api.lastPeriod != [2]string{"03", "2024"} {
		t.Errorf("Expected current month with partial filter, got %v", api.lastPeriod)
	}

	_ = v.SetFilter(ctx, client.DemandaFilter{Month: "01", Year: "2023"})
	_ = v.DownloadMonthlyPDF(ctx)
	if api.lastPeriod != [2]string{"01", "2023"} {
		t.Errorf("Expected filtered month, got %v", api.lastPeriod)
	}
	if len(d.saved) != 3 || d.saved[2].Filename != "relatorio_01-2023.pdf" {
		t.Errorf("Unexpected downloads %+v", d.saved)
	}
}

func TestDemandaStaleLoadDiscarded(t *testing.T) {
	api := newFakeAPI()
	api.gateKey = "slow"
	api.started = make(chan struct{})
	api.release = make(chan struct{})
	v, _, _, _ := newDemandasView(api)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- v.SetFilter(ctx, client.DemandaFilter{Search: "slow"}) }()
	<-api.started

	if err := v.SetFilter(ctx, client.DemandaFilter{Search: "fast"}); err != nil {
		t.Fatalf("SetFilter failed: %v", err)
	}
	close(api.release)
	if err := <-done; err != nil {
		t.Fatalf("Slow load failed: %v", err)
	}

	got := v.State().Demandas
	if len(got) != 1 || got[0].ID != "search-fast" {
		t.Errorf("Expected newest response to win, got %+v", got)
	}

	if err := v.ClearFilter(ctx); err != nil {
		t.Fatalf("ClearFilter failed: %v", err)
	}
	if v.State().Filter.Active() {
		t.Error("Expected filter cleared")
	}
}

func TestDemandaMutationReloadsListWhenDetailFails(t *testing.T) {
	api := newFakeAPI()
	api.demandas = []models.Demanda{{ID: "d1", Status: models.StatusEmAberto}}
	v, _, _, _ := newDemandasView(api)
	ctx := context.Background()

	if err := v.OpenDetail(ctx, "d1"); err != nil {
		t.Fatalf("OpenDetail failed: %v", err)
	}
	api.fail["GetDemanda"] = errBoom

	err := v.SetStatus(ctx, "d1", models.StatusFinalizado)
	if !errors.Is(err, errBoom) {
		t.Fatalf("Expected detail error reported, got %v", err)
	}
	if api.count("ListDemandas") != 1 {
		t.Errorf("Expected list reload despite detail failure, got %d loads", api.count("ListDemandas"))
	}
	if got := v.State().Demandas; len(got) != 1 || got[0].Status != models.StatusFinalizado {
		t.Errorf("Expected refreshed list, got %+v", got)
	}

	v.OpenEntrega("d1")
	v.SetEntrega("https://drive.example/final", nil)
	if err := v.SubmitEntrega(ctx); !errors.Is(err, errBoom) {
		t.Fatalf("Expected detail error reported, got %v", err)
	}
	if api.count("ListDemandas") != 2 {
		t.Errorf("Expected list reload after entrega despite detail failure, got %d loads", api.count("ListDemandas"))
	}
}

func TestDemandaSubmitKeepsNumeroWhenSideListsFail(t *testing.T) {
	api := newFakeAPI()
	api.fail["ListSolicitantes"] = errBoom
	api.fail["ListMonths"] = errBoom
	v, n, _, _ := newDemandasView(api)

	v.OpenForm()
	v.SetForm(DemandaForm{Solicitante: "Cultura", Demanda: "Cartaz"})
	if err := v.Submit(context.Background()); err != nil {
		t.Fatalf("Submit must succeed once the demanda exists, got %v", err)
	}
	if st := v.State(); st.Created == nil || st.Created.Numero != "#2024-001" {
		t.Fatalf("Expected confirmation with numero, got %+v", st.Created)
	}
	if n.lastError() != "Erro ao carregar meses" {
		t.Errorf("Expected the months failure notified, got %q", n.lastError())
	}
	if api.count("ListDemandas") != 1 {
		t.Errorf("Expected list reloaded, calls %v", api.calls)
	}
}
