package services

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/localnerve/ascom-demandas/internal/models"
	"github.com/localnerve/ascom-demandas/internal/types"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func textFile(name, mimeType, content string) FileUpload {
	return FileUpload{
		Filename: name,
		MimeType: mimeType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func TestCreateDemandaAssignsNumeroPerYear(t *testing.T) {
	db := setupTestDB(t)
	blobs := setupTestBlobs(t)

	first, err := CreateDemanda(db, blobs, DemandaInput{Solicitante: "Maria", Demanda: "Banner"}, at(2024, 3, 1, 10))
	if err != nil {
		t.Fatalf("CreateDemanda failed: %v", err)
	}
	second, err := CreateDemanda(db, blobs, DemandaInput{Solicitante: "maria", Demanda: "Vídeo"}, at(2024, 3, 2, 10))
	if err != nil {
		t.Fatalf("CreateDemanda failed: %v", err)
	}
	nextYear, err := CreateDemanda(db, blobs, DemandaInput{Solicitante: "João", Demanda: "Nota"}, at(2025, 1, 5, 10))
	if err != nil {
		t.Fatalf("CreateDemanda failed: %v", err)
	}

	if first.Numero != "#2024-001" || second.Numero != "#2024-002" {
		t.Errorf("Unexpected numeros %q, %q", first.Numero, second.Numero)
	}
	if nextYear.Numero != "#2025-001" {
		t.Errorf("Expected counter to restart per year, got %q", nextYear.Numero)
	}
	if first.MonthYear != "03/2024" || nextYear.MonthYear != "01/2025" {
		t.Errorf("Unexpected month keys %q, %q", first.MonthYear, nextYear.MonthYear)
	}
	if first.Status != models.StatusEmAberto {
		t.Errorf("Expected initial status %q, got %q", models.StatusEmAberto, first.Status)
	}

	solicitantes, err := ListSolicitantes(db)
	if err != nil {
		t.Fatalf("ListSolicitantes failed: %v", err)
	}
	if len(solicitantes) != 2 {
		t.Fatalf("Expected 2 solicitantes (case-insensitive), got %d", len(solicitantes))
	}
	if solicitantes[0].Nome != "João" || solicitantes[1].Nome != "Maria" {
		t.Errorf("Unexpected solicitante order: %+v", solicitantes)
	}
}

func TestCreateDemandaRequiresFields(t *testing.T) {
	db := setupTestDB(t)
	blobs := setupTestBlobs(t)

	_, err := CreateDemanda(db, blobs, DemandaInput{Solicitante: "  ", Demanda: "Banner"}, at(2024, 3, 1, 10))
	if !errors.Is(err, errMissingFields) {
		t.Fatalf("Expected missing fields error, got %v", err)
	}

	var count int64
	db.Model(&models.Demanda{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected nothing stored, got %d rows", count)
	}
}

func TestCreateDemandaStoresReferences(t *testing.T) {
	db := setupTestDB(t)
	blobs := setupTestBlobs(t)

	in := DemandaInput{
		Solicitante: "Maria",
		Demanda:     "Banner",
		Links:       "https://a.com, ,https://b.com",
		Files:       []FileUpload{textFile("briefing.txt", "text/plain", "conteúdo"), {}},
	}
	demanda, err := CreateDemanda(db, blobs, in, at(2024, 3, 1, 10))
	if err != nil {
		t.Fatalf("CreateDemanda failed: %v", err)
	}

	loaded, err := GetDemanda(db, demanda.ID)
	if err != nil {
		t.Fatalf("GetDemanda failed: %v", err)
	}
	if len(loaded.Referencias) != 3 {
		t.Fatalf("Expected 3 references, got %d", len(loaded.Referencias))
	}
	if loaded.Referencias[0].URL != "https://a.com" || loaded.Referencias[1].URL != "https://b.com" {
		t.Errorf("Unexpected links %+v", loaded.Referencias[:2])
	}

	file := loaded.Referencias[2]
	if file.Type != models.AttachmentFile || file.Filename != "briefing.txt" {
		t.Fatalf("Unexpected file reference %+v", file)
	}
	data, err := blobs.ReadAll(file.Blob)
	if err != nil {
		t.Fatalf("Failed to read stored file: %v", err)
	}
	if string(data) != "conteúdo" {
		t.Errorf("Unexpected stored content %q", data)
	}
	if loaded.Entregas == nil || len(loaded.Entregas) != 0 {
		t.Errorf("Expected empty entregas, got %+v", loaded.Entregas)
	}
}

func TestListDemandasFilters(t *testing.T) {
	db := setupTestDB(t)
	blobs := setupTestBlobs(t)

	mustCreate := func(solicitante, text string, month int, day int) *models.Demanda {
		d, err := CreateDemanda(db, blobs, DemandaInput{Solicitante: solicitante, Demanda: text}, at(2024, timeMonth(month), day, 9))
		if err != nil {
			t.Fatalf("CreateDemanda failed: %v", err)
		}
		return d
	}

	a := mustCreate("Maria Souza", "Banner do festival", 3, 1)
	b := mustCreate("João", "Vídeo institucional", 3, 10)
	c := mustCreate("Mariana", "Post 100% novo", 4, 2)

	if err := UpdateDemandaStatus(db, b.ID, models.StatusFinalizado, models.AnyToAny); err != nil {
		t.Fatalf("UpdateDemandaStatus failed: %v", err)
	}

	tests := []struct {
		name   string
		filter DemandaFilter
		want   []string
	}{
		{"no filters newest first", DemandaFilter{}, []string{c.ID, b.ID, a.ID}},
		{"month and year", DemandaFilter{Month: "3", Year: "2024"}, []string{b.ID, a.ID}},
		{"month without year is ignored", DemandaFilter{Month: "03"}, []string{c.ID, b.ID, a.ID}},
		{"status exact", DemandaFilter{Status: models.StatusFinalizado}, []string{b.ID}},
		{"solicitante substring", DemandaFilter{Solicitante: "MARI"}, []string{c.ID, a.ID}},
		{"search numero", DemandaFilter{Search: "2024-002"}, []string{b.ID}},
		{"search description", DemandaFilter{Search: "festival"}, []string{a.ID}},
		{"search escapes wildcards", DemandaFilter{Search: "100%"}, []string{c.ID}},
		{"combined", DemandaFilter{Month: "03", Year: "2024", Solicitante: "maria"}, []string{a.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ListDemandas(db, tt.filter)
			if err != nil {
				t.Fatalf("ListDemandas failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d demandas, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("Position %d: expected %s, got %s (%s)", i, tt.want[i], got[i].ID, got[i].Numero)
				}
			}
		})
	}

	if _, err := ListDemandas(db, DemandaFilter{Month: "13", Year: "2024"}); !errors.Is(err, errInvalidPeriod) {
		t.Errorf("Expected invalid period error, got %v", err)
	}
}

func TestUpdateDemandaStatus(t *testing.T) {
	db := setupTestDB(t)
	blobs := setupTestBlobs(t)

	d, err := CreateDemanda(db, blobs, DemandaInput{Solicitante: "Maria", Demanda: "Banner"}, at(2024, 3, 1, 10))
	if err != nil {
		t.Fatalf("CreateDemanda failed: %v", err)
	}

	err = UpdateDemandaStatus(db, d.ID, "Cancelado", models.AnyToAny)
	var ce *types.CustomError
	if !errors.As(err, &ce) || ce.Code != 400 || ce.Message != "Status inválido" {
		t.Fatalf("Expected 400 Status inválido, got %v", err)
	}

	if err := UpdateDemandaStatus(db, d.ID, models.StatusEmAprovacao, models.AnyToAny); err != nil {
		t.Fatalf("UpdateDemandaStatus failed: %v", err)
	}
	// Any-to-any allows moving backwards
	if err := UpdateDemandaStatus(db, d.ID, models.StatusEmAberto, models.AnyToAny); err != nil {
		t.Fatalf("UpdateDemandaStatus backwards failed: %v", err)
	}

	strict := models.Transitions{models.StatusEmAberto: {models.StatusConfirmado}}
	if err := UpdateDemandaStatus(db, d.ID, models.StatusFinalizado, strict); !errors.Is(err, errStatusForbidden) {
		t.Errorf("Expected forbidden transition, got %v", err)
	}

	if err := UpdateDemandaStatus(db, "not-a-uuid", models.StatusConfirmado, models.AnyToAny); !errors.Is(err, errInvalidID) {
		t.Errorf("Expected invalid id, got %v", err)
	}
	missing := "6f1c2d3e-4b5a-4c6d-8e7f-901234567890"
	if err := UpdateDemandaStatus(db, missing, models.StatusConfirmado, models.AnyToAny); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestUpdateDemandaPartial(t *testing.T) {
	db := setupTestDB(t)
	blobs := setupTestBlobs(t)

	d, err := CreateDemanda(db, blobs, DemandaInput{Solicitante: "Maria", Demanda: "Banner"}, at(2024, 3, 1, 10))
	if err != nil {
		t.Fatalf("CreateDemanda failed: %v", err)
	}

	if err := UpdateDemanda(db, d.ID, DemandaUpdate{Demanda: "Banner novo", Status: "Inexistente"}); err != nil {
		t.Fatalf("UpdateDemanda failed: %v", err)
	}
	if err := UpdateDemanda(db, d.ID, DemandaUpdate{Solicitante: "Pedro"}); err != nil {
		t.Fatalf("UpdateDemanda failed: %v", err)
	}

	loaded, _ := GetDemanda(db, d.ID)
	if loaded.Demanda != "Banner novo" || loaded.Solicitante != "Pedro" {
		t.Errorf("Unexpected demanda after update: %+v", loaded)
	}
	if loaded.Status != models.StatusEmAberto {
		t.Errorf("Invalid status should be ignored, got %q", loaded.Status)
	}
	if loaded.Numero != d.Numero || loaded.MonthYear != d.MonthYear {
		t.Errorf("Numero and month must not change: %+v", loaded)
	}

	solicitantes, _ := ListSolicitantes(db)
	if len(solicitantes) != 2 {
		t.Errorf("Expected renamed solicitante to be registered, got %+v", solicitantes)
	}
}

func TestAddEntregas(t *testing.T) {
	db := setupTestDB(t)
	blobs := setupTestBlobs(t)

	d, err := CreateDemanda(db, blobs, DemandaInput{Solicitante: "Maria", Demanda: "Banner"}, at(2024, 3, 1, 10))
	if err != nil {
		t.Fatalf("CreateDemanda failed: %v", err)
	}

	if _, err := AddEntregas(db, blobs, d.ID, " , ", nil, at(2024, 3, 2, 10)); !errors.Is(err, errEmptyEntrega) {
		t.Fatalf("Expected empty entrega error, got %v", err)
	}

	total, err := AddEntregas(db, blobs, d.ID, "https://drive.example/arte", nil, at(2024, 3, 2, 10))
	if err != nil {
		t.Fatalf("AddEntregas failed: %v", err)
	}
	if total != 1 {
		t.Errorf("Expected total 1, got %d", total)
	}

	total, err = AddEntregas(db, blobs, d.ID, "", []FileUpload{textFile("arte.txt", "text/plain", "x")}, at(2024, 3, 3, 10))
	if err != nil {
		t.Fatalf("AddEntregas failed: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected total 2, got %d", total)
	}

	loaded, _ := GetDemanda(db, d.ID)
	if loaded.Entregas[0].URL != "https://drive.example/arte" || loaded.Entregas[1].Filename != "arte.txt" {
		t.Errorf("Entregas not appended in order: %+v", loaded.Entregas)
	}

	missing := "6f1c2d3e-4b5a-4c6d-8e7f-901234567890"
	if _, err := AddEntregas(db, blobs, missing, "https://x", nil, at(2024, 3, 3, 10)); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestAddEntregasConcurrentKeepsAll(t *testing.T) {
	db := setupTestDB(t)
	blobs := setupTestBlobs(t)

	d, err := CreateDemanda(db, blobs, DemandaInput{Solicitante: "Maria", Demanda: "Banner"}, at(2024, 3, 1, 10))
	if err != nil {
		t.Fatalf("CreateDemanda failed: %v", err)
	}

	const n = 6
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			link := fmt.Sprintf("https://drive.example/%d", i)
			if _, err := AddEntregas(db, blobs, d.ID, link, nil, at(2024, 3, 2, 10)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("AddEntregas failed: %v", err)
	}

	loaded, _ := GetDemanda(db, d.ID)
	if len(loaded.Entregas) != n {
		t.Errorf("Expected %d entregas, got %d", n, len(loaded.Entregas))
	}
}

func TestForUpdateLocksOnServerDatabases(t *testing.T) {
	pg, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=ascom dbname=demandas sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("Failed to open dry-run postgres: %v", err)
	}
	stmt := forUpdate(pg).First(&models.Demanda{}, "id = ?", "x").Statement
	if sql := stmt.SQL.String(); !strings.Contains(sql, "FOR UPDATE") {
		t.Errorf("Expected row lock in %q", sql)
	}

	lite := setupTestDB(t).Session(&gorm.Session{DryRun: true})
	stmt = forUpdate(lite).First(&models.Demanda{}, "id = ?", "x").Statement
	if sql := stmt.SQL.String(); strings.Contains(sql, "FOR UPDATE") {
		t.Errorf("SQLite must not get a locking clause: %q", sql)
	}
}

func TestDeleteDemandaRemovesFiles(t *testing.T) {
	db := setupTestDB(t)
	blobs := setupTestBlobs(t)

	d, err := CreateDemanda(db, blobs, DemandaInput{
		Solicitante: "Maria",
		Demanda:     "Banner",
		Files:       []FileUpload{textFile("ref.txt", "text/plain", "ref")},
	}, at(2024, 3, 1, 10))
	if err != nil {
		t.Fatalf("CreateDemanda failed: %v", err)
	}
	key := d.Referencias[0].Blob

	if err := DeleteDemanda(db, blobs, d.ID); err != nil {
		t.Fatalf("DeleteDemanda failed: %v", err)
	}
	if _, err := GetDemanda(db, d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected deleted demanda to be gone, got %v", err)
	}
	if _, err := blobs.ReadAll(key); err == nil {
		t.Error("Expected reference file to be removed")
	}
}

func TestListMonthsChronological(t *testing.T) {
	db := setupTestDB(t)
	blobs := setupTestBlobs(t)

	for _, ts := range []struct {
		year  int
		month int
	}{{2023, 12}, {2024, 3}, {2024, 1}, {2024, 3}} {
		if _, err := CreateDemanda(db, blobs, DemandaInput{Solicitante: "Maria", Demanda: "x"}, at(ts.year, timeMonth(ts.month), 1, 10)); err != nil {
			t.Fatalf("CreateDemanda failed: %v", err)
		}
	}

	months, err := ListMonths(db)
	if err != nil {
		t.Fatalf("ListMonths failed: %v", err)
	}
	want := []string{"03/2024", "01/2024", "12/2023"}
	if strings.Join(months, ",") != strings.Join(want, ",") {
		t.Errorf("Expected %v, got %v", want, months)
	}
}

func TestMonthDemandas(t *testing.T) {
	db := setupTestDB(t)
	blobs := setupTestBlobs(t)

	first, _ := CreateDemanda(db, blobs, DemandaInput{Solicitante: "Maria", Demanda: "a"}, at(2024, 3, 1, 10))
	second, _ := CreateDemanda(db, blobs, DemandaInput{Solicitante: "Maria", Demanda: "b"}, at(2024, 3, 5, 10))

	key, demandas, err := MonthDemandas(db, "3", "2024")
	if err != nil {
		t.Fatalf("MonthDemandas failed: %v", err)
	}
	if key != "03/2024" {
		t.Errorf("Expected key 03/2024, got %q", key)
	}
	if len(demandas) != 2 || demandas[0].ID != first.ID || demandas[1].ID != second.ID {
		t.Errorf("Expected oldest first, got %+v", demandas)
	}

	if _, _, err := MonthDemandas(db, "04", "2024"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not found for empty month, got %v", err)
	}
	if _, _, err := MonthDemandas(db, "x", "2024"); !errors.Is(err, errInvalidPeriod) {
		t.Errorf("Expected invalid period, got %v", err)
	}
}

func TestWhatsAppText(t *testing.T) {
	db := setupTestDB(t)
	blobs := setupTestBlobs(t)

	d, _ := CreateDemanda(db, blobs, DemandaInput{Solicitante: "Maria", Demanda: "Banner"}, at(2024, 3, 1, 10))

	text, err := WhatsAppText(db, d.ID)
	if err != nil {
		t.Fatalf("WhatsAppText failed: %v", err)
	}
	want := "*Demanda #2024-001*\nSolicitante: Maria\nDescrição: Banner\nStatus: Em aberto"
	if text != want {
		t.Errorf("Unexpected text:\n%s", text)
	}

	if _, err := AddEntregas(db, blobs, d.ID, "https://a.com", []FileUpload{textFile("arte.png", "image/png", "png")}, at(2024, 3, 2, 10)); err != nil {
		t.Fatalf("AddEntregas failed: %v", err)
	}
	text, _ = WhatsAppText(db, d.ID)
	if !strings.HasSuffix(text, "\nEntrega: https://a.com, [Arquivo: arte.png]") {
		t.Errorf("Expected entrega line, got:\n%s", text)
	}
}
