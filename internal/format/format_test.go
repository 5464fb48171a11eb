package format

import (
	"testing"
	"time"

	"github.com/localnerve/ascom-demandas/internal/models"
)

func TestDateRoundTrip(t *testing.T) {
	d := time.Date(2024, time.March, 5, 15, 4, 0, 0, time.UTC)
	if got := Date(d); got != "05/03/2024" {
		t.Fatalf("Expected 05/03/2024, got %q", got)
	}
	parsed, err := ParseDate("05/03/2024")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if parsed.Day() != 5 || parsed.Month() != time.March || parsed.Year() != 2024 {
		t.Errorf("Unexpected parsed date %v", parsed)
	}
	if ValidDate("31/02/2024") {
		t.Error("31/02/2024 should not be valid")
	}
	if ValidDate("2024-03-05") {
		t.Error("ISO dates should not be accepted")
	}
}

func TestMonthKeyFrom(t *testing.T) {
	tests := []struct {
		month, year string
		want        string
		wantErr     bool
	}{
		{"3", "2024", "03/2024", false},
		{"03", "2024", "03/2024", false},
		{"12", "2023", "12/2023", false},
		{"0", "2024", "", true},
		{"13", "2024", "", true},
		{"ab", "2024", "", true},
		{"3", "24", "", true},
	}

	for _, tt := range tests {
		got, err := MonthKeyFrom(tt.month, tt.year)
		if (err != nil) != tt.wantErr {
			t.Errorf("MonthKeyFrom(%q, %q) error = %v, wantErr %v", tt.month, tt.year, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("MonthKeyFrom(%q, %q) = %q, want %q", tt.month, tt.year, got, tt.want)
		}
	}
}

func TestMonthNames(t *testing.T) {
	if got := MonthKeyLong("03/2024"); got != "Março de 2024" {
		t.Errorf("Expected 'Março de 2024', got %q", got)
	}
	if got := MonthKeyLong("garbage"); got != "garbage" {
		t.Errorf("Expected unparseable key unchanged, got %q", got)
	}
	if got := DateMonthHeading("15/12/2023"); got != "Dezembro / 2023" {
		t.Errorf("Expected 'Dezembro / 2023', got %q", got)
	}
	if MonthName(0) != "" || MonthName(13) != "" {
		t.Error("Out of range months should have no name")
	}
}

func TestCompareMonthKeys(t *testing.T) {
	if CompareMonthKeys("12/2023", "01/2024") >= 0 {
		t.Error("12/2023 should sort before 01/2024")
	}
	if CompareMonthKeys("05/2024", "03/2024") <= 0 {
		t.Error("05/2024 should sort after 03/2024")
	}
	if CompareMonthKeys("03/2024", "03/2024") != 0 {
		t.Error("Equal keys should compare equal")
	}
}

func TestSplitLinks(t *testing.T) {
	links := SplitLinks(" https://a.com, ,https://b.com ,")
	if len(links) != 2 || links[0] != "https://a.com" || links[1] != "https://b.com" {
		t.Fatalf("Unexpected links %v", links)
	}
	if SplitLinks("") != nil {
		t.Error("Expected nil for empty input")
	}
	if got := JoinLinks([]string{"https://a.com", " ", "https://b.com"}); got != "https://a.com,https://b.com" {
		t.Errorf("Unexpected joined links %q", got)
	}
}

func TestWhatsAppText(t *testing.T) {
	d := &models.Demanda{
		Numero:      "#2024-007",
		Solicitante: "Maria",
		Demanda:     "Banner para evento",
		Status:      models.StatusConfirmado,
	}

	want := "*Demanda #2024-007*\nSolicitante: Maria\nDescrição: Banner para evento\nStatus: Confirmado"
	if got := WhatsAppText(d); got != want {
		t.Errorf("Unexpected text without entregas:\n%s", got)
	}

	d.Entregas = models.Attachments{
		{Type: models.AttachmentLink, URL: "https://a.com"},
		{Type: models.AttachmentFile, Filename: "arte.png"},
	}
	want += "\nEntrega: https://a.com, [Arquivo: arte.png]"
	if got := WhatsAppText(d); got != want {
		t.Errorf("Unexpected text with entregas:\n%s", got)
	}
}
