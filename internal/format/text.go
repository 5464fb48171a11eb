package format

import (
	"strings"

	"github.com/localnerve/ascom-demandas/internal/models"
)

// SplitLinks splits a comma separated list, trimming blanks.
func SplitLinks(s string) []string {
	var links []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			links = append(links, part)
		}
	}
	return links
}

// JoinLinks is the inverse of SplitLinks.
func JoinLinks(links []string) string {
	return strings.Join(SplitLinks(strings.Join(links, ",")), ",")
}

// WhatsAppText builds the message body shared for a demanda.
func WhatsAppText(d *models.Demanda) string {
	lines := []string{
		"*Demanda " + d.Numero + "*",
		"Solicitante: " + d.Solicitante,
		"Descrição: " + d.Demanda,
		"Status: " + d.Status,
	}

	if len(d.Entregas) > 0 {
		items := make([]string, 0, len(d.Entregas))
		for _, e := range d.Entregas {
			items = append(items, AttachmentLabel(e))
		}
		lines = append(lines, "Entrega: "+strings.Join(items, ", "))
	}

	return strings.Join(lines, "\n")
}

// AttachmentLabel is the short text form of an attachment.
func AttachmentLabel(a models.Attachment) string {
	if a.Type == models.AttachmentLink {
		return a.URL
	}
	return "[Arquivo: " + a.Filename + "]"
}
