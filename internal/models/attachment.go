package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	AttachmentLink = "link"
	AttachmentFile = "file"
)

// Attachment is either a link or a stored file. Used for both referências
// and entregas.
type Attachment struct {
	Type     string    `json:"type"`
	URL      string    `json:"url,omitempty"`
	Filename string    `json:"filename,omitempty"`
	MimeType string    `json:"mime_type,omitempty"`
	Blob     string    `json:"blob,omitempty"`
	AddedAt  time.Time `json:"added_at"`
}

func NewLink(url string, at time.Time) Attachment {
	return Attachment{Type: AttachmentLink, URL: url, AddedAt: at}
}

func NewFile(filename, mimeType, blob string, at time.Time) Attachment {
	return Attachment{Type: AttachmentFile, Filename: filename, MimeType: mimeType, Blob: blob, AddedAt: at}
}

// IsImage reports whether the attachment is a stored image file.
func (a Attachment) IsImage() bool {
	return a.Type == AttachmentFile && a.Blob != "" && strings.HasPrefix(a.MimeType, "image/")
}

// Attachments is an ordered attachment list persisted as a JSON column.
type Attachments []Attachment

func (a Attachments) Value() (driver.Value, error) {
	if a == nil {
		a = Attachments{}
	}
	return datatypes.JSONSlice[Attachment](a).Value()
}

func (a *Attachments) Scan(value interface{}) error {
	if value == nil {
		*a = Attachments{}
		return nil
	}
	var s datatypes.JSONSlice[Attachment]
	if err := s.Scan(value); err != nil {
		return err
	}
	*a = Attachments(s)
	return nil
}

func (a Attachments) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Attachment(a))
}

func (Attachments) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
