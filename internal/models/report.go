package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report is a single production report (relatório). The image, when present,
// is a PNG held in the blob store under ImageKey.
type Report struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Demanda     string    `gorm:"type:text;not null" json:"demanda"`
	Solicitacao string    `gorm:"type:text;not null" json:"solicitacao"`
	Data        string    `gorm:"size:10;not null" json:"data"`
	ImageKey    string    `gorm:"size:64" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Report) TableName() string {
	return "reports"
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// HasImage reports whether an image blob is attached.
func (r *Report) HasImage() bool {
	return r.ImageKey != ""
}

// ReportResponse is the API shape of a report. ImageData carries the
// base64 PNG only on single-report reads.
type ReportResponse struct {
	ID          string    `json:"id"`
	Demanda     string    `json:"demanda"`
	Solicitacao string    `json:"solicitacao"`
	Data        string    `json:"data"`
	HasImage    bool      `json:"has_image"`
	ImageData   string    `json:"image_data,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
