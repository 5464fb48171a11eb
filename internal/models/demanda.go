package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Demanda is a tracked work request. Numero and MonthYear are assigned at
// creation and never change afterwards.
type Demanda struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	Numero      string      `gorm:"size:32;not null;uniqueIndex" json:"numero"`
	Solicitante string      `gorm:"size:255;not null;index" json:"solicitante"`
	Demanda     string      `gorm:"type:text;not null" json:"demanda"`
	Status      string      `gorm:"size:32;not null;index" json:"status"`
	MonthYear   string      `gorm:"size:7;not null;index:idx_demandas_month_year" json:"month_year"`
	Referencias Attachments `json:"referencias"`
	Entregas    Attachments `json:"entregas"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time   `json:"-"`
}

func (Demanda) TableName() string {
	return "demandas"
}

func (d *Demanda) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = StatusEmAberto
	}
	if d.Referencias == nil {
		d.Referencias = Attachments{}
	}
	if d.Entregas == nil {
		d.Entregas = Attachments{}
	}
	return nil
}

// Finalizada reports whether the demanda reached the final status.
func (d *Demanda) Finalizada() bool {
	return d.Status == StatusFinalizado
}
