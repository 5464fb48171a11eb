package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Solicitante is a named requester. Names are unique ignoring case.
type Solicitante struct {
	ID   string `gorm:"primaryKey;size:36" json:"id"`
	Nome string `gorm:"size:255;not null;uniqueIndex" json:"nome"`
}

func (Solicitante) TableName() string {
	return "solicitantes"
}

func (s *Solicitante) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
