package services

import (
	"errors"
	"strings"

	"github.com/localnerve/ascom-demandas/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListSolicitantes returns all requesters ordered by name.
func ListSolicitantes(db *gorm.DB) ([]models.Solicitante, error) {
	solicitantes := []models.Solicitante{}
	if err := db.Order("LOWER(nome) ASC").Find(&solicitantes).Error; err != nil {
		return nil, err
	}
	return solicitantes, nil
}

// EnsureSolicitante returns the requester with the given name, matched
// ignoring case, creating it when absent.
func EnsureSolicitante(db *gorm.DB, nome string) (*models.Solicitante, error) {
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return nil, errMissingFields
	}

	existing, err := findSolicitante(db, nome)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := models.Solicitante{Nome: nome}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&created)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Another request inserted the same name first
		return findSolicitante(db, nome)
	}
	return &created, nil
}

func findSolicitante(db *gorm.DB, nome string) (*models.Solicitante, error) {
	var s models.Solicitante
	if err := db.Where("LOWER(nome) = ?", strings.ToLower(nome)).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
