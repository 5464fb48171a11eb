package services

import (
	"fmt"

	"github.com/localnerve/ascom-demandas/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NextNumero advances the yearly demanda counter and returns the display
// code "#YYYY-NNN". Must run inside the transaction that creates the demanda.
func NextNumero(tx *gorm.DB, year int) (string, error) {
	name := fmt.Sprintf("demanda_%d", year)

	// Concurrent creators of the first demanda of a year race on this insert
	counter := models.Counter{Name: name}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&counter).Error; err != nil {
		return "", fmt.Errorf("create counter %s: %w", name, err)
	}

	err := tx.Model(&models.Counter{}).
		Where("name = ?", name).
		Update("seq", gorm.Expr("seq + ?", 1)).Error
	if err != nil {
		return "", fmt.Errorf("advance counter %s: %w", name, err)
	}

	if err := tx.First(&counter, "name = ?", name).Error; err != nil {
		return "", fmt.Errorf("read counter %s: %w", name, err)
	}

	return fmt.Sprintf("#%d-%03d", year, counter.Seq), nil
}
