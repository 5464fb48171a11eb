// demandas.go
//
// Demand and report tracking service for the Assessoria de Comunicação
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of ascom-demandas.
// ascom-demandas is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ascom-demandas is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ascom-demandas.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/localnerve/ascom-demandas/internal/format"
	"github.com/localnerve/ascom-demandas/internal/models"
	"github.com/localnerve/ascom-demandas/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/hints"
)

// FileUpload is one uploaded file. Open is called once.
type FileUpload struct {
	Filename string
	MimeType string
	Open     func() (io.ReadCloser, error)
}

// DemandaInput holds the fields of the creation form.
type DemandaInput struct {
	Solicitante string
	Demanda     string
	Links       string
	Files       []FileUpload
}

// DemandaUpdate holds optional field changes. Empty values are ignored.
type DemandaUpdate struct {
	Solicitante string
	Demanda     string
	Status      string
}

// DemandaFilter narrows ListDemandas. Month and Year apply only together.
type DemandaFilter struct {
	Month       string
	Year        string
	Status      string
	Solicitante string
	Search      string
}

// CreateDemanda registers the requester if new, assigns the next numero
// and stores the demanda with its references.
func CreateDemanda(db *gorm.DB, blobs *storage.BlobStore, in DemandaInput, now time.Time) (*models.Demanda, error) {
	if blank(in.Solicitante) || blank(in.Demanda) {
		return nil, errMissingFields
	}

	referencias, err := buildAttachments(blobs, in.Links, in.Files, now)
	if err != nil {
		return nil, err
	}

	demanda := models.Demanda{
		Solicitante: strings.TrimSpace(in.Solicitante),
		Demanda:     strings.TrimSpace(in.Demanda),
		Status:      models.StatusEmAberto,
		MonthYear:   format.MonthKey(now),
		Referencias: referencias,
		Entregas:    models.Attachments{},
		CreatedAt:   now,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if _, err := EnsureSolicitante(tx, demanda.Solicitante); err != nil {
			return err
		}
		numero, err := NextNumero(tx, now.Year())
		if err != nil {
			return err
		}
		demanda.Numero = numero
		return tx.Create(&demanda).Error
	})
	if err != nil {
		removeAttachmentBlobs(blobs, referencias)
		return nil, err
	}

	return &demanda, nil
}

// ListDemandas returns demandas matching every set filter, newest first.
func ListDemandas(db *gorm.DB, filter DemandaFilter) ([]models.Demanda, error) {
	query := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Model(&models.Demanda{})

	if filter.Month != "" && filter.Year != "" {
		key, err := format.MonthKeyFrom(filter.Month, filter.Year)
		if err != nil {
			return nil, errInvalidPeriod
		}
		if db.Dialector.Name() == "mysql" {
			query = query.Clauses(hints.UseIndex("idx_demandas_month_year"))
		}
		query = query.Where("month_year = ?", key)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if !blank(filter.Solicitante) {
		query = query.Where("LOWER(solicitante) LIKE ? ESCAPE '!'", likePattern(filter.Solicitante))
	}

	if !blank(filter.Search) {
		pattern := likePattern(filter.Search)
		query = query.Where(
			"LOWER(numero) LIKE ? ESCAPE '!' OR LOWER(demanda) LIKE ? ESCAPE '!' OR LOWER(solicitante) LIKE ? ESCAPE '!'",
			pattern, pattern, pattern,
		)
	}

	demandas := []models.Demanda{}
	if err := query.Order("created_at DESC").Find(&demandas).Error; err != nil {
		return nil, err
	}
	return demandas, nil
}

// GetDemanda loads a single demanda.
func GetDemanda(db *gorm.DB, id string) (*models.Demanda, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	var demanda models.Demanda
	if err := db.First(&demanda, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("demanda %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &demanda, nil
}

// UpdateDemanda applies the non-empty fields of u. An unknown status is
// ignored rather than rejected.
func UpdateDemanda(db *gorm.DB, id string, u DemandaUpdate) error {
	demanda, err := GetDemanda(db, id)
	if err != nil {
		return err
	}

	changes := map[string]interface{}{}
	if s := strings.TrimSpace(u.Solicitante); s != "" {
		changes["solicitante"] = s
	}
	if d := strings.TrimSpace(u.Demanda); d != "" {
		changes["demanda"] = d
	}
	if models.ValidStatus(u.Status) {
		changes["status"] = u.Status
	}
	if len(changes) == 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if s, ok := changes["solicitante"].(string); ok {
			if _, err := EnsureSolicitante(tx, s); err != nil {
				return err
			}
		}
		return tx.Model(demanda).Updates(changes).Error
	})
}

// UpdateDemandaStatus sets the status of a demanda. The transition table
// decides which moves are legal; AnyToAny allows all of them.
func UpdateDemandaStatus(db *gorm.DB, id, status string, transitions models.Transitions) error {
	if !models.ValidStatus(status) {
		return errInvalidStatus
	}
	demanda, err := GetDemanda(db, id)
	if err != nil {
		return err
	}
	if demanda.Status == status {
		return nil
	}
	if !transitions.Allows(demanda.Status, status) {
		return errStatusForbidden
	}
	return db.Model(demanda).Update("status", status).Error
}

// AddEntregas appends links and files to the deliverables of a demanda and
// returns the new total.
func AddEntregas(db *gorm.DB, blobs *storage.BlobStore, id, links string, files []FileUpload, now time.Time) (int, error) {
	if err := validID(id); err != nil {
		return 0, err
	}
	if len(format.SplitLinks(links)) == 0 && !hasNamedFile(files) {
		return 0, errEmptyEntrega
	}

	added, err := buildAttachments(blobs, links, files, now)
	if err != nil {
		return 0, err
	}

	var total int
	err = db.Transaction(func(tx *gorm.DB) error {
		// Concurrent appends to the same demanda serialise on the row lock
		demanda, err := GetDemanda(forUpdate(tx), id)
		if err != nil {
			return err
		}
		entregas := append(slices.Clone(demanda.Entregas), added...)
		if err := tx.Model(demanda).Update("entregas", entregas).Error; err != nil {
			return err
		}
		total = len(entregas)
		return nil
	})
	if err != nil {
		removeAttachmentBlobs(blobs, added)
		return 0, err
	}
	return total, nil
}

// forUpdate locks the rows read by tx until it commits. SQLite serialises
// writers on its single connection and gets no clause.
func forUpdate(tx *gorm.DB) *gorm.DB {
	switch tx.Dialector.Name() {
	case "postgres", "mysql":
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// DeleteDemanda removes a demanda and every stored file it references.
func DeleteDemanda(db *gorm.DB, blobs *storage.BlobStore, id string) error {
	demanda, err := GetDemanda(db, id)
	if err != nil {
		return err
	}
	if err := db.Delete(demanda).Error; err != nil {
		return err
	}
	removeAttachmentBlobs(blobs, demanda.Referencias)
	removeAttachmentBlobs(blobs, demanda.Entregas)
	return nil
}

// ListMonths returns every month key that has demandas, newest first.
func ListMonths(db *gorm.DB) ([]string, error) {
	months := []string{}
	err := db.Model(&models.Demanda{}).
		Distinct("month_year").
		Pluck("month_year", &months).Error
	if err != nil {
		return nil, err
	}

	months = slices.DeleteFunc(months, func(m string) bool { return m == "" })
	slices.SortFunc(months, func(a, b string) int {
		return format.CompareMonthKeys(b, a)
	})
	return months, nil
}

// MonthDemandas returns the demandas of one month in creation order.
func MonthDemandas(db *gorm.DB, month, year string) (string, []models.Demanda, error) {
	key, err := format.MonthKeyFrom(month, year)
	if err != nil {
		return "", nil, errInvalidPeriod
	}
	demandas := []models.Demanda{}
	if err := db.Where("month_year = ?", key).Order("created_at ASC").Find(&demandas).Error; err != nil {
		return key, nil, err
	}
	if len(demandas) == 0 {
		return key, nil, fmt.Errorf("month %s: %w", key, ErrNotFound)
	}
	return key, demandas, nil
}

// WhatsAppText renders the shareable message of a demanda.
func WhatsAppText(db *gorm.DB, id string) (string, error) {
	demanda, err := GetDemanda(db, id)
	if err != nil {
		return "", err
	}
	return format.WhatsAppText(demanda), nil
}

func hasNamedFile(files []FileUpload) bool {
	for _, f := range files {
		if f.Filename != "" {
			return true
		}
	}
	return false
}

// buildAttachments turns a comma separated link list and uploaded files
// into attachments, links first. Files without a name are skipped.
func buildAttachments(blobs *storage.BlobStore, links string, files []FileUpload, now time.Time) (models.Attachments, error) {
	attachments := models.Attachments{}
	for _, link := range format.SplitLinks(links) {
		attachments = append(attachments, models.NewLink(link, now))
	}

	for _, f := range files {
		if f.Filename == "" {
			continue
		}
		key, err := storeUpload(blobs, f)
		if err != nil {
			removeAttachmentBlobs(blobs, attachments)
			return nil, err
		}
		mimeType := f.MimeType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		attachments = append(attachments, models.NewFile(f.Filename, mimeType, key, now))
	}

	return attachments, nil
}

func storeUpload(blobs *storage.BlobStore, f FileUpload) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", f.Filename, err)
	}
	defer rc.Close()
	key, _, err := blobs.Put(rc)
	return key, err
}

func removeAttachmentBlobs(blobs *storage.BlobStore, attachments models.Attachments) {
	for _, a := range attachments {
		if a.Type == models.AttachmentFile {
			removeBlob(blobs, a.Blob)
		}
	}
}
