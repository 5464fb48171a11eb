// reports.go
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
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/localnerve/ascom-demandas/internal/format"
	"github.com/localnerve/ascom-demandas/internal/models"
	"github.com/localnerve/ascom-demandas/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ReportInput is the full set of editable report fields. Image is nil when
// no new image was uploaded.
type ReportInput struct {
	Demanda     string
	Solicitacao string
	Data        string
	Image       io.Reader
	RemoveImage bool
}

func (in *ReportInput) validate(now time.Time) error {
	if blank(in.Demanda) || blank(in.Solicitacao) {
		return errMissingFields
	}
	in.Data = strings.TrimSpace(in.Data)
	if in.Data == "" {
		in.Data = format.Date(now)
	}
	if !format.ValidDate(in.Data) {
		return errInvalidDate
	}
	return nil
}

// ListReports returns reports newest first, optionally filtered by a
// case-insensitive search over demanda, solicitacao and data.
func ListReports(db *gorm.DB, search string) ([]models.Report, error) {
	query := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Order("created_at DESC")

	if !blank(search) {
		pattern := likePattern(search)
		query = query.Where(
			"LOWER(demanda) LIKE ? ESCAPE '!' OR LOWER(solicitacao) LIKE ? ESCAPE '!' OR data LIKE ? ESCAPE '!'",
			pattern, pattern, pattern,
		)
	}

	reports := []models.Report{}
	if err := query.Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// GetReport loads a single report.
func GetReport(db *gorm.DB, id string) (*models.Report, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	var report models.Report
	if err := db.First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &report, nil
}

// CreateReport validates and stores a new report.
func CreateReport(db *gorm.DB, blobs *storage.BlobStore, in ReportInput, now time.Time) (*models.Report, error) {
	if err := in.validate(now); err != nil {
		return nil, err
	}

	report := models.Report{
		Demanda:     strings.TrimSpace(in.Demanda),
		Solicitacao: strings.TrimSpace(in.Solicitacao),
		Data:        in.Data,
		CreatedAt:   now,
	}

	if in.Image != nil {
		key, err := storePNG(blobs, in.Image)
		if err != nil {
			return nil, err
		}
		report.ImageKey = key
	}

	if err := db.Create(&report).Error; err != nil {
		removeBlob(blobs, report.ImageKey)
		return nil, err
	}
	return &report, nil
}

// UpdateReport replaces all fields of a report. The image is replaced when
// a new one is given, removed when RemoveImage is set, and kept otherwise.
func UpdateReport(db *gorm.DB, blobs *storage.BlobStore, id string, in ReportInput, now time.Time) (*models.Report, error) {
	report, err := GetReport(db, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(now); err != nil {
		return nil, err
	}

	oldKey := report.ImageKey
	report.Demanda = strings.TrimSpace(in.Demanda)
	report.Solicitacao = strings.TrimSpace(in.Solicitacao)
	report.Data = in.Data

	switch {
	case in.Image != nil:
		key, err := storePNG(blobs, in.Image)
		if err != nil {
			return nil, err
		}
		report.ImageKey = key
	case in.RemoveImage:
		report.ImageKey = ""
	}

	err = db.Model(report).Updates(map[string]interface{}{
		"demanda":     report.Demanda,
		"solicitacao": report.Solicitacao,
		"data":        report.Data,
		"image_key":   report.ImageKey,
	}).Error
	if err != nil {
		if report.ImageKey != oldKey {
			removeBlob(blobs, report.ImageKey)
		}
		return nil, err
	}

	if oldKey != "" && oldKey != report.ImageKey {
		removeBlob(blobs, oldKey)
	}
	return report, nil
}

// DeleteReport removes a report and its image.
func DeleteReport(db *gorm.DB, blobs *storage.BlobStore, id string) error {
	report, err := GetReport(db, id)
	if err != nil {
		return err
	}
	if err := db.Delete(report).Error; err != nil {
		return err
	}
	removeBlob(blobs, report.ImageKey)
	return nil
}

// ReportImage returns the PNG bytes of a report image, or nil when the
// report has none.
func ReportImage(blobs *storage.BlobStore, report *models.Report) ([]byte, error) {
	if !report.HasImage() {
		return nil, nil
	}
	return blobs.ReadAll(report.ImageKey)
}

// ToReportResponse converts a report to its API shape. The image is
// embedded only when withImage is set.
func ToReportResponse(blobs *storage.BlobStore, report *models.Report, withImage bool) (models.ReportResponse, error) {
	resp := models.ReportResponse{
		ID:          report.ID,
		Demanda:     report.Demanda,
		Solicitacao: report.Solicitacao,
		Data:        report.Data,
		HasImage:    report.HasImage(),
		CreatedAt:   report.CreatedAt,
	}
	if withImage && report.HasImage() {
		img, err := ReportImage(blobs, report)
		if err != nil {
			return resp, fmt.Errorf("read report image: %w", err)
		}
		resp.ImageData = base64.StdEncoding.EncodeToString(img)
	}
	return resp, nil
}

// storePNG decodes any supported image format and stores it re-encoded
// as PNG.
func storePNG(blobs *storage.BlobStore, r io.Reader) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", errInvalidImage
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return blobs.PutBytes(buf.Bytes())
}

func removeBlob(blobs *storage.BlobStore, key string) {
	if key == "" {
		return
	}
	if err := blobs.Remove(key); err != nil {
		log.Printf("Failed to remove blob %s: %v", key, err)
	}
}
