// common.go
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

package handlers

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/ascom-demandas/internal/services"
	"github.com/localnerve/ascom-demandas/internal/types"
	"github.com/localnerve/ascom-demandas/internal/utils"
)

// Clock returns the current instant in the office time zone.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// serviceError maps a service error onto the error envelope.
// notFound is the message used when err wraps services.ErrNotFound.
func serviceError(c *fiber.Ctx, err error, notFound, errorType string) error {
	if errors.Is(err, services.ErrNotFound) {
		return utils.NotFoundResponse(c, notFound)
	}

	var ce *types.CustomError
	if errors.As(err, &ce) {
		return utils.ErrorResponse(c, ce.Message, ce.Code, ce.Type)
	}

	log.Printf("%s failed: %v", errorType, err)
	return utils.ErrorResponse(c, "Erro interno do servidor", fiber.StatusInternalServerError, errorType)
}

// formValue returns a trimmed form field from a multipart or urlencoded body.
func formValue(c *fiber.Ctx, key string) string {
	return strings.TrimSpace(c.FormValue(key))
}

// multipartFiles returns the files sent under key. Bodies that are not
// multipart carry no files.
func multipartFiles(c *fiber.Ctx, key string) []*multipart.FileHeader {
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		return nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	return form.File[key]
}

// fileUploads adapts multipart headers for the service layer.
func fileUploads(headers []*multipart.FileHeader) []services.FileUpload {
	uploads := make([]services.FileUpload, 0, len(headers))
	for _, fh := range headers {
		uploads = append(uploads, services.FileUpload{
			Filename: fh.Filename,
			MimeType: fh.Header.Get(fiber.HeaderContentType),
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return uploads
}

// singleFile opens the first file sent under key, or returns nil when none
// was sent. The caller closes the returned file.
func singleFile(c *fiber.Ctx, key string) (multipart.File, error) {
	headers := multipartFiles(c, key)
	if len(headers) == 0 || headers[0].Filename == "" || headers[0].Size == 0 {
		return nil, nil
	}
	return headers[0].Open()
}
