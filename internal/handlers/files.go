package handlers

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/ascom-demandas/internal/storage"
	"github.com/localnerve/ascom-demandas/internal/utils"
)

// FileHandler serves stored attachments
type FileHandler struct {
	Blobs *storage.BlobStore
}

// Download handles GET /api/files/:shard/:id
// @Summary Download attachment
// @Description Returns the stored bytes of a reference or entrega file. Pass filename to name the download.
// @Tags Files
// @Produce octet-stream
// @Param shard path string true "First two characters of the blob id"
// @Param id path string true "Blob id"
// @Param filename query string false "Download name"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /files/{shard}/{id} [get]
func (h *FileHandler) Download(c *fiber.Ctx) error {
	key := c.Params("shard") + "/" + c.Params("id")

	data, err := h.Blobs.ReadAll(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return utils.NotFoundResponse(c, "Arquivo não encontrado")
		}
		return serviceError(c, err, "Arquivo não encontrado", "files.download")
	}

	contentType := http.DetectContentType(data)
	if name := c.Query("filename"); name != "" {
		if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
			contentType = byExt
		}
		return utils.AttachmentResponse(c, data, contentType, name)
	}

	c.Set(fiber.HeaderContentType, contentType)
	return c.Status(fiber.StatusOK).Send(data)
}
