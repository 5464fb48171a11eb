package utils

import (
	"mime"
	"path"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends the standard error envelope
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, "not_found")
}

// MessageResponse sends a 200 with a human readable message and any extra
// fields, e.g. {"message": "Status atualizado", "status": "Confirmado"}.
func MessageResponse(c *fiber.Ctx, message string, extra fiber.Map) error {
	body := fiber.Map{"message": message}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(fiber.StatusOK).JSON(body)
}

// AttachmentResponse sends binary content as a download.
func AttachmentResponse(c *fiber.Ctx, data []byte, contentType, filename string) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, ContentDisposition(filename))
	return c.Status(fiber.StatusOK).Send(data)
}

// ContentDisposition formats an attachment header for filename. Names with
// spaces are quoted and non-ASCII names use the RFC 2231 filename* form.
func ContentDisposition(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		return "attachment"
	}
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}

// MessageResponseStruct defines the schema for message responses
type MessageResponseStruct struct {
	Message string `json:"message"`
}

// StatusResponseStruct is returned by the status update endpoint
type StatusResponseStruct struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// EntregaResponseStruct is returned after appending entregas
type EntregaResponseStruct struct {
	Message string `json:"message"`
	Total   int    `json:"total"`
}

// TextResponseStruct carries the WhatsApp text of a demanda
type TextResponseStruct struct {
	Text string `json:"text"`
}
