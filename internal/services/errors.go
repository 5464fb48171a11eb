package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/localnerve/ascom-demandas/internal/types"
)

// ErrNotFound is wrapped by every lookup that finds no record.
var ErrNotFound = errors.New("not found")

var (
	errInvalidID       = types.BadRequest("ID inválido", "validation.id")
	errMissingFields   = types.BadRequest("Preencha todos os campos obrigatórios", "validation.required")
	errInvalidStatus   = types.BadRequest("Status inválido", "validation.status")
	errInvalidDate     = types.BadRequest("Data inválida, use DD/MM/AAAA", "validation.date")
	errInvalidImage    = types.BadRequest("Imagem inválida", "validation.image")
	errInvalidPeriod   = types.BadRequest("Mês ou ano inválido", "validation.period")
	errEmptyEntrega    = types.BadRequest("Adicione ao menos um link ou arquivo", "validation.entrega")
	errStatusForbidden = types.BadRequest("Transição de status não permitida", "validation.transition")
)

func validID(id string) error {
	if uuid.Validate(id) != nil {
		return errInvalidID
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// likePattern builds a case-insensitive substring pattern escaped for
// LIKE ... ESCAPE '!'.
func likePattern(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
