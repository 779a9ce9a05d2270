package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/tienda-backoffice/internal/application/authz"
	"github.com/jhoicas/tienda-backoffice/internal/application/dto"
	"github.com/jhoicas/tienda-backoffice/internal/domain"
	"github.com/jhoicas/tienda-backoffice/pkg/logger"
)

// forbiddenBody es idéntico para permiso denegado, dueño distinto e instancia oculta.
var forbiddenBody = dto.ErrorResponse{Code: "FORBIDDEN", Message: "no tiene permiso para realizar esta operación"}

// errorKind clasificación de un error para elegir status, código y nivel de log.
type errorKind struct {
	status int
	code   string
	level  zerolog.Level
}

func classify(err error) errorKind {
	var stockErr *domain.StockError
	switch {
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotOwner):
		return errorKind{fiber.StatusForbidden, "FORBIDDEN", zerolog.WarnLevel}
	case errors.Is(err, domain.ErrUnauthorized):
		return errorKind{fiber.StatusUnauthorized, "UNAUTHORIZED", zerolog.WarnLevel}
	case errors.As(err, &stockErr), errors.Is(err, domain.ErrInsufficientStock):
		return errorKind{fiber.StatusBadRequest, "INSUFFICIENT_STOCK", zerolog.WarnLevel}
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrInvalidInput):
		return errorKind{fiber.StatusBadRequest, "VALIDATION", zerolog.WarnLevel}
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return errorKind{fiber.StatusNotFound, "NOT_FOUND", zerolog.InfoLevel}
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrEmailAlreadyExists):
		return errorKind{fiber.StatusBadRequest, "DUPLICATE", zerolog.ErrorLevel}
	case errors.Is(err, domain.ErrConflict):
		return errorKind{fiber.StatusConflict, "CONFLICT", zerolog.ErrorLevel}
	default:
		return errorKind{fiber.StatusInternalServerError, "INTERNAL", zerolog.FatalLevel}
	}
}

// writeError registra el error con el nivel de su tipo y responde con dto.ErrorResponse.
// Los errores inesperados se registran en nivel fatal sin terminar el proceso y responden un mensaje genérico.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	kind := classify(err)
	log.WithLevel(kind.level).
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("user_id", GetUserID(c)).
		Str("code", kind.code).
		Msg("request rechazada")

	body := dto.ErrorResponse{Code: kind.code, Message: err.Error()}
	switch kind.status {
	case fiber.StatusForbidden:
		body = forbiddenBody
	case fiber.StatusInternalServerError:
		body.Message = "error interno, intente más tarde"
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		body.Fields = map[string]string{verr.Field: verr.Reason}
	}
	var ferr *fieldErrors
	if errors.As(err, &ferr) {
		body.Fields = ferr.fields
	}
	return c.Status(kind.status).JSON(body)
}

// hideMissing convierte un "no encontrado" en denegación cuando el acceso del sujeto
// está limitado a sus propias instancias. ErrProductNotFound es de validación y no se oculta.
func hideMissing(d authz.Decision, err error) error {
	if d.Scoped && errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotOwner
	}
	return err
}
