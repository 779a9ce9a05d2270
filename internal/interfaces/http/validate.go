package http

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-backoffice/internal/application/dto"
	"github.com/jhoicas/tienda-backoffice/internal/domain"
	"github.com/jhoicas/tienda-backoffice/internal/domain/validation"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldErrors errores de validación por campo; envuelve ErrInvalidInput.
type fieldErrors struct {
	fields map[string]string
}

func (e *fieldErrors) Error() string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.fields[k])
	}
	return strings.Join(parts, "; ")
}

func (e *fieldErrors) Unwrap() error { return domain.ErrInvalidInput }

// parseBody decodifica el JSON y valida las etiquetas validate del DTO.
// Solo se acepta application/json: los booleanos de formulario no pasarían por StrictBool.
func parseBody(c *fiber.Ctx, dst any) error {
	if !c.Is("json") {
		return domain.NewValidationError("", "el cuerpo debe enviarse como application/json")
	}
	if err := c.BodyParser(dst); err != nil {
		var boolErr *dto.StrictBoolError
		if errors.As(err, &boolErr) {
			return domain.NewValidationError("", boolErr.Error())
		}
		return domain.NewValidationError("", "cuerpo inválido: "+err.Error())
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validar: %w", err)
	}
	fe := &fieldErrors{fields: make(map[string]string, len(verrs))}
	for _, v := range verrs {
		fe.fields[fieldPath(v)] = describe(v)
	}
	return fe
}

// fieldPath quita el nombre del struct raíz del namespace (ej. CreateUserRequest.roles[0]).
func fieldPath(v validator.FieldError) string {
	ns := v.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return v.Field()
}

func describe(v validator.FieldError) string {
	switch v.Tag() {
	case "required":
		return "es obligatorio"
	case "email":
		return "email inválido"
	case "uuid":
		return "debe ser un UUID"
	case "min":
		return "mínimo " + v.Param()
	case "max":
		return "máximo " + v.Param()
	case "oneof":
		return "debe ser uno de: " + v.Param()
	default:
		return "inválido (" + v.Tag() + ")"
	}
}

// pageFromQuery lee limit/offset de la query con valores por defecto.
func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	return p
}

// pathID devuelve el parámetro :id; un id que no es UUID canónico no puede existir.
func pathID(c *fiber.Ctx, name string) (string, error) {
	id := c.Params(name)
	if !validation.IsID(id) {
		return id, domain.ErrNotFound
	}
	return id, nil
}
