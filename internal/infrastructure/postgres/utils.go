package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/tienda-backoffice/internal/domain"
)

type scanner interface {
	Scan(dest ...any) error
}

func pgCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	code, _ := pgCode(err)
	return code == "23505"
}

// isForeignKeyViolation verifica si un error es una violación de clave foránea (23503).
func isForeignKeyViolation(err error) bool {
	code, _ := pgCode(err)
	return code == "23503"
}

// isNumericOutOfRange valor que no cabe en la precisión de la columna (22003).
func isNumericOutOfRange(err error) bool {
	code, _ := pgCode(err)
	return code == "22003"
}

// writeErr traduce los códigos de integridad a errores de dominio.
func writeErr(err error) error {
	switch {
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return domain.ErrConflict
	case isNumericOutOfRange(err):
		return domain.NewValidationError("", "valor numérico fuera de rango")
	}
	return nil
}

// nullable convierte "" en NULL para columnas UUID opcionales.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
