package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto y límites a Limit/Offset.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP. Fields detalla errores por campo en validaciones.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// StrictBool booleano que solo acepta true/false JSON, "True"/"False", "1"/"0" o 1/0.
// Cualquier otro valor hace fallar el decodificado.
type StrictBool bool

// UnmarshalJSON implementa json.Unmarshaler.
func (b *StrictBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true", `"True"`, `"1"`, "1":
		*b = true
		return nil
	case "false", `"False"`, `"0"`, "0":
		*b = false
		return nil
	}
	return &StrictBoolError{Raw: string(data)}
}

// MarshalJSON serializa como booleano JSON.
func (b StrictBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}

// StrictBoolError valor booleano no aceptado.
type StrictBoolError struct {
	Raw string
}

func (e *StrictBoolError) Error() string {
	return fmt.Sprintf("valor booleano inválido %s: use True o False", e.Raw)
}

// DeletedResponse cuerpo de una eliminación exitosa.
type DeletedResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// Money monto de respuesta; se serializa con escala fija ("1.40", "0.00").
// Al decodificar acepta cualquier decimal JSON y queda sin escala fija.
type Money struct {
	decimal.Decimal
	places int32
	fixed  bool
}

// NewMoney trunca d a places decimales y fija esa escala para la salida.
func NewMoney(d decimal.Decimal, places int32) Money {
	return Money{Decimal: d.Truncate(places), places: places, fixed: true}
}

// MarshalJSON implementa json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	if !m.fixed {
		return m.Decimal.MarshalJSON()
	}
	return []byte(`"` + m.StringFixed(m.places) + `"`), nil
}

// UnmarshalJSON implementa json.Unmarshaler.
func (m *Money) UnmarshalJSON(data []byte) error {
	*m = Money{}
	return m.Decimal.UnmarshalJSON(data)
}
