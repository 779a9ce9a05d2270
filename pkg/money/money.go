// Package money formatea montos según el locale configurado (APP_LOCALE).
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter formatea montos para un locale fijo.
type Formatter struct {
	printer *message.Printer
	places  int32
}

// NewFormatter construye el formateador; un locale inválido cae a español.
func NewFormatter(locale string, places int32) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Spanish
	}
	return &Formatter{printer: message.NewPrinter(tag), places: places}
}

// Format devuelve el monto truncado a los decimales configurados con separadores de miles.
// Ej. es-CO: 1234567.891 -> "1.234.567,89".
func (f *Formatter) Format(d decimal.Decimal) string {
	v, _ := d.Truncate(f.places).Float64()
	return f.printer.Sprint(number.Decimal(v, number.Scale(int(f.places))))
}
