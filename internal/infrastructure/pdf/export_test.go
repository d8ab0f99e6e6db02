package pdf

import "github.com/shopspring/decimal"

// FormatQuantity expone el formato de cantidades a las pruebas.
func FormatQuantity(d decimal.Decimal) string {
	return NewMarotoReportEncoder().quantity(d)
}
