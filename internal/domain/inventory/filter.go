package inventory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/ordena/bitacora-api/internal/domain/entity"
)

// MovementFilter filtros a nivel de movimiento (se aplican antes de agrupar).
// Los campos vacíos o nil no restringen. Todos los límites son inclusivos.
type MovementFilter struct {
	Kind        entity.MovementKind
	DateFrom    *time.Time
	DateTo      *time.Time
	QuantityMin *decimal.Decimal
	QuantityMax *decimal.Decimal
}

// IsEmpty indica si el filtro no tiene restricciones activas.
func (f MovementFilter) IsEmpty() bool {
	return f.Kind == "" && f.DateFrom == nil && f.DateTo == nil && f.QuantityMin == nil && f.QuantityMax == nil
}

// Matches evalúa todas las restricciones activas (AND lógico).
// Un movimiento sin fecha nunca cumple un límite de fecha activo.
func (f MovementFilter) Matches(m entity.MovementRecord) bool {
	if f.Kind != "" && m.Kind != f.Kind {
		return false
	}
	if f.DateFrom != nil || f.DateTo != nil {
		if !m.HasTimestamp() {
			return false
		}
		if f.DateFrom != nil && m.Timestamp.Before(*f.DateFrom) {
			return false
		}
		if f.DateTo != nil && m.Timestamp.After(*f.DateTo) {
			return false
		}
	}
	if f.QuantityMin != nil && m.Quantity.LessThan(*f.QuantityMin) {
		return false
	}
	if f.QuantityMax != nil && m.Quantity.GreaterThan(*f.QuantityMax) {
		return false
	}
	return true
}

// FilterMovements devuelve una copia con los movimientos que cumplen el filtro, en el orden de entrada.
func FilterMovements(records []entity.MovementRecord, f MovementFilter) []entity.MovementRecord {
	out := make([]entity.MovementRecord, 0, len(records))
	if f.IsEmpty() {
		return append(out, records...)
	}
	for _, m := range records {
		if f.Matches(m) {
			out = append(out, m)
		}
	}
	return out
}

// SearchProducts filtra los agregados por identidad de producto (nombre o código),
// sin distinguir mayúsculas. Se aplica después de agrupar.
func SearchProducts(aggregates []entity.ProductAggregate, text string) []entity.ProductAggregate {
	out := make([]entity.ProductAggregate, 0, len(aggregates))
	needle := strings.TrimSpace(text)
	if needle == "" {
		return append(out, aggregates...)
	}
	fold := cases.Fold()
	needle = fold.String(needle)
	for _, a := range aggregates {
		if strings.Contains(fold.String(a.ProductName), needle) ||
			strings.Contains(fold.String(a.ProductCode), needle) {
			out = append(out, a)
		}
	}
	return out
}
