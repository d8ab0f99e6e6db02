package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/ordena/bitacora-api/internal/domain/entity"
)

// Summarize resume un conjunto de movimientos: conteo y unidades por tipo, y balance global.
func Summarize(records []entity.MovementRecord) entity.MovementSummary {
	s := entity.MovementSummary{
		Entries:     entity.KindTotals{Units: decimal.Zero},
		Exits:       entity.KindTotals{Units: decimal.Zero},
		Adjustments: entity.KindTotals{Units: decimal.Zero},
		Balance:     decimal.Zero,
	}
	for _, m := range records {
		s.TotalMovements++
		switch m.Kind {
		case entity.MovementKindEntry:
			s.Entries.Count++
			s.Entries.Units = s.Entries.Units.Add(m.Quantity)
			s.Balance = s.Balance.Add(m.Quantity)
		case entity.MovementKindExit:
			s.Exits.Count++
			s.Exits.Units = s.Exits.Units.Add(m.Quantity)
			s.Balance = s.Balance.Sub(m.Quantity)
		case entity.MovementKindAdjustment:
			s.Adjustments.Count++
			s.Adjustments.Units = s.Adjustments.Units.Add(m.Quantity)
			s.Balance = s.Balance.Add(m.Quantity)
		default:
			s.Unrecognized++
		}
	}
	return s
}
