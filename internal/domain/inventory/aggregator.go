package inventory

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/ordena/bitacora-api/internal/domain/entity"
)

// ThresholdLookup devuelve los umbrales de un producto si existen.
type ThresholdLookup func(key entity.ProductKey) (entity.Thresholds, bool)

type groupConfig struct {
	defaults entity.Thresholds
	lookup   ThresholdLookup
}

// GroupOption configura GroupByProduct.
type GroupOption func(*groupConfig)

// WithDefaultThresholds reemplaza los umbrales 5/100.
func WithDefaultThresholds(t entity.Thresholds) GroupOption {
	return func(c *groupConfig) { c.defaults = t }
}

// WithThresholdLookup usa umbrales por producto cuando la consulta los encuentra.
func WithThresholdLookup(lookup ThresholdLookup) GroupOption {
	return func(c *groupConfig) { c.lookup = lookup }
}

// CompareRecency ordena del más reciente al más antiguo.
// Empates de fecha: ID mayor primero. Movimientos sin fecha van al final.
func CompareRecency(a, b entity.MovementRecord) int {
	aok, bok := a.HasTimestamp(), b.HasTimestamp()
	switch {
	case aok && !bok:
		return -1
	case !aok && bok:
		return 1
	case aok && bok && !a.Timestamp.Equal(b.Timestamp):
		if a.Timestamp.After(b.Timestamp) {
			return -1
		}
		return 1
	}
	return cmp.Compare(b.ID, a.ID)
}

// SortByRecency devuelve una copia ordenada del más reciente al más antiguo.
func SortByRecency(records []entity.MovementRecord) []entity.MovementRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, CompareRecency)
	return sorted
}

// GroupByProduct agrupa los movimientos por (nombre, código) y calcula las estadísticas.
//
// Un único recorrido en orden de recencia: el primer movimiento de cada grupo es el más
// reciente y fija LastMovement y CurrentStock; los siguientes solo suman a las estadísticas.
// El resultado se ordena por la recencia de LastMovement.
func GroupByProduct(records []entity.MovementRecord, opts ...GroupOption) []entity.ProductAggregate {
	cfg := groupConfig{defaults: entity.DefaultThresholds()}
	for _, o := range opts {
		o(&cfg)
	}

	sorted := SortByRecency(records)
	index := make(map[entity.ProductKey]int)
	aggregates := make([]entity.ProductAggregate, 0)

	for _, m := range sorted {
		key := m.Key()
		i, seen := index[key]
		if !seen {
			th := cfg.defaults
			if cfg.lookup != nil {
				if found, ok := cfg.lookup(key); ok {
					th = found
				}
			}
			aggregates = append(aggregates, entity.ProductAggregate{
				ProductName:  m.ProductName,
				ProductCode:  m.ProductCode,
				CurrentStock: m.CurrentStock,
				StockMinimum: th.Minimum,
				StockMaximum: th.Maximum,
				LastMovement: m,
				Statistics:   entity.MovementStatistics{Balance: decimal.Zero},
			})
			i = len(aggregates) - 1
			index[key] = i
		}

		agg := &aggregates[i]
		if agg.ProductID == nil && m.ProductID != nil {
			id := *m.ProductID
			agg.ProductID = &id
		}
		agg.Movements = append(agg.Movements, m)
		accumulate(&agg.Statistics, m)
	}

	for i := range aggregates {
		a := &aggregates[i]
		a.Status = ClassifyStock(a.CurrentStock, a.StockMinimum, a.StockMaximum)
	}

	// Los grupos se crearon en orden de recencia; el ordenamiento estable lo preserva.
	slices.SortStableFunc(aggregates, func(a, b entity.ProductAggregate) int {
		return CompareRecency(a.LastMovement, b.LastMovement)
	})
	return aggregates
}

func accumulate(s *entity.MovementStatistics, m entity.MovementRecord) {
	s.TotalMovements++
	switch m.Kind {
	case entity.MovementKindEntry:
		s.Entries++
		s.Balance = s.Balance.Add(m.Quantity)
	case entity.MovementKindExit:
		s.Exits++
		s.Balance = s.Balance.Sub(m.Quantity)
	case entity.MovementKindAdjustment:
		s.Adjustments++
		s.Balance = s.Balance.Add(m.Quantity)
	default:
		s.Unrecognized++
	}
}
