package inventory_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordena/bitacora-api/internal/domain/entity"
	"github.com/ordena/bitacora-api/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func mov(id int64, kind entity.MovementKind, qty int64, name, code string, ts time.Time, stock int64) entity.MovementRecord {
	return entity.MovementRecord{
		ID:           id,
		Kind:         kind,
		Quantity:     decimal.NewFromInt(qty),
		ProductName:  name,
		ProductCode:  code,
		Timestamp:    ts,
		CurrentStock: decimal.NewFromInt(stock),
		UserName:     "bodeguero",
		Location:     "Bodega Central",
	}
}

func sample() []entity.MovementRecord {
	return []entity.MovementRecord{
		mov(1, entity.MovementKindEntry, 10, "Arroz", "C1", t0.Add(2*time.Hour), 30),
		mov(2, entity.MovementKindExit, 4, "Arroz", "C1", t0.Add(1*time.Hour), 20),
		mov(3, entity.MovementKindAdjustment, 3, "Azúcar", "C2", t0.Add(5*time.Hour), 3),
		mov(4, entity.MovementKindExit, 7, "Azúcar", "C2", t0.Add(3*time.Hour), 0),
		mov(5, entity.MovementKindEntry, 120, "Aceite", "C3", t0.Add(4*time.Hour), 150),
		mov(6, entity.MovementKind("TRASLADO"), 9, "Aceite", "C3", t0.Add(30*time.Minute), 30),
		mov(7, entity.MovementKindEntry, 2, "Arroz", "C1-B", t0, 2),
	}
}

func byKey(aggs []entity.ProductAggregate) map[entity.ProductKey]entity.ProductAggregate {
	out := make(map[entity.ProductKey]entity.ProductAggregate, len(aggs))
	for _, a := range aggs {
		out[a.Key()] = a
	}
	return out
}

func ids(records []entity.MovementRecord) []int64 {
	out := make([]int64, 0, len(records))
	for _, m := range records {
		out = append(out, m.ID)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario de referencia
// ──────────────────────────────────────────────────────────────────────────────

func TestGroupByProduct_EscenarioEntradaYSalida(t *testing.T) {
	records := []entity.MovementRecord{
		mov(2, entity.MovementKindExit, 4, "A", "C1", t0, 20),
		mov(1, entity.MovementKindEntry, 10, "A", "C1", t0.Add(time.Hour), 30),
	}

	aggs := inventory.GroupByProduct(records)
	require.Len(t, aggs, 1)

	a := aggs[0]
	assert.Equal(t, "6", a.Statistics.Balance.String(), "balance = 10 - 4")
	assert.Equal(t, "30", a.CurrentStock.String(), "el stock viene del movimiento más reciente")
	assert.Equal(t, 1, a.Statistics.Entries)
	assert.Equal(t, 1, a.Statistics.Exits)
	assert.Equal(t, 2, a.Statistics.TotalMovements)
	assert.Equal(t, int64(1), a.LastMovement.ID)
	assert.Equal(t, []int64{1, 2}, ids(a.Movements), "movimientos del más reciente al más antiguo")
}

func TestGroupByProduct_ClaveCompuestaNombreYCodigo(t *testing.T) {
	aggs := inventory.GroupByProduct(sample())
	require.Len(t, aggs, 4, "Arroz/C1 y Arroz/C1-B son productos distintos")

	m := byKey(aggs)
	assert.Contains(t, m, entity.ProductKey{Name: "Arroz", Code: "C1"})
	assert.Contains(t, m, entity.ProductKey{Name: "Arroz", Code: "C1-B"})
}

func TestGroupByProduct_OrdenPorUltimoMovimiento(t *testing.T) {
	aggs := inventory.GroupByProduct(sample())
	require.Len(t, aggs, 4)

	got := make([]string, 0, len(aggs))
	for _, a := range aggs {
		got = append(got, a.ProductCode)
	}
	// C2 (5h), C3 (4h), C1 (2h), C1-B (0h)
	assert.Equal(t, []string{"C2", "C3", "C1", "C1-B"}, got)
}

func TestGroupByProduct_UmbralesPorDefectoYEstado(t *testing.T) {
	m := byKey(inventory.GroupByProduct(sample()))

	azucar := m[entity.ProductKey{Name: "Azúcar", Code: "C2"}]
	assert.True(t, azucar.StockMinimum.Equal(decimal.NewFromInt(5)))
	assert.True(t, azucar.StockMaximum.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, entity.StockStatusCritical, azucar.Status, "stock 3 <= 5")

	aceite := m[entity.ProductKey{Name: "Aceite", Code: "C3"}]
	assert.Equal(t, entity.StockStatusMaximum, aceite.Status, "stock 150 >= 100")

	arroz := m[entity.ProductKey{Name: "Arroz", Code: "C1"}]
	assert.Equal(t, entity.StockStatusNormal, arroz.Status)
}

func TestGroupByProduct_TipoDesconocidoNoAfectaBalance(t *testing.T) {
	m := byKey(inventory.GroupByProduct(sample()))
	aceite := m[entity.ProductKey{Name: "Aceite", Code: "C3"}]

	assert.Equal(t, 2, aceite.Statistics.TotalMovements, "el movimiento desconocido sigue en la lista")
	assert.Equal(t, 1, aceite.Statistics.Unrecognized)
	assert.Equal(t, 1, aceite.Statistics.Entries)
	assert.Equal(t, 0, aceite.Statistics.Exits+aceite.Statistics.Adjustments)
	assert.Equal(t, "120", aceite.Statistics.Balance.String())
	assert.Len(t, aceite.Movements, 2)
}

func TestGroupByProduct_EntradaVacia(t *testing.T) {
	assert.Empty(t, inventory.GroupByProduct(nil))
	assert.Empty(t, inventory.GroupByProduct([]entity.MovementRecord{}))
}

func TestGroupByProduct_EmpateDeFechaGanaIDMayor(t *testing.T) {
	records := []entity.MovementRecord{
		mov(10, entity.MovementKindEntry, 1, "P", "X", t0, 11),
		mov(11, entity.MovementKindEntry, 1, "P", "X", t0, 12),
	}
	for _, input := range [][]entity.MovementRecord{records, {records[1], records[0]}} {
		aggs := inventory.GroupByProduct(input)
		require.Len(t, aggs, 1)
		assert.Equal(t, int64(11), aggs[0].LastMovement.ID)
		assert.Equal(t, "12", aggs[0].CurrentStock.String())
	}
}

func TestGroupByProduct_SinFechaVaAlFinal(t *testing.T) {
	records := []entity.MovementRecord{
		mov(1, entity.MovementKindEntry, 5, "P", "X", time.Time{}, 99),
		mov(2, entity.MovementKindEntry, 5, "P", "X", t0, 10),
	}
	aggs := inventory.GroupByProduct(records)
	require.Len(t, aggs, 1)
	assert.Equal(t, int64(2), aggs[0].LastMovement.ID, "un movimiento sin fecha nunca es el más reciente")
	assert.Equal(t, "10", aggs[0].CurrentStock.String())
	assert.Equal(t, []int64{2, 1}, ids(aggs[0].Movements))
}

func TestGroupByProduct_ProductIDPrimeroDisponible(t *testing.T) {
	id := int64(77)
	older := mov(1, entity.MovementKindEntry, 1, "P", "X", t0, 1)
	older.ProductID = &id
	newer := mov(2, entity.MovementKindEntry, 1, "P", "X", t0.Add(time.Hour), 2)

	aggs := inventory.GroupByProduct([]entity.MovementRecord{older, newer})
	require.Len(t, aggs, 1)
	require.True(t, aggs[0].HasDetail())
	assert.Equal(t, int64(77), *aggs[0].ProductID)

	noID := inventory.GroupByProduct([]entity.MovementRecord{newer})
	assert.False(t, noID[0].HasDetail())
}

func TestGroupByProduct_UmbralesDesdeConsulta(t *testing.T) {
	lookup := func(key entity.ProductKey) (entity.Thresholds, bool) {
		if key.Code == "C1" {
			return entity.Thresholds{Minimum: decimal.NewFromInt(40), Maximum: decimal.NewFromInt(80)}, true
		}
		return entity.Thresholds{}, false
	}
	m := byKey(inventory.GroupByProduct(sample(), inventory.WithThresholdLookup(lookup)))

	arroz := m[entity.ProductKey{Name: "Arroz", Code: "C1"}]
	assert.Equal(t, entity.StockStatusCritical, arroz.Status, "stock 30 <= mínimo 40")

	aceite := m[entity.ProductKey{Name: "Aceite", Code: "C3"}]
	assert.True(t, aceite.StockMinimum.Equal(decimal.NewFromInt(5)), "sin umbral propio usa el valor por defecto")
}

func TestGroupByProduct_NoModificaLaEntrada(t *testing.T) {
	records := sample()
	before := ids(records)
	_ = inventory.GroupByProduct(records)
	assert.Equal(t, before, ids(records))
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades
// ──────────────────────────────────────────────────────────────────────────────

// Agrupar cualquier permutación produce los mismos agregados.
func TestGroupByProduct_DeterminismoBajoPermutaciones(t *testing.T) {
	base := byKey(inventory.GroupByProduct(sample()))
	rng := rand.New(rand.NewPCG(42, 7))

	for i := 0; i < 50; i++ {
		shuffled := sample()
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := byKey(inventory.GroupByProduct(shuffled))
		require.Len(t, got, len(base))
		for key, want := range base {
			g, ok := got[key]
			require.True(t, ok, "falta el producto %v", key)
			assert.Equal(t, want.Statistics.TotalMovements, g.Statistics.TotalMovements)
			assert.Equal(t, want.Statistics.Entries, g.Statistics.Entries)
			assert.Equal(t, want.Statistics.Exits, g.Statistics.Exits)
			assert.Equal(t, want.Statistics.Adjustments, g.Statistics.Adjustments)
			assert.True(t, want.Statistics.Balance.Equal(g.Statistics.Balance))
			assert.True(t, want.CurrentStock.Equal(g.CurrentStock))
			assert.Equal(t, want.LastMovement.ID, g.LastMovement.ID)
			assert.Equal(t, ids(want.Movements), ids(g.Movements))
		}
	}
}

func TestGroupByProduct_IdentidadDelBalance(t *testing.T) {
	for _, a := range inventory.GroupByProduct(sample()) {
		expected := decimal.Zero
		for _, m := range a.Movements {
			switch m.Kind {
			case entity.MovementKindEntry, entity.MovementKindAdjustment:
				expected = expected.Add(m.Quantity)
			case entity.MovementKindExit:
				expected = expected.Sub(m.Quantity)
			}
		}
		assert.True(t, expected.Equal(a.Statistics.Balance), "balance de %s", a.ProductCode)
	}
}

func TestGroupByProduct_InvarianteDeRecencia(t *testing.T) {
	for _, a := range inventory.GroupByProduct(sample()) {
		latest := a.Movements[0]
		for _, m := range a.Movements[1:] {
			assert.False(t, m.Timestamp.After(latest.Timestamp))
		}
		assert.True(t, latest.CurrentStock.Equal(a.CurrentStock))
		assert.Equal(t, latest.ID, a.LastMovement.ID)
	}
}
