package history_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordena/bitacora-api/internal/application/dto"
	"github.com/ordena/bitacora-api/internal/application/history"
	"github.com/ordena/bitacora-api/internal/domain"
	"github.com/ordena/bitacora-api/internal/domain/entity"
)

func TestParseFilter_Vacio(t *testing.T) {
	f, err := history.ParseFilter(dto.HistoryQueryRequest{}, nil)
	require.NoError(t, err)
	assert.True(t, f.IsEmpty())
}

func TestParseFilter_Completo(t *testing.T) {
	req := dto.HistoryQueryRequest{
		TipoMovimiento: "salida",
		FechaInicio:    "2025-03-01",
		FechaFin:       "2025-03-31",
		CantidadMin:    "1.5",
		CantidadMax:    "100",
	}
	f, err := history.ParseFilter(req, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, entity.MovementKindExit, f.Kind)
	require.NotNil(t, f.DateFrom)
	require.NotNil(t, f.DateTo)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *f.DateFrom)
	assert.Equal(t, time.Date(2025, 3, 31, 23, 59, 59, 999999999, time.UTC), *f.DateTo, "fecha_fin cubre el día completo")
	assert.Equal(t, "1.5", f.QuantityMin.String())
	assert.Equal(t, "100", f.QuantityMax.String())
}

func TestParseFilter_RFC3339(t *testing.T) {
	f, err := history.ParseFilter(dto.HistoryQueryRequest{FechaFin: "2025-03-31T10:00:00-03:00"}, time.UTC)
	require.NoError(t, err)
	require.NotNil(t, f.DateTo)
	assert.True(t, f.DateTo.Equal(time.Date(2025, 3, 31, 13, 0, 0, 0, time.UTC)))
}

func TestParseFilter_Invalidos(t *testing.T) {
	cases := []struct {
		name string
		req  dto.HistoryQueryRequest
	}{
		{"fecha mal formada", dto.HistoryQueryRequest{FechaInicio: "01/03/2025"}},
		{"rango de fechas invertido", dto.HistoryQueryRequest{FechaInicio: "2025-04-01", FechaFin: "2025-03-01"}},
		{"cantidad no numérica", dto.HistoryQueryRequest{CantidadMin: "diez"}},
		{"rango de cantidades invertido", dto.HistoryQueryRequest{CantidadMin: "10", CantidadMax: "2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := history.ParseFilter(tc.req, time.UTC)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestParseFilterAt_Dias(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	f, err := history.ParseFilterAt(dto.HistoryQueryRequest{Dias: "7"}, time.UTC, now)
	require.NoError(t, err)
	require.NotNil(t, f.DateFrom)
	assert.Equal(t, time.Date(2025, 6, 3, 15, 0, 0, 0, time.UTC), *f.DateFrom)
	assert.Nil(t, f.DateTo)

	f, err = history.ParseFilterAt(dto.HistoryQueryRequest{Dias: "7", FechaInicio: "2025-06-08"}, time.UTC, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), *f.DateFrom, "una fecha_inicio posterior prevalece")

	f, err = history.ParseFilterAt(dto.HistoryQueryRequest{Dias: "7", FechaInicio: "2025-01-01"}, time.UTC, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 3, 15, 0, 0, 0, time.UTC), *f.DateFrom)

	_, err = history.ParseFilterAt(dto.HistoryQueryRequest{Dias: "7", FechaFin: "2025-05-01"}, time.UTC, now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseFilterAt_DiasInvalido(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	for _, raw := range []string{"0", "-3", "siete", "3651"} {
		_, err := history.ParseFilterAt(dto.HistoryQueryRequest{Dias: raw}, time.UTC, now)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, raw)
	}
}

func TestParseProductLimit(t *testing.T) {
	n, err := history.ParseProductLimit("")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = history.ParseProductLimit(" 20 ")
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	for _, raw := range []string{"0", "501", "veinte"} {
		_, err := history.ParseProductLimit(raw)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, raw)
	}
}
