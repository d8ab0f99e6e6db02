package history

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ordena/bitacora-api/internal/application/dto"
	"github.com/ordena/bitacora-api/internal/domain"
	"github.com/ordena/bitacora-api/internal/domain/entity"
	"github.com/ordena/bitacora-api/internal/domain/inventory"
)

const dateOnly = "2006-01-02"

const (
	maxRecentDays = 3650
	maxProducts   = 500
)

// ParseFilter traduce los parámetros de consulta a un filtro de movimientos.
// Las fechas sin hora se interpretan en loc; fecha_fin cubre hasta el final del día.
func ParseFilter(req dto.HistoryQueryRequest, loc *time.Location) (inventory.MovementFilter, error) {
	return ParseFilterAt(req, loc, time.Now())
}

// ParseFilterAt es ParseFilter con el instante actual explícito.
// dias=N acota fecha_inicio a now-N días; si fecha_inicio es posterior, se conserva.
func ParseFilterAt(req dto.HistoryQueryRequest, loc *time.Location, now time.Time) (inventory.MovementFilter, error) {
	if loc == nil {
		loc = time.UTC
	}
	var f inventory.MovementFilter

	if s := strings.TrimSpace(req.TipoMovimiento); s != "" {
		f.Kind = entity.ParseMovementKind(s)
	}

	from, err := parseDate(req.FechaInicio, loc, false)
	if err != nil {
		return f, fmt.Errorf("%w: fecha_inicio: %v", domain.ErrInvalidInput, err)
	}
	to, err := parseDate(req.FechaFin, loc, true)
	if err != nil {
		return f, fmt.Errorf("%w: fecha_fin: %v", domain.ErrInvalidInput, err)
	}
	days, err := parseBoundedInt(req.Dias, maxRecentDays)
	if err != nil {
		return f, fmt.Errorf("%w: dias: %v", domain.ErrInvalidInput, err)
	}
	if days > 0 {
		since := now.In(loc).AddDate(0, 0, -days)
		if from == nil || from.Before(since) {
			from = &since
		}
	}
	if from != nil && to != nil && from.After(*to) {
		return f, fmt.Errorf("%w: fecha_inicio posterior a fecha_fin", domain.ErrInvalidInput)
	}
	f.DateFrom, f.DateTo = from, to

	qmin, err := parseQuantity(req.CantidadMin)
	if err != nil {
		return f, fmt.Errorf("%w: cantidad_min: %v", domain.ErrInvalidInput, err)
	}
	qmax, err := parseQuantity(req.CantidadMax)
	if err != nil {
		return f, fmt.Errorf("%w: cantidad_max: %v", domain.ErrInvalidInput, err)
	}
	if qmin != nil && qmax != nil && qmin.GreaterThan(*qmax) {
		return f, fmt.Errorf("%w: cantidad_min mayor que cantidad_max", domain.ErrInvalidInput)
	}
	f.QuantityMin, f.QuantityMax = qmin, qmax

	return f, nil
}

// ParseProductLimit interpreta limite: vacío = sin límite, si no un entero entre 1 y 500.
func ParseProductLimit(raw string) (int, error) {
	n, err := parseBoundedInt(raw, maxProducts)
	if err != nil {
		return 0, fmt.Errorf("%w: limite: %v", domain.ErrInvalidInput, err)
	}
	return n, nil
}

func parseBoundedInt(raw string, upper int) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > upper {
		return 0, fmt.Errorf("se espera un entero entre 1 y %d", upper)
	}
	return n, nil
}

func parseDate(raw string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(dateOnly, s, loc); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("formato esperado YYYY-MM-DD o RFC3339")
	}
	return &t, nil
}

func parseQuantity(raw string) (*decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("número inválido %q", s)
	}
	return &d, nil
}
