package repository

import (
	"context"
	"net/url"
	"time"

	"github.com/ordena/bitacora-api/internal/domain/entity"
	"github.com/ordena/bitacora-api/internal/domain/inventory"
)

// Scope ubicación del actor (bodega o sucursal) tomada de la sesión.
// Solo parametriza la consulta; la agregación no la usa.
type Scope struct {
	BodegaID   string
	SucursalID string
}

// MovementQuery parámetros de consulta a la fuente de movimientos.
type MovementQuery struct {
	Scope  Scope
	Filter inventory.MovementFilter
	// ProductLimit máximo de productos en la vista (0 = sin límite). Se aplica después de
	// agrupar y no se envía a la fuente.
	ProductLimit int
}

// MovementSource define el puerto de lectura de movimientos de inventario.
// Devuelve una instantánea inmutable; la fuente puede aplicar los filtros o ignorarlos.
type MovementSource interface {
	FetchMovements(ctx context.Context, q MovementQuery) ([]entity.MovementRecord, error)
}

// Params codifica la consulta como parámetros clave/valor (tipo_movimiento, fecha_inicio,
// fecha_fin, cantidad_min, cantidad_max, bodega, sucursal). url.Values.Encode ordena las
// claves, por lo que el resultado sirve como clave estable.
func (q MovementQuery) Params() url.Values {
	v := url.Values{}
	f := q.Filter
	if f.Kind != "" {
		v.Set("tipo_movimiento", string(f.Kind))
	}
	if f.DateFrom != nil {
		v.Set("fecha_inicio", f.DateFrom.Format(time.RFC3339Nano))
	}
	if f.DateTo != nil {
		v.Set("fecha_fin", f.DateTo.Format(time.RFC3339Nano))
	}
	if f.QuantityMin != nil {
		v.Set("cantidad_min", f.QuantityMin.String())
	}
	if f.QuantityMax != nil {
		v.Set("cantidad_max", f.QuantityMax.String())
	}
	if q.Scope.BodegaID != "" {
		v.Set("bodega", q.Scope.BodegaID)
	}
	if q.Scope.SucursalID != "" {
		v.Set("sucursal", q.Scope.SucursalID)
	}
	return v
}
