package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ordena/bitacora-api/internal/domain/entity"
	"github.com/ordena/bitacora-api/internal/domain/repository"
)

var _ repository.ThresholdRepository = (*ThresholdRepo)(nil)

// ThresholdRepo lee el stock mínimo configurado por producto en la tabla stock.
// La base no guarda un máximo; se completa con el valor por defecto.
type ThresholdRepo struct {
	q        Querier
	defaults entity.Thresholds
}

// NewThresholdRepository construye el adaptador.
func NewThresholdRepository(q Querier, defaults entity.Thresholds) *ThresholdRepo {
	return &ThresholdRepo{q: q, defaults: defaults}
}

// GetThresholds devuelve los umbrales de los productos pedidos que tienen stock_minimo.
// Los productos sin configuración no aparecen en el mapa.
func (r *ThresholdRepo) GetThresholds(ctx context.Context, keys []entity.ProductKey) (map[entity.ProductKey]entity.Thresholds, error) {
	out := make(map[entity.ProductKey]entity.Thresholds, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	codes := make([]string, 0, len(keys))
	wanted := make(map[entity.ProductKey]struct{}, len(keys))
	for _, k := range keys {
		codes = append(codes, k.Code)
		wanted[k] = struct{}{}
	}

	query := `
		SELECT p.nombre_prodc, p.codigo_interno, MAX(st.stock_minimo)::numeric
		FROM productos p
		JOIN stock st ON st.productos_fk_id = p.id_prodc
		WHERE p.codigo_interno = ANY($1) AND st.stock_minimo IS NOT NULL
		GROUP BY p.nombre_prodc, p.codigo_interno`
	rows, err := r.q.Query(ctx, query, codes)
	if err != nil {
		if isUndefinedObject(err) {
			return out, nil
		}
		return nil, fmt.Errorf("list thresholds: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key entity.ProductKey
		var minimum decimal.Decimal
		if err := rows.Scan(&key.Name, &key.Code, &minimum); err != nil {
			return nil, fmt.Errorf("scan threshold: %w", err)
		}
		if _, ok := wanted[key]; !ok {
			continue
		}
		out[key] = entity.Thresholds{Minimum: minimum, Maximum: r.defaults.Maximum}
	}
	return out, rows.Err()
}
