package repository

import (
	"context"

	"github.com/ordena/bitacora-api/internal/domain/entity"
)

// ThresholdRepository umbrales de stock por producto (stock mínimo y máximo).
// Los productos sin registro usan los umbrales por defecto.
type ThresholdRepository interface {
	GetThresholds(ctx context.Context, keys []entity.ProductKey) (map[entity.ProductKey]entity.Thresholds, error)
}
