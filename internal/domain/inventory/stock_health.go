package inventory

import (
	"github.com/ordena/bitacora-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ClassifyStock determina el estado de salud del stock.
// El mínimo se evalúa primero: si minimum >= maximum y el stock toca ambos, gana CRITICO.
func ClassifyStock(current, minimum, maximum decimal.Decimal) entity.StockStatus {
	if current.LessThanOrEqual(minimum) {
		return entity.StockStatusCritical
	}
	if current.GreaterThanOrEqual(maximum) {
		return entity.StockStatusMaximum
	}
	return entity.StockStatusNormal
}
