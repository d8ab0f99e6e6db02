package history

import (
	"time"

	"github.com/ordena/bitacora-api/internal/application/dto"
	"github.com/ordena/bitacora-api/internal/domain/entity"
)

// ToMovementDTO convierte un movimiento a su representación JSON. La fecha se expresa en loc.
func ToMovementDTO(m entity.MovementRecord, loc *time.Location) dto.MovementDTO {
	var fecha *string
	if m.HasTimestamp() {
		s := m.Timestamp.In(loc).Format(time.RFC3339)
		fecha = &s
	}
	return dto.MovementDTO{
		ID:             m.ID,
		Cantidad:       m.Quantity,
		Fecha:          fecha,
		ProductoNombre: m.ProductName,
		ProductoCodigo: m.ProductCode,
		ProductoID:     m.ProductID,
		UsuarioNombre:  m.UserName,
		TipoMovimiento: string(m.Kind),
		StockActual:    m.CurrentStock,
		StockAntes:     m.StockBefore,
		StockDespues:   m.StockAfter,
		Motivo:         m.Reason,
		Ubicacion:      m.Location,
	}
}

// ToMovementDTOs convierte una lista de movimientos.
func ToMovementDTOs(records []entity.MovementRecord, loc *time.Location) []dto.MovementDTO {
	out := make([]dto.MovementDTO, 0, len(records))
	for _, m := range records {
		out = append(out, ToMovementDTO(m, loc))
	}
	return out
}

// ToHistoryResponse construye la respuesta agrupada por producto.
func ToHistoryResponse(view HistoryView, loc *time.Location) dto.HistoryResponse {
	products := make([]dto.ProductAggregateDTO, 0, len(view.Products))
	for _, p := range view.Products {
		s := p.Statistics
		products = append(products, dto.ProductAggregateDTO{
			ProductoNombre: p.ProductName,
			ProductoCodigo: p.ProductCode,
			ProductoID:     p.ProductID,
			TieneDetalle:   p.HasDetail(),
			StockActual:    p.CurrentStock,
			StockMinimo:    p.StockMinimum,
			StockMaximo:    p.StockMaximum,
			EstadoStock:    string(p.Status),
			Estadisticas: dto.StatisticsDTO{
				TotalMovimientos: s.TotalMovements,
				Entradas:         s.Entries,
				Salidas:          s.Exits,
				Ajustes:          s.Adjustments,
				NoReconocidos:    s.Unrecognized,
				Balance:          s.Balance,
			},
			UltimoMovimiento: ToMovementDTO(p.LastMovement, loc),
			Movimientos:      ToMovementDTOs(p.Movements, loc),
		})
	}
	return dto.HistoryResponse{
		Estado:           string(view.State),
		TotalProductos:   len(view.Products),
		TotalMovimientos: len(view.Visible),
		Estadisticas:     ToSummaryDTO(view.Summary),
		Productos:        products,
	}
}

// ToSummaryDTO convierte las estadísticas globales.
func ToSummaryDTO(s entity.MovementSummary) dto.SummaryDTO {
	totals := func(k entity.KindTotals) dto.KindTotalsDTO {
		return dto.KindTotalsDTO{Cantidad: k.Count, Unidades: k.Units}
	}
	return dto.SummaryDTO{
		TotalMovimientos: s.TotalMovements,
		Entradas:         totals(s.Entries),
		Salidas:          totals(s.Exits),
		Ajustes:          totals(s.Adjustments),
		NoReconocidos:    s.Unrecognized,
		Balance:          s.Balance,
	}
}
