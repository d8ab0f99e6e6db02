package history

import (
	"strconv"
	"time"
	_ "time/tzdata" // America/Santiago disponible aunque el host no tenga zoneinfo

	"github.com/shopspring/decimal"

	"github.com/ordena/bitacora-api/internal/domain/entity"
)

const (
	exportDateLayout = "02-01-2006"
	exportTimeLayout = "15:04:05"
	// MissingValue se muestra cuando el movimiento no trae fecha.
	MissingValue = "-"
)

// ExportHeaders orden fijo de columnas de ambas exportaciones.
var ExportHeaders = []string{
	"ID", "Fecha", "Hora", "Tipo", "Producto", "Código", "Cantidad",
	"Stock Anterior", "Stock Posterior", "Motivo", "Usuario", "Ubicación",
}

// ExportRow fila plana de exportación (un movimiento).
type ExportRow struct {
	ID          int64
	Date        string
	Time        string
	Kind        string
	ProductName string
	ProductCode string
	Quantity    decimal.Decimal
	StockBefore string
	StockAfter  string
	Reason      string
	UserName    string
	Location    string
}

// Cells devuelve la fila como texto, en el orden de ExportHeaders.
func (r ExportRow) Cells() []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Date,
		r.Time,
		r.Kind,
		r.ProductName,
		r.ProductCode,
		r.Quantity.String(),
		r.StockBefore,
		r.StockAfter,
		r.Reason,
		r.UserName,
		r.Location,
	}
}

// BuildExportRows convierte los movimientos visibles en filas de exportación, respetando el orden.
// Fecha y hora se formatean por separado en loc. Sin stock anterior queda vacío;
// sin stock posterior se usa el stock actual.
func BuildExportRows(records []entity.MovementRecord, loc *time.Location) []ExportRow {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([]ExportRow, 0, len(records))
	for _, m := range records {
		date, clock := MissingValue, MissingValue
		if m.HasTimestamp() {
			local := m.Timestamp.In(loc)
			date = local.Format(exportDateLayout)
			clock = local.Format(exportTimeLayout)
		}

		before := ""
		if m.StockBefore != nil {
			before = m.StockBefore.String()
		}
		after := m.CurrentStock.String()
		if m.StockAfter != nil {
			after = m.StockAfter.String()
		}

		rows = append(rows, ExportRow{
			ID:          m.ID,
			Date:        date,
			Time:        clock,
			Kind:        string(m.Kind),
			ProductName: m.ProductName,
			ProductCode: m.ProductCode,
			Quantity:    m.Quantity,
			StockBefore: before,
			StockAfter:  after,
			Reason:      m.Reason,
			UserName:    m.UserName,
			Location:    m.Location,
		})
	}
	return rows
}
