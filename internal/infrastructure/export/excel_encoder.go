// Package export genera la planilla XLSX de la bitácora de movimientos.
package export

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ordena/bitacora-api/internal/application/history"
)

// SheetName nombre de la hoja de movimientos.
const SheetName = "Movimientos"

const headerFill = "4682B4"

// anchos por columna, en el orden de history.ExportHeaders
var columnWidths = []float64{8, 12, 10, 12, 32, 14, 11, 14, 15, 28, 22, 20}

// ExcelEncoder implementa history.SpreadsheetEncoder con excelize.
type ExcelEncoder struct{}

// NewExcelEncoder construye el encoder.
func NewExcelEncoder() *ExcelEncoder { return &ExcelEncoder{} }

// EncodeMovements escribe una fila de cabecera y una fila por movimiento, en el orden recibido.
func (e *ExcelEncoder) EncodeMovements(ctx context.Context, rows []history.ExportRow) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}

	if err := writeHeader(f); err != nil {
		return nil, err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("xlsx: celda fila %d: %w", i+2, err)
		}
		values := []interface{}{
			r.ID,
			r.Date,
			r.Time,
			r.Kind,
			r.ProductName,
			r.ProductCode,
			r.Quantity.InexactFloat64(),
			numberOrText(r.StockBefore),
			numberOrText(r.StockAfter),
			r.Reason,
			r.UserName,
			r.Location,
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx: escribir fila %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: serializar: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File) error {
	header := make([]interface{}, len(history.ExportHeaders))
	for i, h := range history.ExportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: escribir cabecera: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("xlsx: estilo cabecera: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(history.ExportHeaders), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
		return fmt.Errorf("xlsx: aplicar estilo: %w", err)
	}

	for i, w := range columnWidths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, name, name, w); err != nil {
			return fmt.Errorf("xlsx: ancho columna %s: %w", name, err)
		}
	}

	return f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// numberOrText deja las celdas numéricas como número y las vacías como texto vacío.
func numberOrText(s string) interface{} {
	if s == "" {
		return ""
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return d.InexactFloat64()
}
