package history

import (
	"context"
	"time"
)

// ReportMeta datos de cabecera del informe paginado.
type ReportMeta struct {
	Title       string
	Subtitle    string
	GeneratedAt time.Time // ya convertida a la zona horaria del informe
	Folio       string
}

// SpreadsheetEncoder genera la planilla (XLSX) de movimientos.
// Debe escribir cada fila exactamente una vez y en el orden recibido.
type SpreadsheetEncoder interface {
	EncodeMovements(ctx context.Context, rows []ExportRow) ([]byte, error)
}

// ReportEncoder genera el informe paginado (PDF) de movimientos.
type ReportEncoder interface {
	EncodeMovements(ctx context.Context, meta ReportMeta, rows []ExportRow) ([]byte, error)
}
