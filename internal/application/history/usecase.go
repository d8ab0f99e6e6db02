// Package history contiene los casos de uso de la bitácora de movimientos de inventario:
// consulta agrupada por producto, detalle por producto y exportaciones XLSX/PDF.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ordena/bitacora-api/internal/domain"
	"github.com/ordena/bitacora-api/internal/domain/entity"
	"github.com/ordena/bitacora-api/internal/domain/inventory"
	"github.com/ordena/bitacora-api/internal/domain/repository"
)

const (
	reportTitle    = "Bitácora de Movimientos de Inventario"
	exportBaseName = "bitacora_movimientos"
)

// Config parámetros del caso de uso.
type Config struct {
	Location   *time.Location     // zona horaria de fechas exportadas (America/Santiago)
	Thresholds *entity.Thresholds // umbrales por defecto; nil = 5/100
}

// HistoryUseCase orquesta fuente de movimientos → filtros → agrupación → exportación.
// Las funciones de dominio son puras; aquí solo se hace I/O y registro.
type HistoryUseCase struct {
	source      repository.MovementSource
	thresholds  repository.ThresholdRepository // opcional
	spreadsheet SpreadsheetEncoder
	report      ReportEncoder
	cfg         Config
	log         zerolog.Logger
	now         func() time.Time
}

// NewHistoryUseCase construye el caso de uso. thresholds puede ser nil.
func NewHistoryUseCase(
	source repository.MovementSource,
	thresholds repository.ThresholdRepository,
	spreadsheet SpreadsheetEncoder,
	report ReportEncoder,
	cfg Config,
	log zerolog.Logger,
) *HistoryUseCase {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Thresholds == nil {
		th := entity.DefaultThresholds()
		cfg.Thresholds = &th
	}
	return &HistoryUseCase{
		source:      source,
		thresholds:  thresholds,
		spreadsheet: spreadsheet,
		report:      report,
		cfg:         cfg,
		log:         log.With().Str("module", "history").Logger(),
		now:         time.Now,
	}
}

// Location zona horaria usada para fechas.
func (uc *HistoryUseCase) Location() *time.Location { return uc.cfg.Location }

// GetHistory devuelve la vista agrupada por producto.
//
// Retorna:
//   - vista con State EMPTY si no quedan productos (no es error).
//   - domain.ErrFetchFailure si la fuente falla.
func (uc *HistoryUseCase) GetHistory(ctx context.Context, q repository.MovementQuery, search string) (*HistoryView, error) {
	records, err := uc.fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	view := uc.build(ctx, records, q, search)
	uc.log.Debug().
		Int("fetched", view.Fetched).
		Int("products", len(view.Products)).
		Int("visible", len(view.Visible)).
		Str("state", string(view.State)).
		Msg("bitácora calculada")
	return &view, nil
}

// ProductTimeline devuelve los movimientos visibles de un producto (detalle), del más reciente al más antiguo.
func (uc *HistoryUseCase) ProductTimeline(ctx context.Context, q repository.MovementQuery, productID int64) ([]entity.MovementRecord, error) {
	records, err := uc.fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	filtered := inventory.FilterMovements(records, q.Filter)
	timeline := make([]entity.MovementRecord, 0)
	for _, m := range filtered {
		if m.ProductID != nil && *m.ProductID == productID {
			timeline = append(timeline, m)
		}
	}
	if len(timeline) == 0 {
		return nil, domain.ErrNotFound
	}
	return inventory.SortByRecency(timeline), nil
}

// ExportSpreadsheet calcula la vista y exporta sus movimientos visibles a XLSX.
func (uc *HistoryUseCase) ExportSpreadsheet(ctx context.Context, q repository.MovementQuery, search string) ([]byte, string, error) {
	view, err := uc.GetHistory(ctx, q, search)
	if err != nil {
		return nil, "", err
	}
	return uc.EncodeSpreadsheet(ctx, view.Visible)
}

// ExportReport calcula la vista y exporta sus movimientos visibles a PDF.
func (uc *HistoryUseCase) ExportReport(ctx context.Context, q repository.MovementQuery, search string) ([]byte, string, error) {
	view, err := uc.GetHistory(ctx, q, search)
	if err != nil {
		return nil, "", err
	}
	return uc.EncodeReport(ctx, view.Visible, scopeLabel(q.Scope))
}

// EncodeSpreadsheet exporta exactamente los movimientos recibidos, en su orden.
func (uc *HistoryUseCase) EncodeSpreadsheet(ctx context.Context, records []entity.MovementRecord) ([]byte, string, error) {
	rows := BuildExportRows(records, uc.cfg.Location)
	b, err := uc.spreadsheet.EncodeMovements(ctx, rows)
	if err != nil {
		return nil, "", fmt.Errorf("exportar xlsx: %w", err)
	}
	name := uc.filename("xlsx")
	uc.log.Info().Int("rows", len(rows)).Str("file", name).Msg("exportación XLSX generada")
	return b, name, nil
}

// EncodeReport exporta exactamente los movimientos recibidos a un informe paginado.
func (uc *HistoryUseCase) EncodeReport(ctx context.Context, records []entity.MovementRecord, subtitle string) ([]byte, string, error) {
	rows := BuildExportRows(records, uc.cfg.Location)
	meta := ReportMeta{
		Title:       reportTitle,
		Subtitle:    subtitle,
		GeneratedAt: uc.now().In(uc.cfg.Location),
		Folio:       uuid.New().String(),
	}
	b, err := uc.report.EncodeMovements(ctx, meta, rows)
	if err != nil {
		return nil, "", fmt.Errorf("exportar pdf: %w", err)
	}
	name := uc.filename("pdf")
	uc.log.Info().Int("rows", len(rows)).Str("file", name).Str("folio", meta.Folio).Msg("exportación PDF generada")
	return b, name, nil
}

// fetch consulta la fuente y convierte cualquier error en ErrFetchFailure.
func (uc *HistoryUseCase) fetch(ctx context.Context, q repository.MovementQuery) ([]entity.MovementRecord, error) {
	records, err := uc.source.FetchMovements(ctx, q)
	if err != nil {
		uc.log.Error().Err(err).Str("params", q.Params().Encode()).Msg("fuente de movimientos")
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailure, err)
	}
	return records, nil
}

// build aplica el flujo puro con los umbrales disponibles y el límite de productos.
func (uc *HistoryUseCase) build(ctx context.Context, records []entity.MovementRecord, q repository.MovementQuery, search string) HistoryView {
	opts := []inventory.GroupOption{inventory.WithDefaultThresholds(*uc.cfg.Thresholds)}
	if lookup := uc.thresholdLookup(ctx, records); lookup != nil {
		opts = append(opts, inventory.WithThresholdLookup(lookup))
	}
	return LimitProducts(BuildView(records, q.Filter, search, opts...), q.ProductLimit)
}

// thresholdLookup consulta los umbrales por producto. Si falla se usan los umbrales por defecto.
func (uc *HistoryUseCase) thresholdLookup(ctx context.Context, records []entity.MovementRecord) inventory.ThresholdLookup {
	if uc.thresholds == nil || len(records) == 0 {
		return nil
	}
	seen := make(map[entity.ProductKey]struct{})
	keys := make([]entity.ProductKey, 0)
	for _, m := range records {
		if _, ok := seen[m.Key()]; !ok {
			seen[m.Key()] = struct{}{}
			keys = append(keys, m.Key())
		}
	}
	found, err := uc.thresholds.GetThresholds(ctx, keys)
	if err != nil {
		uc.log.Warn().Err(err).Msg("umbrales por producto no disponibles, se usan los valores por defecto")
		return nil
	}
	return func(key entity.ProductKey) (entity.Thresholds, bool) {
		t, ok := found[key]
		return t, ok
	}
}

func (uc *HistoryUseCase) filename(ext string) string {
	return fmt.Sprintf("%s_%s.%s", exportBaseName, uc.now().In(uc.cfg.Location).Format(dateOnly), ext)
}

func scopeLabel(s repository.Scope) string {
	switch {
	case s.BodegaID != "":
		return "Bodega " + s.BodegaID
	case s.SucursalID != "":
		return "Sucursal " + s.SucursalID
	default:
		return "Todas las ubicaciones"
	}
}
