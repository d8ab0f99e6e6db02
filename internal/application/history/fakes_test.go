package history_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ordena/bitacora-api/internal/application/history"
	"github.com/ordena/bitacora-api/internal/domain/entity"
	"github.com/ordena/bitacora-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

var base = time.Date(2025, 6, 2, 13, 30, 0, 0, time.UTC)

func rec(id int64, kind entity.MovementKind, qty int64, name, code string, ts time.Time, stock int64) entity.MovementRecord {
	return entity.MovementRecord{
		ID:           id,
		Kind:         kind,
		Quantity:     decimal.NewFromInt(qty),
		ProductName:  name,
		ProductCode:  code,
		Timestamp:    ts,
		CurrentStock: decimal.NewFromInt(stock),
		UserName:     "Camila Rojas",
		Location:     "Bodega Central",
	}
}

func fixture() []entity.MovementRecord {
	pid := int64(501)
	withID := rec(3, entity.MovementKindEntry, 40, "Harina", "H-01", base.Add(3*time.Hour), 60)
	withID.ProductID = &pid
	return []entity.MovementRecord{
		rec(1, entity.MovementKindEntry, 10, "Arroz", "A-01", base.Add(2*time.Hour), 30),
		rec(2, entity.MovementKindExit, 4, "Arroz", "A-01", base.Add(time.Hour), 20),
		withID,
		rec(4, entity.MovementKindExit, 12, "Harina", "H-01", base, 20),
		rec(5, entity.MovementKindAdjustment, 1, "Sal", "S-01", base.Add(30*time.Minute), 2),
	}
}

type fakeSource struct {
	mu      sync.Mutex
	records []entity.MovementRecord
	err     error
	calls   []repository.MovementQuery
}

func (f *fakeSource) FetchMovements(_ context.Context, q repository.MovementQuery) ([]entity.MovementRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

// blockingSource bloquea la primera llamada hasta que se cancele su contexto.
type blockingSource struct {
	started chan struct{}
	once    sync.Once
	mu      sync.Mutex
	n       int
	records []entity.MovementRecord
}

func (b *blockingSource) FetchMovements(ctx context.Context, _ repository.MovementQuery) ([]entity.MovementRecord, error) {
	b.mu.Lock()
	b.n++
	n := b.n
	b.mu.Unlock()
	if n == 1 {
		b.once.Do(func() { close(b.started) })
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return b.records, nil
}

type fakeThresholds struct {
	values map[entity.ProductKey]entity.Thresholds
	err    error
}

func (f *fakeThresholds) GetThresholds(_ context.Context, _ []entity.ProductKey) (map[entity.ProductKey]entity.Thresholds, error) {
	return f.values, f.err
}

type captureSpreadsheet struct{ rows []history.ExportRow }

func (c *captureSpreadsheet) EncodeMovements(_ context.Context, rows []history.ExportRow) ([]byte, error) {
	c.rows = rows
	return []byte("xlsx"), nil
}

type captureReport struct {
	meta history.ReportMeta
	rows []history.ExportRow
	err  error
}

func (c *captureReport) EncodeMovements(_ context.Context, meta history.ReportMeta, rows []history.ExportRow) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.meta, c.rows = meta, rows
	return []byte("%PDF"), nil
}

var errUpstream = errors.New("upstream 503")

func newUseCase(src repository.MovementSource, th repository.ThresholdRepository, xlsx *captureSpreadsheet, pdf *captureReport) *history.HistoryUseCase {
	if xlsx == nil {
		xlsx = &captureSpreadsheet{}
	}
	if pdf == nil {
		pdf = &captureReport{}
	}
	return history.NewHistoryUseCase(src, th, xlsx, pdf, history.Config{Location: time.UTC}, zerolog.Nop())
}
