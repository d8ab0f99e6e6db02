package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ordena/bitacora-api/internal/domain"
	"github.com/ordena/bitacora-api/internal/domain/entity"
	"github.com/ordena/bitacora-api/internal/domain/repository"
)

var _ repository.MovementSource = (*MovementRepo)(nil)

// movementSchema expresiones SQL de las columnas que dependen de la versión de mov_inventario.
//
// extendedSchema: mov_inventario con tipo_movimiento, stock_antes, stock_despues y motivo.
// legacySchema: solo id_mvin, cantidad, fecha, productos_fk_id y usuario_fk_id; el tipo sale
// del signo de la cantidad y no hay stock por movimiento ni motivo.
type movementSchema struct {
	name         string
	kind         string
	quantity     string
	currentStock string
	stockBefore  string
	stockAfter   string
	reason       string
}

var (
	extendedSchema = movementSchema{
		name:         "extendido",
		kind:         "m.tipo_movimiento",
		quantity:     "m.cantidad",
		currentStock: "COALESCE(m.stock_despues, s.stock_total, 0)",
		stockBefore:  "m.stock_antes",
		stockAfter:   "m.stock_despues",
		reason:       "m.motivo",
	}
	legacySchema = movementSchema{
		name:         "base",
		kind:         "CASE WHEN m.cantidad < 0 THEN 'SALIDA' ELSE 'ENTRADA' END",
		quantity:     "ABS(m.cantidad)",
		currentStock: "COALESCE(s.stock_total, 0)",
		stockBefore:  "NULL",
		stockAfter:   "NULL",
		reason:       "NULL",
	}
)

func (sc movementSchema) selectSQL() string {
	return fmt.Sprintf(`
		SELECT m.id_mvin, (%s)::numeric, m.fecha,
		       p.nombre_prodc, p.codigo_interno, p.id_prodc,
		       u.nombre, (%s)::text,
		       (%s)::numeric,
		       (%s)::numeric, (%s)::numeric,
		       (%s)::text, COALESCE(suc.nombre_sucursal, b.nombre_bdg)
		FROM mov_inventario m
		JOIN productos p ON p.id_prodc = m.productos_fk_id
		LEFT JOIN usuario u ON u.id_us = m.usuario_fk_id
		LEFT JOIN sucursal suc ON suc.id = p.sucursal_fk
		LEFT JOIN bodega_central b ON b.id_bdg = p.bodega_fk
		LEFT JOIN LATERAL (
			SELECT SUM(st.stock) AS stock_total FROM stock st WHERE st.productos_fk_id = p.id_prodc
		) s ON TRUE
		WHERE 1 = 1`,
		sc.quantity, sc.kind, sc.currentStock, sc.stockBefore, sc.stockAfter, sc.reason)
}

// MovementRepo lee la bitácora desde mov_inventario (usable con pool o tx).
// Empieza con el esquema extendido y, si la base no tiene esas columnas, pasa al base
// y lo recuerda para las consultas siguientes.
type MovementRepo struct {
	q      Querier
	legacy atomic.Bool
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// FetchMovements lista los movimientos del alcance de la sesión que cumplen el filtro.
func (r *MovementRepo) FetchMovements(ctx context.Context, mq repository.MovementQuery) ([]entity.MovementRecord, error) {
	if r.legacy.Load() {
		return r.fetch(ctx, mq, legacySchema)
	}
	list, err := r.fetch(ctx, mq, extendedSchema)
	if err != nil && isUndefinedObject(err) {
		r.legacy.Store(true)
		return r.fetch(ctx, mq, legacySchema)
	}
	return list, err
}

func (r *MovementRepo) fetch(ctx context.Context, mq repository.MovementQuery, sc movementSchema) ([]entity.MovementRecord, error) {
	query, args, err := buildMovementQuery(mq, sc)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements (%s): %w", sc.name, err)
	}
	defer rows.Close()

	list := make([]entity.MovementRecord, 0)
	for rows.Next() {
		var mr movementRow
		if err := rows.Scan(&mr.ID, &mr.Quantity, &mr.Date, &mr.ProductName, &mr.ProductCode, &mr.ProductID,
			&mr.UserName, &mr.Kind, &mr.CurrentStock, &mr.StockBefore, &mr.StockAfter,
			&mr.Reason, &mr.Location); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, mr.toRecord())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movements (%s): %w", sc.name, err)
	}
	return list, nil
}

// buildMovementQuery arma el SELECT con los filtros presentes, en orden de placeholders.
func buildMovementQuery(mq repository.MovementQuery, sc movementSchema) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString(sc.selectSQL())
	args := make([]any, 0, 7)
	add := func(cond string, v any) {
		args = append(args, v)
		fmt.Fprintf(&sb, " AND "+cond, len(args))
	}

	f := mq.Filter
	if f.Kind != "" {
		add("UPPER("+sc.kind+") = $%d", string(f.Kind))
	}
	if f.DateFrom != nil {
		add("m.fecha >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("m.fecha <= $%d", *f.DateTo)
	}
	if f.QuantityMin != nil {
		add(sc.quantity+" >= $%d", *f.QuantityMin)
	}
	if f.QuantityMax != nil {
		add(sc.quantity+" <= $%d", *f.QuantityMax)
	}
	if mq.Scope.BodegaID != "" {
		id, err := strconv.ParseInt(mq.Scope.BodegaID, 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("%w: bodega %q", domain.ErrInvalidInput, mq.Scope.BodegaID)
		}
		add("p.bodega_fk = $%d", id)
	}
	if mq.Scope.SucursalID != "" {
		id, err := strconv.ParseInt(mq.Scope.SucursalID, 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("%w: sucursal %q", domain.ErrInvalidInput, mq.Scope.SucursalID)
		}
		add("p.sucursal_fk = $%d", id)
	}
	sb.WriteString(" ORDER BY m.fecha DESC NULLS LAST, m.id_mvin DESC")
	return sb.String(), args, nil
}

// movementRow fila escaneada; las columnas opcionales son punteros.
type movementRow struct {
	ID           int64
	Quantity     decimal.Decimal
	Date         *time.Time
	ProductName  string
	ProductCode  string
	ProductID    *int64
	UserName     *string
	Kind         *string
	CurrentStock decimal.Decimal
	StockBefore  *decimal.Decimal
	StockAfter   *decimal.Decimal
	Reason       *string
	Location     *string
}

func (mr movementRow) toRecord() entity.MovementRecord {
	rec := entity.MovementRecord{
		ID:           mr.ID,
		Quantity:     mr.Quantity,
		ProductName:  mr.ProductName,
		ProductCode:  mr.ProductCode,
		ProductID:    mr.ProductID,
		UserName:     deref(mr.UserName),
		Kind:         entity.ParseMovementKind(deref(mr.Kind)),
		CurrentStock: mr.CurrentStock,
		StockBefore:  mr.StockBefore,
		StockAfter:   mr.StockAfter,
		Reason:       deref(mr.Reason),
		Location:     deref(mr.Location),
	}
	if mr.Date != nil {
		rec.Timestamp = *mr.Date
	}
	return rec
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
