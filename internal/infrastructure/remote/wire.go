package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"

	"github.com/ordena/bitacora-api/internal/domain/entity"
)

// ── Formato de la API de movimientos ──────────────────────────────────────────

type movementsEnvelope struct {
	Movimientos []json.RawMessage `json:"movimientos"`
}

type wireMovement struct {
	ID             flexInt     `json:"id_mvin"`
	Cantidad       flexDecimal `json:"cantidad"`
	Fecha          flexString  `json:"fecha"`
	ProductoNombre flexString  `json:"producto_nombre"`
	ProductoCodigo flexString  `json:"producto_codigo"`
	ProductoID     *flexInt    `json:"producto_id"`
	UsuarioNombre  flexString  `json:"usuario_nombre"`
	TipoMovimiento flexString  `json:"tipo_movimiento"`
	StockActual    flexDecimal `json:"stock_actual"`
	StockAntes     flexDecimal `json:"stock_antes"`
	StockDespues   flexDecimal `json:"stock_despues"`
	Motivo         flexString  `json:"motivo"`
	Ubicacion      flexString  `json:"ubicacion"`
	Sucursal       *fkRef      `json:"sucursal_fk"`
	Bodega         *fkRef      `json:"bodega_fk"`
}

// Los tipos flex nunca fallan: un valor que no se puede interpretar queda vacío
// y el resto del movimiento se conserva.

// flexInt acepta un entero JSON o un string numérico; cualquier otra cosa es 0.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	*f = 0
	s := strings.TrimSpace(strings.Trim(string(bytes.TrimSpace(b)), `"`))
	if s == "" || s == "null" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexInt(n)
		return nil
	}
	if d, err := decimal.NewFromString(s); err == nil && d.IsInteger() {
		*f = flexInt(d.IntPart())
	}
	return nil
}

// flexDecimal acepta un número JSON o un string numérico ("12,5" incluido).
type flexDecimal struct {
	Decimal decimal.Decimal
	Valid   bool
}

func (f *flexDecimal) UnmarshalJSON(b []byte) error {
	*f = flexDecimal{}
	s := strings.TrimSpace(strings.Trim(string(bytes.TrimSpace(b)), `"`))
	if s == "" || s == "null" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil && strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		d, err = decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	}
	if err == nil {
		f.Decimal, f.Valid = d, true
	}
	return nil
}

// flexString acepta un string, un número o un booleano (como texto); objetos y arreglos quedan vacíos.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	*f = ""
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			*f = flexString(s)
		}
	case '{', '[':
	default:
		*f = flexString(b)
	}
	return nil
}

func (f flexString) String() string { return strings.TrimSpace(string(f)) }

// fkRef referencia a sucursal o bodega: puede llegar como id o como objeto expandido.
type fkRef struct {
	ID   int64
	Name string
}

func (r *fkRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] != '{' {
		var id flexInt
		_ = id.UnmarshalJSON(b)
		r.ID = int64(id)
		return nil
	}
	var obj struct {
		ID             *flexInt   `json:"id"`
		IDBodega       *flexInt   `json:"id_bdg"`
		NombreSucursal flexString `json:"nombre_sucursal"`
		NombreBodega   flexString `json:"nombre_bdg"`
		Nombre         flexString `json:"nombre"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil
	}
	switch {
	case obj.ID != nil:
		r.ID = int64(*obj.ID)
	case obj.IDBodega != nil:
		r.ID = int64(*obj.IDBodega)
	}
	r.Name = firstNonEmpty(obj.NombreSucursal.String(), obj.NombreBodega.String(), obj.Nombre.String())
	return nil
}

// ── Conversión a dominio ──────────────────────────────────────────────────────

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseTimestamp interpreta fechas con zona (RFC3339) o sin ella (en loc). Vacía o inválida = sin fecha.
func parseTimestamp(raw flexString, loc *time.Location) time.Time {
	s := raw.String()
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (w wireMovement) toRecord(loc *time.Location) entity.MovementRecord {
	rec := entity.MovementRecord{
		ID:          int64(w.ID),
		Quantity:    w.Cantidad.Decimal,
		Timestamp:   parseTimestamp(w.Fecha, loc),
		ProductName: w.ProductoNombre.String(),
		ProductCode: w.ProductoCodigo.String(),
		UserName:    w.UsuarioNombre.String(),
		Kind:        entity.ParseMovementKind(w.TipoMovimiento.String()),
		Reason:      w.Motivo.String(),
		Location:    w.location(),
	}
	if w.ProductoID != nil && *w.ProductoID != 0 {
		id := int64(*w.ProductoID)
		rec.ProductID = &id
	}
	if w.StockActual.Valid {
		rec.CurrentStock = w.StockActual.Decimal
	}
	if w.StockAntes.Valid {
		d := w.StockAntes.Decimal
		rec.StockBefore = &d
	}
	if w.StockDespues.Valid {
		d := w.StockDespues.Decimal
		rec.StockAfter = &d
	}
	return rec
}

// location prioriza ubicacion, luego el nombre de sucursal o bodega y por último su id.
func (w wireMovement) location() string {
	if u := w.Ubicacion.String(); u != "" {
		return u
	}
	if w.Sucursal != nil {
		if w.Sucursal.Name != "" {
			return w.Sucursal.Name
		}
		if w.Sucursal.ID != 0 {
			return "Sucursal " + strconv.FormatInt(w.Sucursal.ID, 10)
		}
	}
	if w.Bodega != nil {
		if w.Bodega.Name != "" {
			return w.Bodega.Name
		}
		if w.Bodega.ID != 0 {
			return "Bodega " + strconv.FormatInt(w.Bodega.ID, 10)
		}
	}
	return ""
}

// decodeMovements acepta {"movimientos": [...]} o un arreglo directo.
// Solo falla si el cuerpo no es JSON con esa forma; un elemento que no es objeto se omite.
func decodeMovements(body []byte, loc *time.Location) ([]entity.MovementRecord, error) {
	body = bytes.TrimSpace(body)
	var items []json.RawMessage
	if len(body) > 0 && body[0] == '[' {
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decodificar movimientos: %w", err)
		}
	} else {
		var env movementsEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("decodificar movimientos: %w", err)
		}
		items = env.Movimientos
	}
	out := make([]entity.MovementRecord, 0, len(items))
	for _, raw := range items {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var w wireMovement
		if err := json.Unmarshal(raw, &w); err != nil {
			continue
		}
		out = append(out, w.toRecord(loc))
	}
	return out, nil
}

// DecodeSnapshot decodifica un archivo exportado de la API de movimientos.
func DecodeSnapshot(body []byte, loc *time.Location) ([]entity.MovementRecord, error) {
	if loc == nil {
		loc = time.UTC
	}
	return decodeMovements(body, loc)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
