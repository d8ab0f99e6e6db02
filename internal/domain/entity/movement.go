package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento de inventario.
type MovementKind string

// Tipos de movimiento reconocidos. Cualquier otro valor se conserva tal cual.
const (
	MovementKindEntry      MovementKind = "ENTRADA"
	MovementKindExit       MovementKind = "SALIDA"
	MovementKindAdjustment MovementKind = "AJUSTE"
)

// ParseMovementKind normaliza el tipo recibido desde la fuente de datos.
// Acepta los alias en inglés (ENTRY/IN, EXIT/OUT, ADJUSTMENT/ADJUST).
func ParseMovementKind(raw string) MovementKind {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch s {
	case "ENTRADA", "ENTRY", "IN":
		return MovementKindEntry
	case "SALIDA", "EXIT", "OUT":
		return MovementKindExit
	case "AJUSTE", "ADJUSTMENT", "ADJUST":
		return MovementKindAdjustment
	default:
		return MovementKind(s)
	}
}

// IsKnown indica si el tipo pertenece a la enumeración cerrada.
func (k MovementKind) IsKnown() bool {
	return k == MovementKindEntry || k == MovementKindExit || k == MovementKindAdjustment
}

// MovementRecord es un movimiento de inventario tal como llega de la fuente externa.
// Nunca se modifica después de la ingesta; las vistas derivadas se recalculan.
type MovementRecord struct {
	ID           int64
	Quantity     decimal.Decimal
	Timestamp    time.Time // cero = fecha ausente o inválida
	ProductName  string
	ProductCode  string
	ProductID    *int64 // solo para el detalle del producto, nunca para agrupar
	UserName     string
	Kind         MovementKind
	CurrentStock decimal.Decimal
	StockBefore  *decimal.Decimal
	StockAfter   *decimal.Decimal
	Reason       string
	Location     string
}

// HasTimestamp indica si el movimiento trae una fecha válida.
func (m MovementRecord) HasTimestamp() bool {
	return !m.Timestamp.IsZero()
}

// Key devuelve la clave de agrupación (nombre + código).
func (m MovementRecord) Key() ProductKey {
	return ProductKey{Name: m.ProductName, Code: m.ProductCode}
}

// ProductKey clave compuesta de agrupación. La fuente no garantiza un ID estable en todos los registros.
type ProductKey struct {
	Name string
	Code string
}
