package entity

import "github.com/shopspring/decimal"

// StockStatus estado de salud del stock.
type StockStatus string

const (
	StockStatusCritical StockStatus = "CRITICO"
	StockStatusMaximum  StockStatus = "MAXIMO"
	StockStatusNormal   StockStatus = "NORMAL"
)

// Umbrales por defecto mientras no exista una tabla de umbrales por producto.
var (
	DefaultStockMinimum = decimal.NewFromInt(5)
	DefaultStockMaximum = decimal.NewFromInt(100)
)

// Thresholds umbrales de stock de un producto.
type Thresholds struct {
	Minimum decimal.Decimal
	Maximum decimal.Decimal
}

// DefaultThresholds devuelve los umbrales 5/100.
func DefaultThresholds() Thresholds {
	return Thresholds{Minimum: DefaultStockMinimum, Maximum: DefaultStockMaximum}
}

// MovementStatistics resumen de movimientos de un producto.
// Balance: ENTRADA y AJUSTE suman la cantidad, SALIDA la resta.
// Unrecognized cuenta los tipos fuera de la enumeración; no afectan el balance.
type MovementStatistics struct {
	TotalMovements int
	Entries        int
	Exits          int
	Adjustments    int
	Unrecognized   int
	Balance        decimal.Decimal
}

// ProductAggregate vista derivada por producto. Se recalcula en cada cambio de movimientos o filtros.
type ProductAggregate struct {
	ProductName  string
	ProductCode  string
	ProductID    *int64
	Movements    []MovementRecord // más reciente primero
	CurrentStock decimal.Decimal
	StockMinimum decimal.Decimal
	StockMaximum decimal.Decimal
	Statistics   MovementStatistics
	LastMovement MovementRecord
	Status       StockStatus
}

// Key devuelve la clave de agrupación del agregado.
func (a ProductAggregate) Key() ProductKey {
	return ProductKey{Name: a.ProductName, Code: a.ProductCode}
}

// HasDetail indica si se puede abrir el detalle del producto (requiere ProductID).
func (a ProductAggregate) HasDetail() bool {
	return a.ProductID != nil
}

// KindTotals cantidad de movimientos de un tipo y unidades movidas.
type KindTotals struct {
	Count int
	Units decimal.Decimal
}

// MovementSummary estadísticas globales de un conjunto de movimientos.
// Balance sigue la misma regla que MovementStatistics.
type MovementSummary struct {
	TotalMovements int
	Entries        KindTotals
	Exits          KindTotals
	Adjustments    KindTotals
	Unrecognized   int
	Balance        decimal.Decimal
}
