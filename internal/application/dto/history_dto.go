package dto

import "github.com/shopspring/decimal"

// HistoryQueryRequest parámetros de consulta de la bitácora (GET /api/inventory/history).
// Las fechas aceptan YYYY-MM-DD o RFC3339; una fecha_fin sin hora cubre el día completo.
type HistoryQueryRequest struct {
	TipoMovimiento string `query:"tipo_movimiento"`
	FechaInicio    string `query:"fecha_inicio"`
	FechaFin       string `query:"fecha_fin"`
	CantidadMin    string `query:"cantidad_min"`
	CantidadMax    string `query:"cantidad_max"`
	Search         string `query:"search"`
	Dias           string `query:"dias"`   // solo movimientos de los últimos N días
	Limite         string `query:"limite"` // máximo de productos, los de movimiento más reciente
}

// MovementDTO movimiento de inventario en la respuesta.
type MovementDTO struct {
	ID             int64            `json:"id_mvin"`
	Cantidad       decimal.Decimal  `json:"cantidad"`
	Fecha          *string          `json:"fecha"`
	ProductoNombre string           `json:"producto_nombre"`
	ProductoCodigo string           `json:"producto_codigo"`
	ProductoID     *int64           `json:"producto_id,omitempty"`
	UsuarioNombre  string           `json:"usuario_nombre"`
	TipoMovimiento string           `json:"tipo_movimiento"`
	StockActual    decimal.Decimal  `json:"stock_actual"`
	StockAntes     *decimal.Decimal `json:"stock_antes,omitempty"`
	StockDespues   *decimal.Decimal `json:"stock_despues,omitempty"`
	Motivo         string           `json:"motivo,omitempty"`
	Ubicacion      string           `json:"ubicacion"`
}

// StatisticsDTO estadísticas por producto.
type StatisticsDTO struct {
	TotalMovimientos int             `json:"total_movimientos"`
	Entradas         int             `json:"entradas"`
	Salidas          int             `json:"salidas"`
	Ajustes          int             `json:"ajustes"`
	NoReconocidos    int             `json:"no_reconocidos"`
	Balance          decimal.Decimal `json:"balance"`
}

// ProductAggregateDTO producto con sus movimientos agrupados.
type ProductAggregateDTO struct {
	ProductoNombre   string          `json:"producto_nombre"`
	ProductoCodigo   string          `json:"producto_codigo"`
	ProductoID       *int64          `json:"producto_id"`
	TieneDetalle     bool            `json:"tiene_detalle"`
	StockActual      decimal.Decimal `json:"stock_actual"`
	StockMinimo      decimal.Decimal `json:"stock_minimo"`
	StockMaximo      decimal.Decimal `json:"stock_maximo"`
	EstadoStock      string          `json:"estado_stock"`
	Estadisticas     StatisticsDTO   `json:"estadisticas"`
	UltimoMovimiento MovementDTO     `json:"ultimo_movimiento"`
	Movimientos      []MovementDTO   `json:"movimientos"`
}

// KindTotalsDTO conteo y unidades de un tipo de movimiento.
type KindTotalsDTO struct {
	Cantidad int             `json:"cantidad"`
	Unidades decimal.Decimal `json:"unidades"`
}

// SummaryDTO estadísticas globales de los movimientos visibles.
type SummaryDTO struct {
	TotalMovimientos int             `json:"total_movimientos"`
	Entradas         KindTotalsDTO   `json:"entradas"`
	Salidas          KindTotalsDTO   `json:"salidas"`
	Ajustes          KindTotalsDTO   `json:"ajustes"`
	NoReconocidos    int             `json:"no_reconocidos"`
	Balance          decimal.Decimal `json:"balance"`
}

// HistoryResponse respuesta de la bitácora agrupada por producto.
// Estado EMPTY indica "sin datos", distinto de un error de carga.
type HistoryResponse struct {
	Estado           string                `json:"estado"`
	TotalProductos   int                   `json:"total_productos"`
	TotalMovimientos int                   `json:"total_movimientos"`
	Estadisticas     SummaryDTO            `json:"estadisticas"`
	Productos        []ProductAggregateDTO `json:"productos"`
}

// MovementListResponse listado plano de movimientos visibles.
type MovementListResponse struct {
	Movimientos []MovementDTO `json:"movimientos"`
	Page        PageResponse  `json:"page"`
}
