package history

import (
	"github.com/ordena/bitacora-api/internal/domain/entity"
	"github.com/ordena/bitacora-api/internal/domain/inventory"
)

// ViewState estado de la vista de bitácora.
type ViewState string

const (
	StateIdle    ViewState = "IDLE"
	StateLoading ViewState = "LOADING"
	StateReady   ViewState = "READY"
	StateEmpty   ViewState = "EMPTY" // sin datos tras filtrar; no es un error
	StateFailed  ViewState = "FAILED"
)

// HistoryView vista derivada de una instantánea de movimientos.
type HistoryView struct {
	State    ViewState
	Products []entity.ProductAggregate
	// Visible movimientos de los productos que sobrevivieron a la búsqueda, en el orden filtrado.
	// Es exactamente lo que se exporta.
	Visible []entity.MovementRecord
	// Summary estadísticas globales de Visible.
	Summary entity.MovementSummary
	Fetched int
}

// BuildView ejecuta el flujo filtro → agrupación → búsqueda sobre una instantánea.
func BuildView(records []entity.MovementRecord, filter inventory.MovementFilter, search string, opts ...inventory.GroupOption) HistoryView {
	filtered := inventory.FilterMovements(records, filter)
	products := inventory.SearchProducts(inventory.GroupByProduct(filtered, opts...), search)

	keep := make(map[entity.ProductKey]struct{}, len(products))
	for _, p := range products {
		keep[p.Key()] = struct{}{}
	}
	visible := make([]entity.MovementRecord, 0, len(filtered))
	for _, m := range filtered {
		if _, ok := keep[m.Key()]; ok {
			visible = append(visible, m)
		}
	}

	state := StateReady
	if len(products) == 0 {
		state = StateEmpty
	}
	return HistoryView{
		State:    state,
		Products: products,
		Visible:  visible,
		Summary:  inventory.Summarize(visible),
		Fetched:  len(records),
	}
}

// LimitProducts deja los n productos con movimiento más reciente y recalcula Visible y Summary.
// n <= 0 no limita.
func LimitProducts(view HistoryView, n int) HistoryView {
	if n <= 0 || len(view.Products) <= n {
		return view
	}
	products := view.Products[:n:n]
	keep := make(map[entity.ProductKey]struct{}, n)
	for _, p := range products {
		keep[p.Key()] = struct{}{}
	}
	visible := make([]entity.MovementRecord, 0, len(view.Visible))
	for _, m := range view.Visible {
		if _, ok := keep[m.Key()]; ok {
			visible = append(visible, m)
		}
	}
	view.Products = products
	view.Visible = visible
	view.Summary = inventory.Summarize(visible)
	return view
}
