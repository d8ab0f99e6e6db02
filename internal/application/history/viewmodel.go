package history

import (
	"context"
	"errors"
	"sync"

	"github.com/ordena/bitacora-api/internal/domain/entity"
	"github.com/ordena/bitacora-api/internal/domain/repository"
)

// ErrSuperseded la carga fue reemplazada por otra más reciente; su resultado se descarta.
var ErrSuperseded = errors.New("carga reemplazada por una más reciente")

// HistoryViewModel estado de una pantalla de bitácora.
//
// Mantiene la última instantánea, el filtro, la búsqueda y el estado de interfaz
// (filas expandidas, panel de filtros, producto seleccionado). Refresh admite una sola
// carga en curso: una nueva carga cancela la anterior y gana la última.
type HistoryViewModel struct {
	uc *HistoryUseCase

	mu          sync.Mutex
	generation  uint64
	cancel      context.CancelFunc
	state       ViewState
	err         error
	records     []entity.MovementRecord
	query       repository.MovementQuery
	search      string
	view        HistoryView
	expanded    map[entity.ProductKey]bool
	showFilters bool
	selected    *entity.ProductKey
}

// NewHistoryViewModel crea la vista en estado IDLE.
func NewHistoryViewModel(uc *HistoryUseCase) *HistoryViewModel {
	return &HistoryViewModel{
		uc:       uc,
		state:    StateIdle,
		expanded: make(map[entity.ProductKey]bool),
	}
}

// Refresh vuelve a consultar la fuente con q y recalcula la vista completa.
// Si durante la carga llega otro Refresh, esta devuelve ErrSuperseded sin tocar el estado.
func (vm *HistoryViewModel) Refresh(ctx context.Context, q repository.MovementQuery) error {
	vm.mu.Lock()
	if vm.cancel != nil {
		vm.cancel()
	}
	vm.generation++
	gen := vm.generation
	fetchCtx, cancel := context.WithCancel(ctx)
	vm.cancel = cancel
	vm.query = q
	vm.state = StateLoading
	vm.err = nil
	vm.mu.Unlock()

	defer cancel()
	records, err := vm.uc.fetch(fetchCtx, q)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if gen != vm.generation {
		return ErrSuperseded
	}
	vm.cancel = nil
	if err != nil {
		vm.state = StateFailed
		vm.err = err
		vm.records = nil
		vm.view = HistoryView{State: StateFailed}
		return err
	}
	vm.records = records
	vm.recompute(fetchCtx)
	return nil
}

// SetSearch cambia el texto de búsqueda y recalcula sin volver a consultar la fuente.
func (vm *HistoryViewModel) SetSearch(ctx context.Context, text string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.search = text
	if vm.state == StateReady || vm.state == StateEmpty {
		vm.recompute(ctx)
	}
}

// recompute requiere vm.mu tomado.
func (vm *HistoryViewModel) recompute(ctx context.Context) {
	vm.view = vm.uc.build(ctx, vm.records, vm.query, vm.search)
	vm.state = vm.view.State
}

// View devuelve la vista actual.
func (vm *HistoryViewModel) View() HistoryView {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.view
}

// State estado actual de la pantalla.
func (vm *HistoryViewModel) State() ViewState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// Err último error de carga (nil salvo en FAILED).
func (vm *HistoryViewModel) Err() error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.err
}

// Search texto de búsqueda vigente.
func (vm *HistoryViewModel) Search() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.search
}

// ToggleExpanded expande o colapsa la fila de un producto.
func (vm *HistoryViewModel) ToggleExpanded(key entity.ProductKey) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.expanded[key] = !vm.expanded[key]
	return vm.expanded[key]
}

// IsExpanded indica si la fila del producto está expandida.
func (vm *HistoryViewModel) IsExpanded(key entity.ProductKey) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.expanded[key]
}

// ToggleFilters muestra u oculta el panel de filtros.
func (vm *HistoryViewModel) ToggleFilters() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.showFilters = !vm.showFilters
	return vm.showFilters
}

// Select marca el producto para el detalle. Solo productos con ProductID admiten detalle.
func (vm *HistoryViewModel) Select(key entity.ProductKey) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for _, p := range vm.view.Products {
		if p.Key() == key && p.HasDetail() {
			k := key
			vm.selected = &k
			return true
		}
	}
	return false
}

// Selected producto seleccionado, si existe.
func (vm *HistoryViewModel) Selected() (entity.ProductKey, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.selected == nil {
		return entity.ProductKey{}, false
	}
	return *vm.selected, true
}

// Reset cancela la carga en curso y descarta todo el estado (cierre de la pantalla).
func (vm *HistoryViewModel) Reset() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.cancel != nil {
		vm.cancel()
		vm.cancel = nil
	}
	vm.generation++
	vm.state = StateIdle
	vm.err = nil
	vm.records = nil
	vm.query = repository.MovementQuery{}
	vm.search = ""
	vm.view = HistoryView{}
	vm.expanded = make(map[entity.ProductKey]bool)
	vm.showFilters = false
	vm.selected = nil
}
