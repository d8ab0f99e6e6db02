package http

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ordena/bitacora-api/internal/application/dto"
	"github.com/ordena/bitacora-api/internal/application/history"
	"github.com/ordena/bitacora-api/internal/domain"
	"github.com/ordena/bitacora-api/internal/domain/repository"
)

// SnapshotInvalidator descarta la instantánea en caché de una consulta (?refrescar=true).
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, q repository.MovementQuery) error
}

// HistoryHandler maneja la bitácora de movimientos (protegido).
type HistoryHandler struct {
	uc          *history.HistoryUseCase
	invalidator SnapshotInvalidator // opcional
	log         zerolog.Logger
}

// NewHistoryHandler construye el handler. invalidator puede ser nil.
func NewHistoryHandler(uc *history.HistoryUseCase, invalidator SnapshotInvalidator, log zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{uc: uc, invalidator: invalidator, log: log}
}

// GetHistory godoc
// @Summary      Bitácora de movimientos agrupada por producto
// @Description  Filtra, agrupa por nombre+código y ordena por el movimiento más reciente.
//
//	estado EMPTY indica que no hay datos para los filtros (no es un error).
//
// @Tags         history
// @Security     Bearer
// @Produce      json
// @Param        tipo_movimiento  query  string  false  "ENTRADA | SALIDA | AJUSTE"
// @Param        fecha_inicio     query  string  false  "YYYY-MM-DD o RFC3339"
// @Param        fecha_fin        query  string  false  "YYYY-MM-DD (día completo) o RFC3339"
// @Param        cantidad_min     query  number  false  "Cantidad mínima"
// @Param        cantidad_max     query  number  false  "Cantidad máxima"
// @Param        search           query  string  false  "Texto en nombre o código"
// @Param        dias             query  int     false  "Solo movimientos de los últimos N días"
// @Param        limite           query  int     false  "Máximo de productos (los de movimiento más reciente)"
// @Param        refrescar        query  bool    false  "Ignorar la instantánea en caché"
// @Success      200  {object}  dto.HistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/inventory/history [get]
func (h *HistoryHandler) GetHistory(c *fiber.Ctx) error {
	q, search, err := h.parseQuery(c)
	if err != nil {
		return h.fail(c, err)
	}
	view, err := h.uc.GetHistory(c.Context(), q, search)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(history.ToHistoryResponse(*view, h.uc.Location()))
}

// ListMovements godoc
// @Summary      Movimientos visibles (lista plana paginada)
// @Description  Los mismos movimientos que se exportan, en el orden de la fuente.
// @Tags         history
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Tamaño de página (por defecto 20, máx 100)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/inventory/history/movements [get]
func (h *HistoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	if page.Limit > 100 {
		page.Limit = 100
	}

	q, search, err := h.parseQuery(c)
	if err != nil {
		return h.fail(c, err)
	}
	view, err := h.uc.GetHistory(c.Context(), q, search)
	if err != nil {
		return h.fail(c, err)
	}

	total := len(view.Visible)
	from := min(page.Offset, total)
	to := min(from+page.Limit, total)
	return c.JSON(dto.MovementListResponse{
		Movimientos: history.ToMovementDTOs(view.Visible[from:to], h.uc.Location()),
		Page:        dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// ExportXLSX godoc
// @Summary      Exportar movimientos visibles a Excel
// @Tags         history
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/inventory/history/export/xlsx [get]
func (h *HistoryHandler) ExportXLSX(c *fiber.Ctx) error {
	q, search, err := h.parseQuery(c)
	if err != nil {
		return h.fail(c, err)
	}
	b, name, err := h.uc.ExportSpreadsheet(c.Context(), q, search)
	if err != nil {
		return h.fail(c, err)
	}
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(b)
}

// ExportPDF godoc
// @Summary      Exportar movimientos visibles a PDF
// @Tags         history
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/inventory/history/export/pdf [get]
func (h *HistoryHandler) ExportPDF(c *fiber.Ctx) error {
	q, search, err := h.parseQuery(c)
	if err != nil {
		return h.fail(c, err)
	}
	b, name, err := h.uc.ExportReport(c.Context(), q, search)
	if err != nil {
		return h.fail(c, err)
	}
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(b)
}

// GetProductTimeline godoc
// @Summary      Detalle de movimientos de un producto
// @Tags         history
// @Security     Bearer
// @Produce      json
// @Param        productId  path  int  true  "ID del producto"
// @Success      200  {array}   dto.MovementDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/inventory/history/products/{productId} [get]
func (h *HistoryHandler) GetProductTimeline(c *fiber.Ctx) error {
	productID, err := strconv.ParseInt(c.Params("productId"), 10, 64)
	if err != nil || productID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "productId inválido"})
	}
	q, _, err := h.parseQuery(c)
	if err != nil {
		return h.fail(c, err)
	}
	timeline, err := h.uc.ProductTimeline(c.Context(), q, productID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(history.ToMovementDTOs(timeline, h.uc.Location()))
}

// parseQuery arma la consulta con el alcance de la sesión y los filtros de la URL.
func (h *HistoryHandler) parseQuery(c *fiber.Ctx) (repository.MovementQuery, string, error) {
	var in dto.HistoryQueryRequest
	if err := c.QueryParser(&in); err != nil {
		return repository.MovementQuery{}, "", domain.ErrInvalidInput
	}
	filter, err := history.ParseFilter(in, h.uc.Location())
	if err != nil {
		return repository.MovementQuery{}, "", err
	}
	limit, err := history.ParseProductLimit(in.Limite)
	if err != nil {
		return repository.MovementQuery{}, "", err
	}
	scope, err := GetScope(c)
	if err != nil {
		return repository.MovementQuery{}, "", err
	}
	q := repository.MovementQuery{Scope: scope, Filter: filter, ProductLimit: limit}

	if h.invalidator != nil && c.QueryBool("refrescar") {
		if err := h.invalidator.Invalidate(c.Context(), q); err != nil {
			h.log.Warn().Err(err).Msg("no se pudo invalidar la instantánea")
		}
	}
	return q, in.Search, nil
}

func (h *HistoryHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sin movimientos para el producto"})
	case errors.Is(err, domain.ErrFetchFailure):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "FETCH_FAILED", Message: domain.ErrFetchFailure.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el alcance solo lo elige un admin sin bodega ni sucursal asignada"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sesión requerida"})
	default:
		h.log.Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}
