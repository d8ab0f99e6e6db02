package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ordena/bitacora-api/internal/application/history"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	HistoryUC   *history.HistoryUseCase
	Invalidator SnapshotInvalidator // nil sin caché
	JWTSecret   string
	JWTIssuer   string
	Log         zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer), RequireRole(RoleAdmin, RoleBodega, RoleSucursal))

	// Bitácora de movimientos
	hist := protected.Group("/inventory/history")
	historyHandler := NewHistoryHandler(deps.HistoryUC, deps.Invalidator, deps.Log)
	hist.Get("/", historyHandler.GetHistory)
	hist.Get("/movements", historyHandler.ListMovements)
	hist.Get("/export/xlsx", historyHandler.ExportXLSX)
	hist.Get("/export/pdf", historyHandler.ExportPDF)
	hist.Get("/products/:productId", historyHandler.GetProductTimeline)
}
