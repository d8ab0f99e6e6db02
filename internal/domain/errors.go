package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	// ErrFetchFailure la fuente de movimientos falló o rechazó la consulta. No se reintenta.
	ErrFetchFailure = errors.New("error al cargar movimientos")
)
