package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ordena/bitacora-api/internal/application/dto"
	"github.com/ordena/bitacora-api/internal/domain"
	"github.com/ordena/bitacora-api/internal/domain/repository"
	"github.com/ordena/bitacora-api/pkg/jwt"
)

// Locals keys de la sesión en Fiber.
const (
	LocalUserID     = "user_id"
	LocalRole       = "role"
	LocalBodegaID   = "bodega_id"
	LocalSucursalID = "sucursal_id"
)

// AuthMiddleware valida el Bearer Token JWT y deja la sesión en c.Locals.
func AuthMiddleware(jwtSecret, issuer string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		session, err := jwt.Parse(jwtSecret, issuer, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, session.UserID)
		c.Locals(LocalRole, session.Role)
		c.Locals(LocalBodegaID, session.BodegaID)
		c.Locals(LocalSucursalID, session.SucursalID)
		return c.Next()
	}
}

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return localString(c, LocalUserID) }

// GetRole devuelve el rol del contexto.
func GetRole(c *fiber.Ctx) string { return localString(c, LocalRole) }

// GetScope alcance de la sesión: bodega o sucursal asignada al usuario.
// Solo un admin sin alcance en el token puede elegirlo con ?bodega= o ?sucursal=;
// cualquier otro usuario que los envíe recibe domain.ErrForbidden.
func GetScope(c *fiber.Ctx) (repository.Scope, error) {
	if GetUserID(c) == "" {
		return repository.Scope{}, domain.ErrUnauthorized
	}
	scope := repository.Scope{
		BodegaID:   localString(c, LocalBodegaID),
		SucursalID: localString(c, LocalSucursalID),
	}
	bodega, sucursal := strings.TrimSpace(c.Query("bodega")), strings.TrimSpace(c.Query("sucursal"))
	if bodega == "" && sucursal == "" {
		return scope, nil
	}
	if GetRole(c) != RoleAdmin || scope.BodegaID != "" || scope.SucursalID != "" {
		return repository.Scope{}, domain.ErrForbidden
	}
	return repository.Scope{BodegaID: bodega, SucursalID: sucursal}, nil
}
