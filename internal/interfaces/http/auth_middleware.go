package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/pkg/jwt"
)

// Locals keys que deja el middleware de auth en Fiber.
const (
	LocalUserID    = "user_id"
	LocalRole      = "role"
	LocalTipo      = "tipo"
	LocalJTI       = "jti"
	LocalExpiresAt = "token_exp"
)

// Roles del panel.
const (
	RoleCliente    = "cliente"
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleOperador   = "operador"
)

// revocationChecker consulta la lista de tokens revocados. Lo implementa *auth.AuthUseCase.
type revocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware valida el Bearer Token JWT, rechaza tokens revocados y carga los claims en c.Locals.
// revoked puede ser nil (sin logout).
func AuthMiddleware(jwtSecret string, revoked revocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return writeError(c, fiber.StatusUnauthorized, "MISSING_TOKEN", "Authorization header requerido")
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return writeError(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "formato: Bearer <token>")
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return writeError(c, fiber.StatusUnauthorized, "MISSING_TOKEN", "token vacío")
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return writeError(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "token inválido o expirado")
		}
		if revoked != nil && claims.ID != "" {
			isRevoked, err := revoked.IsRevoked(c.UserContext(), claims.ID)
			if err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "REVOCATION_CHECK_FAILED", "no se pudo verificar la sesión, intente más tarde")
			}
			if isRevoked {
				return writeError(c, fiber.StatusUnauthorized, "TOKEN_REVOKED", "la sesión fue cerrada")
			}
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, claims.Role)
		c.Locals(LocalTipo, claims.Tipo)
		c.Locals(LocalJTI, claims.ID)
		if claims.ExpiresAt != nil {
			c.Locals(LocalExpiresAt, claims.ExpiresAt.Time)
		}
		return c.Next()
	}
}

// RequireRole autoriza solo a los roles indicados. Debe usarse DESPUÉS de AuthMiddleware.
//   - 401 MISSING_ROLE si el token no trae rol.
//   - 403 FORBIDDEN si el rol no está permitido.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return writeError(c, fiber.StatusUnauthorized, "MISSING_ROLE", "el token no incluye rol")
		}
		if !lo.Contains(roles, role) {
			return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "no tiene permisos para esta operación")
		}
		return c.Next()
	}
}

// RequireTipo restringe la ruta a un tipo de sujeto (cliente o admin).
func RequireTipo(tipo string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetTipo(c) != tipo {
			return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "no tiene permisos para esta operación")
		}
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return localString(c, LocalUserID) }

// GetRole devuelve el rol del token.
func GetRole(c *fiber.Ctx) string { return localString(c, LocalRole) }

// GetTipo devuelve el tipo de sujeto del token.
func GetTipo(c *fiber.Ctx) string { return localString(c, LocalTipo) }

// GetJTI devuelve el identificador del token.
func GetJTI(c *fiber.Ctx) string { return localString(c, LocalJTI) }

// GetExpiresAt devuelve la expiración del token; cero si no se conoce.
func GetExpiresAt(c *fiber.Ctx) time.Time {
	t, _ := c.Locals(LocalExpiresAt).(time.Time)
	return t
}

func localString(c *fiber.Ctx, key string) string {
	v := c.Locals(key)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// writeError responde con el cuerpo de error estándar.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.NewError(code, message))
}
