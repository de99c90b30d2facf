package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/StantonMatt/coab-platform/internal/application/auth"
	"github.com/StantonMatt/coab-platform/internal/application/dto"
)

// AuthHandler maneja login de clientes y del panel, logout y activación de cuenta.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Login godoc
// @Summary      Iniciar sesión (cliente)
// @Description  RUT con dígito verificador y contraseña. Cinco intentos fallidos bloquean la cuenta.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "rut, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse  "SETUP_REQUIRED"
// @Failure      423   {object}  dto.ErrorResponse  "ACCOUNT_LOCKED"
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// AdminLogin godoc
// @Summary      Iniciar sesión (panel)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdminLoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/admin/login [post]
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var in dto.AdminLoginRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.AdminLogin(c.UserContext(), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Logout godoc
// @Summary      Cerrar sesión
// @Description  Revoca el token actual hasta su expiración.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.MessageResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.uc.Logout(c.UserContext(), GetJTI(c), GetExpiresAt(c)); err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "sesión cerrada"})
}

// SetupInfo godoc
// @Summary      Validar link de activación
// @Tags         auth
// @Produce      json
// @Param        token  path  string  true  "token de activación"
// @Success      200  {object}  dto.SetupInfoResponse
// @Failure      400  {object}  dto.ErrorResponse  "SETUP_TOKEN_INVALID"
// @Router       /api/auth/setup/{token} [get]
func (h *AuthHandler) SetupInfo(c *fiber.Ctx) error {
	out, err := h.uc.ValidateSetupToken(c.UserContext(), c.Params("token"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// CompleteSetup godoc
// @Summary      Definir contraseña con link de activación
// @Description  Consume el token y devuelve una sesión iniciada.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  path  string                    true  "token de activación"
// @Param        body   body  dto.SetupPasswordRequest  true  "password"
// @Success      200  {object}  dto.LoginResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/auth/setup/{token} [post]
func (h *AuthHandler) CompleteSetup(c *fiber.Ctx) error {
	var in dto.SetupPasswordRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.CompleteSetup(c.UserContext(), c.Params("token"), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
