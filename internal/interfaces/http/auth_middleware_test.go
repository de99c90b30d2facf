package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/StantonMatt/coab-platform/internal/interfaces/http"
	pkgjwt "github.com/StantonMatt/coab-platform/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "coab-test"
	testExpMin    = 60
)

// fakeRevocation lista de tokens revocados en memoria.
type fakeRevocation struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocation) IsRevoked(_ context.Context, jti string) (bool, error) {
	if f == nil {
		return false, nil
	}
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[jti], nil
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y cargar locals
//   - RequireRole para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(revoked *fakeRevocation, allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret, revoked),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

// issue genera un JWT con el rol y tipo indicados.
func issue(t *testing.T, role, tipo string) *pkgjwt.Issued {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, tipo, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return tok
}

// tokenForRole header Authorization para un usuario del panel con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	return "Bearer " + issue(t, role, pkgjwt.TipoAdmin).Token
}

// doRequest lanza una petición GET al path y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	app := buildTestApp(nil, "admin")
	resp := doRequest(t, app, "/protected", tokenForRole(t, "admin"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "admin", body["role"])
}

func TestRequireRole_SupervisorAccedeRutaAdminOSupervisor(t *testing.T) {
	app := buildTestApp(nil, "admin", "supervisor")
	resp := doRequest(t, app, "/protected", tokenForRole(t, "supervisor"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_OperadorBloqueadoEnRutaSupervisor(t *testing.T) {
	app := buildTestApp(nil, "admin", "supervisor")
	resp := doRequest(t, app, "/protected", tokenForRole(t, "operador"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRequireRole_TokenSinRol_Retorna401(t *testing.T) {
	app := buildTestApp(nil, "admin")
	resp := doRequest(t, app, "/protected", tokenForRole(t, ""))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_ROLE")
}

func TestRequireRole_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp(nil, "admin")
	resp := doRequest(t, app, "/protected", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestRequireRole_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(nil, "admin")
	resp := doRequest(t, app, "/protected", "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de revocación (logout)
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_TokenRevocado_Retorna401(t *testing.T) {
	tok := issue(t, "admin", pkgjwt.TipoAdmin)
	app := buildTestApp(&fakeRevocation{revoked: map[string]bool{tok.JTI: true}}, "admin")

	resp := doRequest(t, app, "/protected", "Bearer "+tok.Token)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "TOKEN_REVOKED")
}

func TestAuthMiddleware_OtroTokenRevocado_NoAfecta(t *testing.T) {
	tok := issue(t, "admin", pkgjwt.TipoAdmin)
	app := buildTestApp(&fakeRevocation{revoked: map[string]bool{"otro-jti": true}}, "admin")

	resp := doRequest(t, app, "/protected", "Bearer "+tok.Token)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddleware_FalloRevocacion_Retorna503(t *testing.T) {
	app := buildTestApp(&fakeRevocation{err: errors.New("redis caído")}, "admin")

	resp := doRequest(t, app, "/protected", tokenForRole(t, "admin"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireTipo
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireTipo_ClienteBloqueadoEnPanel(t *testing.T) {
	app := fiber.New()
	app.Get("/admin",
		apphttp.AuthMiddleware(testJWTSecret, nil),
		apphttp.RequireTipo(pkgjwt.TipoAdmin),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)

	resp := doRequest(t, app, "/admin", "Bearer "+issue(t, "cliente", pkgjwt.TipoCliente).Token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, app, "/admin", tokenForRole(t, "operador"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware: extracción de claims del token
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret, nil), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": apphttp.GetUserID(c),
			"role":    apphttp.GetRole(c),
			"tipo":    apphttp.GetTipo(c),
			"jti":     apphttp.GetJTI(c),
			"has_exp": !apphttp.GetExpiresAt(c).IsZero(),
		})
	})

	tok := issue(t, "cliente", pkgjwt.TipoCliente)
	resp := doRequest(t, app, "/me", "Bearer "+tok.Token)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, "cliente", body["role"])
	assert.Equal(t, "cliente", body["tipo"])
	assert.Equal(t, tok.JTI, body["jti"])
	assert.Equal(t, true, body["has_exp"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests JWT pkg: integridad del generate/parse
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateAndParse_ConRoleYTipo(t *testing.T) {
	tok := issue(t, "supervisor", pkgjwt.TipoAdmin)
	require.NotEmpty(t, tok.Token)
	require.NotEmpty(t, tok.JTI)

	claims, err := pkgjwt.Parse(testJWTSecret, tok.Token)
	require.NoError(t, err)

	assert.Equal(t, testUserID, claims.UserID)
	assert.Equal(t, testUserID, claims.Subject)
	assert.Equal(t, "supervisor", claims.Role)
	assert.Equal(t, pkgjwt.TipoAdmin, claims.Tipo)
	assert.Equal(t, tok.JTI, claims.ID)
}

func TestJWT_TokenExpirado_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "admin", pkgjwt.TipoAdmin, testIssuer, -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testJWTSecret, tok.Token)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestJWT_SecretIncorrecto_RetornaError(t *testing.T) {
	tok := issue(t, "admin", pkgjwt.TipoAdmin)

	_, err := pkgjwt.Parse("otro-secret-completamente-distinto", tok.Token)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}

func TestJWT_CadaTokenTieneJTIDistinto(t *testing.T) {
	a := issue(t, "admin", pkgjwt.TipoAdmin)
	b := issue(t, "admin", pkgjwt.TipoAdmin)
	assert.NotEqual(t, a.JTI, b.JTI)
}
