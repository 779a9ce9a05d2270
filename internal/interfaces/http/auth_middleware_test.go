package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-backoffice/internal/application/authz"
	"github.com/jhoicas/tienda-backoffice/internal/domain/rbac"
	apphttp "github.com/jhoicas/tienda-backoffice/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/tienda-backoffice/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "tienda-test"
	testExpMin    = 60
)

// buildPermissionApp aplicación mínima con AuthMiddleware + RequirePermission sobre un handler dummy.
func buildPermissionApp(res rbac.Resource, act rbac.Action) *fiber.App {
	app := fiber.New()
	gate := authz.NewGate(rbac.MustDefault(), nil)
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequirePermission(gate, res, act),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true, "roles": apphttp.GetRoles(c)})
		},
	)
	return app
}

func bearer(t *testing.T, userID string, roles ...string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, roles, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func getProtected(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRequirePermission_StaffAdministraUsuarios(t *testing.T) {
	app := buildPermissionApp(rbac.ResourceUser, rbac.ActionAdd)
	resp := getProtected(t, app, bearer(t, testUserID, "staff"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequirePermission_CustomerBloqueado(t *testing.T) {
	app := buildPermissionApp(rbac.ResourceUser, rbac.ActionAdd)
	resp := getProtected(t, app, bearer(t, testUserID, "customers"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRequirePermission_UnionDeRoles(t *testing.T) {
	app := buildPermissionApp(rbac.ResourceProduct, rbac.ActionChange)
	resp := getProtected(t, app, bearer(t, testUserID, "customers", "stock_personnel"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequirePermission_SinRolesNiegaTodo(t *testing.T) {
	app := buildPermissionApp(rbac.ResourceProduct, rbac.ActionView)
	resp := getProtected(t, app, bearer(t, testUserID))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAuthMiddleware_SinHeader_Retorna401(t *testing.T) {
	app := buildPermissionApp(rbac.ResourceProduct, rbac.ActionView)
	resp := getProtected(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	app := buildPermissionApp(rbac.ResourceProduct, rbac.ActionView)
	resp := getProtected(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": apphttp.GetUserID(c),
			"roles":   apphttp.GetRoles(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", bearer(t, testUserID, "staff", "customers"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		UserID string   `json:"user_id"`
		Roles  []string `json:"roles"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body.UserID)
	assert.Equal(t, []string{"staff", "customers"}, body.Roles)
}
