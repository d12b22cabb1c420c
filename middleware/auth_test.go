package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestGenerarYValidarJWT(t *testing.T) {
	token, err := GenerateJWT(42, "paciente")
	if err != nil {
		t.Fatalf("error generando token: %v", err)
	}

	claims, err := ValidarJWT(token)
	if err != nil {
		t.Fatalf("error validando token: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("user id esperado 42, se obtuvo %d", claims.UserID)
	}
	if claims.Rol != "paciente" {
		t.Fatalf("rol esperado paciente, se obtuvo %s", claims.Rol)
	}
	if claims.Subject != "42" {
		t.Fatalf("subject esperado 42, se obtuvo %s", claims.Subject)
	}
}

func TestValidarJWTExpirado(t *testing.T) {
	token, err := GenerateJWTConDuracion(1, "admin", -time.Minute)
	if err != nil {
		t.Fatalf("error generando token: %v", err)
	}

	if _, err := ValidarJWT(token); err == nil {
		t.Fatal("un token expirado debe ser rechazado")
	}
}

func TestValidarJWTAlterado(t *testing.T) {
	token, err := GenerateJWT(1, "admin")
	if err != nil {
		t.Fatalf("error generando token: %v", err)
	}

	// Cambiar el último carácter de la firma
	alterado := token[:len(token)-1]
	if strings.HasSuffix(token, "A") {
		alterado += "B"
	} else {
		alterado += "A"
	}

	if _, err := ValidarJWT(alterado); err == nil {
		t.Fatal("un token con firma alterada debe ser rechazado")
	}
}

func appProtegida() *fiber.App {
	app := fiber.New()
	app.Get("/protegida", JWTMiddleware(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("user_id"),
			"rol":     c.Locals("user_rol"),
		})
	})
	app.Get("/admin", JWTMiddleware(), RequireRol("admin"), func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})
	return app
}

func TestJWTMiddleware(t *testing.T) {
	app := appProtegida()

	// Sin header
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protegida", nil))
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("sin token se espera 401, se obtuvo %d", resp.StatusCode)
	}

	// Formato inválido
	req := httptest.NewRequest(http.MethodGet, "/protegida", nil)
	req.Header.Set("Authorization", "token-sin-bearer")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("con formato inválido se espera 401, se obtuvo %d", resp.StatusCode)
	}

	// Token válido
	token, err := GenerateJWT(7, "paciente")
	if err != nil {
		t.Fatalf("error generando token: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/protegida", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("con token válido se espera 200, se obtuvo %d", resp.StatusCode)
	}
}

func TestRequireRol(t *testing.T) {
	app := appProtegida()

	tokenPaciente, _ := GenerateJWT(7, "paciente")
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tokenPaciente)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Fatalf("un paciente en ruta de admin espera 403, se obtuvo %d", resp.StatusCode)
	}

	tokenAdmin, _ := GenerateJWT(1, "admin")
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tokenAdmin)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("un admin en ruta de admin espera 200, se obtuvo %d", resp.StatusCode)
	}
}
