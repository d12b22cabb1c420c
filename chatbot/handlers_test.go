package chatbot

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func appDePrueba(t *testing.T) *fiber.App {
	t.Helper()
	app, servicio, err := NuevaApp(Config{
		Proveedor:       "mock",
		TimeoutSesion:   30 * time.Minute,
		MaxHistorial:    10,
		NombreAsistente: "DentalBot",
	})
	if err != nil {
		t.Fatalf("error creando la app: %v", err)
	}
	t.Cleanup(servicio.sesiones.Cerrar)
	return app
}

func TestSalud(t *testing.T) {
	app := appDePrueba(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status esperado 200, se obtuvo %d", resp.StatusCode)
	}

	var cuerpo map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&cuerpo); err != nil {
		t.Fatalf("respuesta no es JSON: %v", err)
	}
	if cuerpo["provider"] != "mock" {
		t.Fatalf("proveedor esperado mock, se obtuvo %v", cuerpo["provider"])
	}
}

func TestChatCreaSesionYConserva(t *testing.T) {
	app := appDePrueba(t)

	enviar := func(mensaje, sessionID string) MensajeResponse {
		t.Helper()
		cuerpo, _ := json.Marshal(MensajeRequest{
			Message:   mensaje,
			SessionID: sessionID,
			UserID:    "1",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(cuerpo))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("error inesperado: %v", err)
		}
		if resp.StatusCode != 200 {
			t.Fatalf("status esperado 200, se obtuvo %d", resp.StatusCode)
		}

		var decodificada MensajeResponse
		if err := json.NewDecoder(resp.Body).Decode(&decodificada); err != nil {
			t.Fatalf("respuesta no es JSON: %v", err)
		}
		return decodificada
	}

	primera := enviar("hola", "")
	if primera.SessionID == "" {
		t.Fatal("la primera respuesta debe traer un session_id")
	}
	if primera.MessageCount != 2 {
		t.Fatalf("conteo esperado 2, se obtuvo %d", primera.MessageCount)
	}

	segunda := enviar("quiero agendar una cita", primera.SessionID)
	if segunda.SessionID != primera.SessionID {
		t.Fatal("la sesión debe conservarse entre mensajes")
	}
	if segunda.MessageCount != 4 {
		t.Fatalf("conteo esperado 4, se obtuvo %d", segunda.MessageCount)
	}
}

func TestChatSinMensaje(t *testing.T) {
	app := appDePrueba(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("status esperado 400, se obtuvo %d", resp.StatusCode)
	}
}

func TestCicloDeVidaDeSesion(t *testing.T) {
	app := appDePrueba(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("status esperado 201, se obtuvo %d", resp.StatusCode)
	}

	var sesion Sesion
	if err := json.NewDecoder(resp.Body).Decode(&sesion); err != nil {
		t.Fatalf("respuesta no es JSON: %v", err)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions/"+sesion.ID, nil))
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status esperado 200, se obtuvo %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/sessions/"+sesion.ID, nil))
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status esperado 200, se obtuvo %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions/"+sesion.ID, nil))
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("status esperado 404 tras eliminar, se obtuvo %d", resp.StatusCode)
	}
}
