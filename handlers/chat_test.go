package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/dental-backend/models"
)

// servicioConversacionalFalso responde el contrato del servicio
// conversacional sin salir del proceso de pruebas
func servicioConversacionalFalso(t *testing.T) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.ChatbotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(400)
			return
		}
		json.NewEncoder(w).Encode(models.ChatbotResponse{
			Response:  "Claro, con gusto te ayudo.",
			SessionID: req.SessionID,
			Timestamp: time.Now(),
		})
	}))
	t.Cleanup(srv.Close)

	anterior := os.Getenv("CHATBOT_SERVICE_URL")
	os.Setenv("CHATBOT_SERVICE_URL", srv.URL)
	t.Cleanup(func() { os.Setenv("CHATBOT_SERVICE_URL", anterior) })
}

func enviarMensajeChat(t *testing.T, app *fiber.App, token, mensaje, sessionID string) models.ChatResponse {
	t.Helper()
	resp, err := app.Test(peticionJSON(t, http.MethodPost, "/api/v1/chat", token, fiber.Map{
		"message":    mensaje,
		"session_id": sessionID,
	}), 15000)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("chat: status esperado 200, se obtuvo %d", resp.StatusCode)
	}

	var decodificada models.ChatResponse
	decodificar(t, resp, &decodificada)
	return decodificada
}

func TestChatNoReutilizaSesionAjena(t *testing.T) {
	app := servidorDePruebas(t)
	servicioConversacionalFalso(t)

	duenia, passDuenia, _ := registrarUsuario(t, app, "paciente")
	intruso, passIntruso, _ := registrarUsuario(t, app, "paciente")
	tokenDuenia := iniciarSesion(t, app, duenia, passDuenia)
	tokenIntruso := iniciarSesion(t, app, intruso, passIntruso)

	primera := enviarMensajeChat(t, app, tokenDuenia, "hola", "")
	if primera.SessionID == "" {
		t.Fatal("la primera respuesta debe traer un session_id")
	}
	if primera.MessageCount != 2 {
		t.Fatalf("conteo esperado 2, se obtuvo %d", primera.MessageCount)
	}

	// Otro usuario con el mismo session_id recibe una sesión propia nueva
	ajena := enviarMensajeChat(t, app, tokenIntruso, "hola", primera.SessionID)
	if ajena.SessionID == primera.SessionID {
		t.Fatal("una sesión ajena no debe reutilizarse")
	}

	// La dueña sí continúa su sesión y el conteo avanza
	segunda := enviarMensajeChat(t, app, tokenDuenia, "quiero agendar una cita", primera.SessionID)
	if segunda.SessionID != primera.SessionID {
		t.Fatal("el usuario dueño debe conservar su sesión")
	}
	if segunda.MessageCount != 4 {
		t.Fatalf("conteo esperado 4, se obtuvo %d", segunda.MessageCount)
	}

	// Los mensajes del otro usuario no aparecen en la sesión original
	resp, err := app.Test(peticionJSON(t, http.MethodGet,
		"/api/v1/chat/sesiones/"+primera.SessionID, tokenDuenia, nil), 15000)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	var detalle models.SesionChatDetalle
	decodificar(t, resp, &detalle)
	if len(detalle.Mensajes) != 4 {
		t.Fatalf("la sesión debe tener 4 mensajes, tiene %d", len(detalle.Mensajes))
	}
}
