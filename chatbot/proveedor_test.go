package chatbot

import (
	"context"
	"strings"
	"testing"
)

func TestProveedorMockRespuestas(t *testing.T) {
	proveedor := &ProveedorMock{}

	casos := []struct {
		mensaje  string
		contiene string
	}{
		{"quiero agendar una cita", "agendar una cita"},
		{"¿qué servicios ofrecen?", "servicios dentales"},
		{"me duele una muela", "urgencias dentales"},
		{"¿a qué hora abren?", "horario de atención"},
		{"¿cuánto cuesta una resina?", "costos"},
		{"necesito una limpieza", "limpieza profesional"},
		{"hola, buenas tardes", "Bienvenido"},
		{"xyzzy", "más de detalle"},
	}

	for _, caso := range casos {
		respuesta, err := proveedor.Responder(context.Background(), caso.mensaje, nil)
		if err != nil {
			t.Fatalf("%q: error inesperado: %v", caso.mensaje, err)
		}
		if !strings.Contains(strings.ToLower(respuesta), strings.ToLower(caso.contiene)) {
			t.Errorf("%q: la respuesta debería mencionar %q, se obtuvo %q",
				caso.mensaje, caso.contiene, respuesta)
		}
	}
}

func TestNuevoProveedor(t *testing.T) {
	if _, err := NuevoProveedor(Config{Proveedor: "mock"}); err != nil {
		t.Fatalf("el proveedor mock no debe fallar: %v", err)
	}

	if _, err := NuevoProveedor(Config{Proveedor: "openai"}); err == nil {
		t.Fatal("openai sin api key debe fallar")
	}
	if _, err := NuevoProveedor(Config{Proveedor: "openai", OpenAIAPIKey: "sk-test"}); err != nil {
		t.Fatalf("openai con api key no debe fallar: %v", err)
	}

	if _, err := NuevoProveedor(Config{Proveedor: "otro"}); err == nil {
		t.Fatal("un proveedor desconocido debe fallar")
	}
}
