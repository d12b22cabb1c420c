package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Proveedor genera la respuesta del asistente a partir del mensaje del
// usuario y el historial de la sesión
type Proveedor interface {
	Responder(ctx context.Context, mensaje string, historial []Intercambio) (string, error)
	Nombre() string
}

// NuevoProveedor construye el proveedor configurado
func NuevoProveedor(cfg Config) (Proveedor, error) {
	switch cfg.Proveedor {
	case "mock", "":
		return &ProveedorMock{}, nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY no está configurada")
		}
		return &ProveedorOpenAI{
			apiKey:  cfg.OpenAIAPIKey,
			modelo:  cfg.OpenAIModelo,
			baseURL: cfg.OpenAIBaseURL,
			cliente: &http.Client{Timeout: 30 * time.Second},
		}, nil
	default:
		return nil, fmt.Errorf("proveedor no soportado: %s", cfg.Proveedor)
	}
}

// ProveedorMock responde con mensajes predefinidos según palabras clave.
// No necesita credenciales; es el proveedor de desarrollo y de pruebas.
type ProveedorMock struct{}

func (p *ProveedorMock) Nombre() string {
	return "mock"
}

func (p *ProveedorMock) Responder(ctx context.Context, mensaje string, historial []Intercambio) (string, error) {
	normalizado := strings.ToLower(mensaje)

	contiene := func(palabras ...string) bool {
		for _, palabra := range palabras {
			if strings.Contains(normalizado, palabra) {
				return true
			}
		}
		return false
	}

	switch {
	case contiene("cita", "agendar", "reservar", "apartar"):
		return "¡Con gusto te ayudo a agendar una cita!\n\n" +
			"¿Me puedes compartir lo siguiente?\n" +
			"- Fecha y hora de tu preferencia\n" +
			"- Motivo de la visita (revisión, limpieza, alguna molestia)\n" +
			"- Un teléfono de contacto\n\n" +
			"Atendemos de lunes a viernes de 8:00 a 18:00 y sábados de 9:00 a 14:00.", nil

	case contiene("servicio", "ofrecen", "qué hacen", "que hacen"):
		return "Ofrecemos una gama completa de servicios dentales:\n\n" +
			"- Odontología general (revisiones, limpiezas, resinas)\n" +
			"- Estética dental (blanqueamiento, carillas)\n" +
			"- Ortodoncia (brackets, alineadores)\n" +
			"- Cirugía oral (extracciones, muelas del juicio)\n" +
			"- Periodoncia (tratamiento de encías)\n" +
			"- Endodoncia\n" +
			"- Urgencias dentales\n\n" +
			"¿Sobre cuál te gustaría saber más?", nil

	case contiene("dolor", "duele", "urgencia", "urgente", "emergencia"):
		return "¡Lamento que tengas molestias!\n\n" +
			"Para dolor o urgencias dentales te recomiendo:\n" +
			"1. Llamar de inmediato a nuestra línea de urgencias\n" +
			"2. Tenemos espacios de urgencia el mismo día\n" +
			"3. Mientras tanto, enjuaga con agua tibia con sal\n\n" +
			"¿Quieres que agende una cita de urgencia?", nil

	case contiene("horario", "abren", "cierran", "abierto"):
		return "Nuestro horario de atención es:\n\n" +
			"- Lunes a viernes: 8:00 a 18:00\n" +
			"- Sábado: 9:00 a 14:00\n" +
			"- Domingo: cerrado\n\n" +
			"¿Te gustaría agendar una cita?", nil

	case contiene("precio", "costo", "cuánto", "cuanto", "pago", "seguro"):
		return "Sobre los costos:\n\n" +
			"Aceptamos la mayoría de los seguros dentales y manejamos planes de pago. " +
			"El costo exacto depende del tratamiento.\n\n" +
			"Para darte un presupuesto preciso lo mejor es agendar una valoración, donde:\n" +
			"- Evaluamos tu caso\n" +
			"- Verificamos tu cobertura\n" +
			"- Te entregamos un plan de tratamiento con costos\n\n" +
			"¿Agendamos una valoración?", nil

	case contiene("limpieza"):
		return "¡La limpieza profesional es clave para tu salud bucal!\n\n" +
			"Nuestras limpiezas incluyen:\n" +
			"- Remoción de placa y sarro\n" +
			"- Pulido\n" +
			"- Aplicación de flúor\n" +
			"- Valoración general\n\n" +
			"Recomendamos una limpieza cada 6 meses. ¿Quieres agendar la tuya?", nil

	case contiene("hola", "buenos días", "buenos dias", "buenas tardes", "buenas noches"):
		return "¡Hola! Bienvenido al consultorio dental.\n\n" +
			"Soy tu asistente dental y puedo ayudarte con:\n" +
			"- Agendar citas\n" +
			"- Información sobre nuestros servicios\n" +
			"- Dudas generales de salud dental\n" +
			"- Horarios y ubicación\n\n" +
			"¿En qué te puedo ayudar hoy?", nil
	}

	return "¡Gracias por tu mensaje! Puedo ayudarte con información sobre " +
		"nuestros servicios, agendar citas y dudas generales de salud dental.\n\n" +
		"¿Me puedes dar un poco más de detalle? Por ejemplo:\n" +
		"- ¿Necesitas agendar una cita?\n" +
		"- ¿Tienes dudas sobre algún tratamiento?\n" +
		"- ¿Quieres conocer nuestros horarios?", nil
}

// promptSistema orienta al modelo cuando el proveedor es un LLM real
const promptSistema = "Eres el asistente virtual de un consultorio dental. " +
	"Respondes en español, con calidez y brevedad. Ayudas a agendar citas, " +
	"explicas los servicios del consultorio y resuelves dudas generales de " +
	"salud dental. El horario es lunes a viernes de 8:00 a 18:00 y sábados " +
	"de 9:00 a 14:00; los domingos está cerrado. Nunca das diagnósticos: " +
	"ante síntomas recomiendas agendar una valoración."

// ProveedorOpenAI envía la conversación a un endpoint compatible con la API
// de chat completions de OpenAI
type ProveedorOpenAI struct {
	apiKey  string
	modelo  string
	baseURL string
	cliente *http.Client
}

func (p *ProveedorOpenAI) Nombre() string {
	return "openai"
}

type mensajeOpenAI struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type peticionOpenAI struct {
	Model       string          `json:"model"`
	Messages    []mensajeOpenAI `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type respuestaOpenAI struct {
	Choices []struct {
		Message mensajeOpenAI `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *ProveedorOpenAI) Responder(ctx context.Context, mensaje string, historial []Intercambio) (string, error) {
	mensajes := []mensajeOpenAI{{Role: "system", Content: promptSistema}}
	for _, intercambio := range historial {
		mensajes = append(mensajes,
			mensajeOpenAI{Role: "user", Content: intercambio.Usuario},
			mensajeOpenAI{Role: "assistant", Content: intercambio.Asistente})
	}
	mensajes = append(mensajes, mensajeOpenAI{Role: "user", Content: mensaje})

	cuerpo, err := json.Marshal(peticionOpenAI{
		Model:       p.modelo,
		Messages:    mensajes,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/chat/completions", bytes.NewReader(cuerpo))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.cliente.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var decodificada respuestaOpenAI
	if err := json.NewDecoder(resp.Body).Decode(&decodificada); err != nil {
		return "", err
	}
	if decodificada.Error != nil {
		return "", fmt.Errorf("error del proveedor: %s", decodificada.Error.Message)
	}
	if len(decodificada.Choices) == 0 {
		return "", errors.New("el proveedor no devolvió respuesta")
	}
	return decodificada.Choices[0].Message.Content, nil
}
