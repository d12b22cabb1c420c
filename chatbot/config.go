// Package chatbot implementa el servicio conversacional del consultorio:
// sesiones en memoria con expiración y un proveedor de respuestas que puede
// ser el motor local de palabras clave o un endpoint compatible con OpenAI.
package chatbot

import (
	"os"
	"strconv"
	"time"
)

// Config agrupa la configuración del servicio, cargada del entorno
type Config struct {
	Puerto          string
	Proveedor       string // mock | openai
	OpenAIAPIKey    string
	OpenAIModelo    string
	OpenAIBaseURL   string
	TimeoutSesion   time.Duration
	MaxHistorial    int
	NombreAsistente string
}

// CargarConfig lee la configuración del entorno con valores por defecto
// utilizables en desarrollo
func CargarConfig() Config {
	cfg := Config{
		Puerto:          envODefecto("SERVICE_PORT", "8000"),
		Proveedor:       envODefecto("LLM_PROVIDER", "mock"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModelo:    envODefecto("OPENAI_MODEL", "gpt-4-turbo-preview"),
		OpenAIBaseURL:   envODefecto("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		TimeoutSesion:   30 * time.Minute,
		MaxHistorial:    10,
		NombreAsistente: envODefecto("CHATBOT_NAME", "DentalBot"),
	}

	if minutos, err := strconv.Atoi(os.Getenv("SESSION_TIMEOUT_MINUTES")); err == nil && minutos > 0 {
		cfg.TimeoutSesion = time.Duration(minutos) * time.Minute
	}
	if max, err := strconv.Atoi(os.Getenv("MAX_CONVERSATION_HISTORY")); err == nil && max > 0 {
		cfg.MaxHistorial = max
	}

	return cfg
}

func envODefecto(clave, defecto string) string {
	if v := os.Getenv(clave); v != "" {
		return v
	}
	return defecto
}
