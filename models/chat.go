package models

import (
	"time"
)

// Estados de una sesión de chat
const (
	SesionActiva     = "activa"
	SesionFinalizada = "finalizada"
	SesionTimeout    = "timeout"
	SesionError      = "error"
)

// Remitentes de mensajes de chat
const (
	RemitenteUsuario = "usuario"
	RemitenteBot     = "bot"
	RemitenteSistema = "sistema"
)

// SesionChat representa la tabla sesiones_chat
type SesionChat struct {
	ID                 string    `json:"id_sesion" db:"id_sesion"`
	IDUsuario          *int      `json:"id_usuario,omitempty" db:"id_usuario"`
	TotalMensajes      int       `json:"total_mensajes" db:"total_mensajes"`
	Estado             string    `json:"estado" db:"estado"`
	IntencionPrincipal *string   `json:"intencion_principal,omitempty" db:"intencion_principal"`
	GeneroCita         bool      `json:"genero_cita" db:"genero_cita"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// MensajeChat representa la tabla mensajes_chat
type MensajeChat struct {
	ID        int       `json:"id_mensaje" db:"id_mensaje"`
	IDSesion  string    `json:"id_sesion" db:"id_sesion"`
	Secuencia int       `json:"secuencia" db:"secuencia"`
	Remitente string    `json:"remitente" db:"remitente"`
	Contenido string    `json:"contenido" db:"contenido"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ChatRequest es la solicitud del cliente al gateway
type ChatRequest struct {
	Message   string            `json:"message" validate:"required,min=1,max=2000"`
	SessionID string            `json:"session_id,omitempty"`
	Context   map[string]string `json:"context,omitempty"`
}

// ChatResponse es la respuesta del gateway al cliente
type ChatResponse struct {
	Response     string    `json:"response"`
	SessionID    string    `json:"session_id"`
	Timestamp    time.Time `json:"timestamp"`
	MessageCount int       `json:"message_count"`
	Intencion    string    `json:"intencion,omitempty"`
}

// ChatbotRequest es el contrato de salida hacia el servicio conversacional
type ChatbotRequest struct {
	Message   string            `json:"message"`
	SessionID string            `json:"session_id,omitempty"`
	UserID    string            `json:"user_id"`
	Context   map[string]string `json:"context,omitempty"`
}

// ChatbotResponse es el contrato de entrada desde el servicio conversacional
type ChatbotResponse struct {
	Response     string    `json:"response"`
	SessionID    string    `json:"session_id"`
	Timestamp    time.Time `json:"timestamp"`
	MessageCount int       `json:"message_count"`
}

// SesionChatDetalle agrupa una sesión con sus mensajes ordenados
type SesionChatDetalle struct {
	Sesion   SesionChat    `json:"sesion"`
	Mensajes []MensajeChat `json:"mensajes"`
}

// FinalizarSesionRequest cierra una sesión e indica si terminó en cita
type FinalizarSesionRequest struct {
	GeneroCita bool `json:"genero_cita"`
}
