package models

import (
	"time"
)

// Estados del ciclo de vida de una cita
const (
	CitaProgramada   = "programada"
	CitaConfirmada   = "confirmada"
	CitaCompletada   = "completada"
	CitaCancelada    = "cancelada"
	CitaNoAsistio    = "no_asistio"
	CitaReprogramada = "reprogramada"
)

// EstadosCitaValidos permite validar el estado recibido en una petición
var EstadosCitaValidos = map[string]bool{
	CitaProgramada:   true,
	CitaConfirmada:   true,
	CitaCompletada:   true,
	CitaCancelada:    true,
	CitaNoAsistio:    true,
	CitaReprogramada: true,
}

// TiposCitaValidos enumera los tipos de cita que ofrece el consultorio
var TiposCitaValidos = map[string]bool{
	"limpieza":       true,
	"revision":       true,
	"blanqueamiento": true,
	"extraccion":     true,
	"ortodoncia":     true,
	"endodoncia":     true,
	"urgencia":       true,
	"consulta":       true,
}

// Cita representa la tabla citas en la base de datos
type Cita struct {
	ID                int        `json:"id_cita" db:"id_cita"`
	IDPaciente        int        `json:"id_paciente" db:"id_paciente" validate:"required"`
	IDDentista        *int       `json:"id_dentista,omitempty" db:"id_dentista"`
	Fecha             string     `json:"fecha" db:"fecha" validate:"required"` // YYYY-MM-DD
	Hora              string     `json:"hora" db:"hora" validate:"required"`   // HH:MM
	Tipo              string     `json:"tipo" db:"tipo" validate:"required,max=30"`
	Estado            string     `json:"estado" db:"estado"`
	Motivo            *string    `json:"motivo,omitempty" db:"motivo" validate:"max=500"`
	CanceladaEn       *time.Time `json:"cancelada_en,omitempty" db:"cancelada_en"`
	MotivoCancelacion *string    `json:"motivo_cancelacion,omitempty" db:"motivo_cancelacion"`
	CanceladaPor      *int       `json:"cancelada_por,omitempty" db:"cancelada_por"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// CitaRequest representa una solicitud para agendar una cita
type CitaRequest struct {
	IDPaciente int     `json:"id_paciente"`
	IDDentista int     `json:"id_dentista" validate:"required"`
	Fecha      string  `json:"fecha" validate:"required"`
	Hora       string  `json:"hora" validate:"required"`
	Tipo       string  `json:"tipo" validate:"required"`
	Motivo     *string `json:"motivo,omitempty"`
}

// ReprogramarCitaRequest permite mover una cita a otro horario
type ReprogramarCitaRequest struct {
	Fecha string `json:"fecha" validate:"required"`
	Hora  string `json:"hora" validate:"required"`
}

// CancelarCitaRequest lleva el motivo opcional de la cancelación
type CancelarCitaRequest struct {
	Motivo *string `json:"motivo,omitempty"`
}

// EstadoCitaRequest cambia el estado de una cita
type EstadoCitaRequest struct {
	Estado string `json:"estado" validate:"required"`
}

// CitaProxima es una fila de la vista vw_citas_proximas
type CitaProxima struct {
	ID         int     `json:"id_cita"`
	Fecha      string  `json:"fecha"`
	Hora       string  `json:"hora"`
	Tipo       string  `json:"tipo"`
	Estado     string  `json:"estado"`
	IDPaciente int     `json:"id_paciente"`
	Paciente   string  `json:"paciente"`
	IDDentista *int    `json:"id_dentista,omitempty"`
	Dentista   *string `json:"dentista,omitempty"`
}

// DisponibilidadDentista agrupa los horarios libres de un dentista en una fecha
type DisponibilidadDentista struct {
	IDDentista int      `json:"id_dentista"`
	Dentista   string   `json:"dentista"`
	Horarios   []string `json:"horarios_disponibles"`
}
