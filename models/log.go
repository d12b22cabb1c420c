package models

import (
	"encoding/json"
	"time"
)

// LogAuditoria representa la tabla logs_auditoria (solo inserción)
type LogAuditoria struct {
	ID           int             `json:"id_log" db:"id_log"`
	Actor        *string         `json:"actor,omitempty" db:"actor"`
	RolActor     *string         `json:"rol_actor,omitempty" db:"rol_actor"`
	Accion       string          `json:"accion" db:"accion"`
	Recurso      string          `json:"recurso" db:"recurso"`
	IDRecurso    *string         `json:"id_recurso,omitempty" db:"id_recurso"`
	DatosAntes   json.RawMessage `json:"datos_antes,omitempty" db:"datos_antes"`
	DatosDespues json.RawMessage `json:"datos_despues,omitempty" db:"datos_despues"`
	IP           *string         `json:"ip,omitempty" db:"ip"`
	StatusCode   *int            `json:"status_code,omitempty" db:"status_code"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// CrearLogRequest es la entrada que registra el middleware de auditoría
type CrearLogRequest struct {
	Actor        *string `json:"actor,omitempty"`
	RolActor     *string `json:"rol_actor,omitempty"`
	Accion       string  `json:"accion" validate:"required,max=200"`
	Recurso      string  `json:"recurso" validate:"required,max=100"`
	IDRecurso    *string `json:"id_recurso,omitempty"`
	DatosAntes   []byte  `json:"datos_antes,omitempty"`
	DatosDespues []byte  `json:"datos_despues,omitempty"`
	IP           *string `json:"ip,omitempty"`
	StatusCode   *int    `json:"status_code,omitempty"`
}
