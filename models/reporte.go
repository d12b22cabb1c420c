package models

import (
	"time"
)

// ReporteDiario es una fila de la vista vw_analiticas_diarias
type ReporteDiario struct {
	Dia             string `json:"dia"`
	TotalCitas      int    `json:"total_citas"`
	Programadas     int    `json:"programadas"`
	Confirmadas     int    `json:"confirmadas"`
	Completadas     int    `json:"completadas"`
	Canceladas      int    `json:"canceladas"`
	TotalSesiones   int    `json:"total_sesiones"`
	SesionesConCita int    `json:"sesiones_con_cita"`
}

// ReporteResumen agrega los totales históricos del sistema
type ReporteResumen struct {
	TotalUsuarios   int            `json:"total_usuarios"`
	UsuariosPorRol  map[string]int `json:"usuarios_por_rol"`
	TotalCitas      int            `json:"total_citas"`
	CitasPorEstado  map[string]int `json:"citas_por_estado"`
	TotalSesiones   int            `json:"total_sesiones"`
	SesionesConCita int            `json:"sesiones_con_cita"`
	IntencionesTop  map[string]int `json:"intenciones_top"`
	FechaGeneracion time.Time      `json:"fecha_generacion"`
}
