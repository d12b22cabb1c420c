package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/dental-backend/agenda"
	"github.com/lizet96/dental-backend/database"
	"github.com/lizet96/dental-backend/models"
)

// El resumen agrega todo el histórico; con 5 minutos de caché alcanza
const ttlResumen = 5 * time.Minute

const claveCacheResumen = "reportes:resumen"

// ReporteDiario devuelve las métricas de un día desde vw_analiticas_diarias
func ReporteDiario(c *fiber.Ctx) error {
	fecha := c.Query("fecha")
	if fecha == "" {
		fecha = time.Now().Format("2006-01-02")
	}
	if _, err := agenda.ParseFecha(fecha); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Formato de fecha inválido, usa YYYY-MM-DD",
		})
	}

	var reporte models.ReporteDiario
	err := database.GetDB().QueryRow(context.Background(),
		`SELECT TO_CHAR(dia, 'YYYY-MM-DD'), total_citas, programadas, confirmadas,
		        completadas, canceladas, total_sesiones, sesiones_con_cita
		 FROM vw_analiticas_diarias WHERE dia = $1`, fecha).Scan(
		&reporte.Dia, &reporte.TotalCitas, &reporte.Programadas, &reporte.Confirmadas,
		&reporte.Completadas, &reporte.Canceladas, &reporte.TotalSesiones,
		&reporte.SesionesConCita)
	if err != nil {
		// Un día sin actividad no tiene fila en la vista
		reporte = models.ReporteDiario{Dia: fecha}
	}

	return c.JSON(reporte)
}

// ReporteResumen agrega los totales históricos del consultorio
func ReporteResumen(c *fiber.Ctx) error {
	if cacheado, ok, _ := Cache.Get(c.Context(), claveCacheResumen); ok {
		c.Set("Content-Type", "application/json")
		return c.Send(cacheado)
	}

	ctx := context.Background()
	resumen := models.ReporteResumen{
		UsuariosPorRol:  make(map[string]int),
		CitasPorEstado:  make(map[string]int),
		IntencionesTop:  make(map[string]int),
		FechaGeneracion: time.Now(),
	}

	rows, err := database.GetDB().Query(ctx,
		`SELECT rol, COUNT(*) FROM usuarios WHERE deleted_at IS NULL GROUP BY rol`)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al generar el resumen",
		})
	}
	for rows.Next() {
		var rol string
		var total int
		if err := rows.Scan(&rol, &total); err == nil {
			resumen.UsuariosPorRol[rol] = total
			resumen.TotalUsuarios += total
		}
	}
	rows.Close()

	rows, err = database.GetDB().Query(ctx,
		`SELECT estado, COUNT(*) FROM citas GROUP BY estado`)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al generar el resumen",
		})
	}
	for rows.Next() {
		var estado string
		var total int
		if err := rows.Scan(&estado, &total); err == nil {
			resumen.CitasPorEstado[estado] = total
			resumen.TotalCitas += total
		}
	}
	rows.Close()

	err = database.GetDB().QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE genero_cita) FROM sesiones_chat`).Scan(
		&resumen.TotalSesiones, &resumen.SesionesConCita)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al generar el resumen",
		})
	}

	rows, err = database.GetDB().Query(ctx,
		`SELECT intencion_principal, COUNT(*) FROM sesiones_chat
		 WHERE intencion_principal IS NOT NULL
		 GROUP BY intencion_principal ORDER BY COUNT(*) DESC LIMIT 10`)
	if err == nil {
		for rows.Next() {
			var intencion string
			var total int
			if err := rows.Scan(&intencion, &total); err == nil {
				resumen.IntencionesTop[intencion] = total
			}
		}
		rows.Close()
	}

	if codificado, err := json.Marshal(resumen); err == nil {
		Cache.Set(c.Context(), claveCacheResumen, codificado, ttlResumen)
	}

	return c.JSON(resumen)
}
