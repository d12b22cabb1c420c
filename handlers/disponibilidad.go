package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/dental-backend/agenda"
	"github.com/lizet96/dental-backend/cache"
	"github.com/lizet96/dental-backend/database"
)

// Cache guarda respuestas de disponibilidad y reportes. main lo reemplaza
// por Redis cuando REDIS_ADDR está configurado.
var Cache cache.Cache = cache.NewNoop()

// La disponibilidad cambia con cada cita agendada, así que el TTL es corto
const ttlDisponibilidad = 30 * time.Second

func claveCacheDisponibilidad(fecha string) string {
	return "disponibilidad:" + fecha
}

// ObtenerDisponibilidad devuelve, por dentista activo, los horarios libres
// de la fecha solicitada. Los horarios ocupados por citas vigentes se
// descartan; las citas canceladas y las inasistencias liberan su horario.
func ObtenerDisponibilidad(c *fiber.Ctx) error {
	fecha := c.Query("fecha")
	if fecha == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "El parámetro fecha es requerido (YYYY-MM-DD)",
		})
	}

	if _, err := agenda.ParseFecha(fecha); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Formato de fecha inválido, usa YYYY-MM-DD",
		})
	}

	clave := claveCacheDisponibilidad(fecha)
	if cacheado, ok, _ := Cache.Get(c.Context(), clave); ok {
		c.Set("Content-Type", "application/json")
		return c.Send(cacheado)
	}

	horarios, err := agenda.GenerarHorarios(fecha)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Formato de fecha inválido, usa YYYY-MM-DD",
		})
	}

	// Días sin atención (domingo) responden con la lista vacía
	if len(horarios) == 0 {
		return c.JSON(fiber.Map{
			"fecha":        fecha,
			"dentistas":    []interface{}{},
			"sin_atencion": true,
		})
	}

	rows, err := database.GetDB().Query(context.Background(),
		`SELECT id_usuario, nombre || ' ' || apellido
		 FROM usuarios
		 WHERE rol = 'dentista' AND deleted_at IS NULL
		 ORDER BY apellido, nombre`)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al obtener dentistas",
		})
	}
	defer rows.Close()

	type dentista struct {
		id     int
		nombre string
	}
	var dentistas []dentista
	for rows.Next() {
		var d dentista
		if err := rows.Scan(&d.id, &d.nombre); err != nil {
			continue
		}
		dentistas = append(dentistas, d)
	}

	// Horarios ocupados de la fecha, agrupados por dentista
	ocupados := make(map[int]map[string]bool)
	filas, err := database.GetDB().Query(context.Background(),
		`SELECT id_dentista, hora FROM citas
		 WHERE fecha = $1 AND id_dentista IS NOT NULL
		   AND estado NOT IN ('cancelada', 'no_asistio')`, fecha)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al obtener citas del día",
		})
	}
	defer filas.Close()

	for filas.Next() {
		var idDentista int
		var hora string
		if err := filas.Scan(&idDentista, &hora); err != nil {
			continue
		}
		if ocupados[idDentista] == nil {
			ocupados[idDentista] = make(map[string]bool)
		}
		ocupados[idDentista][hora] = true
	}

	disponibilidad := make([]fiber.Map, 0, len(dentistas))
	for _, d := range dentistas {
		libres := agenda.FiltrarReservados(horarios, ocupados[d.id])
		disponibilidad = append(disponibilidad, fiber.Map{
			"id_dentista":          d.id,
			"dentista":             d.nombre,
			"horarios_disponibles": libres,
		})
	}

	respuesta := fiber.Map{
		"fecha":     fecha,
		"dentistas": disponibilidad,
	}

	if codificada, err := json.Marshal(respuesta); err == nil {
		Cache.Set(c.Context(), clave, codificada, ttlDisponibilidad)
	}

	return c.JSON(respuesta)
}
