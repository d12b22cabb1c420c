package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lizet96/dental-backend/agenda"
	"github.com/lizet96/dental-backend/database"
	"github.com/lizet96/dental-backend/middleware"
	"github.com/lizet96/dental-backend/models"
)

// esViolacionUnicidad detecta el SQLSTATE 23505 (unique_violation)
func esViolacionUnicidad(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CrearCita agenda una nueva cita. La verificación de disponibilidad y la
// inserción ocurren en una sola sentencia condicional; bajo concurrencia el
// índice único parcial de la tabla decide, y la petición perdedora recibe
// el mismo 409 que una verificación fallida.
func CrearCita(c *fiber.Ctx) error {
	var req models.CitaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Datos inválidos",
		})
	}

	userID := c.Locals("user_id").(int)
	rol := c.Locals("user_rol").(string)

	// Un paciente solo puede agendar para sí mismo
	if rol == models.RolPaciente {
		req.IDPaciente = userID
	}
	if req.IDPaciente == 0 {
		return c.Status(400).JSON(fiber.Map{
			"error": "Paciente es requerido",
		})
	}

	if req.IDDentista == 0 || req.Fecha == "" || req.Hora == "" || req.Tipo == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Dentista, fecha, hora y tipo son requeridos",
		})
	}
	if !models.TiposCitaValidos[req.Tipo] {
		return c.Status(400).JSON(fiber.Map{
			"error": "Tipo de cita inválido",
		})
	}

	pasada, err := agenda.EsFechaPasada(req.Fecha, time.Now())
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Formato de fecha inválido, usa YYYY-MM-DD",
		})
	}
	if pasada {
		return c.Status(400).JSON(fiber.Map{
			"error": "No se pueden agendar citas en fechas pasadas",
		})
	}

	valido, err := agenda.EsHorarioValido(req.Fecha, req.Hora)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Formato de hora inválido, usa HH:MM",
		})
	}
	if !valido {
		return c.Status(400).JSON(fiber.Map{
			"error": "La hora no corresponde a un horario de atención",
		})
	}

	// Verificar que el dentista existe, está activo y tiene rol de dentista
	var esDentista bool
	err = database.GetDB().QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM usuarios
		               WHERE id_usuario = $1 AND rol = 'dentista' AND deleted_at IS NULL)`,
		req.IDDentista).Scan(&esDentista)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al verificar el dentista",
		})
	}
	if !esDentista {
		return c.Status(404).JSON(fiber.Map{
			"error": "Dentista no encontrado",
		})
	}

	// INSERT condicional: si el horario ya está tomado por una cita vigente
	// no se inserta ninguna fila y el cliente recibe 409.
	var nuevoID int
	err = database.GetDB().QueryRow(context.Background(),
		`INSERT INTO citas (id_paciente, id_dentista, fecha, hora, tipo, motivo)
		 SELECT $1, $2, $3, $4, $5, $6
		 WHERE NOT EXISTS (
		     SELECT 1 FROM citas
		     WHERE id_dentista = $2 AND fecha = $3 AND hora = $4
		       AND estado NOT IN ('cancelada', 'no_asistio')
		 )
		 RETURNING id_cita`,
		req.IDPaciente, req.IDDentista, req.Fecha, req.Hora, req.Tipo, req.Motivo).Scan(&nuevoID)
	if errors.Is(err, pgx.ErrNoRows) || esViolacionUnicidad(err) {
		return c.Status(409).JSON(fiber.Map{
			"error": "El horario ya está ocupado para ese dentista",
		})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al agendar la cita",
		})
	}

	Cache.Delete(c.Context(), claveCacheDisponibilidad(req.Fecha))

	return c.Status(201).JSON(fiber.Map{
		"mensaje": "Cita agendada exitosamente",
		"cita": fiber.Map{
			"id_cita":     nuevoID,
			"id_paciente": req.IDPaciente,
			"id_dentista": req.IDDentista,
			"fecha":       req.Fecha,
			"hora":        req.Hora,
			"tipo":        req.Tipo,
			"estado":      models.CitaProgramada,
		},
	})
}

// obtenerCita lee una cita por id
func obtenerCita(ctx context.Context, id int) (models.Cita, error) {
	var cita models.Cita
	err := database.GetDB().QueryRow(ctx,
		`SELECT id_cita, id_paciente, id_dentista, TO_CHAR(fecha, 'YYYY-MM-DD'), hora, tipo,
		        estado, motivo, cancelada_en, motivo_cancelacion, cancelada_por,
		        created_at, updated_at
		 FROM citas WHERE id_cita = $1`, id).Scan(
		&cita.ID, &cita.IDPaciente, &cita.IDDentista, &cita.Fecha, &cita.Hora, &cita.Tipo,
		&cita.Estado, &cita.Motivo, &cita.CanceladaEn, &cita.MotivoCancelacion,
		&cita.CanceladaPor, &cita.CreatedAt, &cita.UpdatedAt)
	return cita, err
}

// puedeVerCita aplica la regla de acceso: el paciente y el dentista de la
// cita, además de staff y admin
func puedeVerCita(cita models.Cita, userID int, rol string) bool {
	if rol == models.RolAdmin || rol == models.RolStaff {
		return true
	}
	if cita.IDPaciente == userID {
		return true
	}
	return cita.IDDentista != nil && *cita.IDDentista == userID
}

// ObtenerCitas lista citas con filtros opcionales, acotadas según el rol
func ObtenerCitas(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)
	rol := c.Locals("user_rol").(string)

	query := `SELECT id_cita, id_paciente, id_dentista, TO_CHAR(fecha, 'YYYY-MM-DD'), hora, tipo,
	                 estado, motivo, cancelada_en, motivo_cancelacion, cancelada_por,
	                 created_at, updated_at
	          FROM citas WHERE 1=1`
	var args []interface{}

	switch rol {
	case models.RolPaciente:
		args = append(args, userID)
		query += " AND id_paciente = $1"
	case models.RolDentista:
		args = append(args, userID)
		query += " AND id_dentista = $1"
	}

	if fecha := c.Query("fecha"); fecha != "" {
		args = append(args, fecha)
		query += " AND fecha = $" + strconv.Itoa(len(args))
	}
	if estado := c.Query("estado"); estado != "" {
		if !models.EstadosCitaValidos[estado] {
			return c.Status(400).JSON(fiber.Map{
				"error": "Estado de cita inválido",
			})
		}
		args = append(args, estado)
		query += " AND estado = $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY fecha, hora"

	rows, err := database.GetDB().Query(context.Background(), query, args...)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al obtener citas",
		})
	}
	defer rows.Close()

	var citas []models.Cita
	for rows.Next() {
		var cita models.Cita
		err := rows.Scan(&cita.ID, &cita.IDPaciente, &cita.IDDentista, &cita.Fecha, &cita.Hora,
			&cita.Tipo, &cita.Estado, &cita.Motivo, &cita.CanceladaEn,
			&cita.MotivoCancelacion, &cita.CanceladaPor, &cita.CreatedAt, &cita.UpdatedAt)
		if err != nil {
			continue
		}
		citas = append(citas, cita)
	}

	return c.JSON(fiber.Map{
		"citas": citas,
		"total": len(citas),
	})
}

// ObtenerCitaPorID obtiene una cita específica
func ObtenerCitaPorID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "ID inválido",
		})
	}

	cita, err := obtenerCita(context.Background(), id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Cita no encontrada",
		})
	}

	if !puedeVerCita(cita, c.Locals("user_id").(int), c.Locals("user_rol").(string)) {
		return c.Status(403).JSON(fiber.Map{
			"error": "No tienes permisos para ver esta cita",
		})
	}

	return c.JSON(cita)
}

// ReprogramarCita mueve una cita vigente a otro horario. El nuevo horario se
// valida y reserva con la misma sentencia condicional que CrearCita.
func ReprogramarCita(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "ID inválido",
		})
	}

	var req models.ReprogramarCitaRequest
	if err := c.BodyParser(&req); err != nil || req.Fecha == "" || req.Hora == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Fecha y hora son requeridas",
		})
	}

	cita, err := obtenerCita(context.Background(), id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Cita no encontrada",
		})
	}

	userID := c.Locals("user_id").(int)
	rol := c.Locals("user_rol").(string)
	if !puedeVerCita(cita, userID, rol) {
		return c.Status(403).JSON(fiber.Map{
			"error": "No tienes permisos para modificar esta cita",
		})
	}
	if cita.Estado == models.CitaCancelada || cita.Estado == models.CitaCompletada {
		return c.Status(400).JSON(fiber.Map{
			"error": "La cita ya no admite cambios de horario",
		})
	}

	pasada, err := agenda.EsFechaPasada(req.Fecha, time.Now())
	if err != nil || pasada {
		return c.Status(400).JSON(fiber.Map{
			"error": "Fecha inválida o en el pasado",
		})
	}
	valido, err := agenda.EsHorarioValido(req.Fecha, req.Hora)
	if err != nil || !valido {
		return c.Status(400).JSON(fiber.Map{
			"error": "La hora no corresponde a un horario de atención",
		})
	}

	tag, err := database.GetDB().Exec(context.Background(),
		`UPDATE citas SET fecha = $1, hora = $2, estado = 'reprogramada', updated_at = NOW()
		 WHERE id_cita = $3
		   AND NOT EXISTS (
		       SELECT 1 FROM citas
		       WHERE id_dentista = $4 AND fecha = $1 AND hora = $2 AND id_cita != $3
		         AND estado NOT IN ('cancelada', 'no_asistio')
		   )`,
		req.Fecha, req.Hora, id, cita.IDDentista)
	if esViolacionUnicidad(err) {
		return c.Status(409).JSON(fiber.Map{
			"error": "El nuevo horario ya está ocupado",
		})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al reprogramar la cita",
		})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(409).JSON(fiber.Map{
			"error": "El nuevo horario ya está ocupado",
		})
	}

	middleware.RegistrarEvento(strconv.Itoa(userID), rol, "cita_reprogramada", "citas",
		strconv.Itoa(id),
		fiber.Map{"fecha": cita.Fecha, "hora": cita.Hora, "estado": cita.Estado},
		fiber.Map{"fecha": req.Fecha, "hora": req.Hora, "estado": models.CitaReprogramada})

	Cache.Delete(c.Context(), claveCacheDisponibilidad(cita.Fecha))
	Cache.Delete(c.Context(), claveCacheDisponibilidad(req.Fecha))

	return c.JSON(fiber.Map{
		"mensaje": "Cita reprogramada exitosamente",
	})
}

// CancelarCita cancela una cita. La operación es idempotente a nivel de
// estado: cancelar una cita ya cancelada responde 200 y conserva los
// metadatos de la primera cancelación (la primera cancelación gana).
func CancelarCita(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "ID inválido",
		})
	}

	var req models.CancelarCitaRequest
	_ = c.BodyParser(&req) // el motivo es opcional

	cita, err := obtenerCita(context.Background(), id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Cita no encontrada",
		})
	}

	userID := c.Locals("user_id").(int)
	rol := c.Locals("user_rol").(string)
	if !puedeVerCita(cita, userID, rol) {
		return c.Status(403).JSON(fiber.Map{
			"error": "No tienes permisos para cancelar esta cita",
		})
	}

	// COALESCE conserva los metadatos si la cita ya estaba cancelada
	_, err = database.GetDB().Exec(context.Background(),
		`UPDATE citas
		 SET estado = 'cancelada',
		     cancelada_en = COALESCE(cancelada_en, NOW()),
		     motivo_cancelacion = COALESCE(motivo_cancelacion, $1),
		     cancelada_por = COALESCE(cancelada_por, $2),
		     updated_at = NOW()
		 WHERE id_cita = $3`,
		req.Motivo, userID, id)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al cancelar la cita",
		})
	}

	if cita.Estado != models.CitaCancelada {
		middleware.RegistrarEvento(strconv.Itoa(userID), rol, "cita_cancelada", "citas",
			strconv.Itoa(id),
			fiber.Map{"estado": cita.Estado},
			fiber.Map{"estado": models.CitaCancelada, "motivo": req.Motivo})
		Cache.Delete(c.Context(), claveCacheDisponibilidad(cita.Fecha))
	}

	return c.JSON(fiber.Map{
		"mensaje": "Cita cancelada",
		"estado":  models.CitaCancelada,
	})
}

// CambiarEstadoCita actualiza el estado de una cita (staff, admin o dentista)
func CambiarEstadoCita(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "ID inválido",
		})
	}

	var req models.EstadoCitaRequest
	if err := c.BodyParser(&req); err != nil || req.Estado == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Estado es requerido",
		})
	}
	if !models.EstadosCitaValidos[req.Estado] {
		return c.Status(400).JSON(fiber.Map{
			"error": "Estado de cita inválido",
		})
	}
	if req.Estado == models.CitaCancelada {
		return c.Status(400).JSON(fiber.Map{
			"error": "Usa el endpoint de cancelación para cancelar citas",
		})
	}

	cita, err := obtenerCita(context.Background(), id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Cita no encontrada",
		})
	}

	// Un dentista solo puede cambiar el estado de sus propias citas
	userID := c.Locals("user_id").(int)
	rol := c.Locals("user_rol").(string)
	if !puedeVerCita(cita, userID, rol) {
		return c.Status(403).JSON(fiber.Map{
			"error": "No tienes permisos para modificar esta cita",
		})
	}

	tag, err := database.GetDB().Exec(context.Background(),
		"UPDATE citas SET estado = $1, updated_at = NOW() WHERE id_cita = $2",
		req.Estado, id)
	if err != nil || tag.RowsAffected() == 0 {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al actualizar el estado",
		})
	}

	middleware.RegistrarEvento(strconv.Itoa(userID), rol, "cita_estado", "citas",
		strconv.Itoa(id),
		fiber.Map{"estado": cita.Estado},
		fiber.Map{"estado": req.Estado})

	// Una inasistencia libera el horario
	if req.Estado == models.CitaNoAsistio {
		Cache.Delete(c.Context(), claveCacheDisponibilidad(cita.Fecha))
	}

	return c.JSON(fiber.Map{
		"mensaje": "Estado actualizado exitosamente",
		"estado":  req.Estado,
	})
}

// ObtenerCitasProximas lee la vista de citas próximas. Los pacientes solo
// ven las suyas.
func ObtenerCitasProximas(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)
	rol := c.Locals("user_rol").(string)

	query := `SELECT id_cita, TO_CHAR(fecha, 'YYYY-MM-DD'), hora, tipo, estado,
	                 id_paciente, paciente, id_dentista, dentista
	          FROM vw_citas_proximas`
	var args []interface{}

	switch rol {
	case models.RolPaciente:
		args = append(args, userID)
		query += " WHERE id_paciente = $1"
	case models.RolDentista:
		args = append(args, userID)
		query += " WHERE id_dentista = $1"
	}

	rows, err := database.GetDB().Query(context.Background(), query, args...)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al obtener citas próximas",
		})
	}
	defer rows.Close()

	var citas []models.CitaProxima
	for rows.Next() {
		var cita models.CitaProxima
		err := rows.Scan(&cita.ID, &cita.Fecha, &cita.Hora, &cita.Tipo, &cita.Estado,
			&cita.IDPaciente, &cita.Paciente, &cita.IDDentista, &cita.Dentista)
		if err != nil {
			continue
		}
		citas = append(citas, cita)
	}

	return c.JSON(fiber.Map{
		"citas": citas,
		"total": len(citas),
	})
}
