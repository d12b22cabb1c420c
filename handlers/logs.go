package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/dental-backend/database"
	"github.com/lizet96/dental-backend/models"
)

// ObtenerLogs obtiene registros de auditoría con filtros opcionales
func ObtenerLogs(c *fiber.Ctx) error {
	// Solo admin puede consultar la auditoría
	rol := c.Locals("user_rol").(string)
	if rol != models.RolAdmin {
		return c.Status(403).JSON(StandardResponse{
			StatusCode: 403,
			Body: BodyResponse{
				IntCode: "F70",
				Data:    []interface{}{fiber.Map{"error": "Solo administradores pueden ver la auditoría"}},
			},
		})
	}

	// Parámetros de paginación
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	// Filtros opcionales
	actor := c.Query("actor")
	recurso := c.Query("recurso")
	accion := c.Query("accion")
	statusCode := c.Query("status_code")
	ip := c.Query("ip")
	fechaInicio := c.Query("fecha_inicio")
	fechaFin := c.Query("fecha_fin")

	// Construir query dinámicamente
	var conditions []string
	var args []interface{}
	argIndex := 1

	if actor != "" {
		conditions = append(conditions, fmt.Sprintf("actor = $%d", argIndex))
		args = append(args, actor)
		argIndex++
	}

	if recurso != "" {
		conditions = append(conditions, fmt.Sprintf("recurso = $%d", argIndex))
		args = append(args, recurso)
		argIndex++
	}

	if accion != "" {
		conditions = append(conditions, fmt.Sprintf("accion ILIKE $%d", argIndex))
		args = append(args, "%"+accion+"%")
		argIndex++
	}

	if statusCode != "" {
		if code, err := strconv.Atoi(statusCode); err == nil {
			conditions = append(conditions, fmt.Sprintf("status_code = $%d", argIndex))
			args = append(args, code)
			argIndex++
		}
	}

	if ip != "" {
		conditions = append(conditions, fmt.Sprintf("ip = $%d", argIndex))
		args = append(args, ip)
		argIndex++
	}

	if fechaInicio != "" {
		if fecha, err := time.Parse("2006-01-02", fechaInicio); err == nil {
			conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIndex))
			args = append(args, fecha)
			argIndex++
		}
	}

	if fechaFin != "" {
		if fecha, err := time.Parse("2006-01-02", fechaFin); err == nil {
			// Agregar 24 horas para incluir todo el día
			fecha = fecha.Add(24 * time.Hour)
			conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIndex))
			args = append(args, fecha)
			argIndex++
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM logs_auditoria %s", whereClause)
	var total int
	err := database.GetDB().QueryRow(context.Background(), countQuery, args...).Scan(&total)
	if err != nil {
		return c.Status(500).JSON(StandardResponse{
			StatusCode: 500,
			Body: BodyResponse{
				IntCode: "F70",
				Data:    []interface{}{fiber.Map{"error": "Error al contar registros"}},
			},
		})
	}

	query := fmt.Sprintf(`
		SELECT id_log, actor, rol_actor, accion, recurso, id_recurso,
		       datos_antes, datos_despues, ip, status_code, created_at
		FROM logs_auditoria %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)

	args = append(args, limit, offset)

	rows, err := database.GetDB().Query(context.Background(), query, args...)
	if err != nil {
		return c.Status(500).JSON(StandardResponse{
			StatusCode: 500,
			Body: BodyResponse{
				IntCode: "F70",
				Data:    []interface{}{fiber.Map{"error": "Error al obtener registros"}},
			},
		})
	}
	defer rows.Close()

	var logs []models.LogAuditoria
	for rows.Next() {
		var entrada models.LogAuditoria
		err := rows.Scan(
			&entrada.ID, &entrada.Actor, &entrada.RolActor, &entrada.Accion,
			&entrada.Recurso, &entrada.IDRecurso, &entrada.DatosAntes,
			&entrada.DatosDespues, &entrada.IP, &entrada.StatusCode, &entrada.CreatedAt,
		)
		if err != nil {
			continue
		}
		logs = append(logs, entrada)
	}

	return c.Status(200).JSON(StandardResponse{
		StatusCode: 200,
		Body: BodyResponse{
			IntCode: "S70",
			Data: []interface{}{fiber.Map{
				"logs":  logs,
				"total": total,
				"page":  page,
				"limit": limit,
			}},
		},
	})
}
