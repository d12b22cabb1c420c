package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lizet96/dental-backend/database"
	"github.com/lizet96/dental-backend/models"
)

// clienteChatbot habla con el servicio conversacional. Sin reintentos: si
// el servicio no responde en 10 segundos la petición falla y la sesión
// queda marcada en error.
var clienteChatbot = &http.Client{
	Timeout: 10 * time.Second,
}

func urlServicioChatbot() string {
	if url := os.Getenv("CHATBOT_SERVICE_URL"); url != "" {
		return url
	}
	return "http://localhost:8000"
}

// asegurarSesion devuelve la sesión indicada si existe, está activa y
// pertenece al usuario; en cualquier otro caso crea una nueva
func asegurarSesion(ctx context.Context, sessionID string, userID int) (models.SesionChat, error) {
	var sesion models.SesionChat

	// Solo se reusan sesiones activas del propio usuario; una sesión ajena,
	// finalizada o en error obliga a iniciar una nueva
	if sessionID != "" {
		err := database.GetDB().QueryRow(ctx,
			`SELECT id_sesion, id_usuario, total_mensajes, estado, intencion_principal,
			        genero_cita, created_at, updated_at
			 FROM sesiones_chat
			 WHERE id_sesion = $1 AND id_usuario = $2 AND estado = 'activa'`,
			sessionID, userID).Scan(
			&sesion.ID, &sesion.IDUsuario, &sesion.TotalMensajes, &sesion.Estado,
			&sesion.IntencionPrincipal, &sesion.GeneroCita, &sesion.CreatedAt, &sesion.UpdatedAt)
		if err == nil {
			return sesion, nil
		}
	}

	nuevoID := uuid.New().String()
	err := database.GetDB().QueryRow(ctx,
		`INSERT INTO sesiones_chat (id_sesion, id_usuario)
		 VALUES ($1, $2)
		 RETURNING id_sesion, id_usuario, total_mensajes, estado, intencion_principal,
		           genero_cita, created_at, updated_at`,
		nuevoID, userID).Scan(
		&sesion.ID, &sesion.IDUsuario, &sesion.TotalMensajes, &sesion.Estado,
		&sesion.IntencionPrincipal, &sesion.GeneroCita, &sesion.CreatedAt, &sesion.UpdatedAt)
	return sesion, err
}

// guardarMensaje inserta un mensaje con la siguiente secuencia de la sesión.
// Dos mensajes simultáneos de la misma sesión pueden calcular la misma
// secuencia y chocar con UNIQUE (id_sesion, secuencia); se reintenta.
func guardarMensaje(ctx context.Context, idSesion, remitente, contenido string) error {
	var err error
	for intento := 0; intento < 3; intento++ {
		_, err = database.GetDB().Exec(ctx,
			`INSERT INTO mensajes_chat (id_sesion, secuencia, remitente, contenido)
			 SELECT $1, COALESCE(MAX(secuencia), 0) + 1, $2, $3
			 FROM mensajes_chat WHERE id_sesion = $1`,
			idSesion, remitente, contenido)
		if !esViolacionUnicidad(err) {
			return err
		}
	}
	return err
}

// marcarSesionError deja la sesión en estado de error tras una falla del
// servicio conversacional
func marcarSesionError(idSesion string) {
	_, err := database.GetDB().Exec(context.Background(),
		"UPDATE sesiones_chat SET estado = 'error', updated_at = NOW() WHERE id_sesion = $1",
		idSesion)
	if err != nil {
		log.Printf("Error marcando sesión %s en error: %v", idSesion, err)
	}
}

// EnviarMensaje recibe un mensaje del usuario, lo persiste, lo reenvía al
// servicio conversacional y persiste la respuesta del bot
func EnviarMensaje(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Datos inválidos",
		})
	}
	if len(req.Message) == 0 || len(req.Message) > 2000 {
		return c.Status(400).JSON(fiber.Map{
			"error": "El mensaje debe tener entre 1 y 2000 caracteres",
		})
	}

	userID := c.Locals("user_id").(int)
	ctx := context.Background()

	sesion, err := asegurarSesion(ctx, req.SessionID, userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al crear la sesión de chat",
		})
	}

	intencion := ClasificarIntencion(req.Message)

	if err := guardarMensaje(ctx, sesion.ID, models.RemitenteUsuario, req.Message); err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al guardar el mensaje",
		})
	}

	// La intención principal de la sesión se fija con la primera
	// coincidencia distinta de general y ya no cambia
	if intencion != IntencionGeneral {
		_, err := database.GetDB().Exec(ctx,
			`UPDATE sesiones_chat SET intencion_principal = COALESCE(intencion_principal, $1)
			 WHERE id_sesion = $2`, intencion, sesion.ID)
		if err != nil {
			log.Printf("Error guardando intención de la sesión %s: %v", sesion.ID, err)
		}
	}

	respuestaBot, err := reenviarAlChatbot(req, sesion.ID, userID)
	if err != nil {
		marcarSesionError(sesion.ID)
		return c.Status(502).JSON(fiber.Map{
			"error": "El asistente no está disponible en este momento, intenta más tarde",
		})
	}

	if err := guardarMensaje(ctx, sesion.ID, models.RemitenteBot, respuestaBot.Response); err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al guardar la respuesta",
		})
	}

	var totalMensajes int
	err = database.GetDB().QueryRow(ctx,
		`UPDATE sesiones_chat
		 SET total_mensajes = total_mensajes + 2, updated_at = NOW()
		 WHERE id_sesion = $1
		 RETURNING total_mensajes`, sesion.ID).Scan(&totalMensajes)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al actualizar la sesión",
		})
	}

	return c.JSON(models.ChatResponse{
		Response:     respuestaBot.Response,
		SessionID:    sesion.ID,
		Timestamp:    time.Now(),
		MessageCount: totalMensajes,
		Intencion:    intencion,
	})
}

// reenviarAlChatbot envía el mensaje al servicio conversacional y decodifica
// su respuesta
func reenviarAlChatbot(req models.ChatRequest, idSesion string, userID int) (*models.ChatbotResponse, error) {
	cuerpo, err := json.Marshal(models.ChatbotRequest{
		Message:   req.Message,
		SessionID: idSesion,
		UserID:    strconv.Itoa(userID),
		Context:   req.Context,
	})
	if err != nil {
		return nil, err
	}

	resp, err := clienteChatbot.Post(urlServicioChatbot()+"/api/chat",
		"application/json", bytes.NewReader(cuerpo))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fiber.NewError(resp.StatusCode, "respuesta inesperada del servicio conversacional")
	}

	var respuesta models.ChatbotResponse
	if err := json.NewDecoder(resp.Body).Decode(&respuesta); err != nil {
		return nil, err
	}
	return &respuesta, nil
}

// puedeVerSesion: el dueño de la sesión, staff y admin
func puedeVerSesion(sesion models.SesionChat, userID int, rol string) bool {
	if rol == models.RolAdmin || rol == models.RolStaff {
		return true
	}
	return sesion.IDUsuario != nil && *sesion.IDUsuario == userID
}

// ObtenerSesion devuelve una sesión con sus mensajes en orden
func ObtenerSesion(c *fiber.Ctx) error {
	idSesion := c.Params("id")
	if _, err := uuid.Parse(idSesion); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "ID de sesión inválido",
		})
	}

	ctx := context.Background()
	var sesion models.SesionChat
	err := database.GetDB().QueryRow(ctx,
		`SELECT id_sesion, id_usuario, total_mensajes, estado, intencion_principal,
		        genero_cita, created_at, updated_at
		 FROM sesiones_chat WHERE id_sesion = $1`, idSesion).Scan(
		&sesion.ID, &sesion.IDUsuario, &sesion.TotalMensajes, &sesion.Estado,
		&sesion.IntencionPrincipal, &sesion.GeneroCita, &sesion.CreatedAt, &sesion.UpdatedAt)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Sesión no encontrada",
		})
	}

	if !puedeVerSesion(sesion, c.Locals("user_id").(int), c.Locals("user_rol").(string)) {
		return c.Status(403).JSON(fiber.Map{
			"error": "No tienes permisos para ver esta sesión",
		})
	}

	rows, err := database.GetDB().Query(ctx,
		`SELECT id_mensaje, id_sesion, secuencia, remitente, contenido, created_at
		 FROM mensajes_chat WHERE id_sesion = $1 ORDER BY secuencia`, idSesion)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al obtener los mensajes",
		})
	}
	defer rows.Close()

	var mensajes []models.MensajeChat
	for rows.Next() {
		var m models.MensajeChat
		err := rows.Scan(&m.ID, &m.IDSesion, &m.Secuencia, &m.Remitente, &m.Contenido, &m.CreatedAt)
		if err != nil {
			continue
		}
		mensajes = append(mensajes, m)
	}

	return c.JSON(models.SesionChatDetalle{
		Sesion:   sesion,
		Mensajes: mensajes,
	})
}

// FinalizarSesion cierra una sesión de chat; opcionalmente marca que la
// conversación terminó en una cita agendada
func FinalizarSesion(c *fiber.Ctx) error {
	idSesion := c.Params("id")
	if _, err := uuid.Parse(idSesion); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "ID de sesión inválido",
		})
	}

	var req models.FinalizarSesionRequest
	_ = c.BodyParser(&req)

	ctx := context.Background()
	var sesion models.SesionChat
	err := database.GetDB().QueryRow(ctx,
		`SELECT id_sesion, id_usuario, total_mensajes, estado, intencion_principal,
		        genero_cita, created_at, updated_at
		 FROM sesiones_chat WHERE id_sesion = $1`, idSesion).Scan(
		&sesion.ID, &sesion.IDUsuario, &sesion.TotalMensajes, &sesion.Estado,
		&sesion.IntencionPrincipal, &sesion.GeneroCita, &sesion.CreatedAt, &sesion.UpdatedAt)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Sesión no encontrada",
		})
	}

	if !puedeVerSesion(sesion, c.Locals("user_id").(int), c.Locals("user_rol").(string)) {
		return c.Status(403).JSON(fiber.Map{
			"error": "No tienes permisos para finalizar esta sesión",
		})
	}

	_, err = database.GetDB().Exec(ctx,
		`UPDATE sesiones_chat
		 SET estado = 'finalizada', genero_cita = genero_cita OR $1, updated_at = NOW()
		 WHERE id_sesion = $2`, req.GeneroCita, idSesion)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al finalizar la sesión",
		})
	}

	return c.JSON(fiber.Map{
		"mensaje": "Sesión finalizada",
		"estado":  models.SesionFinalizada,
	})
}
