package chatbot

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// App agrupa las dependencias del servicio conversacional
type App struct {
	cfg       Config
	sesiones  *GestorSesiones
	proveedor Proveedor
}

// MensajeRequest es la petición de chat que envía el gateway
type MensajeRequest struct {
	Message   string            `json:"message"`
	SessionID string            `json:"session_id,omitempty"`
	UserID    string            `json:"user_id,omitempty"`
	Context   map[string]string `json:"context,omitempty"`
}

// MensajeResponse es la respuesta del servicio
type MensajeResponse struct {
	Response     string    `json:"response"`
	SessionID    string    `json:"session_id"`
	Timestamp    time.Time `json:"timestamp"`
	MessageCount int       `json:"message_count"`
}

// NuevaApp arma la aplicación Fiber del servicio con sus rutas
func NuevaApp(cfg Config) (*fiber.App, *App, error) {
	proveedor, err := NuevoProveedor(cfg)
	if err != nil {
		return nil, nil, err
	}

	servicio := &App{
		cfg:       cfg,
		sesiones:  NuevoGestorSesiones(cfg.TimeoutSesion, cfg.MaxHistorial),
		proveedor: proveedor,
	}

	app := fiber.New(fiber.Config{
		AppName: cfg.NombreAsistente,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/", servicio.raiz)
	app.Get("/health", servicio.salud)

	api := app.Group("/api")
	api.Post("/chat", servicio.chat)
	api.Post("/sessions", servicio.crearSesion)
	api.Get("/sessions/:id", servicio.obtenerSesion)
	api.Delete("/sessions/:id", servicio.eliminarSesion)
	api.Post("/sessions/:id/clear", servicio.limpiarSesion)

	return app, servicio, nil
}

func (a *App) raiz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": a.cfg.NombreAsistente,
		"status":  "running",
	})
}

func (a *App) salud(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "ok",
		"provider":        a.proveedor.Nombre(),
		"active_sessions": a.sesiones.Activas(),
	})
}

// chat procesa un mensaje: resuelve la sesión, consulta al proveedor y
// registra el intercambio
func (a *App) chat(c *fiber.Ctx) error {
	var req MensajeRequest
	if err := c.BodyParser(&req); err != nil || req.Message == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "El campo message es requerido",
		})
	}

	sesion := a.sesiones.ObtenerOCrear(req.SessionID, req.UserID)

	ctx, cancelar := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancelar()

	respuesta, err := a.proveedor.Responder(ctx, req.Message, sesion.Historial)
	if err != nil {
		return c.Status(502).JSON(fiber.Map{
			"error": "El proveedor de lenguaje no respondió",
		})
	}

	total, err := a.sesiones.Registrar(sesion.ID, req.Message, respuesta)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al registrar el intercambio",
		})
	}

	return c.JSON(MensajeResponse{
		Response:     respuesta,
		SessionID:    sesion.ID,
		Timestamp:    time.Now(),
		MessageCount: total,
	})
}

func (a *App) crearSesion(c *fiber.Ctx) error {
	var req struct {
		UserID string `json:"user_id,omitempty"`
	}
	_ = c.BodyParser(&req)

	sesion := a.sesiones.Crear(req.UserID)
	return c.Status(201).JSON(sesion)
}

func (a *App) obtenerSesion(c *fiber.Ctx) error {
	sesion, err := a.sesiones.Obtener(c.Params("id"))
	if errors.Is(err, ErrSesionNoEncontrada) {
		return c.Status(404).JSON(fiber.Map{
			"error": "Sesión no encontrada",
		})
	}
	return c.JSON(sesion)
}

func (a *App) eliminarSesion(c *fiber.Ctx) error {
	if err := a.sesiones.Eliminar(c.Params("id")); err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Sesión no encontrada",
		})
	}
	return c.JSON(fiber.Map{
		"mensaje": "Sesión eliminada",
	})
}

func (a *App) limpiarSesion(c *fiber.Ctx) error {
	if err := a.sesiones.Limpiar(c.Params("id")); err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Sesión no encontrada",
		})
	}
	return c.JSON(fiber.Map{
		"mensaje": "Historial limpiado",
	})
}
