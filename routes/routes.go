package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lizet96/dental-backend/handlers"
	"github.com/lizet96/dental-backend/middleware"
	"github.com/lizet96/dental-backend/models"
)

// SetupRoutes configura todas las rutas de la aplicación
func SetupRoutes(app *fiber.App) {
	// Middleware global
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.DefaultRateLimiter())
	app.Use(middleware.AuditoriaMiddleware())

	// Ruta de salud del sistema
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Dental Office API",
			"version": "1.0.0",
		})
	})

	// Grupo de API
	api := app.Group("/api/v1")

	// === RUTAS PÚBLICAS (Sin autenticación) ===
	auth := api.Group("/auth", middleware.AuthRateLimiter())
	auth.Post("/register", handlers.RegistrarUsuario)
	auth.Post("/login", handlers.Login)
	auth.Post("/token", handlers.EmitirToken)
	auth.Post("/verify", handlers.VerificarToken)

	// === RUTAS PROTEGIDAS (Requieren autenticación) ===
	protected := api.Group("/", middleware.JWTMiddleware())

	// --- RUTAS DE USUARIOS ---
	usuarios := protected.Group("/usuarios")
	usuarios.Get("/", middleware.RequireRol(models.RolAdmin, models.RolStaff), handlers.ObtenerUsuarios)
	usuarios.Get("/perfil", handlers.ObtenerPerfil)
	usuarios.Get("/:id", handlers.ObtenerUsuarioPorID)
	usuarios.Put("/:id", handlers.ActualizarUsuario)
	usuarios.Delete("/:id", middleware.RequireRol(models.RolAdmin), handlers.EliminarUsuario)

	// --- RUTAS DE CITAS ---
	// Las rutas fijas van antes que /:id para que Fiber no las capture
	citas := protected.Group("/citas")
	citas.Get("/disponibilidad", handlers.ObtenerDisponibilidad)
	citas.Get("/proximas", handlers.ObtenerCitasProximas)
	citas.Post("/", handlers.CrearCita)
	citas.Get("/", handlers.ObtenerCitas)
	citas.Get("/:id", handlers.ObtenerCitaPorID)
	citas.Put("/:id", handlers.ReprogramarCita)
	citas.Delete("/:id", handlers.CancelarCita)
	citas.Put("/:id/estado", middleware.RequireRol(models.RolAdmin, models.RolStaff, models.RolDentista), handlers.CambiarEstadoCita)

	// --- RUTAS DE CHAT ---
	chat := protected.Group("/chat", middleware.ChatRateLimiter(), middleware.BodySizeLimit(16*1024))
	chat.Post("/", handlers.EnviarMensaje)
	chat.Get("/sesiones/:id", handlers.ObtenerSesion)
	chat.Post("/sesiones/:id/finalizar", handlers.FinalizarSesion)

	// --- RUTAS DE REPORTES ---
	reportes := protected.Group("/reportes", middleware.RequireRol(models.RolAdmin, models.RolStaff))
	reportes.Get("/diario", handlers.ReporteDiario)
	reportes.Get("/resumen", handlers.ReporteResumen)

	// --- RUTAS DE AUDITORÍA ---
	logs := protected.Group("/logs")
	logs.Get("/", handlers.ObtenerLogs)
}
