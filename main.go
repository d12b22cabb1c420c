package main

import (
	"context"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/lizet96/dental-backend/cache"
	"github.com/lizet96/dental-backend/database"
	"github.com/lizet96/dental-backend/handlers"
	"github.com/lizet96/dental-backend/routes"
)

func main() {
	// Cargar variables de entorno
	if err := godotenv.Load(); err != nil {
		log.Println("Advertencia: No se pudo cargar el archivo .env")
	}
	// Conectar a la base de datos
	database.ConnectDB()
	defer database.CloseDB()
	log.Println("Conexión a la base de datos establecida")

	// Aplicar el esquema (idempotente)
	esquema := os.Getenv("SCHEMA_PATH")
	if esquema == "" {
		esquema = "db/schema.sql"
	}
	database.AplicarEsquema(esquema)

	// Caché de respuestas: Redis si está configurado, nulo si no
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisCache := cache.NewRedis(addr, os.Getenv("REDIS_PASSWORD"), 0)
		if err := redisCache.Ping(context.Background()); err != nil {
			log.Printf("Advertencia: Redis no disponible (%v), caché deshabilitada", err)
		} else {
			handlers.Cache = redisCache
			log.Println("Caché Redis conectada")
		}
	}

	// Crear instancia de Fiber con configuración
	app := fiber.New(fiber.Config{
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
		AppName: "Dental Office API v1.0.0",
	})

	// Configurar rutas
	routes.SetupRoutes(app)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{
			"error":   "Ruta no encontrada",
			"message": "La ruta solicitada no existe en este servidor",
			"path":    c.Path(),
			"method":  c.Method(),
		})
	})

	// Obtener puerto del entorno o usar 3000 por defecto
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	// Iniciar servidor
	log.Printf("Servidor Dental Office API iniciado en puerto %s", port)
	log.Printf("Estado del sistema: http://localhost:%s/health", port)
	log.Fatal(app.Listen(":" + port))
}
