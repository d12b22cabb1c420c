package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/lizet96/dental-backend/chatbot"
)

func main() {
	// Cargar variables de entorno
	if err := godotenv.Load(); err != nil {
		log.Println("Advertencia: No se pudo cargar el archivo .env")
	}

	cfg := chatbot.CargarConfig()
	app, _, err := chatbot.NuevaApp(cfg)
	if err != nil {
		log.Fatalf("Error inicializando el servicio conversacional: %v", err)
	}

	log.Printf("Servicio conversacional (%s) iniciado en puerto %s, proveedor %s",
		cfg.NombreAsistente, cfg.Puerto, cfg.Proveedor)
	log.Fatal(app.Listen(":" + cfg.Puerto))
}
