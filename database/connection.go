package database

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB es la instancia global del pool de conexiones
var DB *pgxpool.Pool

// ConnectDB establece la conexión con la base de datos usando un pool
func ConnectDB() {
	config, err := pgxpool.ParseConfig(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Error al parsear la URL de la base de datos: %v", err)
	}
	config.MaxConns = 20 // Tamaño fijo del pool: una conexión por petición en curso
	config.MinConns = 4
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = time.Minute * 30
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	DB, err = pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatalf("Error al crear el pool de conexiones: %v", err)
	}

	// Probar que la base de datos responde antes de continuar
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var version string
	if err := DB.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		log.Fatalf("Error al probar la conexión: %v", err)
	}
	log.Println("✅ Conectado exitosamente a la base de datos:", version)
}

// AplicarEsquema ejecuta el archivo de esquema si existe. Todas las
// sentencias usan IF NOT EXISTS / OR REPLACE, así que es idempotente.
func AplicarEsquema(ruta string) {
	esquema, err := os.ReadFile(ruta)
	if err != nil {
		log.Printf("Esquema no encontrado, se omite: %v", err)
		return
	}
	if _, err := DB.Exec(context.Background(), string(esquema)); err != nil {
		log.Printf("Advertencia al aplicar esquema: %v", err)
		return
	}
	log.Println("Esquema de base de datos aplicado")
}

// CloseDB cierra el pool de conexiones
func CloseDB() {
	if DB != nil {
		DB.Close()
		log.Println("Pool de conexiones cerrado")
	}
}

// GetDB retorna la instancia del pool de conexiones
func GetDB() *pgxpool.Pool {
	return DB
}
