package middleware

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/dental-backend/database"
	"github.com/lizet96/dental-backend/models"
)

// AuditoriaMiddleware registra toda petición que modifica estado
// (POST/PUT/DELETE) en la tabla logs_auditoria. La escritura es asíncrona
// para no sumar latencia a la respuesta.
func AuditoriaMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		metodo := c.Method()
		if metodo != "POST" && metodo != "PUT" && metodo != "DELETE" {
			return err
		}

		entrada := crearEntradaAuditoria(c)
		go guardarLogAuditoria(entrada)

		return err
	}
}

// crearEntradaAuditoria arma la fila de auditoría a partir de la petición
func crearEntradaAuditoria(c *fiber.Ctx) models.CrearLogRequest {
	var actor, rolActor *string
	if id := c.Locals("user_id"); id != nil {
		if userID, ok := id.(int); ok {
			s := strconv.Itoa(userID)
			actor = &s
		}
	}
	if rol := c.Locals("user_rol"); rol != nil {
		if rolStr, ok := rol.(string); ok {
			rolActor = &rolStr
		}
	}

	// IP real del cliente, considerando proxies
	ip := c.IP()
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	// El cuerpo filtrado queda como estado "después"; los handlers que
	// conocen el estado previo usan RegistrarEvento con ambos snapshots.
	var despues []byte
	if cuerpo := c.Body(); len(cuerpo) > 0 {
		despues = filtrarDatosSensibles(cuerpo)
	}

	status := c.Response().StatusCode()
	idRecurso := c.Params("id")
	var idPtr *string
	if idRecurso != "" {
		idPtr = &idRecurso
	}

	return models.CrearLogRequest{
		Actor:        actor,
		RolActor:     rolActor,
		Accion:       c.Method() + " " + c.Path(),
		Recurso:      recursoDesdeRuta(c.Path()),
		IDRecurso:    idPtr,
		DatosDespues: despues,
		IP:           &ip,
		StatusCode:   &status,
	}
}

// recursoDesdeRuta extrae el nombre del recurso del path, p. ej.
// /api/v1/citas/12/estado -> citas
func recursoDesdeRuta(path string) string {
	partes := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, p := range partes {
		if p == "v1" && i+1 < len(partes) {
			return partes[i+1]
		}
	}
	if len(partes) > 0 {
		return partes[len(partes)-1]
	}
	return path
}

// filtrarDatosSensibles enmascara campos sensibles y trunca cuerpos largos
func filtrarDatosSensibles(cuerpo []byte) []byte {
	camposSensibles := []string{"password", "token", "secret"}

	var datos map[string]interface{}
	if err := json.Unmarshal(cuerpo, &datos); err != nil {
		// Si no es JSON válido no se guarda: la columna es JSONB
		return nil
	}

	for _, campo := range camposSensibles {
		if _, existe := datos[campo]; existe {
			datos[campo] = "[FILTRADO]"
		}
	}

	filtrado, err := json.Marshal(datos)
	if err != nil || len(filtrado) > 2000 {
		return nil
	}
	return filtrado
}

// guardarLogAuditoria inserta la fila; la tabla es de solo inserción
func guardarLogAuditoria(entrada models.CrearLogRequest) {
	db := database.GetDB()
	if db == nil {
		log.Println("Auditoría: no hay conexión a la base de datos")
		return
	}

	_, err := db.Exec(context.Background(),
		`INSERT INTO logs_auditoria
		     (actor, rol_actor, accion, recurso, id_recurso, datos_antes, datos_despues, ip, status_code)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entrada.Actor,
		entrada.RolActor,
		entrada.Accion,
		entrada.Recurso,
		entrada.IDRecurso,
		nilSiVacio(entrada.DatosAntes),
		nilSiVacio(entrada.DatosDespues),
		entrada.IP,
		entrada.StatusCode,
	)
	if err != nil {
		log.Printf("Error guardando log de auditoría: %v", err)
	}
}

// RegistrarEvento registra un evento de auditoría con snapshots explícitos
// del estado antes y después del cambio. Lo usan los handlers que mutan
// recursos existentes (cancelación, cambio de estado, actualización).
func RegistrarEvento(actor, rolActor, accion, recurso, idRecurso string, antes, despues interface{}) {
	entrada := models.CrearLogRequest{
		Accion:  accion,
		Recurso: recurso,
	}
	if actor != "" {
		entrada.Actor = &actor
	}
	if rolActor != "" {
		entrada.RolActor = &rolActor
	}
	if idRecurso != "" {
		entrada.IDRecurso = &idRecurso
	}
	if antes != nil {
		if b, err := json.Marshal(antes); err == nil {
			entrada.DatosAntes = b
		}
	}
	if despues != nil {
		if b, err := json.Marshal(despues); err == nil {
			entrada.DatosDespues = b
		}
	}

	go guardarLogAuditoria(entrada)
}

func nilSiVacio(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
