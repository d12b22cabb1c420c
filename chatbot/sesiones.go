package chatbot

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSesionNoEncontrada = errors.New("sesión no encontrada")

// Intercambio es un par mensaje de usuario / respuesta del asistente
type Intercambio struct {
	Usuario   string    `json:"usuario"`
	Asistente string    `json:"asistente"`
	Timestamp time.Time `json:"timestamp"`
}

// Sesion guarda el estado de una conversación en memoria
type Sesion struct {
	ID            string        `json:"session_id"`
	UserID        string        `json:"user_id,omitempty"`
	Historial     []Intercambio `json:"historial"`
	TotalMensajes int           `json:"message_count"`
	CreadaEn      time.Time     `json:"created_at"`
	UltimoUso     time.Time     `json:"last_activity"`
}

// GestorSesiones administra las sesiones activas. Las sesiones sin
// actividad durante el timeout configurado se eliminan en segundo plano.
type GestorSesiones struct {
	mu           sync.Mutex
	sesiones     map[string]*Sesion
	timeout      time.Duration
	maxHistorial int
	detener      chan struct{}
}

func NuevoGestorSesiones(timeout time.Duration, maxHistorial int) *GestorSesiones {
	g := &GestorSesiones{
		sesiones:     make(map[string]*Sesion),
		timeout:      timeout,
		maxHistorial: maxHistorial,
		detener:      make(chan struct{}),
	}
	go g.limpiarExpiradas()
	return g
}

// Crear inicia una sesión nueva
func (g *GestorSesiones) Crear(userID string) *Sesion {
	g.mu.Lock()
	defer g.mu.Unlock()

	ahora := time.Now()
	sesion := &Sesion{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreadaEn:  ahora,
		UltimoUso: ahora,
	}
	g.sesiones[sesion.ID] = sesion
	return sesion
}

// Obtener devuelve la sesión si existe y no ha expirado
func (g *GestorSesiones) Obtener(id string) (*Sesion, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sesion, existe := g.sesiones[id]
	if !existe {
		return nil, ErrSesionNoEncontrada
	}
	if time.Since(sesion.UltimoUso) > g.timeout {
		delete(g.sesiones, id)
		return nil, ErrSesionNoEncontrada
	}
	return sesion, nil
}

// ObtenerOCrear busca la sesión; si no existe o expiró crea una nueva
func (g *GestorSesiones) ObtenerOCrear(id, userID string) *Sesion {
	if id != "" {
		if sesion, err := g.Obtener(id); err == nil {
			return sesion
		}
	}
	return g.Crear(userID)
}

// Registrar agrega un intercambio al historial de la sesión, acotado al
// máximo configurado
func (g *GestorSesiones) Registrar(id, mensaje, respuesta string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sesion, existe := g.sesiones[id]
	if !existe {
		return 0, ErrSesionNoEncontrada
	}

	sesion.Historial = append(sesion.Historial, Intercambio{
		Usuario:   mensaje,
		Asistente: respuesta,
		Timestamp: time.Now(),
	})
	if len(sesion.Historial) > g.maxHistorial {
		sesion.Historial = sesion.Historial[len(sesion.Historial)-g.maxHistorial:]
	}
	sesion.TotalMensajes += 2
	sesion.UltimoUso = time.Now()
	return sesion.TotalMensajes, nil
}

// Limpiar vacía el historial de la sesión sin eliminarla
func (g *GestorSesiones) Limpiar(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	sesion, existe := g.sesiones[id]
	if !existe {
		return ErrSesionNoEncontrada
	}
	sesion.Historial = nil
	sesion.TotalMensajes = 0
	sesion.UltimoUso = time.Now()
	return nil
}

// Eliminar termina la sesión
func (g *GestorSesiones) Eliminar(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, existe := g.sesiones[id]; !existe {
		return ErrSesionNoEncontrada
	}
	delete(g.sesiones, id)
	return nil
}

// Activas devuelve el número de sesiones vigentes
func (g *GestorSesiones) Activas() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sesiones)
}

// Cerrar detiene la limpieza en segundo plano
func (g *GestorSesiones) Cerrar() {
	close(g.detener)
}

func (g *GestorSesiones) limpiarExpiradas() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-g.detener:
			return
		case <-ticker.C:
			g.mu.Lock()
			for id, sesion := range g.sesiones {
				if time.Since(sesion.UltimoUso) > g.timeout {
					delete(g.sesiones, id)
				}
			}
			g.mu.Unlock()
		}
	}
}
