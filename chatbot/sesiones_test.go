package chatbot

import (
	"testing"
	"time"
)

func TestCrearYObtenerSesion(t *testing.T) {
	gestor := NuevoGestorSesiones(30*time.Minute, 10)
	defer gestor.Cerrar()

	sesion := gestor.Crear("42")
	if sesion.ID == "" {
		t.Fatal("la sesión debe tener un id")
	}
	if sesion.UserID != "42" {
		t.Fatalf("user id esperado 42, se obtuvo %q", sesion.UserID)
	}

	recuperada, err := gestor.Obtener(sesion.ID)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if recuperada.ID != sesion.ID {
		t.Fatalf("se recuperó otra sesión: %s", recuperada.ID)
	}
}

func TestObtenerSesionInexistente(t *testing.T) {
	gestor := NuevoGestorSesiones(30*time.Minute, 10)
	defer gestor.Cerrar()

	if _, err := gestor.Obtener("no-existe"); err != ErrSesionNoEncontrada {
		t.Fatalf("se esperaba ErrSesionNoEncontrada, se obtuvo %v", err)
	}
}

func TestSesionExpirada(t *testing.T) {
	gestor := NuevoGestorSesiones(time.Millisecond, 10)
	defer gestor.Cerrar()

	sesion := gestor.Crear("")
	time.Sleep(5 * time.Millisecond)

	if _, err := gestor.Obtener(sesion.ID); err != ErrSesionNoEncontrada {
		t.Fatalf("la sesión expirada debe tratarse como inexistente, se obtuvo %v", err)
	}
}

func TestObtenerOCrearReusaSesionVigente(t *testing.T) {
	gestor := NuevoGestorSesiones(30*time.Minute, 10)
	defer gestor.Cerrar()

	original := gestor.Crear("7")
	reusada := gestor.ObtenerOCrear(original.ID, "7")
	if reusada.ID != original.ID {
		t.Fatal("debe reusarse la sesión vigente")
	}

	nueva := gestor.ObtenerOCrear("id-desconocido", "7")
	if nueva.ID == original.ID {
		t.Fatal("un id desconocido debe producir una sesión nueva")
	}
}

func TestRegistrarAcotaHistorial(t *testing.T) {
	gestor := NuevoGestorSesiones(30*time.Minute, 3)
	defer gestor.Cerrar()

	sesion := gestor.Crear("")
	for i := 0; i < 5; i++ {
		if _, err := gestor.Registrar(sesion.ID, "hola", "respuesta"); err != nil {
			t.Fatalf("error inesperado: %v", err)
		}
	}

	recuperada, err := gestor.Obtener(sesion.ID)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if len(recuperada.Historial) != 3 {
		t.Fatalf("historial esperado de 3 intercambios, se obtuvo %d", len(recuperada.Historial))
	}
	if recuperada.TotalMensajes != 10 {
		t.Fatalf("total de mensajes esperado 10, se obtuvo %d", recuperada.TotalMensajes)
	}
}

func TestLimpiarYEliminarSesion(t *testing.T) {
	gestor := NuevoGestorSesiones(30*time.Minute, 10)
	defer gestor.Cerrar()

	sesion := gestor.Crear("")
	gestor.Registrar(sesion.ID, "hola", "respuesta")

	if err := gestor.Limpiar(sesion.ID); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	recuperada, _ := gestor.Obtener(sesion.ID)
	if len(recuperada.Historial) != 0 || recuperada.TotalMensajes != 0 {
		t.Fatal("limpiar debe vaciar historial y contador")
	}

	if err := gestor.Eliminar(sesion.ID); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if _, err := gestor.Obtener(sesion.ID); err != ErrSesionNoEncontrada {
		t.Fatal("la sesión eliminada no debe existir")
	}
	if gestor.Activas() != 0 {
		t.Fatalf("no deben quedar sesiones activas, hay %d", gestor.Activas())
	}
}
