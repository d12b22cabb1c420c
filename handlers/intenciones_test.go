package handlers

import "testing"

func TestClasificarIntencion(t *testing.T) {
	casos := []struct {
		mensaje  string
		esperada string
	}{
		{"Quiero agendar una cita para la próxima semana", IntencionAgendarCita},
		{"¿Tienen disponibilidad el viernes?", IntencionAgendarCita},
		{"¿Hacen blanqueamiento?", IntencionServicios},
		{"Me interesa un tratamiento de ortodoncia", IntencionServicios},
		{"¿Cuál es su horario?", IntencionHorarios},
		{"¿Abren los sábados?", IntencionHorarios},
		{"¿Cuánto cuesta una extracción?", IntencionServicios},
		{"¿Qué precio tiene la consulta inicial?", IntencionPrecios},
		{"Tengo mucho dolor en una muela", IntencionUrgencia},
		{"Es una emergencia, me sangra la encía", IntencionUrgencia},
		{"Gracias por la información", IntencionGeneral},
		{"", IntencionGeneral},
	}

	for _, caso := range casos {
		if obtenida := ClasificarIntencion(caso.mensaje); obtenida != caso.esperada {
			t.Errorf("%q: intención esperada %s, se obtuvo %s",
				caso.mensaje, caso.esperada, obtenida)
		}
	}
}

func TestClasificarIntencionOrdenFijo(t *testing.T) {
	// Cuando varias categorías coinciden gana la primera del orden fijo:
	// agendar antes que servicios, servicios antes que urgencia
	if obtenida := ClasificarIntencion("quiero una cita para limpieza"); obtenida != IntencionAgendarCita {
		t.Fatalf("se esperaba %s, se obtuvo %s", IntencionAgendarCita, obtenida)
	}
	if obtenida := ClasificarIntencion("me duele después de la extracción"); obtenida != IntencionServicios {
		t.Fatalf("se esperaba %s, se obtuvo %s", IntencionServicios, obtenida)
	}
}

func TestClasificarIntencionIgnoraMayusculas(t *testing.T) {
	if obtenida := ClasificarIntencion("QUIERO AGENDAR UNA CITA"); obtenida != IntencionAgendarCita {
		t.Fatalf("la clasificación debe ignorar mayúsculas, se obtuvo %s", obtenida)
	}
}
