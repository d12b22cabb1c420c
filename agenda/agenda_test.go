package agenda

import (
	"testing"
	"time"
)

func TestGenerarHorariosEntreSemana(t *testing.T) {
	// 2026-03-04 es miércoles
	horarios, err := GenerarHorarios("2026-03-04")
	if err != nil {
		t.Fatalf("GenerarHorarios error: %v", err)
	}
	if len(horarios) != 20 {
		t.Fatalf("se esperaban 20 horarios, hay %d", len(horarios))
	}
	if horarios[0] != "08:00" || horarios[len(horarios)-1] != "17:30" {
		t.Fatalf("horarios de frontera inesperados: %v", horarios)
	}
}

func TestGenerarHorariosSabadoCorto(t *testing.T) {
	// 2026-03-07 es sábado
	horarios, err := GenerarHorarios("2026-03-07")
	if err != nil {
		t.Fatalf("GenerarHorarios error: %v", err)
	}
	if len(horarios) != 10 {
		t.Fatalf("se esperaban 10 horarios, hay %d", len(horarios))
	}
	if horarios[0] != "09:00" || horarios[len(horarios)-1] != "13:30" {
		t.Fatalf("horarios de frontera inesperados: %v", horarios)
	}
}

func TestGenerarHorariosDomingoCerrado(t *testing.T) {
	// 2026-03-08 es domingo
	horarios, err := GenerarHorarios("2026-03-08")
	if err != nil {
		t.Fatalf("GenerarHorarios error: %v", err)
	}
	if len(horarios) != 0 {
		t.Fatalf("se esperaban 0 horarios, hay %d", len(horarios))
	}
}

func TestGenerarHorariosFechaInvalida(t *testing.T) {
	if _, err := GenerarHorarios("04-03-2026"); err != ErrFechaInvalida {
		t.Fatalf("se esperaba ErrFechaInvalida, hay %v", err)
	}
}

func TestFiltrarReservados(t *testing.T) {
	horarios := []string{"08:00", "08:30", "09:00", "09:30"}
	reservados := map[string]bool{"08:30": true, "09:30": true}
	libres := FiltrarReservados(horarios, reservados)
	if len(libres) != 2 {
		t.Fatalf("se esperaban 2 horarios libres, hay %d", len(libres))
	}
	if libres[0] != "08:00" || libres[1] != "09:00" {
		t.Fatalf("horarios libres inesperados: %v", libres)
	}
}

func TestFiltrarReservadosSoloExcluyeConflictos(t *testing.T) {
	horarios, err := GenerarHorarios("2026-03-04")
	if err != nil {
		t.Fatalf("GenerarHorarios error: %v", err)
	}
	reservados := map[string]bool{"10:00": true}
	libres := FiltrarReservados(horarios, reservados)
	if len(libres) != len(horarios)-1 {
		t.Fatalf("solo debía excluirse un horario: %d -> %d", len(horarios), len(libres))
	}
	for _, h := range libres {
		if h == "10:00" {
			t.Fatalf("el horario reservado sigue presente: %v", libres)
		}
	}
}

func TestEsHorarioValido(t *testing.T) {
	ok, err := EsHorarioValido("2026-03-04", "14:30")
	if err != nil {
		t.Fatalf("EsHorarioValido error: %v", err)
	}
	if !ok {
		t.Fatalf("14:30 debía ser un horario válido entre semana")
	}

	// 14:30 queda fuera del sábado corto
	ok, err = EsHorarioValido("2026-03-07", "14:30")
	if err != nil {
		t.Fatalf("EsHorarioValido error: %v", err)
	}
	if ok {
		t.Fatalf("14:30 no debía ser válido en sábado")
	}

	// las horas fuera de tick no son válidas
	ok, err = EsHorarioValido("2026-03-04", "14:15")
	if err != nil {
		t.Fatalf("EsHorarioValido error: %v", err)
	}
	if ok {
		t.Fatalf("14:15 no cae en un tick de media hora")
	}
}

func TestEsFechaPasada(t *testing.T) {
	ahora := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	pasada, err := EsFechaPasada("2026-03-03", ahora)
	if err != nil {
		t.Fatalf("EsFechaPasada error: %v", err)
	}
	if !pasada {
		t.Fatalf("2026-03-03 debía ser pasada")
	}

	pasada, err = EsFechaPasada("2026-03-04", ahora)
	if err != nil {
		t.Fatalf("EsFechaPasada error: %v", err)
	}
	if pasada {
		t.Fatalf("el día de hoy no es pasado")
	}
}
