// Package agenda calcula los horarios de media hora que ofrece el
// consultorio y filtra los que ya están ocupados por una cita.
package agenda

import (
	"errors"
	"fmt"
	"time"
)

// MinutosIntervalo es la duración fija de cada horario de cita
const MinutosIntervalo = 30

var (
	ErrFechaInvalida = errors.New("formato de fecha inválido")
	ErrHoraInvalida  = errors.New("formato de hora inválido")
)

type rangoHorario struct {
	inicio string
	fin    string
}

// rangosDelDia devuelve el horario de atención según el día de la semana:
// lunes a viernes 08:00-18:00, sábado corto 09:00-14:00, domingo cerrado.
func rangosDelDia(dia time.Weekday) []rangoHorario {
	switch dia {
	case time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday:
		return []rangoHorario{{inicio: "08:00", fin: "18:00"}}
	case time.Saturday:
		return []rangoHorario{{inicio: "09:00", fin: "14:00"}}
	default:
		return nil
	}
}

// ParseFecha valida una fecha en formato YYYY-MM-DD
func ParseFecha(fecha string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", fecha)
	if err != nil {
		return time.Time{}, ErrFechaInvalida
	}
	return t, nil
}

// minutosDesdeMedianoche convierte "HH:MM" a minutos
func minutosDesdeMedianoche(hora string) (int, error) {
	t, err := time.Parse("15:04", hora)
	if err != nil {
		return 0, ErrHoraInvalida
	}
	return t.Hour()*60 + t.Minute(), nil
}

func minutosAHora(minutos int) string {
	return fmt.Sprintf("%02d:%02d", minutos/60, minutos%60)
}

// GenerarHorarios enumera los horarios del día indicado, con el fin del
// rango exclusivo (el último horario de un día entre semana es 17:30).
func GenerarHorarios(fecha string) ([]string, error) {
	dia, err := ParseFecha(fecha)
	if err != nil {
		return nil, err
	}

	horarios := make([]string, 0)
	for _, r := range rangosDelDia(dia.Weekday()) {
		inicio, err := minutosDesdeMedianoche(r.inicio)
		if err != nil {
			return nil, err
		}
		fin, err := minutosDesdeMedianoche(r.fin)
		if err != nil {
			return nil, err
		}
		for cursor := inicio; cursor+MinutosIntervalo <= fin; cursor += MinutosIntervalo {
			horarios = append(horarios, minutosAHora(cursor))
		}
	}
	return horarios, nil
}

// FiltrarReservados elimina los horarios ya ocupados
func FiltrarReservados(horarios []string, reservados map[string]bool) []string {
	libres := make([]string, 0, len(horarios))
	for _, h := range horarios {
		if !reservados[h] {
			libres = append(libres, h)
		}
	}
	return libres
}

// EsHorarioValido indica si la hora corresponde a un horario ofrecido en esa fecha
func EsHorarioValido(fecha, hora string) (bool, error) {
	horarios, err := GenerarHorarios(fecha)
	if err != nil {
		return false, err
	}
	if _, err := minutosDesdeMedianoche(hora); err != nil {
		return false, err
	}
	for _, h := range horarios {
		if h == hora {
			return true, nil
		}
	}
	return false, nil
}

// EsFechaPasada indica si la fecha es anterior al día de hoy
func EsFechaPasada(fecha string, ahora time.Time) (bool, error) {
	dia, err := ParseFecha(fecha)
	if err != nil {
		return false, err
	}
	hoy := time.Date(ahora.Year(), ahora.Month(), ahora.Day(), 0, 0, 0, 0, time.UTC)
	return dia.Before(hoy), nil
}
