package handlers

import (
	"regexp"
	"strings"
)

// Categorías de intención detectadas en los mensajes del chat
const (
	IntencionAgendarCita = "agendar_cita"
	IntencionServicios   = "servicios"
	IntencionHorarios    = "horarios"
	IntencionPrecios     = "precios"
	IntencionUrgencia    = "urgencia"
	IntencionGeneral     = "general"
)

// reglaIntencion asocia una categoría con sus patrones de detección
type reglaIntencion struct {
	categoria string
	patrones  []*regexp.Regexp
}

func compilar(expresiones ...string) []*regexp.Regexp {
	patrones := make([]*regexp.Regexp, 0, len(expresiones))
	for _, e := range expresiones {
		patrones = append(patrones, regexp.MustCompile(e))
	}
	return patrones
}

// Las reglas se evalúan en orden fijo; gana la primera que coincide
var reglasIntencion = []reglaIntencion{
	{
		categoria: IntencionAgendarCita,
		patrones: compilar(
			`\bcita\b`, `\bagendar\b`, `\bagenda\b`, `\breservar\b`,
			`\breserva\b`, `\bapartar\b`, `\bprogramar\b`, `\bturno\b`,
			`\bdisponibilidad\b`, `\bespacio\b`,
		),
	},
	{
		categoria: IntencionServicios,
		patrones: compilar(
			`\bservicio`, `\blimpieza\b`, `\bblanqueamiento\b`,
			`\bortodoncia\b`, `\bbrackets\b`, `\bextracci`, `\bendodoncia\b`,
			`\bresina`, `\bcorona`, `\bimplante`, `\btratamiento`,
		),
	},
	{
		categoria: IntencionHorarios,
		patrones: compilar(
			`\bhorario`, `\babren\b`, `\bcierran\b`,
			`\babierto\b`, `\bcerrado\b`, `\bdomingo\b`, `\bs[aá]bado\b`,
			`\ba qu[eé] hora\b`,
		),
	},
	{
		categoria: IntencionPrecios,
		patrones: compilar(
			`\bprecio`, `\bcosto`, `\bcu[aá]nto cuesta\b`, `\bcu[aá]nto sale\b`,
			`\bcobran\b`, `\btarifa`, `\bpresupuesto\b`, `\bpago`,
		),
	},
	{
		categoria: IntencionUrgencia,
		patrones: compilar(
			`\burgencia\b`, `\burgente\b`, `\bemergencia\b`,
			`\bdolor\b`, `\bduele\b`, `\bsangr`, `\bse me rompi`,
			`\bse me cay`, `\binflamad`, `\bhinchad`, `\babsceso\b`,
		),
	},
}

// ClasificarIntencion asigna una categoría al mensaje según palabras clave.
// Si ninguna regla aplica devuelve la categoría general.
func ClasificarIntencion(mensaje string) string {
	normalizado := strings.ToLower(strings.TrimSpace(mensaje))
	if normalizado == "" {
		return IntencionGeneral
	}

	for _, regla := range reglasIntencion {
		for _, patron := range regla.patrones {
			if patron.MatchString(normalizado) {
				return regla.categoria
			}
		}
	}
	return IntencionGeneral
}
