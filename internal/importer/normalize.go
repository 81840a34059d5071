package importer

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"catedrahub/pkg/models"
)

// Orientaciones internas de la carrera. Una sede con uno de estos nombres no
// es un centro externo. Se incluyen las variantes con y sin acento porque el
// registro exporta ambas.
var orientacionesInternas = map[string]struct{}{
	"GENERAL":             {},
	"PENAL":               {},
	"NOTARIAL":            {},
	"AMBIENTAL":           {},
	"INT.PUBLICO":         {},
	"INT. PUBLICO":        {},
	"INMIG./REFUG.":       {},
	"VIOLENCIA DE GENERO": {},
	"VIOLENCIA DE GÉNERO": {},
	"CIVIL":               {},
	"EMPRESARIAL":         {},
}

// Nombres institucionales que delatan una sede externa.
var palabrasExternas = []string{"COLEGIO", "DEFENSORIA", "UNIVERSIDAD", "HOSPITAL", "TRIBUNAL", "CENTRO"}

var afirmativos = map[string]struct{}{
	"si": {}, "sí": {}, "yes": {}, "true": {}, "1": {}, "externo": {}, "externa": {},
}

// TitleName normalizes a person-name fragment for storage ("GARCIA" -> "Garcia").
// The caser is built per call: a cases.Caser is stateful and not safe for
// concurrent use, and this runs on gin goroutines as well as the import engine.
func TitleName(s string) string {
	return cases.Title(language.Spanish).String(strings.ToLower(s))
}

// SplitDocenteName splits a registrar full name into surname and given name.
// Format is "APELLIDO NOMBRE1 NOMBRE2"; a single token is all surname.
func SplitDocenteName(full string) (apellido, nombre string) {
	partes := strings.Fields(strings.TrimSpace(full))
	if len(partes) >= 2 {
		return partes[0], strings.Join(partes[1:], " ")
	}
	if len(partes) == 1 {
		return partes[0], ""
	}
	return "", ""
}

var actividadRe = regexp.MustCompile(`^(\S+)\s+\([^)]+\)\s*-\s*(.+)$`)

// ParseActividad extracts the activity code and title from a composite field.
// "205 (PRI) - DERECHO ROMANO" -> ("205", "DERECHO ROMANO"); anything that
// does not match the pattern is all title.
func ParseActividad(actividad string) (codigo, nombre string) {
	actividad = strings.TrimSpace(actividad)
	if m := actividadRe.FindStringSubmatch(actividad); m != nil {
		return m[1], strings.TrimSpace(m[2])
	}
	return "", actividad
}

var yearRe = regexp.MustCompile(`20\d{2}`)

// ExtractCuatrimestre derives the canonical term code from a free-text
// period. "PRIMER CUATRIMESTRE ABOGACÍA 2025" -> "1C2025". Empty when no
// 4-digit year starting with 20 is present.
func ExtractCuatrimestre(periodo string) string {
	year := yearRe.FindString(periodo)
	if year == "" {
		return ""
	}

	upper := strings.ToUpper(periodo)

	ordinal := "1"
	if strings.Contains(upper, "SEGUNDO") {
		ordinal = "2"
	}

	unidad := "C"
	if strings.Contains(upper, "BIMESTRE") && !strings.Contains(upper, "CUATRIMESTRE") {
		unidad = "B"
	}

	return ordinal + unidad + year
}

// IsCentroExterno classifies a sede as external. An explicit affirmative
// "Centro externo" column wins; otherwise unknown sedes are presumed
// external unless they name an internal orientation.
func IsCentroExterno(sede string, row Row) bool {
	centroCol := strings.ToLower(row.Get("Centro externo"))
	if centroCol == "" {
		centroCol = strings.ToLower(row.Get("Centros externos"))
	}
	if _, ok := afirmativos[centroCol]; ok {
		return true
	}

	sedeNorm := strings.ToUpper(strings.TrimSpace(sede))
	if sedeNorm == "" {
		return false
	}

	if _, ok := orientacionesInternas[sedeNorm]; ok {
		return false
	}

	for _, p := range palabrasExternas {
		if strings.Contains(sedeNorm, p) {
			return true
		}
	}

	return true
}

// NormalizeModalidad returns the modality if it is one of the enumerated
// values, otherwise "".
func NormalizeModalidad(modalidad string) string {
	modalidad = strings.TrimSpace(modalidad)
	if models.ValidModalidad(modalidad) {
		return modalidad
	}
	return ""
}

// isAffirmative reports whether a form/flag value means yes.
func isAffirmative(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "si", "sí", "on":
		return true
	}
	return false
}

// truncate caps s at n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
