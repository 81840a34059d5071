package importer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DuplicateAnalysis is the result of the batch pre-pass over the input file,
// computed before any writes happen.
type DuplicateAnalysis struct {
	// Exactos holds duplicate-detection keys (codigo|docente|horario|sede)
	// that appear more than once with identical content.
	Exactos map[string]struct{} `json:"-"`
	// Variaciones holds section codes with legitimate schedule variation or
	// a multi-docente conflict.
	Variaciones map[string]struct{} `json:"-"`
	Warnings    []string            `json:"warnings"`
	Errores     []string            `json:"errores"`
}

// ExactosList and VariacionesList expose the sets in a JSON-friendly shape.
func (d *DuplicateAnalysis) ExactosList() []string     { return sortedKeys(d.Exactos) }
func (d *DuplicateAnalysis) VariacionesList() []string { return sortedKeys(d.Variaciones) }

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// duplicateKey is the COARSE per-row identity used only for duplicate
// detection. It deliberately omits the cuatrimestre: two rows that differ
// only by term are not flagged here even though they may still collide on
// the reconciliation identity (codigo, docente, cuatrimestre, sede) that
// findComisiones queries by in engine.go.
func duplicateKey(codigo, docente, horario, sede string) string {
	return codigo + "|" + docente + "|" + horario + "|" + sede
}

type rowInstance struct {
	fila    int
	docente string
	horario string
	sede    string
}

// AnalyzeDuplicates scans the whole batch and classifies rows into exact
// duplicates, legitimate schedule variations and multi-docente conflicts.
// It never blocks the run; conflicts are reported for manual audit.
func AnalyzeDuplicates(rows []Row) *DuplicateAnalysis {
	result := &DuplicateAnalysis{
		Exactos:     make(map[string]struct{}),
		Variaciones: make(map[string]struct{}),
	}

	porID := make(map[string][]rowInstance)
	var idOrder []string
	docentesPorCodigo := make(map[string]map[string]struct{})
	var codigoOrder []string

	for idx, row := range rows {
		codigo := row.Get("Comisión")
		if codigo == "" {
			continue
		}
		docente := row.Get("Docente")
		horario := row.Get("Horario")
		sede := row.Get("Sede")

		id := duplicateKey(codigo, docente, horario, sede)
		if _, seen := porID[id]; !seen {
			idOrder = append(idOrder, id)
		}
		porID[id] = append(porID[id], rowInstance{
			fila:    idx + 1,
			docente: docente,
			horario: horario,
			sede:    sede,
		})

		if _, seen := docentesPorCodigo[codigo]; !seen {
			docentesPorCodigo[codigo] = make(map[string]struct{})
			codigoOrder = append(codigoOrder, codigo)
		}
		docentesPorCodigo[codigo][docente] = struct{}{}
	}

	// Exact duplicates: same full key appears more than once.
	for _, id := range idOrder {
		instancias := porID[id]
		if len(instancias) <= 1 {
			continue
		}
		result.Exactos[id] = struct{}{}

		codigo := strings.SplitN(id, "|", 2)[0]
		filas := make([]string, 0, len(instancias))
		for _, inst := range instancias {
			filas = append(filas, strconv.Itoa(inst.fila))
		}
		first := instancias[0]
		sede := first.sede
		if sede == "" {
			sede = "N/D"
		}
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Comisión %s (docente: %s, horario: %s, sede: %s) aparece %d veces (idénticas, filas: %s)",
			codigo, first.docente, first.horario, sede, len(instancias), strings.Join(filas, ", "),
		))
	}

	// One code claimed by several docentes is an error: the pipeline cannot
	// resolve the ambiguity and leaves both rows to the reconciliation key.
	for _, codigo := range codigoOrder {
		docentes := docentesPorCodigo[codigo]
		if len(docentes) > 1 {
			result.Errores = append(result.Errores, fmt.Sprintf(
				"Comisión %s asignada a múltiples docentes: %s",
				codigo, strings.Join(sortedKeys(docentes), ", "),
			))
			result.Variaciones[codigo] = struct{}{}
		}
	}

	// One docente, several schedules: valid split sections, warn only.
	for _, codigo := range codigoOrder {
		docentes := docentesPorCodigo[codigo]
		if len(docentes) != 1 {
			continue
		}
		var docenteUnico string
		for d := range docentes {
			docenteUnico = d
		}

		horarios := make(map[string]struct{})
		for id := range porID {
			partes := strings.Split(id, "|")
			if partes[0] == codigo && partes[1] == docenteUnico {
				horarios[partes[2]] = struct{}{}
			}
		}
		if len(horarios) > 1 {
			result.Variaciones[codigo] = struct{}{}
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"Comisión %s (%s) tiene %d horarios diferentes: %s",
				codigo, docenteUnico, len(horarios), strings.Join(sortedKeys(horarios), ", "),
			))
		}
	}

	return result
}
