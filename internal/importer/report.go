package importer

import (
	"fmt"
	"io"
)

// Stats accumulates per-category counters for one import run.
type Stats struct {
	DocentesCreados           int `json:"docentes_creados"`
	DocentesExistentes        int `json:"docentes_existentes"`
	ComisionesCreadas         int `json:"comisiones_creadas"`
	ComisionesActualizadas    int `json:"comisiones_actualizadas"`
	ComisionesOmitidas        int `json:"comisiones_omitidas"`
	DuplicadosExactosOmitidos int `json:"duplicados_exactos_omitidos"`
	VariacionesDetectadas     int `json:"variaciones_detectadas"`
	Errores                   int `json:"errores"`
}

func (s *Stats) add(other Stats) {
	s.DocentesCreados += other.DocentesCreados
	s.DocentesExistentes += other.DocentesExistentes
	s.ComisionesCreadas += other.ComisionesCreadas
	s.ComisionesActualizadas += other.ComisionesActualizadas
	s.ComisionesOmitidas += other.ComisionesOmitidas
}

// RunResult is the structured outcome of one run, for both the CLI summary
// and programmatic callers (the upload endpoint, tests).
type RunResult struct {
	Stats      Stats              `json:"stats"`
	Duplicates *DuplicateAnalysis `json:"duplicates"`
	DryRun     bool               `json:"dry_run"`
	Log        []string           `json:"log,omitempty"`
}

// PrintSummary writes the human-readable run summary.
func (r *RunResult) PrintSummary(w io.Writer) {
	line := func(format string, args ...any) {
		fmt.Fprintf(w, format+"\n", args...)
	}

	line("")
	line("============================================================")
	line("RESUMEN DE IMPORTACIÓN")
	line("============================================================")

	if r.DryRun {
		line("Modo DRY-RUN (no se guardó nada)")
	}

	line("Docentes:")
	line("  - Creados: %d", r.Stats.DocentesCreados)
	line("  - Ya existentes: %d", r.Stats.DocentesExistentes)
	line("Comisiones:")
	line("  - Creadas: %d", r.Stats.ComisionesCreadas)
	line("  - Actualizadas: %d", r.Stats.ComisionesActualizadas)
	line("  - Omitidas: %d", r.Stats.ComisionesOmitidas)

	if r.Stats.DuplicadosExactosOmitidos > 0 || r.Stats.VariacionesDetectadas > 0 {
		line("Duplicados procesados:")
		if r.Stats.DuplicadosExactosOmitidos > 0 {
			line("  - Exactos omitidos: %d", r.Stats.DuplicadosExactosOmitidos)
		}
		if r.Stats.VariacionesDetectadas > 0 {
			line("  - Variaciones detectadas: %d", r.Stats.VariacionesDetectadas)
		}
	}

	if r.Duplicates != nil {
		for _, warning := range r.Duplicates.Warnings {
			line("  ⚠ %s", warning)
		}
		for _, e := range r.Duplicates.Errores {
			line("  ✗ %s", e)
		}
	}

	if r.Stats.Errores > 0 {
		line("Errores: %d", r.Stats.Errores)
	} else {
		line("Sin errores")
	}
	line("============================================================")
}
