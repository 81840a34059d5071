package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"catedrahub/pkg/models"
)

var ErrInvalidCiclo = errors.New("el ciclo debe ser CPO o CPC")

// Options configure one import run. Ciclo applies uniformly to every row and
// is threaded down as an explicit argument, never stored on the engine.
type Options struct {
	Path           string
	DryRun         bool
	UpdateExisting bool
	Ciclo          string
}

type Engine struct {
	DB *sql.DB
}

func NewEngine(db *sql.DB) *Engine {
	return &Engine{DB: db}
}

// Run executes the whole pipeline for one file: read, analyze duplicates,
// reconcile every row inside a single transaction, then consolidate the
// catalog. On dry-run everything is rolled back but the counters still
// reflect what would have happened.
func (e *Engine) Run(ctx context.Context, opts Options) (*RunResult, error) {
	ciclo := strings.ToUpper(strings.TrimSpace(opts.Ciclo))
	if ciclo != "" && !models.ValidCiclo(ciclo) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCiclo, opts.Ciclo)
	}

	rows, err := ReadFile(opts.Path)
	if err != nil {
		return nil, err
	}

	result := &RunResult{DryRun: opts.DryRun}
	logf := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		result.Log = append(result.Log, msg)
		log.Printf("[import] %s", msg)
	}

	logf("%d filas leídas de %s", len(rows), opts.Path)

	result.Duplicates = AnalyzeDuplicates(rows)
	for _, w := range result.Duplicates.Warnings {
		logf("duplicado: %s", w)
	}
	for _, msg := range result.Duplicates.Errores {
		logf("conflicto: %s", msg)
	}
	result.Stats.Errores = len(result.Duplicates.Errores)

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback()

	// Idempotency guard within this run: the same physical row content is
	// applied at most once even when the file repeats it.
	procesadas := make(map[string]struct{})

	for _, row := range rows {
		codigo := row.Get("Comisión")
		id := duplicateKey(codigo, row.Get("Docente"), row.Get("Horario"), row.Get("Sede"))

		if codigo != "" {
			if _, exacto := result.Duplicates.Exactos[id]; exacto {
				if _, done := procesadas[id]; done {
					result.Stats.DuplicadosExactosOmitidos++
					continue
				}
				procesadas[id] = struct{}{}
			} else if _, variacion := result.Duplicates.Variaciones[codigo]; variacion {
				if _, done := procesadas[id]; done {
					result.Stats.VariacionesDetectadas++
					continue
				}
				procesadas[id] = struct{}{}
			}
		}

		rowStats, err := processRow(ctx, tx, row, ciclo, opts.UpdateExisting, logf)
		if err != nil {
			return nil, err
		}
		result.Stats.add(rowStats)
	}

	if opts.DryRun {
		return result, nil
	}

	// Post-pass over the WHOLE catalog, not just this run's rows: earlier
	// runs or manual edits may have left duplicate groups behind.
	eliminadas, err := cleanupComisionesDuplicadas(ctx, tx)
	if err != nil {
		return nil, err
	}
	if eliminadas > 0 {
		logf("comisiones duplicadas consolidadas: %d", eliminadas)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import tx: %w", err)
	}
	return result, nil
}

// processRow reconciles one row against stored state. Rows without docente
// or without actividad/comisión are skipped silently.
func processRow(ctx context.Context, tx *sql.Tx, row Row, ciclo string, updateExisting bool, logf func(string, ...any)) (Stats, error) {
	var stats Stats

	nombreCompleto := row.Get("Docente")
	if nombreCompleto == "" {
		return stats, nil
	}

	docenteID, creado, err := findOrCreateDocente(ctx, tx, nombreCompleto)
	if err != nil {
		return stats, err
	}
	if creado {
		stats.DocentesCreados++
		logf("docente creado: %s", TitleName(nombreCompleto))
	} else {
		stats.DocentesExistentes++
	}

	actividad := row.Get("Actividad")
	codigo := row.Get("Comisión")
	if actividad == "" || codigo == "" {
		return stats, nil
	}

	codigoActividad, nombreActividad := ParseActividad(actividad)
	nombre := truncate(nombreActividad, 200)
	modalidad := NormalizeModalidad(row.Get("Modalidad"))
	sede := row.Get("Sede")
	esCentroExterno := IsCentroExterno(sede, row)
	horario := row.Get("Horario")
	recomendacionRaw := row.Get("RECOMENDACIÓN")

	periodo := row.Get("Período lectivo")
	if periodo == "" {
		periodo = row.Get("Periodo lectivo")
	}
	cuatrimestre := ExtractCuatrimestre(periodo)

	// Reconciliation identity: (codigo, docente, cuatrimestre, sede). Finer
	// than the duplicate-detection key, which omits the cuatrimestre.
	existentes, err := findComisiones(ctx, tx, codigo, docenteID, cuatrimestre, sede)
	if err != nil {
		return stats, err
	}

	if len(existentes) > 0 && !updateExisting {
		stats.ComisionesOmitidas++
		return stats, nil
	}

	if len(existentes) == 0 {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO comisiones
				(codigo, codigo_actividad, nombre, docente_id, horario, sede,
				 es_centro_externo, ciclo, modalidad, cuatrimestre, recomendacion_raw, activa)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		`, codigo, codigoActividad, nombre, docenteID, horario, sede,
			esCentroExterno, ciclo, nullString(modalidad), cuatrimestre, recomendacionRaw)
		if err != nil {
			return stats, fmt.Errorf("insert comisión %s: %w", codigo, err)
		}
		stats.ComisionesCreadas++
		logf("comisión creada: %s - %s", codigo, nombre)
		return stats, nil
	}

	// Merge into the first existing record; the surviving horario is chosen
	// by the pickSchedule policy over all candidates. Losers go first so the
	// update cannot trip the uniqueness constraint on their horario.
	target := existentes[0]
	horarioFinal := pickSchedule(existentes, horario)

	for _, item := range existentes[1:] {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comisiones WHERE id_comision = ?`, item.id); err != nil {
			return stats, fmt.Errorf("delete duplicate comisión %d: %w", item.id, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE comisiones
		SET codigo_actividad = ?, nombre = ?, horario = ?, sede = ?,
		    es_centro_externo = ?, ciclo = ?, modalidad = ?, recomendacion_raw = ?, activa = 1
		WHERE id_comision = ?
	`, codigoActividad, nombre, horarioFinal, sede,
		esCentroExterno, ciclo, nullString(modalidad), recomendacionRaw, target.id)
	if err != nil {
		return stats, fmt.Errorf("update comisión %s: %w", codigo, err)
	}

	stats.ComisionesActualizadas++
	logf("comisión actualizada: %s", codigo)
	return stats, nil
}

type comisionRow struct {
	id      int64
	horario string
}

// pickSchedule decides which schedule text survives a merge: the longest
// among existing records and the incoming row, ties broken by encounter
// order with existing records first. This is a policy choice; swap the
// strategy here without touching the engine.
func pickSchedule(existentes []comisionRow, incoming string) string {
	best := ""
	for _, c := range existentes {
		if len(c.horario) > len(best) {
			best = c.horario
		}
	}
	if len(incoming) > len(best) {
		best = incoming
	}
	return best
}

func findOrCreateDocente(ctx context.Context, tx *sql.Tx, nombreCompleto string) (int64, bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
		SELECT id_docente FROM docentes WHERE LOWER(nombre_completo) = LOWER(?)
	`, nombreCompleto).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("find docente: %w", err)
	}

	apellido, nombre := SplitDocenteName(nombreCompleto)
	res, err := tx.ExecContext(ctx, `
		INSERT INTO docentes (nombre, apellido, nombre_completo)
		VALUES (?, ?, ?)
	`, TitleName(nombre), TitleName(apellido), TitleName(nombreCompleto))
	if err != nil {
		return 0, false, fmt.Errorf("create docente: %w", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("docente id: %w", err)
	}
	return id, true, nil
}

func findComisiones(ctx context.Context, tx *sql.Tx, codigo string, docenteID int64, cuatrimestre, sede string) ([]comisionRow, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id_comision, COALESCE(horario, '')
		FROM comisiones
		WHERE codigo = ? AND docente_id = ? AND cuatrimestre = ? AND sede = ?
		ORDER BY id_comision
	`, codigo, docenteID, cuatrimestre, sede)
	if err != nil {
		return nil, fmt.Errorf("find comisiones: %w", err)
	}
	defer rows.Close()

	var out []comisionRow
	for rows.Next() {
		var c comisionRow
		if err := rows.Scan(&c.id, &c.horario); err != nil {
			return nil, fmt.Errorf("scan comisión: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("comisiones rows: %w", err)
	}
	return out, nil
}

// cleanupComisionesDuplicadas consolidates any group sharing the identity
// tuple down to the record with the longest horario. It guarantees the
// at-most-one-per-identity invariant even against state left by earlier runs.
func cleanupComisionesDuplicadas(ctx context.Context, tx *sql.Tx) (int, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id_comision, codigo, COALESCE(docente_id, 0),
		       COALESCE(cuatrimestre, ''), COALESCE(sede, ''), COALESCE(horario, '')
		FROM comisiones
		ORDER BY id_comision
	`)
	if err != nil {
		return 0, fmt.Errorf("scan catalog: %w", err)
	}
	defer rows.Close()

	type groupKey struct {
		codigo       string
		docenteID    int64
		cuatrimestre string
		sede         string
	}
	grupos := make(map[groupKey][]comisionRow)
	var orden []groupKey

	for rows.Next() {
		var (
			c   comisionRow
			key groupKey
		)
		if err := rows.Scan(&c.id, &key.codigo, &key.docenteID, &key.cuatrimestre, &key.sede, &c.horario); err != nil {
			return 0, fmt.Errorf("scan catalog row: %w", err)
		}
		if _, seen := grupos[key]; !seen {
			orden = append(orden, key)
		}
		grupos[key] = append(grupos[key], c)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("catalog rows: %w", err)
	}

	eliminadas := 0
	for _, key := range orden {
		items := grupos[key]
		if len(items) <= 1 {
			continue
		}

		keep := items[0]
		for _, c := range items[1:] {
			if len(c.horario) > len(keep.horario) {
				keep = c
			}
		}

		for _, c := range items {
			if c.id == keep.id {
				continue
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM comisiones WHERE id_comision = ?`, c.id); err != nil {
				return 0, fmt.Errorf("delete duplicate %d: %w", c.id, err)
			}
			eliminadas++
		}
	}

	return eliminadas, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
