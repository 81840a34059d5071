package importer

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catedrahub/pkg/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.MigrateFile(db, "../../docs/schema.sql"))
	return db
}

const testHeader = "Período lectivo,Actividad,Comisión,Docente,Horario,Sede,Modalidad\n"

func writeCSV(t *testing.T, rows ...string) string {
	t.Helper()
	data := testHeader
	for _, r := range rows {
		data += r + "\n"
	}
	return writeTemp(t, "import.csv", []byte(data))
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestEngineRunCreates(t *testing.T) {
	db := newTestDB(t)
	path := writeCSV(t,
		"PRIMER CUATRIMESTRE 2025,205 (PRI) - DERECHO ROMANO,7005,GARCIA JUAN,Lun 8:30 a 10:00,PENAL,Presencial",
		"PRIMER CUATRIMESTRE 2025,209 (PRI) - OBLIGACIONES,7010,PEREZ ANA,Mar 10:00 a 11:30,CIVIL,Remota",
	)

	result, err := NewEngine(db).Run(context.Background(), Options{Path: path, Ciclo: "CPO"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.DocentesCreados)
	assert.Equal(t, 2, result.Stats.ComisionesCreadas)
	assert.Equal(t, 0, result.Stats.Errores)
	assert.Equal(t, 2, countRows(t, db, "comisiones"))
	assert.Equal(t, 2, countRows(t, db, "docentes"))

	var (
		codigoActividad, nombre, cuatrimestre, ciclo string
		modalidad                                    sql.NullString
		docenteNombre                                string
	)
	require.NoError(t, db.QueryRow(`
		SELECT c.codigo_actividad, c.nombre, c.cuatrimestre, c.ciclo, c.modalidad, d.nombre_completo
		FROM comisiones c JOIN docentes d ON d.id_docente = c.docente_id
		WHERE c.codigo = '7005'
	`).Scan(&codigoActividad, &nombre, &cuatrimestre, &ciclo, &modalidad, &docenteNombre))

	assert.Equal(t, "205", codigoActividad)
	assert.Equal(t, "DERECHO ROMANO", nombre)
	assert.Equal(t, "1C2025", cuatrimestre)
	assert.Equal(t, "CPO", ciclo)
	assert.Equal(t, "Presencial", modalidad.String)
	assert.Equal(t, "Garcia Juan", docenteNombre)
}

func TestEngineRunInvalidCiclo(t *testing.T) {
	db := newTestDB(t)
	path := writeCSV(t)

	_, err := NewEngine(db).Run(context.Background(), Options{Path: path, Ciclo: "CBC"})
	require.ErrorIs(t, err, ErrInvalidCiclo)
}

func TestEngineSecondRunSkipsWithoutUpdate(t *testing.T) {
	db := newTestDB(t)
	path := writeCSV(t,
		"PRIMER CUATRIMESTRE 2025,205 (PRI) - DERECHO ROMANO,7005,GARCIA JUAN,Lun 8:30 a 10:00,PENAL,",
	)
	engine := NewEngine(db)

	_, err := engine.Run(context.Background(), Options{Path: path})
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), Options{Path: path})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Stats.ComisionesCreadas)
	assert.Equal(t, 1, result.Stats.ComisionesOmitidas)
	assert.Equal(t, 1, result.Stats.DocentesExistentes)
	assert.Equal(t, 1, countRows(t, db, "comisiones"))
	assert.Equal(t, 1, countRows(t, db, "docentes"))
}

func TestEngineLongestScheduleWins(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db)

	short := writeCSV(t,
		"PRIMER CUATRIMESTRE 2025,205 (PRI) - DERECHO ROMANO,7005,GARCIA JUAN,Lun 8:30,PENAL,",
	)
	long := writeCSV(t,
		"PRIMER CUATRIMESTRE 2025,205 (PRI) - DERECHO ROMANO,7005,GARCIA JUAN,Lunes 8:30 a 10:00 Aula 3,PENAL,",
	)

	_, err := engine.Run(context.Background(), Options{Path: short})
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), Options{Path: long, UpdateExisting: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.ComisionesActualizadas)

	var horario string
	require.NoError(t, db.QueryRow(`SELECT horario FROM comisiones WHERE codigo = '7005'`).Scan(&horario))
	assert.Equal(t, "Lunes 8:30 a 10:00 Aula 3", horario)

	// A later run with a shorter schedule must not regress it.
	_, err = engine.Run(context.Background(), Options{Path: short, UpdateExisting: true})
	require.NoError(t, err)
	require.NoError(t, db.QueryRow(`SELECT horario FROM comisiones WHERE codigo = '7005'`).Scan(&horario))
	assert.Equal(t, "Lunes 8:30 a 10:00 Aula 3", horario)
	assert.Equal(t, 1, countRows(t, db, "comisiones"))
}

func TestEngineDryRunWritesNothing(t *testing.T) {
	db := newTestDB(t)
	path := writeCSV(t,
		"PRIMER CUATRIMESTRE 2025,205 (PRI) - DERECHO ROMANO,7005,GARCIA JUAN,Lun 8:30 a 10:00,PENAL,",
	)

	result, err := NewEngine(db).Run(context.Background(), Options{Path: path, DryRun: true})
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Stats.ComisionesCreadas)
	assert.Equal(t, 0, countRows(t, db, "comisiones"))
	assert.Equal(t, 0, countRows(t, db, "docentes"))
}

func TestEngineExactDuplicateAppliedOnce(t *testing.T) {
	db := newTestDB(t)
	fila := "PRIMER CUATRIMESTRE 2025,205 (PRI) - DERECHO ROMANO,7005,GARCIA JUAN,Lun 8:30 a 10:00,PENAL,"
	path := writeCSV(t, fila, fila, fila)

	result, err := NewEngine(db).Run(context.Background(), Options{Path: path})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.ComisionesCreadas)
	assert.Equal(t, 2, result.Stats.DuplicadosExactosOmitidos)
	assert.Equal(t, 1, countRows(t, db, "comisiones"))
}

func TestEngineMultiDocenteConflictKeepsBoth(t *testing.T) {
	db := newTestDB(t)
	path := writeCSV(t,
		"PRIMER CUATRIMESTRE 2025,205 (PRI) - DERECHO ROMANO,7005,GARCIA JUAN,Lun 8:30 a 10:00,PENAL,",
		"PRIMER CUATRIMESTRE 2025,205 (PRI) - DERECHO ROMANO,7005,PEREZ ANA,Lun 8:30 a 10:00,PENAL,",
	)

	result, err := NewEngine(db).Run(context.Background(), Options{Path: path})
	require.NoError(t, err)

	// The conflict is reported but never blocks the run; the reconciliation
	// key includes the docente, so both rows land.
	assert.Equal(t, 1, result.Stats.Errores)
	require.Len(t, result.Duplicates.Errores, 1)
	assert.Contains(t, result.Duplicates.Errores[0], "múltiples docentes")
	assert.Equal(t, 2, countRows(t, db, "comisiones"))
}

func TestEngineScheduleVariationMerges(t *testing.T) {
	db := newTestDB(t)
	path := writeCSV(t,
		"PRIMER CUATRIMESTRE 2025,205 (PRI) - DERECHO ROMANO,7005,GARCIA JUAN,Lun 8:30,PENAL,",
		"PRIMER CUATRIMESTRE 2025,205 (PRI) - DERECHO ROMANO,7005,GARCIA JUAN,Miércoles 14:00 a 15:30,PENAL,",
	)

	result, err := NewEngine(db).Run(context.Background(), Options{Path: path, UpdateExisting: true})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.ComisionesCreadas)
	assert.Equal(t, 1, result.Stats.ComisionesActualizadas)
	assert.Equal(t, 1, countRows(t, db, "comisiones"))

	var horario string
	require.NoError(t, db.QueryRow(`SELECT horario FROM comisiones WHERE codigo = '7005'`).Scan(&horario))
	assert.Equal(t, "Miércoles 14:00 a 15:30", horario)
}

func TestEngineCleanupConsolidatesPreexistingDuplicates(t *testing.T) {
	db := newTestDB(t)

	res, err := db.Exec(`INSERT INTO docentes (nombre, apellido, nombre_completo) VALUES ('Juan', 'Garcia', 'Garcia Juan')`)
	require.NoError(t, err)
	docenteID, err := res.LastInsertId()
	require.NoError(t, err)

	// Two records sharing the identity tuple, left behind by earlier state.
	_, err = db.Exec(`
		INSERT INTO comisiones (codigo, nombre, docente_id, horario, sede, cuatrimestre)
		VALUES ('7005', 'DERECHO ROMANO', ?, 'Lun 8:30', 'PENAL', '1C2025'),
		       ('7005', 'DERECHO ROMANO', ?, 'Lunes 8:30 a 10:00 Aula 3', 'PENAL', '1C2025')
	`, docenteID, docenteID)
	require.NoError(t, err)

	path := writeCSV(t,
		"PRIMER CUATRIMESTRE 2025,209 (PRI) - OBLIGACIONES,7010,PEREZ ANA,Mar 10:00,CIVIL,",
	)
	_, err = NewEngine(db).Run(context.Background(), Options{Path: path})
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM comisiones WHERE codigo = '7005'`).Scan(&n))
	assert.Equal(t, 1, n)

	var horario string
	require.NoError(t, db.QueryRow(`SELECT horario FROM comisiones WHERE codigo = '7005'`).Scan(&horario))
	assert.Equal(t, "Lunes 8:30 a 10:00 Aula 3", horario)
}

func TestPickSchedule(t *testing.T) {
	existentes := []comisionRow{
		{id: 1, horario: "Lun 8:30"},
		{id: 2, horario: "Lunes 8:30 a 10:00"},
	}
	assert.Equal(t, "Lunes 8:30 a 10:00", pickSchedule(existentes, "Lun"))
	assert.Equal(t, "Lunes 8:30 a 10:00 en Aula 3", pickSchedule(existentes, "Lunes 8:30 a 10:00 en Aula 3"))
	// Ties keep the existing record's text.
	assert.Equal(t, "Lunes 8:30 a 10:00", pickSchedule(existentes, "AAAAA 8:30 a 10:00"))
}
