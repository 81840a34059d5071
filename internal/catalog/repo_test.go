package catalog

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

func TestDocenteRepoFindOrCreate(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocenteRepo(db)
	ctx := context.Background()

	d, created, err := repo.FindOrCreate(ctx, "Juan", "Garcia", "Garcia Juan")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, d.ID)

	// Lookup is case-insensitive on the full name.
	again, created, err := repo.FindOrCreate(ctx, "JUAN", "GARCIA", "GARCIA JUAN")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, d.ID, again.ID)
	assert.Equal(t, "Garcia Juan", again.NombreCompleto)
}

func TestDocenteRepoListSearch(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocenteRepo(db)
	ctx := context.Background()

	_, _, err := repo.FindOrCreate(ctx, "Juan", "Garcia", "Garcia Juan")
	require.NoError(t, err)
	_, _, err = repo.FindOrCreate(ctx, "Ana", "Perez", "Perez Ana")
	require.NoError(t, err)

	items, err := repo.List(ctx, DocenteListQuery{Search: "garc"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Garcia Juan", items[0].NombreCompleto)

	total, err := repo.Count(ctx, DocenteListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestDocenteRepoEstadisticas(t *testing.T) {
	db := newTestDB(t)
	docentes := NewDocenteRepo(db)
	comisiones := NewComisionRepo(db)
	ctx := context.Background()

	conClases, _, err := docentes.FindOrCreate(ctx, "Juan", "Garcia", "Garcia Juan")
	require.NoError(t, err)
	_, _, err = docentes.FindOrCreate(ctx, "Ana", "Perez", "Perez Ana")
	require.NoError(t, err)

	_, _, err = comisiones.CreateOrMerge(ctx, ComisionInput{
		Codigo:    "7005",
		Nombre:    "DERECHO ROMANO",
		DocenteID: conClases.ID,
	})
	require.NoError(t, err)

	stats, err := docentes.Estadisticas(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ConComisiones)
	assert.Equal(t, 1, stats.SinComisiones)
}

func TestComisionRepoCreateOrMerge(t *testing.T) {
	db := newTestDB(t)
	docentes := NewDocenteRepo(db)
	repo := NewComisionRepo(db)
	ctx := context.Background()

	d, _, err := docentes.FindOrCreate(ctx, "Juan", "Garcia", "Garcia Juan")
	require.NoError(t, err)

	base := ComisionInput{
		Codigo:       "7005",
		Nombre:       "DERECHO ROMANO",
		DocenteID:    d.ID,
		Horario:      "Lun 8:30",
		Sede:         "PENAL",
		Ciclo:        "CPO",
		Cuatrimestre: "1C2025",
	}

	first, created, err := repo.CreateOrMerge(ctx, base)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Lun 8:30", first.Horario)

	// Same identity with a longer schedule merges instead of duplicating.
	longer := base
	longer.Horario = "Lunes 8:30 a 10:00 Aula 3"
	merged, created, err := repo.CreateOrMerge(ctx, longer)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, "Lunes 8:30 a 10:00 Aula 3", merged.Horario)

	// A shorter incoming schedule does not regress the stored one.
	shorter := base
	shorter.Horario = "Lun"
	merged, created, err = repo.CreateOrMerge(ctx, shorter)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Lunes 8:30 a 10:00 Aula 3", merged.Horario)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM comisiones`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestComisionRepoCreateOrMergeConsolidatesGroup(t *testing.T) {
	db := newTestDB(t)
	docentes := NewDocenteRepo(db)
	repo := NewComisionRepo(db)
	ctx := context.Background()

	d, _, err := docentes.FindOrCreate(ctx, "Juan", "Garcia", "Garcia Juan")
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO comisiones (codigo, nombre, docente_id, horario, sede, cuatrimestre)
		VALUES ('7005', 'DERECHO ROMANO', ?, 'Lun 8:30', 'PENAL', '1C2025'),
		       ('7005', 'DERECHO ROMANO', ?, 'Lunes 8:30 a 10:00', 'PENAL', '1C2025')
	`, d.ID, d.ID)
	require.NoError(t, err)

	merged, created, err := repo.CreateOrMerge(ctx, ComisionInput{
		Codigo:       "7005",
		Nombre:       "DERECHO ROMANO",
		DocenteID:    d.ID,
		Horario:      "Lun",
		Sede:         "PENAL",
		Cuatrimestre: "1C2025",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Lunes 8:30 a 10:00", merged.Horario)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM comisiones WHERE codigo = '7005'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestComisionRepoListFilters(t *testing.T) {
	db := newTestDB(t)
	docentes := NewDocenteRepo(db)
	repo := NewComisionRepo(db)
	ctx := context.Background()

	d, _, err := docentes.FindOrCreate(ctx, "Juan", "Garcia", "Garcia Juan")
	require.NoError(t, err)

	_, _, err = repo.CreateOrMerge(ctx, ComisionInput{
		Codigo: "7005", Nombre: "DERECHO ROMANO", DocenteID: d.ID,
		Sede: "PENAL", Ciclo: "CPO", Cuatrimestre: "1C2025",
	})
	require.NoError(t, err)
	_, _, err = repo.CreateOrMerge(ctx, ComisionInput{
		Codigo: "8001", Nombre: "CONTRATOS", DocenteID: d.ID,
		Sede: "CIVIL", Ciclo: "CPC", Cuatrimestre: "1C2025", EsCentroExterno: true,
	})
	require.NoError(t, err)

	items, err := repo.List(ctx, ComisionListQuery{Ciclo: "cpo"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "7005", items[0].Codigo)
	require.NotNil(t, items[0].Docente)
	assert.Equal(t, "Garcia Juan", items[0].Docente.NombreCompleto)

	items, err = repo.List(ctx, ComisionListQuery{Search: "contrat"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "8001", items[0].Codigo)

	externo := true
	total, err := repo.Count(ctx, ComisionListQuery{EsCentroExterno: &externo})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
