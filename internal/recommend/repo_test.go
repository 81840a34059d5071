package recommend

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catedrahub/pkg/database"
	"catedrahub/pkg/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.MigrateFile(db, "../../docs/schema.sql"))
	return db
}

func seedComision(t *testing.T, db *sql.DB) (comisionID int64, userID string) {
	t.Helper()

	userID = "u-1"
	_, err := db.Exec(`
		INSERT INTO users (id, username, email, password_hash) VALUES (?, 'tester', 'tester@example.com', 'x')
	`, userID)
	require.NoError(t, err)

	res, err := db.Exec(`
		INSERT INTO comisiones (codigo, nombre) VALUES ('7005', 'DERECHO ROMANO')
	`)
	require.NoError(t, err)
	comisionID, err = res.LastInsertId()
	require.NoError(t, err)
	return comisionID, userID
}

func TestRepoCreateAndList(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	comisionID, userID := seedComision(t, db)

	conf := 0.9
	rec := models.Recomendacion{
		ComisionID:  comisionID,
		UserID:      userID,
		Texto:       "Excelente cátedra, toma parciales domiciliarios",
		Sentimiento: models.SentimientoPositivo,
		Confianza:   &conf,
	}
	require.NoError(t, repo.Create(ctx, &rec))
	assert.NotZero(t, rec.ID)

	require.NoError(t, repo.Create(ctx, &models.Recomendacion{
		ComisionID: comisionID,
		UserID:     userID,
		Texto:      "Mucha lectura semanal",
	}))

	items, err := repo.ListByComision(ctx, comisionID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.SentimientoPositivo, got.Sentimiento)
	require.NotNil(t, got.Confianza)
	assert.InDelta(t, 0.9, *got.Confianza, 1e-9)
}

func TestRepoVoteOrdersList(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	comisionID, userID := seedComision(t, db)

	a := models.Recomendacion{ComisionID: comisionID, UserID: userID, Texto: "primera"}
	b := models.Recomendacion{ComisionID: comisionID, UserID: userID, Texto: "segunda"}
	require.NoError(t, repo.Create(ctx, &a))
	require.NoError(t, repo.Create(ctx, &b))

	ok, err := repo.Vote(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	items, err := repo.ListByComision(ctx, comisionID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, b.ID, items[0].ID)
	assert.Equal(t, 1, items[0].VotosUtilidad)

	ok, err = repo.Vote(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepoDeleteOwn(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	comisionID, userID := seedComision(t, db)

	rec := models.Recomendacion{ComisionID: comisionID, UserID: userID, Texto: "borrable"}
	require.NoError(t, repo.Create(ctx, &rec))

	// Another user cannot delete it.
	ok, err := repo.DeleteOwn(ctx, rec.ID, "u-otro")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DeleteOwn(ctx, rec.ID, userID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
