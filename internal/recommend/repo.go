package recommend

import (
	"context"
	"database/sql"
	"fmt"

	"catedrahub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, rec *models.Recomendacion) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO recomendaciones (comision_id, user_id, texto, sentimiento, confianza)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ComisionID, rec.UserID, rec.Texto, nullString(rec.Sentimiento), rec.Confianza)
	if err != nil {
		return fmt.Errorf("insert recomendación: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("recomendación id: %w", err)
	}
	rec.ID = id
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Recomendacion, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, comision_id, user_id, texto, COALESCE(sentimiento, ''), confianza,
		       votos_utilidad, fecha_creacion
		FROM recomendaciones
		WHERE id = ?
	`, id)

	var rec models.Recomendacion
	if err := row.Scan(&rec.ID, &rec.ComisionID, &rec.UserID, &rec.Texto,
		&rec.Sentimiento, &rec.Confianza, &rec.VotosUtilidad, &rec.FechaCreacion); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan recomendación: %w", err)
	}
	return &rec, nil
}

// ListByComision returns recommendations newest first, most-voted breaking ties.
func (r *Repo) ListByComision(ctx context.Context, comisionID int64) ([]models.Recomendacion, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, comision_id, user_id, texto, COALESCE(sentimiento, ''), confianza,
		       votos_utilidad, fecha_creacion
		FROM recomendaciones
		WHERE comision_id = ?
		ORDER BY votos_utilidad DESC, fecha_creacion DESC
	`, comisionID)
	if err != nil {
		return nil, fmt.Errorf("list recomendaciones: %w", err)
	}
	defer rows.Close()

	var out []models.Recomendacion
	for rows.Next() {
		var rec models.Recomendacion
		if err := rows.Scan(&rec.ID, &rec.ComisionID, &rec.UserID, &rec.Texto,
			&rec.Sentimiento, &rec.Confianza, &rec.VotosUtilidad, &rec.FechaCreacion); err != nil {
			return nil, fmt.Errorf("scan recomendación row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recomendación rows: %w", err)
	}
	return out, nil
}

func (r *Repo) Vote(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE recomendaciones SET votos_utilidad = votos_utilidad + 1 WHERE id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("vote recomendación: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteOwn removes a recommendation only if it belongs to userID.
func (r *Repo) DeleteOwn(ctx context.Context, id int64, userID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM recomendaciones WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete recomendación: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM recomendaciones WHERE id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete recomendación: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
