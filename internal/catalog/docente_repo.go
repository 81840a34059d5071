package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"catedrahub/pkg/models"
)

type DocenteRepo struct {
	DB *sql.DB
}

func NewDocenteRepo(db *sql.DB) *DocenteRepo {
	return &DocenteRepo{DB: db}
}

type DocenteListQuery struct {
	Search string // matches nombre, apellido, nombre_completo, alias_search
	Limit  int
	Offset int
}

func (r *DocenteRepo) GetByID(ctx context.Context, id int64) (*models.Docente, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id_docente, nombre, apellido, nombre_completo, alias_search
		FROM docentes
		WHERE id_docente = ?
	`, id)

	var d models.Docente
	if err := row.Scan(&d.ID, &d.Nombre, &d.Apellido, &d.NombreCompleto, &d.AliasSearch); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan docente: %w", err)
	}
	return &d, nil
}

func (r *DocenteRepo) GetByNombreCompleto(ctx context.Context, nombreCompleto string) (*models.Docente, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id_docente, nombre, apellido, nombre_completo, alias_search
		FROM docentes
		WHERE LOWER(nombre_completo) = LOWER(?)
	`, strings.TrimSpace(nombreCompleto))

	var d models.Docente
	if err := row.Scan(&d.ID, &d.Nombre, &d.Apellido, &d.NombreCompleto, &d.AliasSearch); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan docente: %w", err)
	}
	return &d, nil
}

func (r *DocenteRepo) Count(ctx context.Context, q DocenteListQuery) (int, error) {
	sqlStr, args := buildDocenteListSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count docentes: %w", err)
	}
	return total, nil
}

func (r *DocenteRepo) List(ctx context.Context, q DocenteListQuery) ([]models.Docente, error) {
	sqlStr, args := buildDocenteListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list docentes: %w", err)
	}
	defer rows.Close()

	out := make([]models.Docente, 0, q.Limit)
	for rows.Next() {
		var d models.Docente
		if err := rows.Scan(&d.ID, &d.Nombre, &d.Apellido, &d.NombreCompleto, &d.AliasSearch); err != nil {
			return nil, fmt.Errorf("scan docente row: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("docente rows: %w", err)
	}
	return out, nil
}

func buildDocenteListSQL(q DocenteListQuery, countOnly bool) (string, []any) {
	baseSelect := `
		SELECT id_docente, nombre, apellido, nombre_completo, alias_search
		FROM docentes
	`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM docentes`
	}

	var where []string
	var args []any

	if kw := strings.TrimSpace(q.Search); kw != "" {
		where = append(where, `(LOWER(nombre) LIKE ? OR LOWER(apellido) LIKE ?
			OR LOWER(nombre_completo) LIKE ? OR LOWER(alias_search) LIKE ?)`)
		pat := "%" + strings.ToLower(kw) + "%"
		args = append(args, pat, pat, pat, pat)
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY apellido ASC, nombre ASC"
		sqlStr += " LIMIT ? OFFSET ?"
		limit := q.Limit
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, limit, offset)
	}

	return sqlStr, args
}

// FindOrCreate matches by case-insensitive full name, deriving the stored
// fields when creating. Used by the crear-manual endpoint.
func (r *DocenteRepo) FindOrCreate(ctx context.Context, nombre, apellido, nombreCompleto string) (*models.Docente, bool, error) {
	existing, err := r.GetByNombreCompleto(ctx, nombreCompleto)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO docentes (nombre, apellido, nombre_completo)
		VALUES (?, ?, ?)
	`, nombre, apellido, nombreCompleto)
	if err != nil {
		return nil, false, fmt.Errorf("create docente: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("docente id: %w", err)
	}

	return &models.Docente{
		ID:             id,
		Nombre:         nombre,
		Apellido:       apellido,
		NombreCompleto: nombreCompleto,
	}, true, nil
}

func (r *DocenteRepo) Update(ctx context.Context, d models.Docente) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE docentes
		SET nombre = ?, apellido = ?, nombre_completo = ?, alias_search = ?
		WHERE id_docente = ?
	`, d.Nombre, d.Apellido, d.NombreCompleto, d.AliasSearch, d.ID)
	if err != nil {
		return false, fmt.Errorf("update docente: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *DocenteRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM docentes WHERE id_docente = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete docente: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

type DocenteStats struct {
	Total         int `json:"total_docentes"`
	ConComisiones int `json:"docentes_con_comisiones"`
	SinComisiones int `json:"docentes_sin_comisiones"`
}

func (r *DocenteRepo) Estadisticas(ctx context.Context) (*DocenteStats, error) {
	var s DocenteStats
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM docentes`).Scan(&s.Total); err != nil {
		return nil, fmt.Errorf("count docentes: %w", err)
	}
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT docente_id) FROM comisiones WHERE docente_id IS NOT NULL
	`).Scan(&s.ConComisiones); err != nil {
		return nil, fmt.Errorf("count docentes con comisiones: %w", err)
	}
	s.SinComisiones = s.Total - s.ConComisiones
	return &s, nil
}
