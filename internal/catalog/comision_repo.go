package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"catedrahub/pkg/models"
)

type ComisionRepo struct {
	DB *sql.DB
}

func NewComisionRepo(db *sql.DB) *ComisionRepo {
	return &ComisionRepo{DB: db}
}

type ComisionListQuery struct {
	Search          string // codigo, nombre, docente names, cuatrimestre
	Ciclo           string
	Activa          *bool
	EsCentroExterno *bool
	Limit           int
	Offset          int
}

const comisionSelect = `
	SELECT c.id_comision, c.codigo, c.codigo_actividad, c.nombre, COALESCE(c.docente_id, 0),
	       c.horario, c.sede, c.es_centro_externo, c.ciclo, COALESCE(c.modalidad, ''),
	       c.cuatrimestre, c.recomendacion_raw, c.activa, c.fecha_creacion,
	       COALESCE(d.nombre, ''), COALESCE(d.apellido, ''), COALESCE(d.nombre_completo, ''), COALESCE(d.alias_search, '')
	FROM comisiones c
	LEFT JOIN docentes d ON d.id_docente = c.docente_id
`

func scanComision(scanner interface{ Scan(...any) error }) (*models.Comision, error) {
	var (
		c models.Comision
		d models.Docente
	)
	if err := scanner.Scan(
		&c.ID, &c.Codigo, &c.CodigoActividad, &c.Nombre, &c.DocenteID,
		&c.Horario, &c.Sede, &c.EsCentroExterno, &c.Ciclo, &c.Modalidad,
		&c.Cuatrimestre, &c.RecomendacionRaw, &c.Activa, &c.FechaCreacion,
		&d.Nombre, &d.Apellido, &d.NombreCompleto, &d.AliasSearch,
	); err != nil {
		return nil, err
	}
	if c.DocenteID != 0 {
		d.ID = c.DocenteID
		c.Docente = &d
	}
	return &c, nil
}

func (r *ComisionRepo) GetByID(ctx context.Context, id int64) (*models.Comision, error) {
	row := r.DB.QueryRowContext(ctx, comisionSelect+` WHERE c.id_comision = ?`, id)
	c, err := scanComision(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan comisión: %w", err)
	}
	return c, nil
}

func (r *ComisionRepo) ListByDocente(ctx context.Context, docenteID int64) ([]models.Comision, error) {
	rows, err := r.DB.QueryContext(ctx, comisionSelect+`
		WHERE c.docente_id = ?
		ORDER BY c.codigo ASC
	`, docenteID)
	if err != nil {
		return nil, fmt.Errorf("list comisiones por docente: %w", err)
	}
	defer rows.Close()
	return collectComisiones(rows)
}

func (r *ComisionRepo) Count(ctx context.Context, q ComisionListQuery) (int, error) {
	sqlStr, args := buildComisionListSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count comisiones: %w", err)
	}
	return total, nil
}

func (r *ComisionRepo) List(ctx context.Context, q ComisionListQuery) ([]models.Comision, error) {
	sqlStr, args := buildComisionListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list comisiones: %w", err)
	}
	defer rows.Close()
	return collectComisiones(rows)
}

func collectComisiones(rows *sql.Rows) ([]models.Comision, error) {
	var out []models.Comision
	for rows.Next() {
		c, err := scanComision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comisión row: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("comision rows: %w", err)
	}
	return out, nil
}

func buildComisionListSQL(q ComisionListQuery, countOnly bool) (string, []any) {
	baseSelect := comisionSelect
	if countOnly {
		baseSelect = `
			SELECT COUNT(*)
			FROM comisiones c
			LEFT JOIN docentes d ON d.id_docente = c.docente_id
		`
	}

	var where []string
	var args []any

	if kw := strings.TrimSpace(q.Search); kw != "" {
		where = append(where, `(LOWER(c.codigo) LIKE ? OR LOWER(c.nombre) LIKE ?
			OR LOWER(d.nombre) LIKE ? OR LOWER(d.apellido) LIKE ? OR LOWER(c.cuatrimestre) LIKE ?)`)
		pat := "%" + strings.ToLower(kw) + "%"
		args = append(args, pat, pat, pat, pat, pat)
	}

	if ciclo := strings.TrimSpace(q.Ciclo); ciclo != "" {
		where = append(where, "c.ciclo = ?")
		args = append(args, strings.ToUpper(ciclo))
	}

	if q.Activa != nil {
		where = append(where, "c.activa = ?")
		args = append(args, *q.Activa)
	}

	if q.EsCentroExterno != nil {
		where = append(where, "c.es_centro_externo = ?")
		args = append(args, *q.EsCentroExterno)
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY c.codigo ASC"
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

func (r *ComisionRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM comisiones WHERE id_comision = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete comisión: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ComisionInput carries the fields for a manual create-or-merge.
type ComisionInput struct {
	Codigo           string
	CodigoActividad  string
	Nombre           string
	DocenteID        int64
	Horario          string
	Sede             string
	EsCentroExterno  bool
	Ciclo            string
	Modalidad        string
	Cuatrimestre     string
	RecomendacionRaw string
}

// CreateOrMerge applies the same consolidation rule as the import engine:
// existing records for the identity tuple are merged into one, the longest
// horario wins, losers are deleted.
func (r *ComisionRepo) CreateOrMerge(ctx context.Context, in ComisionInput) (*models.Comision, bool, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id_comision, COALESCE(horario, '')
		FROM comisiones
		WHERE codigo = ? AND docente_id = ? AND cuatrimestre = ? AND sede = ?
		ORDER BY id_comision
	`, in.Codigo, in.DocenteID, in.Cuatrimestre, in.Sede)
	if err != nil {
		return nil, false, fmt.Errorf("find comisiones: %w", err)
	}

	type existing struct {
		id      int64
		horario string
	}
	var existentes []existing
	for rows.Next() {
		var e existing
		if err := rows.Scan(&e.id, &e.horario); err != nil {
			rows.Close()
			return nil, false, fmt.Errorf("scan comisión: %w", err)
		}
		existentes = append(existentes, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, false, fmt.Errorf("comision rows: %w", err)
	}
	rows.Close()

	var modalidad any
	if models.ValidModalidad(in.Modalidad) {
		modalidad = in.Modalidad
	}

	if len(existentes) == 0 {
		res, err := r.DB.ExecContext(ctx, `
			INSERT INTO comisiones
				(codigo, codigo_actividad, nombre, docente_id, horario, sede,
				 es_centro_externo, ciclo, modalidad, cuatrimestre, recomendacion_raw, activa)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		`, in.Codigo, in.CodigoActividad, in.Nombre, in.DocenteID, in.Horario, in.Sede,
			in.EsCentroExterno, in.Ciclo, modalidad, in.Cuatrimestre, in.RecomendacionRaw)
		if err != nil {
			return nil, false, fmt.Errorf("insert comisión: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, false, fmt.Errorf("comisión id: %w", err)
		}
		created, err := r.GetByID(ctx, id)
		return created, true, err
	}

	// Longest horario wins; ties keep the earliest existing record's text.
	target := existentes[0]
	horario := ""
	for _, e := range existentes {
		if len(e.horario) > len(horario) {
			horario = e.horario
		}
	}
	if len(in.Horario) > len(horario) {
		horario = in.Horario
	}

	// Delete losers before the update so the surviving horario cannot trip
	// the uniqueness constraint.
	for _, e := range existentes[1:] {
		if _, err := r.DB.ExecContext(ctx, `DELETE FROM comisiones WHERE id_comision = ?`, e.id); err != nil {
			return nil, false, fmt.Errorf("delete duplicate comisión %d: %w", e.id, err)
		}
	}

	_, err = r.DB.ExecContext(ctx, `
		UPDATE comisiones
		SET codigo_actividad = ?, nombre = ?, horario = ?, sede = ?,
		    es_centro_externo = ?, ciclo = ?, modalidad = ?, recomendacion_raw = ?, activa = 1
		WHERE id_comision = ?
	`, in.CodigoActividad, in.Nombre, horario, in.Sede,
		in.EsCentroExterno, in.Ciclo, modalidad, in.RecomendacionRaw, target.id)
	if err != nil {
		return nil, false, fmt.Errorf("update comisión: %w", err)
	}

	merged, err := r.GetByID(ctx, target.id)
	return merged, false, err
}
