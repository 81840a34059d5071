package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"catedrahub/pkg/database"
)

func main() {
	var (
		docentesOut   = flag.String("docentes", "data/docentes.csv", "output CSV path for docentes")
		comisionesOut = flag.String("comisiones", "data/comisiones.csv", "output CSV path for comisiones")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportDocentes(ctx, db, *docentesOut); err != nil {
		log.Fatalf("export docentes failed: %v", err)
	}
	if err := exportComisiones(ctx, db, *comisionesOut); err != nil {
		log.Fatalf("export comisiones failed: %v", err)
	}

	log.Printf("✅ exported docentes to %s and comisiones to %s", *docentesOut, *comisionesOut)
}

func exportDocentes(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id_docente", "nombre", "apellido", "nombre_completo", "alias_search"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT id_docente, nombre, apellido, nombre_completo, alias_search
        FROM docentes
        ORDER BY apellido, nombre
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id          int64
			nombre      string
			apellido    string
			completo    string
			aliasSearch sql.NullString
		)

		if err := rows.Scan(&id, &nombre, &apellido, &completo, &aliasSearch); err != nil {
			return err
		}

		if err := w.Write([]string{
			strconv.FormatInt(id, 10),
			nombre,
			apellido,
			completo,
			aliasSearch.String,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func exportComisiones(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"id_comision", "codigo", "codigo_actividad", "nombre", "docente",
		"horario", "sede", "es_centro_externo", "ciclo", "modalidad", "cuatrimestre",
	}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT c.id_comision, c.codigo, c.codigo_actividad, c.nombre,
               COALESCE(d.nombre_completo, ''), c.horario, c.sede,
               c.es_centro_externo, c.ciclo, c.modalidad, c.cuatrimestre
        FROM comisiones c
        LEFT JOIN docentes d ON d.id_docente = c.docente_id
        ORDER BY c.codigo
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id              int64
			codigo          string
			codigoActividad string
			nombre          string
			docente         string
			horario         string
			sede            string
			esCentroExterno bool
			ciclo           string
			modalidad       sql.NullString
			cuatrimestre    string
		)

		if err := rows.Scan(&id, &codigo, &codigoActividad, &nombre, &docente,
			&horario, &sede, &esCentroExterno, &ciclo, &modalidad, &cuatrimestre); err != nil {
			return err
		}

		externo := "0"
		if esCentroExterno {
			externo = "1"
		}

		if err := w.Write([]string{
			strconv.FormatInt(id, 10),
			codigo,
			codigoActividad,
			nombre,
			docente,
			horario,
			sede,
			externo,
			ciclo,
			modalidad.String,
			cuatrimestre,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
