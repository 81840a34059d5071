package catalog

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"catedrahub/pkg/models"
)

var exportHeaders = []string{
	"Código", "Actividad", "Nombre", "Docente", "Horario",
	"Sede", "Centro externo", "Ciclo", "Modalidad", "Cuatrimestre",
}

// export streams the filtered catalog as an XLSX workbook.
func (h *ComisionHandler) export(c *gin.Context) {
	q := ComisionListQuery{
		Search: c.Query("search"),
		Ciclo:  c.Query("ciclo"),
		Limit:  100,
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Comisiones"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for i, title := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
	}

	rowIdx := 2
	for {
		batch, err := h.Repo.List(c.Request.Context(), q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		for _, com := range batch {
			if err := writeExportRow(f, sheet, rowIdx, com); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
				return
			}
			rowIdx++
		}
		if len(batch) < q.Limit {
			break
		}
		q.Offset += q.Limit
	}

	filename := fmt.Sprintf("comisiones_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		// Headers already sent, nothing else to report to the client.
		return
	}
}

func writeExportRow(f *excelize.File, sheet string, row int, com models.Comision) error {
	docente := ""
	if com.Docente != nil {
		docente = com.Docente.NombreCompleto
	}
	externo := "No"
	if com.EsCentroExterno {
		externo = "Sí"
	}

	values := []any{
		com.Codigo, com.CodigoActividad, com.Nombre, docente, com.Horario,
		com.Sede, externo, com.Ciclo, com.Modalidad, com.Cuatrimestre,
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
