package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReadFileUnsupportedExtension(t *testing.T) {
	path := writeTemp(t, "export.pdf", []byte("whatever"))
	_, err := ReadFile(path)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadCSVSimple(t *testing.T) {
	csvData := "Período lectivo,Actividad,Comisión,Docente,Horario,Sede\n" +
		"PRIMER CUATRIMESTRE 2025,205 (PRI) - DERECHO ROMANO,7005,GARCIA JUAN,Lun 8:30 a 10:00,PENAL\n"
	path := writeTemp(t, "export.csv", []byte(csvData))

	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "7005", rows[0].Get("Comisión"))
	assert.Equal(t, "GARCIA JUAN", rows[0].Get("Docente"))
	assert.Equal(t, "PRIMER CUATRIMESTRE 2025", rows[0].Get("Período lectivo"))
}

func TestReadCSVSkipsPreambleBeforeHeader(t *testing.T) {
	csvData := "Facultad de Derecho\n" +
		"Listado de comisiones\n" +
		"\n" +
		"Período lectivo,Actividad,Comisión,Docente,Horario,Sede\n" +
		"PRIMER CUATRIMESTRE 2025,205 (PRI) - DERECHO ROMANO,7005,GARCIA JUAN,Lun 8:30 a 10:00,PENAL\n"
	path := writeTemp(t, "export.csv", []byte(csvData))

	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "7005", rows[0].Get("Comisión"))
}

func TestReadCSVWithBOM(t *testing.T) {
	csvData := append([]byte{0xEF, 0xBB, 0xBF},
		[]byte("Período lectivo,Comisión,Docente\nPRIMER CUATRIMESTRE 2025,7005,GARCIA JUAN\n")...)
	path := writeTemp(t, "export.csv", csvData)

	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	// The BOM must not leak into the first header name.
	assert.Equal(t, "PRIMER CUATRIMESTRE 2025", rows[0].Get("Período lectivo"))
}

func TestReadCSVLatin1Fallback(t *testing.T) {
	// "Período lectivo" with the í encoded as ISO-8859-1 (0xED), invalid UTF-8.
	csvData := []byte("Per\xedodo lectivo,Comisi\xf3n,Docente\n" +
		"PRIMER CUATRIMESTRE 2025,7005,GARC\xcdA JUAN\n")
	path := writeTemp(t, "export.csv", csvData)

	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "7005", rows[0].Get("Comisión"))
	assert.Equal(t, "GARCÍA JUAN", rows[0].Get("Docente"))
}

func TestReadXLSXRoundTrip(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	cells := [][]any{
		{"Período lectivo", "Actividad", "Comisión", "Docente", "Horario"},
		{"PRIMER CUATRIMESTRE 2025", "205 (PRI) - DERECHO ROMANO", "7005", "GARCIA JUAN", "Lun 8:30 a 10:00"},
		// Short row: trailing cells must come back empty, not missing.
		{"SEGUNDO CUATRIMESTRE 2025", "209 (PRI) - OBLIGACIONES", "7010"},
	}
	for rowIdx, row := range cells {
		for colIdx, v := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, f.SaveAs(path))

	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "7005", rows[0].Get("Comisión"))
	assert.Equal(t, "GARCIA JUAN", rows[0].Get("Docente"))
	assert.Equal(t, "PRIMER CUATRIMESTRE 2025", rows[0].Get("Período lectivo"))

	assert.Equal(t, "7010", rows[1].Get("Comisión"))
	assert.Equal(t, "", rows[1].Get("Docente"))
	assert.Equal(t, "", rows[1].Get("Horario"))
}

// There is no pure-Go writer for the legacy BIFF format, so no .xls fixture
// can be authored here; this pins down the dispatch into the xls reader.
func TestReadFileDispatchesXLS(t *testing.T) {
	path := writeTemp(t, "export.xls", []byte("not a real workbook"))
	_, err := ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open xls")
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeWithFallbackRejectsNothing(t *testing.T) {
	// ISO-8859-1 maps every byte, so arbitrary bytes still decode.
	out, err := decodeWithFallback([]byte{0xFF, 0xFE, 0x41})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestZipRowPadsShortRecords(t *testing.T) {
	r := zipRow([]string{"A", "B", "C"}, []string{"1", "2"})
	assert.Equal(t, "1", r.Get("A"))
	assert.Equal(t, "2", r.Get("B"))
	assert.Equal(t, "", r.Get("C"))
}
