package importer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCuatrimestre(t *testing.T) {
	cases := []struct {
		periodo string
		want    string
	}{
		{"PRIMER CUATRIMESTRE ABOGACÍA 2025", "1C2025"},
		{"SEGUNDO CUATRIMESTRE ABOGACÍA 2025", "2C2025"},
		{"SEGUNDO BIMESTRE 2024", "2B2024"},
		{"PRIMER BIMESTRE 2026", "1B2026"},
		{"CURSO INTENSIVO DE VERANO", ""},
		{"Primer cuatrimestre 2025", "1C2025"},
		{"2025", "1C2025"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExtractCuatrimestre(tc.periodo), "periodo %q", tc.periodo)
	}
}

func TestParseActividad(t *testing.T) {
	codigo, nombre := ParseActividad("205 (PRI) - DERECHO ROMANO")
	assert.Equal(t, "205", codigo)
	assert.Equal(t, "DERECHO ROMANO", nombre)

	codigo, nombre = ParseActividad("1124 (CPO) - TEORÍA GENERAL DEL DELITO")
	assert.Equal(t, "1124", codigo)
	assert.Equal(t, "TEORÍA GENERAL DEL DELITO", nombre)

	// No pattern: everything is the title.
	codigo, nombre = ParseActividad("DERECHO ROMANO")
	assert.Equal(t, "", codigo)
	assert.Equal(t, "DERECHO ROMANO", nombre)

	codigo, nombre = ParseActividad("")
	assert.Equal(t, "", codigo)
	assert.Equal(t, "", nombre)
}

func TestSplitDocenteName(t *testing.T) {
	apellido, nombre := SplitDocenteName("GARCIA JUAN CARLOS")
	assert.Equal(t, "GARCIA", apellido)
	assert.Equal(t, "JUAN CARLOS", nombre)

	apellido, nombre = SplitDocenteName("GARCIA")
	assert.Equal(t, "GARCIA", apellido)
	assert.Equal(t, "", nombre)

	apellido, nombre = SplitDocenteName("   ")
	assert.Equal(t, "", apellido)
	assert.Equal(t, "", nombre)
}

func TestTitleName(t *testing.T) {
	assert.Equal(t, "Garcia Juan", TitleName("GARCIA JUAN"))
	assert.Equal(t, "Pérez", TitleName("PÉREZ"))
	assert.Equal(t, "", TitleName(""))
}

// TitleName is hit from the import engine and from gin handlers at the same
// time, so it must hold up under concurrent callers.
func TestTitleNameConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = TitleName("GARCÍA JUAN CARLOS")
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, "García Juan Carlos", got)
	}
}

func TestIsCentroExterno(t *testing.T) {
	// Explicit affirmative column wins regardless of the sede.
	assert.True(t, IsCentroExterno("PENAL", Row{"Centro externo": "SI"}))
	assert.True(t, IsCentroExterno("", Row{"Centros externos": "externo"}))

	// Empty sede without the column defaults to internal.
	assert.False(t, IsCentroExterno("", Row{}))

	// Internal orientations are never external.
	assert.False(t, IsCentroExterno("PENAL", Row{}))
	assert.False(t, IsCentroExterno("violencia de género", Row{}))
	assert.False(t, IsCentroExterno("INT. PUBLICO", Row{}))

	// Institutional keywords force external.
	assert.True(t, IsCentroExterno("COLEGIO PÚBLICO DE ABOGADOS", Row{}))
	assert.True(t, IsCentroExterno("Hospital de Clínicas", Row{}))

	// Unknown sedes are presumed external.
	assert.True(t, IsCentroExterno("Anexo San Isidro", Row{}))
}

func TestNormalizeModalidad(t *testing.T) {
	assert.Equal(t, "Presencial", NormalizeModalidad("Presencial"))
	assert.Equal(t, "Remota", NormalizeModalidad(" Remota "))
	assert.Equal(t, "Híbrida", NormalizeModalidad("Híbrida"))
	assert.Equal(t, "", NormalizeModalidad("virtual"))
	assert.Equal(t, "", NormalizeModalidad(""))
}

func TestIsAffirmative(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", "si", "Sí", "on"} {
		assert.True(t, isAffirmative(v), v)
	}
	for _, v := range []string{"", "0", "no", "false", "off"} {
		assert.False(t, isAffirmative(v), v)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	// Rune-based, not byte-based.
	assert.Equal(t, "ñañ", truncate("ñañú", 3))
}
