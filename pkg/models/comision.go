package models

import "time"

// Ciclos administrativos válidos para una comisión.
const (
	CicloCPO = "CPO"
	CicloCPC = "CPC"
)

// Modalidades aceptadas. Cualquier otro valor se descarta a vacío.
const (
	ModalidadPresencial = "Presencial"
	ModalidadRemota     = "Remota"
	ModalidadHibrida    = "Híbrida"
)

// Comision es una oferta programada de una materia. Su identidad para la
// importación es la tupla (codigo, docente, cuatrimestre, sede): el registro
// reutiliza el mismo código numérico para horarios y docentes distintos.
type Comision struct {
	ID               int64     `json:"id_comision"`
	Codigo           string    `json:"codigo"`
	CodigoActividad  string    `json:"codigo_actividad,omitempty"`
	Nombre           string    `json:"nombre"`
	DocenteID        int64     `json:"docente_id,omitempty"`
	Horario          string    `json:"horario,omitempty"`
	Sede             string    `json:"sede,omitempty"`
	EsCentroExterno  bool      `json:"es_centro_externo"`
	Ciclo            string    `json:"ciclo,omitempty"`
	Modalidad        string    `json:"modalidad,omitempty"`
	Cuatrimestre     string    `json:"cuatrimestre,omitempty"`
	RecomendacionRaw string    `json:"recomendacion_raw,omitempty"`
	Activa           bool      `json:"activa"`
	FechaCreacion    time.Time `json:"fecha_creacion"`

	// Docente se completa en las respuestas de lectura.
	Docente *Docente `json:"docente,omitempty"`
}

// ValidCiclo reports whether s is one of the two accepted cycle tags.
func ValidCiclo(s string) bool {
	return s == CicloCPO || s == CicloCPC
}

// ValidModalidad reports whether s is one of the enumerated modalities.
func ValidModalidad(s string) bool {
	switch s {
	case ModalidadPresencial, ModalidadRemota, ModalidadHibrida:
		return true
	}
	return false
}
