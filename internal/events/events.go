package events

import "time"

// ImportEvent announces a completed (non-dry-run) import.
type ImportEvent struct {
	Type               string    `json:"type"` // "catalog.import"
	DocentesCreados    int       `json:"docentes_creados"`
	ComisionesCreadas  int       `json:"comisiones_creadas"`
	ComisionesActual   int       `json:"comisiones_actualizadas"`
	DuplicadosOmitidos int       `json:"duplicados_omitidos"`
	At                 time.Time `json:"at"`
}

// ComisionEvent announces a single comisión create/update/delete.
type ComisionEvent struct {
	Type     string    `json:"type"` // "comision.update" or "comision.delete"
	Codigo   string    `json:"codigo"`
	Comision int64     `json:"id_comision"`
	At       time.Time `json:"at"`
}

// RecomendacionEvent announces a new community recommendation.
type RecomendacionEvent struct {
	Type     string    `json:"type"` // "recomendacion.create"
	Comision int64     `json:"comision_id"`
	At       time.Time `json:"at"`
}
