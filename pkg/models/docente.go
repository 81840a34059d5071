package models

type Docente struct {
	ID             int64  `json:"id_docente"`
	Nombre         string `json:"nombre"`
	Apellido       string `json:"apellido"`
	NombreCompleto string `json:"nombre_completo"`
	AliasSearch    string `json:"alias_search,omitempty"`
}
