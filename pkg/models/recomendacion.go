package models

import "time"

// Sentimientos posibles de una recomendación. El análisis automático de
// sentimiento no está implementado; el campo llega de los contribuidores.
const (
	SentimientoPositivo = "POSITIVO"
	SentimientoNegativo = "NEGATIVO"
	SentimientoNeutral  = "NEUTRAL"
)

type Recomendacion struct {
	ID            int64     `json:"id"`
	ComisionID    int64     `json:"comision_id"`
	UserID        string    `json:"user_id"`
	Texto         string    `json:"texto"`
	Sentimiento   string    `json:"sentimiento,omitempty"`
	Confianza     *float64  `json:"confianza,omitempty"`
	VotosUtilidad int       `json:"votos_utilidad"`
	FechaCreacion time.Time `json:"fecha_creacion"`
}

// ValidSentimiento reports whether s is an accepted sentiment label.
func ValidSentimiento(s string) bool {
	switch s {
	case SentimientoPositivo, SentimientoNegativo, SentimientoNeutral:
		return true
	}
	return false
}
