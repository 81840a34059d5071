package importer

import (
	"database/sql"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"catedrahub/internal/events"
	"catedrahub/pkg/models"
)

// Handler exposes the import pipeline over multipart upload.
type Handler struct {
	DB  *sql.DB
	Hub *events.Hub
}

func NewHandler(db *sql.DB, hub *events.Hub) *Handler {
	return &Handler{DB: db, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/importar", h.importar)
}

func (h *Handler) importar(c *gin.Context) {
	upload, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no se envió archivo"})
		return
	}

	ciclo := strings.ToUpper(strings.TrimSpace(c.PostForm("ciclo")))
	if ciclo != "" && !models.ValidCiclo(ciclo) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "el ciclo debe ser CPO o CPC"})
		return
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	switch ext {
	case ".csv", ".xlsx", ".xls":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "formato no soportado, use CSV, XLS o XLSX"})
		return
	}

	updateExisting := isAffirmative(c.PostForm("update_existing"))
	dryRun := isAffirmative(c.PostForm("dry_run"))

	tmp, err := os.CreateTemp("", "import-*"+ext)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "temp file failed"})
		return
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(upload, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save upload failed"})
		return
	}

	engine := NewEngine(h.DB)
	result, err := engine.Run(c.Request.Context(), Options{
		Path:           tmpPath,
		DryRun:         dryRun,
		UpdateExisting: updateExisting,
		Ciclo:          ciclo,
	})
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) || errors.Is(err, ErrBadEncoding) || errors.Is(err, ErrInvalidCiclo) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
		return
	}

	if h.Hub != nil && !result.DryRun {
		h.Hub.BroadcastJSON(events.ImportEvent{
			Type:               "catalog.import",
			DocentesCreados:    result.Stats.DocentesCreados,
			ComisionesCreadas:  result.Stats.ComisionesCreadas,
			ComisionesActual:   result.Stats.ComisionesActualizadas,
			DuplicadosOmitidos: result.Stats.DuplicadosExactosOmitidos,
			At:                 time.Now().UTC(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"stats":  result.Stats,
		"duplicates": gin.H{
			"exactos":     result.Duplicates.ExactosList(),
			"variaciones": result.Duplicates.VariacionesList(),
			"warnings":    result.Duplicates.Warnings,
			"errores":     result.Duplicates.Errores,
		},
		"dry_run": result.DryRun,
		"log":     result.Log,
	})
}
