package catalog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"catedrahub/internal/events"
	"catedrahub/internal/importer"
	"catedrahub/pkg/models"
)

type ComisionHandler struct {
	Repo     *ComisionRepo
	Docentes *DocenteRepo
	Hub      *events.Hub
}

func NewComisionHandler(repo *ComisionRepo, docentes *DocenteRepo, hub *events.Hub) *ComisionHandler {
	return &ComisionHandler{Repo: repo, Docentes: docentes, Hub: hub}
}

func (h *ComisionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/export", h.export)
	rg.GET("/:id", h.getByID)
}

func (h *ComisionHandler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/comisiones/crear-manual", h.crearManual)
	rg.DELETE("/comisiones/:id", h.delete)
}

func (h *ComisionHandler) list(c *gin.Context) {
	q := ComisionListQuery{
		Search: c.Query("search"),
		Ciclo:  c.Query("ciclo"),
		Limit:  parseInt(c.Query("limit"), 20),
		Offset: parseInt(c.Query("offset"), 0),
	}

	if v := c.Query("activa"); v != "" {
		activa := v == "1" || strings.EqualFold(v, "true")
		q.Activa = &activa
	}
	if v := c.Query("es_centro_externo"); v != "" {
		externo := v == "1" || strings.EqualFold(v, "true")
		q.EsCentroExterno = &externo
	}

	total, err := h.Repo.Count(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *ComisionHandler) getByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	com, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if com == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, com)
}

type crearManualReq struct {
	Codigo           string `json:"codigo"`
	CodigoActividad  string `json:"codigo_actividad"`
	Nombre           string `json:"nombre"`
	DocenteNombre    string `json:"docente_nombre"`
	DocenteApellido  string `json:"docente_apellido"`
	DocenteCompleto  string `json:"docente_completo"`
	Horario          string `json:"horario"`
	Cuatrimestre     string `json:"cuatrimestre"`
	Modalidad        string `json:"modalidad"`
	Sede             string `json:"sede"`
	Ciclo            string `json:"ciclo"`
	EsCentroExterno  bool   `json:"es_centro_externo"`
	RecomendacionRaw string `json:"recomendacion_raw"`
}

// crearManual creates or merges a comisión from plain form data, without a
// docente id; it shares the consolidation rule with the import engine.
func (h *ComisionHandler) crearManual(c *gin.Context) {
	var req crearManualReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	codigo := strings.TrimSpace(req.Codigo)
	nombre := strings.TrimSpace(req.Nombre)
	docenteCompleto := strings.TrimSpace(req.DocenteCompleto)
	if docenteCompleto == "" && (req.DocenteNombre != "" || req.DocenteApellido != "") {
		docenteCompleto = strings.TrimSpace(req.DocenteNombre + " " + req.DocenteApellido)
	}

	if codigo == "" || nombre == "" || docenteCompleto == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "código, nombre y docente son obligatorios"})
		return
	}

	ciclo := strings.ToUpper(strings.TrimSpace(req.Ciclo))
	if ciclo != "" && !models.ValidCiclo(ciclo) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "el ciclo debe ser CPO o CPC"})
		return
	}

	apellido := strings.TrimSpace(req.DocenteApellido)
	nombreDocente := strings.TrimSpace(req.DocenteNombre)
	if apellido == "" && nombreDocente == "" {
		apellido, nombreDocente = importer.SplitDocenteName(docenteCompleto)
	}

	// Stored casing matches what the bulk import produces.
	docente, _, err := h.Docentes.FindOrCreate(c.Request.Context(),
		importer.TitleName(nombreDocente), importer.TitleName(apellido), importer.TitleName(docenteCompleto))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "docente failed"})
		return
	}

	nombreTrunc := nombre
	if len([]rune(nombreTrunc)) > 200 {
		nombreTrunc = string([]rune(nombreTrunc)[:200])
	}

	com, created, err := h.Repo.CreateOrMerge(c.Request.Context(), ComisionInput{
		Codigo:           codigo,
		CodigoActividad:  strings.TrimSpace(req.CodigoActividad),
		Nombre:           nombreTrunc,
		DocenteID:        docente.ID,
		Horario:          strings.TrimSpace(req.Horario),
		Sede:             strings.TrimSpace(req.Sede),
		EsCentroExterno:  req.EsCentroExterno,
		Ciclo:            ciclo,
		Modalidad:        strings.TrimSpace(req.Modalidad),
		Cuatrimestre:     strings.TrimSpace(req.Cuatrimestre),
		RecomendacionRaw: strings.TrimSpace(req.RecomendacionRaw),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(events.ComisionEvent{
			Type:     "comision.update",
			Codigo:   com.Codigo,
			Comision: com.ID,
			At:       time.Now().UTC(),
		})
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"created": created, "comision": com})
}

func (h *ComisionHandler) delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(events.ComisionEvent{
			Type:     "comision.delete",
			Comision: id,
			At:       time.Now().UTC(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
