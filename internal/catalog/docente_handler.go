package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"catedrahub/pkg/models"
)

type DocenteHandler struct {
	Repo       *DocenteRepo
	Comisiones *ComisionRepo
}

func NewDocenteHandler(repo *DocenteRepo, comisiones *ComisionRepo) *DocenteHandler {
	return &DocenteHandler{Repo: repo, Comisiones: comisiones}
}

func (h *DocenteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/estadisticas", h.estadisticas)
	rg.GET("/:id", h.getByID)
}

// RegisterProtectedRoutes mounts the mutating endpoints.
func (h *DocenteHandler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/docentes", h.create)
	rg.PUT("/docentes/:id", h.update)
	rg.DELETE("/docentes/:id", h.delete)
}

func (h *DocenteHandler) list(c *gin.Context) {
	q := DocenteListQuery{
		Search: c.Query("search"),
		Limit:  parseInt(c.Query("limit"), 20),
		Offset: parseInt(c.Query("offset"), 0),
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

func (h *DocenteHandler) getByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	d, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if d == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	comisiones, err := h.Comisiones.ListByDocente(c.Request.Context(), d.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list comisiones failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"docente":    d,
		"comisiones": comisiones,
	})
}

func (h *DocenteHandler) estadisticas(c *gin.Context) {
	stats, err := h.Repo.Estadisticas(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type docenteUpdateReq struct {
	Nombre      string `json:"nombre"`
	Apellido    string `json:"apellido"`
	AliasSearch string `json:"alias_search"`
}

func (h *DocenteHandler) create(c *gin.Context) {
	var req docenteUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.Nombre = strings.TrimSpace(req.Nombre)
	req.Apellido = strings.TrimSpace(req.Apellido)
	if req.Apellido == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "apellido requerido"})
		return
	}

	completo := strings.TrimSpace(req.Apellido + " " + req.Nombre)
	d, created, err := h.Repo.FindOrCreate(c.Request.Context(), req.Nombre, req.Apellido, completo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, d)
}

func (h *DocenteHandler) update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req docenteUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.Nombre = strings.TrimSpace(req.Nombre)
	req.Apellido = strings.TrimSpace(req.Apellido)
	if req.Nombre == "" && req.Apellido == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nombre o apellido requerido"})
		return
	}

	d := models.Docente{
		ID:       id,
		Nombre:   req.Nombre,
		Apellido: req.Apellido,
		// Registrar order: surname first.
		NombreCompleto: strings.TrimSpace(req.Apellido + " " + req.Nombre),
		AliasSearch:    strings.TrimSpace(req.AliasSearch),
	}

	ok, err := h.Repo.Update(c.Request.Context(), d)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DocenteHandler) delete(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
