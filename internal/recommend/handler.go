package recommend

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"catedrahub/internal/auth"
	"catedrahub/internal/catalog"
	"catedrahub/internal/events"
	"catedrahub/pkg/models"
)

type Handler struct {
	Repo       *Repo
	Comisiones *catalog.ComisionRepo
	Hub        *events.Hub
}

func NewHandler(repo *Repo, comisiones *catalog.ComisionRepo, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Comisiones: comisiones, Hub: hub}
}

// RegisterRoutes mounts the read endpoints, open to anyone.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/comisiones/:id/recomendaciones", h.listByComision)
}

// RegisterProtectedRoutes mounts the endpoints that require a session.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/comisiones/:id/recomendaciones", h.create)
	rg.POST("/recomendaciones/:id/votar", h.vote)
	rg.DELETE("/recomendaciones/:id", h.delete)
}

func (h *Handler) listByComision(c *gin.Context) {
	comisionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || comisionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	items, err := h.Repo.ListByComision(c.Request.Context(), comisionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if items == nil {
		items = []models.Recomendacion{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

type createReq struct {
	Texto       string   `json:"texto"`
	Sentimiento string   `json:"sentimiento"`
	Confianza   *float64 `json:"confianza"`
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	comisionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || comisionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.Texto = strings.TrimSpace(req.Texto)
	if req.Texto == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "el texto es obligatorio"})
		return
	}

	sentimiento := strings.ToUpper(strings.TrimSpace(req.Sentimiento))
	if sentimiento != "" && !models.ValidSentimiento(sentimiento) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sentimiento inválido"})
		return
	}
	if req.Confianza != nil && (*req.Confianza < 0 || *req.Confianza > 1) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confianza fuera de rango"})
		return
	}

	com, err := h.Comisiones.GetByID(c.Request.Context(), comisionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get comisión failed"})
		return
	}
	if com == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "comisión not found"})
		return
	}

	rec := models.Recomendacion{
		ComisionID:  comisionID,
		UserID:      claims.UserID,
		Texto:       req.Texto,
		Sentimiento: sentimiento,
		Confianza:   req.Confianza,
	}
	if err := h.Repo.Create(c.Request.Context(), &rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(events.RecomendacionEvent{
			Type:     "recomendacion.create",
			Comision: comisionID,
			At:       time.Now().UTC(),
		})
	}

	created, err := h.Repo.GetByID(c.Request.Context(), rec.ID)
	if err != nil || created == nil {
		c.JSON(http.StatusCreated, rec)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) vote(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	ok, err := h.Repo.Vote(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "vote failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "voted"})
}

// delete lets the author remove their own recommendation; admins can remove any.
func (h *Handler) delete(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var ok bool
	if claims.Rol == auth.RolAdmin {
		ok, err = h.Repo.Delete(c.Request.Context(), id)
	} else {
		ok, err = h.Repo.DeleteOwn(c.Request.Context(), id, claims.UserID)
	}
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
