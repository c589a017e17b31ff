package boards

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sarthakagrawal927/reader-backend/internal/auth"
)

type Handler struct {
	repo *Repo
}

func Register(rg *gin.RouterGroup, repo *Repo) {
	h := &Handler{repo: repo}

	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

type createReq struct {
	Name  string `json:"name"`
	Nodes []any  `json:"nodes"`
	Edges []any  `json:"edges"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	uid := auth.UserUID(c)
	b, err := h.repo.Create(c.Request.Context(), uid, req.Name, req.Nodes, req.Edges)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": b.ID})
}

func (h *Handler) list(c *gin.Context) {
	uid := auth.UserUID(c)
	items, err := h.repo.List(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) get(c *gin.Context) {
	uid := auth.UserUID(c)
	b, err := h.repo.Get(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type updateReq struct {
	Name  *string `json:"name"`
	Nodes *[]any  `json:"nodes"`
	Edges *[]any  `json:"edges"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	uid := auth.UserUID(c)
	b, err := h.repo.Update(c.Request.Context(), c.Param("id"), uid, UpdateInput{
		Name:  req.Name,
		Nodes: req.Nodes,
		Edges: req.Edges,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) delete(c *gin.Context) {
	uid := auth.UserUID(c)
	if err := h.repo.Delete(c.Request.Context(), c.Param("id"), uid); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
