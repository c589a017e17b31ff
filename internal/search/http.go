package search

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sarthakagrawal927/reader-backend/internal/auth"
)

// Handler serves full-text search over the caller's articles.
type Handler struct {
	svc *Service
}

func Register(rg *gin.RouterGroup, svc *Service) {
	h := &Handler{svc: svc}
	rg.GET("/search", h.search)
}

func (h *Handler) search(c *gin.Context) {
	uid := auth.UserUID(c)
	q := c.Query("q")
	projectID := c.Query("projectId")

	results, err := h.svc.Search(c.Request.Context(), uid, q, projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
