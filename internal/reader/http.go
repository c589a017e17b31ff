package reader

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Handler serves on-demand scrapes used by the save flow.
type Handler struct {
	svc *Service
}

func Register(rg *gin.RouterGroup, svc *Service) {
	h := &Handler{svc: svc}
	rg.POST("/scrape", h.scrape)
}

type scrapeReq struct {
	URL string `json:"url"`
}

func (h *Handler) scrape(c *gin.Context) {
	var req scrapeReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}

	ext, err := h.svc.Scrape(c.Request.Context(), req.URL)
	if err != nil {
		if errors.Is(err, ErrBadURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only http and https URLs are supported"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Content extraction failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, ext)
}
